package browser

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/ytbrief/internal/browser/stealth"
)

// Config controls how the browser process is launched.
type Config struct {
	Headless bool `mapstructure:"headless" yaml:"headless"`
	// ExecPath overrides chromedp's lookup of the Chrome binary.
	ExecPath     string   `mapstructure:"exec_path" yaml:"exec_path"`
	WindowWidth  int      `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int      `mapstructure:"window_height" yaml:"window_height"`
	NoSandbox    bool     `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	Args         []string `mapstructure:"args" yaml:"args"`

	LaunchTimeout   time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	TeardownTimeout time.Duration `mapstructure:"teardown_timeout" yaml:"teardown_timeout"`

	Persona stealth.Persona `mapstructure:"persona" yaml:"persona"`
}

func DefaultConfig() Config {
	return Config{
		Headless:        true,
		WindowWidth:     1920,
		WindowHeight:    1080,
		LaunchTimeout:   60 * time.Second,
		TeardownTimeout: 10 * time.Second,
		Persona:         stealth.DefaultPersona,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		c.WindowWidth, c.WindowHeight = d.WindowWidth, d.WindowHeight
	}
	if c.LaunchTimeout <= 0 {
		c.LaunchTimeout = d.LaunchTimeout
	}
	if c.TeardownTimeout <= 0 {
		c.TeardownTimeout = d.TeardownTimeout
	}
	return c
}

// launchFlags is the Chrome command line on top of chromedp's defaults.
// A false value removes a default switch.
func launchFlags(cfg Config, profileDir string) map[string]any {
	flags := map[string]any{
		"enable-automation":        false,
		"disable-blink-features":   "AutomationControlled",
		"window-size":              fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight),
		"no-first-run":             true,
		"no-default-browser-check": true,
		"disable-infobars":         true,
		"lang":                     "ko-KR",
	}
	if profileDir != "" {
		flags["user-data-dir"] = profileDir
	}
	if cfg.Headless {
		flags["headless"] = "new"
	} else {
		flags["headless"] = false
		flags["hide-scrollbars"] = false
		flags["mute-audio"] = false
	}
	if cfg.Persona.UserAgent != "" {
		flags["user-agent"] = cfg.Persona.UserAgent
	}
	if len(cfg.Persona.Languages) > 0 {
		flags["lang"] = cfg.Persona.Languages[0]
	}
	if cfg.NoSandbox {
		flags["no-sandbox"] = true
		flags["disable-dev-shm-usage"] = true
	}
	for _, arg := range cfg.Args {
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if name == "" {
			continue
		}
		if hasValue {
			flags[name] = value
		} else {
			flags[name] = true
		}
	}
	return flags
}

func allocatorOptions(cfg Config, profileDir string) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)

	flags := launchFlags(cfg, profileDir)
	names := make([]string, 0, len(flags))
	for name := range flags {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		opts = append(opts, chromedp.Flag(name, flags[name]))
	}
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// checkExecPath fails early when an explicit binary path does not exist.
func checkExecPath(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}
	return nil
}

// missingBrowser reports whether err means there is no Chrome to launch.
func missingBrowser(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}

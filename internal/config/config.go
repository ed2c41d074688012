// Package config loads ytbrief settings from defaults, config.yaml, the
// environment and command-line flags through viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/ytbrief/api/schemas"
	"github.com/xkilldash9x/ytbrief/internal/browser"
	"github.com/xkilldash9x/ytbrief/internal/browser/stealth"
	"github.com/xkilldash9x/ytbrief/internal/credential"
	"github.com/xkilldash9x/ytbrief/internal/network"
	"github.com/xkilldash9x/ytbrief/internal/notebook"
)

// Config is the root configuration.
type Config struct {
	Logger     LoggerConfig     `mapstructure:"logger" yaml:"logger"`
	Browser    BrowserConfig    `mapstructure:"browser" yaml:"browser"`
	Notebook   NotebookConfig   `mapstructure:"notebook" yaml:"notebook"`
	Collector  CollectorConfig  `mapstructure:"collector" yaml:"collector"`
	Transcript TranscriptConfig `mapstructure:"transcript" yaml:"transcript"`
	Report     ReportConfig     `mapstructure:"report" yaml:"report"`
	Network    NetworkConfig    `mapstructure:"network" yaml:"network"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color names for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig covers the Chrome launch and the saved session it restores.
type BrowserConfig struct {
	Headless        bool            `mapstructure:"headless" yaml:"headless"`
	ExecPath        string          `mapstructure:"exec_path" yaml:"exec_path"`
	WindowWidth     int             `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight    int             `mapstructure:"window_height" yaml:"window_height"`
	NoSandbox       bool            `mapstructure:"no_sandbox" yaml:"no_sandbox"`
	Args            []string        `mapstructure:"args" yaml:"args"`
	LaunchTimeout   time.Duration   `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	TeardownTimeout time.Duration   `mapstructure:"teardown_timeout" yaml:"teardown_timeout"`
	StatePath       string          `mapstructure:"state_path" yaml:"state_path"`
	ProfileDir      string          `mapstructure:"profile_dir" yaml:"profile_dir"`
	Persona         stealth.Persona `mapstructure:"persona" yaml:"persona"`
}

// LaunchConfig converts to the browser package's launch settings.
func (b BrowserConfig) LaunchConfig() browser.Config {
	return browser.Config{
		Headless:        b.Headless,
		ExecPath:        b.ExecPath,
		WindowWidth:     b.WindowWidth,
		WindowHeight:    b.WindowHeight,
		NoSandbox:       b.NoSandbox,
		Args:            b.Args,
		LaunchTimeout:   b.LaunchTimeout,
		TeardownTimeout: b.TeardownTimeout,
		Persona:         b.Persona,
	}
}

// Credential resolves the saved-session paths.
func (b BrowserConfig) Credential() (credential.Handle, error) {
	return credential.NewHandle(b.StatePath, b.ProfileDir)
}

// NotebookConfig holds the notebook target and protocol timings.
type NotebookConfig struct {
	URL                  string        `mapstructure:"url" yaml:"url"`
	Locale               string        `mapstructure:"locale" yaml:"locale"`
	MaxDocumentChars     int           `mapstructure:"max_document_chars" yaml:"max_document_chars"`
	TruncationMarker     string        `mapstructure:"truncation_marker" yaml:"truncation_marker"`
	NavigationTimeout    time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	SettleDelay          time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	StepDelay            time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
	PasteDelay           time.Duration `mapstructure:"paste_delay" yaml:"paste_delay"`
	SubmitSettle         time.Duration `mapstructure:"submit_settle" yaml:"submit_settle"`
	ProbeTimeout         time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	PromptProbeTimeout   time.Duration `mapstructure:"prompt_probe_timeout" yaml:"prompt_probe_timeout"`
	ResponseProbeTimeout time.Duration `mapstructure:"response_probe_timeout" yaml:"response_probe_timeout"`
	AnswerWarmup         time.Duration `mapstructure:"answer_warmup" yaml:"answer_warmup"`
	PollInterval         time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	PollRounds           int           `mapstructure:"poll_rounds" yaml:"poll_rounds"`
	MinAnswerChars       int           `mapstructure:"min_answer_chars" yaml:"min_answer_chars"`
}

// CoordinatorConfig converts to the notebook package's protocol settings.
func (n NotebookConfig) CoordinatorConfig() notebook.Config {
	return notebook.Config{
		TargetURL:            n.URL,
		Locale:               n.Locale,
		MaxDocumentChars:     n.MaxDocumentChars,
		TruncationMarker:     n.TruncationMarker,
		NavigationTimeout:    n.NavigationTimeout,
		SettleDelay:          n.SettleDelay,
		StepDelay:            n.StepDelay,
		PasteDelay:           n.PasteDelay,
		SubmitSettle:         n.SubmitSettle,
		ProbeTimeout:         n.ProbeTimeout,
		PromptProbeTimeout:   n.PromptProbeTimeout,
		ResponseProbeTimeout: n.ResponseProbeTimeout,
		AnswerWarmup:         n.AnswerWarmup,
		PollInterval:         n.PollInterval,
		PollRounds:           n.PollRounds,
		MinAnswerChars:       n.MinAnswerChars,
	}
}

type CollectorConfig struct {
	Channels      []schemas.Channel `mapstructure:"channels" yaml:"channels"`
	HoursLookback int               `mapstructure:"hours_lookback" yaml:"hours_lookback"`
	Concurrency   int               `mapstructure:"concurrency" yaml:"concurrency"`
	BaseURL       string            `mapstructure:"base_url" yaml:"base_url"`
}

type TranscriptConfig struct {
	Languages []string `mapstructure:"languages" yaml:"languages"`
	Dir       string   `mapstructure:"dir" yaml:"dir"`
	BaseURL   string   `mapstructure:"base_url" yaml:"base_url"`
}

type ReportConfig struct {
	Title     string `mapstructure:"title" yaml:"title"`
	OutputDir string `mapstructure:"output_dir" yaml:"output_dir"`
	Timezone  string `mapstructure:"timezone" yaml:"timezone"`
}

type NetworkConfig struct {
	UserAgent         string        `mapstructure:"user_agent" yaml:"user_agent"`
	AcceptLanguage    string        `mapstructure:"accept_language" yaml:"accept_language"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int           `mapstructure:"burst" yaml:"burst"`
}

func (n NetworkConfig) ClientConfig() network.ClientConfig {
	return network.ClientConfig{
		UserAgent:         n.UserAgent,
		AcceptLanguage:    n.AcceptLanguage,
		Timeout:           n.Timeout,
		RequestsPerSecond: n.RequestsPerSecond,
		Burst:             n.Burst,
	}
}

// DefaultChannels is the channel list the briefing follows out of the box.
var DefaultChannels = []schemas.Channel{
	{Name: "AI 투솔", Handle: "@ai_tusol"},
	{Name: "에듀타임즈", Handle: "@eduttime"},
	{Name: "어센딩인사이트", Handle: "@어센딩인사이트"},
	{Name: "Justin Sung", Handle: "@JustinSung"},
	{Name: "조코딩", Handle: "@jocoding"},
	{Name: "스탠리 스튜디오", Handle: "@stanleestudio"},
}

// NewDefaultConfig returns the configuration with every default applied.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ytbrief")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	b := browser.DefaultConfig()
	v.SetDefault("browser.headless", b.Headless)
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.window_width", b.WindowWidth)
	v.SetDefault("browser.window_height", b.WindowHeight)
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.launch_timeout", b.LaunchTimeout)
	v.SetDefault("browser.teardown_timeout", b.TeardownTimeout)
	v.SetDefault("browser.state_path", "~/.ytbrief/browser_state.json")
	v.SetDefault("browser.profile_dir", "~/.ytbrief/chrome_profile")
	v.SetDefault("browser.persona.user_agent", stealth.DefaultPersona.UserAgent)
	v.SetDefault("browser.persona.platform", stealth.DefaultPersona.Platform)
	v.SetDefault("browser.persona.languages", stealth.DefaultPersona.Languages)
	v.SetDefault("browser.persona.timezone", stealth.DefaultPersona.Timezone)
	v.SetDefault("browser.persona.locale", stealth.DefaultPersona.Locale)

	// -- Notebook --
	n := notebook.DefaultConfig()
	v.SetDefault("notebook.url", "https://notebooklm.google.com/notebook/11cecca0-e395-4669-b44d-36d1b107a0b1")
	v.SetDefault("notebook.locale", n.Locale)
	v.SetDefault("notebook.max_document_chars", n.MaxDocumentChars)
	v.SetDefault("notebook.truncation_marker", "")
	v.SetDefault("notebook.navigation_timeout", n.NavigationTimeout)
	v.SetDefault("notebook.settle_delay", n.SettleDelay)
	v.SetDefault("notebook.step_delay", n.StepDelay)
	v.SetDefault("notebook.paste_delay", n.PasteDelay)
	v.SetDefault("notebook.submit_settle", n.SubmitSettle)
	v.SetDefault("notebook.probe_timeout", n.ProbeTimeout)
	v.SetDefault("notebook.prompt_probe_timeout", n.PromptProbeTimeout)
	v.SetDefault("notebook.response_probe_timeout", n.ResponseProbeTimeout)
	v.SetDefault("notebook.answer_warmup", n.AnswerWarmup)
	v.SetDefault("notebook.poll_interval", n.PollInterval)
	v.SetDefault("notebook.poll_rounds", n.PollRounds)
	v.SetDefault("notebook.min_answer_chars", n.MinAnswerChars)

	// -- Collector --
	v.SetDefault("collector.channels", channelMaps(DefaultChannels))
	v.SetDefault("collector.hours_lookback", 24)
	v.SetDefault("collector.concurrency", 3)
	v.SetDefault("collector.base_url", "https://www.youtube.com")

	// -- Transcript --
	v.SetDefault("transcript.languages", []string{"ko", "en"})
	v.SetDefault("transcript.dir", "transcripts")
	v.SetDefault("transcript.base_url", "https://www.youtube.com")

	// -- Report --
	v.SetDefault("report.title", "유튜브 데일리 브리핑")
	v.SetDefault("report.output_dir", "output")
	v.SetDefault("report.timezone", "Asia/Seoul")

	// -- Network --
	nc := network.DefaultClientConfig()
	v.SetDefault("network.user_agent", nc.UserAgent)
	v.SetDefault("network.accept_language", nc.AcceptLanguage)
	v.SetDefault("network.timeout", nc.Timeout)
	v.SetDefault("network.requests_per_second", nc.RequestsPerSecond)
	v.SetDefault("network.burst", nc.Burst)
}

// channelMaps lets viper merge channel defaults with file and env values.
func channelMaps(channels []schemas.Channel) []map[string]any {
	out := make([]map[string]any, 0, len(channels))
	for _, c := range channels {
		out = append(out, map[string]any{"name": c.Name, "handle": c.Handle, "url": c.URL, "channel_id": c.ChannelID})
	}
	return out
}

// EnvPrefix namespaces environment overrides, e.g. YTBRIEF_NOTEBOOK_URL.
const EnvPrefix = "YTBRIEF"

// NewConfigFromViper binds environment overrides, then unmarshals and
// validates the configuration held by v.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) expandPaths() error {
	for _, p := range []*string{&c.Browser.StatePath, &c.Browser.ProfileDir, &c.Transcript.Dir, &c.Report.OutputDir, &c.Logger.LogFile} {
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("expanding %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	var errs []error
	if err := c.Notebook.CoordinatorConfig().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Collector.HoursLookback <= 0 {
		errs = append(errs, errors.New("collector.hours_lookback must be a positive integer"))
	}
	if c.Collector.Concurrency <= 0 {
		errs = append(errs, errors.New("collector.concurrency must be a positive integer"))
	}
	for i, ch := range c.Collector.Channels {
		if strings.TrimSpace(ch.Handle) == "" && strings.TrimSpace(ch.ChannelID) == "" {
			errs = append(errs, fmt.Errorf("collector.channels[%d] (%s) needs a handle or channel_id", i, ch.Name))
		}
	}
	if len(c.Transcript.Languages) == 0 {
		errs = append(errs, errors.New("transcript.languages must not be empty"))
	}
	if c.Report.OutputDir == "" {
		errs = append(errs, errors.New("report.output_dir is required"))
	}
	if c.Report.Timezone != "" {
		if _, err := time.LoadLocation(c.Report.Timezone); err != nil {
			errs = append(errs, fmt.Errorf("report.timezone: %w", err))
		}
	}
	if c.Browser.StatePath == "" {
		errs = append(errs, errors.New("browser.state_path is required"))
	}
	return errors.Join(errs...)
}

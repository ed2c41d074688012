package browser

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/ytbrief/internal/browser/stealth"
)

func TestLaunchFlags(t *testing.T) {
	cfg := DefaultConfig()
	flags := launchFlags(cfg, "/profiles/notebook")

	assert.Equal(t, false, flags["enable-automation"])
	assert.Equal(t, "AutomationControlled", flags["disable-blink-features"])
	assert.Equal(t, "1920,1080", flags["window-size"])
	assert.Equal(t, "/profiles/notebook", flags["user-data-dir"])
	assert.Equal(t, "new", flags["headless"])
	assert.Equal(t, stealth.DefaultPersona.UserAgent, flags["user-agent"])
	assert.Equal(t, "ko-KR", flags["lang"])
	assert.NotContains(t, flags, "no-sandbox")
}

func TestLaunchFlagsVisibleAndArgs(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Headless = false
	cfg.NoSandbox = true
	cfg.Args = []string{"--proxy-server=socks5://127.0.0.1:1080", "--disable-gpu", "--"}
	flags := launchFlags(cfg, "")

	assert.Equal(t, false, flags["headless"])
	assert.Equal(t, true, flags["no-sandbox"])
	assert.Equal(t, "socks5://127.0.0.1:1080", flags["proxy-server"])
	assert.Equal(t, true, flags["disable-gpu"])
	assert.NotContains(t, flags, "user-data-dir")
	assert.NotContains(t, flags, "")
}

func TestAllocatorOptionsAppendsFlags(t *testing.T) {
	cfg := DefaultConfig()
	base := len(allocatorOptions(cfg, ""))
	cfg.ExecPath = "/usr/bin/chromium"
	assert.Equal(t, base+1, len(allocatorOptions(cfg, "")))
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 1920, cfg.WindowWidth)
	assert.Equal(t, 1080, cfg.WindowHeight)
	assert.Positive(t, cfg.LaunchTimeout)
	assert.Positive(t, cfg.TeardownTimeout)
}

func TestMissingBrowser(t *testing.T) {
	_, err := exec.LookPath("definitely-not-a-chrome-binary")
	require.Error(t, err)
	assert.True(t, missingBrowser(fmt.Errorf("allocate: %w", err)))

	err = checkExecPath(filepath.Join(t.TempDir(), "chrome"))
	assert.True(t, missingBrowser(err))
	assert.False(t, missingBrowser(errors.New("websocket: bad handshake")))
	assert.NoError(t, checkExecPath(""))
}

package browser

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sync/semaphore"

	"github.com/xkilldash9x/ytbrief/internal/credential"
)

var (
	// browserSemaphore limits concurrent Chrome processes across the package.
	browserSemaphore     *semaphore.Weighted
	browserSemaphoreOnce sync.Once
)

const (
	maxBrowserProcesses       = 2
	defaultBrowserTestTimeout = 120 * time.Second
	testCleanupGracePeriod    = 1 * time.Second
	semaphoreAcquireTimeout   = 10 * time.Second
	minTestExecutionTime      = 10 * time.Second
)

// chromeEnv names an explicit Chrome binary for the integration tests.
const chromeEnv = "YTBRIEF_TEST_CHROME"

func getBrowserSemaphore() *semaphore.Weighted {
	browserSemaphoreOnce.Do(func() {
		n := int64(runtime.GOMAXPROCS(0))
		if n > maxBrowserProcesses {
			n = maxBrowserProcesses
		}
		browserSemaphore = semaphore.NewWeighted(n)
	})
	return browserSemaphore
}

// findTestChrome returns a Chrome binary or skips the test.
func findTestChrome(t *testing.T) string {
	t.Helper()
	if testing.Short() {
		t.Skip("browser integration tests are skipped in short mode")
	}
	if path := os.Getenv(chromeEnv); path != "" {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("%s=%s: %v", chromeEnv, path, err)
		}
		return path
	}
	for _, name := range []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser", "chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	t.Skipf("no Chrome binary found; set %s to run browser integration tests", chromeEnv)
	return ""
}

// testFixture is an isolated Chrome setup: its own profile directory, an
// empty saved session and a root context that ends before the test deadline.
type testFixture struct {
	Config  Config
	Handle  credential.Handle
	Logger  *zap.Logger
	RootCtx context.Context
}

type fixtureConfigurator func(*Config)

func createTestConfig(execPath string) Config {
	cfg := DefaultConfig()
	cfg.ExecPath = execPath
	cfg.Headless = true
	cfg.NoSandbox = true
	cfg.Args = []string{"--disable-gpu"}
	cfg.LaunchTimeout = 45 * time.Second
	cfg.TeardownTimeout = 10 * time.Second
	return cfg
}

func newTestFixture(t *testing.T, configurators ...fixtureConfigurator) *testFixture {
	t.Helper()
	execPath := findTestChrome(t)
	logger := zaptest.NewLogger(t).With(zap.String("test", t.Name()))

	now := time.Now()
	deadline, ok := t.Deadline()
	if !ok {
		deadline = now.Add(defaultBrowserTestTimeout)
	}
	rootDeadline := deadline.Add(-testCleanupGracePeriod)
	if rootDeadline.Sub(now) < minTestExecutionTime {
		t.Fatalf("Insufficient test timeout: %v left, need at least %v. Increase 'go test -timeout'.",
			deadline.Sub(now).Round(time.Millisecond), minTestExecutionTime+testCleanupGracePeriod)
	}
	rootCtx, rootCancel := context.WithDeadline(context.Background(), rootDeadline)
	t.Cleanup(rootCancel)

	cfg := createTestConfig(execPath)
	for _, configure := range configurators {
		configure(&cfg)
	}

	sem := getBrowserSemaphore()
	acquireCtx, acquireCancel := context.WithTimeout(rootCtx, semaphoreAcquireTimeout)
	err := sem.Acquire(acquireCtx, 1)
	acquireCancel()
	if err != nil {
		t.Fatalf("Failed to acquire browser semaphore: %v", err)
	}
	t.Cleanup(func() { sem.Release(1) })

	dir := t.TempDir()
	handle := credential.Handle{
		StatePath:  filepath.Join(dir, "browser_state.json"),
		ProfileDir: filepath.Join(dir, "profile"),
	}
	require.NoError(t, os.WriteFile(handle.StatePath, []byte(`{"cookies":[],"origins":[]}`), 0o600))
	logger.Debug("Using isolated profile.", zap.String("dir", handle.ProfileDir))

	return &testFixture{Config: cfg, Handle: handle, Logger: logger, RootCtx: rootCtx}
}

func (f *testFixture) orchestrator(targetURL string) *Orchestrator {
	return NewOrchestrator(f.Config, f.Handle, targetURL, f.Logger)
}

// createTestServer returns a server using the provided handler.
func createTestServer(t *testing.T, handler http.Handler) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

// createStaticTestServer returns a server that serves the given HTML content.
func createStaticTestServer(t *testing.T, htmlContent string) *httptest.Server {
	t.Helper()
	return createTestServer(t, staticHandler(htmlContent))
}

func staticHandler(htmlContent string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintln(w, htmlContent)
	})
}

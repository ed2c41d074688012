// Package network builds the HTTP client used for feed, page and caption fetches.
package network

import (
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"
	DefaultAcceptLanguage = "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7"
	DefaultRequestTimeout = 30 * time.Second
)

// ClientConfig configures NewClient.
type ClientConfig struct {
	UserAgent      string        `mapstructure:"user_agent" yaml:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language" yaml:"accept_language"`
	Timeout        time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// RequestsPerSecond paces outgoing requests; zero or less disables pacing.
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	Burst             int     `mapstructure:"burst" yaml:"burst"`
}

func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		UserAgent:         DefaultUserAgent,
		AcceptLanguage:    DefaultAcceptLanguage,
		Timeout:           DefaultRequestTimeout,
		RequestsPerSecond: 2,
		Burst:             2,
	}
}

// NewClient returns a client whose transport chain is
// pacing -> browser headers -> decompression -> net/http transport.
func NewClient(cfg ClientConfig, logger *zap.Logger) *http.Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	def := DefaultClientConfig()
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.AcceptLanguage == "" {
		cfg.AcceptLanguage = def.AcceptLanguage
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}

	base := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		// Decompressor owns content decoding.
		DisableCompression: true,
	}

	var rt http.RoundTripper = NewDecompressor(base)
	rt = &headerTransport{next: rt, userAgent: cfg.UserAgent, acceptLanguage: cfg.AcceptLanguage}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		rt = NewPacer(rt, rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst), logger)
	}

	jar, _ := cookiejar.New(nil)
	return &http.Client{Transport: rt, Timeout: cfg.Timeout, Jar: jar}
}

// headerTransport makes requests look like they come from a regular browser.
type headerTransport struct {
	next           http.RoundTripper
	userAgent      string
	acceptLanguage string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}
	if req.Header.Get("Accept-Language") == "" {
		req.Header.Set("Accept-Language", t.acceptLanguage)
	}
	return t.next.RoundTrip(req)
}

// Package stealth makes an automated Chrome look like a regular user's browser.
package stealth

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	json "github.com/json-iterator/go"
	"go.uber.org/zap"
)

//go:embed evasions.js
var evasionsScript string

// Persona defines the browser characteristics to emulate.
type Persona struct {
	UserAgent string   `mapstructure:"user_agent" yaml:"user_agent"`
	Platform  string   `mapstructure:"platform" yaml:"platform"`
	Languages []string `mapstructure:"languages" yaml:"languages"`
	Timezone  string   `mapstructure:"timezone" yaml:"timezone"`
	Locale    string   `mapstructure:"locale" yaml:"locale"`
}

// DefaultPersona matches a Korean desktop Chrome.
var DefaultPersona = Persona{
	UserAgent: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
	Platform:  "Win32",
	Languages: []string{"ko-KR", "ko", "en-US", "en"},
	Timezone:  "Asia/Seoul",
	Locale:    "ko-KR",
}

// AcceptLanguage renders Languages as an Accept-Language header with
// decreasing quality values.
func (p Persona) AcceptLanguage() string {
	parts := make([]string, 0, len(p.Languages))
	for i, lang := range p.Languages {
		if i == 0 {
			parts = append(parts, lang)
			continue
		}
		q := 1.0 - 0.1*float64(i)
		if q < 0.1 {
			q = 0.1
		}
		parts = append(parts, fmt.Sprintf("%s;q=%.1f", lang, q))
	}
	return strings.Join(parts, ",")
}

// Script returns the evasion script with the persona bound to it.
func (p Persona) Script() (string, error) {
	data, err := json.Marshal(map[string]any{
		"languages": p.Languages,
		"platform":  p.Platform,
	})
	if err != nil {
		return "", fmt.Errorf("encoding persona: %w", err)
	}
	return "const persona = " + string(data) + ";\n" + evasionsScript, nil
}

// Apply builds the CDP actions that install the persona on the current target.
// Empty persona fields leave the browser default in place.
func Apply(p Persona, logger *zap.Logger) chromedp.Tasks {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("Applying browser persona.", zap.String("user_agent", p.UserAgent), zap.String("locale", p.Locale))

	var tasks chromedp.Tasks
	if p.UserAgent != "" {
		ua := emulation.SetUserAgentOverride(p.UserAgent)
		if len(p.Languages) > 0 {
			ua = ua.WithAcceptLanguage(p.AcceptLanguage())
		}
		if p.Platform != "" {
			ua = ua.WithPlatform(p.Platform)
		}
		tasks = append(tasks, ua)
	}

	tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
		script, err := p.Script()
		if err != nil {
			return err
		}
		if _, err := page.AddScriptToEvaluateOnNewDocument(script).Do(ctx); err != nil {
			return fmt.Errorf("failed to inject evasions script: %w", err)
		}
		return nil
	}))

	if p.Timezone != "" {
		tasks = append(tasks, emulation.SetTimezoneOverride(p.Timezone))
	}
	if p.Locale != "" {
		tasks = append(tasks, emulation.SetLocaleOverride().WithLocale(p.Locale))
	}
	return tasks
}

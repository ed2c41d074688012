package notebook

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the tunables of the notebook protocols. Zero durations are
// replaced by defaults in NewCoordinator; TargetURL has no default.
type Config struct {
	TargetURL string `mapstructure:"target_url" yaml:"target_url"`
	// Locale selects the briefing prompt and truncation marker ("ko" or "en").
	Locale string `mapstructure:"locale" yaml:"locale"`

	MaxDocumentChars int    `mapstructure:"max_document_chars" yaml:"max_document_chars"`
	TruncationMarker string `mapstructure:"truncation_marker" yaml:"truncation_marker"`

	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	SettleDelay       time.Duration `mapstructure:"settle_delay" yaml:"settle_delay"`
	StepDelay         time.Duration `mapstructure:"step_delay" yaml:"step_delay"`
	PasteDelay        time.Duration `mapstructure:"paste_delay" yaml:"paste_delay"`
	SubmitSettle      time.Duration `mapstructure:"submit_settle" yaml:"submit_settle"`

	ProbeTimeout         time.Duration `mapstructure:"probe_timeout" yaml:"probe_timeout"`
	PromptProbeTimeout   time.Duration `mapstructure:"prompt_probe_timeout" yaml:"prompt_probe_timeout"`
	ResponseProbeTimeout time.Duration `mapstructure:"response_probe_timeout" yaml:"response_probe_timeout"`

	AnswerWarmup   time.Duration `mapstructure:"answer_warmup" yaml:"answer_warmup"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
	PollRounds     int           `mapstructure:"poll_rounds" yaml:"poll_rounds"`
	MinAnswerChars int           `mapstructure:"min_answer_chars" yaml:"min_answer_chars"`

	// Sleep replaces real waits, mainly in tests.
	Sleep Sleeper `mapstructure:"-" yaml:"-"`
}

// DefaultConfig returns the timings the notebook UI is known to tolerate.
func DefaultConfig() Config {
	return Config{
		Locale:               LocaleKorean,
		MaxDocumentChars:     200000,
		NavigationTimeout:    30 * time.Second,
		SettleDelay:          3 * time.Second,
		StepDelay:            2 * time.Second,
		PasteDelay:           1 * time.Second,
		SubmitSettle:         3 * time.Second,
		ProbeTimeout:         2 * time.Second,
		PromptProbeTimeout:   3 * time.Second,
		ResponseProbeTimeout: 1 * time.Second,
		AnswerWarmup:         5 * time.Second,
		PollInterval:         5 * time.Second,
		PollRounds:           12,
		MinAnswerChars:       10,
	}
}

// withDefaults fills unset fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Locale == "" {
		c.Locale = d.Locale
	}
	if c.MaxDocumentChars <= 0 {
		c.MaxDocumentChars = d.MaxDocumentChars
	}
	if c.TruncationMarker == "" {
		c.TruncationMarker = TruncationMarker(c.Locale)
	}
	durations := []struct {
		dst *time.Duration
		def time.Duration
	}{
		{&c.NavigationTimeout, d.NavigationTimeout},
		{&c.SettleDelay, d.SettleDelay},
		{&c.StepDelay, d.StepDelay},
		{&c.PasteDelay, d.PasteDelay},
		{&c.SubmitSettle, d.SubmitSettle},
		{&c.ProbeTimeout, d.ProbeTimeout},
		{&c.PromptProbeTimeout, d.PromptProbeTimeout},
		{&c.ResponseProbeTimeout, d.ResponseProbeTimeout},
		{&c.AnswerWarmup, d.AnswerWarmup},
		{&c.PollInterval, d.PollInterval},
	}
	for _, f := range durations {
		if *f.dst <= 0 {
			*f.dst = f.def
		}
	}
	if c.PollRounds <= 0 {
		c.PollRounds = d.PollRounds
	}
	if c.MinAnswerChars <= 0 {
		c.MinAnswerChars = d.MinAnswerChars
	}
	if c.Sleep == nil {
		c.Sleep = Sleep
	}
	return c
}

// Validate checks the fields that have no sensible default.
func (c Config) Validate() error {
	if c.TargetURL == "" {
		return errors.New("notebook target_url is required")
	}
	switch c.Locale {
	case "", LocaleKorean, LocaleEnglish:
	default:
		return fmt.Errorf("unsupported notebook locale %q", c.Locale)
	}
	return nil
}

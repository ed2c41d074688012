// Package report renders the daily briefing as Markdown, an HTML
// infographic and an image-generation prompt.
package report

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/xkilldash9x/ytbrief/api/schemas"
	"github.com/xkilldash9x/ytbrief/internal/config"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// Accent colours cycle across channel cards.
var accentColors = []string{"#6366f1", "#ec4899", "#14b8a6", "#f59e0b", "#8b5cf6", "#ef4444"}

const dateLayout = "2006-01-02"

// Renderer writes report artifacts into <output_dir>/<date>/.
type Renderer struct {
	title     string
	outputDir string
	loc       *time.Location
	now       func() time.Time

	markdown    *template.Template
	infographic *htmltemplate.Template
	md          goldmark.Markdown
	policy      *bluemonday.Policy
	logger      *zap.Logger
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithClock replaces time.Now for dating the report.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// New parses the embedded templates and returns a Renderer.
func New(cfg config.ReportConfig, logger *zap.Logger, opts ...Option) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	loc := time.Local
	if cfg.Timezone != "" {
		l, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("loading timezone %q: %w", cfg.Timezone, err)
		}
		loc = l
	}

	printer := message.NewPrinter(language.Korean)
	funcs := map[string]any{
		"comma": func(n int) string { return printer.Sprintf("%d", n) },
		"when": func(t time.Time) string {
			if t.IsZero() {
				return "알 수 없음"
			}
			return t.In(loc).Format("2006-01-02 15:04")
		},
	}

	md, err := template.New("briefing.md.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/briefing.md.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing markdown template: %w", err)
	}
	html, err := htmltemplate.New("infographic.html.tmpl").Funcs(funcs).ParseFS(templateFS, "templates/infographic.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing infographic template: %w", err)
	}

	r := &Renderer{
		title:       cfg.Title,
		outputDir:   cfg.OutputDir,
		loc:         loc,
		now:         time.Now,
		markdown:    md,
		infographic: html,
		md:          goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:      bluemonday.UGCPolicy(),
		logger:      logger.Named("report"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Date is the report date in the configured timezone.
func (r *Renderer) Date() string {
	return r.now().In(r.loc).Format(dateLayout)
}

// Dir is the dated output directory.
func (r *Renderer) Dir() string {
	return filepath.Join(r.outputDir, r.Date())
}

type channelGroup struct {
	Name   string
	Color  htmltemplate.CSS
	Videos []schemas.Video
}

type view struct {
	Title        string
	Date         string
	Generated    string
	ChannelCount int
	VideoCount   int
	TotalChars   int
	Analysis     string
	AnalysisHTML htmltemplate.HTML
	Channels     []channelGroup
}

// groupByChannel keeps channels in order of first appearance.
func groupByChannel(videos []schemas.Video) []channelGroup {
	var groups []channelGroup
	index := make(map[string]int)
	for _, v := range videos {
		name := v.ChannelName
		if name == "" {
			name = "Unknown"
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, channelGroup{
				Name:  name,
				Color: htmltemplate.CSS(accentColors[i%len(accentColors)]),
			})
		}
		groups[i].Videos = append(groups[i].Videos, v)
	}
	return groups
}

func (r *Renderer) newView(videos []schemas.Video, analysis string) view {
	now := r.now().In(r.loc)
	v := view{
		Title:      r.title,
		Date:       now.Format(dateLayout),
		Generated:  now.Format("2006-01-02 15:04:05"),
		VideoCount: len(videos),
		Analysis:   analysis,
		Channels:   groupByChannel(videos),
	}
	v.ChannelCount = len(v.Channels)
	for _, video := range videos {
		v.TotalChars += video.TranscriptLength()
	}
	return v
}

// Markdown writes <date>-briefing.md and returns its path.
func (r *Renderer) Markdown(videos []schemas.Video, analysis string) (string, error) {
	var buf bytes.Buffer
	if err := r.markdown.Execute(&buf, r.newView(videos, analysis)); err != nil {
		return "", fmt.Errorf("rendering markdown report: %w", err)
	}
	return r.write(r.Date()+"-briefing.md", buf.Bytes())
}

// Infographic writes <date>-infographic.html and returns its path. The
// analysis is rendered from Markdown and sanitized before embedding.
func (r *Renderer) Infographic(videos []schemas.Video, analysis string) (string, error) {
	v := r.newView(videos, analysis)
	if analysis != "" {
		safe, err := r.renderAnalysis(analysis)
		if err != nil {
			return "", err
		}
		v.AnalysisHTML = safe
	}

	var buf bytes.Buffer
	if err := r.infographic.Execute(&buf, v); err != nil {
		return "", fmt.Errorf("rendering infographic: %w", err)
	}
	return r.write(r.Date()+"-infographic.html", buf.Bytes())
}

func (r *Renderer) renderAnalysis(analysis string) (htmltemplate.HTML, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(analysis), &buf); err != nil {
		return "", fmt.Errorf("converting analysis markdown: %w", err)
	}
	return htmltemplate.HTML(r.policy.SanitizeBytes(buf.Bytes())), nil
}

func (r *Renderer) write(name string, data []byte) (string, error) {
	dir := r.Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	r.logger.Info("Report artifact written.", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}

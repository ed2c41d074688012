// Package transcript pulls caption text for videos and stores it on disk.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/xkilldash9x/ytbrief/api/schemas"
	"github.com/xkilldash9x/ytbrief/internal/config"
)

var (
	// ErrNoTranscript means the video exposes no usable caption track.
	ErrNoTranscript = errors.New("no transcript available")
	// ErrCaptionsDisabled means the uploader turned captions off.
	ErrCaptionsDisabled = errors.New("captions are disabled for this video")
)

const maxBodyBytes = 16 << 20

// Transcript is the flattened caption text of one video.
type Transcript struct {
	Text      string
	Language  string
	Generated bool
}

// Extractor fetches captions over HTTP.
type Extractor struct {
	client    *http.Client
	baseURL   string
	languages []string
	dir       string
	logger    *zap.Logger
}

// New builds an Extractor. client should come from network.NewClient.
func New(cfg config.TranscriptConfig, client *http.Client, logger *zap.Logger) *Extractor {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://www.youtube.com"
	}
	return &Extractor{
		client:    client,
		baseURL:   base,
		languages: cfg.Languages,
		dir:       cfg.Dir,
		logger:    logger.Named("transcript"),
	}
}

// Extract returns the caption text of videoID in the best available
// language.
func (e *Extractor) Extract(ctx context.Context, videoID string) (Transcript, error) {
	watchURL := e.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	page, err := e.get(ctx, watchURL)
	if err != nil {
		return Transcript{}, err
	}
	tracks, err := parseTracks(page)
	if err != nil {
		return Transcript{}, err
	}
	track, _ := SelectTrack(tracks, e.languages)

	data, err := e.get(ctx, track.BaseURL)
	if err != nil {
		return Transcript{}, fmt.Errorf("fetching %s captions: %w", track.LanguageCode, err)
	}
	text, err := parseTimedText(data)
	if err != nil {
		return Transcript{}, err
	}
	if text == "" {
		return Transcript{}, ErrNoTranscript
	}
	return Transcript{Text: text, Language: track.LanguageCode, Generated: track.Generated()}, nil
}

func (e *Extractor) get(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: unexpected status %d", target, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
}

// Path is where Save writes the transcript of videoID.
func (e *Extractor) Path(videoID string) string {
	return filepath.Join(e.dir, videoID+".txt")
}

// Save writes the video's transcript with a metadata header and returns
// the file path.
func (e *Extractor) Save(v schemas.Video) (string, error) {
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating transcript dir: %w", err)
	}
	published := "Unknown"
	if !v.Published.IsZero() {
		published = v.Published.Format("2006-01-02T15:04:05Z07:00")
	}
	language := v.TranscriptLanguage
	if language == "" {
		language = "Unknown"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", v.Title)
	fmt.Fprintf(&b, "채널: %s\n", v.ChannelName)
	fmt.Fprintf(&b, "URL: %s\n", v.URL)
	fmt.Fprintf(&b, "게시일: %s\n", published)
	fmt.Fprintf(&b, "언어: %s\n", language)
	b.WriteString("---\n\n")
	b.WriteString(v.Transcript)

	path := e.Path(v.VideoID)
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("writing transcript: %w", err)
	}
	return path, nil
}

// ExtractAll extracts transcripts one video at a time and returns only the
// videos that got one. Per-video failures are logged and skipped; the
// error is non-nil only when ctx ends, alongside what was gathered so far.
func (e *Extractor) ExtractAll(ctx context.Context, videos []schemas.Video) ([]schemas.Video, error) {
	e.logger.Info("Extracting transcripts.", zap.Int("videos", len(videos)))

	var out []schemas.Video
	for i, v := range videos {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		log := e.logger.With(zap.String("video_id", v.VideoID), zap.String("title", v.Title), zap.Int("index", i+1))

		t, err := e.Extract(ctx, v.VideoID)
		if err != nil {
			if ctx.Err() != nil {
				return out, ctx.Err()
			}
			switch {
			case errors.Is(err, ErrCaptionsDisabled):
				log.Warn("Captions disabled, skipping video.")
			case errors.Is(err, ErrNoTranscript):
				log.Warn("No transcript, skipping video.")
			default:
				log.Warn("Transcript extraction failed, skipping video.", zap.Error(err))
			}
			continue
		}

		v.Transcript = t.Text
		v.TranscriptLanguage = t.Language
		if e.dir != "" {
			if path, err := e.Save(v); err != nil {
				log.Warn("Could not save transcript.", zap.Error(err))
			} else {
				v.TranscriptFile = path
			}
		}
		log.Info("Transcript extracted.", zap.String("language", t.Language), zap.Bool("generated", t.Generated), zap.Int("chars", utf8.RuneCountInString(t.Text)))
		out = append(out, v)
	}

	e.logger.Info("Transcript extraction finished.", zap.Int("succeeded", len(out)), zap.Int("total", len(videos)))
	return out, nil
}

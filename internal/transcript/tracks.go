package transcript

import (
	"bytes"
	"fmt"
	"strings"

	json "github.com/json-iterator/go"
)

// Track is one caption track advertised by the watch page.
type Track struct {
	BaseURL      string    `json:"baseUrl"`
	LanguageCode string    `json:"languageCode"`
	Kind         string    `json:"kind"`
	Name         trackName `json:"name"`
}

type trackName struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

// Generated reports whether the track is automatic speech recognition.
func (t Track) Generated() bool {
	return t.Kind == "asr"
}

// Label is the human-readable track name.
func (t Track) Label() string {
	if t.Name.SimpleText != "" {
		return t.Name.SimpleText
	}
	var b strings.Builder
	for _, r := range t.Name.Runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

func (t Track) matches(lang string) bool {
	code := strings.ToLower(t.LanguageCode)
	lang = strings.ToLower(lang)
	return code == lang || strings.HasPrefix(code, lang+"-")
}

type playerResponse struct {
	PlayabilityStatus struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
	Captions *struct {
		Renderer struct {
			CaptionTracks []Track `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

var playerResponseMarker = []byte("ytInitialPlayerResponse")

// parseTracks decodes the caption track list embedded in a watch page.
func parseTracks(page []byte) ([]Track, error) {
	idx := bytes.Index(page, playerResponseMarker)
	if idx < 0 {
		return nil, fmt.Errorf("player response missing from watch page: %w", ErrNoTranscript)
	}
	rest := page[idx+len(playerResponseMarker):]
	start := bytes.IndexByte(rest, '{')
	if start < 0 {
		return nil, fmt.Errorf("player response missing from watch page: %w", ErrNoTranscript)
	}

	var pr playerResponse
	// The decoder stops after the first complete value, ignoring the
	// trailing script.
	if err := json.NewDecoder(bytes.NewReader(rest[start:])).Decode(&pr); err != nil {
		return nil, fmt.Errorf("decoding player response: %w", err)
	}
	if pr.Captions == nil {
		if pr.PlayabilityStatus.Status != "" && pr.PlayabilityStatus.Status != "OK" {
			return nil, fmt.Errorf("video unplayable (%s: %s): %w", pr.PlayabilityStatus.Status, pr.PlayabilityStatus.Reason, ErrNoTranscript)
		}
		return nil, ErrCaptionsDisabled
	}
	tracks := pr.Captions.Renderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, ErrNoTranscript
	}
	return tracks, nil
}

// SelectTrack picks a manual track in language priority order, then a
// generated one in the same order, then the first track listed.
func SelectTrack(tracks []Track, languages []string) (Track, bool) {
	if len(tracks) == 0 {
		return Track{}, false
	}
	for _, generated := range []bool{false, true} {
		for _, lang := range languages {
			for _, t := range tracks {
				if t.Generated() == generated && t.matches(lang) {
					return t, true
				}
			}
		}
	}
	return tracks[0], true
}

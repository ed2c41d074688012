package notebook

import (
	"unicode/utf8"

	"github.com/xkilldash9x/ytbrief/api/schemas"
)

// Document is a text source injected into the notebook.
type Document struct {
	Title string
	Body  string

	truncated bool
}

// Size is the body length in characters.
func (d Document) Size() int {
	return utf8.RuneCountInString(d.Body)
}

// Truncated reports whether Truncate already cut this document.
func (d Document) Truncated() bool {
	return d.truncated
}

// Truncate cuts the body to max characters and appends marker. Documents
// within the limit, or already truncated, are returned unchanged.
func Truncate(d Document, max int, marker string) (Document, bool) {
	if d.truncated || max <= 0 || d.Size() <= max {
		return d, false
	}
	cut, n := 0, 0
	for i := range d.Body {
		if n == max {
			cut = i
			break
		}
		n++
	}
	d.Body = d.Body[:cut] + marker
	d.truncated = true
	return d, true
}

// DocumentsFromVideos turns videos with transcripts into notebook sources.
func DocumentsFromVideos(videos []schemas.Video) []Document {
	docs := make([]Document, 0, len(videos))
	for _, v := range videos {
		if !v.HasTranscript() {
			continue
		}
		docs = append(docs, Document{Title: v.SourceTitle(), Body: v.Transcript})
	}
	return docs
}

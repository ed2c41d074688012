package transcript

import (
	"fmt"
	"html"
	"strings"

	"github.com/beevik/etree"
)

// parseTimedText flattens a timed-text document into one line of text.
// Both the legacy <transcript><text> layout and the srv3 <timedtext><body><p>
// layout are read.
func parseTimedText(data []byte) (string, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return "", fmt.Errorf("parsing timed text: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return "", fmt.Errorf("parsing timed text: empty document")
	}

	var segments []*etree.Element
	switch root.Tag {
	case "transcript":
		segments = root.SelectElements("text")
	case "timedtext":
		if body := root.SelectElement("body"); body != nil {
			segments = body.SelectElements("p")
		}
	default:
		return "", fmt.Errorf("parsing timed text: unexpected root <%s>", root.Tag)
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		// Caption text is often entity-escaped twice.
		text := strings.Join(strings.Fields(html.UnescapeString(innerText(seg))), " ")
		if text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " "), nil
}

func innerText(e *etree.Element) string {
	var b strings.Builder
	b.WriteString(e.Text())
	for _, child := range e.ChildElements() {
		b.WriteString(innerText(child))
		b.WriteString(child.Tail())
	}
	return b.String()
}

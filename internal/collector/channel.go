package collector

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// ErrChannelNotFound means the channel page carried no recognizable id.
var ErrChannelNotFound = errors.New("channel id not found")

var (
	channelIDPattern = regexp.MustCompile(`^UC[A-Za-z0-9_-]{22}$`)
	channelPathID    = regexp.MustCompile(`/channel/(UC[A-Za-z0-9_-]{22})`)

	// Tried in order against the raw page when the markup yields nothing.
	channelIDFallbacks = []*regexp.Regexp{
		regexp.MustCompile(`"channelId"\s*:\s*"(UC[A-Za-z0-9_-]{22})"`),
		regexp.MustCompile(`<meta\s+itemprop="channelId"\s+content="(UC[A-Za-z0-9_-]{22})"`),
		regexp.MustCompile(`"externalId"\s*:\s*"(UC[A-Za-z0-9_-]{22})"`),
		channelPathID,
	}
)

// IsChannelID reports whether s has the shape of a channel id.
func IsChannelID(s string) bool {
	return channelIDPattern.MatchString(s)
}

// ResolveChannelID maps an @handle to its channel id by reading the public
// channel page.
func (c *Collector) ResolveChannelID(ctx context.Context, handle string) (string, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(handle), "@")
	if clean == "" {
		return "", fmt.Errorf("empty channel handle: %w", ErrChannelNotFound)
	}
	if IsChannelID(clean) {
		return clean, nil
	}

	pageURL := c.baseURL + "/" + url.PathEscape("@"+clean)
	body, err := get(ctx, c.client, pageURL)
	if err != nil {
		return "", err
	}

	if id := channelIDFromMarkup(body); id != "" {
		return id, nil
	}
	for _, re := range channelIDFallbacks {
		if m := re.FindSubmatch(body); m != nil {
			return string(m[1]), nil
		}
	}
	return "", fmt.Errorf("%s: %w", handle, ErrChannelNotFound)
}

// channelIDFromMarkup scans <head> metadata: the channelId microdata, the
// canonical link and og:url, in that order of preference.
func channelIDFromMarkup(body []byte) string {
	var itemprop, canonical, ogURL string

	z := html.NewTokenizer(bytes.NewReader(body))
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			return firstNonEmpty(itemprop, canonical, ogURL)
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			if !hasAttr {
				if string(name) == "body" {
					return firstNonEmpty(itemprop, canonical, ogURL)
				}
				continue
			}
			attrs := attributes(z)
			switch string(name) {
			case "meta":
				if attrs["itemprop"] == "channelId" && IsChannelID(attrs["content"]) && itemprop == "" {
					itemprop = attrs["content"]
				}
				if attrs["property"] == "og:url" && ogURL == "" {
					ogURL = idFromURL(attrs["content"])
				}
			case "link":
				if attrs["rel"] == "canonical" && canonical == "" {
					canonical = idFromURL(attrs["href"])
				}
			}
		}
	}
}

func attributes(z *html.Tokenizer) map[string]string {
	attrs := make(map[string]string)
	for {
		key, val, more := z.TagAttr()
		attrs[string(key)] = string(val)
		if !more {
			return attrs
		}
	}
}

func idFromURL(s string) string {
	if m := channelPathID.FindStringSubmatch(s); m != nil {
		return m[1]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

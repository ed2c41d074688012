package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/xkilldash9x/ytbrief/api/schemas"
)

// FeedURL is the public Atom feed for a channel.
func (c *Collector) FeedURL(channelID string) string {
	return c.baseURL + "/feeds/videos.xml?channel_id=" + url.QueryEscape(channelID)
}

// FetchFeed downloads and parses the channel's Atom feed.
func (c *Collector) FetchFeed(ctx context.Context, channelID string) ([]schemas.Video, error) {
	body, err := get(ctx, c.client, c.FeedURL(channelID))
	if err != nil {
		return nil, err
	}
	return ParseFeed(body)
}

// ParseFeed turns an Atom document into videos. Entries missing a video id
// or title are skipped; Published stays zero when the date does not parse.
func ParseFeed(data []byte) ([]schemas.Video, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	root := doc.Root()
	if root == nil || root.Tag != "feed" {
		return nil, fmt.Errorf("parsing feed: root element is not <feed>")
	}

	var videos []schemas.Video
	for _, entry := range root.SelectElements("entry") {
		id := childText(entry, "videoId")
		title := childText(entry, "title")
		if id == "" || title == "" {
			continue
		}

		v := schemas.Video{
			VideoID: id,
			Title:   title,
			URL:     schemas.WatchURL(id),
		}
		if link := entry.SelectElement("link"); link != nil {
			if href := link.SelectAttrValue("href", ""); href != "" {
				v.URL = href
			}
		}
		if published := childText(entry, "published"); published != "" {
			if t, err := time.Parse(time.RFC3339, published); err == nil {
				v.Published = t
			}
		}
		if group := entry.SelectElement("group"); group != nil {
			v.Description = childText(group, "description")
			if thumb := group.SelectElement("thumbnail"); thumb != nil {
				v.Thumbnail = thumb.SelectAttrValue("url", "")
			}
		}
		videos = append(videos, v)
	}
	return videos, nil
}

func childText(e *etree.Element, tag string) string {
	if c := e.SelectElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}

// FilterRecent keeps videos published within the last hours before now.
// Videos without a publish time are dropped.
func FilterRecent(videos []schemas.Video, hours int, now time.Time) []schemas.Video {
	cutoff := now.Add(-time.Duration(hours) * time.Hour)
	var recent []schemas.Video
	for _, v := range videos {
		if v.Published.IsZero() || v.Published.Before(cutoff) {
			continue
		}
		recent = append(recent, v)
	}
	return recent
}

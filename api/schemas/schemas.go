// Package schemas holds the data records passed between pipeline phases.
package schemas

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Channel is one configured YouTube channel.
type Channel struct {
	Name      string `json:"name" mapstructure:"name" yaml:"name"`
	Handle    string `json:"handle" mapstructure:"handle" yaml:"handle"`
	URL       string `json:"url,omitempty" mapstructure:"url" yaml:"url"`
	ChannelID string `json:"channel_id,omitempty" mapstructure:"channel_id" yaml:"channel_id"`
}

// Video is a feed entry, enriched with its channel and, after extraction, its transcript.
type Video struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Description string    `json:"description,omitempty"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	Published   time.Time `json:"published"`

	ChannelName   string `json:"channel_name"`
	ChannelHandle string `json:"channel_handle"`
	ChannelID     string `json:"channel_id"`

	Transcript         string `json:"transcript,omitempty"`
	TranscriptLanguage string `json:"transcript_language,omitempty"`
	TranscriptFile     string `json:"transcript_file,omitempty"`
}

// HasTranscript reports whether a non-empty transcript was attached.
func (v Video) HasTranscript() bool {
	return v.Transcript != ""
}

// TranscriptLength is the transcript size in characters.
func (v Video) TranscriptLength() int {
	return utf8.RuneCountInString(v.Transcript)
}

// SourceTitle is the label used when the transcript is injected as a notebook source.
func (v Video) SourceTitle() string {
	return fmt.Sprintf("[%s] %s", v.ChannelName, v.Title)
}

// WatchURL builds the canonical watch URL for a video id.
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

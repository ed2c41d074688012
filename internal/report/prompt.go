package report

import (
	"fmt"
	"strings"

	json "github.com/json-iterator/go"

	"github.com/xkilldash9x/ytbrief/api/schemas"
)

const (
	maxPromptTopics  = 8
	summaryPrefixLen = 200
)

// ImagePrompt is the payload handed to an image generator.
type ImagePrompt struct {
	Prompt          string              `json:"prompt"`
	Date            string              `json:"date"`
	OutputDir       string              `json:"output_dir"`
	ImageName       string              `json:"image_name"`
	Channels        map[string][]string `json:"channels"`
	VideoCount      int                 `json:"video_count"`
	AnalysisSummary string              `json:"analysis_summary"`
}

// BuildImagePrompt assembles the prompt without touching disk.
func (r *Renderer) BuildImagePrompt(videos []schemas.Video, analysis string) ImagePrompt {
	date := r.Date()
	groups := groupByChannel(videos)

	channels := make(map[string][]string, len(groups))
	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
		titles := make([]string, 0, len(g.Videos))
		for _, v := range g.Videos {
			titles = append(titles, v.Title)
		}
		channels[g.Name] = titles
	}

	var topics []string
	for _, v := range videos {
		if v.Title != "" && len(topics) < maxPromptTopics {
			topics = append(topics, v.Title)
		}
	}

	prompt := fmt.Sprintf("Create a modern, sleek infographic poster for a 'YouTube Daily Briefing' dated %s. "+
		"Dark gradient background (deep purple to navy). "+
		"Header: '%s' in large gradient text (purple to pink). "+
		"Show %d videos from %d channels: %s. "+
		"Include colorful stat cards showing channel count, video count. "+
		"Topics covered: %s. "+
		"Style: glassmorphism cards, modern sans-serif typography, vibrant accent colors "+
		"(indigo, pink, teal, amber). No text overlap. Clean layout. "+
		"Korean text labels. Professional data visualization aesthetic.",
		date, r.title, len(videos), len(groups), strings.Join(names, ", "), strings.Join(topics, "; "))

	summary := []rune(analysis)
	if len(summary) > summaryPrefixLen {
		summary = summary[:summaryPrefixLen]
	}

	return ImagePrompt{
		Prompt:          prompt,
		Date:            date,
		OutputDir:       r.Dir(),
		ImageName:       date + "-infographic",
		Channels:        channels,
		VideoCount:      len(videos),
		AnalysisSummary: string(summary),
	}
}

// ImagePrompt writes <date>-ai-prompt.json and returns the payload and path.
func (r *Renderer) ImagePrompt(videos []schemas.Video, analysis string) (ImagePrompt, string, error) {
	p := r.BuildImagePrompt(videos, analysis)
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return p, "", fmt.Errorf("encoding image prompt: %w", err)
	}
	path, err := r.write(p.Date+"-ai-prompt.json", data)
	return p, path, err
}

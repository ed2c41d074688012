package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	json "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/ytbrief/api/schemas"
	"github.com/xkilldash9x/ytbrief/internal/config"
)

// 2026-03-01 23:30 UTC is already 2026-03-02 in Seoul.
var fixedNow = time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

func newTestRenderer(t *testing.T) (*Renderer, string) {
	t.Helper()
	out := t.TempDir()
	r, err := New(config.ReportConfig{
		Title:     "유튜브 데일리 브리핑",
		OutputDir: out,
		Timezone:  "Asia/Seoul",
	}, zaptest.NewLogger(t), WithClock(func() time.Time { return fixedNow }))
	require.NoError(t, err)
	return r, out
}

func sampleVideos() []schemas.Video {
	return []schemas.Video{
		{VideoID: "a1", Title: "GPT 새 기능 정리", URL: schemas.WatchURL("a1"), ChannelName: "조코딩", Published: fixedNow.Add(-time.Hour), Transcript: strings.Repeat("가", 1500), TranscriptLanguage: "ko"},
		{VideoID: "b1", Title: "Study smarter <not harder>", URL: schemas.WatchURL("b1"), ChannelName: "Justin Sung", Transcript: "short", TranscriptLanguage: "en"},
		{VideoID: "a2", Title: "코딩 없이 앱 만들기", URL: schemas.WatchURL("a2"), ChannelName: "조코딩", Transcript: "본문", TranscriptLanguage: "ko"},
	}
}

func TestDirUsesConfiguredTimezone(t *testing.T) {
	r, out := newTestRenderer(t)
	assert.Equal(t, "2026-03-02", r.Date())
	assert.Equal(t, filepath.Join(out, "2026-03-02"), r.Dir())
}

func TestNewRejectsUnknownTimezone(t *testing.T) {
	_, err := New(config.ReportConfig{OutputDir: t.TempDir(), Timezone: "Nowhere/Land"}, nil)
	assert.Error(t, err)
}

func TestGroupByChannel(t *testing.T) {
	groups := groupByChannel(sampleVideos())
	require.Len(t, groups, 2)
	assert.Equal(t, "조코딩", groups[0].Name)
	assert.Len(t, groups[0].Videos, 2)
	assert.Equal(t, "#6366f1", string(groups[0].Color))
	assert.Equal(t, "Justin Sung", groups[1].Name)
	assert.Equal(t, "#ec4899", string(groups[1].Color))

	seven := make([]schemas.Video, 7)
	for i := range seven {
		seven[i] = schemas.Video{ChannelName: string(rune('A' + i))}
	}
	assert.Equal(t, "#6366f1", string(groupByChannel(seven)[6].Color))
}

func TestMarkdown(t *testing.T) {
	r, out := newTestRenderer(t)

	path, err := r.Markdown(sampleVideos(), "## 핵심 요약\n- 요점 하나")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "2026-03-02", "2026-03-02-briefing.md"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)
	assert.True(t, strings.HasPrefix(doc, "# 유튜브 데일리 브리핑\n"))
	assert.Contains(t, doc, "채널 2개 · 영상 3개 · 자막 1,507자")
	assert.Contains(t, doc, "## 핵심 요약\n- 요점 하나")
	assert.Contains(t, doc, "### 조코딩 (2개)")
	assert.Contains(t, doc, "- [GPT 새 기능 정리](https://www.youtube.com/watch?v=a1)")
	assert.Contains(t, doc, "게시: 2026-03-02 07:30 · 자막 1,500자 (ko)")
	assert.Less(t, strings.Index(doc, "### 조코딩"), strings.Index(doc, "### Justin Sung"))
}

func TestMarkdownWithoutAnalysisOrVideos(t *testing.T) {
	r, _ := newTestRenderer(t)

	path, err := r.Markdown(nil, "")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	doc := string(data)
	assert.Contains(t, doc, "NotebookLM 분석 결과가 없습니다")
	assert.Contains(t, doc, "수집된 영상이 없습니다.")
	assert.Contains(t, doc, "채널 0개 · 영상 0개 · 자막 0자")
}

func TestInfographic(t *testing.T) {
	r, _ := newTestRenderer(t)
	analysis := "## 트렌드\n\n**AI 에이전트**가 화두입니다.\n\n<script>alert('x')</script>"

	path, err := r.Infographic(sampleVideos(), analysis)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02-infographic.html", filepath.Base(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(data)
	assert.Contains(t, page, "<title>유튜브 데일리 브리핑 - 2026-03-02</title>")
	assert.Contains(t, page, `<div class="stat-number">2</div><div class="stat-label">채널</div>`)
	assert.Contains(t, page, `<div class="stat-number">1,507</div>`)
	assert.Contains(t, page, "<h2>트렌드</h2>")
	assert.Contains(t, page, "<strong>AI 에이전트</strong>")
	assert.NotContains(t, page, "alert(")
	assert.Contains(t, page, "border-left: 4px solid #ec4899")
	assert.Contains(t, page, "Study smarter &lt;not harder&gt;")
	assert.Contains(t, page, "자막: 1,500자 (ko)")
}

func TestInfographicEmpty(t *testing.T) {
	r, _ := newTestRenderer(t)

	path, err := r.Infographic(nil, "")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	page := string(data)
	assert.NotContains(t, page, "analysis-box\">")
	assert.Contains(t, page, "수집된 영상이 없습니다.")
}

func TestImagePrompt(t *testing.T) {
	r, _ := newTestRenderer(t)
	videos := sampleVideos()
	for i := 0; i < 8; i++ {
		videos = append(videos, schemas.Video{Title: "extra", ChannelName: "에듀타임즈"})
	}
	analysis := strings.Repeat("분", 250)

	p, path, err := r.ImagePrompt(videos, analysis)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02-ai-prompt.json", filepath.Base(path))
	assert.Equal(t, "2026-03-02-infographic", p.ImageName)
	assert.Equal(t, 11, p.VideoCount)
	assert.Equal(t, []string{"GPT 새 기능 정리", "코딩 없이 앱 만들기"}, p.Channels["조코딩"])
	assert.Equal(t, 200, len([]rune(p.AnalysisSummary)))
	assert.Contains(t, p.Prompt, "dated 2026-03-02")
	assert.Contains(t, p.Prompt, "Show 11 videos from 3 channels: 조코딩, Justin Sung, 에듀타임즈.")
	assert.Equal(t, 7, strings.Count(p.Prompt, "; "), "eight topics joined")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded ImagePrompt
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, p, decoded)
	assert.Contains(t, string(data), "조코딩", "non-ASCII is written as-is")
}

func TestImagePromptWithoutAnalysis(t *testing.T) {
	r, _ := newTestRenderer(t)
	p := r.BuildImagePrompt(nil, "")
	assert.Empty(t, p.AnalysisSummary)
	assert.Equal(t, 0, p.VideoCount)
	assert.Empty(t, p.Channels)
}

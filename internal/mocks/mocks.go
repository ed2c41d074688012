// Package mocks holds testify mocks for the pipeline's collaborators.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/ytbrief/api/schemas"
	"github.com/xkilldash9x/ytbrief/internal/notebook"
	"github.com/xkilldash9x/ytbrief/internal/report"
)

// -- Collector Mock --

type MockCollector struct {
	mock.Mock
}

func (m *MockCollector) Collect(ctx context.Context, hours int) ([]schemas.Video, error) {
	args := m.Called(ctx, hours)
	videos, _ := args.Get(0).([]schemas.Video)
	return videos, args.Error(1)
}

// -- Extractor Mock --

type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) ExtractAll(ctx context.Context, videos []schemas.Video) ([]schemas.Video, error) {
	args := m.Called(ctx, videos)
	out, _ := args.Get(0).([]schemas.Video)
	return out, args.Error(1)
}

// -- Analyzer Mock --

type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) UploadAndAnalyze(ctx context.Context, videos []schemas.Video) (*notebook.Response, error) {
	args := m.Called(ctx, videos)
	resp, _ := args.Get(0).(*notebook.Response)
	return resp, args.Error(1)
}

// -- Reporter Mock --

type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Dir() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockReporter) Markdown(videos []schemas.Video, analysis string) (string, error) {
	args := m.Called(videos, analysis)
	return args.String(0), args.Error(1)
}

func (m *MockReporter) Infographic(videos []schemas.Video, analysis string) (string, error) {
	args := m.Called(videos, analysis)
	return args.String(0), args.Error(1)
}

func (m *MockReporter) ImagePrompt(videos []schemas.Video, analysis string) (report.ImagePrompt, string, error) {
	args := m.Called(videos, analysis)
	prompt, _ := args.Get(0).(report.ImagePrompt)
	return prompt, args.String(1), args.Error(2)
}

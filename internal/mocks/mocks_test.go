package mocks_test

import (
	"github.com/xkilldash9x/ytbrief/internal/mocks"
	"github.com/xkilldash9x/ytbrief/internal/pipeline"
)

var (
	_ pipeline.Collector = (*mocks.MockCollector)(nil)
	_ pipeline.Extractor = (*mocks.MockExtractor)(nil)
	_ pipeline.Analyzer  = (*mocks.MockAnalyzer)(nil)
	_ pipeline.Reporter  = (*mocks.MockReporter)(nil)
)

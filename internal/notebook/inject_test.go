package notebook

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestInjectFullProtocol(t *testing.T) {
	sl := &sleepLog{}
	intents := DefaultIntents()
	page := readyPage(intents)
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	inj := NewInjector(testConfig(sl), intents, zaptest.NewLogger(t))
	out, err := inj.Inject(context.Background(), runner, Document{Title: "[조코딩] Title", Body: "transcript body"})
	require.NoError(t, err)

	assert.True(t, out.Attempted)
	assert.True(t, out.Succeeded)
	assert.Empty(t, out.Missed)
	assert.Equal(t, 1, runner.sessions)

	assert.Equal(t, []string{
		"navigate",
		"click " + intents.AddSource.Candidates[0].String(),
		"click " + intents.PasteTextSource.Candidates[0].String(),
		"fill",
		"clipboard", "focus", "select-all", "paste",
		"click " + intents.SubmitSource.Candidates[0].String(),
	}, page.Calls())
	assert.Equal(t, "[조코딩] Title", page.filled[intents.SourceName.Candidates[0]])
	assert.Equal(t, "transcript body", page.clipboard)

	assert.Equal(t, 2, sl.Count(3*time.Second), "settle after navigation and after submit")
	assert.Equal(t, 2, sl.Count(2*time.Second))
	assert.Equal(t, 1, sl.Count(1*time.Second))
}

func TestInjectFallsBackWhenClipboardRefused(t *testing.T) {
	intents := DefaultIntents()
	page := readyPage(intents)
	page.clipboardErr = errors.New("Write permission denied")
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	out, err := NewInjector(testConfig(&sleepLog{}), intents, zaptest.NewLogger(t)).
		Inject(context.Background(), runner, Document{Title: "t", Body: "body"})
	require.NoError(t, err)

	assert.True(t, out.Succeeded)
	assert.Equal(t, "body", page.inserted)
	assert.NotContains(t, page.Calls(), "paste")
}

func TestInjectMissingStepsAreTolerated(t *testing.T) {
	intents := DefaultIntents()
	page := newFakePage()
	page.visible[intents.SourceBody.Candidates[2]] = true
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	out, err := NewInjector(testConfig(&sleepLog{}), intents, zaptest.NewLogger(t)).
		Inject(context.Background(), runner, Document{Title: "t", Body: "body"})
	require.NoError(t, err)

	assert.True(t, out.Succeeded)
	assert.Equal(t, []string{"add-source", "paste-text-source", "source-name", "submit-source"}, out.Missed)
	assert.Equal(t, "body", page.clipboard)
}

func TestInjectAbortsOnNavigationFailure(t *testing.T) {
	page := newFakePage()
	page.navErr = errors.New("net::ERR_NAME_NOT_RESOLVED")
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	out, err := NewInjector(testConfig(&sleepLog{}), DefaultIntents(), zaptest.NewLogger(t)).
		Inject(context.Background(), runner, Document{Title: "t", Body: "body"})
	require.NoError(t, err)

	assert.True(t, out.Attempted)
	assert.False(t, out.Succeeded)
	assert.Contains(t, out.Detail, ErrNavigation.Error())
	assert.Equal(t, []string{"navigate"}, page.Calls())
}

func TestInjectAbortsWhenPageCloses(t *testing.T) {
	intents := DefaultIntents()
	page := readyPage(intents)
	page.actionErr["click "+intents.AddSource.Candidates[0].String()] = ErrPageClosed
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	out, err := NewInjector(testConfig(&sleepLog{}), intents, zaptest.NewLogger(t)).
		Inject(context.Background(), runner, Document{Title: "t", Body: "body"})
	require.NoError(t, err)
	assert.False(t, out.Succeeded)
	assert.Len(t, page.Calls(), 2)
}

func TestInjectReturnsPreconditions(t *testing.T) {
	pre := &PreconditionError{Err: errors.New("no session credential"), Hint: "run the login step"}
	runner := &fakeRunner{preErr: pre}

	out, err := NewInjector(testConfig(&sleepLog{}), DefaultIntents(), zaptest.NewLogger(t)).
		Inject(context.Background(), runner, Document{Title: "t", Body: "body"})
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
	assert.Contains(t, err.Error(), "run the login step")
	assert.False(t, out.Attempted)
	assert.Zero(t, runner.sessions)
}

func TestInjectTruncatesBeforePaste(t *testing.T) {
	intents := DefaultIntents()
	page := readyPage(intents)
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}
	cfg := testConfig(&sleepLog{})
	cfg.MaxDocumentChars = 5

	_, err := NewInjector(cfg, intents, zaptest.NewLogger(t)).
		Inject(context.Background(), runner, Document{Title: "t", Body: strings.Repeat("z", 8)})
	require.NoError(t, err)
	assert.Equal(t, "zzzzz"+TruncationMarker(LocaleKorean), page.clipboard)
}

package notebook

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestAskReturnsFirstLongEnoughAnswer(t *testing.T) {
	sl := &sleepLog{}
	intents := DefaultIntents()
	page := readyPage(intents)
	region := intents.ResponseRegion.Candidates[1]
	page.visible[region] = true
	page.texts[region] = func(n int) string {
		if n < 3 {
			return "  thinking "
		}
		return "  A detailed briefing answer.  "
	}
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	resp, err := NewAsker(testConfig(sl), intents, zaptest.NewLogger(t)).Ask(context.Background(), runner, "what?")
	require.NoError(t, err)
	require.NotNil(t, resp)

	assert.Equal(t, "  A detailed briefing answer.  ", resp.Text, "answer text is returned verbatim")
	assert.Equal(t, 3, resp.Rounds)
	assert.Equal(t, "what?", page.filled[intents.PromptInput.Candidates[0]])
	assert.Contains(t, page.Calls(), "enter")
	assert.Equal(t, 3, sl.Count(5*time.Second), "warmup plus two poll intervals")
}

func TestAskWithoutPromptInput(t *testing.T) {
	page := newFakePage()
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	resp, err := NewAsker(testConfig(&sleepLog{}), DefaultIntents(), zaptest.NewLogger(t)).Ask(context.Background(), runner, "q")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.NotContains(t, page.Calls(), "enter")
}

func TestAskGivesUpAfterCeiling(t *testing.T) {
	sl := &sleepLog{}
	intents := DefaultIntents()
	page := readyPage(intents)
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	resp, err := NewAsker(testConfig(sl), intents, zaptest.NewLogger(t)).Ask(context.Background(), runner, "q")
	require.NoError(t, err)
	assert.Nil(t, resp)

	probed := 0
	for _, loc := range page.probes {
		if loc == intents.ResponseRegion.Candidates[0] {
			probed++
		}
	}
	assert.Equal(t, 12, probed)
}

func TestAskShortAnswersAreIgnored(t *testing.T) {
	intents := DefaultIntents()
	page := readyPage(intents)
	region := intents.ResponseRegion.Candidates[0]
	page.visible[region] = true
	page.texts[region] = func(int) string { return "0123456789" }
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	resp, err := NewAsker(testConfig(&sleepLog{}), intents, zaptest.NewLogger(t)).Ask(context.Background(), runner, "q")
	require.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 12, page.reads[region])
}

func TestAskLengthIgnoresSurroundingWhitespace(t *testing.T) {
	intents := DefaultIntents()
	page := readyPage(intents)
	region := intents.ResponseRegion.Candidates[0]
	page.visible[region] = true
	page.texts[region] = func(int) string { return "\n   short    \n" }
	runner := &fakeRunner{newPage: func(int) *fakePage { return page }}

	resp, err := NewAsker(testConfig(&sleepLog{}), intents, zaptest.NewLogger(t)).Ask(context.Background(), runner, "q")
	require.NoError(t, err)
	assert.Nil(t, resp, "padding does not count toward the minimum length")
	assert.Equal(t, 12, page.reads[region])
}

func TestAskPreconditionAndFaults(t *testing.T) {
	pre := &PreconditionError{Err: ErrAutomationUnavailable}
	_, err := NewAsker(testConfig(&sleepLog{}), DefaultIntents(), zaptest.NewLogger(t)).
		Ask(context.Background(), &fakeRunner{preErr: pre}, "q")
	assert.ErrorIs(t, err, ErrAutomationUnavailable)

	page := newFakePage()
	page.navErr = errors.Join(ErrPageClosed, errors.New("websocket closed"))
	resp, err := NewAsker(testConfig(&sleepLog{}), DefaultIntents(), zaptest.NewLogger(t)).
		Ask(context.Background(), &fakeRunner{newPage: func(int) *fakePage { return page }}, "q")
	assert.NoError(t, err)
	assert.Nil(t, resp)
}

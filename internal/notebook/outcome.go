package notebook

import "time"

// Outcome records what happened to one injected document.
type Outcome struct {
	Title     string
	Attempted bool
	// Succeeded means every motion ran; the notebook accepting the source is not checked.
	Succeeded bool
	// Detail holds the abort cause when the protocol stopped early.
	Detail string
	// Missed lists intents that did not resolve or whose action failed.
	Missed []string
}

// Response is the answer text recovered from the page.
type Response struct {
	Text    string
	Rounds  int
	Elapsed time.Duration
}

// BatchResult aggregates a coordinator run.
type BatchResult struct {
	Outcomes  []Outcome
	Succeeded int
	// Answer is nil when no document made it in, the question was skipped,
	// or no answer showed up in time.
	Answer *Response
}

package notebook

import "context"

// Page is the live page surface the protocols drive. Every method blocks until
// the browser acknowledges the action or ctx ends. Element methods take the
// locator returned by the resolver.
type Page interface {
	Navigate(ctx context.Context, url string) error
	// Visible reports whether loc is rendered and visible before ctx expires.
	// Absent or detached elements are reported as errors or false; the resolver
	// decides which errors are misses.
	Visible(ctx context.Context, loc Locator) (bool, error)
	Click(ctx context.Context, loc Locator) error
	Focus(ctx context.Context, loc Locator) error
	// Fill replaces the content of an input, textarea or contenteditable element.
	Fill(ctx context.Context, loc Locator, text string) error
	InnerText(ctx context.Context, loc Locator) (string, error)

	WriteClipboard(ctx context.Context, text string) error
	// InsertText commits text into the focused element in one input event.
	InsertText(ctx context.Context, text string) error
	SelectAll(ctx context.Context) error
	Paste(ctx context.Context) error
	PressEnter(ctx context.Context) error
}

// SessionRunner hands a fresh page to fn and tears the browser down when fn
// returns, whatever the exit path. Precondition failures (missing credential,
// no browser) come back as *PreconditionError without fn being called.
type SessionRunner interface {
	WithSession(ctx context.Context, fn func(ctx context.Context, page Page) error) error
}

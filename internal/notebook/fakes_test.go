package notebook

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errDetached = errors.New("node is detached from document")

// fakePage is a scripted Page. Locators absent from visible are invisible.
type fakePage struct {
	mu sync.Mutex

	visible    map[Locator]bool
	visibleErr map[Locator]error
	// texts returns the inner text of loc on the n-th read (1-based).
	texts map[Locator]func(n int) string

	navErr       error
	clipboardErr error
	actionErr    map[string]error

	probes    []Locator
	calls     []string
	reads     map[Locator]int
	clipboard string
	inserted  string
	filled    map[Locator]string
}

func newFakePage() *fakePage {
	return &fakePage{
		visible:    map[Locator]bool{},
		visibleErr: map[Locator]error{},
		texts:      map[Locator]func(int) string{},
		actionErr:  map[string]error{},
		reads:      map[Locator]int{},
		filled:     map[Locator]string{},
	}
}

func (p *fakePage) record(call string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, call)
	return p.actionErr[call]
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	if err := p.record("navigate"); err != nil {
		return err
	}
	return p.navErr
}

func (p *fakePage) Visible(ctx context.Context, loc Locator) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probes = append(p.probes, loc)
	if err := p.visibleErr[loc]; err != nil {
		return false, err
	}
	return p.visible[loc], nil
}

func (p *fakePage) Click(ctx context.Context, loc Locator) error {
	return p.record("click " + loc.String())
}

func (p *fakePage) Focus(ctx context.Context, loc Locator) error {
	return p.record("focus")
}

func (p *fakePage) Fill(ctx context.Context, loc Locator, text string) error {
	if err := p.record("fill"); err != nil {
		return err
	}
	p.mu.Lock()
	p.filled[loc] = text
	p.mu.Unlock()
	return nil
}

func (p *fakePage) InnerText(ctx context.Context, loc Locator) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reads[loc]++
	fn, ok := p.texts[loc]
	if !ok {
		return "", errDetached
	}
	return fn(p.reads[loc]), nil
}

func (p *fakePage) WriteClipboard(ctx context.Context, text string) error {
	if err := p.record("clipboard"); err != nil {
		return err
	}
	if p.clipboardErr != nil {
		return p.clipboardErr
	}
	p.mu.Lock()
	p.clipboard = text
	p.mu.Unlock()
	return nil
}

func (p *fakePage) InsertText(ctx context.Context, text string) error {
	if err := p.record("insert"); err != nil {
		return err
	}
	p.mu.Lock()
	p.inserted = text
	p.mu.Unlock()
	return nil
}

func (p *fakePage) SelectAll(ctx context.Context) error  { return p.record("select-all") }
func (p *fakePage) Paste(ctx context.Context) error      { return p.record("paste") }
func (p *fakePage) PressEnter(ctx context.Context) error { return p.record("enter") }

func (p *fakePage) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

// fakeRunner hands out pages from newPage and counts sessions.
type fakeRunner struct {
	mu       sync.Mutex
	newPage  func(session int) *fakePage
	preErr   error
	sessions int
	pages    []*fakePage
}

func (r *fakeRunner) WithSession(ctx context.Context, fn func(ctx context.Context, page Page) error) error {
	if r.preErr != nil {
		return r.preErr
	}
	r.mu.Lock()
	r.sessions++
	n := r.sessions
	r.mu.Unlock()

	var page *fakePage
	if r.newPage != nil {
		page = r.newPage(n)
	} else {
		page = newFakePage()
	}
	r.mu.Lock()
	r.pages = append(r.pages, page)
	r.mu.Unlock()
	return fn(ctx, page)
}

// sleepLog is an instant Sleeper that remembers what it was asked to wait.
type sleepLog struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (s *sleepLog) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.waits = append(s.waits, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepLog) Count(d time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, w := range s.waits {
		if w == d {
			n++
		}
	}
	return n
}

func testConfig(sl *sleepLog) Config {
	cfg := DefaultConfig()
	cfg.TargetURL = "https://notebook.example/notebook/1"
	cfg.Sleep = sl.Sleep
	return cfg
}

// readyPage makes the first candidate of every injection intent visible.
func readyPage(in Intents) *fakePage {
	p := newFakePage()
	for _, intent := range []Intent{in.AddSource, in.PasteTextSource, in.SourceName, in.SourceBody, in.SubmitSource, in.PromptInput} {
		p.visible[intent.Candidates[0]] = true
	}
	return p
}

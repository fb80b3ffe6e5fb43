package browser

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Pool bounds the number of live browser contexts. A crawl slot acquires
// one Slot for the lifetime of a task and must release it; acquisition
// blocks until a slot frees up or the context is cancelled.
type Pool struct {
	browser *Browser
	slots   chan *Slot
	size    int
	logger  *slog.Logger
}

// Slot wraps one browser context. Contexts are created lazily and can be
// recycled after a defense block to drop cookies and session state.
type Slot struct {
	browser *Browser
	ctx     playwright.BrowserContext
}

func NewPool(b *Browser, size int) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		browser: b,
		slots:   make(chan *Slot, size),
		size:    size,
		logger:  slog.Default().With("component", "browser_pool"),
	}
	for i := 0; i < size; i++ {
		p.slots <- &Slot{browser: b}
	}
	return p
}

func (p *Pool) Size() int {
	return p.size
}

func (p *Pool) Acquire(ctx context.Context) (*Slot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case slot := <-p.slots:
		return slot, nil
	}
}

func (p *Pool) Release(slot *Slot) {
	if slot == nil {
		return
	}
	p.slots <- slot
}

// Close drains all slots and closes their contexts.
func (p *Pool) Close() {
	deadline := time.After(5 * time.Second)
	for i := 0; i < p.size; i++ {
		select {
		case slot := <-p.slots:
			slot.closeContext()
		case <-deadline:
			p.logger.Warn("timed out waiting for pool slots on close")
			return
		}
	}
}

// NewPage opens a page on the slot's context, creating the context on
// first use.
func (s *Slot) NewPage() (playwright.Page, error) {
	if s.ctx == nil {
		ctx, err := s.browser.newContext()
		if err != nil {
			return nil, err
		}
		s.ctx = ctx
	}

	page, err := s.ctx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(float64(s.browser.opts.Timeout.Milliseconds()))
	return page, nil
}

// Recycle discards the slot's context so the next page starts from a
// clean session. Used as the one recovery action after a defense block.
func (s *Slot) Recycle() {
	s.closeContext()
}

func (s *Slot) closeContext() {
	if s.ctx != nil {
		if err := s.ctx.Close(); err != nil {
			s.browser.logger.Warn("failed to close context", "error", err)
		}
		s.ctx = nil
	}
}

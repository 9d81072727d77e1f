package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"office-web-server/internal/domain"
)

const ChromedpName = "chromedp"

// networkQuiet is how long no request may be in flight before the page
// counts as idle.
const networkQuiet = 500 * time.Millisecond

// ChromedpRenderer prints pages with a browser driven by chromedp. Every
// Render starts its own browser and shuts it down before returning.
type ChromedpRenderer struct {
	opts   Options
	logger domain.Logger
}

func NewChromedpRenderer(opts Options, logger domain.Logger) *ChromedpRenderer {
	return &ChromedpRenderer{opts: opts, logger: logger}
}

func (r *ChromedpRenderer) Name() string { return ChromedpName }

func (r *ChromedpRenderer) Render(ctx context.Context, html string, settings domain.PageSettings) ([]byte, error) {
	execPath, err := Resolve(r.opts)
	if err != nil {
		return nil, err
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(execPath),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("no-first-run", true),
	)
	if r.opts.NoSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}

	// Both contexts derive from ctx so a cancelled request kills the browser.
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var buf []byte
	if err := chromedp.Run(browserCtx,
		chromedp.Navigate(blankPage),
		setContentAndWaitIdle(html),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			buf, _, err = page.PrintToPDF().
				WithPaperWidth(settings.PaperWidth).
				WithPaperHeight(settings.PaperHeight).
				WithMarginTop(settings.MarginTop).
				WithMarginRight(settings.MarginRight).
				WithMarginBottom(settings.MarginBottom).
				WithMarginLeft(settings.MarginLeft).
				WithPrintBackground(settings.PrintBackground).
				Do(ctx)
			return err
		}),
	); err != nil {
		return nil, fmt.Errorf("chromedp: %w", err)
	}

	r.logger.Debug("Page printed", "renderer", ChromedpName, "bytes", len(buf))
	return buf, nil
}

// setContentAndWaitIdle replaces the main frame's document with html and
// blocks until the document is complete and no request has been in flight
// for networkQuiet.
func setContentAndWaitIdle(html string) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return fmt.Errorf("reading frame tree: %w", err)
		}

		idle := newIdleTracker(tree.Frame.ID, networkQuiet)
		defer idle.stop()

		lctx, cancel := context.WithCancel(ctx)
		defer cancel()
		chromedp.ListenTarget(lctx, idle.handle)

		if err := page.SetDocumentContent(tree.Frame.ID, html).Do(ctx); err != nil {
			return fmt.Errorf("setting content: %w", err)
		}
		var ready bool
		if err := chromedp.Poll(`document.readyState === "complete"`, &ready).Do(ctx); err != nil {
			return fmt.Errorf("waiting for document: %w", err)
		}
		idle.arm()

		select {
		case <-idle.done:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// idleTracker counts in-flight requests from every frame and closes done
// once it is armed and nothing has been pending for quiet. It is armed by
// arm or by a load lifecycle event of the main frame; lifecycle events of
// subframes are ignored.
type idleTracker struct {
	mu      sync.Mutex
	frameID cdp.FrameID
	quiet   time.Duration
	pending map[network.RequestID]struct{}
	armed   bool
	timer   *time.Timer
	once    sync.Once
	done    chan struct{}
}

func newIdleTracker(frameID cdp.FrameID, quiet time.Duration) *idleTracker {
	return &idleTracker{
		frameID: frameID,
		quiet:   quiet,
		pending: make(map[network.RequestID]struct{}),
		done:    make(chan struct{}),
	}
}

func (t *idleTracker) handle(ev interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch e := ev.(type) {
	case *network.EventRequestWillBeSent:
		t.pending[e.RequestID] = struct{}{}
		t.stopTimer()
	case *network.EventLoadingFinished:
		delete(t.pending, e.RequestID)
		t.check()
	case *network.EventLoadingFailed:
		delete(t.pending, e.RequestID)
		t.check()
	case *page.EventLifecycleEvent:
		if e.FrameID == t.frameID && e.Name == "load" {
			t.armed = true
			t.check()
		}
	}
}

func (t *idleTracker) arm() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.armed = true
	t.check()
}

func (t *idleTracker) stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimer()
}

// check starts the quiet timer when armed with nothing pending. Callers
// hold t.mu.
func (t *idleTracker) check() {
	if !t.armed || len(t.pending) > 0 || t.timer != nil {
		return
	}
	t.timer = time.AfterFunc(t.quiet, func() {
		t.once.Do(func() { close(t.done) })
	})
}

func (t *idleTracker) stopTimer() {
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

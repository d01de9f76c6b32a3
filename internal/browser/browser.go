// package browser wraps a chromedp-driven Chrome session.
//
// The site rejects obvious automation, so the session disables Blink's
// automation flags and clears navigator.webdriver before any page script
// runs. Actions are paced with a rate limiter to keep interaction at a
// human-ish cadence.
package browser

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"golang.org/x/time/rate"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

const stealthScript = `Object.defineProperty(navigator, 'webdriver', {get: () => undefined});`

// Options configures a browser session.
type Options struct {
	Headless   bool
	ExecPath   string        // custom Chrome binary, empty for the default lookup
	UserAgent  string        // empty for the default desktop UA
	Timeout    time.Duration // per-action timeout, default 15s
	ActionRate rate.Limit    // actions per second, default 2
}

// Session is one live Chrome instance driving the lottery site.
type Session struct {
	ctx     context.Context
	cancels []context.CancelFunc
	limiter *rate.Limiter
	timeout time.Duration
}

// NewSession launches Chrome and returns a ready session.
func NewSession(parent context.Context, opts Options) (*Session, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.ActionRate <= 0 {
		opts.ActionRate = 2
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, AllocatorOptions(opts)...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx)

	s := &Session{
		ctx:     ctx,
		cancels: []context.CancelFunc{ctxCancel, allocCancel},
		limiter: rate.NewLimiter(opts.ActionRate, 1),
		timeout: opts.Timeout,
	}

	// Starts the browser process and installs the stealth script before
	// any site page loads.
	err := chromedp.Run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, err := page.AddScriptToEvaluateOnNewDocument(stealthScript).Do(ctx)
		return err
	}))
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	return s, nil
}

// AllocatorOptions translates Options into chromedp allocator flags.
func AllocatorOptions(opts Options) []chromedp.ExecAllocatorOption {
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.UserAgent(ua),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.WindowSize(1920, 1080),
	}

	if opts.Headless {
		allocOpts = append(allocOpts,
			chromedp.Flag("headless", "new"),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	return allocOpts
}

// Close shuts the browser down.
func (s *Session) Close() {
	for _, cancel := range s.cancels {
		cancel()
	}
}

// run executes actions under the rate limiter and per-action timeout.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	// Follow caller cancellation without replacing the chromedp context.
	done := make(chan error, 1)
	go func() { done <- chromedp.Run(runCtx, actions...) }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cancel()
		<-done
		return ctx.Err()
	}
}

// Navigate loads a URL and waits for the body to be ready.
func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := s.run(ctx, chromedp.Navigate(url), chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// WaitVisible blocks until the selector matches a visible node.
func (s *Session) WaitVisible(ctx context.Context, sel string) error {
	return s.run(ctx, chromedp.WaitVisible(sel, chromedp.ByQuery))
}

// SetValue clears a field and types a value into it.
func (s *Session) SetValue(ctx context.Context, sel, value string) error {
	return s.run(ctx,
		chromedp.WaitVisible(sel, chromedp.ByQuery),
		chromedp.SetValue(sel, value, chromedp.ByQuery),
	)
}

// Click clicks the first node matching the selector.
func (s *Session) Click(ctx context.Context, sel string) error {
	return s.run(ctx, chromedp.Click(sel, chromedp.ByQuery))
}

// ClickScript clicks via JavaScript, which works on nodes the site keeps
// outside the viewport or behind overlays.
func (s *Session) ClickScript(ctx context.Context, sel string) error {
	js := fmt.Sprintf(`(() => { const el = document.querySelector(%q); if (!el) return false; el.click(); return true; })()`, sel)
	var clicked bool
	if err := s.run(ctx, chromedp.Evaluate(js, &clicked)); err != nil {
		return err
	}
	if !clicked {
		return fmt.Errorf("no element matches %q", sel)
	}
	return nil
}

// PressEnter sends the Enter key to the selector.
func (s *Session) PressEnter(ctx context.Context, sel string) error {
	return s.run(ctx, chromedp.SendKeys(sel, kb.Enter, chromedp.ByQuery))
}

// Text returns the visible text of the first matching node.
func (s *Session) Text(ctx context.Context, sel string) (string, error) {
	var text string
	err := s.run(ctx, chromedp.Text(sel, &text, chromedp.ByQuery, chromedp.NodeVisible))
	return text, err
}

// Texts returns the text of every node matching the selector.
func (s *Session) Texts(ctx context.Context, sel string) ([]string, error) {
	js := fmt.Sprintf(`Array.from(document.querySelectorAll(%q)).map(el => el.innerText)`, sel)
	var texts []string
	err := s.run(ctx, chromedp.Evaluate(js, &texts))
	return texts, err
}

// Evaluate runs a JavaScript expression, unmarshaling the result into out.
func (s *Session) Evaluate(ctx context.Context, js string, out any) error {
	return s.run(ctx, chromedp.Evaluate(js, out))
}

// Exists reports whether the selector matches any node.
func (s *Session) Exists(ctx context.Context, sel string) (bool, error) {
	js := fmt.Sprintf(`document.querySelector(%q) !== null`, sel)
	var found bool
	err := s.run(ctx, chromedp.Evaluate(js, &found))
	return found, err
}

// IsChecked reads the checked property of a checkbox.
func (s *Session) IsChecked(ctx context.Context, sel string) (bool, error) {
	js := fmt.Sprintf(`(() => { const el = document.querySelector(%q); return el ? el.checked : false; })()`, sel)
	var checked bool
	err := s.run(ctx, chromedp.Evaluate(js, &checked))
	return checked, err
}

// SelectValue sets a <select> element's value and fires its change event.
func (s *Session) SelectValue(ctx context.Context, sel, value string) error {
	js := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		el.value = %q;
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return true;
	})()`, sel, value)
	var ok bool
	if err := s.run(ctx, chromedp.Evaluate(js, &ok)); err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("no select element matches %q", sel)
	}
	return nil
}

// CurrentURL returns the page location.
func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	var url string
	err := s.run(ctx, chromedp.Location(&url))
	return url, err
}

// PageSource returns the full document HTML.
func (s *Session) PageSource(ctx context.Context) (string, error) {
	var html string
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		root, err := dom.GetDocument().Do(ctx)
		if err != nil {
			return err
		}
		html, err = dom.GetOuterHTML().WithNodeID(root.NodeID).Do(ctx)
		return err
	}))
	return html, err
}

// Screenshot captures the viewport to a PNG file.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := s.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return fmt.Errorf("failed to capture screenshot: %w", err)
	}
	if err := os.WriteFile(path, buf, 0644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	return nil
}

package browser

import (
	"context"
	"fmt"
	"time"

	"sjsage522/taglikeworker/logger"
	apperrors "sjsage522/taglikeworker/pkg/errors"

	"github.com/chromedp/chromedp"
)

const scrollToBottomScript = `window.scrollTo(0, document.body.scrollHeight);`

// ChromeOptions configures how the Chrome session is obtained
type ChromeOptions struct {
	// RemoteAddr is a DevTools websocket URL. When set, an already running
	// browser is attached instead of launching a local one.
	RemoteAddr  string
	Headless    bool
	ProxyServer string
	UserAgent   string
	// OpTimeout bounds every single driver operation. Zero disables it.
	OpTimeout time.Duration
}

// ChromeDriver implements Driver on top of chromedp
type ChromeDriver struct {
	ctx           context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	timeout       time.Duration
	log           *logger.Logger
}

var _ Driver = (*ChromeDriver)(nil)

// NewChromeDriver starts (or attaches to) a browser and opens one tab.
func NewChromeDriver(ctx context.Context, opts ChromeOptions, log *logger.Logger) (*ChromeDriver, error) {
	log = log.ForBrowser()

	var (
		allocCtx    context.Context
		cancelAlloc context.CancelFunc
	)

	if opts.RemoteAddr != "" {
		allocCtx, cancelAlloc = chromedp.NewRemoteAllocator(ctx, opts.RemoteAddr)
	} else {
		allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		allocOpts = append(allocOpts,
			chromedp.Flag("headless", opts.Headless),
			chromedp.WindowSize(1280, 800),
		)
		if opts.UserAgent != "" {
			allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
		}
		if opts.ProxyServer != "" {
			allocOpts = append(allocOpts, chromedp.ProxyServer(opts.ProxyServer))
		}
		allocCtx, cancelAlloc = chromedp.NewExecAllocator(ctx, allocOpts...)
	}

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// An empty run starts the browser so launch failures surface here
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	log.Info().
		Str("remote", opts.RemoteAddr).
		Bool("headless", opts.Headless).
		Dur("op_timeout", opts.OpTimeout).
		Msg("Browser session started")

	return &ChromeDriver{
		ctx:           browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		timeout:       opts.OpTimeout,
		log:           log,
	}, nil
}

// run executes actions on the browser tab, bounded by the driver timeout and
// by the caller's ctx.
func (d *ChromeDriver) run(ctx context.Context, actions ...chromedp.Action) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		runCtx context.Context
		cancel context.CancelFunc
	)
	if d.timeout > 0 {
		runCtx, cancel = context.WithTimeout(d.ctx, d.timeout)
	} else {
		runCtx, cancel = context.WithCancel(d.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

// Navigate loads url and waits for the body to be ready
func (d *ChromeDriver) Navigate(ctx context.Context, url string) error {
	d.log.Debug().Str("url", url).Msg("Navigating")

	if err := d.run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return apperrors.NewNavigation(url, "failed to open page", err)
	}
	return nil
}

// Evaluate runs script in the page and decodes the result into res
func (d *ChromeDriver) Evaluate(ctx context.Context, script string, res any) error {
	if err := d.run(ctx, chromedp.Evaluate(script, res)); err != nil {
		return apperrors.NewEvaluation("page", "script evaluation failed", err)
	}
	return nil
}

// ScrollToBottom scrolls the window to the end of the document
func (d *ChromeDriver) ScrollToBottom(ctx context.Context) error {
	if err := d.run(ctx, chromedp.Evaluate(scrollToBottomScript, nil)); err != nil {
		return apperrors.NewEvaluation("page", "scroll failed", err)
	}
	return nil
}

// Sleep blocks for the given duration
func (d *ChromeDriver) Sleep(ctx context.Context, dur time.Duration) error {
	timer := time.NewTimer(dur)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close shuts down the tab and the browser
func (d *ChromeDriver) Close() {
	d.cancelBrowser()
	d.cancelAlloc()
	d.log.Info().Msg("Browser session closed")
}

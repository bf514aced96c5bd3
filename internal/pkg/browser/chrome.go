package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Options configures the Chrome instance behind a ChromePage.
type Options struct {
	Headless  bool
	UserAgent string
	ExecPath  string
	Debug     bool
	Logger    *slog.Logger
}

// ChromePage is a single chromedp tab with its own browser process and
// user data dir.
type ChromePage struct {
	logger *slog.Logger

	mu          sync.Mutex
	tabCtx      context.Context
	cancelTab   context.CancelFunc
	cancelAlloc context.CancelFunc
	userDataDir string
	closed      bool
}

var _ Page = (*ChromePage)(nil)

// NewChromeLauncher returns a Launcher that starts headless Chrome tabs.
func NewChromeLauncher(opts Options) Launcher {
	return func(ctx context.Context) (Page, error) {
		return LaunchChrome(ctx, opts)
	}
}

// LaunchChrome starts a browser and opens one tab. ctx bounds only the startup.
func LaunchChrome(ctx context.Context, opts Options) (*ChromePage, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dir, err := os.MkdirTemp("", "betscraper_chrome_")
	if err != nil {
		return nil, fmt.Errorf("create chrome temp dir: %w", err)
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
		chromedp.UserDataDir(dir),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	// The browser outlives the caller's ctx; it is torn down by Close.
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...any) {
		if opts.Debug {
			logger.Debug("chromedp", "message", fmt.Sprintf(format, v...))
		}
	}))

	p := &ChromePage{
		logger:      logger,
		tabCtx:      tabCtx,
		cancelTab:   cancelTab,
		cancelAlloc: cancelAlloc,
		userDataDir: dir,
	}

	// Running an empty action list starts the browser and the tab.
	if err := p.run(ctx); err != nil {
		_ = p.Close()
		return nil, fmt.Errorf("start chrome: %w", err)
	}
	return p, nil
}

// run executes actions on the tab, aborting them if ctx is done.
func (p *ChromePage) run(ctx context.Context, actions ...chromedp.Action) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	tabCtx := p.tabCtx
	p.mu.Unlock()

	runCtx, cancel := context.WithCancel(tabCtx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	if err := p.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

func (p *ChromePage) WaitVisible(ctx context.Context, selector string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := p.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
	return nil
}

// Exists checks the current DOM without waiting.
func (p *ChromePage) Exists(ctx context.Context, selector string) (bool, error) {
	quoted, err := json.Marshal(selector)
	if err != nil {
		return false, err
	}
	var found bool
	expr := fmt.Sprintf("document.querySelector(%s) !== null", quoted)
	if err := p.run(ctx, chromedp.Evaluate(expr, &found)); err != nil {
		return false, fmt.Errorf("query %s: %w", selector, err)
	}
	return found, nil
}

func (p *ChromePage) Click(ctx context.Context, selector string) error {
	if err := p.run(ctx, chromedp.Click(selector, chromedp.ByQuery, chromedp.NodeVisible)); err != nil {
		return fmt.Errorf("click %s: %w", selector, err)
	}
	return nil
}

// Fill clears the input and types value into it.
func (p *ChromePage) Fill(ctx context.Context, selector, value string) error {
	err := p.run(ctx,
		chromedp.SetValue(selector, "", chromedp.ByQuery),
		chromedp.SendKeys(selector, value, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("fill %s: %w", selector, err)
	}
	return nil
}

func (p *ChromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	return html, nil
}

// Close shuts the browser down and removes its user data dir. Safe to call twice.
func (p *ChromePage) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	tabCtx := p.tabCtx
	p.mu.Unlock()

	// chromedp.Cancel closes the browser gracefully; the cancel funcs are a backstop.
	if err := chromedp.Cancel(tabCtx); err != nil {
		p.logger.Debug("chrome cancel", "error", err)
	}
	p.cancelTab()
	p.cancelAlloc()

	if err := os.RemoveAll(p.userDataDir); err != nil {
		return fmt.Errorf("remove chrome user data dir: %w", err)
	}
	return nil
}

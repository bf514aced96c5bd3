// Package bet365 drives the Bet365 website through a headless browser.
package bet365

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/Vodeneev/betscraper/internal/pkg/browser"
	"github.com/Vodeneev/betscraper/internal/pkg/enums"
	"github.com/Vodeneev/betscraper/internal/pkg/interfaces"
	"github.com/Vodeneev/betscraper/internal/pkg/session"
	"github.com/Vodeneev/betscraper/internal/scraper/providers"
)

func init() {
	providers.Register(enums.Bet365, func(deps providers.Deps) (interfaces.Provider, error) {
		bc := deps.Config.Browser
		return New(Options{
			BaseURL:       deps.Account.BaseURL,
			NavigationRPS: deps.Account.NavigationRPS,
			WaitTimeout:   bc.WaitTimeout,
			Launcher: browser.NewChromeLauncher(browser.Options{
				Headless:  bc.IsHeadless(),
				UserAgent: bc.UserAgent,
				ExecPath:  bc.ExecPath,
				Debug:     bc.Debug,
				Logger:    deps.Logger,
			}),
			Logger: deps.Logger,
		}), nil
	})
}

type Options struct {
	BaseURL       string
	Launcher      browser.Launcher
	WaitTimeout   time.Duration
	NavigationRPS float64
	Logger        *slog.Logger
	Now           func() time.Time
}

// Provider is the Bet365 integration. It owns one browser page; every
// operation holds mu while it talks to the page.
type Provider struct {
	baseURL     string
	launch      browser.Launcher
	waitTimeout time.Duration
	limiter     *rate.Limiter
	logger      *slog.Logger
	now         func() time.Time

	mu      sync.Mutex
	page    browser.Page
	session *session.Session
}

var _ interfaces.Provider = (*Provider)(nil)

func New(opts Options) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.WaitTimeout <= 0 {
		opts.WaitTimeout = 10 * time.Second
	}
	if opts.NavigationRPS <= 0 {
		opts.NavigationRPS = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	logger := opts.Logger.With("provider", string(enums.Bet365))
	return &Provider{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		launch:      opts.Launcher,
		waitTimeout: opts.WaitTimeout,
		limiter:     rate.NewLimiter(rate.Limit(opts.NavigationRPS), 1),
		logger:      logger,
		now:         opts.Now,
		session: session.New(func(from, to session.State) {
			logger.Debug("session state changed", "from", from.String(), "to", to.String())
		}),
	}
}

func (p *Provider) ID() enums.BettingProvider { return enums.Bet365 }

func (p *Provider) Name() string { return enums.Bet365.DisplayName() }

// State exposes the session state for status reporting.
func (p *Provider) State() session.State { return p.session.State() }

func (p *Provider) Login(ctx context.Context, username, password string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session.State() == session.Active && p.probeLocked(ctx) {
		return true
	}

	if username == "" || password == "" {
		p.logger.Warn("login skipped: incomplete credentials")
		return false
	}

	if err := p.session.BeginLogin(); err != nil {
		p.logger.Error("cannot begin login", "state", p.session.State().String(), "error", err)
		return false
	}

	err := p.loginLocked(ctx, username, password)
	if err != nil {
		p.logger.Warn("login failed", "error", err)
	} else {
		p.logger.Info("logged in")
	}
	_ = p.session.CompleteLogin(err == nil)
	return err == nil
}

func (p *Provider) loginLocked(ctx context.Context, username, password string) error {
	page, err := p.pageLocked(ctx)
	if err != nil {
		return err
	}
	if err := p.navigateLocked(ctx, p.baseURL); err != nil {
		return err
	}
	if err := page.WaitVisible(ctx, selLoginButton, p.waitTimeout); err != nil {
		return fmt.Errorf("login button: %w", err)
	}
	if err := page.Click(ctx, selLoginButton); err != nil {
		return fmt.Errorf("open login form: %w", err)
	}
	if err := page.WaitVisible(ctx, selUsername, p.waitTimeout); err != nil {
		return fmt.Errorf("login form: %w", err)
	}
	if err := page.Fill(ctx, selUsername, username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if err := page.Fill(ctx, selPassword, password); err != nil {
		return fmt.Errorf("fill password: %w", err)
	}
	if err := page.Click(ctx, selLoginSubmit); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := page.WaitVisible(ctx, selBalance, loginConfirmTimeout); err != nil {
		return fmt.Errorf("login not confirmed: %w", err)
	}
	return nil
}

// IsLoggedIn checks the page for the account balance marker. A session that
// fails the check is marked expired.
func (p *Provider) IsLoggedIn(ctx context.Context) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session.State() != session.Active {
		return false
	}
	return p.probeLocked(ctx)
}

func (p *Provider) probeLocked(ctx context.Context) bool {
	if p.page == nil {
		_ = p.session.Expire()
		return false
	}
	found, err := p.page.Exists(ctx, selBalance)
	if err != nil || !found {
		p.logger.Info("session no longer active", "error", err)
		_ = p.session.Expire()
		return false
	}
	return true
}

// Logout signs out if a session is active and tears the browser down.
func (p *Provider) Logout(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.session.State() == session.LoggedOut && p.page == nil {
		return
	}

	if p.session.State() == session.Active && p.page != nil {
		if err := p.page.Click(ctx, selLogoutButton); err != nil {
			p.logger.Warn("logout click failed", "error", err)
		}
	}
	p.session.Reset()
	p.closePageLocked()
	p.logger.Info("logged out")
}

func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.session.Reset()
	return p.closePageLocked()
}

func (p *Provider) pageLocked(ctx context.Context) (browser.Page, error) {
	if p.page != nil {
		return p.page, nil
	}
	if p.launch == nil {
		return nil, fmt.Errorf("no browser launcher configured")
	}
	page, err := p.launch(ctx)
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	p.page = page
	return page, nil
}

func (p *Provider) closePageLocked() error {
	if p.page == nil {
		return nil
	}
	err := p.page.Close()
	p.page = nil
	if err != nil {
		return fmt.Errorf("close browser: %w", err)
	}
	return nil
}

func (p *Provider) navigateLocked(ctx context.Context, url string) error {
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("navigation limiter: %w", err)
	}
	if err := p.page.Navigate(ctx, url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// snapshot loads url while logged in, waits for ready and returns the parsed
// document. The lock is released before the caller parses it.
func (p *Provider) snapshot(ctx context.Context, step, url, ready string) (*goquery.Document, bool) {
	p.mu.Lock()
	html, err := p.fetchLocked(ctx, url, ready)
	p.mu.Unlock()

	if err != nil {
		p.logger.Warn("page load failed", "step", step, "url", url, "error", err)
		return nil, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		p.logger.Warn("page parse failed", "step", step, "url", url, "error", err)
		return nil, false
	}
	return doc, true
}

func (p *Provider) fetchLocked(ctx context.Context, url, ready string) (string, error) {
	if p.session.State() != session.Active || p.page == nil {
		return "", fmt.Errorf("not logged in")
	}
	if err := p.navigateLocked(ctx, url); err != nil {
		return "", err
	}
	if err := p.page.WaitVisible(ctx, ready, p.waitTimeout); err != nil {
		return "", fmt.Errorf("wait for %s: %w", ready, err)
	}
	return p.page.HTML(ctx)
}

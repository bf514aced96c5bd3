// Package browsertest provides an in-memory browser.Page that serves fixture
// HTML and evaluates selectors with goquery.
package browsertest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Vodeneev/betscraper/internal/pkg/browser"
)

const blankPage = "<html><head></head><body></body></html>"

// FakePage is a scripted browser.Page.
type FakePage struct {
	mu sync.Mutex

	// Routes maps a URL to the HTML served after navigating to it.
	Routes map[string]string
	// OnClick runs after a successful click on the selector.
	OnClick map[string]func(p *FakePage)
	// NavigateErr, when set, fails every navigation.
	NavigateErr error

	html        string
	url         string
	values      map[string]string
	clicks      []string
	navigations []string
	launches    int
	closes      int
	closed      bool
}

var _ browser.Page = (*FakePage)(nil)

func New() *FakePage {
	return &FakePage{
		Routes:  map[string]string{},
		OnClick: map[string]func(p *FakePage){},
		html:    blankPage,
		values:  map[string]string{},
	}
}

// Launcher returns a launcher that hands out this page and counts launches.
func (f *FakePage) Launcher() browser.Launcher {
	return func(context.Context) (browser.Page, error) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.launches++
		f.closed = false
		return f, nil
	}
}

// SetHTML replaces the current document.
func (f *FakePage) SetHTML(html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.html = html
}

// Route registers the HTML served for url.
func (f *FakePage) Route(url, html string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Routes[url] = html
}

func (f *FakePage) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usable(ctx); err != nil {
		return err
	}
	f.navigations = append(f.navigations, url)
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	f.url = url
	if html, ok := f.Routes[url]; ok {
		f.html = html
	} else {
		f.html = blankPage
	}
	return nil
}

func (f *FakePage) WaitVisible(ctx context.Context, selector string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usable(ctx); err != nil {
		return err
	}
	if !f.matches(selector) {
		return fmt.Errorf("wait for %s: %w", selector, context.DeadlineExceeded)
	}
	return nil
}

func (f *FakePage) Exists(ctx context.Context, selector string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usable(ctx); err != nil {
		return false, err
	}
	return f.matches(selector), nil
}

func (f *FakePage) Click(ctx context.Context, selector string) error {
	f.mu.Lock()
	if err := f.usable(ctx); err != nil {
		f.mu.Unlock()
		return err
	}
	if !f.matches(selector) {
		f.mu.Unlock()
		return fmt.Errorf("click %s: no such node", selector)
	}
	f.clicks = append(f.clicks, selector)
	fn := f.OnClick[selector]
	f.mu.Unlock()

	if fn != nil {
		fn(f)
	}
	return nil
}

func (f *FakePage) Fill(ctx context.Context, selector, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usable(ctx); err != nil {
		return err
	}
	if !f.matches(selector) {
		return fmt.Errorf("fill %s: no such node", selector)
	}
	f.values[selector] = value
	return nil
}

func (f *FakePage) HTML(ctx context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.usable(ctx); err != nil {
		return "", err
	}
	return f.html, nil
}

func (f *FakePage) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	f.closed = true
	return nil
}

// Value returns what was filled into selector.
func (f *FakePage) Value(selector string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values[selector]
}

// Clicks returns the clicked selectors in order.
func (f *FakePage) Clicks() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.clicks...)
}

// Navigations returns visited URLs in order.
func (f *FakePage) Navigations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.navigations...)
}

// Launches returns how many times the launcher handed out the page.
func (f *FakePage) Launches() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.launches
}

// Closes returns how many times Close was called.
func (f *FakePage) Closes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *FakePage) usable(ctx context.Context) error {
	if f.closed {
		return browser.ErrClosed
	}
	return ctx.Err()
}

func (f *FakePage) matches(selector string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(f.html))
	if err != nil {
		return false
	}
	return doc.Find(selector).Length() > 0
}

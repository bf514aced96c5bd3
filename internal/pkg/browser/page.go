// Package browser wraps the headless browser a provider integration drives.
// Integrations own their Page exclusively and close it on logout/dispose.
package browser

import (
	"context"
	"errors"
	"time"
)

// ErrClosed is returned by operations on a closed page.
var ErrClosed = errors.New("browser page closed")

// Page is the small set of DOM interactions integrations need.
// Selectors are CSS selectors.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string, timeout time.Duration) error
	Exists(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	// HTML returns the outer HTML of the current document.
	HTML(ctx context.Context) (string, error)
	Close() error
}

// Launcher starts a new page.
type Launcher func(ctx context.Context) (Page, error)

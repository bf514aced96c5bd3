// Package notify delivers operator alerts about provider sessions.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vodeneev/betscraper/internal/pkg/enums"
)

type AlertKind int

const (
	AlertLoginFailed AlertKind = iota
	AlertReloginFailed
	AlertNoActiveProviders
	AlertProviderRecovered
)

func (k AlertKind) String() string {
	switch k {
	case AlertLoginFailed:
		return "login_failed"
	case AlertReloginFailed:
		return "relogin_failed"
	case AlertNoActiveProviders:
		return "no_active_providers"
	case AlertProviderRecovered:
		return "provider_recovered"
	default:
		return fmt.Sprintf("alert(%d)", int(k))
	}
}

// Alert is one operator notification. Provider is empty for process-wide alerts.
type Alert struct {
	Kind     AlertKind
	Provider enums.BettingProvider
	Message  string
	At       time.Time
}

// Notifier must not block the caller for long.
type Notifier interface {
	Notify(ctx context.Context, a Alert) error
}

// LogNotifier writes alerts to the log. Used when Telegram is not configured.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, a Alert) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("alert", "kind", a.Kind.String(), "provider", string(a.Provider), "message", a.Message)
	return nil
}

func format(a Alert) string {
	title := map[AlertKind]string{
		AlertLoginFailed:       "Login failed",
		AlertReloginFailed:     "Session lost",
		AlertNoActiveProviders: "No active providers",
		AlertProviderRecovered: "Provider recovered",
	}[a.Kind]
	if title == "" {
		title = a.Kind.String()
	}

	text := "*" + title + "*"
	if a.Provider != "" {
		text += ": " + a.Provider.DisplayName()
	}
	if a.Message != "" {
		text += "\n\n" + a.Message
	}
	at := a.At
	if at.IsZero() {
		at = time.Now()
	}
	return text + "\n\n_" + at.UTC().Format("2006-01-02 15:04:05 UTC") + "_"
}

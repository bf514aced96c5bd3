package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between two messages to the same chat (~30/min limit).
const telegramSendInterval = 2 * time.Second

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

var _ Notifier = (*TelegramNotifier)(nil)

// TelegramNotifier queues alerts and sends them from one goroutine, spaced by
// at least the send interval.
type TelegramNotifier struct {
	bot      sender
	chatID   int64
	interval time.Duration
	logger   *slog.Logger

	queue     chan Alert
	queueDone chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	stopOnce  sync.Once

	mu       sync.Mutex
	lastSend time.Time
}

func NewTelegramNotifier(token string, chatID int64, logger *slog.Logger) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false
	return newTelegramNotifier(bot, chatID, telegramSendInterval, logger), nil
}

func newTelegramNotifier(bot sender, chatID int64, interval time.Duration, logger *slog.Logger) *TelegramNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		interval:  interval,
		logger:    logger.With("component", "telegram"),
		queue:     make(chan Alert, 100),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go n.messageSender()
	n.logger.Info("Telegram notifier initialized", "chat_id", chatID)
	return n
}

// Notify queues the alert; it fails fast when the queue is full.
func (n *TelegramNotifier) Notify(ctx context.Context, a Alert) error {
	if a.At.IsZero() {
		a.At = time.Now()
	}
	select {
	case <-n.ctx.Done():
		return fmt.Errorf("notifier stopped")
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- a:
		return nil
	default:
		n.logger.Warn("queue full, dropping alert", "kind", a.Kind.String(), "provider", string(a.Provider))
		return fmt.Errorf("message queue is full")
	}
}

// QueueLen returns the number of alerts waiting to be sent.
func (n *TelegramNotifier) QueueLen() int {
	return len(n.queue)
}

func (n *TelegramNotifier) messageSender() {
	defer close(n.queueDone)
	for {
		select {
		case <-n.ctx.Done():
			for {
				select {
				case a := <-n.queue:
					n.send(a)
				default:
					return
				}
			}
		case a := <-n.queue:
			n.send(a)
		}
	}
}

func (n *TelegramNotifier) send(a Alert) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if wait := n.interval - time.Since(n.lastSend); wait > 0 {
		select {
		case <-time.After(wait):
		case <-n.ctx.Done():
			// draining on stop: still honour the interval
			time.Sleep(wait)
		}
	}

	msg := tgbotapi.NewMessage(n.chatID, format(a))
	msg.ParseMode = tgbotapi.ModeMarkdown

	_, err := n.bot.Send(msg)
	n.lastSend = time.Now()
	if err != nil {
		n.logger.Error("Telegram send failed", "kind", a.Kind.String(), "provider", string(a.Provider), "error", err)
		return
	}
	n.logger.Info("Telegram alert sent", "kind", a.Kind.String(), "provider", string(a.Provider), "queue_length", len(n.queue))
}

// Stop sends what is queued and stops the sender.
func (n *TelegramNotifier) Stop() {
	n.stopOnce.Do(func() {
		n.cancel()
		<-n.queueDone
	})
}

package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Sender delivers one text message to a chat.
type Sender interface {
	SendText(ctx context.Context, chatID, text string) error
}

// Reminders fires one-off delayed messages. Pending reminders live only in
// memory and are lost on restart.
type Reminders struct {
	sender  Sender
	log     *slog.Logger
	timeout time.Duration

	mu      sync.Mutex
	timers  map[*time.Timer]struct{}
	stopped bool
}

func NewReminders(sender Sender, log *slog.Logger) *Reminders {
	return &Reminders{
		sender:  sender,
		log:     log,
		timeout: 10 * time.Second,
		timers:  make(map[*time.Timer]struct{}),
	}
}

// Schedule sends text to chatID after delay. It returns false once Stop has
// been called.
func (r *Reminders) Schedule(chatID string, delay time.Duration, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		return false
	}

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		r.mu.Lock()
		delete(r.timers, timer)
		r.mu.Unlock()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.sender.SendText(ctx, chatID, text); err != nil {
			r.log.Warn("reminder send: failed", slog.String("chat_id", chatID), slog.String("error", err.Error()))
			return
		}
		r.log.Info("reminder send: ok", slog.String("chat_id", chatID))
	})
	r.timers[timer] = struct{}{}
	return true
}

// Pending reports how many reminders have not fired yet.
func (r *Reminders) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// Stop cancels every pending reminder.
func (r *Reminders) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stopped = true
	for t := range r.timers {
		t.Stop()
	}
	r.timers = map[*time.Timer]struct{}{}
}

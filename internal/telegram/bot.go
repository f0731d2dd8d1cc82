// Package telegram connects the booking conversation to a Telegram bot:
// it turns updates into booking events and replies into messages with
// inline keyboards.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/MarobustTech/ProHealth-Sarojaa-Clinic/internal/booking"
)

// API is the part of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type Conversation interface {
	Handle(ctx context.Context, s *booking.Session, ev booking.Event) (booking.Reply, error)
}

// Observer receives one call per processed update. *metrics.ClinicMetrics
// satisfies it.
type Observer interface {
	ObserveBotUpdate(kind, outcome string)
}

type Bot struct {
	api      API
	flow     Conversation
	sessions SessionStore
	log      *slog.Logger
	observer Observer
	timeout  time.Duration

	mu     sync.Mutex
	queues map[string]*chatQueue
}

// chatQueue holds the updates of one chat that its worker has not handled
// yet. A chat has at most one worker; it exits once the queue is empty.
type chatQueue struct {
	pending []update
}

func NewBot(api API, flow Conversation, sessions SessionStore, log *slog.Logger, observer Observer) *Bot {
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		api:      api,
		flow:     flow,
		sessions: sessions,
		log:      log,
		observer: observer,
		timeout:  15 * time.Second,
		queues:   make(map[string]*chatQueue),
	}
}

// Run long-polls for updates until ctx is cancelled. Updates of one chat are
// handled one at a time in arrival order; different chats proceed
// concurrently. Run returns after every queued update has been handled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)
	b.log.Info("telegram bot: polling started")

	var wg sync.WaitGroup
	defer wg.Wait()
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info("telegram bot: polling stopped")
			return nil
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if in, ok := inbound(u); ok {
				b.enqueue(ctx, in, &wg)
			}
		}
	}
}

// enqueue appends in to its chat's queue and starts a worker for the chat
// when none is running.
func (b *Bot) enqueue(ctx context.Context, in update, wg *sync.WaitGroup) {
	b.mu.Lock()
	q, running := b.queues[in.chatID]
	if !running {
		q = &chatQueue{}
		b.queues[in.chatID] = q
	}
	q.pending = append(q.pending, in)
	b.mu.Unlock()

	if !running {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.drain(ctx, in.chatID, q)
		}()
	}
}

func (b *Bot) drain(ctx context.Context, chatID string, q *chatQueue) {
	for {
		b.mu.Lock()
		if len(q.pending) == 0 {
			delete(b.queues, chatID)
			b.mu.Unlock()
			return
		}
		in := q.pending[0]
		q.pending[0] = update{}
		q.pending = q.pending[1:]
		b.mu.Unlock()

		b.handle(ctx, in)
	}
}

// activeChats is the number of chats with a running worker.
func (b *Bot) activeChats() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queues)
}

// HandleUpdate processes one update end to end on the calling goroutine.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	if in, ok := inbound(u); ok {
		b.handle(ctx, in)
	}
}

func (b *Bot) handle(ctx context.Context, in update) {
	log := b.log.With(slog.String("chat_id", in.chatID), slog.String("kind", in.kind))

	if in.callbackID != "" {
		if _, err := b.api.Request(tgbotapi.NewCallback(in.callbackID, "")); err != nil {
			log.Warn("telegram bot: answer callback failed", slog.String("error", err.Error()))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	s, err := b.sessions.Load(ctx, in.chatID)
	if err != nil {
		log.Error("telegram bot: session load failed", slog.String("error", err.Error()))
		s = booking.NewSession(in.chatID)
	}

	reply, err := b.flow.Handle(ctx, s, in.event)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		log.Error("telegram bot: conversation failed", slog.String("state", string(s.State)), slog.String("error", err.Error()))
	}
	if err := b.sessions.Save(ctx, s); err != nil {
		outcome = "error"
		log.Error("telegram bot: session save failed", slog.String("error", err.Error()))
	}
	b.observe(in.kind, outcome)

	if reply.Empty() {
		return
	}
	if err := b.render(in, reply); err != nil {
		log.Error("telegram bot: send failed", slog.String("error", err.Error()))
		return
	}
	log.Info("telegram bot: handled", slog.String("state", string(s.State)))
}

// render edits the message a button belonged to, so the conversation stays
// in one bubble, and falls back to a new message.
func (b *Bot) render(in update, reply booking.Reply) error {
	markup := keyboard(reply)
	if in.messageID != 0 {
		edit := tgbotapi.NewEditMessageTextAndMarkup(in.chat, in.messageID, reply.Text, markup)
		if _, err := b.api.Send(edit); err == nil {
			return nil
		}
	}
	msg := tgbotapi.NewMessage(in.chat, reply.Text)
	if len(markup.InlineKeyboard) > 0 {
		msg.ReplyMarkup = markup
	}
	_, err := b.api.Send(msg)
	return err
}

// SendText delivers a plain message. Reminders use it.
func (b *Bot) SendText(ctx context.Context, chatID, text string) error {
	return Sender{API: b.api}.SendText(ctx, chatID, text)
}

// Sender sends plain messages without a conversation attached, so reminders
// can be built before the Bot that owns the flow.
type Sender struct {
	API API
}

func (s Sender) SendText(ctx context.Context, chatID, text string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("telegram: invalid chat id %q", chatID)
	}
	if _, err := s.API.Send(tgbotapi.NewMessage(id, text)); err != nil {
		return fmt.Errorf("telegram: send: %w", err)
	}
	return nil
}

func (b *Bot) observe(kind, outcome string) {
	if b.observer != nil {
		b.observer.ObserveBotUpdate(kind, outcome)
	}
}

type update struct {
	chat       int64
	chatID     string
	messageID  int
	callbackID string
	kind       string
	event      booking.Event
}

func inbound(u tgbotapi.Update) (update, bool) {
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil && u.CallbackQuery.Message.Chat != nil:
		cq := u.CallbackQuery
		return update{
			chat:       cq.Message.Chat.ID,
			chatID:     strconv.FormatInt(cq.Message.Chat.ID, 10),
			messageID:  cq.Message.MessageID,
			callbackID: cq.ID,
			kind:       "callback",
			event:      booking.Event{Action: booking.ParseAction(cq.Data)},
		}, true
	case u.Message != nil && u.Message.Chat != nil:
		m := u.Message
		in := update{chat: m.Chat.ID, chatID: strconv.FormatInt(m.Chat.ID, 10), kind: "message"}
		if m.IsCommand() {
			in.kind = "command"
			in.event = command(m.Command(), m.CommandArguments())
		} else {
			in.event = booking.Text(m.Text)
		}
		return in, true
	default:
		return update{}, false
	}
}

func command(name, args string) booking.Event {
	switch strings.ToLower(name) {
	case "start":
		return booking.Start(args)
	case "cancel":
		return booking.Press(booking.KindCancel, "")
	case "book":
		return booking.Press(booking.KindMenu, booking.MenuBook)
	case "appointments":
		return booking.Press(booking.KindMenu, booking.MenuMine)
	default:
		return booking.Press(booking.KindHome, "")
	}
}

func keyboard(reply booking.Reply) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(reply.Buttons))
	for _, line := range reply.Buttons {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(line))
		for _, btn := range line {
			if btn.URL != "" {
				buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonURL(btn.Label, btn.URL))
				continue
			}
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Action.Encode()))
		}
		if len(buttons) > 0 {
			rows = append(rows, buttons)
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// DeepLink opens the bot on an existing appointment.
func DeepLink(botUsername, token string) string {
	if botUsername == "" || token == "" {
		return ""
	}
	return "https://t.me/" + botUsername + "?start=" + booking.DeepLinkPayload(token)
}

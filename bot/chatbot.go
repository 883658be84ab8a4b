package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ChatBot/bot/chat"
	"ChatBot/entity"
	"ChatBot/internal/lib/sl"
)

// Structured values sent by the reservation offer buttons.
const (
	TokenReservationYes = "makehotelreservationyes"
	TokenReservationNo  = "makehotelreservationno"
)

const (
	DefaultWelcome  = "Hi, it's great to see you!"
	DefaultQuestion = "What information are you looking for?"
)

// Answerer produces a reply to free text when no dialog is running.
type Answerer interface {
	Answer(ctx context.Context, text string) (string, error)
}

// Greeting is sent to every member who joins a conversation.
type Greeting struct {
	Welcome  string
	Question string
}

// ChatBot routes inbound activities: greets new members, records conversation
// references and drives the reservation dialog or the default answer.
type ChatBot struct {
	dialog     chat.Dialog
	references *chat.ReferenceStore
	answerer   Answerer
	greeting   Greeting
	listener   chat.ActivityListener
	locks      *chat.ConversationLocks
	log        *slog.Logger
}

func NewChatBot(dialog chat.Dialog, references *chat.ReferenceStore, answerer Answerer, log *slog.Logger) *ChatBot {
	return &ChatBot{
		dialog:     dialog,
		references: references,
		answerer:   answerer,
		greeting: Greeting{
			Welcome:  DefaultWelcome,
			Question: DefaultQuestion,
		},
		locks: chat.NewConversationLocks(),
		log:   log.With(sl.Module("chatbot")),
	}
}

// SetGreeting overrides the greeting texts; empty fields keep their defaults.
func (b *ChatBot) SetGreeting(g Greeting) {
	if g.Welcome != "" {
		b.greeting.Welcome = g.Welcome
	}
	if g.Question != "" {
		b.greeting.Question = g.Question
	}
}

// SetActivityListener sets the listener for incoming activities.
func (b *ChatBot) SetActivityListener(l chat.ActivityListener) {
	b.listener = l
}

// OnTurn processes one inbound activity and returns the activities sent in reply.
// Turns of the same conversation run one at a time, in the order they take the lock.
// State changes are saved once, after routing, and only if routing succeeded.
func (b *ChatBot) OnTurn(ctx context.Context, activity *entity.Activity, connector chat.Connector) (sent []*entity.Activity, err error) {
	log := b.log.With(
		slog.String("channel_id", activity.ChannelID),
		slog.String("conversation_id", activity.Conversation.ID),
		slog.String("type", activity.Type),
	)

	key := chat.ConversationKey(activity)
	if err = b.locks.Lock(ctx, key); err != nil {
		log.Warn("waiting for conversation", sl.Err(err))
		return nil, fmt.Errorf("waiting for conversation: %w", err)
	}
	defer b.locks.Unlock(key)

	tc := chat.NewTurnContext(activity, connector)

	defer func() {
		if r := recover(); r != nil {
			log.Error("turn panic", slog.Any("panic", r))
			sent, err = tc.Sent(), fmt.Errorf("turn panic: %v", r)
		}
	}()

	if b.listener != nil {
		b.listener.OnActivity(activity)
	}

	switch activity.Type {
	case entity.ActivityConversationUpdate:
		err = b.onConversationUpdate(ctx, tc)
	case entity.ActivityMessage:
		err = b.onMessage(ctx, tc)
	default:
		log.Debug("activity ignored")
	}
	if err != nil {
		log.Error("turn failed", sl.Err(err))
		return tc.Sent(), err
	}

	if err = tc.Flush(ctx); err != nil {
		log.Error("saving turn state", sl.Err(err))
		return tc.Sent(), fmt.Errorf("saving turn state: %w", err)
	}

	log.Debug("turn completed", slog.Int("sent", len(tc.Sent())))
	return tc.Sent(), nil
}

func (b *ChatBot) onConversationUpdate(ctx context.Context, tc *chat.TurnContext) error {
	a := tc.Activity
	b.addConversationReference(a)

	for _, member := range a.MembersAdded {
		// greet anyone that is not the bot itself
		if member.ID == a.Recipient.ID {
			continue
		}
		if err := tc.SendText(ctx, b.greeting.Welcome); err != nil {
			return err
		}
		if err := tc.SendText(ctx, b.greeting.Question); err != nil {
			return err
		}
	}
	return nil
}

func (b *ChatBot) onMessage(ctx context.Context, tc *chat.TurnContext) error {
	a := tc.Activity
	b.addConversationReference(a)

	switch a.ValueString() {
	case TokenReservationYes:
		return b.runDialog(ctx, tc)
	case TokenReservationNo:
		b.log.Debug("reservation declined", slog.String("user_id", a.From.ID))
		return nil
	}

	active, err := b.dialog.Active(ctx, tc)
	if err != nil {
		return err
	}
	if !active {
		return b.answer(ctx, tc)
	}

	_, err = b.dialog.Resume(ctx, tc)
	if errors.Is(err, chat.ErrDialogNotActive) {
		return b.answer(ctx, tc)
	}
	return err
}

// runDialog continues the dialog in progress or starts a new one.
func (b *ChatBot) runDialog(ctx context.Context, tc *chat.TurnContext) error {
	status, err := b.dialog.Resume(ctx, tc)
	if errors.Is(err, chat.ErrDialogNotActive) {
		status, err = b.dialog.Start(ctx, tc)
	}
	if err != nil {
		return err
	}
	b.log.Debug("dialog turn",
		slog.String("dialog_id", string(b.dialog.ID())),
		slog.String("status", string(status)),
	)
	return nil
}

func (b *ChatBot) answer(ctx context.Context, tc *chat.TurnContext) error {
	text, err := b.answerer.Answer(ctx, tc.Activity.Text)
	if err != nil {
		return fmt.Errorf("default answer: %w", err)
	}
	return tc.SendText(ctx, text)
}

func (b *ChatBot) addConversationReference(a *entity.Activity) {
	if a.From.ID == "" {
		return
	}
	b.references.Upsert(a.From.ID, a.ConversationReference())
}

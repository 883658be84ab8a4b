package chat

import (
	"context"
	"fmt"
	"time"

	"ChatBot/entity"

	"github.com/google/uuid"
)

// flusher is a turn-scoped state cache that writes its changes when the turn ends.
type flusher interface {
	flush(ctx context.Context) error
}

// TurnContext carries one inbound activity through routing.
// It records every outbound activity and the state caches touched during the turn.
type TurnContext struct {
	Activity *entity.Activity

	connector Connector
	sent      []*entity.Activity
	bound     map[any]flusher
	order     []flusher
	flushed   bool
}

// NewTurnContext creates a turn for activity. connector may be nil, in which
// case outbound activities are only recorded.
func NewTurnContext(activity *entity.Activity, connector Connector) *TurnContext {
	return &TurnContext{
		Activity:  activity,
		connector: connector,
		bound:     make(map[any]flusher),
	}
}

// SendText replies to the sender of the inbound activity.
func (tc *TurnContext) SendText(ctx context.Context, text string) error {
	return tc.SendActivity(ctx, tc.Activity.Reply(text))
}

// SendActivity delivers an outbound activity and records it on the turn.
func (tc *TurnContext) SendActivity(ctx context.Context, activity *entity.Activity) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if activity.ID == "" {
		activity.ID = uuid.NewString()
	}
	if activity.Timestamp.IsZero() {
		activity.Timestamp = time.Now().UTC()
	}
	if tc.connector != nil {
		if err := tc.connector.Send(ctx, activity); err != nil {
			return fmt.Errorf("sending activity: %w", err)
		}
	}
	tc.sent = append(tc.sent, activity)
	return nil
}

// Sent returns the outbound activities of this turn in send order.
func (tc *TurnContext) Sent() []*entity.Activity {
	return tc.sent
}

// Flush saves the state changes of every cache bound to the turn, last bound first.
// The cache that drove the turn (the dialog cursor) is bound first and written
// last, so a failed write never leaves the cursor ahead of the data it collected.
// Only the first call writes; later calls are no-ops.
func (tc *TurnContext) Flush(ctx context.Context) error {
	if tc.flushed {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	tc.flushed = true
	for i := len(tc.order) - 1; i >= 0; i-- {
		if err := tc.order[i].flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (tc *TurnContext) bind(key any, create func() flusher) flusher {
	if f, ok := tc.bound[key]; ok {
		return f
	}
	f := create()
	tc.bound[key] = f
	tc.order = append(tc.order, f)
	return f
}

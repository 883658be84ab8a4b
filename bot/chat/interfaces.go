package chat

import (
	"context"
	"errors"

	"ChatBot/entity"
)

// DialogID is a unique identifier for a dialog.
type DialogID string

// ErrDialogNotActive is returned by Resume when the conversation has no dialog in progress.
var ErrDialogNotActive = errors.New("dialog not active")

// StepResult represents the outcome of entering a step.
// A nil Prompt and false Complete fall through to the next step in the same turn.
type StepResult struct {
	Prompt   *Prompt
	Complete bool
	Error    error
}

// Step is a single entry of a waterfall.
type Step[V any] struct {
	Name string

	// Enter runs when the cursor reaches the step. It may send messages and mutate values.
	Enter func(ctx context.Context, tc *TurnContext, values *V) StepResult

	// Accept stores the recognized reply to the prompt issued by Enter.
	Accept func(values *V, outcome Outcome)
}

// Storage persists keyed state documents.
// Load returns nil, nil when nothing is stored under key.
type Storage[T any] interface {
	Load(ctx context.Context, key string) (*T, error)
	Save(ctx context.Context, key string, value *T) error
	Delete(ctx context.Context, key string) error
}

// Connector delivers an outbound activity to the channel it is addressed to.
type Connector interface {
	Send(ctx context.Context, activity *entity.Activity) error
}

// Dialog is what the turn router needs from a waterfall, independent of its value type.
type Dialog interface {
	ID() DialogID
	Start(ctx context.Context, tc *TurnContext) (Status, error)
	Resume(ctx context.Context, tc *TurnContext) (Status, error)
	Active(ctx context.Context, tc *TurnContext) (bool, error)
}

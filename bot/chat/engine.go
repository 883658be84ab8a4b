package chat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ChatBot/internal/lib/sl"
)

const (
	// ValidatorPositive accepts numbers greater than zero.
	ValidatorPositive = "positive"

	defaultAbandonText = "Let's start over another time."
)

// Waterfall runs an ordered list of steps for a conversation, one prompt per turn.
// Its cursor and values are stored as data between turns.
type Waterfall[V any] struct {
	id          DialogID
	steps       []Step[V]
	storage     Storage[DialogState[V]]
	validators  map[string]Validator
	maxAttempts int
	abandonText string
	now         func() time.Time
	log         *slog.Logger
}

// NewWaterfall creates a dialog over steps whose state is kept in storage.
func NewWaterfall[V any](id DialogID, storage Storage[DialogState[V]], log *slog.Logger, steps ...Step[V]) *Waterfall[V] {
	w := &Waterfall[V]{
		id:          id,
		steps:       steps,
		storage:     storage,
		validators:  make(map[string]Validator),
		abandonText: defaultAbandonText,
		now:         time.Now,
		log:         log.With(sl.Module("chat.waterfall"), slog.String("dialog_id", string(id))),
	}
	w.RegisterValidator(ValidatorPositive, Positive)
	return w
}

func (w *Waterfall[V]) ID() DialogID { return w.id }

// RegisterValidator makes a validator available to prompts by name.
func (w *Waterfall[V]) RegisterValidator(name string, v Validator) {
	w.validators[name] = v
}

// SetMaxAttempts limits how many rejected replies a prompt accepts before the
// dialog is abandoned. Zero keeps re-asking forever.
func (w *Waterfall[V]) SetMaxAttempts(n int, abandonText string) {
	w.maxAttempts = n
	if abandonText != "" {
		w.abandonText = abandonText
	}
}

// SetClock replaces the clock used to resolve relative dates.
func (w *Waterfall[V]) SetClock(now func() time.Time) {
	w.now = now
}

// Start begins a new run at the first step, replacing any run in progress.
func (w *Waterfall[V]) Start(ctx context.Context, tc *TurnContext) (Status, error) {
	key := ConversationKey(tc.Activity)
	state := NewDialogState[V](tc.Activity.Conversation.ID, w.id)
	Bind(tc, w.storage).Set(key, state)

	w.log.Info("starting dialog",
		slog.String("conversation_id", state.ConversationID),
		slog.String("frame_id", state.FrameID),
	)

	return w.run(ctx, tc, key, state)
}

// Resume delivers the turn's reply to the pending prompt.
// It returns ErrDialogNotActive when no run is stored for the conversation.
func (w *Waterfall[V]) Resume(ctx context.Context, tc *TurnContext) (Status, error) {
	key := ConversationKey(tc.Activity)
	states := Bind(tc, w.storage)

	state, err := states.Get(ctx, key)
	if err != nil {
		return StatusNotStarted, fmt.Errorf("loading dialog state: %w", err)
	}
	if state == nil {
		return StatusNotStarted, ErrDialogNotActive
	}
	if state.Pending == nil || state.StepIndex >= len(w.steps) {
		// stored without a question; continue from the cursor
		return w.run(ctx, tc, key, state)
	}

	prompt := state.Pending
	outcome := Recognize(prompt, tc.Activity, w.now())
	accepted := outcome.Succeeded
	if accepted && prompt.Validator != "" {
		validate, ok := w.validators[prompt.Validator]
		if !ok {
			return state.Status(), fmt.Errorf("validator not found: %s", prompt.Validator)
		}
		accepted = validate(outcome)
	}

	if !accepted {
		return w.reject(ctx, tc, key, state, outcome)
	}

	step := w.steps[state.StepIndex]
	if step.Accept != nil {
		step.Accept(&state.Values, outcome)
	}
	state.Pending = nil
	state.Attempts = 0
	state.StepIndex++
	state.UpdatedAt = time.Now()

	w.log.Debug("prompt accepted",
		slog.String("conversation_id", state.ConversationID),
		slog.String("step", step.Name),
	)

	return w.run(ctx, tc, key, state)
}

// Active reports whether a run is stored for the conversation.
func (w *Waterfall[V]) Active(ctx context.Context, tc *TurnContext) (bool, error) {
	state, err := Bind(tc, w.storage).Get(ctx, ConversationKey(tc.Activity))
	if err != nil {
		return false, fmt.Errorf("loading dialog state: %w", err)
	}
	return state != nil, nil
}

// Cancel ends the run in progress without running further steps.
func (w *Waterfall[V]) Cancel(ctx context.Context, tc *TurnContext) error {
	Bind(tc, w.storage).Delete(ConversationKey(tc.Activity))
	return nil
}

// run enters steps from the cursor until one asks a question or the list ends.
func (w *Waterfall[V]) run(ctx context.Context, tc *TurnContext, key string, state *DialogState[V]) (Status, error) {
	states := Bind(tc, w.storage)

	for state.StepIndex < len(w.steps) {
		if err := ctx.Err(); err != nil {
			return StatusAwaitingReply, err
		}

		step := w.steps[state.StepIndex]
		result := step.Enter(ctx, tc, &state.Values)
		if result.Error != nil {
			w.log.Error("step error",
				slog.String("conversation_id", state.ConversationID),
				slog.String("step", step.Name),
				sl.Err(result.Error),
			)
			return StatusAwaitingReply, fmt.Errorf("step %s: %w", step.Name, result.Error)
		}

		if result.Complete {
			break
		}

		if result.Prompt != nil {
			state.Pending = result.Prompt
			state.Attempts = 0
			state.UpdatedAt = time.Now()
			if err := tc.SendActivity(ctx, result.Prompt.activity(tc, result.Prompt.Text)); err != nil {
				return StatusAwaitingReply, err
			}
			w.log.Debug("awaiting reply",
				slog.String("conversation_id", state.ConversationID),
				slog.String("step", step.Name),
			)
			return StatusAwaitingReply, nil
		}

		state.StepIndex++
	}

	states.Delete(key)
	w.log.Info("dialog completed",
		slog.String("conversation_id", state.ConversationID),
		slog.String("frame_id", state.FrameID),
	)
	return StatusCompleted, nil
}

// reject re-asks the pending prompt, or abandons the run once the attempt limit is reached.
func (w *Waterfall[V]) reject(ctx context.Context, tc *TurnContext, key string, state *DialogState[V], outcome Outcome) (Status, error) {
	state.Attempts++
	state.UpdatedAt = time.Now()

	w.log.Debug("prompt rejected",
		slog.String("conversation_id", state.ConversationID),
		slog.String("step", w.steps[state.StepIndex].Name),
		slog.Bool("parsed", outcome.Succeeded),
		slog.Int("attempts", state.Attempts),
	)

	if w.maxAttempts > 0 && state.Attempts >= w.maxAttempts {
		Bind(tc, w.storage).Delete(key)
		w.log.Info("dialog abandoned",
			slog.String("conversation_id", state.ConversationID),
			slog.Int("attempts", state.Attempts),
		)
		if err := tc.SendText(ctx, w.abandonText); err != nil {
			return StatusNotStarted, err
		}
		return StatusNotStarted, nil
	}

	prompt := state.Pending
	if err := tc.SendActivity(ctx, prompt.activity(tc, prompt.retryText(outcome.Succeeded))); err != nil {
		return StatusAwaitingReply, err
	}
	return StatusAwaitingReply, nil
}

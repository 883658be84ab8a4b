package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signup struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

var errStepFailed = errors.New("step failed")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newSignup(storage Storage[DialogState[signup]], extra ...Step[signup]) *Waterfall[signup] {
	steps := []Step[signup]{
		{
			Name: "name",
			Enter: func(context.Context, *TurnContext, *signup) StepResult {
				return StepResult{Prompt: &Prompt{Kind: KindText, Text: "What is your name?"}}
			},
			Accept: func(v *signup, o Outcome) { v.Name = o.Text },
		},
		{
			Name: "age",
			Enter: func(context.Context, *TurnContext, *signup) StepResult {
				return StepResult{Prompt: &Prompt{
					Kind:      KindNumber,
					Text:      "How old are you?",
					Retry:     "Age must be greater than 0.",
					Validator: ValidatorPositive,
				}}
			},
			Accept: func(v *signup, o Outcome) { v.Age = o.Number },
		},
	}
	steps = append(steps, extra...)
	steps = append(steps, Step[signup]{
		Name: "done",
		Enter: func(ctx context.Context, tc *TurnContext, v *signup) StepResult {
			if err := tc.SendText(ctx, fmt.Sprintf("Thanks %s, %d", v.Name, v.Age)); err != nil {
				return StepResult{Error: err}
			}
			return StepResult{Complete: true}
		},
	})
	return NewWaterfall("signup", storage, discardLogger(), steps...)
}

// turn runs one turn and flushes state only when it succeeds.
func turn(t *testing.T, w *Waterfall[signup], text string, start bool) (Status, []string, error) {
	t.Helper()
	ctx := context.Background()
	tc := NewTurnContext(userMessage(text), nil)

	var status Status
	var err error
	if start {
		status, err = w.Start(ctx, tc)
	} else {
		status, err = w.Resume(ctx, tc)
	}
	if err == nil {
		require.NoError(t, tc.Flush(ctx))
	}
	return status, texts(tc.Sent()), err
}

func storedState(t *testing.T, storage Storage[DialogState[signup]]) *DialogState[signup] {
	t.Helper()
	state, err := storage.Load(context.Background(), "test/conversations/conv-1")
	require.NoError(t, err)
	return state
}

func TestWaterfall_RunsStepsInOrder(t *testing.T) {
	storage := NewMemoryStorage[DialogState[signup]]()
	w := newSignup(storage)

	status, sent, err := turn(t, w, "yes", true)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingReply, status)
	assert.Equal(t, []string{"What is your name?"}, sent)

	state := storedState(t, storage)
	require.NotNil(t, state)
	assert.Equal(t, 0, state.StepIndex)
	assert.Equal(t, KindText, state.Pending.Kind)
	assert.NotEmpty(t, state.FrameID)

	status, sent, err = turn(t, w, "Ann", false)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingReply, status)
	assert.Equal(t, []string{"How old are you?"}, sent)
	assert.Equal(t, "Ann", storedState(t, storage).Values.Name)

	status, sent, err = turn(t, w, "30", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, []string{"Thanks Ann, 30"}, sent)
	assert.Nil(t, storedState(t, storage))
}

func TestWaterfall_RejectKeepsStep(t *testing.T) {
	storage := NewMemoryStorage[DialogState[signup]]()
	w := newSignup(storage)

	_, _, err := turn(t, w, "yes", true)
	require.NoError(t, err)
	_, _, err = turn(t, w, "Ann", false)
	require.NoError(t, err)

	status, sent, err := turn(t, w, "0", false)
	require.NoError(t, err)
	assert.Equal(t, StatusAwaitingReply, status)
	assert.Equal(t, []string{"Age must be greater than 0."}, sent)

	state := storedState(t, storage)
	assert.Equal(t, 1, state.StepIndex)
	assert.Equal(t, 1, state.Attempts)
	assert.Equal(t, 0, state.Values.Age)

	_, sent, err = turn(t, w, "lots", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"Age must be greater than 0."}, sent)
	assert.Equal(t, 2, storedState(t, storage).Attempts)

	status, _, err = turn(t, w, "4", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
}

func TestWaterfall_DefaultRetryTexts(t *testing.T) {
	p := &Prompt{Kind: KindNumber, Text: "How many?"}
	assert.Equal(t, defaultNumberRetry, p.retryText(false))
	assert.Equal(t, defaultInvalid+" How many?", p.retryText(true))

	p.Retry = "custom"
	assert.Equal(t, "custom", p.retryText(false))
}

func TestWaterfall_MaxAttemptsAbandons(t *testing.T) {
	storage := NewMemoryStorage[DialogState[signup]]()
	w := newSignup(storage)
	w.SetMaxAttempts(2, "Maybe later.")

	_, _, err := turn(t, w, "yes", true)
	require.NoError(t, err)
	_, _, err = turn(t, w, "Ann", false)
	require.NoError(t, err)

	_, _, err = turn(t, w, "-1", false)
	require.NoError(t, err)
	status, sent, err := turn(t, w, "-1", false)
	require.NoError(t, err)

	assert.Equal(t, StatusNotStarted, status)
	assert.Equal(t, []string{"Maybe later."}, sent)
	assert.Nil(t, storedState(t, storage))
}

func TestWaterfall_ResumeWithoutState(t *testing.T) {
	w := newSignup(NewMemoryStorage[DialogState[signup]]())

	status, sent, err := turn(t, w, "hello", false)
	assert.ErrorIs(t, err, ErrDialogNotActive)
	assert.Equal(t, StatusNotStarted, status)
	assert.Empty(t, sent)
}

func TestWaterfall_StartReplacesRun(t *testing.T) {
	storage := NewMemoryStorage[DialogState[signup]]()
	w := newSignup(storage)

	_, _, err := turn(t, w, "yes", true)
	require.NoError(t, err)
	_, _, err = turn(t, w, "Ann", false)
	require.NoError(t, err)
	first := storedState(t, storage).FrameID

	_, sent, err := turn(t, w, "yes", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"What is your name?"}, sent)

	state := storedState(t, storage)
	assert.Equal(t, 0, state.StepIndex)
	assert.Empty(t, state.Values.Name)
	assert.NotEqual(t, first, state.FrameID)
}

func TestWaterfall_PassThroughStep(t *testing.T) {
	storage := NewMemoryStorage[DialogState[signup]]()
	w := newSignup(storage, Step[signup]{
		Name: "note",
		Enter: func(ctx context.Context, tc *TurnContext, v *signup) StepResult {
			return StepResult{Error: tc.SendText(ctx, "noted")}
		},
	})

	_, _, err := turn(t, w, "yes", true)
	require.NoError(t, err)
	_, _, err = turn(t, w, "Ann", false)
	require.NoError(t, err)

	status, sent, err := turn(t, w, "5", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
	assert.Equal(t, []string{"noted", "Thanks Ann, 5"}, sent)
}

func TestWaterfall_StepErrorLeavesStateUntouched(t *testing.T) {
	storage := NewMemoryStorage[DialogState[signup]]()
	w := newSignup(storage, Step[signup]{
		Name: "broken",
		Enter: func(context.Context, *TurnContext, *signup) StepResult {
			return StepResult{Error: errStepFailed}
		},
	})

	_, _, err := turn(t, w, "yes", true)
	require.NoError(t, err)
	_, _, err = turn(t, w, "Ann", false)
	require.NoError(t, err)

	_, _, err = turn(t, w, "5", false)
	require.ErrorIs(t, err, errStepFailed)

	state := storedState(t, storage)
	require.NotNil(t, state)
	assert.Equal(t, 1, state.StepIndex)
	assert.Equal(t, 0, state.Values.Age)
	assert.Equal(t, KindNumber, state.Pending.Kind)
}

func TestWaterfall_UnknownValidator(t *testing.T) {
	storage := NewMemoryStorage[DialogState[signup]]()
	w := NewWaterfall[signup]("odd", storage, discardLogger(), Step[signup]{
		Name: "ask",
		Enter: func(context.Context, *TurnContext, *signup) StepResult {
			return StepResult{Prompt: &Prompt{Kind: KindNumber, Text: "n?", Validator: "even"}}
		},
	})

	_, _, err := turn(t, w, "go", true)
	require.NoError(t, err)
	_, _, err = turn(t, w, "4", false)
	assert.ErrorContains(t, err, "even")

	w.RegisterValidator("even", func(o Outcome) bool { return o.Number%2 == 0 })
	status, _, err := turn(t, w, "4", false)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, status)
}

func TestWaterfall_Active(t *testing.T) {
	ctx := context.Background()
	storage := NewMemoryStorage[DialogState[signup]]()
	w := newSignup(storage)

	active, err := w.Active(ctx, NewTurnContext(userMessage("x"), nil))
	require.NoError(t, err)
	assert.False(t, active)

	_, _, err = turn(t, w, "yes", true)
	require.NoError(t, err)

	tc := NewTurnContext(userMessage("x"), nil)
	active, err = w.Active(ctx, tc)
	require.NoError(t, err)
	assert.True(t, active)

	require.NoError(t, w.Cancel(ctx, tc))
	require.NoError(t, tc.Flush(ctx))
	assert.Nil(t, storedState(t, storage))
}

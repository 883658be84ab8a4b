package answer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	requests []openai.ChatCompletionRequest
	reply    string
	err      error
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply},
		}},
	}, nil
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatic(t *testing.T) {
	got, err := Static{Text: "openai answer"}.Answer(context.Background(), "anything")
	require.NoError(t, err)
	assert.Equal(t, "openai answer", got)
}

func TestOpenAI_SendsOneRequest(t *testing.T) {
	client := &fakeCompleter{reply: "  Check-in is at 3pm.  "}
	answerer := NewOpenAIWithClient(client, "", "Be brief.", "fallback", discard())

	got, err := answerer.Answer(context.Background(), "When is check-in?")
	require.NoError(t, err)

	assert.Equal(t, "Check-in is at 3pm.", got)
	require.Len(t, client.requests, 1)
	req := client.requests[0]
	assert.Equal(t, openai.GPT4oMini, req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "When is check-in?", req.Messages[1].Content)
}

func TestOpenAI_FallbackOnError(t *testing.T) {
	client := &fakeCompleter{err: errors.New("rate limited")}
	answerer := NewOpenAIWithClient(client, "gpt-4o", "", "openai answer", discard())

	got, err := answerer.Answer(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "openai answer", got)
	require.Len(t, client.requests[0].Messages, 1)
}

func TestOpenAI_ErrorWithoutFallback(t *testing.T) {
	answerer := NewOpenAIWithClient(&fakeCompleter{err: errors.New("rate limited")}, "", "", "", discard())

	_, err := answerer.Answer(context.Background(), "hi")
	assert.ErrorContains(t, err, "rate limited")
}

func TestOpenAI_EmptyReplyUsesFallback(t *testing.T) {
	answerer := NewOpenAIWithClient(&fakeCompleter{reply: " "}, "", "", "openai answer", discard())

	got, err := answerer.Answer(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "openai answer", got)
}

func TestOpenAI_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	answerer := NewOpenAIWithClient(&fakeCompleter{err: context.Canceled}, "", "", "openai answer", discard())

	_, err := answerer.Answer(ctx, "hi")
	assert.ErrorIs(t, err, context.Canceled)
}

package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"ChatBot/internal/lib/sl"

	"github.com/sashabaranov/go-openai"
)

// Static always answers with the same text.
type Static struct {
	Text string
}

func (s Static) Answer(_ context.Context, _ string) (string, error) {
	return s.Text, nil
}

// ChatCompleter is the part of the OpenAI client used for answers.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI answers free text with a single chat completion.
// When the completion fails or comes back empty the fallback text is returned.
type OpenAI struct {
	client   ChatCompleter
	model    string
	prompt   string
	fallback string
	log      *slog.Logger
}

func NewOpenAI(apiKey, model, prompt, fallback string, log *slog.Logger) *OpenAI {
	return NewOpenAIWithClient(openai.NewClient(apiKey), model, prompt, fallback, log)
}

func NewOpenAIWithClient(client ChatCompleter, model, prompt, fallback string, log *slog.Logger) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{
		client:   client,
		model:    model,
		prompt:   prompt,
		fallback: fallback,
		log:      log.With(sl.Module("answer.openai")),
	}
}

func (o *OpenAI) Answer(ctx context.Context, question string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if o.prompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: o.prompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: question,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		o.log.Error("chat completion", sl.Err(err))
		if o.fallback != "" {
			return o.fallback, nil
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		o.log.Warn("empty chat completion", slog.String("model", o.model))
		return o.fallback, nil
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

package chat

import (
	"strings"

	"ChatBot/entity"
)

// PromptKind selects how a reply is recognized.
type PromptKind string

const (
	KindDate   PromptKind = "date"
	KindNumber PromptKind = "number"
	KindText   PromptKind = "text"
	KindChoice PromptKind = "choice"
)

const (
	defaultDateRetry   = "Sorry, I didn't get a date. Please enter a date like 2024-05-21 or \"tomorrow\"."
	defaultNumberRetry = "Sorry, I didn't get a number. Please enter a whole number."
	defaultTextRetry   = "Please type a reply."
	defaultChoiceRetry = "Please choose one of the options."
	defaultInvalid     = "That value is not allowed."
)

// Prompt is a pending question. It is persisted with the dialog state,
// so it carries only data; validators are referenced by name.
type Prompt struct {
	Kind      PromptKind `json:"kind" bson:"kind"`
	Text      string     `json:"text" bson:"text"`
	Retry     string     `json:"retry,omitempty" bson:"retry,omitempty"`
	Choices   []string   `json:"choices,omitempty" bson:"choices,omitempty"`
	Validator string     `json:"validator,omitempty" bson:"validator,omitempty"`
}

// FoundChoice is the option matched by a choice prompt.
type FoundChoice struct {
	Value string `json:"value" bson:"value"`
	Index int    `json:"index" bson:"index"`
}

// Outcome is the result of recognizing one reply. It lives for a single turn.
type Outcome struct {
	Succeeded bool
	Date      string
	Number    int
	Text      string
	Choice    FoundChoice
	Raw       string
}

// Validator applies a business rule to a recognized outcome.
type Validator func(outcome Outcome) bool

// Positive accepts numbers strictly greater than zero.
func Positive(outcome Outcome) bool {
	return outcome.Succeeded && outcome.Number > 0
}

// retryText picks the corrective message for a failed reply.
func (p *Prompt) retryText(parsed bool) string {
	text := p.Retry
	if text == "" {
		if parsed {
			text = defaultInvalid + " " + p.Text
		} else {
			text = defaultRetry(p.Kind)
		}
	}
	return text
}

func defaultRetry(kind PromptKind) string {
	switch kind {
	case KindDate:
		return defaultDateRetry
	case KindNumber:
		return defaultNumberRetry
	case KindChoice:
		return defaultChoiceRetry
	default:
		return defaultTextRetry
	}
}

// activity renders the prompt as an outbound activity. Choice prompts list their
// options as numbered text and as buttons.
func (p *Prompt) activity(tc *TurnContext, text string) *entity.Activity {
	if p.Kind != KindChoice || len(p.Choices) == 0 {
		return tc.Activity.Reply(text)
	}

	reply := tc.Activity.Reply(FormatNumberedOptions(text, p.Choices))
	buttons := make([]entity.CardAction, len(p.Choices))
	for i, choice := range p.Choices {
		buttons[i] = entity.CardAction{
			Type:  entity.ActionImBack,
			Title: choice,
			Value: choice,
		}
	}
	reply.Attachments = []entity.Attachment{entity.NewHeroCard(entity.HeroCard{Buttons: buttons})}
	return reply
}

// replyText returns the text a prompt should recognize: a structured value wins over typed text.
func replyText(a *entity.Activity) string {
	if v := a.ValueString(); v != "" {
		return strings.TrimSpace(v)
	}
	return strings.TrimSpace(a.Text)
}

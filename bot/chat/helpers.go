package chat

import (
	"fmt"
	"strconv"
	"strings"

	"ChatBot/entity"
)

// MatchNumberToOption converts a number string ("1", "2", ...) to the
// corresponding option. Returns empty string if no match.
func MatchNumberToOption(text string, options []string) string {
	text = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "."))
	num, err := strconv.Atoi(text)
	if err != nil || num < 1 || num > len(options) {
		return ""
	}
	return options[num-1]
}

// FormatNumberedOptions creates a numbered text menu from options.
// Example output: "Pick one\n\n1. Option A\n2. Option B"
func FormatNumberedOptions(text string, options []string) string {
	var sb strings.Builder
	sb.WriteString(text)
	sb.WriteString("\n\n")

	for i, option := range options {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, option))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// ConversationKey is the storage key of conversation-scoped state.
func ConversationKey(a *entity.Activity) string {
	return a.ChannelID + "/conversations/" + a.Conversation.ID
}

// UserKey is the storage key of user-scoped state.
func UserKey(a *entity.Activity) string {
	return a.ChannelID + "/users/" + a.From.ID
}

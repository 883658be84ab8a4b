package chat

import (
	"testing"
	"time"

	"ChatBot/entity"

	"github.com/stretchr/testify/assert"
)

// Wednesday
var testNow = time.Date(2024, 5, 15, 10, 30, 0, 0, time.UTC)

func TestRecognizeDate(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
		ok   bool
	}{
		{"iso", "2024-06-01", "2024-06-01", true},
		{"us slashes", "06/01/2024", "2024-06-01", true},
		{"month name", "June 1, 2024", "2024-06-01", true},
		{"day month year", "1 June 2024", "2024-06-01", true},
		{"today", "today", "2024-05-15", true},
		{"tomorrow", "Tomorrow", "2024-05-16", true},
		{"day after tomorrow", "day after tomorrow", "2024-05-17", true},
		{"weekday", "friday", "2024-05-17", true},
		{"same weekday is next week", "wednesday", "2024-05-22", true},
		{"next weekday", "next mon", "2024-05-20", true},
		{"yearless ahead", "June 1", "2024-06-01", true},
		{"yearless passed", "Jan 3", "2025-01-03", true},
		{"garbage", "sometime soon", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := RecognizeDate(tt.text, testNow)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecognizeNumber(t *testing.T) {
	tests := []struct {
		text string
		want int
		ok   bool
	}{
		{"3", 3, true},
		{"3 nights", 3, true},
		{"-2", -2, true},
		{"0", 0, true},
		{"five", 5, true},
		{"maybe two.", 2, true},
		{"a few", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := RecognizeNumber(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecognizeChoice(t *testing.T) {
	options := []string{"King room", "Suite room"}

	got, ok := RecognizeChoice("suite ROOM", options)
	assert.True(t, ok)
	assert.Equal(t, FoundChoice{Value: "Suite room", Index: 1}, got)

	got, ok = RecognizeChoice("1", options)
	assert.True(t, ok)
	assert.Equal(t, FoundChoice{Value: "King room", Index: 0}, got)

	_, ok = RecognizeChoice("3", options)
	assert.False(t, ok)

	_, ok = RecognizeChoice("Penthouse", options)
	assert.False(t, ok)
}

func TestRecognize_ValueWinsOverText(t *testing.T) {
	prompt := &Prompt{Kind: KindChoice, Choices: []string{"King room", "Suite room"}}
	activity := &entity.Activity{Text: "something else", Value: "King room"}

	outcome := Recognize(prompt, activity, testNow)

	assert.True(t, outcome.Succeeded)
	assert.Equal(t, "King room", outcome.Choice.Value)
	assert.Equal(t, "King room", outcome.Raw)
}

func TestRecognize_EmptyReplyFails(t *testing.T) {
	outcome := Recognize(&Prompt{Kind: KindText}, &entity.Activity{Text: "   "}, testNow)
	assert.False(t, outcome.Succeeded)
}

func TestPositive(t *testing.T) {
	assert.True(t, Positive(Outcome{Succeeded: true, Number: 1}))
	assert.False(t, Positive(Outcome{Succeeded: true, Number: 0}))
	assert.False(t, Positive(Outcome{Succeeded: true, Number: -4}))
	assert.False(t, Positive(Outcome{Succeeded: false, Number: 7}))
}

func TestFormatNumberedOptions(t *testing.T) {
	got := FormatNumberedOptions("Pick one", []string{"A", "B"})
	assert.Equal(t, "Pick one\n\n1. A\n2. B", got)
}

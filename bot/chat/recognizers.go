package chat

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"ChatBot/entity"
)

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02.01.2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"January 2, 2006",
}

// layouts without a year resolve to the next occurrence of that day
var yearlessLayouts = []string{
	"Jan 2",
	"January 2",
	"2 Jan",
	"2 January",
	"01/02",
}

var numberWords = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
	"eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14, "fifteen": 15,
	"sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19, "twenty": 20,
}

var integerPattern = regexp.MustCompile(`[-+]?\d+`)

// Recognize parses the reply carried by a against the prompt's kind.
// now anchors relative dates such as "tomorrow".
func Recognize(p *Prompt, a *entity.Activity, now time.Time) Outcome {
	raw := replyText(a)
	outcome := Outcome{Raw: raw}
	if raw == "" {
		return outcome
	}

	switch p.Kind {
	case KindDate:
		if date, ok := RecognizeDate(raw, now); ok {
			outcome.Succeeded = true
			outcome.Date = date
		}
	case KindNumber:
		if n, ok := RecognizeNumber(raw); ok {
			outcome.Succeeded = true
			outcome.Number = n
		}
	case KindChoice:
		if choice, ok := RecognizeChoice(raw, p.Choices); ok {
			outcome.Succeeded = true
			outcome.Choice = choice
		}
	default:
		outcome.Succeeded = true
		outcome.Text = raw
	}

	return outcome
}

// RecognizeDate returns the first date found in text formatted as 2006-01-02.
func RecognizeDate(text string, now time.Time) (string, bool) {
	text = strings.TrimSpace(text)
	lower := strings.ToLower(text)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	switch lower {
	case "today", "tonight":
		return today.Format(dateLayout), true
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(dateLayout), true
	case "day after tomorrow":
		return today.AddDate(0, 0, 2).Format(dateLayout), true
	}

	if weekday, ok := parseWeekday(strings.TrimPrefix(lower, "next ")); ok {
		days := (int(weekday) - int(today.Weekday()) + 7) % 7
		if days == 0 {
			days = 7
		}
		return today.AddDate(0, 0, days).Format(dateLayout), true
	}

	cleaned := strings.Join(strings.Fields(strings.ReplaceAll(text, ",", ", ")), " ")
	cleaned = strings.ReplaceAll(cleaned, " ,", ",")
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, cleaned, now.Location()); err == nil {
			return t.Format(dateLayout), true
		}
	}

	for _, layout := range yearlessLayouts {
		t, err := time.ParseInLocation(layout, cleaned, now.Location())
		if err != nil {
			continue
		}
		t = time.Date(today.Year(), t.Month(), t.Day(), 0, 0, 0, 0, now.Location())
		if t.Before(today) {
			t = t.AddDate(1, 0, 0)
		}
		return t.Format(dateLayout), true
	}

	return "", false
}

func parseWeekday(text string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if text == name || text == name[:3] {
			return d, true
		}
	}
	return 0, false
}

// RecognizeNumber returns the first integer in text, written as digits or as a word.
func RecognizeNumber(text string) (int, bool) {
	if match := integerPattern.FindString(text); match != "" {
		n, err := strconv.Atoi(match)
		if err == nil {
			return n, true
		}
	}

	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,!?")
		if n, ok := numberWords[word]; ok {
			return n, true
		}
	}
	return 0, false
}

// RecognizeChoice matches text against options, case-insensitively, or by 1-based index.
func RecognizeChoice(text string, options []string) (FoundChoice, bool) {
	text = strings.TrimSpace(text)
	for i, option := range options {
		if strings.EqualFold(text, option) {
			return FoundChoice{Value: option, Index: i}, true
		}
	}

	if option := MatchNumberToOption(text, options); option != "" {
		for i := range options {
			if options[i] == option {
				return FoundChoice{Value: option, Index: i}, true
			}
		}
	}
	return FoundChoice{}, false
}

package reservation

import (
	"context"
	"fmt"
	"time"

	"ChatBot/bot/chat"
	"ChatBot/entity"
)

// arrivalDate asks for the arrival date.
func (w *Workflow) arrivalDate(ctx context.Context, tc *chat.TurnContext, values *Values) chat.StepResult {
	return chat.StepResult{Prompt: &chat.Prompt{
		Kind: chat.KindDate,
		Text: textArrivalDate,
	}}
}

func acceptArrivalDate(values *Values, outcome chat.Outcome) {
	values.ArrivalDate = outcome.Date
}

// numberOfNights asks for a positive number of nights.
func (w *Workflow) numberOfNights(ctx context.Context, tc *chat.TurnContext, values *Values) chat.StepResult {
	return chat.StepResult{Prompt: &chat.Prompt{
		Kind:      chat.KindNumber,
		Text:      textNights,
		Retry:     textNightsRetry,
		Validator: chat.ValidatorPositive,
	}}
}

func acceptNumberOfNights(values *Values, outcome chat.Outcome) {
	values.NumberOfNights = outcome.Number
}

// summary saves the answers to the user profile, lists the rooms and asks for one.
func (w *Workflow) summary(ctx context.Context, tc *chat.TurnContext, values *Values) chat.StepResult {
	profile, err := w.profile(ctx, tc)
	if err != nil {
		return chat.StepResult{Error: err}
	}
	profile.ArrivalDate = values.ArrivalDate
	profile.NumberOfNights = values.NumberOfNights
	profile.UpdatedAt = time.Now()

	if err = tc.SendText(ctx, fmt.Sprintf(textSummary, profile.ArrivalDate, profile.NumberOfNights)); err != nil {
		return chat.StepResult{Error: err}
	}
	if err = tc.SendText(ctx, textRoomListing); err != nil {
		return chat.StepResult{Error: err}
	}

	return chat.StepResult{Prompt: &chat.Prompt{
		Kind:    chat.KindChoice,
		Text:    textChooseRoom,
		Choices: RoomTypes,
	}}
}

func acceptRoomType(values *Values, outcome chat.Outcome) {
	values.SelectedRoomType = outcome.Choice.Value
}

// final records the room and sends the booking link.
func (w *Workflow) final(ctx context.Context, tc *chat.TurnContext, values *Values) chat.StepResult {
	profile, err := w.profile(ctx, tc)
	if err != nil {
		return chat.StepResult{Error: err}
	}
	profile.SelectedRoomType = values.SelectedRoomType
	profile.UpdatedAt = time.Now()

	reply := tc.Activity.Reply("")
	reply.Attachments = []entity.Attachment{
		entity.NewHeroCard(entity.HeroCard{
			Buttons: []entity.CardAction{{
				Type:  entity.ActionOpenURL,
				Title: textLinkTitle,
				Value: w.linkURL,
			}},
		}),
	}
	if err = tc.SendActivity(ctx, reply); err != nil {
		return chat.StepResult{Error: err}
	}

	return chat.StepResult{Complete: true}
}

func (w *Workflow) profile(ctx context.Context, tc *chat.TurnContext) (*entity.UserProfile, error) {
	userID := tc.Activity.From.ID
	return chat.Bind(tc, w.profiles).GetOrCreate(ctx, chat.UserKey(tc.Activity), func() *entity.UserProfile {
		return entity.NewUserProfile(userID)
	})
}

package reservation

import (
	"log/slog"

	"ChatBot/bot/chat"
	"ChatBot/entity"
)

const (
	WorkflowID chat.DialogID = "reservation"
)

// Step names
const (
	StepArrivalDate    = "arrival_date"
	StepNumberOfNights = "number_of_nights"
	StepSummary        = "summary"
	StepFinal          = "final"
)

// Room options offered by the summary step.
const (
	RoomKing  = "King room"
	RoomSuite = "Suite room"
)

var RoomTypes = []string{RoomKing, RoomSuite}

const (
	DefaultLinkURL = "https://uat.windsurfercrs.com/admin"

	textArrivalDate = "Please enter your arrival date."
	textNights      = "Please enter your number of nights."
	textNightsRetry = "The value entered must be greater than 0."
	textSummary     = "I have your arrival date is %s and number of nights is %d"
	textRoomListing = "These room types are available for reservation.\nKing room,$150-$180 /night\nSuite room,$250-$280/night"
	textChooseRoom  = "which option do you like?"
	textLinkTitle   = "Please click this link to complete your reservation"
	textAbandon     = "No problem, let's try the reservation again later."
)

// Values are the answers collected during one reservation run.
type Values struct {
	ArrivalDate      string `json:"arrivaldate" bson:"arrivaldate"`
	NumberOfNights   int    `json:"numberofnights" bson:"numberofnights"`
	SelectedRoomType string `json:"selectedroomtype,omitempty" bson:"selectedroomtype,omitempty"`
}

// Workflow is the hotel reservation dialog: arrival date, nights, room choice, booking link.
type Workflow struct {
	*chat.Waterfall[Values]
	profiles chat.Storage[entity.UserProfile]
	linkURL  string
}

var _ chat.Dialog = (*Workflow)(nil)

func NewWorkflow(states chat.Storage[chat.DialogState[Values]], profiles chat.Storage[entity.UserProfile], linkURL string, log *slog.Logger) *Workflow {
	if linkURL == "" {
		linkURL = DefaultLinkURL
	}
	w := &Workflow{
		profiles: profiles,
		linkURL:  linkURL,
	}

	w.Waterfall = chat.NewWaterfall(WorkflowID, states, log,
		chat.Step[Values]{Name: StepArrivalDate, Enter: w.arrivalDate, Accept: acceptArrivalDate},
		chat.Step[Values]{Name: StepNumberOfNights, Enter: w.numberOfNights, Accept: acceptNumberOfNights},
		chat.Step[Values]{Name: StepSummary, Enter: w.summary, Accept: acceptRoomType},
		chat.Step[Values]{Name: StepFinal, Enter: w.final},
	)
	return w
}

// SetMaxAttempts abandons the reservation after n rejected replies to one question.
func (w *Workflow) SetMaxAttempts(n int) {
	w.Waterfall.SetMaxAttempts(n, textAbandon)
}

package chat

import (
	"time"

	"github.com/google/uuid"
)

// Status is where a dialog run stands for a conversation.
type Status string

const (
	StatusNotStarted    Status = "not_started"
	StatusAwaitingReply Status = "awaiting_reply"
	StatusCompleted     Status = "completed"
)

// DialogState is the persisted cursor of one dialog run in a conversation.
type DialogState[V any] struct {
	ConversationID string    `json:"conversation_id" bson:"conversation_id"`
	DialogID       DialogID  `json:"dialog_id" bson:"dialog_id"`
	FrameID        string    `json:"frame_id" bson:"frame_id"`
	StepIndex      int       `json:"step_index" bson:"step_index"`
	Values         V         `json:"values" bson:"values"`
	Pending        *Prompt   `json:"pending,omitempty" bson:"pending,omitempty"`
	Attempts       int       `json:"attempts" bson:"attempts"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" bson:"updated_at"`
}

// NewDialogState creates a state positioned at the first step.
func NewDialogState[V any](conversationID string, dialogID DialogID) *DialogState[V] {
	now := time.Now()
	return &DialogState[V]{
		ConversationID: conversationID,
		DialogID:       dialogID,
		FrameID:        uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Status reports the run status of a stored state; a nil state has not started.
// Completed runs are deleted, so they are only observed as the result of Start or Resume.
func (s *DialogState[V]) Status() Status {
	if s == nil {
		return StatusNotStarted
	}
	return StatusAwaitingReply
}

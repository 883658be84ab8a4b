package entity

import "time"

// UserProfile is the durable per-user record filled in by the reservation dialog.
type UserProfile struct {
	UserID           string    `json:"user_id" bson:"user_id"`
	ArrivalDate      string    `json:"arrival_date" bson:"arrival_date"`
	NumberOfNights   int       `json:"number_of_nights" bson:"number_of_nights"`
	SelectedRoomType string    `json:"selected_room_type,omitempty" bson:"selected_room_type,omitempty"`
	UpdatedAt        time.Time `json:"updated_at" bson:"updated_at"`
}

func NewUserProfile(userID string) *UserProfile {
	return &UserProfile{UserID: userID}
}

// HasReservation reports whether both required reservation fields are present.
func (p *UserProfile) HasReservation() bool {
	return p != nil && p.ArrivalDate != "" && p.NumberOfNights > 0
}

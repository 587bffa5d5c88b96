package models

import "time"

// Form types. "generic" covers the legacy dhow form that predates the
// per-venue pages and carries the same ride_type selector.
const (
	FormDhow       = "dhow"
	FormVillage    = "village"
	FormRestaurant = "restaurant"
	FormGeneric    = "generic"
)

// Feedback is one submitted feedback record. Reference is the
// server-assigned identity handed back to guests and used by the admin
// dashboard; rows are never mutated after creation.
type Feedback struct {
	ID             uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	Reference      string     `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	FormType       string     `gorm:"size:20;index;not null" json:"form_type"`
	RideType       string     `gorm:"size:20" json:"ride_type,omitempty"`
	GuestName      string     `gorm:"size:100" json:"guest_name,omitempty"`
	GuestEmail     string     `gorm:"size:100" json:"guest_email,omitempty"`
	GuestPhone     string     `gorm:"size:30" json:"guest_phone,omitempty"`
	ApartmentNo    string     `gorm:"size:30" json:"apartment_no,omitempty"`
	ArrivalDate    *time.Time `json:"arrival_date,omitempty"`
	DurationOfStay *int       `json:"duration_of_stay,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;index" json:"created_at"`

	Responses []Response `gorm:"foreignKey:FeedbackID" json:"-"`
}

func (Feedback) TableName() string {
	return "feedback"
}

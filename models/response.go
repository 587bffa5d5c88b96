package models

// Response is one answered question inside a feedback record. Exactly one
// of Rating, Text and YesNo is set, matching the question's declared type.
// Each response carries its own server reference so that village follow-up
// answers can point a later submission's parent_submission at it.
type Response struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	Reference  string `gorm:"size:36;uniqueIndex;not null" json:"reference"`
	FeedbackID uint   `gorm:"index;not null" json:"-"`

	QuestionSlug string  `gorm:"size:100;index;not null" json:"question"`
	Rating       *int    `json:"rating,omitempty"`
	Text         *string `gorm:"type:text" json:"text,omitempty"`
	YesNo        *bool   `json:"yes_no,omitempty"`

	ParentSubmission *string `gorm:"size:36" json:"parent_submission"`
}

func (Response) TableName() string {
	return "responses"
}

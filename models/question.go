package models

import "time"

// Question types understood by the form engine.
const (
	QuestionRating = "RATING"
	QuestionText   = "TEXT"
	QuestionYesNo  = "YES_NO"
)

// Question is a schema-defined prompt for one of the feedback forms.
// Sub-questions are one level deep at most: a question with a ParentID
// never has children of its own.
type Question struct {
	ID           uint       `gorm:"primaryKey;autoIncrement" json:"-"`
	Slug         string     `gorm:"size:100;uniqueIndex;not null" json:"identity"`
	FormType     string     `gorm:"size:20;index;not null" json:"form_type"`
	Text         string     `gorm:"type:text;not null" json:"text"`
	Type         string     `gorm:"size:20;not null" json:"type"`
	IsRequired   bool       `gorm:"default:false" json:"is_required"`
	MaxRating    int        `gorm:"default:0" json:"max_rating,omitempty"`
	Position     int        `gorm:"default:0" json:"-"`
	ParentID     *uint      `gorm:"index" json:"-"`
	SubQuestions []Question `gorm:"foreignKey:ParentID;constraint:OnDelete:CASCADE" json:"sub_questions,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

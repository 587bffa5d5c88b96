package forms

import "github.com/zafarani/feedback-server/models"

// Answer is a tagged value holding exactly one of the three answer
// shapes. The zero Answer means "not answered yet", which is distinct
// from an answered "No" on a YES_NO question.
type Answer struct {
	kind   string
	rating int
	text   string
	yesNo  bool
}

func RatingOf(v int) Answer  { return Answer{kind: models.QuestionRating, rating: v} }
func TextOf(s string) Answer { return Answer{kind: models.QuestionText, text: s} }
func YesNoOf(b bool) Answer  { return Answer{kind: models.QuestionYesNo, yesNo: b} }

// Kind returns the answer's question type, or "" when unanswered.
func (a Answer) Kind() string { return a.kind }

func (a Answer) Rating() (int, bool) {
	return a.rating, a.kind == models.QuestionRating
}

func (a Answer) Text() (string, bool) {
	return a.text, a.kind == models.QuestionText
}

func (a Answer) YesNo() (bool, bool) {
	return a.yesNo, a.kind == models.QuestionYesNo
}

// Answered reports whether the answer counts as given. An empty TEXT
// value is treated the same as no answer at all.
func (a Answer) Answered() bool {
	switch a.kind {
	case models.QuestionText:
		return a.text != ""
	case "":
		return false
	}
	return true
}

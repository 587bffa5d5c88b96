// Package forms implements the schema-driven form engine: building a
// response draft from a question schema, validating it, and assembling
// the submission payload sent to the feedback endpoint.
package forms

import "github.com/zafarani/feedback-server/models"

// Ride categories offered on the dhow and generic forms.
const (
	RideAfternoon = "Afternoon"
	RideEvening   = "Evening"
)

// Schema is the ordered question set for one form category, indexed by
// question identity. Parent linkage for sub-questions is kept as an
// explicit identity -> parent-identity map so answer resolution never
// re-scans the question tree.
type Schema struct {
	FormType  string
	Questions []models.Question

	byIdentity map[string]*models.Question
	parentOf   map[string]string
	leafOrder  []string
}

// NewSchema builds the lookup indexes for the given questions. The slice
// order is preserved; sub-questions follow their parent in leaf order.
func NewSchema(formType string, questions []models.Question) *Schema {
	s := &Schema{
		FormType:   formType,
		Questions:  questions,
		byIdentity: make(map[string]*models.Question),
		parentOf:   make(map[string]string),
	}
	for i := range s.Questions {
		q := &s.Questions[i]
		s.byIdentity[q.Slug] = q
		s.leafOrder = append(s.leafOrder, q.Slug)
		for j := range q.SubQuestions {
			sub := &q.SubQuestions[j]
			s.byIdentity[sub.Slug] = sub
			s.parentOf[sub.Slug] = q.Slug
			s.leafOrder = append(s.leafOrder, sub.Slug)
		}
	}
	return s
}

// Lookup resolves a question by identity, covering both top-level
// questions and sub-questions.
func (s *Schema) Lookup(identity string) (*models.Question, bool) {
	q, ok := s.byIdentity[identity]
	return q, ok
}

// ParentOf returns the parent question's identity for a sub-question,
// or "" for top-level questions.
func (s *Schema) ParentOf(identity string) string {
	return s.parentOf[identity]
}

// LeafOrder lists every answerable identity in display order: each
// top-level question followed by its sub-questions.
func (s *Schema) LeafOrder() []string {
	return s.leafOrder
}

// RequiresRideType reports whether the form category carries the ride
// selector. Only the dhow and generic forms do.
func (s *Schema) RequiresRideType() bool {
	return s.FormType == models.FormDhow || s.FormType == models.FormGeneric
}

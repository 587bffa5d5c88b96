package forms

import (
	"fmt"

	"github.com/zafarani/feedback-server/models"
)

// Response is one answered question on the wire. Exactly one of the
// answer fields is populated, matching the question's declared type.
// ParentSubmission links a village sub-question answer to the server
// reference its parent answer received on an earlier round-trip; it is
// null when no reference has been recorded yet.
type Response struct {
	Question         string  `json:"question"`
	Rating           *int    `json:"rating,omitempty"`
	Text             *string `json:"text,omitempty"`
	YesNo            *bool   `json:"yes_no,omitempty"`
	ParentSubmission *string `json:"parent_submission"`
}

// Submission is the payload POSTed to /api/v1/feedback/.
type Submission struct {
	FormType       string     `json:"form_type"`
	RideType       string     `json:"ride_type,omitempty"`
	GuestName      string     `json:"guest_name,omitempty"`
	GuestEmail     string     `json:"guest_email,omitempty"`
	GuestPhone     string     `json:"guest_phone,omitempty"`
	ApartmentNo    string     `json:"apartment_no,omitempty"`
	ArrivalDate    string     `json:"arrival_date,omitempty"`
	DurationOfStay *int       `json:"duration_of_stay,omitempty"`
	Responses      []Response `json:"responses"`
}

// DesyncError reports a draft entry whose identity no longer resolves to
// any question in the schema. It always indicates a bug in draft
// management and is never silently swallowed.
type DesyncError struct {
	Identity string
}

func (e *DesyncError) Error() string {
	return fmt.Sprintf("forms: response for unknown question %q", e.Identity)
}

// Assemble turns an answered draft into the wire payload. Answered
// entries are emitted in schema leaf order; entries belonging to a
// sub-question carry the parent answer's recorded server reference as
// parent_submission. A draft key outside the schema fails loudly with a
// DesyncError rather than being dropped.
//
// A sub-question answered in the same batch as its parent cannot link to
// the parent's reference: that reference only exists once the parent's
// own submission call has returned. parent_submission stays null in that
// case, which callers resolve by resubmitting after recording references.
func Assemble(s *Schema, d Draft, h Header) (*Submission, error) {
	for identity := range d {
		if _, ok := s.Lookup(identity); !ok {
			return nil, &DesyncError{Identity: identity}
		}
	}

	sub := &Submission{
		FormType:   s.FormType,
		RideType:   h.RideType,
		GuestName:  h.GuestName,
		GuestEmail: h.GuestEmail,
		GuestPhone: h.GuestPhone,
	}
	if s.FormType == models.FormVillage {
		sub.ApartmentNo = h.ApartmentNo
		sub.ArrivalDate = h.ArrivalDate
		sub.DurationOfStay = h.DurationOfStay
	}
	for _, identity := range s.LeafOrder() {
		e, ok := d[identity]
		if !ok || !e.Answer.Answered() {
			continue
		}
		q, _ := s.Lookup(identity)

		r := Response{Question: identity}
		switch q.Type {
		case models.QuestionRating:
			v, _ := e.Answer.Rating()
			r.Rating = &v
		case models.QuestionText:
			v, _ := e.Answer.Text()
			r.Text = &v
		case models.QuestionYesNo:
			v, _ := e.Answer.YesNo()
			r.YesNo = &v
		}

		if e.Parent != "" {
			if pe, ok := d[e.Parent]; ok && pe.ServerRef != "" {
				ref := pe.ServerRef
				r.ParentSubmission = &ref
			}
		}
		sub.Responses = append(sub.Responses, r)
	}
	return sub, nil
}

// DraftFromResponses rebuilds draft answers from a payload's responses,
// the inverse of Assemble for every answered entry. Unknown identities
// fail with a DesyncError.
func DraftFromResponses(s *Schema, responses []Response) (Draft, error) {
	d := NewDraft(s)
	for _, r := range responses {
		q, ok := s.Lookup(r.Question)
		if !ok {
			return nil, &DesyncError{Identity: r.Question}
		}
		switch {
		case q.Type == models.QuestionRating && r.Rating != nil:
			d[r.Question].Answer = RatingOf(*r.Rating)
		case q.Type == models.QuestionText && r.Text != nil:
			d[r.Question].Answer = TextOf(*r.Text)
		case q.Type == models.QuestionYesNo && r.YesNo != nil:
			d[r.Question].Answer = YesNoOf(*r.YesNo)
		}
	}
	return d, nil
}

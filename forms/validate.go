package forms

import (
	"fmt"
	"regexp"
	"time"

	"github.com/zafarani/feedback-server/models"
)

// DateLayout is the wire format for date fields.
const DateLayout = "2006-01-02"

// Header carries the per-form fields outside the question set. The
// apartment, arrival and duration fields are only meaningful on the
// village form; RideType only on the dhow and generic forms.
type Header struct {
	RideType   string
	GuestName  string
	GuestEmail string
	GuestPhone string

	ApartmentNo    string
	ArrivalDate    string // DateLayout
	DurationOfStay *int
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const maxGuestFieldLen = 100

// Validate checks a draft against its schema and returns a map of field
// path to error message. An empty map means the draft is submittable.
// Sub-questions are validated only once their parent has been answered.
// The function mutates neither the draft nor the schema.
func Validate(s *Schema, d Draft, h Header) map[string]string {
	errs := make(map[string]string)

	if s.RequiresRideType() {
		switch h.RideType {
		case "":
			errs["ride_type"] = "Ride type is required"
		case RideAfternoon, RideEvening:
		default:
			errs["ride_type"] = "Invalid ride type"
		}
	}

	if len(h.GuestName) > maxGuestFieldLen {
		errs["guest_name"] = "Name is too long"
	}
	if h.GuestEmail != "" {
		if len(h.GuestEmail) > maxGuestFieldLen {
			errs["guest_email"] = "Email is too long"
		} else if !emailPattern.MatchString(h.GuestEmail) {
			errs["guest_email"] = "Invalid email"
		}
	}

	if s.FormType == models.FormVillage {
		if h.ApartmentNo == "" {
			errs["apartment_no"] = "Apartment number is required"
		}
		if h.ArrivalDate == "" {
			errs["arrival_date"] = "Arrival date is required"
		} else if _, err := time.Parse(DateLayout, h.ArrivalDate); err != nil {
			errs["arrival_date"] = "Invalid arrival date"
		}
		if h.DurationOfStay == nil || *h.DurationOfStay < 1 {
			errs["duration_of_stay"] = "Duration of stay must be at least 1 day"
		}
	}

	for i, identity := range s.LeafOrder() {
		q, _ := s.Lookup(identity)
		e, ok := d[identity]
		if !ok {
			continue
		}
		if parent := s.ParentOf(identity); parent != "" {
			pe, ok := d[parent]
			if !ok || !pe.Answer.Answered() {
				continue
			}
		}
		validateAnswer(errs, i, q, e.Answer)
	}
	return errs
}

func validateAnswer(errs map[string]string, index int, q *models.Question, a Answer) {
	switch q.Type {
	case models.QuestionRating:
		path := responsePath(index, "rating")
		v, ok := a.Rating()
		if !ok || !a.Answered() {
			if q.IsRequired {
				errs[path] = "Rating is required"
			}
			return
		}
		// max_rating comes from the schema; the scale is not a fixed 1-5
		if v < 1 || v > q.MaxRating {
			errs[path] = fmt.Sprintf("Rating must be between 1 and %d", q.MaxRating)
		}
	case models.QuestionText:
		if q.IsRequired && !a.Answered() {
			errs[responsePath(index, "text")] = "Comment is required"
		}
	case models.QuestionYesNo:
		if q.IsRequired && !a.Answered() {
			errs[responsePath(index, "yes_no")] = "An answer is required"
		}
	}
}

func responsePath(index int, field string) string {
	return fmt.Sprintf("responses[%d].%s", index, field)
}

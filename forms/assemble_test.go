package forms

import (
	"errors"
	"testing"

	"github.com/zafarani/feedback-server/models"
)

func TestAssembleTagsAnswersByQuestionType(t *testing.T) {
	s := villageSchema()
	d := NewDraft(s)
	for identity, a := range map[string]Answer{
		"room-cleanliness": RatingOf(4),
		"would-return":     YesNoOf(false),
		"other-comments":   TextOf("Lovely stay"),
	} {
		if err := d.Set(s, identity, a); err != nil {
			t.Fatal(err)
		}
	}

	sub, err := Assemble(s, d, Header{GuestName: "Asha"})
	if err != nil {
		t.Fatal(err)
	}
	if sub.FormType != models.FormVillage {
		t.Errorf("form_type = %q", sub.FormType)
	}
	if len(sub.Responses) != 3 {
		t.Fatalf("expected 3 responses, got %d", len(sub.Responses))
	}

	for _, r := range sub.Responses {
		populated := 0
		if r.Rating != nil {
			populated++
		}
		if r.Text != nil {
			populated++
		}
		if r.YesNo != nil {
			populated++
		}
		if populated != 1 {
			t.Errorf("response %q has %d populated answer fields, want exactly 1", r.Question, populated)
		}
	}

	// answered No must survive as an explicit false
	for _, r := range sub.Responses {
		if r.Question == "would-return" {
			if r.YesNo == nil || *r.YesNo {
				t.Error("would-return should carry yes_no=false")
			}
		}
	}
}

func TestAssembleVillageHeaderFields(t *testing.T) {
	s := villageSchema()
	d := NewDraft(s)
	if err := d.Set(s, "room-cleanliness", RatingOf(4)); err != nil {
		t.Fatal(err)
	}

	nights := 3
	sub, err := Assemble(s, d, Header{
		GuestName:      "Asha",
		GuestPhone:     "+960 777 0001",
		ApartmentNo:    "A-12",
		ArrivalDate:    "2026-08-01",
		DurationOfStay: &nights,
	})
	if err != nil {
		t.Fatal(err)
	}
	if sub.ApartmentNo != "A-12" {
		t.Errorf("apartment_no = %q", sub.ApartmentNo)
	}
	if sub.ArrivalDate != "2026-08-01" {
		t.Errorf("arrival_date = %q", sub.ArrivalDate)
	}
	if sub.DurationOfStay == nil || *sub.DurationOfStay != 3 {
		t.Errorf("duration_of_stay = %v, want 3", sub.DurationOfStay)
	}
	if sub.GuestPhone != "+960 777 0001" {
		t.Errorf("guest_phone = %q", sub.GuestPhone)
	}

	// stay fields never leak onto other form categories
	ds := dhowSchema()
	dd := NewDraft(ds)
	dsub, err := Assemble(ds, dd, Header{RideType: RideEvening, ApartmentNo: "A-12", ArrivalDate: "2026-08-01"})
	if err != nil {
		t.Fatal(err)
	}
	if dsub.ApartmentNo != "" || dsub.ArrivalDate != "" || dsub.DurationOfStay != nil {
		t.Error("dhow submission must not carry village stay fields")
	}
}

func TestAssembleSkipsUnanswered(t *testing.T) {
	s := villageSchema()
	d := NewDraft(s)
	if err := d.Set(s, "room-cleanliness", RatingOf(5)); err != nil {
		t.Fatal(err)
	}

	sub, err := Assemble(s, d, Header{})
	if err != nil {
		t.Fatal(err)
	}
	if len(sub.Responses) != 1 {
		t.Fatalf("expected only the answered question, got %d responses", len(sub.Responses))
	}
	if sub.Responses[0].Question != "room-cleanliness" {
		t.Errorf("unexpected response %q", sub.Responses[0].Question)
	}
}

func TestAssembleDesyncFailsLoudly(t *testing.T) {
	s := villageSchema()
	d := NewDraft(s)
	d["ghost-question"] = &Entry{Answer: RatingOf(3)}

	_, err := Assemble(s, d, Header{})
	var desync *DesyncError
	if !errors.As(err, &desync) {
		t.Fatalf("expected DesyncError, got %v", err)
	}
	if desync.Identity != "ghost-question" {
		t.Errorf("desync identity = %q", desync.Identity)
	}
}

func TestAssembleParentSubmissionFromRecordedReference(t *testing.T) {
	s := villageSchema()
	d := NewDraft(s)
	if err := d.Set(s, "room-cleanliness", RatingOf(4)); err != nil {
		t.Fatal(err)
	}
	if err := d.Set(s, "bathroom-cleanliness", RatingOf(3)); err != nil {
		t.Fatal(err)
	}

	// first round-trip: the parent has no server reference yet, so the
	// sub-question answer cannot link to it
	sub, err := Assemble(s, d, Header{})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range sub.Responses {
		if r.ParentSubmission != nil {
			t.Errorf("response %q should have a null parent_submission before any reference exists", r.Question)
		}
	}

	// after the parent's reference comes back, the link resolves
	d.RecordReference("room-cleanliness", "ref-parent-1")
	sub, err = Assemble(s, d, Header{})
	if err != nil {
		t.Fatal(err)
	}
	var linked bool
	for _, r := range sub.Responses {
		if r.Question == "bathroom-cleanliness" {
			if r.ParentSubmission == nil || *r.ParentSubmission != "ref-parent-1" {
				t.Errorf("parent_submission = %v, want ref-parent-1", r.ParentSubmission)
			}
			linked = true
		}
	}
	if !linked {
		t.Fatal("sub-question response missing from payload")
	}
}

func TestAssembleRoundTrip(t *testing.T) {
	s := villageSchema()
	d := NewDraft(s)
	for identity, a := range map[string]Answer{
		"room-cleanliness":     RatingOf(4),
		"bathroom-cleanliness": RatingOf(2),
		"linen-freshness":      RatingOf(5),
		"would-return":         YesNoOf(true),
		"other-comments":       TextOf("Great hosts"),
	} {
		if err := d.Set(s, identity, a); err != nil {
			t.Fatal(err)
		}
	}

	sub, err := Assemble(s, d, Header{})
	if err != nil {
		t.Fatal(err)
	}
	back, err := DraftFromResponses(s, sub.Responses)
	if err != nil {
		t.Fatal(err)
	}

	for identity, e := range d {
		if back[identity].Answer != e.Answer {
			t.Errorf("%q: round-tripped answer %+v != original %+v", identity, back[identity].Answer, e.Answer)
		}
	}
}

func TestDraftFromResponsesUnknownIdentity(t *testing.T) {
	s := villageSchema()
	text := "hello"
	_, err := DraftFromResponses(s, []Response{{Question: "gone", Text: &text}})
	var desync *DesyncError
	if !errors.As(err, &desync) {
		t.Fatalf("expected DesyncError, got %v", err)
	}
}

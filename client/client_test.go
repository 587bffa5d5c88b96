package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zafarani/feedback-server/fault"
	"github.com/zafarani/feedback-server/forms"
	"github.com/zafarani/feedback-server/models"
)

func questionsHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/questions/" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if ft := r.URL.Query().Get("form_type"); ft != "village" {
			t.Errorf("form_type = %q", ft)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []models.Question{
				{
					Slug: "room-cleanliness", Type: models.QuestionRating,
					IsRequired: true, MaxRating: 5,
					SubQuestions: []models.Question{
						{Slug: "bathroom-cleanliness", Type: models.QuestionRating, MaxRating: 5},
					},
				},
				{Slug: "other-comments", Type: models.QuestionText},
			},
		})
	}
}

func TestQuestionsBuildsSchema(t *testing.T) {
	srv := httptest.NewServer(questionsHandler(t))
	defer srv.Close()

	c := New(srv.URL)
	schema, err := c.Questions(context.Background(), "village")
	if err != nil {
		t.Fatal(err)
	}
	if got := len(schema.LeafOrder()); got != 3 {
		t.Fatalf("expected 3 answerable questions, got %d", got)
	}
	if schema.ParentOf("bathroom-cleanliness") != "room-cleanliness" {
		t.Error("sub-question parent index not built")
	}
}

func villageHeader() forms.Header {
	nights := 2
	return forms.Header{
		GuestName:      "Asha",
		ApartmentNo:    "A-12",
		ArrivalDate:    "2026-08-01",
		DurationOfStay: &nights,
	}
}

func TestQuestionsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Questions(context.Background(), "village")
	if !errors.Is(err, fault.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in the chain, got %v", err)
	}
	if !fault.Is(err, fault.KindSchema) {
		t.Errorf("a missing question set is still a schema fault, got %v", err)
	}
}

func TestQuestionsFetchErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Questions(context.Background(), "village")
	if !fault.Is(err, fault.KindSchema) {
		t.Fatalf("expected a schema fault, got %v", err)
	}
	if !fault.Retryable(err) {
		t.Error("schema fetch failures must be retryable")
	}
}

func feedbackServer(t *testing.T, submit http.HandlerFunc) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/questions/", questionsHandler(t))
	mux.HandleFunc("/api/v1/feedback/", submit)
	return httptest.NewServer(mux)
}

func TestSessionSubmitRecordsReferences(t *testing.T) {
	srv := feedbackServer(t, func(w http.ResponseWriter, r *http.Request) {
		var sub forms.Submission
		if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
			t.Errorf("decode submission: %v", err)
			return
		}
		if sub.FormType != "village" {
			t.Errorf("form_type = %q", sub.FormType)
		}
		if sub.ApartmentNo != "A-12" || sub.ArrivalDate != "2026-08-01" {
			t.Errorf("village stay fields missing from payload: %+v", sub)
		}
		if sub.DurationOfStay == nil || *sub.DurationOfStay != 2 {
			t.Errorf("duration_of_stay = %v, want 2", sub.DurationOfStay)
		}
		var responses []RecordResponse
		for i, resp := range sub.Responses {
			responses = append(responses, RecordResponse{
				Reference: "ref-" + string(rune('a'+i)),
				Question:  resp.Question,
				Rating:    resp.Rating,
				Text:      resp.Text,
			})
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{
			"reference":         "fb-1",
			"form_type":         "village",
			"village_responses": responses,
		})
	})
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	session, err := NewFormSession(ctx, c, "village")
	if err != nil {
		t.Fatal(err)
	}
	session.Header = villageHeader()
	if err := session.Draft.Set(session.Schema, "room-cleanliness", forms.RatingOf(4)); err != nil {
		t.Fatal(err)
	}

	record, err := session.Submit(ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	if record.Reference != "fb-1" {
		t.Errorf("record reference = %q", record.Reference)
	}
	if session.Draft["room-cleanliness"].ServerRef == "" {
		t.Error("server reference was not recorded into the draft")
	}
}

func TestSessionSubmitBlockedByValidation(t *testing.T) {
	called := false
	srv := feedbackServer(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	session, err := NewFormSession(ctx, c, "village")
	if err != nil {
		t.Fatal(err)
	}

	// required rating left unanswered
	_, err = session.Submit(ctx, c)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if verr.Fields["responses[0].rating"] == "" {
		t.Errorf("expected an error for the required rating, got %v", verr.Fields)
	}
	if called {
		t.Error("submission endpoint must not be reached for an invalid draft")
	}
}

func TestSessionSubmitFailureKeepsDraft(t *testing.T) {
	srv := feedbackServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Failed to submit feedback"})
	})
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	session, err := NewFormSession(ctx, c, "village")
	if err != nil {
		t.Fatal(err)
	}
	session.Header = villageHeader()
	if err := session.Draft.Set(session.Schema, "room-cleanliness", forms.RatingOf(5)); err != nil {
		t.Fatal(err)
	}

	_, err = session.Submit(ctx, c)
	if !fault.Is(err, fault.KindSubmission) {
		t.Fatalf("expected a submission fault, got %v", err)
	}
	if !fault.Retryable(err) {
		t.Error("submission failures must be retryable")
	}

	v, ok := session.Draft["room-cleanliness"].Answer.Rating()
	if !ok || v != 5 {
		t.Error("the draft must survive a failed submission")
	}
}

func TestSubmitMalformedCreatedRecord(t *testing.T) {
	srv := feedbackServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("<html>not json</html>"))
	})
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	session, err := NewFormSession(ctx, c, "village")
	if err != nil {
		t.Fatal(err)
	}
	session.Header = villageHeader()
	if err := session.Draft.Set(session.Schema, "room-cleanliness", forms.RatingOf(4)); err != nil {
		t.Fatal(err)
	}

	_, err = session.Submit(ctx, c)
	if !fault.Is(err, fault.KindInternal) {
		t.Fatalf("expected an internal fault, got %v", err)
	}
	// the record was stored; a blind resubmit would duplicate it
	if fault.Retryable(err) {
		t.Error("a malformed created-record body must not be retryable")
	}
}

func TestSessionAtMostOneSubmitInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	srv := feedbackServer(t, func(w http.ResponseWriter, r *http.Request) {
		close(entered)
		<-release
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"reference": "fb-1", "form_type": "village"})
	})
	defer srv.Close()

	c := New(srv.URL)
	ctx := context.Background()
	session, err := NewFormSession(ctx, c, "village")
	if err != nil {
		t.Fatal(err)
	}
	session.Header = villageHeader()
	if err := session.Draft.Set(session.Schema, "room-cleanliness", forms.RatingOf(3)); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := session.Submit(ctx, c)
		done <- err
	}()

	<-entered
	if _, err := session.Submit(ctx, c); !errors.Is(err, ErrSubmitInFlight) {
		t.Errorf("expected ErrSubmitInFlight, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submission failed: %v", err)
	}
}

package client

import (
	"context"
	"errors"
	"sync"

	"github.com/zafarani/feedback-server/forms"
)

// ErrSubmitInFlight is returned when a submission for the same draft has
// not resolved yet. Callers disable their submit action until the
// pending call returns.
var ErrSubmitInFlight = errors.New("client: a submission for this draft is already in flight")

// FormSession holds one form's schema and draft across edits and
// submissions. It enforces at most one concurrent submit per draft and
// records the server references of stored answers so a follow-up
// village submission can link its parent_submission fields.
type FormSession struct {
	Schema *forms.Schema
	Draft  forms.Draft
	Header forms.Header

	mu   sync.Mutex
	busy bool
}

// NewFormSession fetches the schema for the form category and builds the
// initial draft.
func NewFormSession(ctx context.Context, c *Client, formType string) (*FormSession, error) {
	schema, err := c.Questions(ctx, formType)
	if err != nil {
		return nil, err
	}
	return &FormSession{
		Schema: schema,
		Draft:  forms.NewDraft(schema),
	}, nil
}

// Reload fetches the schema again and rebuilds the draft, keeping
// answers for questions that still exist and dropping the rest.
func (s *FormSession) Reload(ctx context.Context, c *Client) error {
	schema, err := c.Questions(ctx, s.Schema.FormType)
	if err != nil {
		return err
	}
	s.Schema = schema
	s.Draft = forms.Rebuild(schema, s.Draft)
	return nil
}

// Validate checks the current draft. An empty map means submittable.
func (s *FormSession) Validate() map[string]string {
	return forms.Validate(s.Schema, s.Draft, s.Header)
}

// Submit validates, assembles and posts the draft. Validation failures
// and any transport or server error leave the draft exactly as it was,
// so the guest's answers survive for a retry. On success the returned
// record's per-answer references are recorded into the draft.
func (s *FormSession) Submit(ctx context.Context, c *Client) (*Record, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	if errs := s.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	payload, err := forms.Assemble(s.Schema, s.Draft, s.Header)
	if err != nil {
		return nil, err
	}

	record, err := c.Submit(ctx, payload)
	if err != nil {
		return nil, err
	}

	for _, resp := range record.Responses() {
		s.Draft.RecordReference(resp.Question, resp.Reference)
	}
	return record, nil
}

// ValidationError carries the per-field messages of a locally rejected
// draft.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "client: draft failed validation"
}

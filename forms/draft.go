package forms

import (
	"fmt"

	"github.com/zafarani/feedback-server/models"
)

// Entry is one in-progress answer. ServerRef holds the reference the
// server assigned to this answer on a prior successful submission; it is
// what a sub-question answer links to through parent_submission.
type Entry struct {
	Answer    Answer
	Parent    string
	ServerRef string
}

// Draft is the client-held answer set, keyed by question identity.
type Draft map[string]*Entry

// NewDraft builds the initial draft for a schema: one entry per
// answerable question and sub-question. RATING and YES_NO start
// unanswered, TEXT starts as an empty string. An empty schema yields an
// empty draft.
func NewDraft(s *Schema) Draft {
	d := make(Draft, len(s.LeafOrder()))
	for _, identity := range s.LeafOrder() {
		q, _ := s.Lookup(identity)
		e := &Entry{Parent: s.ParentOf(identity)}
		if q.Type == models.QuestionText {
			e.Answer = TextOf("")
		}
		d[identity] = e
	}
	return d
}

// Rebuild carries answers and server references over from an old draft
// into a fresh draft for the given schema. Entries whose identity does
// not exist in the new schema are dropped.
func Rebuild(s *Schema, old Draft) Draft {
	d := NewDraft(s)
	for identity, e := range old {
		if fresh, ok := d[identity]; ok {
			fresh.Answer = e.Answer
			fresh.ServerRef = e.ServerRef
		}
	}
	return d
}

// Set records an answer for a question. The answer's shape must match
// the question's declared type. The identity must resolve in both the
// schema and the draft; a draft built from an older schema can lack
// entries the current schema has.
func (d Draft) Set(s *Schema, identity string, a Answer) error {
	q, ok := s.Lookup(identity)
	if !ok {
		return &DesyncError{Identity: identity}
	}
	e, ok := d[identity]
	if !ok {
		return &DesyncError{Identity: identity}
	}
	if a.Kind() != "" && a.Kind() != q.Type {
		return fmt.Errorf("forms: %s answer for %s question %q", a.Kind(), q.Type, identity)
	}
	e.Answer = a
	return nil
}

// RecordReference stores the server-assigned reference for an already
// submitted answer. Unknown identities are ignored; the server may echo
// back responses for questions since removed from the schema.
func (d Draft) RecordReference(identity, reference string) {
	if e, ok := d[identity]; ok {
		e.ServerRef = reference
	}
}

package controllers

import (
	"encoding/json"
	"testing"
)

func TestSubmitRequestPhoneAlias(t *testing.T) {
	// the dhow page sends "phone", newer forms send "guest_phone"
	tests := []struct {
		name string
		body string
		want string
	}{
		{"legacy phone key", `{"form_type":"dhow","phone":"+960 777 0001","responses":[]}`, "+960 777 0001"},
		{"guest_phone key", `{"form_type":"village","guest_phone":"+960 777 0002","responses":[]}`, "+960 777 0002"},
		{"guest_phone wins over phone", `{"form_type":"dhow","phone":"old","guest_phone":"new","responses":[]}`, "new"},
		{"no phone at all", `{"form_type":"restaurant","responses":[]}`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req submitFeedbackReq
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatal(err)
			}
			if got := req.phone(); got != tt.want {
				t.Errorf("phone() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSubmitResponseQuestionAlias(t *testing.T) {
	var r submitResponseReq
	if err := json.Unmarshal([]byte(`{"question_reference":"crew-friendliness","rating":5}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.identity() != "crew-friendliness" {
		t.Errorf("identity() = %q", r.identity())
	}

	if err := json.Unmarshal([]byte(`{"question":"new-key","question_reference":"old-key"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.identity() != "new-key" {
		t.Errorf("identity() should prefer the question key, got %q", r.identity())
	}
}

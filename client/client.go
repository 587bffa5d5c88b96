// Package client is the Go SDK for the feedback service: it fetches
// question schemas, drives a form draft through validation and assembly,
// and submits the finished payload. Kiosk devices at the dhow jetty and
// the village reception use it instead of the web forms.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/zafarani/feedback-server/fault"
	"github.com/zafarani/feedback-server/forms"
	"github.com/zafarani/feedback-server/models"
)

// Client talks to one feedback server. The HTTP client is injected so
// callers control timeouts and transports; Token, when set, is attached
// as a bearer token to authenticated calls.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Token      string
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
	}
}

type questionsEnvelope struct {
	Results []models.Question `json:"results"`
}

// Questions fetches the schema for a form category.
func (c *Client) Questions(ctx context.Context, formType string) (*forms.Schema, error) {
	u := fmt.Sprintf("%s/api/v1/questions/?form_type=%s", c.BaseURL, url.QueryEscape(formType))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fault.New(fault.KindSchema, "build questions request", err)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fault.New(fault.KindSchema, "fetch questions", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fault.New(fault.KindSchema, "questions endpoint returned 404", fault.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fault.New(fault.KindSchema, fmt.Sprintf("questions endpoint returned %d", resp.StatusCode), nil)
	}
	var env questionsEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fault.New(fault.KindSchema, "decode questions", err)
	}
	return forms.NewSchema(formType, env.Results), nil
}

// RecordResponse is one stored answer inside a created record.
type RecordResponse struct {
	Reference        string  `json:"reference"`
	Question         string  `json:"question"`
	Rating           *int    `json:"rating,omitempty"`
	Text             *string `json:"text,omitempty"`
	YesNo            *bool   `json:"yes_no,omitempty"`
	ParentSubmission *string `json:"parent_submission"`
}

// Record is the server's view of a created feedback submission.
type Record struct {
	Reference string    `json:"reference"`
	FormType  string    `json:"form_type"`
	CreatedAt time.Time `json:"created_at"`

	DhowResponses       []RecordResponse `json:"dhow_responses,omitempty"`
	VillageResponses    []RecordResponse `json:"village_responses,omitempty"`
	RestaurantResponses []RecordResponse `json:"restaurant_responses,omitempty"`
	GenericResponses    []RecordResponse `json:"generic_responses,omitempty"`
}

// Responses returns whichever per-form response collection is populated.
func (r *Record) Responses() []RecordResponse {
	switch r.FormType {
	case models.FormVillage:
		return r.VillageResponses
	case models.FormRestaurant:
		return r.RestaurantResponses
	case models.FormGeneric:
		return r.GenericResponses
	default:
		return r.DhowResponses
	}
}

type errorEnvelope struct {
	Detail string            `json:"detail"`
	Errors map[string]string `json:"errors"`
}

// Submit posts an assembled payload. On failure the caller's draft is
// untouched and the error is retryable by resubmitting.
func (c *Client) Submit(ctx context.Context, sub *forms.Submission) (*Record, error) {
	body, err := json.Marshal(sub)
	if err != nil {
		return nil, fault.New(fault.KindSubmission, "encode submission", err)
	}
	u := c.BaseURL + "/api/v1/feedback/"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return nil, fault.New(fault.KindSubmission, "build submission request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fault.New(fault.KindSubmission, "submit feedback", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusCreated:
		var record Record
		if err := json.NewDecoder(resp.Body).Decode(&record); err != nil {
			// the submission was stored; resubmitting would duplicate it
			return nil, fault.New(fault.KindInternal, "decode created record", err)
		}
		return &record, nil
	case resp.StatusCode == http.StatusBadRequest:
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		if len(env.Errors) > 0 {
			return nil, fault.New(fault.KindValidation, fmt.Sprintf("rejected: %v", env.Errors), nil)
		}
		return nil, fault.New(fault.KindSubmission, env.Detail, nil)
	case resp.StatusCode == http.StatusConflict:
		var env errorEnvelope
		_ = json.NewDecoder(resp.Body).Decode(&env)
		return nil, fault.New(fault.KindDesync, env.Detail, nil)
	default:
		return nil, fault.New(fault.KindSubmission, fmt.Sprintf("feedback endpoint returned %d", resp.StatusCode), nil)
	}
}

package capi

import "github.com/gyaneshwarpardhi/capibridge/internal/identity"

// ActionSourceWebsite is the action_source reported for every event.
const ActionSourceWebsite = "website"

// ServerEvent is a single Conversions API event.
type ServerEvent struct {
	EventName      string            `json:"event_name"`
	EventTime      int64             `json:"event_time"`
	EventID        string            `json:"event_id"`
	EventSourceURL string            `json:"event_source_url,omitempty"`
	ActionSource   string            `json:"action_source"`
	UserData       identity.UserData `json:"user_data"`
	CustomData     *CustomData       `json:"custom_data,omitempty"`
}

// CustomData carries the commerce fields of an event.
// Value is always sent, including 0.0.
type CustomData struct {
	Currency    string   `json:"currency,omitempty"`
	Value       float64  `json:"value"`
	ContentIDs  []string `json:"content_ids,omitempty"`
	ContentType string   `json:"content_type,omitempty"`
	ContentName string   `json:"content_name,omitempty"`
	NumItems    int      `json:"num_items,omitempty"`
}

// envelope is the request body: one event per call.
type envelope struct {
	Data        []ServerEvent `json:"data"`
	AccessToken string        `json:"access_token"`
}

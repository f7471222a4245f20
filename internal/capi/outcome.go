package capi

import (
	"errors"
	"net/url"
	"time"
)

// Outcome is the typed result of one submission.
type Outcome struct {
	EventName  string
	EventID    string
	StatusCode int
	Body       string
	Err        error
	Duration   time.Duration
}

// OK reports a 2xx response with no transport error.
func (o Outcome) OK() bool {
	return o.Err == nil && o.StatusCode >= 200 && o.StatusCode < 300
}

// Label classifies the outcome for metrics: "success", "rejected" (non-2xx)
// or "error" (no response).
func (o Outcome) Label() string {
	switch {
	case o.OK():
		return "success"
	case o.Err == nil:
		return "rejected"
	default:
		return "error"
	}
}

// redactURL unwraps *url.Error so the cause is logged without the endpoint.
func redactURL(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}

package capi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/capibridge/internal/identity"
)

func testEvent() ServerEvent {
	return ServerEvent{
		EventName:      "Purchase",
		EventTime:      1715000000,
		EventID:        "evt-1",
		EventSourceURL: "https://goxgain.com",
		ActionSource:   ActionSourceWebsite,
		UserData:       identity.UserData{Email: "hash", ClientIPAddress: "203.0.113.7"},
		CustomData:     &CustomData{Currency: "BRL", Value: 50.5, ContentIDs: []string{"abc"}, ContentType: "product"},
	}
}

func TestClient_SendEnvelope(t *testing.T) {
	var gotPath string
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = io.WriteString(w, `{"events_received":1}`)
	}))
	defer srv.Close()

	c := NewClient(Options{BaseURL: srv.URL + "/", APIVersion: "v19.0", PixelID: "123", AccessToken: "tok", Timeout: time.Second})
	out := c.Send(context.Background(), testEvent())

	require.True(t, out.OK(), "outcome: %+v", out)
	assert.Equal(t, "success", out.Label())
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Equal(t, `{"events_received":1}`, out.Body)
	assert.Equal(t, "Purchase", out.EventName)
	assert.Equal(t, "evt-1", out.EventID)
	assert.Equal(t, "/v19.0/123/events", gotPath)

	assert.Equal(t, "tok", got["access_token"])
	data := got["data"].([]any)
	require.Len(t, data, 1)
	ev := data[0].(map[string]any)
	assert.Equal(t, "Purchase", ev["event_name"])
	assert.Equal(t, float64(1715000000), ev["event_time"])
	assert.Equal(t, "website", ev["action_source"])
	assert.Equal(t, map[string]any{"em": "hash", "client_ip_address": "203.0.113.7"}, ev["user_data"])
	assert.Equal(t, 50.5, ev["custom_data"].(map[string]any)["value"])
}

func TestServerEvent_OmitsEmptyCustomData(t *testing.T) {
	ev := testEvent()
	ev.CustomData = nil
	raw, err := json.Marshal(ev)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "custom_data")
}

func TestCustomData_ZeroValueKept(t *testing.T) {
	raw, err := json.Marshal(CustomData{Currency: "BRL", ContentName: "Login"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"currency":"BRL","value":0,"content_name":"Login"}`, string(raw))
}

func TestClient_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"Invalid parameter"}}`)
	}))
	defer srv.Close()

	out := NewClient(Options{BaseURL: srv.URL, APIVersion: "v19.0", PixelID: "1"}).Send(context.Background(), testEvent())
	assert.False(t, out.OK())
	assert.NoError(t, out.Err)
	assert.Equal(t, "rejected", out.Label())
	assert.Equal(t, http.StatusBadRequest, out.StatusCode)
	assert.Contains(t, out.Body, "Invalid parameter")
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	out := NewClient(Options{BaseURL: url, APIVersion: "v19.0", PixelID: "1", AccessToken: "secret-token"}).
		Send(context.Background(), testEvent())
	assert.False(t, out.OK())
	assert.Equal(t, "error", out.Label())
	require.Error(t, out.Err)
	assert.NotContains(t, out.Err.Error(), "secret-token")
}

func TestClient_Endpoint(t *testing.T) {
	c := NewClient(Options{BaseURL: "https://graph.facebook.com", APIVersion: "v19.0", PixelID: "42"})
	assert.Equal(t, "https://graph.facebook.com/v19.0/42/events", c.Endpoint())
}

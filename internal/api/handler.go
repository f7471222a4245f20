package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gyaneshwarpardhi/capibridge/internal/engine"
	"github.com/gyaneshwarpardhi/capibridge/internal/identity"
	"github.com/gyaneshwarpardhi/capibridge/internal/metrics"
	"github.com/gyaneshwarpardhi/capibridge/internal/webhook"
)

// maxBodyBytes caps inbound webhook bodies.
const maxBodyBytes = 1 << 20

const (
	msgNoPayload    = "No JSON payload received"
	msgMissingEvent = "Missing 'event' field"
	msgInternal     = "Internal Server Error"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	eng     *engine.Engine
	service string
	mux     *http.ServeMux
}

// New creates an HTTP handler and registers all routes.
func New(eng *engine.Engine, service string) http.Handler {
	h := &Handler{eng: eng, service: service, mux: http.NewServeMux()}

	h.mux.HandleFunc("POST /webhook", h.webhook)
	h.mux.HandleFunc("GET /health", h.health)
	h.mux.HandleFunc("GET /readyz", h.readyz)
	h.mux.Handle("GET /metrics", promhttp.Handler())

	return loggingMiddleware(recoverMiddleware(h.mux))
}

// POST /webhook: translate one source-platform event.
func (h *Handler) webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues("", "invalid").Inc()
		writeError(w, http.StatusBadRequest, msgNoPayload)
		return
	}

	ev, err := webhook.Parse(body, time.Now())
	if err != nil {
		h.rejectInvalid(w, err)
		return
	}
	slog.Info("webhook received", "event_type", ev.Type, "fields", ev.Fields)

	client := identity.ClientFromRequest(r, ev.IP)
	res, err := h.eng.Process(r.Context(), ev, client)
	if err != nil {
		metrics.WebhooksReceived.WithLabelValues(ev.Type, "error").Inc()
		slog.Error("webhook processing failed", "event_type", ev.Type, "err", err)
		writeError(w, http.StatusInternalServerError, msgInternal)
		return
	}

	if res.Status == engine.StatusIgnored {
		metrics.WebhooksReceived.WithLabelValues(ev.Type, "ignored").Inc()
		slog.Info("event not mapped", "event_type", ev.Type)
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  "ignored",
			Message: fmt.Sprintf("Event %s not mapped", ev.Type),
		})
		return
	}

	metrics.WebhooksReceived.WithLabelValues(ev.Type, "success").Inc()
	slog.Info("webhook processed",
		"event_type", ev.Type,
		"events", len(res.Outcomes),
		"failed", res.Failed(),
		"queued", res.Queued,
		"event_time_source", res.EventTime.Source,
		"duration_ms", res.DurationMs,
	)
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "Event processed"})
}

func (h *Handler) rejectInvalid(w http.ResponseWriter, err error) {
	metrics.WebhooksReceived.WithLabelValues("", "invalid").Inc()

	var fieldErr *webhook.InvalidFieldError
	switch {
	case errors.Is(err, webhook.ErrMissingEvent):
		writeError(w, http.StatusBadRequest, msgMissingEvent)
	case errors.As(err, &fieldErr):
		slog.Info("webhook rejected", "field", fieldErr.Field, "err", fieldErr.Err)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid '%s' field", fieldErr.Field))
	default:
		writeError(w, http.StatusBadRequest, msgNoPayload)
	}
}

// GET /health: always 200 (liveness probe).
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "healthy", Service: h.service})
}

// GET /readyz: 503 if the async dispatch queue is >80% full.
func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	util := h.eng.QueueUtilization()
	metrics.QueueUtilization.Set(util)
	if util > 0.8 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":            "overloaded",
			"queue_utilization": util,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":            "ready",
		"queue_utilization": util,
	})
}

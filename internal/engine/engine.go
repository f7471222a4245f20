package engine

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gyaneshwarpardhi/capibridge/internal/capi"
	"github.com/gyaneshwarpardhi/capibridge/internal/config"
	"github.com/gyaneshwarpardhi/capibridge/internal/eventtime"
	"github.com/gyaneshwarpardhi/capibridge/internal/identity"
	"github.com/gyaneshwarpardhi/capibridge/internal/metrics"
	"github.com/gyaneshwarpardhi/capibridge/internal/translator"
	"github.com/gyaneshwarpardhi/capibridge/internal/webhook"
)

// Sender delivers one outbound event. *capi.Client implements it.
type Sender interface {
	Send(ctx context.Context, ev capi.ServerEvent) capi.Outcome
}

// Pipeline pairs a translator with the sender for its events. It is built
// from one config snapshot and replaced as a whole on reload.
type Pipeline struct {
	Translator *translator.Translator
	Sender     Sender
}

// Status is the inbound-facing result of processing.
type Status string

const (
	StatusProcessed Status = "processed"
	StatusIgnored   Status = "ignored"
)

// Result is the outcome of processing a single webhook.
type Result struct {
	EventType  string
	Status     Status
	EventTime  eventtime.Result
	// Queued is true when the fan-out was handed to the async pool; Outcomes
	// is then empty.
	Queued     bool
	Outcomes   []capi.Outcome
	DurationMs int64
}

// Failed counts unsuccessful submissions.
func (r *Result) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.OK() {
			n++
		}
	}
	return n
}

type dispatchWork struct {
	eventType string
	sender    Sender
	events    []capi.ServerEvent
}

// Engine translates webhooks and dispatches their fan-out.
type Engine struct {
	pipeline atomic.Pointer[Pipeline]
	pool     *workerPool[*dispatchWork]
	conf     config.DispatchConf
}

// New creates an Engine. In async mode it starts the dispatch pool, which
// stops when ctx is cancelled.
func New(ctx context.Context, p *Pipeline, conf config.DispatchConf) *Engine {
	e := &Engine{conf: conf}
	e.pipeline.Store(p)

	if conf.Mode == config.DispatchAsync {
		e.pool = newWorkerPool(ctx, conf.Workers, conf.QueueDepth,
			func(ctx context.Context, w *dispatchWork) {
				outs := dispatch(ctx, w.sender, w.events)
				logOutcomes(w.eventType, outs)
			})
	}
	return e
}

// Swap atomically replaces the pipeline (used on hot-reload).
func (e *Engine) Swap(p *Pipeline) {
	e.pipeline.Store(p)
}

// Pipeline returns the active pipeline.
func (e *Engine) Pipeline() *Pipeline {
	return e.pipeline.Load()
}

// Process translates ev and submits every resulting event in order.
// Sink failures are reported in Result.Outcomes, never as an error; the
// returned error is reserved for internal failures.
func (e *Engine) Process(ctx context.Context, ev *webhook.Event, client identity.Client) (*Result, error) {
	start := time.Now()
	p := e.pipeline.Load()

	tr, err := p.Translator.Translate(ev, client)
	if err != nil {
		return nil, err
	}

	res := &Result{EventType: ev.Type, Status: StatusIgnored}
	if !tr.Mapped {
		res.DurationMs = time.Since(start).Milliseconds()
		return res, nil
	}
	res.Status = StatusProcessed
	res.EventTime = tr.Time

	metrics.FanOutSize.Observe(float64(len(tr.Events)))
	if tr.Time.Fallback() {
		metrics.EventTimeFallbacks.Inc()
	}

	if e.pool != nil {
		if e.pool.Submit(&dispatchWork{eventType: ev.Type, sender: p.Sender, events: tr.Events}) {
			metrics.DispatchQueued.Inc()
			res.Queued = true
			res.DurationMs = time.Since(start).Milliseconds()
			return res, nil
		}
		metrics.DispatchInline.Inc()
		slog.Warn("dispatch queue full, sending inline", "event_type", ev.Type, "queue_cap", e.pool.QueueCap())
	}

	// A client hanging up must not abort submissions already under way.
	res.Outcomes = dispatch(context.WithoutCancel(ctx), p.Sender, tr.Events)
	res.DurationMs = time.Since(start).Milliseconds()
	return res, nil
}

// QueueUtilization returns async queue used / capacity (0–1). Always 0 in
// sync mode.
func (e *Engine) QueueUtilization() float64 {
	if e.pool == nil || e.pool.QueueCap() == 0 {
		return 0
	}
	return float64(e.pool.QueueLen()) / float64(e.pool.QueueCap())
}

// Shutdown waits for queued fan-outs to finish.
func (e *Engine) Shutdown() {
	if e.pool != nil {
		e.pool.Drain()
	}
}

// dispatch submits events sequentially, one call per event.
func dispatch(ctx context.Context, s Sender, events []capi.ServerEvent) []capi.Outcome {
	outs := make([]capi.Outcome, 0, len(events))
	for _, ev := range events {
		o := s.Send(ctx, ev)
		metrics.EventsSubmitted.WithLabelValues(ev.EventName, o.Label()).Inc()
		metrics.SinkLatency.WithLabelValues(ev.EventName).Observe(float64(o.Duration.Milliseconds()))
		outs = append(outs, o)
	}
	return outs
}

func logOutcomes(eventType string, outs []capi.Outcome) {
	failed := 0
	for _, o := range outs {
		if !o.OK() {
			failed++
		}
	}
	slog.Info("async fan-out done", "event_type", eventType, "events", len(outs), "failed", failed)
}

package engine

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gyaneshwarpardhi/capibridge/internal/capi"
	"github.com/gyaneshwarpardhi/capibridge/internal/config"
	"github.com/gyaneshwarpardhi/capibridge/internal/identity"
	"github.com/gyaneshwarpardhi/capibridge/internal/translator"
	"github.com/gyaneshwarpardhi/capibridge/internal/webhook"
)

// recordingSender captures events and fails the ones named in fail.
type recordingSender struct {
	mu   sync.Mutex
	sent []capi.ServerEvent
	fail map[string]bool
}

func (s *recordingSender) Send(_ context.Context, ev capi.ServerEvent) capi.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, ev)
	out := capi.Outcome{EventName: ev.EventName, EventID: ev.EventID, StatusCode: 200}
	if s.fail[ev.EventName] {
		out.StatusCode = 0
		out.Err = errors.New("connection refused")
	}
	return out
}

func (s *recordingSender) names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, e := range s.sent {
		out[i] = e.EventName
	}
	return out
}

func newPipeline(s Sender) *Pipeline {
	return &Pipeline{
		Translator: translator.New(translator.Settings{DefaultCurrency: "BRL", DefaultCountry: "br"}, nil),
		Sender:     s,
	}
}

func mustParse(t *testing.T, body string) *webhook.Event {
	t.Helper()
	ev, err := webhook.Parse([]byte(body), time.Now())
	require.NoError(t, err)
	return ev
}

func TestProcess_SyncDispatchesInOrder(t *testing.T) {
	s := &recordingSender{}
	eng := New(context.Background(), newPipeline(s), config.DispatchConf{Mode: config.DispatchSync})

	res, err := eng.Process(context.Background(), mustParse(t, `{"event":"deposit_created","amount":10}`), identity.Client{})
	require.NoError(t, err)

	assert.Equal(t, StatusProcessed, res.Status)
	assert.False(t, res.Queued)
	require.Len(t, res.Outcomes, 2)
	assert.Equal(t, []string{"AddToCart", "InitiateCheckout"}, s.names())
	assert.Zero(t, res.Failed())
}

func TestProcess_SinkFailureIsAnOutcome(t *testing.T) {
	s := &recordingSender{fail: map[string]bool{"Lead": true}}
	eng := New(context.Background(), newPipeline(s), config.DispatchConf{Mode: config.DispatchSync})

	res, err := eng.Process(context.Background(), mustParse(t, `{"event":"login"}`), identity.Client{})
	require.NoError(t, err)

	assert.Equal(t, StatusProcessed, res.Status)
	require.Len(t, res.Outcomes, 2)
	assert.False(t, res.Outcomes[0].OK())
	assert.True(t, res.Outcomes[1].OK())
	assert.Equal(t, 1, res.Failed())
	assert.Equal(t, []string{"Lead", "ViewContent"}, s.names(), "a failed primary does not stop the secondary")
}

func TestProcess_Unmapped(t *testing.T) {
	s := &recordingSender{}
	eng := New(context.Background(), newPipeline(s), config.DispatchConf{Mode: config.DispatchSync})

	res, err := eng.Process(context.Background(), mustParse(t, `{"event":"bet_placed"}`), identity.Client{})
	require.NoError(t, err)
	assert.Equal(t, StatusIgnored, res.Status)
	assert.Empty(t, s.names())
}

func TestProcess_CancelledRequestStillDispatches(t *testing.T) {
	s := &recordingSender{}
	eng := New(context.Background(), newPipeline(s), config.DispatchConf{Mode: config.DispatchSync})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := eng.Process(ctx, mustParse(t, `{"event":"deposit_paid"}`), identity.Client{})
	require.NoError(t, err)
	assert.Len(t, res.Outcomes, 1)
}

func TestProcess_Async(t *testing.T) {
	s := &recordingSender{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	eng := New(ctx, newPipeline(s), config.DispatchConf{Mode: config.DispatchAsync, Workers: 2, QueueDepth: 10})

	res, err := eng.Process(context.Background(), mustParse(t, `{"event":"register"}`), identity.Client{})
	require.NoError(t, err)
	assert.True(t, res.Queued)
	assert.Empty(t, res.Outcomes)

	eng.Shutdown()
	assert.Equal(t, []string{"CompleteRegistration", "ViewContent"}, s.names())
}

func TestProcess_TranslateError(t *testing.T) {
	eng := New(context.Background(), newPipeline(&recordingSender{}), config.DispatchConf{Mode: config.DispatchSync})
	_, err := eng.Process(context.Background(), &webhook.Event{Type: webhook.TypeDepositPaid}, identity.Client{})
	assert.ErrorIs(t, err, translator.ErrMissingDeposit)
}

func TestSwap(t *testing.T) {
	first, second := &recordingSender{}, &recordingSender{}
	eng := New(context.Background(), newPipeline(first), config.DispatchConf{Mode: config.DispatchSync})
	eng.Swap(newPipeline(second))

	_, err := eng.Process(context.Background(), mustParse(t, `{"event":"deposit_paid"}`), identity.Client{})
	require.NoError(t, err)
	assert.Empty(t, first.names())
	assert.Equal(t, []string{"Purchase"}, second.names())
	assert.Same(t, second, eng.Pipeline().Sender)
}

func TestQueueUtilization_SyncIsZero(t *testing.T) {
	eng := New(context.Background(), newPipeline(&recordingSender{}), config.DispatchConf{Mode: config.DispatchSync})
	assert.Zero(t, eng.QueueUtilization())
	eng.Shutdown()
}

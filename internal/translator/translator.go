package translator

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/gyaneshwarpardhi/capibridge/internal/capi"
	"github.com/gyaneshwarpardhi/capibridge/internal/eventtime"
	"github.com/gyaneshwarpardhi/capibridge/internal/identity"
	"github.com/gyaneshwarpardhi/capibridge/internal/webhook"
)

// Settings are the immutable translation parameters.
type Settings struct {
	EventSourceURL  string
	ActionSource    string
	DefaultCurrency string
	DefaultCountry  string
}

// Translation is the fan-out produced for one inbound event.
type Translation struct {
	EventType string
	// Mapped is false when no mapper is registered for EventType.
	Mapped bool
	Events []capi.ServerEvent
	Time   eventtime.Result
}

// Translator maps inbound webhooks to sink events. It holds no mutable
// state and is safe for concurrent use.
type Translator struct {
	settings Settings
	registry *Registry
	users    *identity.Builder
	now      func() time.Time
	newID    func() string
}

// Option customises a Translator.
type Option func(*Translator)

// WithClock overrides the wall clock used for time fallback.
func WithClock(now func() time.Time) Option {
	return func(t *Translator) { t.now = now }
}

// WithIDGenerator overrides event id generation.
func WithIDGenerator(fn func() string) Option {
	return func(t *Translator) { t.newID = fn }
}

// New creates a Translator. A nil registry means DefaultRegistry.
func New(s Settings, reg *Registry, opts ...Option) *Translator {
	if reg == nil {
		reg = DefaultRegistry()
	}
	if s.ActionSource == "" {
		s.ActionSource = capi.ActionSourceWebsite
	}
	t := &Translator{
		settings: s,
		registry: reg,
		users:    identity.NewBuilder(s.DefaultCountry),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Registry returns the mapper registry.
func (t *Translator) Registry() *Registry { return t.registry }

// Translate builds the ordered outbound events for ev. The timestamp is
// computed once and shared by every event of the fan-out.
func (t *Translator) Translate(ev *webhook.Event, client identity.Client) (*Translation, error) {
	res := &Translation{EventType: ev.Type}

	m, ok := t.registry.Get(ev.Type)
	if !ok {
		return res, nil
	}
	res.Mapped = true
	res.Time = eventtime.Parse(ev.Time, t.now())

	drafts, err := m.Map(&Input{
		Event:    ev,
		SharedID: t.newID(),
		NewID:    t.newID,
		Currency: t.settings.DefaultCurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("translate %s: %w", ev.Type, err)
	}

	user := t.users.Build(profileOf(ev.User), client)
	res.Events = make([]capi.ServerEvent, 0, len(drafts))
	for _, d := range drafts {
		res.Events = append(res.Events, capi.ServerEvent{
			EventName:      d.Name,
			EventTime:      res.Time.Unix,
			EventID:        d.ID,
			EventSourceURL: t.settings.EventSourceURL,
			ActionSource:   t.settings.ActionSource,
			UserData:       user,
			CustomData:     d.Custom,
		})
	}
	return res, nil
}

func profileOf(u webhook.User) identity.Profile {
	return identity.Profile{
		Email:      u.Email.String(),
		Phone:      u.Phone.String(),
		FirstName:  u.FirstName.String(),
		ExternalID: u.ID.String(),
		City:       u.City.String(),
		State:      u.State.String(),
		Country:    u.Country.String(),
	}
}

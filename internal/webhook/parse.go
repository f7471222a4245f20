package webhook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrNoPayload is returned for an empty, unparseable or non-object body.
	ErrNoPayload = errors.New("no JSON payload received")
	// ErrMissingEvent is returned when the event discriminator is absent.
	ErrMissingEvent = errors.New("missing 'event' field")
)

// InvalidFieldError reports a field whose JSON type cannot be used.
type InvalidFieldError struct {
	Field string
	Err   error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("invalid %q field: %v", e.Field, e.Err)
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

// Parse validates body and returns the typed Event. receivedAt is stamped on
// the result.
func Parse(body []byte, receivedAt time.Time) (*Event, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || len(raw) == 0 {
		return nil, ErrNoPayload
	}

	var typ Text
	if err := decodeField(raw, "event", &typ); err != nil {
		return nil, err
	}
	if typ == "" {
		return nil, ErrMissingEvent
	}

	ev := &Event{
		Type:       typ.String(),
		Time:       raw["time"],
		ReceivedAt: receivedAt,
		Fields:     keys(raw),
	}

	var ip Text
	if err := decodeField(raw, "ip", &ip); err != nil {
		return nil, err
	}
	ev.IP = ip.String()

	if err := decodeField(raw, "user", &ev.User); err != nil {
		return nil, err
	}

	if IsDeposit(ev.Type) {
		d, err := parseDeposit(raw)
		if err != nil {
			return nil, err
		}
		ev.Deposit = d
	}
	return ev, nil
}

func parseDeposit(raw map[string]json.RawMessage) (*Deposit, error) {
	d := &Deposit{}

	if present(raw, "amount") {
		var amt Amount
		if err := decodeField(raw, "amount", &amt); err != nil {
			return nil, err
		}
		f := float64(amt)
		d.Amount = &f
	}

	var currency, internalID Text
	if err := decodeField(raw, "currency", &currency); err != nil {
		return nil, err
	}
	if err := decodeField(raw, "internal_id", &internalID); err != nil {
		return nil, err
	}
	d.Currency = currency.String()
	d.InternalID = internalID.String()
	return d, nil
}

// decodeField unmarshals raw[name] into dst. Missing or null keys leave dst
// untouched.
func decodeField(raw map[string]json.RawMessage, name string, dst any) error {
	if !present(raw, name) {
		return nil
	}
	if err := json.Unmarshal(raw[name], dst); err != nil {
		return &InvalidFieldError{Field: name, Err: err}
	}
	return nil
}

func present(raw map[string]json.RawMessage, name string) bool {
	v, ok := raw[name]
	return ok && !bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func keys(raw map[string]json.RawMessage) []string {
	out := make([]string, 0, len(raw))
	for k := range raw {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

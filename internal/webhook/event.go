package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Known inbound event types.
const (
	TypeRegister       = "register"
	TypeLogin          = "login"
	TypeDepositCreated = "deposit_created"
	TypeDepositPaid    = "deposit_paid"
)

// Event is the validated inbound webhook.
type Event struct {
	Type string
	User User
	IP   string
	// Time is kept raw; eventtime decides how to read it.
	Time       json.RawMessage
	ReceivedAt time.Time
	// Deposit is set only for deposit_created and deposit_paid.
	Deposit *Deposit
	// Fields lists the top-level keys present in the payload.
	Fields []string
}

// User is the nested user object sent by the source platform.
type User struct {
	ID        Text `json:"id"`
	Email     Text `json:"email"`
	Phone     Text `json:"phone"`
	FirstName Text `json:"first_name"`
	City      Text `json:"city"`
	State     Text `json:"state"`
	Country   Text `json:"country"`
}

// Deposit is the payment variant shared by deposit events.
type Deposit struct {
	// Amount is nil when the payload omits it.
	Amount *float64
	// Currency is empty when the payload omits it.
	Currency string
	// InternalID is empty when the payload omits it.
	InternalID string
}

// IsDeposit reports whether typ carries a Deposit variant.
func IsDeposit(typ string) bool {
	return typ == TypeDepositCreated || typ == TypeDepositPaid
}

// Text is a JSON scalar read as its textual form. Strings are taken as is,
// numbers and booleans keep their JSON spelling and null reads as empty.
type Text string

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case len(b) == 0 || bytes.Equal(b, []byte("null")):
		*t = ""
		return nil
	case b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected a scalar, got %s", b[:1])
	default:
		*t = Text(b)
		return nil
	}
}

// String returns the textual value.
func (t Text) String() string { return string(t) }

// Amount is a JSON number or numeric string.
type Amount float64

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(b []byte) error {
	var txt Text
	if err := txt.UnmarshalJSON(b); err != nil {
		return err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(txt)), 64)
	if err != nil {
		return err
	}
	*a = Amount(f)
	return nil
}

package webhook

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_NoPayload(t *testing.T) {
	for _, body := range []string{``, `not json`, `{}`, `null`, `[1,2]`, `"event"`} {
		_, err := Parse([]byte(body), time.Now())
		assert.ErrorIs(t, err, ErrNoPayload, "body %q", body)
	}
}

func TestParse_MissingEvent(t *testing.T) {
	for _, body := range []string{`{"user":{}}`, `{"event":""}`, `{"event":null}`} {
		_, err := Parse([]byte(body), time.Now())
		assert.ErrorIs(t, err, ErrMissingEvent, "body %q", body)
	}
}

func TestParse_InvalidField(t *testing.T) {
	cases := map[string]string{
		`{"event":"login","user":"bob"}`:             "user",
		`{"event":"login","user":{"email":{"a":1}}}`: "user",
		`{"event":"deposit_paid","amount":"lots"}`:   "amount",
		`{"event":"deposit_paid","internal_id":[1]}`: "internal_id",
		`{"event":{"name":"login"}}`:                 "event",
	}
	for body, field := range cases {
		_, err := Parse([]byte(body), time.Now())
		var fe *InvalidFieldError
		require.True(t, errors.As(err, &fe), "body %q: got %v", body, err)
		assert.Equal(t, field, fe.Field)
	}
}

func TestParse_Login(t *testing.T) {
	now := time.Now()
	ev, err := Parse([]byte(`{
		"event": "login",
		"ip": "203.0.113.7",
		"time": 1715000000000,
		"user": {"id": 42, "email": "Test@Example.com ", "phone": "+55 11 9999", "first_name": "John", "username": "jj"}
	}`), now)
	require.NoError(t, err)

	assert.Equal(t, TypeLogin, ev.Type)
	assert.Equal(t, "203.0.113.7", ev.IP)
	assert.Equal(t, "1715000000000", string(ev.Time))
	assert.Equal(t, now, ev.ReceivedAt)
	assert.Equal(t, Text("42"), ev.User.ID)
	assert.Equal(t, Text("Test@Example.com "), ev.User.Email)
	assert.Equal(t, Text("John"), ev.User.FirstName)
	assert.Nil(t, ev.Deposit)
	assert.Equal(t, []string{"event", "ip", "time", "user"}, ev.Fields)
}

func TestParse_DepositVariant(t *testing.T) {
	ev, err := Parse([]byte(`{"event":"deposit_paid","amount":50.5,"currency":"USD","internal_id":"abc123"}`), time.Now())
	require.NoError(t, err)
	require.NotNil(t, ev.Deposit)
	require.NotNil(t, ev.Deposit.Amount)
	assert.Equal(t, 50.5, *ev.Deposit.Amount)
	assert.Equal(t, "USD", ev.Deposit.Currency)
	assert.Equal(t, "abc123", ev.Deposit.InternalID)
}

func TestParse_DepositDefaults(t *testing.T) {
	ev, err := Parse([]byte(`{"event":"deposit_created","amount":null,"internal_id":987}`), time.Now())
	require.NoError(t, err)
	require.NotNil(t, ev.Deposit)
	assert.Nil(t, ev.Deposit.Amount)
	assert.Empty(t, ev.Deposit.Currency)
	assert.Equal(t, "987", ev.Deposit.InternalID)
}

func TestParse_AmountAsString(t *testing.T) {
	ev, err := Parse([]byte(`{"event":"deposit_paid","amount":" 10.25 "}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, 10.25, *ev.Deposit.Amount)
}

func TestParse_UnknownTypeKeepsType(t *testing.T) {
	ev, err := Parse([]byte(`{"event":"withdraw_paid","amount":"ignored-here"}`), time.Now())
	require.NoError(t, err)
	assert.Equal(t, "withdraw_paid", ev.Type)
	assert.Nil(t, ev.Deposit)
}

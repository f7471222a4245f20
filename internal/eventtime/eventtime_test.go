package eventtime

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)

	cases := []struct {
		name string
		raw  string
		want Result
	}{
		{"milliseconds", `1715000000000`, Result{1715000000, SourceParsed}},
		{"milliseconds truncated", `1715000000999`, Result{1715000000, SourceParsed}},
		{"seconds", `1715000000`, Result{1715000000, SourceParsed}},
		{"fractional seconds", `1715000000.9`, Result{1715000000, SourceParsed}},
		{"numeric string", `"1715000000000"`, Result{1715000000, SourceParsed}},
		{"threshold is seconds", `10000000000`, Result{10000000000, SourceParsed}},
		{"non-numeric", `"yesterday"`, Result{now.Unix(), SourceFallback}},
		{"boolean", `true`, Result{now.Unix(), SourceFallback}},
		{"object", `{"ts":1}`, Result{now.Unix(), SourceFallback}},
		{"null", `null`, Result{now.Unix(), SourceFallback}},
		{"absent", ``, Result{now.Unix(), SourceFallback}},
		{"overflow", `1e300`, Result{now.Unix(), SourceFallback}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(json.RawMessage(tc.raw), now))
		})
	}
}

func TestParse_FallbackNearNow(t *testing.T) {
	before := time.Now().Unix()
	r := Parse(json.RawMessage(`"abc"`), time.Now())
	assert.True(t, r.Fallback())
	assert.InDelta(t, before, r.Unix, 2)
}

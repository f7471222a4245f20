// Package eventtime converts source-platform timestamps into the whole-second
// epoch values the sink API accepts.
package eventtime

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// millisThreshold separates millisecond from second timestamps.
const millisThreshold = 1e10

// Source reports where a Result's value came from.
type Source string

const (
	SourceParsed   Source = "parsed"
	SourceFallback Source = "fallback"
)

// Result is the outcome of Parse.
type Result struct {
	Unix   int64
	Source Source
}

// Fallback reports whether the wall clock was used.
func (r Result) Fallback() bool { return r.Source == SourceFallback }

// Parse reads raw (a JSON number, a numeric JSON string, or nothing) as an
// epoch timestamp. Values above 1e10 are treated as milliseconds. Anything
// that cannot be read as a finite number resolves to now.
func Parse(raw json.RawMessage, now time.Time) Result {
	f, ok := number(raw)
	if !ok {
		return Result{Unix: now.Unix(), Source: SourceFallback}
	}
	if f > millisThreshold {
		f /= 1000
	}
	if f >= math.MaxInt64 || f <= math.MinInt64 {
		return Result{Unix: now.Unix(), Source: SourceFallback}
	}
	return Result{Unix: int64(math.Trunc(f)), Source: SourceParsed}
}

func number(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	text := string(raw)
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(s)
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

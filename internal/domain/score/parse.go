package score

import (
	"math"
	"strconv"
	"strings"
)

// maxMagnitude bounds accepted values so the formula stays finite and
// one-decimal rounding stays meaningful.
const maxMagnitude = 1e15

// Field names a raw input.
type Field string

// Input fields.
const (
	FieldQueensTime    Field = "queens_time"
	FieldTangoTime     Field = "tango_time"
	FieldZipTime       Field = "zip_time"
	FieldZipBacktracks Field = "zip_backtracks"
)

// Reason explains why a field fell back to zero.
type Reason string

// Fallback reasons.
const (
	ReasonEmpty      Reason = "empty"
	ReasonMalformed  Reason = "malformed"
	ReasonOutOfRange Reason = "out_of_range"
)

// Fallback records a field that was replaced by zero.
type Fallback struct {
	Field  Field  `json:"field"`
	Reason Reason `json:"reason"`
}

// Values are the parsed inputs the formula works on.
type Values struct {
	QueensTime    float64    `json:"queens_time"`
	TangoTime     float64    `json:"tango_time"`
	ZipTime       float64    `json:"zip_time"`
	ZipBacktracks int64      `json:"zip_backtracks"`
	Fallbacks     []Fallback `json:"fallbacks,omitempty"`
}

// Parse converts raw inputs into Values. It never fails: anything that is not
// a usable number becomes 0 and is listed in Values.Fallbacks.
func Parse(in Inputs) Values {
	var v Values
	record := func(f Field, r Reason) {
		if r != "" {
			v.Fallbacks = append(v.Fallbacks, Fallback{Field: f, Reason: r})
		}
	}

	var r Reason
	v.QueensTime, r = parseTime(in.QueensTime)
	record(FieldQueensTime, r)
	v.TangoTime, r = parseTime(in.TangoTime)
	record(FieldTangoTime, r)
	v.ZipTime, r = parseTime(in.ZipTime)
	record(FieldZipTime, r)
	v.ZipBacktracks, r = parseCount(in.ZipBacktracks)
	record(FieldZipBacktracks, r)

	return v
}

// parseTime reads a float. The empty Reason means the value was used as is.
func parseTime(raw string) (float64, Reason) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ReasonEmpty
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, ReasonMalformed
	}
	if math.Abs(f) > maxMagnitude {
		return 0, ReasonOutOfRange
	}
	if f == 0 {
		// normalizes -0
		return 0, ""
	}
	return f, ""
}

// parseCount reads the leading integer of raw, like parseInt: "2.9" is 2
// and "1e3" is 1. Input without a leading digit is malformed.
func parseCount(raw string) (int64, Reason) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ReasonEmpty
	}
	end := 0
	if s[0] == '+' || s[0] == '-' {
		end = 1
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, ReasonMalformed
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || n > maxMagnitude || n < -maxMagnitude {
		// only a range error is possible for a digit run
		return 0, ReasonOutOfRange
	}
	return n, ""
}

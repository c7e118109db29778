package api

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/lnkd/lnkd/internal/domain/score"
)

// formValue accepts a JSON string, number or null. Anything else is kept
// as its raw text so the engine treats it as malformed.
type formValue string

// UnmarshalJSON implements json.Unmarshaler.
func (v *formValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*v = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = formValue(s)
	default:
		*v = formValue(data)
	}
	return nil
}

// scoreRequest mirrors the OpenAPI schema for score and calculation bodies.
type scoreRequest struct {
	QueensTime    formValue `json:"queens_time"`
	TangoTime     formValue `json:"tango_time"`
	ZipTime       formValue `json:"zip_time"`
	ZipBacktracks formValue `json:"zip_backtracks"`
}

func (r scoreRequest) inputs() score.Inputs {
	return score.Inputs{
		QueensTime:    string(r.QueensTime),
		TangoTime:     string(r.TangoTime),
		ZipTime:       string(r.ZipTime),
		ZipBacktracks: string(r.ZipBacktracks),
	}
}

// decodeScoreRequest reads a JSON body. An empty body means all fields empty.
func decodeScoreRequest(body []byte) (score.Inputs, error) {
	var req scoreRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req.inputs(), nil
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return score.Inputs{}, err
	}
	return req.inputs(), nil
}

// queryInputs reads inputs from query parameters; missing ones are empty.
func queryInputs(q url.Values) score.Inputs {
	get := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := q[k]; ok && len(v) > 0 {
				return strings.TrimSpace(v[0])
			}
		}
		return ""
	}
	return score.Inputs{
		QueensTime:    get("queens", "queens_time"),
		TangoTime:     get("tango", "tango_time"),
		ZipTime:       get("zip", "zip_time"),
		ZipBacktracks: get("backtracks", "zip_backtracks"),
	}
}

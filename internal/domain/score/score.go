// Package score implements the composite score for the daily LinkedIn puzzles.
//
// A score is computed from four raw form values: the Queens, Tango and Zip
// solve times plus the number of Zip backtracks. Raw values that are empty or
// do not parse degrade to zero, so Compute never fails.
package score

import (
	"fmt"
	"strconv"
)

// Formula coefficients.
const (
	QueensWeight     = 1.5
	TangoWeight      = 1.0
	ZipWeight        = 1.0
	BacktrackPenalty = 3
)

// Inputs holds the raw form values exactly as the user typed them.
type Inputs struct {
	QueensTime    string `json:"queens_time"`
	TangoTime     string `json:"tango_time"`
	ZipTime       string `json:"zip_time"`
	ZipBacktracks string `json:"zip_backtracks"`
}

// FromValues builds Inputs from already numeric values.
func FromValues(queens, tango, zip float64, backtracks int64) Inputs {
	return Inputs{
		QueensTime:    strconv.FormatFloat(queens, 'f', -1, 64),
		TangoTime:     strconv.FormatFloat(tango, 'f', -1, 64),
		ZipTime:       strconv.FormatFloat(zip, 'f', -1, 64),
		ZipBacktracks: strconv.FormatInt(backtracks, 10),
	}
}

// Contributions are the four additive terms of the total, unrounded.
type Contributions struct {
	Queens     float64 `json:"queens"`
	Tango      float64 `json:"tango"`
	Zip        float64 `json:"zip"`
	Backtracks float64 `json:"backtracks"`
}

// Sum adds the four terms.
func (c Contributions) Sum() float64 {
	return c.Queens + c.Tango + c.Zip + c.Backtracks
}

// Breakdown is the human readable decomposition of a total.
type Breakdown struct {
	QueensPart     string  `json:"queens_part"`
	TangoPart      string  `json:"tango_part"`
	ZipPart        string  `json:"zip_part"`
	BacktracksPart string  `json:"backtracks_part"`
	Total          float64 `json:"total"`
}

// String renders the breakdown as a single equation line.
func (b Breakdown) String() string {
	return fmt.Sprintf("%s + %s + %s + %s = %s",
		b.QueensPart, b.TangoPart, b.ZipPart, b.BacktracksPart, FormatTotal(b.Total))
}

// Result is the outcome of one computation.
type Result struct {
	Total         float64       `json:"total"`
	Display       string        `json:"display"`
	Breakdown     Breakdown     `json:"breakdown"`
	Contributions Contributions `json:"contributions"`
	Values        Values        `json:"values"`
}

// Compute parses in and evaluates the score formula.
func Compute(in Inputs) Result {
	return Evaluate(Parse(in))
}

// Evaluate applies the score formula to parsed values.
func Evaluate(v Values) Result {
	c := Contributions{
		Queens:     v.QueensTime * QueensWeight,
		Tango:      v.TangoTime * TangoWeight,
		Zip:        v.ZipTime * ZipWeight,
		Backtracks: float64(v.ZipBacktracks * BacktrackPenalty),
	}
	total := Round1(c.Sum())

	return Result{
		Total:   total,
		Display: FormatTotal(total),
		Breakdown: Breakdown{
			QueensPart:     fmt.Sprintf("(%s × %s)", formatValue(v.QueensTime), formatValue(QueensWeight)),
			TangoPart:      formatValue(v.TangoTime),
			ZipPart:        formatValue(v.ZipTime),
			BacktracksPart: fmt.Sprintf("(%d × %d)", v.ZipBacktracks, BacktrackPenalty),
			Total:          total,
		},
		Contributions: c,
		Values:        v,
	}
}

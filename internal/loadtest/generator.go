package loadtest

import (
	"crypto/rand"
	"math/big"
	"strconv"

	"github.com/lnkd/lnkd/internal/domain/score"
)

// Value shapes a generated field can take.
const (
	shapeSeconds = iota
	shapeFraction
	shapeBlank
	shapeGarbage
	shapePadded
	shapeCount
)

var garbage = []string{"abc", "1e", "--3", "NaN", "∞", "12s", "1e3"}

// randomInt returns a uniform value in [0, n).
func randomInt(n int64) int64 {
	v, err := rand.Int(rand.Reader, big.NewInt(n))
	if err != nil {
		return 0
	}
	return v.Int64()
}

// cleanEvery makes every cleanEvery-th form a fully numeric one.
const cleanEvery = 4

// generateForms returns n forms mixing realistic times with the blank and
// malformed values the engine must treat as zero.
func generateForms(n int) []score.Inputs {
	forms := make([]score.Inputs, n)
	for i := range forms {
		if i%cleanEvery == 0 {
			forms[i] = score.FromValues(
				float64(5+randomInt(300)),
				float64(randomInt(30000))/100,
				float64(5+randomInt(300)),
				randomInt(10),
			)
			continue
		}
		forms[i] = score.Inputs{
			QueensTime:    randomTime(),
			TangoTime:     randomTime(),
			ZipTime:       randomTime(),
			ZipBacktracks: randomBacktracks(),
		}
	}
	return forms
}

func randomTime() string {
	switch randomInt(shapeCount) {
	case shapeSeconds:
		return strconv.FormatInt(5+randomInt(300), 10)
	case shapeFraction:
		return strconv.FormatFloat(float64(randomInt(30000))/100, 'f', -1, 64)
	case shapeBlank:
		return ""
	case shapeGarbage:
		return garbage[randomInt(int64(len(garbage)))]
	default:
		return " " + strconv.FormatInt(randomInt(120), 10) + " "
	}
}

func randomBacktracks() string {
	switch randomInt(shapeCount) {
	case shapeBlank:
		return ""
	case shapeGarbage:
		return garbage[randomInt(int64(len(garbage)))]
	case shapeFraction:
		return strconv.FormatFloat(float64(randomInt(100))/10, 'f', 1, 64)
	default:
		return strconv.FormatInt(randomInt(10), 10)
	}
}

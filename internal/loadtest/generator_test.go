package loadtest

import (
	"testing"

	"github.com/lnkd/lnkd/internal/domain/score"
	. "github.com/smartystreets/goconvey/convey"
)

func TestGenerateForms(t *testing.T) {
	Convey("Given a batch of generated forms", t, func() {
		forms := generateForms(500)

		Convey("Then the batch has the requested size", func() {
			So(len(forms), ShouldEqual, 500)
		})

		Convey("And every fourth form is fully numeric", func() {
			for i := 0; i < len(forms); i += cleanEvery {
				So(score.Compute(forms[i]).Values.Fallbacks, ShouldBeEmpty)
			}
		})

		Convey("And every form scores to a non-negative total", func() {
			fallbacks := 0
			for _, f := range forms {
				res := score.Compute(f)
				So(res.Total, ShouldBeGreaterThanOrEqualTo, 0)
				fallbacks += len(res.Values.Fallbacks)
			}
			So(fallbacks, ShouldBeGreaterThan, 0)
		})
	})

	Convey("Given randomInt", t, func() {
		for i := 0; i < 100; i++ {
			v := randomInt(7)
			So(v, ShouldBeBetweenOrEqual, 0, 6)
		}
	})
}

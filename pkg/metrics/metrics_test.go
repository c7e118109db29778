package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestManagerCreation(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with custom options", func() {
			m := NewManager(
				WithNamespace("test"),
				WithSubsystem("unit"),
				WithHistogramBuckets([]float64{1, 2, 3}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then its collectors are registered under the namespace", func() {
				So(m, ShouldNotBeNil)
				m.calculationsSubmitted.Inc()
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_unit_calculations_submitted_total")
			})
		})

		Convey("When registering the same collectors twice", func() {
			NewManager(WithPrometheusRegistry(registry))

			Convey("Then promauto panics", func() {
				So(func() { NewManager(WithPrometheusRegistry(registry)) }, ShouldPanic)
			})
		})
	})
}

func TestRecording(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording calculation events", func() {
			before := testutil.ToFloat64(globalManager.calculationsSubmitted)
			RecordCalculationSubmitted()
			RecordCalculationCompleted()
			RecordCalculationRejected("queue_full")
			replayed := testutil.ToFloat64(globalManager.calculationsReplayed)
			RecordCalculationReplayed()
			RecordInputFallback("queens_time", "malformed")
			RecordComputeLatency(0.02)
			RecordDisplayDelay(1500)
			RecordScoreTotal(13.5)

			Convey("Then counters move", func() {
				So(testutil.ToFloat64(globalManager.calculationsSubmitted), ShouldEqual, before+1)
				So(testutil.ToFloat64(globalManager.calculationsReplayed), ShouldEqual, replayed+1)
				So(testutil.ToFloat64(globalManager.calculationsRejected.WithLabelValues("queue_full")), ShouldBeGreaterThanOrEqualTo, 1)
				So(testutil.ToFloat64(globalManager.inputFallbacks.WithLabelValues("queens_time", "malformed")), ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		Convey("When updating gauges", func() {
			UpdateQueueSize(3)
			UpdateQueueCapacity(10)
			UpdateWorkerCount(4)
			UpdateStoreEntries(7)
			UpdateSystemGoroutineCount(12)
			UpdateSystemMemoryUsage(1024)

			Convey("Then they hold the last value", func() {
				So(testutil.ToFloat64(globalManager.queueSize), ShouldEqual, 3.0)
				So(testutil.ToFloat64(globalManager.workerCount), ShouldEqual, 4.0)
				So(testutil.ToFloat64(globalManager.storeEntries), ShouldEqual, 7.0)
			})
		})

		Convey("When recording HTTP traffic", func() {
			So(func() {
				RecordHTTPRequest("score", "POST", "200")
				RecordHTTPRequestDuration("score", "POST", "200", 1.5)
				RecordErrorByEndpoint("score", "POST", "client_error")
				RecordErrorByComponent("worker", "scoring_error")
				RecordStoreEviction()
			}, ShouldNotPanic)
		})
	})
}

func TestHandler(t *testing.T) {
	Convey("Given the exposition handler", t, func() {
		RecordCalculationSubmitted()
		w := httptest.NewRecorder()
		Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

		Convey("Then it serves the private registry", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "lnkd_calculator_calculations_submitted_total")
		})
	})
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		reg := prometheus.NewRegistry()

		Convey("When creating a manager with defaults", func() {
			m := NewManager(WithRegistry(reg))

			Convey("Then it should be configured with the default namespace", func() {
				So(m, ShouldNotBeNil)
				So(m.namespace, ShouldEqual, "screening")
				So(m.subsystem, ShouldEqual, "pipeline")
				So(m.enabled, ShouldBeTrue)
			})
		})

		Convey("When creating a manager with options", func() {
			m := NewManager(
				WithRegistry(prometheus.NewRegistry()),
				WithNamespace("custom"),
				WithSubsystem("sub"),
				WithHistogramBuckets([]float64{1, 5, 10}),
				WithMetricsEnabled(false),
			)

			Convey("Then the options should apply", func() {
				So(m.namespace, ShouldEqual, "custom")
				So(m.subsystem, ShouldEqual, "sub")
				So(m.histogramBuckets, ShouldResemble, []float64{1, 5, 10})
				So(m.enabled, ShouldBeFalse)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		Convey("When recording business metrics", func() {
			So(func() {
				RecordAttemptProcessed()
				RecordAttemptDuplicate()
				RecordAttemptDegraded()
				RecordScoringLatency("reading", 12.5)
				RecordRiskTier("reading", "None")
				UpdateQueueSize(3)
				UpdateWorkerCount(4)
				UpdateCaseloadSize(10)
				UpdateQueueCapacity(100)
				UpdateQueueUtilization(0.03)
				RecordQueueEnqueue()
				RecordQueueDequeue()
				RecordQueueEnqueueError()
				RecordWorkerProcessingLatency(5)
				RecordWorkerError()
				RecordRepositoryUpdateLatency(1)
				RecordRepositoryQueryLatency(1)
				RecordErrorByComponent("worker", "scoring_error")
			}, ShouldNotPanic)
		})

		Convey("When gathering from the custom registry", func() {
			families, err := Registry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

package align_test

import (
	"testing"

	align "github.com/aimdrift/aimdrift/internal/domain/align"
	"github.com/aimdrift/aimdrift/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestAligner_Align(t *testing.T) {
	Convey("Given an aligner with the default tolerance", t, func() {
		aligner := align.NewAligner()

		Convey("When aligning against an empty timeline", func() {
			targets := []model.TargetEvent{
				{Time: 100, X: 10, Y: 20},
				{Time: 200, X: 30, Y: 40},
			}
			results := aligner.Align(targets, nil)

			Convey("Then every target is unmatched, order preserved", func() {
				So(results, ShouldHaveLength, 2)
				So(results[0].Matched, ShouldBeFalse)
				So(results[1].Matched, ShouldBeFalse)
				So(results[0].Target.Time, ShouldEqual, 100)
				So(results[1].Target.Time, ShouldEqual, 200)
			})
		})

		Convey("When aligning an empty target sequence", func() {
			timeline := []model.DeviceSample{{Time: 50}}
			results := aligner.Align(nil, timeline)

			Convey("Then the result is empty", func() {
				So(results, ShouldHaveLength, 0)
			})
		})

		Convey("When the timeline has a single sample at time T", func() {
			timeline := []model.DeviceSample{{Time: 1000, X: 5, Y: 6}}

			Convey("And the target sits exactly maxDelta away", func() {
				results := aligner.Align([]model.TargetEvent{{Time: 1000 + aligner.MaxDelta()}}, timeline)

				Convey("Then it matches on the boundary", func() {
					So(results[0].Matched, ShouldBeTrue)
					So(results[0].DeltaMS, ShouldEqual, aligner.MaxDelta())
					So(results[0].Sample.X, ShouldEqual, 5)
				})
			})

			Convey("And the target sits one past maxDelta", func() {
				results := aligner.Align([]model.TargetEvent{{Time: 1000 + aligner.MaxDelta() + 1}}, timeline)

				Convey("Then it is unmatched", func() {
					So(results[0].Matched, ShouldBeFalse)
				})
			})
		})

		Convey("When two samples are equidistant from the target", func() {
			timeline := []model.DeviceSample{
				{Time: 90, X: 1},
				{Time: 110, X: 2},
			}
			results := aligner.Align([]model.TargetEvent{{Time: 100}}, timeline)

			Convey("Then the earlier sample wins the tie", func() {
				So(results[0].Matched, ShouldBeTrue)
				So(results[0].Sample.X, ShouldEqual, 1)
				So(results[0].DeltaMS, ShouldEqual, 10)
			})
		})

		Convey("When the nearest sample is behind a farther later one", func() {
			timeline := []model.DeviceSample{
				{Time: 10, X: 1},
				{Time: 95, X: 2},
				{Time: 160, X: 3},
				{Time: 400, X: 4},
			}
			results := aligner.Align([]model.TargetEvent{{Time: 100}}, timeline)

			Convey("Then the early exit still finds the true nearest", func() {
				So(results[0].Matched, ShouldBeTrue)
				So(results[0].Sample.X, ShouldEqual, 2)
				So(results[0].DeltaMS, ShouldEqual, 5)
			})
		})
	})

	Convey("Given an aligner with a zero tolerance", t, func() {
		aligner := align.NewAligner(align.WithMaxDelta(0))
		timeline := []model.DeviceSample{{Time: 100, X: 7}}

		Convey("When the target time matches exactly", func() {
			results := aligner.Align([]model.TargetEvent{{Time: 100}}, timeline)

			Convey("Then it matches", func() {
				So(results[0].Matched, ShouldBeTrue)
				So(results[0].DeltaMS, ShouldEqual, 0)
			})
		})

		Convey("When the target time is off by one", func() {
			results := aligner.Align([]model.TargetEvent{{Time: 101}}, timeline)

			Convey("Then it is unmatched", func() {
				So(results[0].Matched, ShouldBeFalse)
			})
		})
	})

	Convey("Given a full-scan aligner", t, func() {
		aligner := align.NewAligner(align.WithFullScan(), align.WithMaxDelta(50))

		Convey("When the timeline is monotonic", func() {
			timeline := []model.DeviceSample{
				{Time: 10, X: 1}, {Time: 40, X: 2}, {Time: 90, X: 3}, {Time: 130, X: 4},
			}
			targets := []model.TargetEvent{{Time: 35}, {Time: 95}}
			full := aligner.Align(targets, timeline)
			early := align.NewAligner(align.WithMaxDelta(50)).Align(targets, timeline)

			Convey("Then it agrees with the early-exit scan", func() {
				So(full, ShouldResemble, early)
			})
		})
	})
}

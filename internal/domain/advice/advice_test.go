package advice

import (
	"testing"

	"github.com/edulens/screening/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRecommendations(t *testing.T) {
	Convey("Given the recommendation tables", t, func() {
		Convey("Then every domain has guidance at every scored tier", func() {
			tiers := []model.RiskLevel{model.RiskNone, model.RiskLow, model.RiskMedium, model.RiskHigh}
			for _, d := range model.Domains() {
				for _, tier := range tiers {
					So(Recommendations(d, tier), ShouldNotBeEmpty)
				}
			}
		})

		Convey("Then higher tiers carry more guidance than lower ones", func() {
			for _, d := range model.Domains() {
				So(len(Recommendations(d, model.RiskHigh)),
					ShouldBeGreaterThan, len(Recommendations(d, model.RiskNone)))
			}
		})

		Convey("Then unknown tiers yield nothing", func() {
			So(Recommendations(model.DomainReading, model.RiskUnavailable), ShouldBeEmpty)
			So(Recommendations(model.DomainReading, model.RiskNoData), ShouldBeEmpty)
			So(Recommendations(model.Domain("music"), model.RiskHigh), ShouldBeEmpty)
		})

		Convey("Then callers get a private copy", func() {
			a := Recommendations(model.DomainReading, model.RiskHigh)
			a[0] = "mutated"
			b := Recommendations(model.DomainReading, model.RiskHigh)
			So(b[0], ShouldNotEqual, "mutated")
		})
	})
}

func TestNextSteps(t *testing.T) {
	Convey("Given the follow-up playbooks", t, func() {
		Convey("Then every scored tier has a plan", func() {
			for _, tier := range []model.RiskLevel{model.RiskNone, model.RiskLow, model.RiskMedium, model.RiskHigh} {
				So(NextSteps(tier), ShouldNotBeEmpty)
			}
		})

		Convey("Then unknown tiers yield nothing", func() {
			So(NextSteps(model.RiskUnavailable), ShouldBeEmpty)
		})
	})
}

func TestCombine(t *testing.T) {
	Convey("Given overlapping recommendation lists", t, func() {
		a := []string{"read daily", "extra time", "read daily"}
		b := []string{"extra time", "use manipulatives"}

		Convey("When combined", func() {
			out := Combine(a, b)

			Convey("Then duplicates are dropped and first-seen order kept", func() {
				So(out, ShouldResemble, []string{"read daily", "extra time", "use manipulatives"})
			})
		})
	})

	Convey("Given no lists", t, func() {
		So(Combine(), ShouldBeEmpty)
	})
}

package aggregate_test

import (
	"math/rand"
	"testing"
	"time"

	"github.com/okian/barberbook/internal/domain/aggregate"
	"github.com/okian/barberbook/internal/domain/model"
	"github.com/shopspring/decimal"
	. "github.com/smartystreets/goconvey/convey"
)

const (
	ana = "a@x.com"
	rui = "rui@x.com"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, time.UTC)
}

func service(id, barber, client, price string, when time.Time) model.ProductionEvent {
	return model.ProductionEvent{ID: id, Barber: barber, Kind: model.KindService, ClientName: client, Gross: dec(price), OccurredAt: when}
}

func sale(id, barber, total string, when time.Time) model.ProductionEvent {
	return model.ProductionEvent{ID: id, Barber: barber, Kind: model.KindProductSale, Gross: dec(total), Quantity: 1, OccurredAt: when}
}

func fixture() []model.ProductionEvent {
	return []model.ProductionEvent{
		service("e1", ana, "Rui", "100", at(2024, time.March, 1, 10, 0)),
		service("e2", ana, "Rui", "100", at(2024, time.March, 2, 10, 0)),
		service("e3", ana, "", "30", at(2024, time.March, 2, 11, 0)),
		sale("e4", ana, "123", at(2024, time.March, 3, 9, 0)),
		service("e5", ana, "Joana", "50", at(2024, time.April, 5, 15, 0)),
		service("e6", rui, "Rui", "70", at(2024, time.March, 4, 15, 0)),
		sale("e7", rui, "24.60", at(2024, time.April, 1, 12, 0)),
	}
}

func TestCounts(t *testing.T) {
	Convey("Given a mixed production log", t, func() {
		e := aggregate.New()
		events := fixture()
		march := model.Month{Year: 2024, Month: time.March}

		Convey("When counting by kind", func() {
			Convey("Then only the identity's rows of that kind are counted", func() {
				So(e.CountByKind(events, ana, model.KindService, model.AnyMonth), ShouldEqual, 4)
				So(e.CountByKind(events, ana, model.KindProductSale, model.AnyMonth), ShouldEqual, 1)
				So(e.CountByKind(events, ana, model.KindService, march), ShouldEqual, 3)
				So(e.CountByKind(events, "nobody@x.com", model.KindService, model.AnyMonth), ShouldEqual, 0)
			})

			Convey("Then both kinds together never exceed the identity's rows", func() {
				for _, who := range []string{ana, rui} {
					rows := 0
					for _, ev := range events {
						if ev.Barber == who {
							rows++
						}
					}
					total := e.CountByKind(events, who, model.KindService, model.AnyMonth) +
						e.CountByKind(events, who, model.KindProductSale, model.AnyMonth)
					So(total, ShouldBeLessThanOrEqualTo, rows)
				}
			})
		})

		Convey("When counting distinct clients", func() {
			Convey("Then blank names are ignored and repeats collapse", func() {
				So(e.CountDistinctClients(events, ana, model.AnyMonth), ShouldEqual, 2)
				So(e.CountDistinctClients(events, ana, march), ShouldEqual, 1)
			})

			Convey("Then whitespace-only names count as blank", func() {
				extra := append(fixture(), service("e8", ana, "   ", "10", at(2024, time.March, 9, 9, 0)))
				So(e.CountDistinctClients(extra, ana, model.AnyMonth), ShouldEqual, 2)
			})
		})
	})
}

func TestRevenueAndCommission(t *testing.T) {
	Convey("Given the default rates", t, func() {
		e := aggregate.New()

		Convey("When a product sale of 123.00 is priced at 20%", func() {
			c := e.CommissionFor(sale("p", ana, "123.00", at(2024, time.January, 1, 9, 0)))

			Convey("Then VAT is stripped before the rate applies", func() {
				So(c.StringFixed(2), ShouldEqual, "20.00")
			})
		})

		Convey("When a service has no stored commission", func() {
			c := e.CommissionFor(service("s", ana, "", "55", at(2024, time.January, 1, 9, 0)))

			Convey("Then the service rate applies to the gross", func() {
				So(c.StringFixed(2), ShouldEqual, "22.00")
			})
		})

		Convey("When a service carries a stored commission", func() {
			stored := dec("7.5")
			ev := service("s", ana, "", "55", at(2024, time.January, 1, 9, 0))
			ev.Commission = &stored

			Convey("Then the stored value wins", func() {
				So(e.CommissionFor(ev).Equal(stored), ShouldBeTrue)
			})
		})

		Convey("When a product sale carries a stored commission", func() {
			stored := dec("99")
			ev := sale("p", ana, "123", at(2024, time.January, 1, 9, 0))
			ev.Commission = &stored

			Convey("Then it is ignored and the rate is recomputed", func() {
				So(e.CommissionFor(ev).StringFixed(2), ShouldEqual, "20.00")
			})
		})

		Convey("When summing over the log", func() {
			events := fixture()
			march := model.Month{Year: 2024, Month: time.March}

			Convey("Then revenue is gross across both kinds", func() {
				So(e.TotalRevenue(events, ana, model.AnyMonth).StringFixed(2), ShouldEqual, "403.00")
				So(e.TotalRevenue(events, ana, march).StringFixed(2), ShouldEqual, "353.00")
			})

			Convey("Then commission can cover one barber or the whole shop", func() {
				// ana: (100+100+30+50)*0.4 + 20 = 132; rui: 70*0.4 + 4 = 32
				So(e.TotalCommission(events, ana, model.AnyMonth).StringFixed(2), ShouldEqual, "132.00")
				So(e.TotalCommission(events, aggregate.AllBarbers, model.AnyMonth).StringFixed(2), ShouldEqual, "164.00")
			})

			Convey("Then revenue does not depend on order", func() {
				want := e.TotalRevenue(events, ana, model.AnyMonth)
				r := rand.New(rand.NewSource(7))
				for i := 0; i < 20; i++ {
					shuffled := append([]model.ProductionEvent(nil), events...)
					r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
					So(e.TotalRevenue(shuffled, ana, model.AnyMonth).Equal(want), ShouldBeTrue)
				}
			})
		})

		Convey("When the rates are changed", func() {
			custom := aggregate.New(aggregate.WithRates(aggregate.RatesFromPercent(50, 10, 0)))

			Convey("Then every kind uses its own configured rate", func() {
				So(custom.CommissionFor(service("s", ana, "", "80", at(2024, 1, 1, 9, 0))).StringFixed(2), ShouldEqual, "40.00")
				So(custom.CommissionFor(sale("p", ana, "80", at(2024, 1, 1, 9, 0))).StringFixed(2), ShouldEqual, "8.00")
			})
		})
	})
}

func TestMonthlyBuckets(t *testing.T) {
	Convey("Given events across months", t, func() {
		e := aggregate.New()

		Convey("When bucketing one barber", func() {
			buckets := e.MonthlyRevenueBuckets(fixture(), ana)

			Convey("Then each event lands in its calendar month and empty months are absent", func() {
				So(len(buckets), ShouldEqual, 2)
				So(buckets["2024-03"].StringFixed(2), ShouldEqual, "353.00")
				So(buckets["2024-04"].StringFixed(2), ShouldEqual, "50.00")
				_, ok := buckets["2024-02"]
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the shop calendar is behind UTC", func() {
			azores, err := time.LoadLocation("Atlantic/Azores")
			So(err, ShouldBeNil)
			local := aggregate.New(aggregate.WithLocation(azores))
			events := []model.ProductionEvent{service("e", ana, "", "10", at(2024, time.March, 1, 0, 30))}

			Convey("Then the month follows the local calendar", func() {
				buckets := local.MonthlyRevenueBuckets(events, ana)
				So(buckets, ShouldContainKey, "2024-02")
				So(buckets, ShouldNotContainKey, "2024-03")
			})
		})

		Convey("When an event has no timestamp", func() {
			events := []model.ProductionEvent{service("e", ana, "Rui", "10", time.Time{})}

			Convey("Then it contributes nowhere", func() {
				So(e.MonthlyRevenueBuckets(events, ana), ShouldBeEmpty)
				So(e.TotalRevenue(events, ana, model.AnyMonth).IsZero(), ShouldBeTrue)
				So(e.CountByKind(events, ana, model.KindService, model.AnyMonth), ShouldEqual, 0)
			})
		})
	})
}

func TestAverageInterServiceMinutes(t *testing.T) {
	Convey("Given service timelines", t, func() {
		e := aggregate.New()
		base := at(2024, time.March, 1, 10, 0)

		Convey("Then no events or one event fall back to 30", func() {
			So(e.AverageInterServiceMinutes(nil, ana, model.AnyMonth), ShouldEqual, 30.0)
			So(e.AverageInterServiceMinutes([]model.ProductionEvent{service("a", ana, "", "1", base)}, ana, model.AnyMonth), ShouldEqual, 30.0)
		})

		Convey("Then a 5 minute gap is raised to 15", func() {
			events := []model.ProductionEvent{
				service("a", ana, "", "1", base),
				service("b", ana, "", "1", base.Add(5*time.Minute)),
			}
			So(e.AverageInterServiceMinutes(events, ana, model.AnyMonth), ShouldEqual, 15.0)
		})

		Convey("Then a 120 minute gap is capped at 60", func() {
			events := []model.ProductionEvent{
				service("a", ana, "", "1", base),
				service("b", ana, "", "1", base.Add(120*time.Minute)),
			}
			So(e.AverageInterServiceMinutes(events, ana, model.AnyMonth), ShouldEqual, 60.0)
		})

		Convey("Then unsorted input is sorted and product sales are ignored", func() {
			events := []model.ProductionEvent{
				service("c", ana, "", "1", base.Add(70*time.Minute)),
				sale("p", ana, "1", base.Add(10*time.Minute)),
				service("a", ana, "", "1", base),
				service("b", ana, "", "1", base.Add(40*time.Minute)),
			}
			// gaps 40 and 30
			So(e.AverageInterServiceMinutes(events, ana, model.AnyMonth), ShouldEqual, 35.0)
		})
	})
}

func TestTiers(t *testing.T) {
	Convey("Given the tier table", t, func() {
		Convey("Then thresholds are inclusive lower bounds", func() {
			So(aggregate.RankingTier(dec("0")).Name, ShouldEqual, aggregate.TierIniciante)
			So(aggregate.RankingTier(dec("999")).Name, ShouldEqual, aggregate.TierIniciante)
			So(aggregate.RankingTier(dec("999.99")).Name, ShouldEqual, aggregate.TierIniciante)
			So(aggregate.RankingTier(dec("1000")).Name, ShouldEqual, aggregate.TierAprendiz)
			So(aggregate.RankingTier(dec("3000")).Name, ShouldEqual, aggregate.TierProfissional)
			So(aggregate.RankingTier(dec("5000")).Name, ShouldEqual, aggregate.TierMestre)
			So(aggregate.RankingTier(dec("8000")).Name, ShouldEqual, aggregate.TierLendario)
			So(aggregate.RankingTier(dec("10000")).Name, ShouldEqual, aggregate.TierElite)
			So(aggregate.RankingTier(dec("15000")).Name, ShouldEqual, aggregate.TierImortal)
			So(aggregate.RankingTier(dec("20000")).Name, ShouldEqual, aggregate.TierImortal)
			So(aggregate.RankingTier(dec("20000")).Icon, ShouldEqual, "🚀")
		})

		Convey("Then achievements come from the best month", func() {
			So(aggregate.AchievementsForPeakMonth(map[string]decimal.Decimal{}), ShouldResemble, []string{})
			So(aggregate.AchievementsForPeakMonth(nil), ShouldResemble, []string{})
			So(aggregate.AchievementsForPeakMonth(map[string]decimal.Decimal{"2024-01": dec("5000")}), ShouldResemble,
				[]string{"Iniciante", "Aprendiz", "Profissional", "Mestre"})
			So(aggregate.AchievementsForPeakMonth(map[string]decimal.Decimal{
				"2024-01": dec("1200"),
				"2024-02": dec("8000"),
				"2024-03": dec("10"),
			}), ShouldResemble, []string{"Iniciante", "Aprendiz", "Profissional", "Mestre", "Lendário"})
		})

		Convey("Then the peak month breaks ties by the earliest month", func() {
			month, peak, ok := aggregate.PeakMonth(map[string]decimal.Decimal{
				"2024-05": dec("300"),
				"2024-02": dec("300"),
			})
			So(ok, ShouldBeTrue)
			So(month, ShouldEqual, "2024-02")
			So(peak.Equal(dec("300")), ShouldBeTrue)
		})

		Convey("Then the exported table is a copy", func() {
			table := aggregate.Tiers()
			table[0].Name = "changed"
			So(aggregate.Tiers()[0].Name, ShouldEqual, aggregate.TierIniciante)
		})
	})
}

func TestEndToEnd(t *testing.T) {
	Convey("Given two 100.00 services in March 2024 at a 40% rate", t, func() {
		lisbon, err := time.LoadLocation("Europe/Lisbon")
		So(err, ShouldBeNil)
		e := aggregate.New(aggregate.WithLocation(lisbon))

		var events []model.ProductionEvent
		for i, doc := range []map[string]any{
			{"barberName": "a@x.com", "kind": "service", "price": 100, "date": "2024-03-01"},
			{"barberName": "a@x.com", "kind": "service", "price": 100, "date": "2024-03-02"},
		} {
			ev, err := model.DecodeEvent(string(rune('a'+i)), doc, e.Location())
			So(err, ShouldBeNil)
			events = append(events, ev)
		}

		Convey("Then revenue, commission and buckets match", func() {
			So(e.TotalRevenue(events, ana, model.AnyMonth).StringFixed(2), ShouldEqual, "200.00")
			So(e.TotalCommission(events, ana, model.AnyMonth).StringFixed(2), ShouldEqual, "80.00")
			buckets := e.MonthlyRevenueBuckets(events, ana)
			So(len(buckets), ShouldEqual, 1)
			So(buckets["2024-03"].StringFixed(2), ShouldEqual, "200.00")
		})

		Convey("Then repeated calls agree and the input is untouched", func() {
			before := append([]model.ProductionEvent(nil), events...)
			first := e.Profile(events, ana, at(2024, time.March, 20, 12, 0))
			second := e.Profile(events, ana, at(2024, time.March, 20, 12, 0))
			So(second, ShouldResemble, first)
			So(events, ShouldResemble, before)
		})
	})
}

func TestEmptyInput(t *testing.T) {
	Convey("Given no events at all", t, func() {
		e := aggregate.New()

		Convey("Then every aggregate returns its identity value", func() {
			So(e.CountByKind(nil, ana, model.KindService, model.AnyMonth), ShouldEqual, 0)
			So(e.CountDistinctClients(nil, ana, model.AnyMonth), ShouldEqual, 0)
			So(e.TotalRevenue(nil, ana, model.AnyMonth).IsZero(), ShouldBeTrue)
			So(e.TotalCommission(nil, ana, model.AnyMonth).IsZero(), ShouldBeTrue)
			So(e.MonthlyRevenueBuckets(nil, ana), ShouldBeEmpty)
			So(e.AverageInterServiceMinutes(nil, ana, model.AnyMonth), ShouldEqual, 30.0)
			So(aggregate.RankingTier(e.TotalRevenue(nil, ana, model.AnyMonth)).Name, ShouldEqual, "Iniciante")
			So(e.Leaderboard(nil, model.AnyMonth), ShouldBeEmpty)
		})
	})
}

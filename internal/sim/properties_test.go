package sim

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/popsim/internal/ecology"
)

var _ = Describe("Simulator", func() {
	Describe("invariants over long runs", func() {
		DescribeTable("populations and resources stay non-negative",
			func(build func() Scenario, ticks int) {
				s, err := New(build(), DefaultOptions())
				Expect(err).NotTo(HaveOccurred())

				s.AddObserver(ObserverFunc(func(snap Snapshot) {
					for name, p := range snap.Populations {
						Expect(p).To(BeNumerically(">=", 0), "population of %s at tick %d", name, snap.Tick)
						Expect(math.IsNaN(p)).To(BeFalse())
					}
					for r, q := range snap.Resources {
						Expect(q).To(BeNumerically(">=", 0), "quantity of %s at tick %d", r, snap.Tick)
					}
				}))

				_, err = s.Run(context.Background(), ticks)
				Expect(err).NotTo(HaveOccurred())
			},
			Entry("two-species symbiosis", symbiosisScenario, 100),
			Entry("classic three species with lead", classicScenario, 200),
			Entry("single consumer", oxygenOnlyScenario, 100),
		)

		It("keeps every resource history as long as the tick counter", func() {
			s, err := New(classicScenario(), DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			s.StepN(25)

			res := s.Result(false)
			for r, h := range res.Resources {
				Expect(h).To(HaveLen(s.Tick()), "history of %s", r)
			}
			for name := range res.Populations {
				Expect(res.Populations[name]).To(HaveLen(s.Tick()))
				Expect(res.Capacities[name]).To(HaveLen(s.Tick()))
			}
		})
	})

	Describe("determinism", func() {
		It("produces identical histories for identical configurations", func() {
			run := func() *Result {
				s, err := New(classicScenario(), DefaultOptions())
				Expect(err).NotTo(HaveOccurred())
				s.StepN(80)
				return s.Result(false)
			}
			Expect(run()).To(Equal(run()))
		})

		It("replays the same histories after a reset", func() {
			s, err := New(symbiosisScenario(), DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			s.StepN(40)
			first := s.Result(false)

			s.Reset()
			s.StepN(40)
			Expect(s.Result(false)).To(Equal(first))
		})
	})

	Describe("competition", func() {
		It("is zero between species sharing no required resource", func() {
			s, err := New(symbiosisScenario(), DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.SetPopulation("GlucoseEater", 1e6)).To(Succeed())
			Expect(s.Step()).To(BeTrue())

			ox, _ := s.Microbe("OxygenEater")
			gl, _ := s.Microbe("GlucoseEater")
			Expect(ox.Competitors()).To(HaveKeyWithValue("GlucoseEater", 0.0))
			Expect(gl.Competitors()).To(HaveKeyWithValue("OxygenEater", 0.0))
		})

		It("reads tick-start populations regardless of iteration order", func() {
			shared := func(order []int) Scenario {
				defs := []ecology.Definition{
					{Name: "Fast", Population: 3, GrowthRate: 1.5, Required: ecology.Quantities{"Oxygen": 1}},
					{Name: "Slow", Population: 1, GrowthRate: 1.1, Required: ecology.Quantities{"Oxygen": 2}},
				}
				sc := Scenario{
					Name:         "shared",
					Resources:    ecology.Quantities{"Oxygen": 50},
					RefreshRates: ecology.Quantities{"Oxygen": 5},
				}
				for _, i := range order {
					sc.Microbes = append(sc.Microbes, defs[i])
				}
				return sc
			}

			a, err := New(shared([]int{0, 1}), DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			b, err := New(shared([]int{1, 0}), DefaultOptions())
			Expect(err).NotTo(HaveOccurred())

			a.StepN(30)
			b.StepN(30)

			for _, name := range []string{"Fast", "Slow"} {
				ha, _ := a.LevelHistory(name)
				hb, _ := b.LevelHistory(name)
				Expect(ha).To(Equal(hb), "levels of %s", name)
			}
		})
	})

	Describe("toxicity", func() {
		It("scales carrying capacity down between max safe and lethal density", func() {
			sc := Scenario{
				Name:         "toxic",
				Resources:    ecology.Quantities{"Oxygen": 5, "Lead": 5},
				RefreshRates: ecology.Quantities{"Oxygen": 0, "Lead": 0},
				Microbes: []ecology.Definition{{
					Name: "A", Population: 1, GrowthRate: 1,
					Required: ecology.Quantities{"Oxygen": 1},
					Toxins:   map[ecology.Resource]ecology.Toxin{"Lead": lead()},
				}},
			}
			s, err := New(sc, DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Step()).To(BeTrue())

			caps, err := s.CapacityHistory("A")
			Expect(err).NotTo(HaveOccurred())
			Expect(caps).To(HaveLen(1))
			Expect(caps[0]).To(BeNumerically("~", 2.5, 1e-9))
		})

		It("collapses capacity at lethal density", func() {
			sc := Scenario{
				Name:         "lethal",
				Resources:    ecology.Quantities{"Oxygen": 4, "Lead": 6},
				RefreshRates: ecology.Quantities{"Oxygen": 0, "Lead": 0},
				Microbes: []ecology.Definition{{
					Name: "A", Population: 1, GrowthRate: 1,
					Required: ecology.Quantities{"Oxygen": 1},
					Toxins:   map[ecology.Resource]ecology.Toxin{"Lead": lead()},
				}},
			}
			s, err := New(sc, DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Step()).To(BeTrue())

			m, _ := s.Microbe("A")
			Expect(m.CapacityHistory()).To(Equal([]float64{0}))
			Expect(m.Population()).To(BeZero())
		})
	})

	Describe("exhaustion", func() {
		It("leaves the tick counter unchanged once every resource is gone", func() {
			sc := oxygenOnlyScenario()
			sc.Resources["Oxygen"] = 2
			s, err := New(sc, DefaultOptions())
			Expect(err).NotTo(HaveOccurred())

			Expect(s.StepN(100)).To(Equal(1))
			before := s.Tick()
			for i := 0; i < 10; i++ {
				Expect(s.Step()).To(BeFalse())
			}
			Expect(s.Tick()).To(Equal(before))
		})

		It("resumes after an injection", func() {
			sc := oxygenOnlyScenario()
			sc.Resources["Oxygen"] = 2
			s, err := New(sc, DefaultOptions())
			Expect(err).NotTo(HaveOccurred())
			s.StepN(100)

			Expect(s.Inject("Oxygen", 5)).To(Succeed())
			Expect(s.Step()).To(BeTrue())
		})
	})
})

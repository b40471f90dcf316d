package analysis

import (
	"math"
	"strings"
	"testing"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/sim"
)

func TestMovingAverage(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		window int
		want   []float64
	}{
		{"window three", []float64{1, 2, 3, 4, 5}, 3, []float64{2, 3, 4}},
		{"window one", []float64{1, 5}, 1, []float64{1, 5}},
		{"full window", []float64{2, 4, 6}, 3, []float64{4}},
		{"window too wide", []float64{1, 2}, 3, nil},
		{"zero window", []float64{1, 2}, 0, nil},
		{"empty", nil, 3, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.data, tt.window)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("index %d: expected %f, got %f", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(KindPopulation, "A", []float64{2, 4, 4, 4, 5, 5, 7, 9})

	if s.Mean != 5 {
		t.Errorf("expected mean 5, got %f", s.Mean)
	}
	// sample standard deviation of the set above
	if want := math.Sqrt(32.0 / 7.0); math.Abs(s.StdDev-want) > 1e-12 {
		t.Errorf("expected std dev %f, got %f", want, s.StdDev)
	}
	if s.Min != 2 || s.Max != 9 || s.Final != 9 {
		t.Errorf("unexpected extremes: %+v", s)
	}
}

func TestSummarize_Short(t *testing.T) {
	empty := Summarize(KindResource, "Oxygen", nil)
	if empty.Mean != 0 || empty.Final != 0 {
		t.Errorf("expected zero summary, got %+v", empty)
	}

	one := Summarize(KindResource, "Oxygen", []float64{3})
	if one.StdDev != 0 || one.Mean != 3 {
		t.Errorf("expected mean 3 and no spread, got %+v", one)
	}
}

func TestDominantPeriod(t *testing.T) {
	const n = 64
	data := make([]float64, n)
	for i := range data {
		data[i] = 10 + 3*math.Sin(2*math.Pi*float64(i)/8)
	}

	if got := DominantPeriod(data); math.Abs(got-8) > 1e-9 {
		t.Errorf("expected period 8, got %f", got)
	}

	flat := make([]float64, n)
	for i := range flat {
		flat[i] = 4
	}
	if got := DominantPeriod(flat); got != 0 {
		t.Errorf("expected 0 for a flat series, got %f", got)
	}

	if got := DominantPeriod([]float64{1, 2}); got != 0 {
		t.Errorf("expected 0 for a short series, got %f", got)
	}
}

func TestPowerSpectrum_Length(t *testing.T) {
	ps := PowerSpectrum(make([]float64, 10))
	if len(ps) != 6 {
		t.Errorf("expected 6 bins, got %d", len(ps))
	}
	if PowerSpectrum([]float64{1}) != nil {
		t.Error("expected nil spectrum for a single sample")
	}
}

func TestPhasePortrait(t *testing.T) {
	points := PhasePortrait([]float64{1, 2, 3}, []float64{4, 5})
	if len(points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(points))
	}
	if points[1] != (Point{X: 2, Y: 5}) {
		t.Errorf("unexpected point %+v", points[1])
	}

	art := PhasePortraitToASCII(points, 10, 5)
	if lines := strings.Count(art, "\n"); lines != 5 {
		t.Errorf("expected 5 rows, got %d", lines)
	}
	if !strings.Contains(art, "o") {
		t.Error("expected the last point to be marked")
	}
	if PhasePortraitToASCII(nil, 10, 5) != "" {
		t.Error("expected empty drawing for no points")
	}
}

func symbiosis() sim.Scenario {
	return sim.Scenario{
		Name:         "symbiosis",
		Resources:    ecology.Quantities{"Oxygen": 10, "Glucose": 10},
		RefreshRates: ecology.Quantities{"Oxygen": 0, "Glucose": 0},
		Microbes: []ecology.Definition{
			{
				Name: "OxygenEater", Population: 1, GrowthRate: 1.2,
				Required: ecology.Quantities{"Oxygen": 1},
				Produced: ecology.Quantities{"Glucose": 1},
			},
			{
				Name: "GlucoseEater", Population: 1, GrowthRate: 1.2,
				Required: ecology.Quantities{"Glucose": 1},
				Produced: ecology.Quantities{"Oxygen": 1},
			},
		},
	}
}

func TestSummarizeResult(t *testing.T) {
	s, err := sim.New(symbiosis(), sim.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	s.StepN(20)

	sums := SummarizeResult(s.Result(false))
	// two populations, two capacities, two resources
	if len(sums) != 6 {
		t.Fatalf("expected 6 summaries, got %d", len(sums))
	}
	if sums[0].Kind != KindPopulation || sums[0].Series != "GlucoseEater" {
		t.Errorf("unexpected ordering: %+v", sums[0])
	}
	for _, sum := range sums {
		if sum.Min > sum.Max {
			t.Errorf("%s/%s: min above max", sum.Kind, sum.Series)
		}
	}
}

func TestBifurcationDiagram(t *testing.T) {
	rates := []float64{0.5, 1.0, 1.5}
	points, err := BifurcationDiagram(symbiosis(), "OxygenEater", rates, 20, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != len(rates) {
		t.Fatalf("expected %d points, got %d", len(rates), len(points))
	}
	for i, p := range points {
		if p.Param != rates[i] {
			t.Errorf("expected param %f, got %f", rates[i], p.Param)
		}
		for _, v := range p.Values {
			if v < 0 {
				t.Errorf("negative population %f at rate %f", v, p.Param)
			}
		}
	}

	if _, err := BifurcationDiagram(symbiosis(), "Nobody", rates, 1, 1); err == nil {
		t.Error("expected error for unknown microbe")
	}
}

func TestBifurcationToASCII(t *testing.T) {
	art := BifurcationToASCII([]BifurcationPoint{
		{Param: 1, Values: []float64{2}},
		{Param: 2, Values: []float64{1, 3}},
	}, 8, 4)
	if strings.Count(art, "•") != 3 {
		t.Errorf("expected 3 marks, got:\n%s", art)
	}
	if BifurcationToASCII(nil, 8, 4) != "" {
		t.Error("expected empty drawing for no data")
	}
}

func TestLyapunovExponent(t *testing.T) {
	lambda, err := LyapunovExponent(symbiosis(), "OxygenEater", 1e-6, 50)
	if err != nil {
		t.Fatal(err)
	}
	if math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		t.Errorf("expected a finite exponent, got %f", lambda)
	}

	if _, err := LyapunovExponent(symbiosis(), "OxygenEater", 0, 10); err == nil {
		t.Error("expected error for zero perturbation")
	}
	if _, err := LyapunovExponent(symbiosis(), "Nobody", 1e-6, 10); err == nil {
		t.Error("expected error for unknown microbe")
	}
}

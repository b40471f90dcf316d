package optim

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/san-kum/popsim/internal/ecology"
	"github.com/san-kum/popsim/internal/sim"
)

func oxygenOnly() sim.Scenario {
	return sim.Scenario{
		Name:         "oxygen_only",
		Resources:    ecology.Quantities{"Oxygen": 10},
		RefreshRates: ecology.Quantities{"Oxygen": 1},
		Microbes: []ecology.Definition{{
			Name: "A", Population: 2, GrowthRate: 1.2,
			Required: ecology.Quantities{"Oxygen": 1},
		}},
	}
}

func quiet() sim.Options {
	return sim.Options{Workers: 1, Logger: slog.New(slog.DiscardHandler)}
}

func TestParseParam(t *testing.T) {
	tests := []struct {
		in      string
		want    Param
		wantErr bool
	}{
		{"A.growth_rate", Param{"A", FieldGrowthRate}, false},
		{"Oxygen.Eater.population", Param{"Oxygen.Eater", FieldPopulation}, false},
		{"A", Param{}, true},
		{".population", Param{}, true},
		{"A.", Param{}, true},
		{"A.toxicity", Param{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseParam(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidParam) {
					t.Fatalf("expected ErrInvalidParam, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParam_Apply(t *testing.T) {
	base := oxygenOnly()

	sc, err := Param{"A", FieldGrowthRate}.Apply(base, 0.5)
	if err != nil {
		t.Fatal(err)
	}
	if sc.Microbes[0].GrowthRate != 0.5 {
		t.Errorf("growth rate = %v", sc.Microbes[0].GrowthRate)
	}
	if base.Microbes[0].GrowthRate != 1.2 {
		t.Error("Apply modified the base scenario")
	}

	if _, err := (Param{"B", FieldPopulation}).Apply(base, 1); !errors.Is(err, ErrInvalidParam) {
		t.Errorf("unknown microbe: got %v", err)
	}
}

func TestGridSearch_Points(t *testing.T) {
	g, err := NewGridSearch(
		[]Param{{"A", FieldGrowthRate}, {"A", FieldPopulation}},
		[][]float64{{1, 2}, {3, 4, 5}},
		quiet(),
	)
	if err != nil {
		t.Fatal(err)
	}

	pts := g.Points()
	if len(pts) != 6 {
		t.Fatalf("got %d points, want 6", len(pts))
	}
	if pts[0]["A.growth_rate"] != 1 || pts[0]["A.population"] != 3 {
		t.Errorf("first point = %v", pts[0])
	}
	if pts[1]["A.population"] != 4 {
		t.Errorf("last parameter should vary fastest, got %v", pts[1])
	}
}

func TestNewGridSearch_Invalid(t *testing.T) {
	if _, err := NewGridSearch(nil, nil, quiet()); err == nil {
		t.Error("expected error for no params")
	}
	if _, err := NewGridSearch([]Param{{"A", FieldPopulation}}, [][]float64{{}}, quiet()); err == nil {
		t.Error("expected error for empty range")
	}
}

func TestGridSearch_Search(t *testing.T) {
	g, err := NewGridSearch([]Param{{"A", FieldPopulation}}, [][]float64{{0, 2}}, quiet())
	if err != nil {
		t.Fatal(err)
	}

	res, err := g.Search(context.Background(), oxygenOnly(), "biomass", 20, true)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Points) != 2 {
		t.Fatalf("got %d points", len(res.Points))
	}
	if res.Points[0].Value != 0 {
		t.Errorf("an empty population should have zero biomass, got %v", res.Points[0].Value)
	}
	if res.Best.Params["A.population"] != 2 {
		t.Errorf("best = %+v", res.Best)
	}

	res, err = g.Search(context.Background(), oxygenOnly(), "biomass", 20, false)
	if err != nil {
		t.Fatal(err)
	}
	if res.Best.Params["A.population"] != 0 {
		t.Errorf("minimizing best = %+v", res.Best)
	}
}

func TestSweep_UnknownMetric(t *testing.T) {
	_, err := Sweep(context.Background(), oxygenOnly(), Param{"A", FieldGrowthRate}, []float64{1}, "nope", 10, true)
	if err == nil {
		t.Error("expected error for unknown metric")
	}
}

func TestSweep_Deterministic(t *testing.T) {
	values := []float64{0.5, 1.0, 1.5}
	p := Param{"A", FieldGrowthRate}

	a, err := Sweep(context.Background(), oxygenOnly(), p, values, "peak_biomass", 30, true)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Sweep(context.Background(), oxygenOnly(), p, values, "peak_biomass", 30, true)
	if err != nil {
		t.Fatal(err)
	}
	for i := range values {
		if a.Points[i].Value != b.Points[i].Value {
			t.Errorf("point %d differs: %v vs %v", i, a.Points[i].Value, b.Points[i].Value)
		}
	}
}

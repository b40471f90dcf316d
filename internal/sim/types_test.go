package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/popsim/internal/ecology"
)

func TestScenario_CloneIsIndependent(t *testing.T) {
	sc := classicScenario()
	c := sc.Clone()

	c.Resources["Oxygen"] = 99
	c.Microbes[0].Required["Oxygen"] = 42
	c.Microbes[0].Toxins["Lead"] = ecology.Toxin{}

	if sc.Resources["Oxygen"] == 99 {
		t.Error("resources shared with clone")
	}
	if sc.Microbes[0].Required["Oxygen"] == 42 {
		t.Error("required map shared with clone")
	}
	if sc.Microbes[0].Toxins["Lead"].LethalDensity == 0 {
		t.Error("toxin map shared with clone")
	}
}

func TestSnapshot_TotalPopulation(t *testing.T) {
	s := Snapshot{Populations: map[string]float64{"a": 1.5, "b": 2.5}}
	if got := s.TotalPopulation(); got != 4 {
		t.Errorf("TotalPopulation() = %v, want 4", got)
	}
}

func TestStepError(t *testing.T) {
	err := &StepError{Tick: 12, Wrapped: context.Canceled}
	if err.Error() != "tick 12: context canceled" {
		t.Errorf("Error() = %q", err.Error())
	}
	if !errors.Is(err, context.Canceled) {
		t.Error("StepError should unwrap")
	}
}

func TestDefaultOptions(t *testing.T) {
	if DefaultOptions().Workers != 1 {
		t.Error("DefaultOptions should evaluate serially")
	}
}

package ecology

import (
	"errors"
	"math"
	"testing"
)

func TestNewEnvironment_Validation(t *testing.T) {
	tests := []struct {
		name     string
		quantity Quantities
		refresh  Quantities
		wantErr  error
	}{
		{"valid", Quantities{"Oxygen": 10}, Quantities{"Oxygen": 0}, nil},
		{"extra refresh ok", Quantities{"Oxygen": 10}, Quantities{"Oxygen": 0, "Lead": 1}, nil},
		{"missing refresh", Quantities{"Oxygen": 10}, Quantities{}, ErrMissingRefreshRate},
		{"negative quantity", Quantities{"Oxygen": -1}, Quantities{"Oxygen": 0}, ErrNegativeQuantity},
		{"empty", Quantities{}, Quantities{}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEnvironment(tt.quantity, tt.refresh)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want %v", err, tt.wantErr)
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigError, got %T", err)
			}
		})
	}
}

func TestEnvironment_ApplyFluxAdoptsUnknown(t *testing.T) {
	env, err := NewEnvironment(Quantities{"Oxygen": 10}, Quantities{"Oxygen": 0})
	if err != nil {
		t.Fatal(err)
	}

	env.ApplyFlux(Flux{"Oxygen": -2, "Glucose": 3})

	if got := env.Quantity("Oxygen"); got != 8 {
		t.Errorf("Oxygen = %v, want 8", got)
	}
	if got := env.Quantity("Glucose"); got != 3 {
		t.Errorf("Glucose = %v, want 3", got)
	}
	if len(env.Resources()) != 2 {
		t.Errorf("expected 2 tracked resources, got %v", env.Resources())
	}
}

func TestEnvironment_AdvanceLogsPreRefreshAndClamps(t *testing.T) {
	env, err := NewEnvironment(
		Quantities{"Oxygen": 5, "Lead": 1},
		Quantities{"Oxygen": -8, "Lead": 1},
	)
	if err != nil {
		t.Fatal(err)
	}

	env.Advance()

	if got := env.History("Oxygen"); len(got) != 1 || got[0] != 5 {
		t.Errorf("Oxygen history = %v, want [5]", got)
	}
	if got := env.Quantity("Oxygen"); got != 0 {
		t.Errorf("Oxygen = %v, want clamp to 0", got)
	}
	if got := env.Quantity("Lead"); got != 2 {
		t.Errorf("Lead = %v, want 2", got)
	}
	if env.Ticks() != 1 {
		t.Errorf("Ticks = %d, want 1", env.Ticks())
	}
}

func TestEnvironment_BackfillsLateResources(t *testing.T) {
	env, err := NewEnvironment(Quantities{"Oxygen": 1}, Quantities{"Oxygen": 0})
	if err != nil {
		t.Fatal(err)
	}

	env.Advance()
	env.Advance()
	env.ApplyFlux(Flux{"Glucose": 4})
	env.Advance()

	glucose := env.History("Glucose")
	want := []float64{0, 0, 4}
	if len(glucose) != len(want) {
		t.Fatalf("Glucose history = %v, want %v", glucose, want)
	}
	for i := range want {
		if glucose[i] != want[i] {
			t.Errorf("Glucose[%d] = %v, want %v", i, glucose[i], want[i])
		}
	}

	for r, h := range env.Histories() {
		if len(h) != env.Ticks() {
			t.Errorf("history of %s has %d entries, want %d", r, len(h), env.Ticks())
		}
	}
}

func TestEnvironment_Exhausted(t *testing.T) {
	tests := []struct {
		name string
		q    Quantities
		want bool
	}{
		{"no resources", Quantities{}, true},
		{"all zero", Quantities{"a": 0, "b": 0}, true},
		{"one positive", Quantities{"a": 0, "b": 0.1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			refresh := Quantities{}
			for k := range tt.q {
				refresh[k] = 0
			}
			env, err := NewEnvironment(tt.q, refresh)
			if err != nil {
				t.Fatal(err)
			}
			if got := env.Exhausted(); got != tt.want {
				t.Errorf("Exhausted() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnvironment_InjectAndRefreshEdits(t *testing.T) {
	env, err := NewEnvironment(Quantities{"Oxygen": 1}, Quantities{"Oxygen": 0})
	if err != nil {
		t.Fatal(err)
	}

	if err := env.Inject("Oxygen", -5); err != nil {
		t.Fatal(err)
	}
	if got := env.Quantity("Oxygen"); got != 0 {
		t.Errorf("Inject should clamp, got %v", got)
	}

	if err := env.SetRefreshRate("Nitrate", 2); err != nil {
		t.Fatal(err)
	}
	if got := env.Quantity("Nitrate"); got != 0 {
		t.Errorf("new resource should start at 0, got %v", got)
	}
	env.Advance()
	if got := env.Quantity("Nitrate"); got != 2 {
		t.Errorf("Nitrate = %v, want 2", got)
	}
}

func TestEnvironment_RejectsNonFiniteEdits(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Environment) error
	}{
		{"inject NaN", func(e *Environment) error { return e.Inject("Oxygen", math.NaN()) }},
		{"inject +Inf", func(e *Environment) error { return e.Inject("Oxygen", math.Inf(1)) }},
		{"inject -Inf", func(e *Environment) error { return e.Inject("Oxygen", math.Inf(-1)) }},
		{"refresh NaN", func(e *Environment) error { return e.SetRefreshRate("Oxygen", math.NaN()) }},
		{"refresh +Inf", func(e *Environment) error { return e.SetRefreshRate("Nitrate", math.Inf(1)) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := NewEnvironment(Quantities{"Oxygen": 4}, Quantities{"Oxygen": 1})
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.edit(env); !errors.Is(err, ErrNonFinite) {
				t.Fatalf("expected ErrNonFinite, got %v", err)
			}
			if env.Quantity("Oxygen") != 4 || env.RefreshRate("Oxygen") != 1 {
				t.Errorf("rejected edit changed the pool: oxygen %v refresh %v",
					env.Quantity("Oxygen"), env.RefreshRate("Oxygen"))
			}
			if len(env.Resources()) != 1 {
				t.Errorf("rejected edit added a resource: %v", env.Resources())
			}
		})
	}
}

func TestEnvironment_SnapshotIsCopy(t *testing.T) {
	env, err := NewEnvironment(Quantities{"Oxygen": 1}, Quantities{"Oxygen": 0})
	if err != nil {
		t.Fatal(err)
	}
	snap := env.Snapshot()
	snap["Oxygen"] = 99
	if env.Quantity("Oxygen") != 1 {
		t.Error("Snapshot did not create independent copy")
	}
}

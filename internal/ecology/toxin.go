package ecology

import "math"

// Toxin describes how the concentration of one resource affects one species.
// A resource is harmless inside [MinSafeDensity, MaxSafeDensity], lethal at or
// above LethalDensity, and penalized linearly in between and below the band.
type Toxin struct {
	Toxicity       float64 `json:"toxicity" yaml:"toxicity"`
	MinSafeDensity float64 `json:"min_safe_density" yaml:"min_safe_density"`
	MaxSafeDensity float64 `json:"max_safe_density" yaml:"max_safe_density"`
	LethalDensity  float64 `json:"lethal_density" yaml:"lethal_density"`
}

// NewToxin returns a validated toxin profile.
func NewToxin(toxicity, minSafe, maxSafe, lethal float64) (Toxin, error) {
	t := Toxin{
		Toxicity:       toxicity,
		MinSafeDensity: minSafe,
		MaxSafeDensity: maxSafe,
		LethalDensity:  lethal,
	}
	if err := t.Validate(); err != nil {
		return Toxin{}, err
	}
	return t, nil
}

// Validate checks toxicity >= 0 and 0 <= min <= max <= lethal.
func (t Toxin) Validate() error {
	vals := []float64{t.Toxicity, t.MinSafeDensity, t.MaxSafeDensity, t.LethalDensity}
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrInvalidToxin
		}
	}
	if t.Toxicity < 0 || t.MinSafeDensity < 0 {
		return ErrInvalidToxin
	}
	if t.MinSafeDensity > t.MaxSafeDensity || t.MaxSafeDensity > t.LethalDensity {
		return ErrInvalidToxin
	}
	return nil
}

// Density is the toxicity-weighted share of the resource in the pool.
func (t Toxin) Density(quantity, total float64) float64 {
	return t.Toxicity * quantity / total
}

// Penalty maps a weighted density to a multiplier in [0,1].
func (t Toxin) Penalty(d float64) float64 {
	switch {
	case d >= t.MinSafeDensity && d <= t.MaxSafeDensity:
		return 1
	case d >= t.LethalDensity:
		return 0
	case d > t.MaxSafeDensity:
		// decreasing ramp: 1 at MaxSafeDensity, 0 at LethalDensity
		return (d - t.LethalDensity) / (t.MaxSafeDensity - t.LethalDensity)
	case d <= 0 || t.MinSafeDensity <= 0:
		return 0
	default:
		return d / t.MinSafeDensity
	}
}

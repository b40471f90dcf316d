package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// PowerSpectrum returns the magnitude of every non-negative frequency bin of
// data after removing its mean. Bin k corresponds to a period of len(data)/k.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return nil
	}

	mean := stat.Mean(data, nil)
	centered := make([]float64, n)
	for i, v := range data {
		centered[i] = v - mean
	}

	coeff := fourier.NewFFT(n).Coefficients(nil, centered)
	ps := make([]float64, len(coeff))
	for i, c := range coeff {
		ps[i] = cmplx.Abs(c)
	}
	return ps
}

// DominantPeriod returns the period in ticks of the strongest oscillation in
// data, or 0 when the series is too short or flat.
func DominantPeriod(data []float64) float64 {
	if len(data) < 4 {
		return 0
	}
	ps := PowerSpectrum(data)

	best, bestPower := 0, 1e-9
	for k := 1; k < len(ps); k++ {
		if ps[k] > bestPower {
			best, bestPower = k, ps[k]
		}
	}
	if best == 0 {
		return 0
	}
	return float64(len(data)) / float64(best)
}

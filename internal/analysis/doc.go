// Package analysis summarizes and characterizes simulation histories.
//
//   - [MovingAverage]: window smoothing of a series ("valid" mode)
//   - [Summarize], [SummarizeResult]: mean, spread, extremes and final value
//   - [PowerSpectrum], [DominantPeriod]: oscillation period of a series
//   - [PhasePortrait]: one series against another, e.g. two populations
//   - [BifurcationDiagram]: long-run population levels over a growth-rate sweep
//   - [LyapunovExponent]: sensitivity of a scenario to its initial population
//
// # Oscillation
//
// Symbiotic pairs tend to settle into cycles. The dominant period of a
// population history reveals the cycle length in ticks:
//
//	levels, _ := s.LevelHistory("OxygenEater")
//	period := analysis.DominantPeriod(levels)
//	if period > 0 {
//	    // population cycles roughly every period ticks
//	}
package analysis

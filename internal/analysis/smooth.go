package analysis

// MovingAverage returns the means of every full window of data. The result
// has len(data)-window+1 entries; it is nil when the window does not fit.
func MovingAverage(data []float64, window int) []float64 {
	if window <= 0 || window > len(data) {
		return nil
	}

	out := make([]float64, 0, len(data)-window+1)
	sum := 0.0
	for i, v := range data {
		sum += v
		if i >= window {
			sum -= data[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

package viz

import (
	"strings"

	"github.com/guptarohit/asciigraph"
)

// ChartOptions sizes a chart. Zero values fall back to 60x12.
type ChartOptions struct {
	Width   int
	Height  int
	Caption string
	// Window keeps only the last Window ticks; 0 keeps everything.
	Window int
}

// RenderChart plots several histories on one set of axes with a legend.
// Empty histories are skipped; with none left it returns "".
func RenderChart(names []string, data [][]float64, opts ChartOptions) string {
	if opts.Width <= 0 {
		opts.Width = 60
	}
	if opts.Height <= 0 {
		opts.Height = 12
	}

	var keptNames []string
	var kept [][]float64
	for i, d := range data {
		if len(d) == 0 {
			continue
		}
		if opts.Window > 0 && len(d) > opts.Window {
			d = d[len(d)-opts.Window:]
		}
		kept = append(kept, d)
		if i < len(names) {
			keptNames = append(keptNames, names[i])
		} else {
			keptNames = append(keptNames, "")
		}
	}
	if len(kept) == 0 {
		return ""
	}

	options := []asciigraph.Option{
		asciigraph.Width(opts.Width),
		asciigraph.Height(opts.Height),
		asciigraph.SeriesColors(seriesColors(len(kept))...),
		asciigraph.SeriesLegends(keptNames...),
	}
	if opts.Caption != "" {
		options = append(options, asciigraph.Caption(opts.Caption))
	}
	return asciigraph.PlotMany(kept, options...)
}

// RenderPhase draws ys against xs on a Braille canvas of width x height
// cells, joining consecutive points.
func RenderPhase(xs, ys []float64, width, height int) string {
	n := min(len(xs), len(ys))
	if n == 0 || width <= 0 || height <= 0 {
		return ""
	}

	minX, maxX := bounds(xs[:n])
	minY, maxY := bounds(ys[:n])
	if maxX == minX {
		maxX = minX + 1
	}
	if maxY == minY {
		maxY = minY + 1
	}

	c := NewCanvas(width, height)
	pw, ph := width*2-1, height*4-1
	project := func(i int) (int, int) {
		px := int((xs[i] - minX) / (maxX - minX) * float64(pw))
		py := ph - int((ys[i]-minY)/(maxY-minY)*float64(ph))
		return px, py
	}

	x0, y0 := project(0)
	c.Set(x0, y0)
	for i := 1; i < n; i++ {
		x1, y1 := project(i)
		c.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}
	return strings.TrimRight(c.String(), "\n")
}

func bounds(v []float64) (lo, hi float64) {
	lo, hi = v[0], v[0]
	for _, x := range v {
		lo = min(lo, x)
		hi = max(hi, x)
	}
	return lo, hi
}

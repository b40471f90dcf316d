// Package export renders run histories as standalone SVG documents.
package export

import (
	"fmt"
	"html"
	"math"
	"strings"
)

// Palette colors series in order, wrapping around.
var Palette = []string{"#00cccc", "#ff88ff", "#ffcc66", "#00ff88", "#ff4444", "#4488ff"}

const (
	background = "#0a0a0a"
	axisColor  = "#666688"
	margin     = 40.0
	legendRow  = 16.0
)

type frame struct {
	minX, maxX, minY, maxY float64
	width, height          float64
}

func newFrame(minX, maxX, minY, maxY float64, width, height int) frame {
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	return frame{
		minX: minX, maxX: minX + rangeX,
		minY: minY, maxY: maxY,
		width: float64(width), height: float64(height),
	}
}

func (f frame) x(v float64) float64 {
	return margin + (v-f.minX)/(f.maxX-f.minX)*(f.width-2*margin)
}

func (f frame) y(v float64) float64 {
	return f.height - margin - (v-f.minY)/(f.maxY-f.minY)*(f.height-2*margin)
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

func axes(sb *strings.Builder, f frame, xLabel, yLabel string) {
	x0, y0 := margin, f.height-margin
	sb.WriteString(fmt.Sprintf(`<g stroke="%s" stroke-width="1">
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f"/>
</g>
`, axisColor, x0, y0, f.width-margin, y0, x0, y0, x0, margin))
	sb.WriteString(fmt.Sprintf(`<g fill="%s" font-family="monospace" font-size="11">
<text x="%.1f" y="%.1f">%s</text>
<text x="%.1f" y="%.1f">%s</text>
<text x="4" y="%.1f">%.3g</text>
<text x="4" y="%.1f">%.3g</text>
</g>
`, axisColor,
		f.width-margin-60, f.height-margin/3, html.EscapeString(xLabel),
		4.0, margin/2, html.EscapeString(yLabel),
		f.y(f.maxY), f.maxY,
		f.y(f.minY), f.minY))
}

func polyline(sb *strings.Builder, f frame, xs, ys []float64, color string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))
	drawing := false
	for i := range ys {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			drawing = false
			continue
		}
		cmd := "L"
		if !drawing {
			cmd = "M"
			drawing = true
		}
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", cmd, f.x(xs[i]), f.y(ys[i])))
	}
	sb.WriteString("\"/>\n")
}

// HistoryToSVG draws every series against the tick index. Non-finite values
// break the line. It returns "" when no series has data.
func HistoryToSVG(names []string, data [][]float64, width, height int, title string) string {
	longest := 0
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, d := range data {
		longest = max(longest, len(d))
		for _, v := range d {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if longest == 0 || math.IsInf(minY, 1) {
		return ""
	}

	f := newFrame(1, float64(longest), minY, maxY, width, height)

	var sb strings.Builder
	header(&sb, width, height)
	axes(&sb, f, "tick", title)

	for i, d := range data {
		xs := make([]float64, len(d))
		for t := range xs {
			xs[t] = float64(t + 1)
		}
		polyline(&sb, f, xs, d, Palette[i%len(Palette)])
	}

	sb.WriteString(`<g font-family="monospace" font-size="11">` + "\n")
	for i, name := range names {
		if i >= len(data) {
			break
		}
		sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%.1f" fill="%s">%s</text>
`, f.width-margin-120, margin+float64(i)*legendRow, Palette[i%len(Palette)], html.EscapeString(name)))
	}
	sb.WriteString("</g>\n</svg>\n")
	return sb.String()
}

// PhaseToSVG draws ys against xs as one trajectory, marking the final state.
func PhaseToSVG(xs, ys []float64, width, height int, xLabel, yLabel string) string {
	n := min(len(xs), len(ys))
	if n < 2 {
		return ""
	}
	xs, ys = xs[:n], ys[:n]

	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := 0; i < n; i++ {
		minX, maxX = math.Min(minX, xs[i]), math.Max(maxX, xs[i])
		minY, maxY = math.Min(minY, ys[i]), math.Max(maxY, ys[i])
	}
	f := newFrame(minX, maxX, minY, maxY, width, height)

	var sb strings.Builder
	header(&sb, width, height)
	axes(&sb, f, xLabel, yLabel)
	polyline(&sb, f, xs, ys, Palette[0])
	sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="3" fill="%s"/>
</svg>
`, f.x(xs[n-1]), f.y(ys[n-1]), Palette[1]))
	return sb.String()
}

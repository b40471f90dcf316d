package viz

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/san-kum/popsim/internal/sim"
)

const (
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// Watcher redraws a population chart as ticks are committed, at most
// frameRate times per second. It implements sim.Observer.
type Watcher struct {
	out       io.Writer
	frameRate int
	lastFrame time.Time
	names     []string
	history   map[string][]float64
	ticks     int
}

func NewWatcher(out io.Writer, frameRate int) *Watcher {
	if frameRate <= 0 {
		frameRate = 20
	}
	return &Watcher{out: out, frameRate: frameRate, history: make(map[string][]float64)}
}

func (w *Watcher) OnTick(s sim.Snapshot) {
	if w.names == nil {
		for name := range s.Populations {
			w.names = append(w.names, name)
		}
		sort.Strings(w.names)
	}
	for _, name := range w.names {
		w.history[name] = append(w.history[name], s.Populations[name])
	}
	w.ticks = s.Tick

	if time.Since(w.lastFrame) < time.Second/time.Duration(w.frameRate) {
		return
	}
	w.lastFrame = time.Now()
	w.render(s)
}

func (w *Watcher) render(s sim.Snapshot) {
	data := make([][]float64, len(w.names))
	for i, name := range w.names {
		data[i] = w.history[name]
	}

	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(RenderChart(w.names, data, ChartOptions{Width: 70, Height: 15, Window: chartWindow, Caption: "populations"}))
	b.WriteString(fmt.Sprintf("\n\n tick %d   total %.3f\n", w.ticks, s.TotalPopulation()))
	fmt.Fprint(w.out, b.String())
}

// Flush draws the last observed state regardless of the frame limit.
func (w *Watcher) Flush(s sim.Snapshot) {
	if len(w.names) == 0 {
		return
	}
	w.render(s)
}

func (w *Watcher) Start() { fmt.Fprint(w.out, hideCursor) }
func (w *Watcher) Stop()  { fmt.Fprint(w.out, showCursor) }

// Package viz provides terminal views of a running population simulation.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: steps one simulator and charts its histories
//   - [NewApp]: preset picker in front of a [Model]
//   - [Canvas]: Braille-based pixel canvas used for phase plots
//   - [Watcher]: frame-limited observer for non-interactive runs
//
// # Key Bindings
//
//	Space/N - Step one tick
//	F       - Fast forward
//	P       - Toggle autoplay
//	R       - Reset to the initial scenario
//	Tab     - Cycle populations, capacity, resources and phase views
//	←/→     - Select a series
//	+/-     - Inject or remove one unit of the selected resource, or
//	          raise or lower the selected population by one
//	T       - Cycle color themes
//	?       - Show help overlay
package viz

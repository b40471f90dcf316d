// Package control closes a feedback loop around a running simulator.
//
// A [Controller] maps a measured population to a resource refresh rate:
//
//   - [PID]: proportional-integral-derivative on the population error
//   - [Manual]: a fixed rate, changed by hand
//
// [Dosing] is a sim.Observer that feeds one microbe's population to a
// controller after every tick and writes the result as the refresh rate of
// one resource, like a chemostat pump.
//
//	pid := control.NewPID(0.5, 0.01, 0.1, 40)
//	d, _ := control.NewDosing(s, "A", "Oxygen", pid, 20)
//	s.AddObserver(d)
package control

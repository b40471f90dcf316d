// Package ecology provides the resource and population primitives of a
// well-mixed microbial community.
//
// The package defines the engine types advanced by the simulator:
//
//   - [Environment]: shared resource ledger with refresh rates and history
//   - [Toxin]: toxicity curve of one resource for one species
//   - [Microbe]: a species population with growth, competition and flux math
//
// All per-tick math is exposed as pure functions of a tick-start snapshot
// ([Competition], [Microbe.Evaluate]) so that a tick can be computed from a
// consistent state and committed afterwards.
//
// # Example
//
//	env, _ := ecology.NewEnvironment(
//		ecology.Quantities{"Oxygen": 10},
//		ecology.Quantities{"Oxygen": 0},
//	)
//	m, _ := ecology.NewMicrobe(ecology.Definition{
//		Name: "A", Population: 2, GrowthRate: 1.2,
//		Required: ecology.Quantities{"Oxygen": 1},
//	})
//	eval := m.Evaluate(env.Snapshot(), nil)
//	m.Commit(eval)
//
// # Thread Safety
//
// Environment and Microbe are NOT thread-safe. Evaluate only reads its
// receiver and arguments, so evaluations of distinct microbes may run in
// parallel against the same snapshot.
package ecology

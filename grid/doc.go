// SPDX-License-Identifier: MIT

// Package grid models a transmission network for DC load-flow studies:
// buses, branches, generators and the per-scenario load vector.
//
// A Network is immutable once NewNetwork returns. Buses keep their input
// order and are addressed through a dense index (bus id → row), which is the
// same index used by the susceptance matrix and by Loads.
//
// Scenarios share one Network and own a Loads value each:
//
//	net := grid.Case9()
//	loads := net.Loads()             // fresh copy of the base demand
//	_ = loads.Add(net, 5, 50, 20)    // +50 MW / 20 MVAr at bus 5
//
// Only the load vector is cloned per candidate, so any number of
// evaluations can run concurrently against the same topology.
//
// Errors:
//
//	ErrDuplicateBus         - two buses share an id.
//	ErrUnknownBusReference  - branch, generator or load references a missing bus.
//	ErrInvalidBaseMVA       - base power is not strictly positive.
//	ErrNoSlackBus           - no bus of type Slack.
//	ErrInvalidPowerFactor   - power factor outside (0, 1].
package grid

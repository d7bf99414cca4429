// SPDX-License-Identifier: MIT

// Package topology holds the connectivity view of a grid.Network: an
// undirected bus graph with one edge per modeled branch, plus a
// breadth-first walker used to find electrical islands.
//
// A DC system is solvable only when every bus is connected to the slack
// bus through branches with non-zero reactance. Islands reports the
// connected components in a deterministic order (each component sorted by
// bus id, components ordered by their smallest id), so a solver can name
// the buses that make the susceptance matrix singular.
//
// Bridges lists the radial branches whose outage would split an island, and
// ElectricalDistances measures how far each bus sits from a source in
// accumulated series reactance. Both are reported next to placement results
// so a recommended bus can be read against the network's structure.
//
// Graph is safe for concurrent use; the walker reads it under a read lock.
package topology

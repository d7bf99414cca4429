// SPDX-License-Identifier: MIT

package topology

import (
	"errors"
	"sort"
	"sync"

	"github.com/katalvlaran/gridload/grid"
)

// Sentinel errors for graph queries and traversal.
var (
	// ErrGraphNil is returned when a nil graph is passed.
	ErrGraphNil = errors.New("topology: graph is nil")

	// ErrBusNotFound is returned when a query names an absent bus.
	ErrBusNotFound = errors.New("topology: bus not found")

	// ErrOptionViolation is returned when an invalid Option is supplied.
	ErrOptionViolation = errors.New("topology: invalid option supplied")
)

// Graph is an undirected multigraph over bus ids. Parallel branches are
// counted, self-loops are ignored.
type Graph struct {
	muBus sync.RWMutex
	buses map[int]struct{}

	muAdj sync.RWMutex
	adj   map[int]map[int]int // adj[u][v] = number of parallel branches
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		buses: make(map[int]struct{}),
		adj:   make(map[int]map[int]int),
	}
}

// FromNetwork builds the connectivity graph of net: every bus becomes a
// vertex and every in-service branch with non-zero reactance an edge.
func FromNetwork(net *grid.Network) *Graph {
	g := NewGraph()
	for _, b := range net.Buses() {
		g.AddBus(b.ID)
	}
	for _, br := range net.Branches() {
		if br.Modeled() {
			g.AddEdge(br.From, br.To)
		}
	}

	return g
}

// AddBus inserts id; repeated calls are no-ops.
func (g *Graph) AddBus(id int) {
	g.muBus.Lock()
	defer g.muBus.Unlock()
	g.buses[id] = struct{}{}
}

// AddEdge connects u and v, adding either bus if needed.
func (g *Graph) AddEdge(u, v int) {
	g.AddBus(u)
	g.AddBus(v)
	if u == v {
		return
	}

	g.muAdj.Lock()
	defer g.muAdj.Unlock()
	for _, p := range [2][2]int{{u, v}, {v, u}} {
		row, ok := g.adj[p[0]]
		if !ok {
			row = make(map[int]int)
			g.adj[p[0]] = row
		}
		row[p[1]]++
	}
}

// HasBus reports whether id is a vertex.
func (g *Graph) HasBus(id int) bool {
	g.muBus.RLock()
	defer g.muBus.RUnlock()
	_, ok := g.buses[id]

	return ok
}

// Buses returns all bus ids in ascending order.
func (g *Graph) Buses() []int {
	g.muBus.RLock()
	defer g.muBus.RUnlock()
	ids := make([]int, 0, len(g.buses))
	for id := range g.buses {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	return ids
}

// Neighbors returns the distinct neighbours of id in ascending order.
func (g *Graph) Neighbors(id int) ([]int, error) {
	if !g.HasBus(id) {
		return nil, ErrBusNotFound
	}

	g.muAdj.RLock()
	defer g.muAdj.RUnlock()
	row := g.adj[id]
	out := make([]int, 0, len(row))
	for v := range row {
		out = append(out, v)
	}
	sort.Ints(out)

	return out, nil
}

// Degree returns the number of branch ends at id, parallel branches included.
func (g *Graph) Degree(id int) int {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()
	var d int
	for _, c := range g.adj[id] {
		d += c
	}

	return d
}

// multiplicity returns the number of parallel branches between u and v.
func (g *Graph) multiplicity(u, v int) int {
	g.muAdj.RLock()
	defer g.muAdj.RUnlock()

	return g.adj[u][v]
}

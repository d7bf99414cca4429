// SPDX-License-Identifier: MIT

package grid

import (
	"fmt"
	"math"
)

// Network is an immutable transmission network. Buses keep their input
// order; Index maps a bus id to its dense position in that order.
type Network struct {
	baseMVA  float64
	buses    []Bus
	branches []Branch
	gens     []Generator
	index    map[int]int
}

// NewNetwork validates the inputs and returns an immutable Network.
// A baseMVA of zero selects DefaultBaseMVA.
//
// Returns ErrDuplicateBus, ErrUnknownBusReference (wrapped with the offending
// id) or ErrInvalidBaseMVA. Slack presence is not checked here; callers that
// need a reference bus use SlackIndex.
func NewNetwork(buses []Bus, branches []Branch, gens []Generator, baseMVA float64) (*Network, error) {
	if baseMVA == 0 {
		baseMVA = DefaultBaseMVA
	}
	if baseMVA < 0 || math.IsNaN(baseMVA) || math.IsInf(baseMVA, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseMVA, baseMVA)
	}

	index := make(map[int]int, len(buses))
	for i, b := range buses {
		if _, dup := index[b.ID]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateBus, b.ID)
		}
		index[b.ID] = i
	}
	for k, br := range branches {
		for _, id := range [2]int{br.From, br.To} {
			if _, ok := index[id]; !ok {
				return nil, fmt.Errorf("%w: branch %d references bus %d", ErrUnknownBusReference, k, id)
			}
		}
	}
	for k, g := range gens {
		if _, ok := index[g.Bus]; !ok {
			return nil, fmt.Errorf("%w: generator %d references bus %d", ErrUnknownBusReference, k, g.Bus)
		}
	}

	return &Network{
		baseMVA:  baseMVA,
		buses:    append([]Bus(nil), buses...),
		branches: append([]Branch(nil), branches...),
		gens:     append([]Generator(nil), gens...),
		index:    index,
	}, nil
}

// BaseMVA returns the system base power.
func (n *Network) BaseMVA() float64 { return n.baseMVA }

// NumBuses returns the number of buses.
func (n *Network) NumBuses() int { return len(n.buses) }

// NumBranches returns the number of branches, including those out of service.
func (n *Network) NumBranches() int { return len(n.branches) }

// Buses returns a copy of the buses in input order.
func (n *Network) Buses() []Bus { return append([]Bus(nil), n.buses...) }

// Branches returns a copy of the branches in input order.
func (n *Network) Branches() []Branch { return append([]Branch(nil), n.branches...) }

// Generators returns a copy of the generators in input order.
func (n *Network) Generators() []Generator { return append([]Generator(nil), n.gens...) }

// Index returns the dense position of bus id.
func (n *Network) Index(id int) (int, bool) {
	i, ok := n.index[id]

	return i, ok
}

// Bus returns the bus with the given id.
func (n *Network) Bus(id int) (Bus, bool) {
	i, ok := n.index[id]
	if !ok {
		return Bus{}, false
	}

	return n.buses[i], true
}

// BusAt returns the bus at dense position i.
func (n *Network) BusAt(i int) Bus { return n.buses[i] }

// BranchAt returns branch k.
func (n *Network) BranchAt(k int) Branch { return n.branches[k] }

// SlackIndex returns the dense position of the reference bus. When several
// buses are typed Slack the first one in input order is used.
func (n *Network) SlackIndex() (int, error) {
	for i, b := range n.buses {
		if b.Type == Slack {
			return i, nil
		}
	}

	return -1, ErrNoSlackBus
}

// ScheduledGeneration returns the in-service generator output per bus (MW),
// indexed like the buses.
func (n *Network) ScheduledGeneration() []float64 {
	pg := make([]float64, len(n.buses))
	for _, g := range n.gens {
		if !g.InService {
			continue
		}
		pg[n.index[g.Bus]] += g.PgMW
	}

	return pg
}

// TotalCapacityMW sums Pmax over in-service generators.
func (n *Network) TotalCapacityMW() float64 {
	var total float64
	for _, g := range n.gens {
		if g.InService {
			total += g.PMaxMW
		}
	}

	return total
}

// Loads returns a fresh load vector holding the base demand of every bus.
func (n *Network) Loads() Loads {
	l := Loads{
		P: make([]float64, len(n.buses)),
		Q: make([]float64, len(n.buses)),
	}
	for i, b := range n.buses {
		l.P[i] = b.PdMW
		l.Q[i] = b.QdMVAr
	}

	return l
}

// Clone returns a deep copy. Networks are never mutated, so Clone is only
// needed when a caller wants to derive a modified network via NewNetwork.
func (n *Network) Clone() *Network {
	index := make(map[int]int, len(n.index))
	for id, i := range n.index {
		index[id] = i
	}

	return &Network{
		baseMVA:  n.baseMVA,
		buses:    n.Buses(),
		branches: n.Branches(),
		gens:     n.Generators(),
		index:    index,
	}
}

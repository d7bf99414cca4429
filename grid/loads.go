// SPDX-License-Identifier: MIT

package grid

import (
	"fmt"
	"math"
)

// Loads is the per-scenario demand vector, indexed like Network buses.
// Each evaluation owns its Loads; the Network is shared.
type Loads struct {
	P []float64 // MW
	Q []float64 // MVAr
}

// Clone returns an independent copy.
func (l Loads) Clone() Loads {
	return Loads{
		P: append([]float64(nil), l.P...),
		Q: append([]float64(nil), l.Q...),
	}
}

// Add superimposes inc on the existing demand at busID.
func (l Loads) Add(net *Network, busID int, inc Increment) error {
	i, ok := net.Index(busID)
	if !ok {
		return fmt.Errorf("%w: load at bus %d", ErrUnknownBusReference, busID)
	}
	l.P[i] += inc.MW
	if i < len(l.Q) {
		l.Q[i] += inc.MVAr
	}

	return nil
}

// TotalMW returns total active demand.
func (l Loads) TotalMW() float64 {
	var s float64
	for _, p := range l.P {
		s += p
	}

	return s
}

// TotalMVAr returns total reactive demand.
func (l Loads) TotalMVAr() float64 {
	var s float64
	for _, q := range l.Q {
		s += q
	}

	return s
}

// IncrementFromApparent converts an apparent power and power factor into an
// Increment: MW = S·pf and MVAr = S·sin(acos pf).
func IncrementFromApparent(mva, pf float64) (Increment, error) {
	if !(pf > 0 && pf <= 1) {
		return Increment{}, fmt.Errorf("%w: %v", ErrInvalidPowerFactor, pf)
	}

	return Increment{
		MW:   mva * pf,
		MVAr: mva * math.Sin(math.Acos(pf)),
	}, nil
}

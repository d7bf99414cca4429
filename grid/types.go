// SPDX-License-Identifier: MIT

package grid

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for network construction and scenario editing.
var (
	// ErrDuplicateBus indicates two buses were declared with the same id.
	ErrDuplicateBus = errors.New("grid: duplicate bus id")

	// ErrUnknownBusReference indicates a branch, generator or load names a bus
	// that is not part of the network.
	ErrUnknownBusReference = errors.New("grid: unknown bus reference")

	// ErrInvalidBaseMVA indicates a non-positive system base.
	ErrInvalidBaseMVA = errors.New("grid: base MVA must be positive")

	// ErrNoSlackBus indicates the network has no reference bus.
	ErrNoSlackBus = errors.New("grid: no slack bus")

	// ErrInvalidPowerFactor indicates a power factor outside (0, 1].
	ErrInvalidPowerFactor = errors.New("grid: power factor must be in (0, 1]")
)

// DefaultBaseMVA is the system base used when none is given.
const DefaultBaseMVA = 100.0

// BusType classifies a bus. Values follow the MATPOWER numbering.
type BusType int

const (
	// PQ is a load bus.
	PQ BusType = 1
	// PV is a generator bus with regulated voltage.
	PV BusType = 2
	// Slack is the angle reference bus that balances the system.
	Slack BusType = 3
)

// String returns the conventional short name of the bus type.
func (t BusType) String() string {
	switch t {
	case PQ:
		return "PQ"
	case PV:
		return "PV"
	case Slack:
		return "Slack"
	default:
		return fmt.Sprintf("BusType(%d)", int(t))
	}
}

// ParseBusType maps "pq", "pv", "slack" or "ref" (any case) to a BusType.
func ParseBusType(s string) (BusType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pq":
		return PQ, nil
	case "pv":
		return PV, nil
	case "slack", "ref":
		return Slack, nil
	}

	return 0, fmt.Errorf("grid: unknown bus type %q", s)
}

// Bus is a network node. Reactive demand and voltage limits are carried for
// completeness; the DC model only reads PdMW.
type Bus struct {
	ID     int
	Type   BusType
	PdMW   float64
	QdMVAr float64
	BaseKV float64
	VMax   float64
	VMin   float64
}

// Branch is a line or transformer between two buses. Flow is positive in
// the From→To direction. A zero X removes the branch from the DC model and a
// zero RatingMW leaves it unconstrained.
type Branch struct {
	From      int
	To        int
	R         float64
	X         float64
	B         float64
	RatingMW  float64
	InService bool
}

// Modeled reports whether the branch takes part in the DC susceptance model.
func (br Branch) Modeled() bool {
	return br.InService && br.X != 0
}

// Generator is a dispatchable unit attached to a bus. Cost coefficients are
// only read by unit commitment.
type Generator struct {
	Bus        int
	PgMW       float64
	PMinMW     float64
	PMaxMW     float64
	InService  bool
	CostFixed  float64
	CostLinear float64
}

// Increment is the load added at a candidate bus.
type Increment struct {
	MW   float64
	MVAr float64
}

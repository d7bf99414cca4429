// SPDX-License-Identifier: MIT

package casefile

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/gridload/grid"
)

// Case is the YAML document.
type Case struct {
	BaseMVA    float64     `yaml:"base_mva,omitempty"`
	Buses      []Bus       `yaml:"buses"`
	Branches   []Branch    `yaml:"branches"`
	Generators []Generator `yaml:"generators,omitempty"`
}

// Bus is a YAML bus record.
type Bus struct {
	ID     int     `yaml:"id"`
	Type   string  `yaml:"type"`
	PdMW   float64 `yaml:"pd_mw,omitempty"`
	QdMVAr float64 `yaml:"qd_mvar,omitempty"`
	BaseKV float64 `yaml:"base_kv,omitempty"`
	VMax   float64 `yaml:"vmax,omitempty"`
	VMin   float64 `yaml:"vmin,omitempty"`
}

// Branch is a YAML branch record.
type Branch struct {
	From      int     `yaml:"from"`
	To        int     `yaml:"to"`
	R         float64 `yaml:"r,omitempty"`
	X         float64 `yaml:"x"`
	B         float64 `yaml:"b,omitempty"`
	RatingMW  float64 `yaml:"rating_mw,omitempty"`
	InService *bool   `yaml:"in_service,omitempty"`
}

// Generator is a YAML generator record.
type Generator struct {
	Bus        int     `yaml:"bus"`
	PgMW       float64 `yaml:"pg_mw,omitempty"`
	PMinMW     float64 `yaml:"pmin_mw,omitempty"`
	PMaxMW     float64 `yaml:"pmax_mw"`
	InService  *bool   `yaml:"in_service,omitempty"`
	CostFixed  float64 `yaml:"cost_fixed,omitempty"`
	CostLinear float64 `yaml:"cost_linear,omitempty"`
}

// Load reads the case file at path.
func Load(path string) (*grid.Network, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("casefile: %w", err)
	}
	defer f.Close()

	net, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return net, nil
}

// Decode parses one YAML case and builds the network.
func Decode(r io.Reader) (*grid.Network, error) {
	var c Case
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("casefile: decode: %w", err)
	}

	return c.Network()
}

// Network converts the document into a validated grid.Network.
func (c *Case) Network() (*grid.Network, error) {
	buses := make([]grid.Bus, len(c.Buses))
	for i, b := range c.Buses {
		t := grid.PQ
		if b.Type != "" {
			var err error
			if t, err = grid.ParseBusType(b.Type); err != nil {
				return nil, fmt.Errorf("casefile: bus %d: %w", b.ID, err)
			}
		}
		buses[i] = grid.Bus{ID: b.ID, Type: t, PdMW: b.PdMW, QdMVAr: b.QdMVAr, BaseKV: b.BaseKV, VMax: b.VMax, VMin: b.VMin}
	}
	branches := make([]grid.Branch, len(c.Branches))
	for i, br := range c.Branches {
		branches[i] = grid.Branch{
			From: br.From, To: br.To, R: br.R, X: br.X, B: br.B,
			RatingMW: br.RatingMW, InService: inService(br.InService),
		}
	}
	gens := make([]grid.Generator, len(c.Generators))
	for i, g := range c.Generators {
		gens[i] = grid.Generator{
			Bus: g.Bus, PgMW: g.PgMW, PMinMW: g.PMinMW, PMaxMW: g.PMaxMW,
			InService: inService(g.InService), CostFixed: g.CostFixed, CostLinear: g.CostLinear,
		}
	}

	return grid.NewNetwork(buses, branches, gens, c.BaseMVA)
}

// FromNetwork converts net into a document.
func FromNetwork(net *grid.Network) *Case {
	c := &Case{BaseMVA: net.BaseMVA()}
	for _, b := range net.Buses() {
		c.Buses = append(c.Buses, Bus{
			ID: b.ID, Type: typeName(b.Type), PdMW: b.PdMW, QdMVAr: b.QdMVAr,
			BaseKV: b.BaseKV, VMax: b.VMax, VMin: b.VMin,
		})
	}
	for _, br := range net.Branches() {
		c.Branches = append(c.Branches, Branch{
			From: br.From, To: br.To, R: br.R, X: br.X, B: br.B,
			RatingMW: br.RatingMW, InService: outOfService(br.InService),
		})
	}
	for _, g := range net.Generators() {
		c.Generators = append(c.Generators, Generator{
			Bus: g.Bus, PgMW: g.PgMW, PMinMW: g.PMinMW, PMaxMW: g.PMaxMW,
			InService: outOfService(g.InService), CostFixed: g.CostFixed, CostLinear: g.CostLinear,
		})
	}

	return c
}

// Encode writes net as YAML.
func Encode(w io.Writer, net *grid.Network) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(FromNetwork(net)); err != nil {
		return fmt.Errorf("casefile: encode: %w", err)
	}

	return enc.Close()
}

func inService(p *bool) bool {
	return p == nil || *p
}

// outOfService returns nil for in-service elements so the default stays implicit.
func outOfService(in bool) *bool {
	if in {
		return nil
	}

	return &in
}

func typeName(t grid.BusType) string {
	switch t {
	case grid.Slack:
		return "slack"
	case grid.PV:
		return "pv"
	default:
		return "pq"
	}
}

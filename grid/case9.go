// SPDX-License-Identifier: MIT

package grid

// Case9 returns the IEEE 9-bus test system on a 100 MVA base: three
// generators (bus 1 slack, buses 2 and 3 PV), loads at buses 5, 7 and 9.
func Case9() *Network {
	bus := func(id int, t BusType, pd, qd float64) Bus {
		return Bus{ID: id, Type: t, PdMW: pd, QdMVAr: qd, BaseKV: 345, VMax: 1.1, VMin: 0.9}
	}
	buses := []Bus{
		bus(1, Slack, 0, 0),
		bus(2, PV, 0, 0),
		bus(3, PV, 0, 0),
		bus(4, PQ, 0, 0),
		bus(5, PQ, 90, 30),
		bus(6, PQ, 0, 0),
		bus(7, PQ, 100, 35),
		bus(8, PQ, 0, 0),
		bus(9, PQ, 125, 50),
	}
	branches := []Branch{
		{From: 1, To: 4, R: 0, X: 0.0576, B: 0, RatingMW: 250, InService: true},
		{From: 4, To: 5, R: 0.017, X: 0.092, B: 0.158, RatingMW: 250, InService: true},
		{From: 5, To: 6, R: 0.039, X: 0.17, B: 0.358, RatingMW: 150, InService: true},
		{From: 3, To: 6, R: 0, X: 0.0586, B: 0, RatingMW: 300, InService: true},
		{From: 6, To: 7, R: 0.0119, X: 0.1008, B: 0.209, RatingMW: 150, InService: true},
		{From: 7, To: 8, R: 0.0085, X: 0.072, B: 0.149, RatingMW: 250, InService: true},
		{From: 8, To: 2, R: 0, X: 0.0625, B: 0, RatingMW: 250, InService: true},
		{From: 8, To: 9, R: 0.032, X: 0.161, B: 0.306, RatingMW: 250, InService: true},
		{From: 9, To: 4, R: 0.01, X: 0.085, B: 0.176, RatingMW: 250, InService: true},
	}
	gens := []Generator{
		{Bus: 1, PgMW: 0, PMinMW: 10, PMaxMW: 250, InService: true, CostFixed: 0.11, CostLinear: 5.0},
		{Bus: 2, PgMW: 163, PMinMW: 10, PMaxMW: 300, InService: true, CostFixed: 0.085, CostLinear: 1.2},
		{Bus: 3, PgMW: 85, PMinMW: 10, PMaxMW: 270, InService: true, CostFixed: 0.1225, CostLinear: 1.0},
	}

	net, err := NewNetwork(buses, branches, gens, DefaultBaseMVA)
	if err != nil {
		panic(err) // static data
	}

	return net
}

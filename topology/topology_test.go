// SPDX-License-Identifier: MIT

package topology_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/topology"
)

func TestFromNetwork_Case9(t *testing.T) {
	g := topology.FromNetwork(grid.Case9())

	require.Equal(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9}, g.Buses())
	nbrs, err := g.Neighbors(4)
	require.NoError(t, err)
	require.Equal(t, []int{1, 5, 9}, nbrs)
	require.Equal(t, 3, g.Degree(4))

	islands, err := topology.Islands(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, islands, 1)
}

func TestFromNetwork_SkipsUnmodeledBranches(t *testing.T) {
	buses := []grid.Bus{{ID: 1, Type: grid.Slack}, {ID: 2}, {ID: 3}, {ID: 4}}
	branches := []grid.Branch{
		{From: 1, To: 2, X: 0.1, InService: true},
		{From: 2, To: 3, X: 0, InService: true},   // zero reactance
		{From: 3, To: 4, X: 0.2, InService: false}, // out of service
		{From: 3, To: 4, X: 0.2, InService: true},
	}
	net, err := grid.NewNetwork(buses, branches, nil, 100)
	require.NoError(t, err)

	g := topology.FromNetwork(net)
	islands, err := topology.Islands(context.Background(), g)
	require.NoError(t, err)
	require.Equal(t, [][]int{{1, 2}, {3, 4}}, islands)

	un, err := topology.Unreachable(context.Background(), g, 1)
	require.NoError(t, err)
	require.Equal(t, []int{3, 4}, un)
}

func TestWalk_DepthAndOptions(t *testing.T) {
	g := topology.FromNetwork(grid.Case9())

	res, err := topology.Walk(g, 1)
	require.NoError(t, err)
	require.Equal(t, 0, res.Depth[1])
	require.Equal(t, 1, res.Depth[4])
	require.Equal(t, 2, res.Depth[5])
	require.Equal(t, 4, res.Parent[5])
	require.Len(t, res.Order, 9)

	res, err = topology.Walk(g, 1, topology.WithMaxDepth(1))
	require.NoError(t, err)
	require.Equal(t, []int{1, 4}, res.Order)

	// Cutting 4–5 and 4–9 leaves bus 1 with only bus 4.
	cut := func(u, v int) bool { return !(u == 4 && (v == 5 || v == 9)) }
	res, err = topology.Walk(g, 1, topology.WithFilterNeighbor(cut))
	require.NoError(t, err)
	require.False(t, res.Reached(5))

	_, err = topology.Walk(g, 1, topology.WithMaxDepth(-1))
	require.ErrorIs(t, err, topology.ErrOptionViolation)

	_, err = topology.Walk(g, 42)
	require.ErrorIs(t, err, topology.ErrBusNotFound)

	_, err = topology.Walk(nil, 1)
	require.ErrorIs(t, err, topology.ErrGraphNil)

	stop := errors.New("stop")
	_, err = topology.Walk(g, 1, topology.WithOnVisit(func(bus, _ int) error {
		if bus == 4 {
			return stop
		}
		return nil
	}))
	require.ErrorIs(t, err, stop)
}

func TestWalk_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := topology.Walk(topology.FromNetwork(grid.Case9()), 1, topology.WithContext(ctx))
	require.ErrorIs(t, err, context.Canceled)
}

func TestGraph_ConcurrentBuild(t *testing.T) {
	g := topology.NewGraph()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g.AddEdge(0, i+1)
		}(i)
	}
	wg.Wait()

	require.Equal(t, 50, g.Degree(0))
	islands, err := topology.Islands(context.Background(), g)
	require.NoError(t, err)
	require.Len(t, islands, 1)
}

func TestBridges_Case9(t *testing.T) {
	g := topology.FromNetwork(grid.Case9())

	bridges, err := topology.Bridges(context.Background(), g)
	require.NoError(t, err)
	// generator feeders hang off the 4-5-6-7-8-9 ring
	require.Equal(t, [][2]int{{1, 4}, {2, 8}, {3, 6}}, bridges)
}

func TestBridges_ParallelAndForest(t *testing.T) {
	g := topology.NewGraph()
	g.AddEdge(1, 2)
	g.AddEdge(1, 2) // parallel pair
	g.AddEdge(2, 3)
	g.AddEdge(10, 11)
	g.AddBus(20)

	bridges, err := topology.Bridges(context.Background(), g)
	require.NoError(t, err)
	require.Equal(t, [][2]int{{2, 3}, {10, 11}}, bridges)

	_, err = topology.Bridges(context.Background(), nil)
	require.ErrorIs(t, err, topology.ErrGraphNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = topology.Bridges(ctx, g)
	require.ErrorIs(t, err, context.Canceled)
}

func TestElectricalDistances_Case9(t *testing.T) {
	dist, err := topology.ElectricalDistances(context.Background(), grid.Case9(), 1)
	require.NoError(t, err)

	want := map[int]float64{
		1: 0,
		4: 0.0576,
		5: 0.0576 + 0.092,
		9: 0.0576 + 0.085,
		6: 0.0576 + 0.092 + 0.17,
		8: 0.0576 + 0.085 + 0.161,
		2: 0.0576 + 0.085 + 0.161 + 0.0625,
		7: 0.0576 + 0.085 + 0.161 + 0.072,
		3: 0.0576 + 0.092 + 0.17 + 0.0586,
	}
	require.Len(t, dist, len(want))
	for bus, d := range want {
		require.InDelta(t, d, dist[bus], 1e-12, "bus %d", bus)
	}
}

func TestElectricalDistances_ParallelAndIsland(t *testing.T) {
	buses := []grid.Bus{{ID: 1, Type: grid.Slack}, {ID: 2}, {ID: 3}}
	branches := []grid.Branch{
		{From: 1, To: 2, X: 0.2, InService: true},
		{From: 2, To: 1, X: 0.2, InService: true},
	}
	net, err := grid.NewNetwork(buses, branches, nil, 100)
	require.NoError(t, err)

	dist, err := topology.ElectricalDistances(context.Background(), net, 1)
	require.NoError(t, err)
	require.InDelta(t, 0.1, dist[2], 1e-12)
	require.True(t, math.IsInf(dist[3], 1))

	_, err = topology.ElectricalDistances(context.Background(), net, 9)
	require.ErrorIs(t, err, topology.ErrBusNotFound)
}

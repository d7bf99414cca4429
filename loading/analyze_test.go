// SPDX-License-Identifier: MIT

package loading_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
	"github.com/katalvlaran/gridload/loading"
)

func flow(branch int, mw, rating float64) dcflow.Flow {
	return dcflow.Flow{Branch: branch, From: branch, To: branch + 1, FlowMW: mw, RatingMW: rating, LoadingPct: dcflow.Loading(mw, rating)}
}

func TestViolations(t *testing.T) {
	flows := []dcflow.Flow{
		flow(0, 120, 100),  // 120%
		flow(1, -80, 100),  // 80%
		flow(2, 500, 0),    // unrated
		flow(3, -150, 100), // 150%
		flow(4, 100, 100),  // exactly at limit
	}

	v := loading.Violations(flows, loading.DefaultThreshold)
	require.Len(t, v, 2)
	require.Equal(t, 0, v[0].Flow.Branch)
	require.InDelta(t, 20.0, v[0].ExcessMW, 1e-12)
	require.Equal(t, 3, v[1].Flow.Branch)
	require.InDelta(t, 50.0, v[1].ExcessMW, 1e-12)
	require.Equal(t, 100.0, v[1].LimitMW)

	v = loading.Violations(flows, 75)
	require.Len(t, v, 4)
	require.InDelta(t, 5.0, v[1].ExcessMW, 1e-12)

	require.Empty(t, loading.Violations(nil, 100))
}

func TestChangesAndMostAffected(t *testing.T) {
	base := []dcflow.Flow{flow(0, 50, 100), flow(1, 40, 100), flow(2, 10, 100)}
	next := []dcflow.Flow{flow(0, 60, 100), flow(1, 10, 100), flow(2, -40, 100)}

	ch, err := loading.Changes(base, next)
	require.NoError(t, err)
	require.Len(t, ch, 3)
	require.InDelta(t, 10.0, ch[0].DeltaPct, 1e-12)
	require.InDelta(t, -30.0, ch[1].DeltaPct, 1e-12)
	require.InDelta(t, 30.0, ch[2].DeltaPct, 1e-12)

	most, ok := loading.MostAffected(ch)
	require.True(t, ok)
	require.Equal(t, 1, most.Branch, "ties keep the earlier branch")
	require.InDelta(t, -30.0, most.DeltaPct, 1e-12, "sign is preserved")

	_, ok = loading.MostAffected(nil)
	require.False(t, ok)

	_, err = loading.Changes(base, next[:2])
	require.ErrorIs(t, err, loading.ErrFlowMismatch)
	_, err = loading.Changes(base, []dcflow.Flow{flow(0, 1, 1), flow(2, 1, 1), flow(1, 1, 1)})
	require.ErrorIs(t, err, loading.ErrFlowMismatch)
}

func TestMaxAndTotal(t *testing.T) {
	flows := []dcflow.Flow{flow(0, -90, 100), flow(1, 30, 50), flow(2, 5, 0)}
	require.InDelta(t, 90.0, loading.MaxLoading(flows), 1e-12)
	require.InDelta(t, 125.0, loading.TotalAbsFlow(flows), 1e-12)
	require.Equal(t, 0.0, loading.MaxLoading(nil))
}

func TestCheckCapacity(t *testing.T) {
	require.NoError(t, loading.CheckCapacity(820, 820))
	err := loading.CheckCapacity(821, 820)
	require.ErrorIs(t, err, loading.ErrInfeasibleLoad)
}

func TestGeneratorViolations(t *testing.T) {
	net := grid.Case9()

	require.Empty(t, loading.GeneratorViolations(net, 67, loading.DefaultGeneratorToleranceMW))
	require.Empty(t, loading.GeneratorViolations(net, 250.5, loading.DefaultGeneratorToleranceMW), "within tolerance")

	v := loading.GeneratorViolations(net, 367, loading.DefaultGeneratorToleranceMW)
	require.Len(t, v, 1)
	require.Equal(t, 1, v[0].Bus)
	require.Equal(t, loading.AboveMax, v[0].Kind)
	require.InDelta(t, 117.0, v[0].ExcessMW, 1e-12)

	v = loading.GeneratorViolations(net, 2, loading.DefaultGeneratorToleranceMW)
	require.Len(t, v, 1)
	require.Equal(t, loading.BelowMin, v[0].Kind)
	require.InDelta(t, 8.0, v[0].ExcessMW, 1e-12)
	require.Equal(t, "min", v[0].Kind.String())
}

// SPDX-License-Identifier: MIT

package casefile_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/gridload/casefile"
	"github.com/katalvlaran/gridload/grid"
)

const threeBus = `
base_mva: 50
buses:
  - {id: 1, type: slack}
  - {id: 2, pd_mw: 20, qd_mvar: 5}
  - {id: 3, type: PV, pd_mw: 10}
branches:
  - {from: 1, to: 2, x: 0.1, rating_mw: 40}
  - {from: 2, to: 3, x: 0.2, rating_mw: 40, in_service: false}
  - {from: 1, to: 3, x: 0.2}
generators:
  - {bus: 1, pmax_mw: 100, pmin_mw: 5, cost_linear: 3}
  - {bus: 3, pg_mw: 8, pmax_mw: 20, in_service: false}
`

func TestDecode(t *testing.T) {
	net, err := casefile.Decode(strings.NewReader(threeBus))
	require.NoError(t, err)

	require.Equal(t, 50.0, net.BaseMVA())
	b, ok := net.Bus(2)
	require.True(t, ok)
	require.Equal(t, grid.PQ, b.Type)
	b, _ = net.Bus(3)
	require.Equal(t, grid.PV, b.Type)

	br := net.Branches()
	require.True(t, br[0].InService)
	require.False(t, br[1].InService)
	require.Equal(t, 0.0, br[2].RatingMW)

	gens := net.Generators()
	require.True(t, gens[0].InService)
	require.False(t, gens[1].InService)
	require.Equal(t, 100.0, net.TotalCapacityMW())
}

func TestDecode_Errors(t *testing.T) {
	_, err := casefile.Decode(strings.NewReader("buses:\n  - {id: 1, typ: slack}\n"))
	require.Error(t, err, "unknown fields are rejected")

	_, err = casefile.Decode(strings.NewReader("buses:\n  - {id: 1, type: swing}\n"))
	require.Error(t, err)

	_, err = casefile.Decode(strings.NewReader("buses:\n  - {id: 1}\nbranches:\n  - {from: 1, to: 2, x: 0.1}\n"))
	require.ErrorIs(t, err, grid.ErrUnknownBusReference)

	_, err = casefile.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncodeThenLoad_Case9(t *testing.T) {
	net := grid.Case9()
	var buf bytes.Buffer
	require.NoError(t, casefile.Encode(&buf, net))
	require.NotContains(t, buf.String(), "in_service", "in-service is the implicit default")

	path := filepath.Join(t.TempDir(), "case9.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	back, err := casefile.Load(path)
	require.NoError(t, err)
	require.Equal(t, net.Buses(), back.Buses())
	require.Equal(t, net.Branches(), back.Branches())
	require.Equal(t, net.Generators(), back.Generators())
	require.Equal(t, net.BaseMVA(), back.BaseMVA())
}

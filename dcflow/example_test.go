package dcflow_test

import (
	"context"
	"fmt"

	"github.com/katalvlaran/gridload/dcflow"
	"github.com/katalvlaran/gridload/grid"
)

// ExampleSolver_Solve prints the base-case flows of the IEEE 9-bus system.
func ExampleSolver_Solve() {
	net := grid.Case9()
	s, err := dcflow.NewSolver(net)
	if err != nil {
		fmt.Println(err)
		return
	}
	sol, err := s.Solve(context.Background(), net.Loads())
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, f := range sol.Flows[:3] {
		fmt.Printf("%d-%d %.1f MW %.1f%%\n", f.From, f.To, f.FlowMW, f.LoadingPct)
	}
	// Output:
	// 1-4 67.0 MW 26.8%
	// 4-5 29.0 MW 11.6%
	// 5-6 -61.0 MW 40.7%
}

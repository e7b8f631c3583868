package solver_test

import (
	"fmt"

	"github.com/matzehuels/gutterview/pkg/solver"
)

func ExampleProblem_Cost() {
	// A path 0-1-2-3 laid out out of order.
	p, _ := solver.NewProblem(4, [][2]int{{0, 1}, {1, 2}, {2, 3}})

	fmt.Println(p.Cost([]int{0, 1, 2, 3}))
	fmt.Println(p.Cost([]int{0, 2, 1, 3}))
	// Output:
	// 3
	// 5
}

func ExampleInitialize() {
	p, _ := solver.NewProblem(6, [][2]int{{0, 3}, {3, 1}, {1, 4}, {4, 2}, {2, 5}})

	cfg := solver.DefaultConfig()
	cfg.BatchSize = solver.BatchSizeFor(p.NodeCount())
	cfg.Seed = solver.Seed(p)

	st, err := solver.Initialize(p, cfg)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}

	var b solver.Batch
	for range 5 {
		b = st.RunBatch(1000)
	}
	fmt.Println("cost:", b.BestCost)
	// Output:
	// cost: 5
}

package solver

import (
	"errors"
	"math"
	"reflect"
	"slices"
	"testing"
	"time"

	errs "github.com/matzehuels/gutterview/pkg/errors"
)

// tenNodeEdges is a path 3-7-0-5-9-2-8-1-4 with node 6 bridging 5 and 9.
var tenNodeEdges = [][2]int{
	{3, 7}, {7, 0}, {0, 5}, {5, 9}, {9, 2}, {2, 8}, {8, 1}, {1, 4},
	{6, 5}, {6, 9},
}

var tenNodeReference = []int{3, 7, 0, 5, 6, 9, 2, 8, 1, 4}

func mustProblem(t *testing.T, n int, edges [][2]int) *Problem {
	t.Helper()
	p, err := NewProblem(n, edges)
	if err != nil {
		t.Fatalf("NewProblem() error = %v", err)
	}
	return p
}

func gridEdges(w, h int) [][2]int {
	var edges [][2]int
	for y := range h {
		for x := range w {
			u := y*w + x
			if x+1 < w {
				edges = append(edges, [2]int{u, u + 1})
			}
			if y+1 < h {
				edges = append(edges, [2]int{u, u + w})
			}
		}
	}
	return edges
}

func TestNewProblem(t *testing.T) {
	tests := []struct {
		name      string
		n         int
		edges     [][2]int
		wantErr   error
		wantEdges int
	}{
		{"NoNodes", 0, nil, ErrNoNodes, 0},
		{"OutOfRange", 2, [][2]int{{0, 2}}, ErrEdgeOutOfRange, 0},
		{"Negative", 2, [][2]int{{-1, 0}}, ErrEdgeOutOfRange, 0},
		{"SelfLoopDropped", 2, [][2]int{{0, 0}, {0, 1}}, nil, 1},
		{"Duplicates", 3, [][2]int{{0, 1}, {1, 0}, {1, 2}}, nil, 3},
		{"NoEdges", 4, nil, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProblem(tt.n, tt.edges)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewProblem() error = %v, want %v", err, tt.wantErr)
				}
				if !errs.Is(err, errs.ErrCodeInvalidGraph) {
					t.Errorf("error code = %s, want INVALID_GRAPH", errs.GetCode(err))
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProblem() error = %v", err)
			}
			if p.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", p.EdgeCount(), tt.wantEdges)
			}
			degree := 0
			for u := range p.NodeCount() {
				degree += len(p.Neighbors(u))
			}
			if degree != 2*tt.wantEdges {
				t.Errorf("total degree = %d, want %d", degree, 2*tt.wantEdges)
			}
		})
	}
}

func TestCost(t *testing.T) {
	p := mustProblem(t, 10, tenNodeEdges)

	if got := p.Cost(Identity(10)); got != 47 {
		t.Errorf("identity cost = %d, want 47", got)
	}
	if got := p.Cost(tenNodeReference); got != 11 {
		t.Errorf("reference cost = %d, want 11", got)
	}

	reversed := slices.Clone(tenNodeReference)
	slices.Reverse(reversed)
	if got := p.Cost(reversed); got != 11 {
		t.Errorf("reversed reference cost = %d, want 11", got)
	}
}

func TestCostEndpointSymmetry(t *testing.T) {
	flipped := make([][2]int, len(tenNodeEdges))
	for i, e := range tenNodeEdges {
		flipped[i] = [2]int{e[1], e[0]}
	}
	a := mustProblem(t, 10, tenNodeEdges)
	b := mustProblem(t, 10, flipped)

	orders := [][]int{Identity(10), tenNodeReference, {9, 8, 7, 6, 5, 4, 3, 2, 1, 0}, {4, 0, 8, 2, 6, 1, 9, 3, 7, 5}}
	for _, order := range orders {
		if a.Cost(order) != b.Cost(order) {
			t.Errorf("cost(%v) differs after flipping edges: %d vs %d", order, a.Cost(order), b.Cost(order))
		}
	}
}

func TestCheckedCost(t *testing.T) {
	p := mustProblem(t, 3, [][2]int{{0, 1}, {1, 2}})

	tests := []struct {
		name    string
		order   []int
		want    uint32
		wantErr bool
	}{
		{"Identity", []int{0, 1, 2}, 2, false},
		{"Split", []int{1, 0, 2}, 3, false},
		{"Short", []int{0, 1}, 0, true},
		{"OutOfRange", []int{0, 1, 3}, 0, true},
		{"Duplicate", []int{0, 1, 1}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := p.CheckedCost(tt.order)
			if tt.wantErr {
				if !errs.Is(err, errs.ErrCodeInvalidOrder) {
					t.Fatalf("CheckedCost() error = %v, want INVALID_ORDER", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CheckedCost() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CheckedCost() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSaturatingAdd(t *testing.T) {
	tests := []struct {
		cost  uint32
		delta int64
		want  uint32
	}{
		{10, -3, 7},
		{10, -20, 0},
		{10, 5, 15},
		{math.MaxUint32 - 1, 5, math.MaxUint32},
	}
	for _, tt := range tests {
		if got := saturatingAdd(tt.cost, tt.delta); got != tt.want {
			t.Errorf("saturatingAdd(%d, %d) = %d, want %d", tt.cost, tt.delta, got, tt.want)
		}
	}
}

func TestSwapDeltaMatchesRecompute(t *testing.T) {
	p := mustProblem(t, 10, append(slices.Clone(tenNodeEdges), [2]int{5, 9}, [2]int{0, 4}))
	order := []int{4, 0, 8, 2, 6, 1, 9, 3, 7, 5}
	pos := positions(order, 10)
	base := int64(p.Cost(order))

	for i := range 10 {
		for j := range 10 {
			if i == j {
				continue
			}
			delta := p.swapDelta(order, pos, i, j)
			swapped := slices.Clone(order)
			swapped[i], swapped[j] = swapped[j], swapped[i]
			if want := int64(p.Cost(swapped)) - base; delta != want {
				t.Errorf("swapDelta(%d, %d) = %d, want %d", i, j, delta, want)
			}
		}
	}
}

func TestInitialize(t *testing.T) {
	p := mustProblem(t, 10, tenNodeEdges)

	t.Run("ZeroBatch", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.BatchSize = 0
		_, err := Initialize(p, cfg)
		if !errors.Is(err, ErrZeroBatch) {
			t.Fatalf("Initialize() error = %v, want ErrZeroBatch", err)
		}
		if !errs.Is(err, errs.ErrCodeInvalidOptions) {
			t.Errorf("code = %s, want INVALID_OPTIONS", errs.GetCode(err))
		}
	})

	t.Run("NilProblem", func(t *testing.T) {
		if _, err := Initialize(nil, DefaultConfig()); !errors.Is(err, ErrNoNodes) {
			t.Fatalf("Initialize(nil) error = %v, want ErrNoNodes", err)
		}
	})

	t.Run("Chains", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.BatchSize = 4
		cfg.Seed = 7
		st, err := Initialize(p, cfg)
		if err != nil {
			t.Fatal(err)
		}
		if st.Chains() != 4 {
			t.Fatalf("Chains() = %d, want 4", st.Chains())
		}
		for k := range st.Chains() {
			c := st.Chain(k)
			if err := ValidateOrder(c.Order(), 10); err != nil {
				t.Errorf("chain %d initial order invalid: %v", k, err)
			}
			if c.Cost() != p.Cost(c.Order()) {
				t.Errorf("chain %d cost = %d, want %d", k, c.Cost(), p.Cost(c.Order()))
			}
			if c.Floor() > c.Temperature() || c.Floor() < MinTemp {
				t.Errorf("chain %d floor %v outside [%v, %v]", k, c.Floor(), MinTemp, c.Temperature())
			}
		}
		if slices.Equal(st.Chain(0).Order(), st.Chain(1).Order()) {
			t.Error("chains should start from different shuffles")
		}
	})

	t.Run("ExplicitTemp", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.InitialTemp = 8
		st, err := Initialize(p, cfg)
		if err != nil {
			t.Fatal(err)
		}
		c := st.Chain(0)
		if c.Temperature() != 8 || c.Floor() != 2 {
			t.Errorf("temp/floor = %v/%v, want 8/2", c.Temperature(), c.Floor())
		}
	})
}

func TestRunBatchInvariants(t *testing.T) {
	p := mustProblem(t, 30, gridEdges(6, 5))
	cfg := DefaultConfig()
	cfg.BatchSize = 6
	cfg.Seed = Seed(p)
	cfg.ReseedPlateauSteps = 200

	st, err := Initialize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}

	prevChain := st.ChainBestCosts()
	prevGlobal := uint32(math.MaxUint32)
	for batch := range 15 {
		b := st.RunBatch(300)

		if err := ValidateOrder(b.BestOrder, 30); err != nil {
			t.Fatalf("batch %d best order invalid: %v", batch, err)
		}
		if got := p.Cost(b.BestOrder); got != b.BestCost {
			t.Fatalf("batch %d BestCost = %d, recomputed %d", batch, b.BestCost, got)
		}
		if b.BestCost > prevGlobal {
			t.Errorf("batch %d global best rose from %d to %d", batch, prevGlobal, b.BestCost)
		}
		prevGlobal = b.BestCost

		costs := st.ChainBestCosts()
		for k, c := range costs {
			if c > prevChain[k] {
				t.Errorf("batch %d chain %d best rose from %d to %d", batch, k, prevChain[k], c)
			}
			chain := st.Chain(k)
			if err := ValidateOrder(chain.Order(), 30); err != nil {
				t.Errorf("batch %d chain %d order invalid: %v", batch, k, err)
			}
			if got := p.Cost(chain.Order()); got != chain.Cost() {
				t.Errorf("batch %d chain %d cost = %d, recomputed %d", batch, k, chain.Cost(), got)
			}
			if got := p.Cost(chain.BestOrder()); got != chain.BestCost() {
				t.Errorf("batch %d chain %d best cost = %d, recomputed %d", batch, k, chain.BestCost(), got)
			}
		}
		prevChain = costs
	}

	if st.Batches() != 15 {
		t.Errorf("Batches() = %d, want 15", st.Batches())
	}
	if st.BestCost() != prevGlobal {
		t.Errorf("BestCost() = %d, want %d", st.BestCost(), prevGlobal)
	}
}

func TestTraceIncrementalCost(t *testing.T) {
	p := mustProblem(t, 20, gridEdges(5, 4))
	cfg := DefaultConfig()
	cfg.Seed = 42

	st, err := Initialize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}

	accepted := 0
	st.Trace = func(ev TraceEvent) {
		if !ev.Accepted {
			return
		}
		accepted++
		if got := p.Cost(ev.Order); got != ev.Cost {
			t.Fatalf("after swap (%d, %d) incremental cost %d, full recompute %d", ev.I, ev.J, ev.Cost, got)
		}
	}
	for range 5 {
		st.RunBatch(500)
	}
	if accepted == 0 {
		t.Error("no moves were accepted")
	}
}

func TestDeterminismSingleChain(t *testing.T) {
	p := mustProblem(t, 25, gridEdges(5, 5))
	cfg := DefaultConfig()
	cfg.Seed = 1234

	run := func() ([]int, []uint32, []TraceEvent) {
		st, err := Initialize(p, cfg)
		if err != nil {
			t.Fatal(err)
		}
		var events []TraceEvent
		st.Trace = func(ev TraceEvent) {
			ev.Order = nil
			events = append(events, ev)
		}
		var costs []uint32
		for _, steps := range []int{100, 250, 50, 400} {
			costs = append(costs, st.RunBatch(steps).BestCost)
		}
		return st.BestOrder(), costs, events
	}

	orderA, costsA, eventsA := run()
	orderB, costsB, eventsB := run()

	if !slices.Equal(orderA, orderB) {
		t.Errorf("orders differ:\n%v\n%v", orderA, orderB)
	}
	if !slices.Equal(costsA, costsB) {
		t.Errorf("costs differ: %v vs %v", costsA, costsB)
	}
	if !reflect.DeepEqual(eventsA, eventsB) {
		t.Error("trace events differ between identical runs")
	}
	if len(eventsA) != 800 {
		t.Errorf("got %d trace events, want 800", len(eventsA))
	}
}

func TestParallelMatchesSequential(t *testing.T) {
	p := mustProblem(t, 16, gridEdges(4, 4))
	cfg := DefaultConfig()
	cfg.BatchSize = 5
	cfg.Seed = 99

	parallel, _ := Initialize(p, cfg)
	sequential, _ := Initialize(p, cfg)
	sequential.Trace = func(TraceEvent) {}

	for range 4 {
		a := parallel.RunBatch(200)
		b := sequential.RunBatch(200)
		if a.BestCost != b.BestCost || !slices.Equal(a.BestOrder, b.BestOrder) {
			t.Fatalf("parallel batch %d/%v differs from sequential %d/%v", a.BestCost, a.BestOrder, b.BestCost, b.BestOrder)
		}
	}
}

func TestReseed(t *testing.T) {
	p := mustProblem(t, 10, tenNodeEdges)
	cfg := DefaultConfig()
	cfg.BatchSize = 3
	cfg.ReseedPlateauSteps = 50

	st, err := Initialize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}

	leader := st.Chain(0)
	leader.adopt(tenNodeReference, 11, st.resetFloor, 0)
	st.bestVersion = 1

	stale := st.Chain(1)
	stale.stagnant = 50
	fresh := st.Chain(2)
	fresh.stagnant = 10

	if got := st.reseed(0); got != 1 {
		t.Fatalf("reseed() = %d, want 1", got)
	}
	if !slices.Equal(stale.BestOrder(), tenNodeReference) || stale.BestCost() != 11 || stale.Cost() != 11 {
		t.Errorf("stale chain did not adopt the best order: %v (%d)", stale.BestOrder(), stale.BestCost())
	}
	if stale.Stagnant() != 0 || stale.SeedVersion() != 1 || stale.Floor() != st.resetFloor {
		t.Errorf("stale chain state after reseed: stagnant=%d version=%d floor=%v", stale.Stagnant(), stale.SeedVersion(), stale.Floor())
	}
	if leader.SeedVersion() != 1 {
		t.Errorf("leader seed version = %d, want 1", leader.SeedVersion())
	}
	if fresh.SeedVersion() != 0 {
		t.Error("chain below the plateau threshold should not be reseeded")
	}

	// A chain that already adopted the current version is left alone.
	stale.stagnant = 100
	if got := st.reseed(0); got != 0 {
		t.Errorf("second reseed() = %d, want 0", got)
	}

	t.Run("DisabledWithoutReheat", func(t *testing.T) {
		st.config.Reheat = false
		st.bestVersion = 2
		stale.stagnant = 100
		if got := st.reseed(0); got != 0 {
			t.Errorf("reseed() without reheat = %d, want 0", got)
		}
	})
}

func TestFloorWithoutReheat(t *testing.T) {
	p := mustProblem(t, 20, gridEdges(4, 5))
	cfg := DefaultConfig()
	cfg.Reheat = false
	cfg.InitialTemp = 10

	st, err := Initialize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	floor := st.Chain(0).Floor()
	for range 10 {
		st.RunBatch(500)
		next := st.Chain(0).Floor()
		if next > floor {
			t.Fatalf("floor rose from %v to %v with reheat disabled", floor, next)
		}
		floor = next
	}
}

func TestTemperatureBounds(t *testing.T) {
	p := mustProblem(t, 20, gridEdges(4, 5))
	cfg := DefaultConfig()
	cfg.BatchSize = 3
	cfg.InitialTemp = 5
	cfg.ReseedPlateauSteps = 100

	st, err := Initialize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	for range 20 {
		st.RunBatch(400)
		for k := range st.Chains() {
			c := st.Chain(k)
			if c.Temperature() < c.Floor() {
				t.Fatalf("chain %d temperature %v below floor %v", k, c.Temperature(), c.Floor())
			}
			if c.Floor() < MinTemp || c.Floor() > 5 {
				t.Fatalf("chain %d floor %v outside [%v, 5]", k, c.Floor(), MinTemp)
			}
			if r := c.CoolingRate(); r < MinCooling || r > MaxCooling {
				t.Fatalf("chain %d cooling %v outside range", k, r)
			}
		}
	}
}

func TestZeroEdgeGraph(t *testing.T) {
	p := mustProblem(t, 5, nil)
	cfg := DefaultConfig()
	cfg.BatchSize = 2
	st, err := Initialize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}
	b := st.RunBatch(100)
	if b.BestCost != 0 {
		t.Errorf("BestCost = %d, want 0", b.BestCost)
	}
	if err := ValidateOrder(b.BestOrder, 5); err != nil {
		t.Error(err)
	}
}

func TestSingleNode(t *testing.T) {
	p := mustProblem(t, 1, nil)
	st, err := Initialize(p, DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	b := st.RunBatch(100)
	if b.BestCost != 0 || !slices.Equal(b.BestOrder, []int{0}) || b.Accepted != 0 {
		t.Errorf("single node batch = %+v", b)
	}
}

func TestTenNodeReference(t *testing.T) {
	p := mustProblem(t, 10, tenNodeEdges)
	cfg := DefaultConfig()
	cfg.BatchSize = 16
	cfg.Seed = 1

	st, err := Initialize(p, cfg)
	if err != nil {
		t.Fatal(err)
	}

	var best Batch
	for range 40 {
		best = st.RunBatch(2000)
	}

	identity := p.Cost(Identity(10))
	reference := p.Cost(tenNodeReference)
	if best.BestCost >= identity {
		t.Errorf("cost %d not below identity %d", best.BestCost, identity)
	}
	if best.BestCost > reference {
		t.Errorf("cost %d above reference %d (order %v)", best.BestCost, reference, best.BestOrder)
	}
	if err := ValidateOrder(best.BestOrder, 10); err != nil {
		t.Error(err)
	}
}

func TestEstimateInitialTemp(t *testing.T) {
	t.Run("NoEdges", func(t *testing.T) {
		p := mustProblem(t, 5, nil)
		want := 1 / -math.Log(0.3)
		if got := EstimateInitialTemp(p, 0, 0.3); math.Abs(got-want) > 1e-9 {
			t.Errorf("EstimateInitialTemp() = %v, want %v", got, want)
		}
	})

	t.Run("Bounds", func(t *testing.T) {
		p := mustProblem(t, 30, gridEdges(6, 5))
		for _, target := range []float64{0, 0.01, 0.3, 0.9, 2} {
			got := EstimateInitialTemp(p, 17, target)
			if got < 0.1 || got > 100_000 {
				t.Errorf("EstimateInitialTemp(target=%v) = %v out of range", target, got)
			}
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		p := mustProblem(t, 30, gridEdges(6, 5))
		if EstimateInitialTemp(p, 5, 0.3) != EstimateInitialTemp(p, 5, 0.3) {
			t.Error("same seed should give the same estimate")
		}
	})

	t.Run("HigherTargetIsHotter", func(t *testing.T) {
		p := mustProblem(t, 30, gridEdges(6, 5))
		if EstimateInitialTemp(p, 5, 0.8) <= EstimateInitialTemp(p, 5, 0.2) {
			t.Error("higher target acceptance should raise the temperature")
		}
	})
}

func TestSeed(t *testing.T) {
	a := mustProblem(t, 10, tenNodeEdges)
	b := mustProblem(t, 10, tenNodeEdges)
	c := mustProblem(t, 10, tenNodeEdges[:9])

	if Seed(a) != Seed(b) {
		t.Error("identical problems should share a seed")
	}
	if Seed(a) == Seed(c) {
		t.Error("different problems should have different seeds")
	}
}

func TestSeedTo32(t *testing.T) {
	if got := seedTo32(5); got != 5 {
		t.Errorf("seedTo32(5) = %d, want 5", got)
	}
	if got := seedTo32(1 << 32); got != seedMix {
		t.Errorf("seedTo32(1<<32) = %#x, want %#x", got, uint32(seedMix))
	}
}

func TestBatchSizeFor(t *testing.T) {
	tests := []struct{ n, want int }{
		{0, 256},
		{1, 256},
		{1000, 200},
		{200_000, 1},
		{1_000_000, 1},
	}
	for _, tt := range tests {
		if got := BatchSizeFor(tt.n); got != tt.want {
			t.Errorf("BatchSizeFor(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestAdjustSteps(t *testing.T) {
	ms := time.Millisecond
	tests := []struct {
		name    string
		current int
		elapsed time.Duration
		want    int
	}{
		{"ZeroElapsedDoubles", 1000, 0, 2000},
		{"OnTarget", 1000, 60 * ms, 1000},
		{"WithinBand", 1000, 64 * ms, 1000},
		{"TooFast", 1000, 30 * ms, 2000},
		{"WayTooFast", 1000, 1 * ms, 2000},
		{"TooSlow", 1000, 120 * ms, 500},
		{"WayTooSlow", 1000, 10 * time.Second, 500},
		{"CapsAtMax", 15_000, 1 * ms, MaxSteps},
		{"FloorsAtMin", 1, 10 * time.Second, MinSteps},
		{"ZeroElapsedCaps", 15_000, 0, MaxSteps},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AdjustSteps(tt.current, tt.elapsed, DefaultTargetBatch); got != tt.want {
				t.Errorf("AdjustSteps(%d, %v) = %d, want %d", tt.current, tt.elapsed, got, tt.want)
			}
		})
	}
}

func TestController(t *testing.T) {
	c := NewController(0)
	if c.Steps != DefaultSteps {
		t.Fatalf("Steps = %d, want %d", c.Steps, DefaultSteps)
	}
	if got := c.Observe(30 * time.Millisecond); got != 2000 {
		t.Errorf("Observe(30ms) = %d, want 2000", got)
	}
	if got := c.Observe(120 * time.Millisecond); got != 1000 {
		t.Errorf("Observe(120ms) = %d, want 1000", got)
	}
}

func TestPlateau(t *testing.T) {
	p := NewPlateau(100 * time.Millisecond)
	p.Observe(false, 60*time.Millisecond)
	if p.Done() {
		t.Fatal("Done() too early")
	}
	p.Observe(true, 60*time.Millisecond)
	if p.Elapsed() != 0 {
		t.Errorf("Elapsed() after improvement = %v, want 0", p.Elapsed())
	}
	p.Observe(false, 60*time.Millisecond)
	p.Observe(false, 60*time.Millisecond)
	if !p.Done() {
		t.Error("Done() should be true after 120ms without improvement")
	}

	if NewPlateau(0).Limit != DefaultPlateau {
		t.Error("zero limit should use DefaultPlateau")
	}
}

func TestConfigNormalize(t *testing.T) {
	c := Config{
		BatchSize:        1000,
		Steps:            50_000,
		Cooling:          0.5,
		TargetAcceptance: 2,
		CoolingAdjust:    1,
		InitialTemp:      0.00001,
		FloorFraction:    3,
	}.Normalize()

	if c.BatchSize != MaxBatchSize {
		t.Errorf("BatchSize = %d", c.BatchSize)
	}
	if c.Steps != MaxSteps {
		t.Errorf("Steps = %d", c.Steps)
	}
	if c.Cooling != MinCooling {
		t.Errorf("Cooling = %v", c.Cooling)
	}
	if c.TargetAcceptance != 0.95 {
		t.Errorf("TargetAcceptance = %v", c.TargetAcceptance)
	}
	if c.CoolingAdjust != MaxCoolingAdjust {
		t.Errorf("CoolingAdjust = %v", c.CoolingAdjust)
	}
	if c.InitialTemp != MinTemp {
		t.Errorf("InitialTemp = %v", c.InitialTemp)
	}
	if c.FloorFraction != 1 {
		t.Errorf("FloorFraction = %v", c.FloorFraction)
	}
	if c.Window != DefaultWindow || c.ReseedPlateauSteps != DefaultReseedSteps || c.AcceptanceBand != DefaultBand {
		t.Errorf("defaults not applied: %+v", c)
	}

	if z := (Config{}).Normalize(); z.BatchSize != 0 || z.Steps != DefaultSteps {
		t.Errorf("zero config normalized to %+v", z)
	}
	if g := (Config{CoolingAdjust: 0.002}); math.Abs(g.reheatGain()-0.008) > 1e-12 || math.Abs(g.floorDecay()-0.996) > 1e-12 {
		t.Errorf("gain/decay = %v/%v", g.reheatGain(), g.floorDecay())
	}
}

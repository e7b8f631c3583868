package solver

// Tuning limits and defaults.
const (
	MinTemp = 0.001 // Below this temperature uphill moves are never accepted

	DefaultSteps = 1000
	MinSteps     = 1
	MaxSteps     = 20_000

	MaxBatchSize  = 256
	MaxTotalNodes = 200_000 // Upper bound on BatchSize * NodeCount chosen by BatchSizeFor

	DefaultCooling       = 0.995
	MinCooling           = 0.90
	MaxCooling           = 0.9999
	DefaultTarget        = 0.3
	DefaultBand          = 0.05
	DefaultCoolingAdjust = 0.002
	MinCoolingAdjust     = 0.0001
	MaxCoolingAdjust     = 0.05
	DefaultWindow        = 32
	DefaultReseedSteps   = 12_000
	DefaultFloorFraction = 0.25

	seedMix = 0x9E3779B9
	lcgA    = 1664525
	lcgC    = 1013904223
)

// Config tunes a [State]. Zero fields take their defaults in [Config.Normalize],
// except BatchSize which must be set explicitly.
type Config struct {
	BatchSize          int     `json:"batch_size" toml:"batch_size" env:"BATCH_SIZE"`
	Steps              int     `json:"steps" toml:"steps" env:"STEPS"`
	InitialTemp        float64 `json:"initial_temp,omitempty" toml:"initial_temp" env:"INITIAL_TEMP"` // 0 = estimate from the graph
	Cooling            float64 `json:"cooling" toml:"cooling" env:"COOLING"`
	Reheat             bool    `json:"reheat" toml:"reheat" env:"REHEAT"`
	ReseedPlateauSteps int     `json:"reseed_plateau_steps" toml:"reseed_plateau_steps" env:"RESEED_PLATEAU_STEPS"`
	FloorFraction      float64 `json:"floor_fraction" toml:"floor_fraction" env:"FLOOR_FRACTION"`
	TargetAcceptance   float64 `json:"target_acceptance" toml:"target_acceptance" env:"TARGET_ACCEPTANCE"`
	AcceptanceBand     float64 `json:"acceptance_band" toml:"acceptance_band" env:"ACCEPTANCE_BAND"`
	CoolingAdjust      float64 `json:"cooling_adjust" toml:"cooling_adjust" env:"COOLING_ADJUST"`
	Window             int     `json:"window" toml:"window" env:"WINDOW"`
	Seed               uint64  `json:"seed" toml:"seed" env:"SEED"`
}

// DefaultConfig returns the standard tuning with a single chain.
// Callers usually set BatchSize from [BatchSizeFor] and Seed from [Seed].
func DefaultConfig() Config {
	return Config{
		BatchSize:          1,
		Steps:              DefaultSteps,
		Cooling:            DefaultCooling,
		Reheat:             true,
		ReseedPlateauSteps: DefaultReseedSteps,
		FloorFraction:      DefaultFloorFraction,
		TargetAcceptance:   DefaultTarget,
		AcceptanceBand:     DefaultBand,
		CoolingAdjust:      DefaultCoolingAdjust,
		Window:             DefaultWindow,
	}
}

// Normalize fills zero fields with defaults and clamps the rest into range.
// A zero BatchSize is preserved so [Initialize] can reject it.
func (c Config) Normalize() Config {
	if c.BatchSize < 0 {
		c.BatchSize = 0
	}
	c.BatchSize = min(c.BatchSize, MaxBatchSize)

	if c.Steps == 0 {
		c.Steps = DefaultSteps
	}
	c.Steps = clampInt(c.Steps, MinSteps, MaxSteps)

	if c.InitialTemp != 0 {
		c.InitialTemp = max(c.InitialTemp, MinTemp)
	}
	if c.Cooling == 0 {
		c.Cooling = DefaultCooling
	}
	c.Cooling = clamp(c.Cooling, MinCooling, MaxCooling)

	if c.ReseedPlateauSteps <= 0 {
		c.ReseedPlateauSteps = DefaultReseedSteps
	}
	if c.FloorFraction <= 0 {
		c.FloorFraction = DefaultFloorFraction
	}
	c.FloorFraction = min(c.FloorFraction, 1)

	if c.TargetAcceptance == 0 {
		c.TargetAcceptance = DefaultTarget
	}
	c.TargetAcceptance = clamp(c.TargetAcceptance, 0.05, 0.95)

	if c.AcceptanceBand <= 0 {
		c.AcceptanceBand = DefaultBand
	}
	c.AcceptanceBand = min(c.AcceptanceBand, 0.5)

	if c.CoolingAdjust == 0 {
		c.CoolingAdjust = DefaultCoolingAdjust
	}
	c.CoolingAdjust = clamp(c.CoolingAdjust, MinCoolingAdjust, MaxCoolingAdjust)

	if c.Window <= 0 {
		c.Window = DefaultWindow
	}
	return c
}

// reheatGain is the maximum per-step floor growth of a stagnant chain.
func (c Config) reheatGain() float64 {
	return clamp(4*c.CoolingAdjust, 0.001, 0.05)
}

// floorDecay is the factor applied to the floor when a chain improves.
func (c Config) floorDecay() float64 {
	return clamp(1-2*c.CoolingAdjust, 0.90, 0.9999)
}

func clamp(v, lo, hi float64) float64 {
	return min(max(v, lo), hi)
}

func clampInt(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

package router

import "github.com/kprusa/adupsim/kernel"

// Config holds the process-wide protocol defaults from the spec's
// external-interfaces section. A zero Config is not usable; construct
// one with DefaultConfig and override only the fields that need to
// change before the simulation runs.
type Config struct {
	WeightDelay       float64 `yaml:"weight_delay"`
	WeightJitter      float64 `yaml:"weight_jitter"`
	WeightPacketLoss  float64 `yaml:"weight_packet_loss"`
	WeightCongestion  float64 `yaml:"weight_congestion"`
	PacketLossScale   float64 `yaml:"packet_loss_scale"`

	HelloInterval kernel.VirtualTime `yaml:"hello_interval"`
	HoldTime      kernel.VirtualTime `yaml:"hold_time"`

	DecayPeriod kernel.VirtualTime `yaml:"decay_period"`
	DecayFactor float64            `yaml:"decay_factor"`

	ResetPeriod    kernel.VirtualTime `yaml:"reset_period"`
	ResetThreshold float64            `yaml:"reset_threshold"`

	AdvertiseSuppression float64 `yaml:"advertise_suppression"`
	AdmissionCeiling     float64 `yaml:"admission_ceiling"`

	DampingKnee   float64 `yaml:"damping_knee"`
	DampingFactor float64 `yaml:"damping_factor"`

	PerUpdateIncreaseCap          float64 `yaml:"per_update_increase_cap"`
	RapidIncreaseMultiplier       float64 `yaml:"rapid_increase_multiplier"`
	RapidIncreaseSubstituteFactor float64 `yaml:"rapid_increase_substitute_factor"`

	NewPathCap   float64 `yaml:"new_path_cap"`
	HardCeiling  float64 `yaml:"hard_ceiling"`
	StabilizationAlpha float64 `yaml:"stabilization_alpha"`
	MinStabilizationSamples int `yaml:"min_stabilization_samples"`

	OscillationWindow     int     `yaml:"oscillation_window"`
	OscillationThreshold  float64 `yaml:"oscillation_threshold"`
	AccumulationWindow    int     `yaml:"accumulation_window"`
	AccumulationThreshold int     `yaml:"accumulation_threshold"`

	MetricMutationPeriodMin kernel.VirtualTime `yaml:"metric_mutation_period_min"`
	MetricMutationPeriodMax kernel.VirtualTime `yaml:"metric_mutation_period_max"`

	HelloStaggerMin kernel.VirtualTime `yaml:"hello_stagger_min"`
	HelloStaggerMax kernel.VirtualTime `yaml:"hello_stagger_max"`

	AdvertiseStaggerMin kernel.VirtualTime `yaml:"advertise_stagger_min"`
	AdvertiseStaggerMax kernel.VirtualTime `yaml:"advertise_stagger_max"`

	UpdateDelayMin kernel.VirtualTime `yaml:"update_delay_min"`
	UpdateDelayMax kernel.VirtualTime `yaml:"update_delay_max"`

	// Exploration weights for the composite selection score (§4.4.5
	// step 6). Indexed by usage tier: unused, <3 uses, <10 uses, else.
	ExplorationUnused   float64 `yaml:"exploration_unused"`
	ExplorationLow      float64 `yaml:"exploration_low"`
	ExplorationModerate float64 `yaml:"exploration_moderate"`

	ScoreWeightCost        float64 `yaml:"score_weight_cost"`
	ScoreWeightStability   float64 `yaml:"score_weight_stability"`
	ScoreWeightCongestion  float64 `yaml:"score_weight_congestion"`
	ScoreWeightPacketLoss  float64 `yaml:"score_weight_packet_loss"`
	ScoreWeightExploration float64 `yaml:"score_weight_exploration"`

	PacketLogCapacity       int `yaml:"packet_log_capacity"`
	RouteChangeLogCapacity  int `yaml:"route_change_log_capacity"`
	CostHistoryCapacity     int `yaml:"cost_history_capacity"`
	LoopHistoryCapacity     int `yaml:"loop_history_capacity"`
}

// DefaultConfig returns the exact defaults from the spec's
// configuration section.
func DefaultConfig() Config {
	return Config{
		WeightDelay:      0.40,
		WeightJitter:     0.20,
		WeightPacketLoss: 0.25,
		WeightCongestion: 0.15,
		PacketLossScale:  10,

		HelloInterval: 5,
		HoldTime:      15,

		DecayPeriod: 120,
		DecayFactor: 0.95,

		ResetPeriod:    30,
		ResetThreshold: 60,

		AdvertiseSuppression: 70,
		AdmissionCeiling:     100,

		DampingKnee:   50,
		DampingFactor: 0.7,

		PerUpdateIncreaseCap:          1.20,
		RapidIncreaseMultiplier:       2.0,
		RapidIncreaseSubstituteFactor: 1.5,

		NewPathCap:              60,
		HardCeiling:             80,
		StabilizationAlpha:      0.5,
		MinStabilizationSamples: 3,

		OscillationWindow:     5,
		OscillationThreshold:  30,
		AccumulationWindow:    4,
		AccumulationThreshold: 3,

		MetricMutationPeriodMin: 20,
		MetricMutationPeriodMax: 40,

		HelloStaggerMin: 0.5,
		HelloStaggerMax: 2.0,

		AdvertiseStaggerMin: 1,
		AdvertiseStaggerMax: 3,

		UpdateDelayMin: 0.1,
		UpdateDelayMax: 0.5,

		ExplorationUnused:   10,
		ExplorationLow:      5,
		ExplorationModerate: 2,

		ScoreWeightCost:        0.60,
		ScoreWeightStability:   0.15,
		ScoreWeightCongestion:  0.10,
		ScoreWeightPacketLoss:  0.10,
		ScoreWeightExploration: 0.05,

		PacketLogCapacity:      100,
		RouteChangeLogCapacity: 50,
		CostHistoryCapacity:    5,
		LoopHistoryCapacity:    10,
	}
}

// WithDefaults fills every zero-valued field of c from DefaultConfig,
// so a Config loaded from a partial YAML override (or a zero-value
// Config{}) resolves to the exact spec defaults wherever the caller
// did not set a field explicitly.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()

	setF := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	setT := func(v *kernel.VirtualTime, def kernel.VirtualTime) {
		if *v == 0 {
			*v = def
		}
	}
	setI := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}

	setF(&c.WeightDelay, d.WeightDelay)
	setF(&c.WeightJitter, d.WeightJitter)
	setF(&c.WeightPacketLoss, d.WeightPacketLoss)
	setF(&c.WeightCongestion, d.WeightCongestion)
	setF(&c.PacketLossScale, d.PacketLossScale)

	setT(&c.HelloInterval, d.HelloInterval)
	setT(&c.HoldTime, d.HoldTime)

	setT(&c.DecayPeriod, d.DecayPeriod)
	setF(&c.DecayFactor, d.DecayFactor)

	setT(&c.ResetPeriod, d.ResetPeriod)
	setF(&c.ResetThreshold, d.ResetThreshold)

	setF(&c.AdvertiseSuppression, d.AdvertiseSuppression)
	setF(&c.AdmissionCeiling, d.AdmissionCeiling)

	setF(&c.DampingKnee, d.DampingKnee)
	setF(&c.DampingFactor, d.DampingFactor)

	setF(&c.PerUpdateIncreaseCap, d.PerUpdateIncreaseCap)
	setF(&c.RapidIncreaseMultiplier, d.RapidIncreaseMultiplier)
	setF(&c.RapidIncreaseSubstituteFactor, d.RapidIncreaseSubstituteFactor)

	setF(&c.NewPathCap, d.NewPathCap)
	setF(&c.HardCeiling, d.HardCeiling)
	setF(&c.StabilizationAlpha, d.StabilizationAlpha)
	setI(&c.MinStabilizationSamples, d.MinStabilizationSamples)

	setI(&c.OscillationWindow, d.OscillationWindow)
	setF(&c.OscillationThreshold, d.OscillationThreshold)
	setI(&c.AccumulationWindow, d.AccumulationWindow)
	setI(&c.AccumulationThreshold, d.AccumulationThreshold)

	setT(&c.MetricMutationPeriodMin, d.MetricMutationPeriodMin)
	setT(&c.MetricMutationPeriodMax, d.MetricMutationPeriodMax)

	setT(&c.HelloStaggerMin, d.HelloStaggerMin)
	setT(&c.HelloStaggerMax, d.HelloStaggerMax)

	setT(&c.AdvertiseStaggerMin, d.AdvertiseStaggerMin)
	setT(&c.AdvertiseStaggerMax, d.AdvertiseStaggerMax)

	setT(&c.UpdateDelayMin, d.UpdateDelayMin)
	setT(&c.UpdateDelayMax, d.UpdateDelayMax)

	setF(&c.ExplorationUnused, d.ExplorationUnused)
	setF(&c.ExplorationLow, d.ExplorationLow)
	setF(&c.ExplorationModerate, d.ExplorationModerate)

	setF(&c.ScoreWeightCost, d.ScoreWeightCost)
	setF(&c.ScoreWeightStability, d.ScoreWeightStability)
	setF(&c.ScoreWeightCongestion, d.ScoreWeightCongestion)
	setF(&c.ScoreWeightPacketLoss, d.ScoreWeightPacketLoss)
	setF(&c.ScoreWeightExploration, d.ScoreWeightExploration)

	setI(&c.PacketLogCapacity, d.PacketLogCapacity)
	setI(&c.RouteChangeLogCapacity, d.RouteChangeLogCapacity)
	setI(&c.CostHistoryCapacity, d.CostHistoryCapacity)
	setI(&c.LoopHistoryCapacity, d.LoopHistoryCapacity)

	return c
}

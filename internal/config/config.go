// Package config provides YAML configuration for the flappy world and for
// the neuroevolution run, with embedded defaults and validation.
package config

import (
	"errors"
	"fmt"

	"github.com/yaricom/goNEAT/v4/neat"
)

// ErrInvalid is returned (wrapped) when a configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// FlappyConfig contains the world parameters shared by every game variant.
// Units are world pixels and ticks.
type FlappyConfig struct {
	Field     FieldConfig     `yaml:"field"`
	Bird      BirdConfig      `yaml:"bird"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Pipes     PipesConfig     `yaml:"pipes"`
	Collision CollisionConfig `yaml:"collision"`
	Rewards   RewardsConfig   `yaml:"rewards"`
}

// FieldConfig is the playable area.
type FieldConfig struct {
	Width    int `yaml:"width"`
	Height   int `yaml:"height"`
	GroundY  int `yaml:"ground_y"`  // birds touching this line are eliminated
	CeilingY int `yaml:"ceiling_y"` // birds above this line are eliminated
}

// BirdConfig is the starting position and sprite size of a bird.
type BirdConfig struct {
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
}

// PhysicsConfig drives the displacement law of the bird.
type PhysicsConfig struct {
	JumpVelocity     float64 `yaml:"jump_velocity"`
	Acceleration     float64 `yaml:"acceleration"`      // coefficient of ticks^2
	TerminalVelocity float64 `yaml:"terminal_velocity"` // per-tick displacement cap
	RiseBoost        float64 `yaml:"rise_boost"`        // extra lift while rising
	MaxRotation      float64 `yaml:"max_rotation"`
	RotationVelocity float64 `yaml:"rotation_velocity"`
	MinTilt          float64 `yaml:"min_tilt"`
	TiltHold         float64 `yaml:"tilt_hold"` // keep nose up while within this distance below the jump height
}

// PipesConfig is the obstacle geometry and its generator.
type PipesConfig struct {
	Gap          int     `yaml:"gap"`
	Velocity     float64 `yaml:"velocity"`
	Width        int     `yaml:"width"`
	SpriteHeight int     `yaml:"sprite_height"`
	GapMin       int     `yaml:"gap_min"` // inclusive
	GapMax       int     `yaml:"gap_max"` // exclusive
	InitialX     float64 `yaml:"initial_x"`
	SpawnX       float64 `yaml:"spawn_x"`
}

// Collision modes.
const (
	CollisionMask = "mask"
	CollisionBox  = "box"
)

// CollisionConfig selects the collision oracle.
type CollisionConfig struct {
	Mode string `yaml:"mode"`
}

// RewardsConfig is the fitness schedule of controller-driven birds.
type RewardsConfig struct {
	Survival  float64 `yaml:"survival"`
	Pass      float64 `yaml:"pass"`
	Collision float64 `yaml:"collision"`
}

// EvolutionConfig contains the neuroevolution run parameters.
type EvolutionConfig struct {
	PopulationSize   int     `yaml:"population_size"`
	Generations      int     `yaml:"generations"`
	FitnessThreshold float64 `yaml:"fitness_threshold"` // 0 disables early stop
	ScoreCap         int     `yaml:"score_cap"`         // episode ends once score exceeds it
	MaxTicks         int     `yaml:"max_ticks"`         // 0 = unlimited

	Network    NetworkConfig    `yaml:"network"`
	Mutation   MutationConfig   `yaml:"mutation"`
	Mating     MatingConfig     `yaml:"mating"`
	Speciation SpeciationConfig `yaml:"speciation"`
}

// NetworkConfig shapes the initial genomes and the jump decision.
type NetworkConfig struct {
	OutputActivation string  `yaml:"output_activation"` // tanh | sigmoid
	HiddenActivation string  `yaml:"hidden_activation"`
	WeightRange      float64 `yaml:"weight_range"` // initial weights in [-r, r]
	JumpThreshold    float64 `yaml:"jump_threshold"`
}

// MutationConfig holds per-offspring mutation probabilities.
type MutationConfig struct {
	WeightPower      float64 `yaml:"weight_power"`
	LinkWeightsProb  float64 `yaml:"link_weights_prob"`
	AddNodeProb      float64 `yaml:"add_node_prob"`
	AddLinkProb      float64 `yaml:"add_link_prob"`
	ToggleEnableProb float64 `yaml:"toggle_enable_prob"`
	WeightClamp      float64 `yaml:"weight_clamp"`
}

// MatingConfig decides between cloning and crossover.
type MatingConfig struct {
	MutateOnlyProb float64 `yaml:"mutate_only_prob"`
	MateOnlyProb   float64 `yaml:"mate_only_prob"`
}

// SpeciationConfig controls species formation and survival.
type SpeciationConfig struct {
	CompatThreshold float64 `yaml:"compat_threshold"`
	DisjointCoeff   float64 `yaml:"disjoint_coeff"`
	ExcessCoeff     float64 `yaml:"excess_coeff"`
	MutdiffCoeff    float64 `yaml:"mutdiff_coeff"`
	DropOffAge      int     `yaml:"drop_off_age"`
	SurvivalThresh  float64 `yaml:"survival_thresh"`
	Elitism         int     `yaml:"elitism"` // champions copied unchanged per species
}

// NEATOptions converts the evolution settings into goNEAT options.
func (c EvolutionConfig) NEATOptions() *neat.Options {
	return &neat.Options{
		WeightMutPower:         c.Mutation.WeightPower,
		MutateLinkWeightsProb:  c.Mutation.LinkWeightsProb,
		MutateAddNodeProb:      c.Mutation.AddNodeProb,
		MutateAddLinkProb:      c.Mutation.AddLinkProb,
		MutateToggleEnableProb: c.Mutation.ToggleEnableProb,
		MutateOnlyProb:         c.Mating.MutateOnlyProb,
		MateOnlyProb:           c.Mating.MateOnlyProb,
		CompatThreshold:        c.Speciation.CompatThreshold,
		DisjointCoeff:          c.Speciation.DisjointCoeff,
		ExcessCoeff:            c.Speciation.ExcessCoeff,
		MutdiffCoeff:           c.Speciation.MutdiffCoeff,
		DropOffAge:             c.Speciation.DropOffAge,
		SurvivalThresh:         c.Speciation.SurvivalThresh,
		PopSize:                c.PopulationSize,
	}
}

// Validate checks the world parameters.
func (c FlappyConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Field.Width > 0 && c.Field.Height > 0, "field: size must be positive, got %dx%d", c.Field.Width, c.Field.Height)
	check(c.Field.GroundY > c.Field.CeilingY, "field: ground_y %d must be below ceiling_y %d", c.Field.GroundY, c.Field.CeilingY)
	check(c.Bird.Width > 0 && c.Bird.Height > 0, "bird: size must be positive")
	check(c.Physics.TerminalVelocity > 0, "physics: terminal_velocity must be positive")
	check(c.Pipes.Gap > 0, "pipes: gap must be positive")
	check(c.Pipes.Width > 0, "pipes: width must be positive")
	check(c.Pipes.Velocity > 0, "pipes: velocity must be positive")
	check(c.Pipes.SpriteHeight > 0, "pipes: sprite_height must be positive")
	check(c.Pipes.GapMin < c.Pipes.GapMax, "pipes: gap_min %d must be below gap_max %d", c.Pipes.GapMin, c.Pipes.GapMax)
	check(c.Pipes.GapMin >= c.Field.CeilingY, "pipes: gap_min %d must not be above ceiling_y %d", c.Pipes.GapMin, c.Field.CeilingY)
	check(c.Pipes.GapMax+c.Pipes.Gap <= c.Field.GroundY, "pipes: gap_max + gap must stay above the ground")
	check(c.Collision.Mode == CollisionMask || c.Collision.Mode == CollisionBox,
		"collision: unknown mode %q", c.Collision.Mode)

	if len(errs) > 0 {
		return fmt.Errorf("%w: flappy: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Validate checks the evolution parameters.
func (c EvolutionConfig) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}
	prob := func(p float64) bool { return p >= 0 && p <= 1 }

	check(c.PopulationSize > 0, "population_size must be positive, got %d", c.PopulationSize)
	check(c.Generations >= 0, "generations must not be negative")
	check(c.ScoreCap >= 0, "score_cap must not be negative")
	check(c.MaxTicks >= 0, "max_ticks must not be negative")
	check(c.Network.OutputActivation == "tanh" || c.Network.OutputActivation == "sigmoid",
		"network: unknown output_activation %q", c.Network.OutputActivation)
	check(c.Network.WeightRange > 0, "network: weight_range must be positive")
	check(prob(c.Mutation.LinkWeightsProb) && prob(c.Mutation.AddNodeProb) &&
		prob(c.Mutation.AddLinkProb) && prob(c.Mutation.ToggleEnableProb),
		"mutation: probabilities must be within [0, 1]")
	check(prob(c.Mating.MutateOnlyProb) && prob(c.Mating.MateOnlyProb), "mating: probabilities must be within [0, 1]")
	check(c.Speciation.CompatThreshold > 0, "speciation: compat_threshold must be positive")
	check(c.Speciation.SurvivalThresh > 0 && c.Speciation.SurvivalThresh <= 1, "speciation: survival_thresh must be within (0, 1]")
	check(c.Speciation.Elitism >= 0, "speciation: elitism must not be negative")

	if len(errs) > 0 {
		return fmt.Errorf("%w: evolution: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

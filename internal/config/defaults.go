package config

import (
	_ "embed"
)

//go:embed defaults/flappy.yaml
var defaultFlappyYAML []byte

//go:embed defaults/evolution.yaml
var defaultEvolutionYAML []byte

// DefaultFlappyConfig returns the built-in world parameters.
func DefaultFlappyConfig() FlappyConfig {
	return FlappyConfig{
		Field: FieldConfig{
			Width:    500,
			Height:   800,
			GroundY:  730,
			CeilingY: 0,
		},
		Bird: BirdConfig{
			X:      230,
			Y:      350,
			Width:  68,
			Height: 48,
		},
		Physics: PhysicsConfig{
			JumpVelocity:     -10.5,
			Acceleration:     1.5,
			TerminalVelocity: 16,
			RiseBoost:        2,
			MaxRotation:      25,
			RotationVelocity: 20,
			MinTilt:          -90,
			TiltHold:         50,
		},
		Pipes: PipesConfig{
			Gap:          200,
			Velocity:     5,
			Width:        104,
			SpriteHeight: 640,
			GapMin:       50,
			GapMax:       450,
			InitialX:     600,
			SpawnX:       600,
		},
		Collision: CollisionConfig{Mode: CollisionMask},
		Rewards: RewardsConfig{
			Survival:  0.1,
			Pass:      5,
			Collision: -1,
		},
	}
}

// DefaultEvolutionConfig returns the built-in neuroevolution parameters.
func DefaultEvolutionConfig() EvolutionConfig {
	return EvolutionConfig{
		PopulationSize: 50,
		Generations:    50,
		ScoreCap:       50,
		Network: NetworkConfig{
			OutputActivation: "tanh",
			HiddenActivation: "tanh",
			WeightRange:      1.0,
			JumpThreshold:    0.5,
		},
		Mutation: MutationConfig{
			WeightPower:      2.5,
			LinkWeightsProb:  0.8,
			AddNodeProb:      0.03,
			AddLinkProb:      0.05,
			ToggleEnableProb: 0.01,
			WeightClamp:      8.0,
		},
		Mating: MatingConfig{
			MutateOnlyProb: 0.25,
			MateOnlyProb:   0.2,
		},
		Speciation: SpeciationConfig{
			CompatThreshold: 3.0,
			DisjointCoeff:   1.0,
			ExcessCoeff:     1.0,
			MutdiffCoeff:    0.4,
			DropOffAge:      15,
			SurvivalThresh:  0.2,
			Elitism:         1,
		},
	}
}

// GetDefaultYAML returns the embedded default YAML for a config name.
func GetDefaultYAML(name string) []byte {
	switch name {
	case "flappy":
		return defaultFlappyYAML
	case "evolution":
		return defaultEvolutionYAML
	default:
		return nil
	}
}

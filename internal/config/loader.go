package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadFlappy loads the world configuration.
// Search order: customPath -> ~/.flappy/configs/flappy.yaml -> ./configs/flappy.yaml -> embedded default
func LoadFlappy(customPath string) (FlappyConfig, error) {
	cfg := DefaultFlappyConfig()
	if err := load("flappy", customPath, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadEvolution loads the neuroevolution configuration.
// Search order: customPath -> ~/.flappy/configs/evolution.yaml -> ./configs/evolution.yaml -> embedded default
func LoadEvolution(customPath string) (EvolutionConfig, error) {
	cfg := DefaultEvolutionConfig()
	if err := load("evolution", customPath, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// load decodes the first available source over out, which already holds the
// hardcoded defaults so partial files only override what they name.
func load(name, customPath string, out any) error {
	// An explicit path must exist and parse
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return nil
	}

	filename := name + ".yaml"
	for _, path := range []string{userConfigPath(filename), filepath.Join("configs", filename)} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		return nil
	}

	if err := yaml.Unmarshal(GetDefaultYAML(name), out); err != nil {
		return fmt.Errorf("failed to parse embedded %s config: %w", name, err)
	}
	return nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".flappy", "configs", filename)
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// UserConfig is the operator-editable configuration file.
type UserConfig struct {
	// APIKey authenticates against the LLM service. The
	// COMPLIANCEGEN_API_KEY / ANTHROPIC_API_KEY environment variables take
	// precedence over the file value.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier sent with every invocation.
	Model string `yaml:"model"`

	// BaseURL overrides the LLM endpoint, mainly for tests and proxies.
	BaseURL string `yaml:"base_url"`

	// RegistryPath is the SQLite file tracking generated documents.
	// Empty disables the registry.
	RegistryPath string `yaml:"registry_path"`

	// Generation overrides the default pipeline tunables when present.
	Generation *GenerationConfig `yaml:"generation"`
}

// DefaultUserConfig returns the configuration used when no file exists.
func DefaultUserConfig() UserConfig {
	return UserConfig{
		Model:   "claude-sonnet-4-20250514",
		BaseURL: "https://api.anthropic.com/v1",
	}
}

// LoadUserConfig reads a YAML config file and applies environment overrides.
// A missing file is not an error; defaults are returned.
func LoadUserConfig(path string) (UserConfig, error) {
	cfg := DefaultUserConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// fall through to env overrides
		case err != nil:
			return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if key := os.Getenv("COMPLIANCEGEN_API_KEY"); key != "" {
		cfg.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.APIKey = key
	}

	if cfg.Model == "" {
		cfg.Model = DefaultUserConfig().Model
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultUserConfig().BaseURL
	}

	return cfg, nil
}

// GenerationOrDefault returns the file's generation settings or the defaults.
func (c UserConfig) GenerationOrDefault() GenerationConfig {
	if c.Generation != nil {
		return *c.Generation
	}
	return DefaultGenerationConfig()
}

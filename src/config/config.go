package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config contains backend server and suggestion behavior configuration
type Config struct {
	Backend BackendConfig `yaml:"backend"`

	// Suggest holds the global suggestion flags; Languages overrides them
	// per language scope (keyed by language id, e.g. "typescript").
	Suggest   SuggestConfig            `yaml:"suggest,omitempty"`
	Languages map[string]SuggestConfig `yaml:"languages,omitempty"`
}

// BackendConfig contains configuration for the backend server process
type BackendConfig struct {
	Command    string   `yaml:"command"`
	Args       []string `yaml:"args,omitempty"`
	WorkingDir string   `yaml:"working_dir,omitempty"`
}

// SuggestConfig mirrors the suggest.* configuration keys. Fields are
// pointers so an absent key falls through to the scope below it.
type SuggestConfig struct {
	CompleteFunctionCalls *bool `yaml:"completeFunctionCalls,omitempty"`
	Names                 *bool `yaml:"names,omitempty"`
	Paths                 *bool `yaml:"paths,omitempty"`
	AutoImports           *bool `yaml:"autoImports,omitempty"`
	ImportStatements      *bool `yaml:"importStatements,omitempty"`
}

// CompletionConfiguration is the immutable five-flag snapshot resolved for
// one document scope. Built fresh per request, never mutated.
type CompletionConfiguration struct {
	UseCodeSnippetsOnMethodSuggest bool
	NameSuggestions                bool
	PathSuggestions                bool
	AutoImportSuggestions          bool
	ImportStatementSuggestions     bool
}

// DefaultCompletionConfiguration returns the documented defaults:
// completeFunctionCalls off, everything else on.
func DefaultCompletionConfiguration() CompletionConfiguration {
	return CompletionConfiguration{
		UseCodeSnippetsOnMethodSuggest: false,
		NameSuggestions:                true,
		PathSuggestions:                true,
		AutoImportSuggestions:          true,
		ImportStatementSuggestions:     true,
	}
}

// SuggestFor resolves the completion configuration snapshot for a language
// scope: defaults, then global suggest keys, then the language override.
func (c *Config) SuggestFor(languageID string) CompletionConfiguration {
	cfg := DefaultCompletionConfiguration()
	cfg.apply(c.Suggest)
	if lang, ok := c.Languages[languageID]; ok {
		cfg.apply(lang)
	}
	return cfg
}

func (cfg *CompletionConfiguration) apply(s SuggestConfig) {
	if s.CompleteFunctionCalls != nil {
		cfg.UseCodeSnippetsOnMethodSuggest = *s.CompleteFunctionCalls
	}
	if s.Names != nil {
		cfg.NameSuggestions = *s.Names
	}
	if s.Paths != nil {
		cfg.PathSuggestions = *s.Paths
	}
	if s.AutoImports != nil {
		cfg.AutoImportSuggestions = *s.AutoImports
	}
	if s.ImportStatements != nil {
		cfg.ImportStatementSuggestions = *s.ImportStatements
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Backend.Command == "" {
		return fmt.Errorf("backend command is required")
	}
	return nil
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".tsserver-gateway", "config.yaml")
}

// GetDefaultConfig returns a default configuration
func GetDefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			Command: "tsserver",
			Args:    []string{"--useInferredProjectPerProjectRoot"},
		},
	}
}

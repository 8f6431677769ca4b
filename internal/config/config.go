package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	General struct {
		DefaultAI string `koanf:"default_ai"`
		BoardFile string `koanf:"board_file"`
	} `koanf:"general"`

	Board struct {
		SimilarityStrategy  string  `koanf:"similarity_strategy"`
		SimilarityThreshold float64 `koanf:"similarity_threshold"`
		SimhashMaxDistance  int     `koanf:"simhash_max_distance"`
		MergePolicy         string  `koanf:"merge_policy"`
	} `koanf:"board"`

	Transcription struct {
		Binary         string `koanf:"binary"`
		ModelPath      string `koanf:"model_path"`
		Language       string `koanf:"language"`
		TimeoutSeconds int    `koanf:"timeout_seconds"`
	} `koanf:"transcription"`

	AI map[string]map[string]interface{} `koanf:"ai"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"general.default_ai":            "ollama",
		"general.board_file":            "board.json",
		"board.similarity_strategy":     "overlap",
		"board.similarity_threshold":    0.6,
		"board.simhash_max_distance":    10,
		"board.merge_policy":            "longer",
		"transcription.binary":          "whisper-cli",
		"transcription.language":        "en",
		"transcription.timeout_seconds": 600,
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		defaultPaths := []string{"./scrumbot.toml", "$HOME/.scrumbot.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix SCRUMBOT_
	k.Load(env.Provider("SCRUMBOT_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(s), "_", ".", -1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	// Create sample configuration
	sampleConfig := `# ScrumBot Configuration

[general]
default_ai = "ollama"
board_file = "board.json"

[board]
similarity_strategy = "overlap"   # overlap | simhash
similarity_threshold = 0.6
merge_policy = "longer"           # longer | newer | keep

[transcription]
binary = "whisper-cli"
model_path = "models/ggml-base.en.bin"
language = "en"

[ai.ollama]
base_url = "http://localhost:11434"
model = "llama3"

[ai.openai]
api_key = "your-openai-api-key"
model = "gpt-4o-mini"
temperature = 0.2
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.General.DefaultAI == "" {
		return fmt.Errorf("default AI provider is required")
	}
	if config.General.BoardFile == "" {
		return fmt.Errorf("board file path is required")
	}

	switch config.Board.SimilarityStrategy {
	case "", "overlap", "simhash":
	default:
		return fmt.Errorf("unknown similarity strategy %q", config.Board.SimilarityStrategy)
	}
	if t := config.Board.SimilarityThreshold; t < 0 || t > 1 {
		return fmt.Errorf("similarity threshold must be within (0, 1], got %v", t)
	}
	switch config.Board.MergePolicy {
	case "", "longer", "newer", "keep":
	default:
		return fmt.Errorf("unknown merge policy %q", config.Board.MergePolicy)
	}

	switch config.General.DefaultAI {
	case "ollama":
		// Needs no credentials; a missing [ai.ollama] section falls back to
		// the connector's base_url and model defaults.
	case "openai", "gemini", "claude":
		aiConfig, ok := config.AI[config.General.DefaultAI]
		if !ok {
			return fmt.Errorf("configuration for AI provider %s not found", config.General.DefaultAI)
		}
		if _, ok := aiConfig["api_key"]; !ok {
			return fmt.Errorf("%s api_key is required", config.General.DefaultAI)
		}
	default:
		return fmt.Errorf("unknown AI provider %q", config.General.DefaultAI)
	}

	return nil
}

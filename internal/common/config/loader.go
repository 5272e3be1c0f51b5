// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	loadEnvFile()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SERPAPI_KEY
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)
	overrideEmptyConfig(&cfg)

	return &cfg, nil
}

func loadEnvFile() {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}

	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// findProjectRoot walks up directories looking for go.mod.
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		val := v.Get(key)

		if strVal, ok := val.(string); ok {
			if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
				expanded := os.ExpandEnv(strVal)
				if expanded != strVal && expanded != "" {
					v.Set(key, expanded)
				}
			}
		}
	}
}

// overrideEmptyConfig fills credentials from well-known environment
// variables when the YAML left them empty. Missing credentials are NOT an
// error: the pipeline degrades to its local fallbacks.
func overrideEmptyConfig(cfg *Config) {
	if cfg.Providers.Shopping.APIKey == "" {
		if val := os.Getenv("SERPAPI_KEY"); val != "" {
			cfg.Providers.Shopping.APIKey = val
		}
	}
	if cfg.Providers.GenAI.APIKey == "" {
		if val := os.Getenv("GENAI_API_KEY"); val != "" {
			cfg.Providers.GenAI.APIKey = val
		}
	}
	if cfg.Providers.GenAI.APIKey == "" {
		if val := os.Getenv("TOGETHER_API_KEY"); val != "" {
			cfg.Providers.GenAI.APIKey = val
		}
	}
	if cfg.Session.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Session.Redis.Password = val
		}
	}
}

// applyDefaults sets default values for optional configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "shopping-agent"
	}
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":5000"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10000
	}

	if cfg.Providers.Shopping.BaseURL == "" {
		cfg.Providers.Shopping.BaseURL = "https://serpapi.com/search"
	}
	if cfg.Providers.Shopping.Country == "" {
		cfg.Providers.Shopping.Country = "in"
	}
	if cfg.Providers.Shopping.Language == "" {
		cfg.Providers.Shopping.Language = "en"
	}
	if cfg.Providers.Shopping.MaxResults == 0 {
		cfg.Providers.Shopping.MaxResults = 10
	}
	if cfg.Providers.Shopping.Timeout == 0 {
		cfg.Providers.Shopping.Timeout = 5000
	}

	if cfg.Providers.GenAI.BaseURL == "" {
		cfg.Providers.GenAI.BaseURL = "https://api.together.xyz"
	}
	if cfg.Providers.GenAI.Model == "" {
		cfg.Providers.GenAI.Model = "meta-llama/Llama-2-70b-chat-hf"
	}
	if cfg.Providers.GenAI.MaxTokens == 0 {
		cfg.Providers.GenAI.MaxTokens = 150
	}
	if cfg.Providers.GenAI.Timeout == 0 {
		cfg.Providers.GenAI.Timeout = 8000
	}

	if cfg.Search.MaxCandidates == 0 {
		cfg.Search.MaxCandidates = 20
	}
	if cfg.Search.DisplayCount == 0 {
		cfg.Search.DisplayCount = 8
	}
	if cfg.Search.KeywordWeight == 0 {
		cfg.Search.KeywordWeight = 0.55
	}
	if cfg.Search.PriceFitWeight == 0 {
		cfg.Search.PriceFitWeight = 0.25
	}
	if cfg.Search.RatingsWeight == 0 {
		cfg.Search.RatingsWeight = 0.20
	}
	if cfg.Search.FilterThreshold == 0 {
		cfg.Search.FilterThreshold = 6
	}
	if cfg.Search.FilterPriceRatio == 0 {
		cfg.Search.FilterPriceRatio = 3.0
	}

	if cfg.Session.TTL == 0 {
		cfg.Session.TTL = 1800000 // 30 minutes
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

// GetDuration converts milliseconds from config to time.Duration.
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

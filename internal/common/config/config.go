// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Search    SearchConfig    `mapstructure:"search"`
	Session   SessionConfig   `mapstructure:"session"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// ProvidersConfig holds settings for external API integrations.
type ProvidersConfig struct {
	Shopping ShoppingProviderConfig `mapstructure:"shopping"`
	GenAI    GenAIProviderConfig    `mapstructure:"genai"`
}

// ShoppingProviderConfig configures the product-search provider
// (SerpAPI-compatible Google Shopping endpoint).
type ShoppingProviderConfig struct {
	BaseURL    string `mapstructure:"base_url"`
	APIKey     string `mapstructure:"api_key"`
	Country    string `mapstructure:"country"`
	Language   string `mapstructure:"language"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    int    `mapstructure:"timeout"` // milliseconds
}

// GenAIProviderConfig configures the language-model provider
// (chat-completions compatible endpoint).
type GenAIProviderConfig struct {
	BaseURL     string  `mapstructure:"base_url"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
	Timeout     int     `mapstructure:"timeout"` // milliseconds
}

// SearchConfig holds the orchestration and ranking knobs. Keeping these in
// configuration rather than embedded constants keeps the engine testable
// with deterministic fixtures.
type SearchConfig struct {
	MaxCandidates    int     `mapstructure:"max_candidates"`
	DisplayCount     int     `mapstructure:"display_count"`
	KeywordWeight    float64 `mapstructure:"keyword_weight"`
	PriceFitWeight   float64 `mapstructure:"price_fit_weight"`
	RatingsWeight    float64 `mapstructure:"ratings_weight"`
	FilterThreshold  int     `mapstructure:"filter_threshold"`
	FilterPriceRatio float64 `mapstructure:"filter_price_ratio"`
}

// SessionConfig holds chat session store settings.
type SessionConfig struct {
	TTL   int         `mapstructure:"ttl"` // milliseconds
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

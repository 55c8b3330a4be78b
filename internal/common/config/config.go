// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct. It is built once at
// startup, validated, and treated as immutable afterwards.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Scoring  ScoringConfig  `mapstructure:"scoring"`
	Lexical  LexicalConfig  `mapstructure:"lexical"`
	Impact   ImpactConfig   `mapstructure:"impact"`
	Semantic SemanticConfig `mapstructure:"semantic"`
	Taxonomy TaxonomyConfig `mapstructure:"taxonomy"`
	Runtime  RuntimeConfig  `mapstructure:"runtime"`
	Database DatabaseConfig `mapstructure:"database"`
	Services ServicesConfig `mapstructure:"services"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// --- Core App Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsPort int    `mapstructure:"metrics_port"`
}

// ScoringConfig holds the fusion weights and bonus factors. Every field is
// independently overridable; zero values fall back to documented defaults.
type ScoringConfig struct {
	VectorWeight   float64 `mapstructure:"vector_weight"`
	LexicalWeight  float64 `mapstructure:"lexical_weight"`
	SemanticWeight float64 `mapstructure:"semantic_weight"`

	MandatoryBonusWeight    float64 `mapstructure:"mandatory_bonus_weight"`
	OptionalBonusWeight     float64 `mapstructure:"optional_bonus_weight"`
	MandatoryStrengthFactor float64 `mapstructure:"mandatory_strength_factor"`

	ImpactWeight       float64 `mapstructure:"impact_weight"`
	ImpactMinRelevance float64 `mapstructure:"impact_min_relevance"`
	ImpactCalibration  string  `mapstructure:"impact_calibration"`

	TopK int `mapstructure:"top_k"`
}

// LexicalConfig holds BM25 parameters.
type LexicalConfig struct {
	K1        float64 `mapstructure:"k1"`
	B         float64 `mapstructure:"b"`
	KStrategy string  `mapstructure:"k_strategy"` // median, mean or fixed
	FixedK    float64 `mapstructure:"fixed_k"`
	MinK      float64 `mapstructure:"min_k"`
}

// ImpactConfig holds impact-gate parameters.
type ImpactConfig struct {
	SemanticRelevanceThreshold float64 `mapstructure:"semantic_relevance_threshold"`
	SemanticFallbackEnabled    bool    `mapstructure:"semantic_fallback_enabled"`
}

// SemanticConfig holds cross-encoder orchestration parameters.
type SemanticConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	Calibration     string `mapstructure:"calibration"` // none, minmax or zscore
	BatchSize       int    `mapstructure:"batch_size"`
	TimeoutMS       int    `mapstructure:"timeout_ms"`
	IncludeSections bool   `mapstructure:"include_sections"`
}

// TaxonomyConfig points at the skill taxonomy file.
type TaxonomyConfig struct {
	Path         string `mapstructure:"path"`
	CacheEnabled bool   `mapstructure:"cache_enabled"`
	CacheTTLMS   int    `mapstructure:"cache_ttl_ms"`
}

// RuntimeConfig bounds per-pass concurrency.
type RuntimeConfig struct {
	MaxConcurrency int `mapstructure:"max_concurrency"`
	PassTimeoutMS  int `mapstructure:"pass_timeout_ms"`
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses  []string `mapstructure:"addresses"`
	Username   string   `mapstructure:"username"`
	Password   string   `mapstructure:"password"`
	SSLEnabled bool     `mapstructure:"ssl_enabled"`
	URL        string   `mapstructure:"url"` // Single URL for backwards compatibility
	Index      string   `mapstructure:"index"`
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServicesConfig holds the external model service endpoints.
type ServicesConfig struct {
	CrossEncoder struct {
		BaseURL   string `mapstructure:"base_url"`
		Model     string `mapstructure:"model"`
		TimeoutMS int    `mapstructure:"timeout_ms"`
	} `mapstructure:"cross_encoder"`

	Embedding struct {
		BaseURL   string `mapstructure:"base_url"`
		Model     string `mapstructure:"model"`
		TimeoutMS int    `mapstructure:"timeout_ms"`
	} `mapstructure:"embedding"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

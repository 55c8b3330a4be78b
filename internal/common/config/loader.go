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

	// Base config
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath("../../configs")
	viper.AddConfigPath(".")

	// Enable ENV override like SCORING_VECTOR_WEIGHT
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	// Environment-specific overlay
	envConfigFile := fmt.Sprintf("config.%s", env)
	viper.SetConfigName(envConfigFile)
	_ = viper.MergeInConfig() // ignore error if not found

	expandEnvVars(viper.GetViper())

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

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

// Find project root by looking for go.mod
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

// expandEnvVars resolves ${VAR} placeholders in string values.
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

// applyDefaults sets the documented default for every unset numeric knob.
func applyDefaults(cfg *Config) {
	// Fusion weights
	if cfg.Scoring.VectorWeight == 0 && cfg.Scoring.LexicalWeight == 0 && cfg.Scoring.SemanticWeight == 0 {
		cfg.Scoring.VectorWeight = 0.4
		cfg.Scoring.LexicalWeight = 0.3
		cfg.Scoring.SemanticWeight = 0.3
	}
	if cfg.Scoring.MandatoryBonusWeight == 0 {
		cfg.Scoring.MandatoryBonusWeight = 0.10
	}
	if cfg.Scoring.OptionalBonusWeight == 0 {
		cfg.Scoring.OptionalBonusWeight = 0.05
	}
	if cfg.Scoring.MandatoryStrengthFactor == 0 {
		cfg.Scoring.MandatoryStrengthFactor = 0.15
	}
	if cfg.Scoring.ImpactWeight == 0 {
		cfg.Scoring.ImpactWeight = 0.08
	}
	if cfg.Scoring.ImpactCalibration == "" {
		cfg.Scoring.ImpactCalibration = "percentile"
	}
	if cfg.Scoring.TopK == 0 {
		cfg.Scoring.TopK = 10
	}

	// BM25
	if cfg.Lexical.K1 == 0 {
		cfg.Lexical.K1 = 1.5
	}
	if cfg.Lexical.B == 0 {
		cfg.Lexical.B = 0.75
	}
	if cfg.Lexical.KStrategy == "" {
		cfg.Lexical.KStrategy = "median"
	}
	if cfg.Lexical.MinK == 0 {
		cfg.Lexical.MinK = 1.0
	}

	// Impact gate
	if cfg.Impact.SemanticRelevanceThreshold == 0 {
		cfg.Impact.SemanticRelevanceThreshold = 0.78
	}

	// Semantic reranker
	if cfg.Semantic.Calibration == "" {
		cfg.Semantic.Calibration = "minmax"
	}
	if cfg.Semantic.BatchSize == 0 {
		cfg.Semantic.BatchSize = 8
	}
	if cfg.Semantic.TimeoutMS == 0 {
		cfg.Semantic.TimeoutMS = 30000
	}

	// Runtime
	if cfg.Runtime.MaxConcurrency == 0 {
		cfg.Runtime.MaxConcurrency = 8
	}
	if cfg.Runtime.PassTimeoutMS == 0 {
		cfg.Runtime.PassTimeoutMS = 120000
	}

	// Taxonomy cache
	if cfg.Taxonomy.CacheTTLMS == 0 {
		cfg.Taxonomy.CacheTTLMS = 3600000
	}

	// Database defaults
	if cfg.Database.Postgres.MaxConnections == 0 {
		cfg.Database.Postgres.MaxConnections = 25
	}
	if cfg.Database.Postgres.MaxIdle == 0 {
		cfg.Database.Postgres.MaxIdle = 5
	}
	if cfg.Database.Postgres.SSLMode == "" {
		cfg.Database.Postgres.SSLMode = "disable"
	}
	if cfg.Database.Elasticsearch.URL == "" && len(cfg.Database.Elasticsearch.Addresses) > 0 {
		cfg.Database.Elasticsearch.URL = cfg.Database.Elasticsearch.Addresses[0]
	}
	if cfg.Database.Elasticsearch.Index == "" {
		cfg.Database.Elasticsearch.Index = "candidate-vectors"
	}

	// Service timeouts
	if cfg.Services.CrossEncoder.TimeoutMS == 0 {
		cfg.Services.CrossEncoder.TimeoutMS = 30000
	}
	if cfg.Services.Embedding.TimeoutMS == 0 {
		cfg.Services.Embedding.TimeoutMS = 15000
	}

	// Metrics
	if cfg.App.MetricsPort == 0 {
		cfg.App.MetricsPort = 9102
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
}

// validateConfig validates critical configuration fields. Weights must be
// non-negative; a zero weight sum is handled at fusion time by equal
// redistribution, so it is not rejected here.
func validateConfig(cfg *Config) error {
	if cfg.Scoring.VectorWeight < 0 || cfg.Scoring.LexicalWeight < 0 || cfg.Scoring.SemanticWeight < 0 {
		return fmt.Errorf("scoring weights must be non-negative")
	}
	if cfg.Scoring.ImpactWeight < 0 {
		return fmt.Errorf("scoring.impact_weight must be non-negative")
	}
	if cfg.Scoring.ImpactMinRelevance < 0 || cfg.Scoring.ImpactMinRelevance > 1 {
		return fmt.Errorf("scoring.impact_min_relevance must be in [0,1]")
	}
	if cfg.Lexical.K1 <= 0 {
		return fmt.Errorf("lexical.k1 must be positive")
	}
	if cfg.Lexical.B < 0 || cfg.Lexical.B > 1 {
		return fmt.Errorf("lexical.b must be in [0,1]")
	}
	if cfg.Impact.SemanticRelevanceThreshold <= 0 || cfg.Impact.SemanticRelevanceThreshold > 1 {
		return fmt.Errorf("impact.semantic_relevance_threshold must be in (0,1]")
	}
	if cfg.Runtime.MaxConcurrency < 1 {
		return fmt.Errorf("runtime.max_concurrency must be at least 1")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}

// cmd/ranker/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	_ "net/http/pprof"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"profile-ranker/internal/clients/crossencoder"
	"profile-ranker/internal/clients/embedding"
	"profile-ranker/internal/clients/vectorsearch"
	"profile-ranker/internal/common/config"
	"profile-ranker/internal/common/database"
	"profile-ranker/internal/common/logger"
	"profile-ranker/internal/common/observability"
	"profile-ranker/internal/models"
	"profile-ranker/internal/ranking/fusion"
	"profile-ranker/internal/ranking/semantic"
	"profile-ranker/internal/ranking/taxonomy"
	"profile-ranker/internal/storage/features"
	"profile-ranker/pkg/schemas"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	inputPath := flag.String("input", "", "path to the rank request JSON (defaults to stdin)")
	outputPath := flag.String("output", "", "path for the response JSON (defaults to stdout)")
	serveMetrics := flag.Bool("metrics", false, "expose /metrics while the pass runs")
	flag.Parse()

	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting ranker...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("ranker")
	defer obs.Shutdown()

	if *serveMetrics {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.App.MetricsPort)
			http.Handle("/metrics", promhttp.Handler())
			zapLog.Info("metrics server listening", zap.String("addr", addr))
			if err := http.ListenAndServe(addr, nil); err != nil {
				zapLog.Warn("metrics server stopped", zap.Error(err))
			}
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Runtime.PassTimeoutMS))
	defer cancel()

	// --- Load taxonomy ---
	tax, err := taxonomy.Load(cfg.Taxonomy.Path)
	if err != nil {
		zapLog.Fatal("taxonomy load failed", zap.Error(err))
	}
	zapLog.Info("Taxonomy loaded", zap.String("path", cfg.Taxonomy.Path))

	deps := fusion.Deps{
		Taxonomy: tax,
		Logger:   log,
	}

	// --- Init Redis skill cache (optional) ---
	if cfg.Taxonomy.CacheEnabled {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Warn("redis unavailable, skill cache disabled", zap.Error(err))
		} else {
			defer redis.Close()
			cache := taxonomy.NewCache(redis.Client, config.GetDuration(cfg.Taxonomy.CacheTTLMS), log)
			deps.Resolver = &taxonomy.Resolver{Taxonomy: tax, Cache: cache}
			zapLog.Info("Redis connected successfully")
		}
	}

	// --- Init model service clients (optional) ---
	var embedClient *embedding.Client
	if cfg.Services.Embedding.BaseURL != "" {
		embedClient = embedding.New(
			cfg.Services.Embedding.BaseURL,
			cfg.Services.Embedding.Model,
			config.GetDuration(cfg.Services.Embedding.TimeoutMS),
		)
		deps.Embed = embedClient.EmbedFunc()
	}

	var scorer semantic.PairScorer
	if cfg.Semantic.Enabled && cfg.Services.CrossEncoder.BaseURL != "" {
		scorer = crossencoder.New(
			cfg.Services.CrossEncoder.BaseURL,
			cfg.Services.CrossEncoder.Model,
			config.GetDuration(cfg.Services.CrossEncoder.TimeoutMS),
		)
		deps.Scorer = scorer
	}

	// --- Init Elasticsearch vector index (optional) ---
	if cfg.Database.Elasticsearch.GetURL() != "" && embedClient != nil {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Warn("elasticsearch unavailable, vector signal limited to carried-in values", zap.Error(err))
		} else {
			deps.Vectors = vectorsearch.New(esClient, log)
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Init PostgreSQL feature store (optional) ---
	var featureStore *features.Store
	if cfg.Database.Postgres.Host != "" {
		var pg *database.PostgresClient
		err = retryWithBackoff(func() error {
			var err error
			pg, err = database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			return pg.Ping(ctx)
		}, 5, 2*time.Second, zapLog, "PostgreSQL connection")

		if err != nil {
			zapLog.Warn("postgres unavailable, feature persistence disabled", zap.Error(err))
		} else {
			defer pg.Close()
			featureStore = features.New(pg.DB, log)
			zapLog.Info("PostgreSQL connected successfully")
		}
	}

	// --- Read and validate the request ---
	raw, err := readInput(*inputPath)
	if err != nil {
		zapLog.Fatal("read request failed", zap.Error(err))
	}
	if err := schemas.ValidateRankRequest(raw); err != nil {
		zapLog.Fatal("invalid request", zap.Error(err))
	}

	var req models.RankRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		zapLog.Fatal("parse request failed", zap.Error(err))
	}

	// --- Run the pass ---
	engine := fusion.New(cfg, deps)
	resp, err := engine.Rank(ctx, &req)
	if err != nil {
		zapLog.Fatal("ranking pass failed", zap.Error(err))
	}

	if featureStore != nil {
		if err := featureStore.SaveResults(ctx, req.Requirement.ID, resp.Meta.PassID, resp.Results); err != nil {
			zapLog.Warn("feature persistence failed", zap.Error(err))
		}
	}

	if err := writeOutput(*outputPath, resp); err != nil {
		zapLog.Fatal("write response failed", zap.Error(err))
	}

	zapLog.Info("Ranking pass complete",
		zap.String("passId", resp.Meta.PassID),
		zap.Int("returned", len(resp.Results)),
	)
}

func readInput(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, resp *models.RankResponse) error {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

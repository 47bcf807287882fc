package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/matchpulse/footystats/internal/config"
	"github.com/matchpulse/footystats/pkg/footballdata"
	"github.com/matchpulse/footystats/pkg/history"
	"github.com/matchpulse/footystats/pkg/logging"
	"github.com/matchpulse/footystats/pkg/methodcache"
	"github.com/matchpulse/footystats/pkg/stats"
	"github.com/matchpulse/footystats/pkg/ttlcache"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootstrapLogger := logging.Setup(logging.DefaultConfig())
		bootstrapLogger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logger := logging.Setup(logging.Config{
		Level:  logging.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
		Output: os.Stderr,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Redis backs the durable cache and the shared request budget.
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisURL).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()
	logger.Info().Str("addr", cfg.RedisURL).Msg("Connected to Redis")

	// History store: Postgres when configured, in-memory otherwise.
	var historyStore history.Store = history.NewMemoryStore()
	if cfg.PostgresURL != "" {
		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create Postgres pool")
		}
		defer pool.Close()

		historyStore, err = history.NewPostgresStore(ctx, pool)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to initialize history store")
		}
		logger.Info().Msg("History persisted to Postgres")
	} else {
		logger.Warn().Msg("POSTGRES_URL not set, history kept in memory")
	}

	client, err := footballdata.New(footballdata.Config{
		BaseURL:  cfg.APIBaseURL,
		APIToken: cfg.APIToken,
		Redis:    redisClient,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create data client")
	}

	resultCache := ttlcache.New(cfg.ResultTTL)
	methodCache := methodcache.NewManager(redisClient, cfg.MethodCacheTTL)

	comparisonService := stats.NewComparisonService(client, resultCache, historyStore)
	predictionService := stats.NewPredictionService(comparisonService, resultCache, methodCache, historyStore)
	performanceService := stats.NewPerformanceService(client, resultCache, methodCache, historyStore)

	// Background sweeps: memory hygiene for the in-memory cache, row
	// deletion for the durable one.
	go ttlcache.NewSweeper(resultCache, cfg.SweepInterval).Start(ctx)
	go methodCache.RunCleanupLoop(ctx, cfg.SweepInterval)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/stats/cache", cacheStatsHandler(resultCache, methodCache))
	mux.HandleFunc("/compare", compareHandler(comparisonService))
	mux.HandleFunc("/predict", predictHandler(predictionService))
	mux.HandleFunc("/performance", performanceHandler(performanceService))

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: mux,
	}

	go func() {
		logger.Info().Str("addr", server.Addr).Msg("Starting footystats server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown incomplete")
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		return
	}
}

func cacheStatsHandler(resultCache *ttlcache.Cache, methodCache *methodcache.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		methodStats, err := methodCache.GetStatistics(r.Context())
		if err != nil {
			http.Error(w, "failed to collect durable cache statistics", http.StatusInternalServerError)
			return
		}

		writeJSON(w, map[string]any{
			"memory":  resultCache.Stats(),
			"durable": methodStats,
		})
	}
}

func compareHandler(service *stats.ComparisonService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team1 := r.URL.Query().Get("team1")
		team2 := r.URL.Query().Get("team2")
		if team1 == "" || team2 == "" {
			http.Error(w, "team1 and team2 query parameters are required", http.StatusBadRequest)
			return
		}

		result, err := service.CompareTeams(r.Context(), r.URL.Query().Get("user"), team1, team2)
		if err != nil {
			http.Error(w, "comparison failed", http.StatusBadGateway)
			return
		}
		writeJSON(w, result)
	}
}

func predictHandler(service *stats.PredictionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		team1 := r.URL.Query().Get("team1")
		team2 := r.URL.Query().Get("team2")
		if team1 == "" || team2 == "" {
			http.Error(w, "team1 and team2 query parameters are required", http.StatusBadRequest)
			return
		}

		prediction, err := service.PredictWinner(r.Context(), r.URL.Query().Get("user"), team1, team2)
		if err != nil {
			http.Error(w, "prediction failed", http.StatusBadGateway)
			return
		}
		writeJSON(w, prediction)
	}
}

func performanceHandler(service *stats.PerformanceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		playerID := r.URL.Query().Get("player")
		if playerID == "" {
			http.Error(w, "player query parameter is required", http.StatusBadRequest)
			return
		}

		performance, err := service.PlayerPerformance(r.Context(), r.URL.Query().Get("user"), playerID)
		if err != nil {
			http.Error(w, "performance lookup failed", http.StatusBadGateway)
			return
		}
		writeJSON(w, performance)
	}
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/redis/go-redis/v9"

	"chat-gateway/chat"
	"chat-gateway/chat/application"
	"chat-gateway/chat/domain"
	chatinfra "chat-gateway/chat/infra"
	"chat-gateway/logging"
	"chat-gateway/middleware/ratelimit"
	rlapp "chat-gateway/middleware/ratelimit/application"
	rldomain "chat-gateway/middleware/ratelimit/domain"
	"chat-gateway/middleware/ratelimit/infra"
	"chat-gateway/middleware/requestlog"
)

func main() {
	if err := loadEnvFile(os.Args[1:]); err != nil {
		slog.Error("env file error", "error", err)
		os.Exit(1)
	}
	cfg, err := readConfig(nil)
	if err != nil {
		slog.Error("config error", "error", err)
		os.Exit(1)
	}
	logger, err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		slog.Error("logging setup error", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rdb *redis.Client
	if cfg.needsRedis() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() { _ = rdb.Close() }()

		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		_, err := rdb.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Error("redis ping error", "addr", cfg.RedisAddr, "error", err)
			os.Exit(1)
		}
	}

	var store rldomain.EntryStore
	if cfg.RateStore == "redis" {
		store = infra.NewRedisStore(rdb, infra.WithStorePrefix(cfg.RedisPrefix))
	} else {
		mem := infra.NewMemoryStore(infra.WithCleanupEvery(cfg.RateCleanupEvery))
		mem.StartJanitor(ctx)
		logger.Info("memory rate store", "cleanup_every", mem.CleanupEvery())
		store = mem
	}

	var statsStore rldomain.StatsStore
	if cfg.RateStatsEnabled {
		statsStore = infra.NewRedisStatsStore(
			rdb,
			infra.WithStatsPrefix(cfg.RateStatsPrefix),
			infra.WithStatsTTL(cfg.RateStatsTTL),
			infra.WithStatsBucket(cfg.RateStatsBucket),
			infra.WithStatsTrackKeys(cfg.RateStatsTrackKeys),
		)
	}

	limiter := rlapp.Service{Store: store, Limit: cfg.RateLimit, Window: cfg.RateWindow}

	svc := application.NewService(limiter, buildProvider(cfg), application.Options{
		Validator:       application.Validator{MaxHistory: cfg.MaxHistory, MaxImageBytes: cfg.MaxImageBytes},
		Sanitizer:       application.Sanitizer{MaxLength: cfg.MaxMessageLength},
		Stats:           statsStore,
		ProviderTimeout: cfg.ProviderTimeout,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		Logger:          logger,
	})

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(requestlog.Middleware(requestlog.Options{
		Logger: logger,
		OnPanic: func(w http.ResponseWriter, r *http.Request) {
			chat.RenderError(w, r, http.StatusInternalServerError)
		},
	}))
	r.Use(ratelimit.ConcurrencyMiddleware(ratelimit.ConcurrencyOptions{
		Max:            cfg.ConcurrencyMax,
		AcquireTimeout: cfg.ConcurrencyTimeout,
		Reject: func(w http.ResponseWriter, r *http.Request) {
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, domain.ErrorEnvelope{
				Error:      http.StatusText(http.StatusServiceUnavailable),
				StatusCode: http.StatusServiceUnavailable,
			})
		},
	}))

	chat.NewHandler(chat.Options{
		Service:             svc,
		KeyFunc:             ratelimit.ForwardedKeyFunc(cfg.RateKeyHeader),
		AddRateLimitHeaders: cfg.AddHeaders,
	}).Routes(r)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      writeTimeout(cfg.ProviderTimeout),
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("chat gateway listening", "addr", cfg.ListenAddr, "provider", cfg.Provider)
	logger.Info("rate limit",
		"limit", cfg.RateLimit,
		"window", cfg.RateWindow,
		"store", cfg.RateStore,
		"key_header", cfg.RateKeyHeader,
		"headers", cfg.AddHeaders,
	)
	logger.Info("rate stats", "enabled", cfg.RateStatsEnabled, "bucket", cfg.RateStatsBucket, "track_keys", cfg.RateStatsTrackKeys)
	logger.Info("concurrency", "max", cfg.ConcurrencyMax, "acquire_timeout", cfg.ConcurrencyTimeout)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// writeTimeout cobre a chamada ao provedor com folga. Sem PROVIDER_TIMEOUT
// a escrita também fica sem limite.
func writeTimeout(providerTimeout time.Duration) time.Duration {
	if providerTimeout <= 0 {
		return 0
	}
	return providerTimeout + 30*time.Second
}

func buildProvider(cfg config) domain.Provider {
	var p domain.Provider
	switch cfg.Provider {
	case "echo":
		p = chatinfra.Echo{}
	default:
		prompt := cfg.SystemPrompt
		if prompt == "" {
			prompt = chatinfra.DefaultSystemPrompt
		}
		p = chatinfra.NewOpenAI(chatinfra.OpenAIConfig{
			APIKey:       cfg.OpenAIAPIKey,
			BaseURL:      cfg.OpenAIBaseURL,
			Model:        cfg.OpenAIModel,
			SystemPrompt: prompt,
			MaxTokens:    cfg.MaxTokens,
		})
	}
	if cfg.ProviderRPS > 0 {
		p = chatinfra.NewThrottled(p, cfg.ProviderRPS, cfg.ProviderBurst)
	}
	return p
}

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"chat-gateway/chat"
	"chat-gateway/chat/application"
	chatinfra "chat-gateway/chat/infra"
	"chat-gateway/logging"
	rlapp "chat-gateway/middleware/ratelimit/application"
	"chat-gateway/middleware/ratelimit/infra"
	"chat-gateway/middleware/requestlog"
)

func main() {
	// Exemplo: gateway completo em memória, com o provedor eco no lugar da API.
	logger, err := logging.Setup(os.Stderr, "debug", "text")
	if err != nil {
		slog.Error("logging setup error", "error", err)
		os.Exit(1)
	}

	store := infra.NewMemoryStore()
	stats := infra.NewMemoryStatsStore(infra.WithTrackKeys(true))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	store.StartJanitor(ctx)

	svc := application.NewService(
		rlapp.Service{Store: store},
		chatinfra.Echo{},
		application.Options{Stats: stats, Logger: logger},
	)

	r := chi.NewRouter()
	r.Use(requestlog.Middleware(requestlog.Options{
		Logger: logger,
		OnPanic: func(w http.ResponseWriter, r *http.Request) {
			chat.RenderError(w, r, http.StatusInternalServerError)
		},
	}))
	chat.NewHandler(chat.Options{Service: svc, AddRateLimitHeaders: true}).Routes(r)

	addr := ":8081"
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		addr = v
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("example server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	total := stats.Total()
	logger.Info("requests served",
		"allowed", total.Allowed,
		"rate_limited", total.RateLimited,
		"invalid", total.Invalid,
		"failed", total.Failed,
		"keys", len(stats.ByKey()),
	)
}

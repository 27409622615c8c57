// Package requestlog registra cada requisição HTTP com slog, propaga o
// X-Request-ID e recupera panics do handler.
package requestlog

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const HeaderRequestID = "X-Request-ID"

type ctxKey struct{}

type Options struct {
	Logger *slog.Logger
	// SkipPaths não geram log (ex.: health checks de load balancer).
	SkipPaths []string
	// OnPanic escreve a resposta após um panic recuperado. nil responde 500 em texto.
	OnPanic http.HandlerFunc
}

func Middleware(opts Options) func(next http.Handler) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	onPanic := opts.OnPanic
	if onPanic == nil {
		onPanic = func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	skip := make(map[string]bool, len(opts.SkipPaths))
	for _, p := range opts.SkipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			id := r.Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(HeaderRequestID, id)
			r = r.WithContext(context.WithValue(r.Context(), ctxKey{}, id))

			log := logger.With(
				"request_id", id,
				"method", r.Method,
				"path", r.URL.Path,
			)
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error("panic recovered",
						"panic", fmt.Sprintf("%v", rec),
						"stack", string(debug.Stack()),
					)
					if ww.Status() == 0 {
						onPanic(ww, r)
					}
				}

				if skip[r.URL.Path] {
					return
				}
				status := ww.Status()
				if status == 0 {
					status = http.StatusOK
				}
				latency := time.Since(start)
				log = log.With(
					"status", status,
					"bytes", ww.BytesWritten(),
					"latency_ms", latency.Milliseconds(),
				)
				switch {
				case status >= 500:
					log.Error("request completed with server error")
				case status >= 400:
					log.Warn("request completed with client error")
				default:
					log.Info("request completed")
				}
			}()

			next.ServeHTTP(ww, r)
		})
	}
}

// RequestID devolve o id atribuído pelo Middleware, ou "" fora dele.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

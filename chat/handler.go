package chat

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"chat-gateway/chat/application"
	"chat-gateway/chat/domain"
	"chat-gateway/middleware/ratelimit"
)

type Options struct {
	Service *application.Service
	// KeyFunc extrai a identidade do cliente. nil usa X-Forwarded-For.
	KeyFunc             ratelimit.KeyFunc
	AddRateLimitHeaders bool
}

type Handler struct {
	svc        *application.Service
	keyFunc    ratelimit.KeyFunc
	addHeaders bool
}

func NewHandler(opts Options) *Handler {
	h := &Handler{
		svc:        opts.Service,
		keyFunc:    opts.KeyFunc,
		addHeaders: opts.AddRateLimitHeaders,
	}
	if h.keyFunc == nil {
		h.keyFunc = ratelimit.ForwardedKeyFunc(ratelimit.DefaultKeyHeader)
	}
	return h
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/chat", h.Status)
	r.Post("/chat", h.Chat)
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, domain.StatusEnvelope{Status: "ok", Message: domain.MsgRunning})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	key := h.keyFunc(r)
	res := h.svc.Handle(r.Context(), application.Inbound{
		Key:    key,
		Body:   r.Body,
		Method: r.Method,
		Path:   r.URL.Path,
	})

	// Decision vazia = o limiter nem chegou a decidir.
	if res.Decision.Limit > 0 {
		ratelimit.SetHeaders(w, key, res.Decision, h.addHeaders)
	}

	switch res.Outcome {
	case domain.OutcomeOK:
		render.Status(r, http.StatusOK)
		render.JSON(w, r, res.Envelope)
	case domain.OutcomeRateLimited:
		RenderError(w, r, http.StatusTooManyRequests)
	case domain.OutcomeInvalid:
		RenderError(w, r, http.StatusBadRequest)
	default:
		RenderError(w, r, http.StatusInternalServerError)
	}
}

// RenderError escreve o envelope de erro com a mensagem fixa do status.
// Detalhes internos nunca vão para o corpo.
func RenderError(w http.ResponseWriter, r *http.Request, status int) {
	render.Status(r, status)
	render.JSON(w, r, domain.ErrorEnvelope{Error: errorMessage(status), StatusCode: status})
}

func errorMessage(status int) string {
	switch status {
	case http.StatusTooManyRequests:
		return domain.MsgRateLimited
	case http.StatusBadRequest:
		return domain.MsgInvalid
	case http.StatusInternalServerError:
		return domain.MsgFailed
	default:
		return http.StatusText(status)
	}
}

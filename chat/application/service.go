package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"chat-gateway/chat/domain"
	rldomain "chat-gateway/middleware/ratelimit/domain"
)

const DefaultMaxBodyBytes = 10 << 20

// RateLimiter é satisfeito por ratelimit/application.Service.
type RateLimiter interface {
	Decide(ctx context.Context, key rldomain.Key) (rldomain.Decision, error)
}

type Options struct {
	Validator Validator
	Sanitizer Sanitizer

	// Stats recebe um evento por requisição (best-effort). Opcional.
	Stats rldomain.StatsStore
	// ProviderTimeout limita a chamada ao provedor. 0 = sem limite próprio.
	ProviderTimeout time.Duration
	// MaxBodyBytes acima disso o corpo é tratado como ilegível.
	MaxBodyBytes int64

	Logger *slog.Logger
	Now    func() time.Time
}

// Service é o gateway: orquestra rate limit, validação, sanitização, montagem
// e a chamada ao provedor, devolvendo sempre um domain.Result.
type Service struct {
	limiter   RateLimiter
	provider  domain.Provider
	validator Validator
	sanitizer Sanitizer
	assembler Assembler
	stats     rldomain.StatsStore

	providerTimeout time.Duration
	maxBodyBytes    int64

	logger *slog.Logger
	now    func() time.Time
}

func NewService(limiter RateLimiter, provider domain.Provider, opts Options) *Service {
	s := &Service{
		limiter:         limiter,
		provider:        provider,
		validator:       opts.Validator,
		sanitizer:       opts.Sanitizer,
		assembler:       Assembler{Sanitizer: opts.Sanitizer},
		stats:           opts.Stats,
		providerTimeout: opts.ProviderTimeout,
		maxBodyBytes:    opts.MaxBodyBytes,
		logger:          opts.Logger,
		now:             opts.Now,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Inbound é uma requisição de chat como chegou, antes de qualquer checagem.
type Inbound struct {
	Key  rldomain.Key
	Body io.Reader

	// Method e Path só alimentam as estatísticas.
	Method string
	Path   string
}

// Handle percorre o pipeline de forma linear; a primeira falha encerra.
// Cada requisição aceita pelo rate limit gera no máximo uma chamada ao provedor.
func (s *Service) Handle(ctx context.Context, in Inbound) domain.Result {
	res := s.handle(ctx, in)
	s.record(ctx, in, res)
	return res
}

func (s *Service) handle(ctx context.Context, in Inbound) domain.Result {
	log := s.logger.With("key", string(in.Key))

	dec, err := s.limiter.Decide(ctx, in.Key)
	if err != nil {
		log.Error("rate limiter failed", "error", err)
		return domain.Result{Outcome: domain.OutcomeFailed, Key: in.Key, Err: err}
	}
	res := domain.Result{Key: in.Key, Decision: dec}
	if !dec.Allowed {
		log.Warn("rate limit exceeded", "limit", dec.Limit, "retry_after", dec.RetryAfter)
		res.Outcome = domain.OutcomeRateLimited
		res.Err = domain.ErrRateLimited
		return res
	}

	raw, err := s.readBody(in.Body)
	if err != nil {
		log.Error("could not read request body", "error", err)
		res.Outcome = domain.OutcomeFailed
		res.Err = err
		return res
	}

	req, err := s.validator.Validate(raw)
	if err != nil {
		res.Err = err
		if errors.Is(err, domain.ErrMalformed) {
			log.Error("request body is not valid JSON")
			res.Outcome = domain.OutcomeFailed
			return res
		}
		log.Info("request rejected", "reason", err)
		res.Outcome = domain.OutcomeInvalid
		return res
	}

	message := s.sanitizer.Sanitize(req.Message)
	messages := s.assembler.Assemble(message, req.History, req.Image)

	reply, err := s.generate(ctx, messages)
	if err != nil {
		log.Error("provider failed", "error", err, "messages", len(messages))
		res.Outcome = domain.OutcomeFailed
		res.Err = fmt.Errorf("%w: %w", domain.ErrProvider, err)
		return res
	}

	res.Outcome = domain.OutcomeOK
	res.Envelope = domain.ResponseEnvelope{
		Response:  reply.Text,
		Timestamp: domain.FormatTimestamp(s.now()),
	}
	log.Debug("chat response generated", "messages", len(messages), "has_image", req.Image != nil)
	return res
}

func (s *Service) readBody(body io.Reader) ([]byte, error) {
	if body == nil {
		return nil, domain.ErrMalformed
	}
	raw, err := io.ReadAll(io.LimitReader(body, s.maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformed, err)
	}
	if int64(len(raw)) > s.maxBodyBytes {
		return nil, fmt.Errorf("%w: body larger than %d bytes", domain.ErrMalformed, s.maxBodyBytes)
	}
	return raw, nil
}

func (s *Service) generate(ctx context.Context, messages []domain.Message) (domain.Reply, error) {
	if s.providerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.providerTimeout)
		defer cancel()
	}
	return s.provider.Generate(ctx, messages)
}

func (s *Service) record(ctx context.Context, in Inbound, res domain.Result) {
	if s.stats == nil {
		return
	}
	ev := rldomain.StatsEvent{
		Key:     in.Key,
		Outcome: statsOutcome(res.Outcome),
		Method:  in.Method,
		Path:    in.Path,
		At:      s.now(),
	}
	if err := s.stats.Record(ctx, ev); err != nil {
		s.logger.Warn("could not record stats", "error", err)
	}
}

func statsOutcome(o domain.Outcome) rldomain.Outcome {
	switch o {
	case domain.OutcomeOK:
		return rldomain.OutcomeAllowed
	case domain.OutcomeRateLimited:
		return rldomain.OutcomeRateLimited
	case domain.OutcomeInvalid:
		return rldomain.OutcomeInvalid
	default:
		return rldomain.OutcomeFailed
	}
}

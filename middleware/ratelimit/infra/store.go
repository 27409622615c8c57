package infra

import (
	"context"
	"sync"
	"time"

	"chat-gateway/middleware/ratelimit/domain"
)

// MemoryStore é um domain.EntryStore em memória para uma única instância.
//
// Cada chave tem seu próprio slot com mutex: updates da mesma chave são
// serializados, chaves diferentes só disputam o lock do map durante o lookup.
type MemoryStore struct {
	mu           sync.Mutex
	slots        map[domain.Key]*slot
	cleanupEvery time.Duration
	now          func() time.Time
}

type slot struct {
	mu    sync.Mutex
	entry domain.Entry
	found bool
	// dead indica que o janitor removeu o slot do map; quem segurava o ponteiro
	// precisa buscar de novo.
	dead bool
}

type StoreOption func(*MemoryStore)

// WithCleanupEvery define o intervalo do janitor. 0 desliga.
func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *MemoryStore) { s.cleanupEvery = d }
}

// WithClock troca o relógio usado pelo Cleanup (testes).
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...StoreOption) *MemoryStore {
	s := &MemoryStore{
		slots:        make(map[domain.Key]*slot),
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStore) CleanupEvery() time.Duration { return s.cleanupEvery }

// Update implementa domain.EntryStore.
func (s *MemoryStore) Update(ctx context.Context, key domain.Key, fn domain.Mutator) (domain.Entry, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.Entry{}, err
		}

		sl := s.slot(key)
		sl.mu.Lock()
		if sl.dead {
			sl.mu.Unlock()
			continue
		}
		next, save := fn(sl.entry, sl.found)
		if save {
			sl.entry = next
			sl.found = true
		}
		out := sl.entry
		sl.mu.Unlock()
		return out, nil
	}
}

func (s *MemoryStore) slot(key domain.Key) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl, ok := s.slots[key]
	if !ok {
		sl = &slot{}
		s.slots[key] = sl
	}
	return sl
}

// Len retorna quantas chaves estão no map.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.slots)
}

// Cleanup remove entries cuja janela já terminou. Para o limiter isso é
// invisível: uma entry expirada seria resetada no próximo acesso de qualquer forma.
func (s *MemoryStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, sl := range s.slots {
		if !sl.mu.TryLock() {
			// em uso agora, fica para a próxima rodada
			continue
		}
		if !sl.found || sl.entry.Expired(now) {
			sl.dead = true
			delete(s.slots, k)
		}
		sl.mu.Unlock()
	}
}

// StartJanitor inicia uma goroutine que limpa chaves expiradas periodicamente.
// Pare cancelando o contexto.
func (s *MemoryStore) StartJanitor(ctx DoneContext) {
	if s.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(s.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Cleanup()
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context no janitor.
type DoneContext interface {
	Done() <-chan struct{}
}

package infra

import (
	"sync"
	"time"

	"github.com/jay3332/Turbine/middleware/ratelimit/domain"
)

// Store é a implementação em memória do domain.BucketStore.
//
// Cada chave ganha um bucket {remaining, cooldownUntil} criado sob demanda.
// A política é rajada-então-bloqueio: o cliente pode gastar a cota inteira de
// uma vez; o request que zera a cota ainda é admitido e arma o cooldown da
// próxima janela; durante o cooldown tudo é rejeitado e remaining não muda.
//
// Locks: o mutex do Store protege só o mapa (lookup/insert); cada bucket tem
// o próprio mutex para a mutação de estado. Assim requests de chaves
// diferentes não serializam entre si.
type Store struct {
	mu      sync.Mutex
	entries map[string]*bucket

	rate uint16
	per  time.Duration

	idleTTL      time.Duration
	cleanupEvery time.Duration

	now func() time.Time
}

type bucket struct {
	mu            sync.Mutex
	remaining     uint16
	cooldownUntil time.Time
	lastSeen      time.Time
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

// WithNow troca o relógio do store. Usado em teste para avançar o tempo
// de forma determinística.
func WithNow(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// NewStore cria um store com cota `rate` por janela de `per`.
// rate é saturado em 1 no mínimo (cota zero travaria a chave para sempre).
func NewStore(rate uint16, per time.Duration, opts ...StoreOption) *Store {
	if rate == 0 {
		rate = 1
	}

	s := &Store{
		entries:      make(map[string]*bucket),
		rate:         rate,
		per:          per,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Rate() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rate
}

func (s *Store) Per() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.per
}

func (s *Store) CleanupEvery() time.Duration { return s.cleanupEvery }

// SetLimit ajusta a cota em tempo de execução (reload de config).
// Cooldowns já armados continuam valendo; remaining acima da nova cota é
// saturado de forma preguiçosa dentro de Admit.
func (s *Store) SetLimit(rate uint16, per time.Duration) {
	if rate == 0 {
		rate = 1
	}

	s.mu.Lock()
	s.rate = rate
	s.per = per
	s.mu.Unlock()
}

// Admit implementa domain.BucketStore.
func (s *Store) Admit(key domain.Key) domain.Decision {
	now := s.now()
	b, rate, per := s.lookup(string(key), now)

	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastSeen = now

	// cooldown armado: rejeita sem tocar em remaining.
	// O prazo exato (now == cooldownUntil) já admite de novo.
	if b.cooldownUntil.After(now) {
		return domain.Decision{Allowed: false, RetryAfter: b.cooldownUntil.Sub(now)}
	}

	if b.remaining > rate {
		b.remaining = rate
	}

	b.remaining--
	if b.remaining == 0 {
		// o request que zera a cota é admitido; o cooldown governa só a
		// próxima janela.
		b.remaining = rate
		b.cooldownUntil = now.Add(per)
	}
	return domain.Decision{Allowed: true}
}

// lookup obtém (ou cria) o bucket da chave e devolve a cota vigente.
// rate/per são lidos sob o mesmo lock do mapa para o Admit enxergar um
// par consistente mesmo com SetLimit concorrente.
func (s *Store) lookup(key string, now time.Time) (*bucket, uint16, time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.entries[key]
	if !ok {
		// cooldownUntil zerado não está no futuro, então o primeiro request
		// da chave é sempre admitido.
		b = &bucket{remaining: s.rate, lastSeen: now}
		s.entries[key] = b
	}
	return b, s.rate, s.per
}

// Cleanup remove buckets ociosos: lastSeen e cooldownUntil ambos no passado
// distante. Sem isso o processo acumularia um bucket por IP observado para
// sempre.
func (s *Store) Cleanup() {
	now := s.now()
	cutoff := now.Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, b := range s.entries {
		b.mu.Lock()
		idle := b.lastSeen.Before(cutoff) && b.cooldownUntil.Before(now)
		b.mu.Unlock()
		if idle {
			delete(s.entries, k)
		}
	}
}

// Len devolve o número de buckets vivos. Exposto para teste e observabilidade.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// StartJanitor inicia uma goroutine que limpa chaves inativas periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
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

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}

package identity

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Lookup é o colaborador durável que resolve token -> user_id.
// found=false significa token desconhecido (não é erro de infraestrutura).
type Lookup interface {
	UserIDForToken(ctx context.Context, token string) (userID string, found bool, err error)
}

// ErrUnknownToken indica token ausente do cache e do storage durável.
var ErrUnknownToken = errors.New("identity: unknown authorization token")

// Resultados possíveis para o hook de observabilidade do cache.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultInvalid = "invalid"
	ResultError   = "error"
)

// Cache é o mapa cache-aside de tokens resolvidos.
type Cache struct {
	mu     sync.RWMutex
	tokens map[string]string

	store Lookup

	// onResult é chamado a cada Resolve com um dos Result* acima.
	onResult func(result string)
}

type CacheOption func(*Cache)

// WithOnResult registra um hook por resolução (ex: contadores Prometheus).
func WithOnResult(fn func(result string)) CacheOption {
	return func(c *Cache) { c.onResult = fn }
}

func NewCache(store Lookup, opts ...CacheOption) *Cache {
	c := &Cache{
		tokens: make(map[string]string),
		store:  store,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cache) result(r string) {
	if c.onResult != nil {
		c.onResult(r)
	}
}

// Resolve devolve o user_id dono do token.
//
// Erros: ErrUnknownToken quando o token não existe em lugar nenhum; qualquer
// outro erro é falha do storage durável (o chamador responde 500).
func (c *Cache) Resolve(ctx context.Context, token string) (string, error) {
	c.mu.RLock()
	id, ok := c.tokens[token]
	c.mu.RUnlock()
	if ok {
		c.result(ResultHit)
		return id, nil
	}

	// a consulta durável roda sem segurar lock nenhum: um lookup lento não
	// pode travar os hits dos outros requests
	id, found, err := c.store.UserIDForToken(ctx, token)
	if err != nil {
		c.result(ResultError)
		return "", fmt.Errorf("identity: durable token lookup: %w", err)
	}
	if !found {
		c.result(ResultInvalid)
		return "", ErrUnknownToken
	}

	c.mu.Lock()
	c.tokens[token] = id
	c.mu.Unlock()

	c.result(ResultMiss)
	return id, nil
}

// Len devolve o número de tokens cacheados. Exposto para teste.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tokens)
}

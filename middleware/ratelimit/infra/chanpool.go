package infra

import (
	"context"
	"sync"

	"github.com/jay3332/Turbine/middleware/ratelimit/domain"
)

// chanPool implementa domain.SlotPool com um channel-semáforo: cada request
// em voo ocupa uma posição do buffer. A release é idempotente; um handler que
// chame duas vezes (defer + caminho de erro) não devolve vaga em dobro.
type chanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool com `max` vagas de request em voo.
func NewChanPool(max int) domain.SlotPool {
	return &chanPool{sem: make(chan struct{}, max)}
}

func (p *chanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.sem }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

// InFlight devolve o número de vagas ocupadas. Exposto para teste.
func (p *chanPool) InFlight() int { return len(p.sem) }

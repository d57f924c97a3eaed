package application

import (
	"context"
	"time"

	"github.com/jay3332/Turbine/middleware/ratelimit/domain"
)

// ConcurrencyService decide se um request ganha vaga no pool de requests em
// voo. Sem Pool configurado tudo passa; o serviço não sabe nada de HTTP.
type ConcurrencyService struct {
	Pool domain.SlotPool
	// AcquireTimeout limita quanto tempo um request espera na fila por vaga.
	// Zero ou negativo espera até o contexto do request cancelar.
	AcquireTimeout time.Duration
}

// Acquire devolve (release, ok). Com ok=false nenhuma vaga foi tomada e não
// há o que liberar.
func (s ConcurrencyService) Acquire(ctx context.Context) (func(), bool) {
	if s.Pool == nil {
		return func() {}, true
	}

	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Pool.Acquire(acqCtx)
}

package ratelimit

import (
	"net/http"
	"time"

	"github.com/jay3332/Turbine/httpjson"
	"github.com/jay3332/Turbine/middleware/ratelimit/application"
	"github.com/jay3332/Turbine/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

// ConcurrencyMiddleware limita o número de requests em voo no serviço inteiro.
// Diferente do controle de admissão, aqui a vaga é devolvida quando a resposta
// termina: é um teto de pressão, não uma cota por cliente.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				httpjson.WriteError(w, opts.RejectStatus, "Server is too busy, try again shortly.")
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}

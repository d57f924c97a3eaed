package ratelimit

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jay3332/Turbine/httpjson"
	"github.com/jay3332/Turbine/middleware/clientip"
	"github.com/jay3332/Turbine/middleware/ratelimit/application"
	"github.com/jay3332/Turbine/middleware/ratelimit/domain"
	"github.com/jay3332/Turbine/middleware/ratelimit/infra"
)

// Limit é o atalho para proteger uma rota isolada: cria o próprio store com a
// cota dada. Para controlar o janitor ou recarregar a cota, construa o store
// por fora e use Middleware.
func Limit(rate uint16, per time.Duration, opts ...infra.StoreOption) func(next http.Handler) http.Handler {
	return Middleware(Options{Store: infra.NewStore(rate, per, opts...)})
}

type Options struct {
	// Store decide a admissão. Obrigatório na prática; sem ele o middleware
	// vira um passthrough (útil em teste).
	Store domain.BucketStore
	// Stats recebe cada decisão (best-effort; erro não derruba o request).
	Stats domain.StatsStore
	// Route rotula a rota protegida em stats/métricas (ex: "/api/login").
	Route string
	// OnDecision é um hook síncrono por decisão (ex: contadores Prometheus).
	OnDecision func(route string, allowed bool)
	// Logger para falhas de resolução de IP. Se nil, não loga.
	Logger *zap.Logger

	AddRateLimitHeaders bool
}

type rateInfo interface {
	Rate() uint16
	Per() time.Duration
}

// Middleware aplica controle de admissão por IP de cliente na rota.
//
// A chave é resolvida via clientip.Resolve. Falha de resolução é fatal para o
// request (500): sem chave não dá para proteger a rota de abuso, então não
// existe fallback "liberado".
func Middleware(opts Options) func(next http.Handler) http.Handler {
	svc := application.Service{Store: opts.Store}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr, err := clientip.Resolve(r)
			if err != nil {
				if opts.Logger != nil {
					opts.Logger.Warn("could not resolve client IP for ratelimiting",
						zap.String("route", opts.Route),
						zap.Error(err),
					)
				}
				httpjson.WriteError(w, http.StatusInternalServerError,
					"Could not resolve your IP address, which is required for abuse protection.")
				return
			}
			key := domain.Key(addr.String())

			if opts.AddRateLimitHeaders {
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-Limit", formatInt(int(ri.Rate())))
					w.Header().Set("X-RateLimit-Per", formatFloat(ri.Per().Seconds()))
				}
			}

			dec := svc.Decide(key)
			if opts.Stats != nil {
				_ = opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     key,
					Allowed: dec.Allowed,
					Method:  r.Method,
					Route:   opts.Route,
					At:      time.Now(),
				})
			}
			if opts.OnDecision != nil {
				opts.OnDecision(opts.Route, dec.Allowed)
			}

			if !dec.Allowed {
				// header em segundos inteiros (arredondando para cima);
				// o corpo carrega o valor fracionário exato
				w.Header().Set("Retry-After", formatInt(int((dec.RetryAfter+time.Second-1)/time.Second)))
				httpjson.WriteErrorf(w, http.StatusTooManyRequests,
					"You are being rate limited. Try again in %.2f seconds.", dec.RetryAfter.Seconds())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

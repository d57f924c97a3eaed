// Package routes monta o roteador HTTP da API e os handlers de cada rota.
//
// Cada rota protegida recebe seu próprio bucket store, com a cota publicada
// da API. A cadeia por rota é sempre admissão primeiro, identidade depois:
// um cliente em cooldown não deve gastar lookup de token.
package routes

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/jay3332/Turbine/httpjson"
	"github.com/jay3332/Turbine/middleware/identity"
	"github.com/jay3332/Turbine/middleware/ratelimit"
	"github.com/jay3332/Turbine/middleware/ratelimit/domain"
	"github.com/jay3332/Turbine/oauth"
	"github.com/jay3332/Turbine/storage"
)

// Limits carrega o bucket store de cada rota protegida. Um campo nil deixa a
// rota sem limite (passthrough), o que os testes usam.
type Limits struct {
	CreateUser  domain.BucketStore
	Login       domain.BucketStore
	GetUser     domain.BucketStore
	GetPaste    domain.BucketStore
	CreatePaste domain.BucketStore
	StarPaste   domain.BucketStore
}

// Config agrupa as dependências do roteador.
type Config struct {
	Store    *storage.Store
	Identity *identity.Cache
	Github   *oauth.Client
	Logger   *zap.Logger

	Limits Limits
	// Stats recebe as decisões de admissão de todas as rotas.
	Stats domain.StatsStore
	// OnDecision é repassado ao middleware de admissão de cada rota.
	OnDecision func(route string, allowed bool)

	RateLimitHeaders bool
}

type handler struct {
	store  *storage.Store
	github *oauth.Client
	logger *zap.Logger
}

// New monta o roteador completo.
func New(cfg Config) http.Handler {
	h := &handler{store: cfg.Store, github: cfg.Github, logger: cfg.Logger}

	limit := func(route string, store domain.BucketStore) func(http.Handler) http.Handler {
		return ratelimit.Middleware(ratelimit.Options{
			Store:               store,
			Stats:               cfg.Stats,
			Route:               route,
			OnDecision:          cfg.OnDecision,
			Logger:              cfg.Logger,
			AddRateLimitHeaders: cfg.RateLimitHeaders,
		})
	}
	requireAuth := identity.Require(cfg.Identity)
	optionalAuth := identity.Optional(cfg.Identity)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api", h.health)

	mux.Handle("POST /api/users",
		limit("/api/users", cfg.Limits.CreateUser)(http.HandlerFunc(h.createUser)))
	mux.Handle("POST /api/login",
		limit("/api/login", cfg.Limits.Login)(http.HandlerFunc(h.login)))
	mux.Handle("GET /api/users/{id}",
		limit("/api/users/{id}", cfg.Limits.GetUser)(optionalAuth(http.HandlerFunc(h.getUser))))

	mux.Handle("GET /api/pastes/{id}",
		limit("/api/pastes/{id}", cfg.Limits.GetPaste)(optionalAuth(http.HandlerFunc(h.getPaste))))
	mux.Handle("POST /api/pastes",
		limit("/api/pastes", cfg.Limits.CreatePaste)(requireAuth(http.HandlerFunc(h.createPaste))))
	mux.Handle("PUT /api/pastes/{id}/star",
		limit("/api/pastes/{id}/star", cfg.Limits.StarPaste)(requireAuth(http.HandlerFunc(h.starPaste))))

	if cfg.Github != nil {
		// login social compartilha a cota da rota de login
		mux.Handle("POST /api/login/github",
			limit("/api/login", cfg.Limits.Login)(http.HandlerFunc(h.loginGithub)))
	}

	return mux
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	httpjson.Write(w, http.StatusOK, map[string]string{"message": "Hello, world!"})
}

package identity

import (
	"context"
	"errors"
	"net/http"
	"unicode/utf8"

	"github.com/jay3332/Turbine/httpjson"
)

// Identity é a identidade verificada de um request.
type Identity struct {
	UserID string
}

type ctxKey struct{}

// FromContext recupera a identidade anexada por Require/Optional.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Require exige um token válido na rota: sem identidade o handler nem roda.
//
// Status de rejeição:
//   - 400: header ausente ou com encoding inválido
//   - 404: token desconhecido (não existe no cache nem no storage)
//   - 500: falha do storage durável
func Require(cache *Cache) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header, ok := authorizationHeader(w, r)
			if !ok {
				return
			}

			id, err := resolve(w, r, cache, header)
			if err != nil {
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

// Optional anexa a identidade quando o header existe, e deixa o request
// passar anônimo quando não existe. Header presente mas inválido ainda
// rejeita: silêncio aqui mascararia tokens revogados.
func Optional(cache *Cache) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, present := r.Header["Authorization"]; !present {
				next.ServeHTTP(w, r)
				return
			}

			header, ok := authorizationHeader(w, r)
			if !ok {
				return
			}

			id, err := resolve(w, r, cache, header)
			if err != nil {
				return
			}

			next.ServeHTTP(w, r.WithContext(withIdentity(r.Context(), id)))
		})
	}
}

func withIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// authorizationHeader valida presença e encoding. O valor inteiro do header
// é o token; não há prefixo "Bearer" nem subdivisão a parsear.
func authorizationHeader(w http.ResponseWriter, r *http.Request) (string, bool) {
	values, present := r.Header["Authorization"]
	if !present || len(values) == 0 {
		httpjson.WriteError(w, http.StatusBadRequest, "Missing 'Authorization' header")
		return "", false
	}

	token := values[0]
	if !utf8.ValidString(token) {
		httpjson.WriteError(w, http.StatusBadRequest, "Authorization header is not valid UTF-8")
		return "", false
	}
	return token, true
}

func resolve(w http.ResponseWriter, r *http.Request, cache *Cache, token string) (Identity, error) {
	userID, err := cache.Resolve(r.Context(), token)
	if err != nil {
		if errors.Is(err, ErrUnknownToken) {
			httpjson.WriteError(w, http.StatusNotFound, "Invalid authorization token")
		} else {
			httpjson.WriteErrorf(w, http.StatusInternalServerError, "Token lookup failed: %v", err)
		}
		return Identity{}, err
	}
	return Identity{UserID: userID}, nil
}

package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jay3332/Turbine/middleware/identity"
	"github.com/jay3332/Turbine/oauth"
	"github.com/jay3332/Turbine/storage"
)

func newGithubEnv(t *testing.T) *testEnv {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("code") != "good-code" {
			w.Write([]byte(`{"error":"bad_verification_code"}`))
			return
		}
		w.Write([]byte(`{"access_token":"gho_tok"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":42,"login":"octocat","email":"octo@cat.dev"}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	github := oauth.NewClient("id", "secret",
		oauth.WithHTTPClient(srv.Client()),
		oauth.WithEndpoints(srv.URL+"/token", srv.URL+"/user"),
	)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store := storage.NewStore(rdb)
	h := New(Config{
		Store:    store,
		Identity: identity.NewCache(store),
		Github:   github,
		Logger:   zaptest.NewLogger(t),
	})
	return &testEnv{handler: h, store: store}
}

func postGithubLogin(t *testing.T, env *testEnv, code string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(githubLoginRequest{Code: code}))
	r := httptest.NewRequest(http.MethodPost, "/api/login/github", &buf)
	r.RemoteAddr = "203.0.113.7:49152"
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, r)
	return w
}

func TestLoginGithub_CreatesAccountOnFirstLogin(t *testing.T) {
	env := newGithubEnv(t)

	w := postGithubLogin(t, env, "good-code")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var first authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))
	assert.NotEmpty(t, first.ID)
	assert.NotEmpty(t, first.Token)

	// segundo login reaproveita a mesma conta
	w = postGithubLogin(t, env, "good-code")
	require.Equal(t, http.StatusOK, w.Code)

	var second authResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &second))
	assert.Equal(t, first.ID, second.ID)
}

func TestLoginGithub_RejectedCode(t *testing.T) {
	env := newGithubEnv(t)

	w := postGithubLogin(t, env, "bad-code")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "GitHub rejected the authorization code", message(t, w))
}

func TestLoginGithub_PasswordLoginOnOauthAccountFails(t *testing.T) {
	env := newGithubEnv(t)

	w := postGithubLogin(t, env, "good-code")
	require.Equal(t, http.StatusOK, w.Code)

	var buf bytes.Buffer
	require.NoError(t, json.NewEncoder(&buf).Encode(loginRequest{Username: "octocat", Password: "whatever"}))
	r := httptest.NewRequest(http.MethodPost, "/api/login", &buf)
	r.RemoteAddr = "203.0.113.7:49152"
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Incorrect password", message(t, rec))
}

package oauth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/login/oauth/access_token", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		if r.FormValue("code") != "good-code" {
			w.Write([]byte(`{"error":"bad_verification_code"}`))
			return
		}
		assert.Equal(t, "client-id", r.FormValue("client_id"))
		assert.Equal(t, "client-secret", r.FormValue("client_secret"))
		w.Write([]byte(`{"access_token":"gho_abc123","token_type":"bearer"}`))
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer gho_abc123" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"id":42,"login":"octocat","email":"octo@cat.dev"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := NewClient("client-id", "client-secret",
		WithHTTPClient(srv.Client()),
		WithEndpoints(srv.URL+"/login/oauth/access_token", srv.URL+"/user"),
	)
	return srv, c
}

func TestExchangeCode(t *testing.T) {
	_, c := newTestServer(t)

	token, err := c.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_abc123", token)
}

func TestExchangeCode_RejectedCode(t *testing.T) {
	_, c := newTestServer(t)

	_, err := c.ExchangeCode(context.Background(), "bad-code")
	assert.ErrorIs(t, err, ErrBadCode)
}

func TestUser(t *testing.T) {
	_, c := newTestServer(t)

	u, err := c.User(context.Background(), "gho_abc123")
	require.NoError(t, err)
	assert.Equal(t, int64(42), u.ID)
	assert.Equal(t, "octocat", u.Login)
	assert.Equal(t, "octo@cat.dev", u.Email)
}

func TestLimiter_BlocksWhenExhausted(t *testing.T) {
	srv, _ := newTestServer(t)

	c := NewClient("client-id", "client-secret",
		WithHTTPClient(srv.Client()),
		WithEndpoints(srv.URL+"/login/oauth/access_token", srv.URL+"/user"),
		WithLimiter(rate.NewLimiter(rate.Limit(0.1), 1)),
	)

	// primeiro pedido consome o burst
	_, err := c.ExchangeCode(context.Background(), "good-code")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.ExchangeCode(ctx, "good-code")
	assert.Error(t, err, "second call should block on the limiter and hit the deadline")
}

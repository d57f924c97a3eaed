// Package oauth implementa o fluxo de troca de código OAuth com o GitHub,
// usado no login social.
//
// As chamadas de saída passam por um rate limiter próprio: o GitHub corta
// clientes abusivos, e é melhor enfileirar aqui do que tomar 403 lá.
package oauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrBadCode indica que o GitHub rejeitou o código de autorização.
var ErrBadCode = errors.New("oauth: authorization code rejected")

const (
	defaultTokenURL = "https://github.com/login/oauth/access_token"
	defaultUserURL  = "https://api.github.com/user"
)

// GithubUser é o subconjunto do perfil que o serviço usa.
type GithubUser struct {
	ID    int64  `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
}

// Client fala com a API OAuth do GitHub.
type Client struct {
	clientID     string
	clientSecret string
	httpClient   *http.Client
	limiter      *rate.Limiter
	tokenURL     string
	userURL      string
}

// ClientOption configura um Client.
type ClientOption func(*Client)

// WithHTTPClient troca o *http.Client usado nas chamadas.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithLimiter troca o limiter de saída (default 5 req/s, burst 5).
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) { c.limiter = l }
}

// WithEndpoints troca as URLs do GitHub. Usado nos testes.
func WithEndpoints(tokenURL, userURL string) ClientOption {
	return func(c *Client) {
		c.tokenURL = tokenURL
		c.userURL = userURL
	}
}

// NewClient cria um cliente OAuth para o app GitHub identificado por
// clientID/clientSecret.
func NewClient(clientID, clientSecret string, opts ...ClientOption) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		limiter:      rate.NewLimiter(rate.Limit(5), 5),
		tokenURL:     defaultTokenURL,
		userURL:      defaultUserURL,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ExchangeCode troca o código de autorização por um access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"code":          {code},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("oauth: token exchange: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		AccessToken string `json:"access_token"`
		Error       string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("oauth: decoding token response: %w", err)
	}
	if body.Error != "" || body.AccessToken == "" {
		return "", ErrBadCode
	}
	return body.AccessToken, nil
}

// User busca o perfil do dono do access token.
func (c *Client) User(ctx context.Context, accessToken string) (GithubUser, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return GithubUser{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userURL, nil)
	if err != nil {
		return GithubUser{}, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return GithubUser{}, fmt.Errorf("oauth: fetching user: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return GithubUser{}, fmt.Errorf("oauth: github returned status %d", resp.StatusCode)
	}

	var u GithubUser
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return GithubUser{}, fmt.Errorf("oauth: decoding user response: %w", err)
	}
	return u, nil
}

package routes

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/jay3332/Turbine/credentials"
	"github.com/jay3332/Turbine/httpjson"
	"github.com/jay3332/Turbine/middleware/identity"
	"github.com/jay3332/Turbine/oauth"
	"github.com/jay3332/Turbine/storage"
)

const userIDBytes = 12

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	ID    string `json:"id"`
	Token string `json:"token"`
}

type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

func (h *handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if n := len(req.Username); n < 3 || n > 32 {
		httpjson.WriteError(w, http.StatusBadRequest, "Username must be between 3 and 32 characters long")
		return
	}
	if n := len(req.Password); n < 6 || n > 128 {
		httpjson.WriteError(w, http.StatusBadRequest, "Password must be between 6 and 128 characters long")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil || req.Email != strings.TrimSpace(req.Email) {
		httpjson.WriteError(w, http.StatusBadRequest, "Invalid email address")
		return
	}

	hash, err := credentials.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, "hashing password", err)
		return
	}
	id, err := credentials.GenerateID(userIDBytes)
	if err != nil {
		h.internalError(w, "generating user id", err)
		return
	}

	user := storage.User{
		ID:           id,
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := h.store.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			httpjson.WriteError(w, http.StatusConflict, "Username or email is already taken")
			return
		}
		h.internalError(w, "creating user", err)
		return
	}

	token, err := h.issueToken(r, id)
	if err != nil {
		h.internalError(w, "issuing token", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, authResponse{ID: id, Token: token})
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	var (
		user storage.User
		err  error
	)
	switch {
	case req.Username != "":
		user, err = h.store.UserByUsername(r.Context(), req.Username)
	case req.Email != "":
		user, err = h.store.UserByEmail(r.Context(), req.Email)
	default:
		httpjson.WriteError(w, http.StatusBadRequest, "Either username or email is required")
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.internalError(w, "loading user", err)
		return
	}

	if user.PasswordHash == "" {
		// conta criada via OAuth, não tem senha para conferir
		httpjson.WriteError(w, http.StatusUnauthorized, "Incorrect password")
		return
	}
	ok, err := credentials.VerifyPassword(req.Password, user.PasswordHash)
	if err != nil {
		h.internalError(w, "verifying password", err)
		return
	}
	if !ok {
		httpjson.WriteError(w, http.StatusUnauthorized, "Incorrect password")
		return
	}

	token, err := h.issueToken(r, user.ID)
	if err != nil {
		h.internalError(w, "issuing token", err)
		return
	}

	httpjson.Write(w, http.StatusOK, authResponse{ID: user.ID, Token: token})
}

type githubLoginRequest struct {
	Code string `json:"code"`
}

// loginGithub troca o código OAuth por uma conta local, criando-a no primeiro
// login. Contas OAuth nascem sem senha; login por senha nelas sempre falha.
func (h *handler) loginGithub(w http.ResponseWriter, r *http.Request) {
	var req githubLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	accessToken, err := h.github.ExchangeCode(r.Context(), req.Code)
	if errors.Is(err, oauth.ErrBadCode) {
		httpjson.WriteError(w, http.StatusUnauthorized, "GitHub rejected the authorization code")
		return
	}
	if err != nil {
		h.internalError(w, "exchanging oauth code", err)
		return
	}

	ghUser, err := h.github.User(r.Context(), accessToken)
	if err != nil {
		h.internalError(w, "fetching github profile", err)
		return
	}
	if ghUser.Email == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "GitHub account has no public email")
		return
	}

	user, err := h.store.UserByEmail(r.Context(), ghUser.Email)
	if errors.Is(err, storage.ErrNotFound) {
		user, err = h.createGithubUser(r, ghUser)
	}
	if err != nil {
		h.internalError(w, "resolving github account", err)
		return
	}

	token, err := h.issueToken(r, user.ID)
	if err != nil {
		h.internalError(w, "issuing token", err)
		return
	}

	httpjson.Write(w, http.StatusOK, authResponse{ID: user.ID, Token: token})
}

func (h *handler) createGithubUser(r *http.Request, gh oauth.GithubUser) (storage.User, error) {
	id, err := credentials.GenerateID(userIDBytes)
	if err != nil {
		return storage.User{}, err
	}

	user := storage.User{ID: id, Username: gh.Login, Email: gh.Email}
	err = h.store.CreateUser(r.Context(), user)
	if errors.Is(err, storage.ErrConflict) {
		// username ocupado por outra conta: sufixa com o id numérico do GitHub
		user.Username = fmt.Sprintf("%s-%d", gh.Login, gh.ID)
		err = h.store.CreateUser(r.Context(), user)
	}
	if err != nil {
		return storage.User{}, err
	}
	return user, nil
}

func (h *handler) getUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	user, err := h.store.UserByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "User not found")
		return
	}
	if err != nil {
		h.internalError(w, "loading user", err)
		return
	}

	resp := userResponse{ID: user.ID, Username: user.Username}
	// email só aparece quando o dono da conta consulta a si mesmo
	if who, ok := identity.FromContext(r.Context()); ok && who.UserID == user.ID {
		resp.Email = user.Email
	}

	httpjson.Write(w, http.StatusOK, resp)
}

// issueToken emite e persiste um token de sessão novo.
func (h *handler) issueToken(r *http.Request, userID string) (string, error) {
	token, err := credentials.NewToken(userID)
	if err != nil {
		return "", err
	}
	if err := h.store.SaveToken(r.Context(), token, userID); err != nil {
		return "", err
	}
	return token, nil
}

func (h *handler) internalError(w http.ResponseWriter, what string, err error) {
	if h.logger != nil {
		h.logger.Error("request failed", zap.String("op", what), zap.Error(err))
	}
	httpjson.WriteError(w, http.StatusInternalServerError, "Internal server error")
}

package storage

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewStore(rdb), mr
}

func TestCreateUser_AndLookups(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	u := User{ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "$argon2id$..."}
	require.NoError(t, s.CreateUser(ctx, u))

	byID, err := s.UserByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, u, byID)

	byName, err := s.UserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", byName.ID)

	byEmail, err := s.UserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", byEmail.ID)
}

func TestCreateUser_UsernameConflict(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, User{ID: "u1", Username: "alice", Email: "a@example.com"}))

	err := s.CreateUser(ctx, User{ID: "u2", Username: "alice", Email: "b@example.com"})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCreateUser_EmailConflictReleasesUsername(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, User{ID: "u1", Username: "alice", Email: "a@example.com"}))

	err := s.CreateUser(ctx, User{ID: "u2", Username: "bob", Email: "a@example.com"})
	assert.ErrorIs(t, err, ErrConflict)

	// o username reservado pelo registro que falhou precisa voltar a ficar livre
	require.NoError(t, s.CreateUser(ctx, User{ID: "u3", Username: "bob", Email: "b@example.com"}))
}

func TestUserByID_NotFound(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.UserByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTokens_SaveAndResolve(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.SaveToken(ctx, "tok-abc", "u1"))

	id, found, err := s.UserIDForToken(ctx, "tok-abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "u1", id)

	// token desconhecido não é erro, é found=false
	_, found, err = s.UserIDForToken(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestTokens_InfraFailureIsError(t *testing.T) {
	s, mr := setupStore(t)
	mr.Close()

	_, _, err := s.UserIDForToken(context.Background(), "tok")
	assert.Error(t, err)
}

func TestPastes_CreateAndLoad(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateUser(ctx, User{ID: "u1", Username: "alice", Email: "a@example.com"}))
	require.NoError(t, s.CreatePaste(ctx, Paste{
		ID:          "p1",
		AuthorID:    "u1",
		Name:        "hello.go",
		Description: "first paste",
		Visibility:  VisibilityDiscoverable,
	}))

	p, err := s.PasteByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "alice", p.AuthorName)
	assert.Equal(t, VisibilityDiscoverable, p.Visibility)
	assert.Equal(t, int64(0), p.Stars)

	_, err = s.PasteByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPastes_FilesRoundTrip(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	files := []File{
		{Name: "main.go", Content: "package main"},
		{Name: "util.go", Content: "package main\n\nfunc helper() {}"},
	}
	require.NoError(t, s.CreatePaste(ctx, Paste{ID: "p1", Name: "proj", Files: files}))

	p, err := s.PasteByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, files, p.Files)
}

func TestPastes_AnonymousAuthor(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePaste(ctx, Paste{ID: "p1", Name: "anon", Visibility: VisibilityUnlisted}))

	p, err := s.PasteByID(ctx, "p1")
	require.NoError(t, err)
	assert.Empty(t, p.AuthorID)
	assert.Empty(t, p.AuthorName)
}

func TestToggleStar(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreatePaste(ctx, Paste{ID: "p1", Name: "starred"}))

	starred, err := s.ToggleStar(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.True(t, starred)

	p, err := s.PasteByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.Stars)

	starred, err = s.ToggleStar(ctx, "p1", "u1")
	require.NoError(t, err)
	assert.False(t, starred)

	p, err = s.PasteByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.Stars)
}

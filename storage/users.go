package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// User é o registro durável de uma conta.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
}

// CreateUser persiste a conta, reservando username e email nos índices de
// unicidade. Devolve ErrConflict se qualquer um dos dois já estiver em uso.
func (s *Store) CreateUser(ctx context.Context, u User) error {
	ok, err := s.rdb.SetNX(ctx, "username:"+u.Username, u.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("storage: reserving username: %w", err)
	}
	if !ok {
		return ErrConflict
	}

	ok, err = s.rdb.SetNX(ctx, "email:"+u.Email, u.ID, 0).Result()
	if err != nil {
		return fmt.Errorf("storage: reserving email: %w", err)
	}
	if !ok {
		// devolve o username reservado; sem ele a conta nunca existiu
		_ = s.rdb.Del(ctx, "username:"+u.Username).Err()
		return ErrConflict
	}

	err = s.rdb.HSet(ctx, "user:"+u.ID, map[string]any{
		"username": u.Username,
		"email":    u.Email,
		"password": u.PasswordHash,
	}).Err()
	if err != nil {
		return fmt.Errorf("storage: saving user: %w", err)
	}
	return nil
}

// UserByID carrega a conta pelo id público.
func (s *Store) UserByID(ctx context.Context, id string) (User, error) {
	fields, err := s.rdb.HGetAll(ctx, "user:"+id).Result()
	if err != nil {
		return User{}, fmt.Errorf("storage: loading user: %w", err)
	}
	if len(fields) == 0 {
		return User{}, ErrNotFound
	}

	return User{
		ID:           id,
		Username:     fields["username"],
		Email:        fields["email"],
		PasswordHash: fields["password"],
	}, nil
}

// UserByUsername resolve o índice de username e carrega a conta.
func (s *Store) UserByUsername(ctx context.Context, username string) (User, error) {
	return s.userByIndex(ctx, "username:"+username)
}

// UserByEmail resolve o índice de email e carrega a conta.
func (s *Store) UserByEmail(ctx context.Context, email string) (User, error) {
	return s.userByIndex(ctx, "email:"+email)
}

func (s *Store) userByIndex(ctx context.Context, indexKey string) (User, error) {
	id, err := s.rdb.Get(ctx, indexKey).Result()
	if errors.Is(err, redis.Nil) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("storage: resolving index: %w", err)
	}
	return s.UserByID(ctx, id)
}

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SaveToken associa um token de sessão recém-emitido ao usuário.
func (s *Store) SaveToken(ctx context.Context, token, userID string) error {
	if err := s.rdb.Set(ctx, "token:"+token, userID, 0).Err(); err != nil {
		return fmt.Errorf("storage: saving token: %w", err)
	}
	return nil
}

// UserIDForToken resolve token -> user id. Implementa identity.Lookup:
// found=false para token desconhecido, erro só para falha de infraestrutura.
func (s *Store) UserIDForToken(ctx context.Context, token string) (string, bool, error) {
	id, err := s.rdb.Get(ctx, "token:"+token).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("storage: token lookup: %w", err)
	}
	return id, true, nil
}

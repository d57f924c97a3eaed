// Package storage é a camada durável do serviço, em Redis.
//
// Layout de chaves:
//
//	user:<id>            hash {username, email, password}
//	username:<username>  índice -> user id
//	email:<email>        índice -> user id
//	token:<token>        -> user id
//	paste:<id>           hash {author_id, name, description, visibility}
//	paste:<id>:stars     set de user ids
//
// Os índices de unicidade são mantidos com SETNX: quem ganha a corrida fica
// com o nome/email; o perdedor recebe ErrConflict.
package storage

import (
	"errors"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound indica registro inexistente.
var ErrNotFound = errors.New("storage: not found")

// ErrConflict indica violação de unicidade (username/email já usados).
var ErrConflict = errors.New("storage: already exists")

// Store agrupa as operações duráveis sobre um client Redis injetado.
type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

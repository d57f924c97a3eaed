// Package credentials gera identificadores, tokens de sessão e hashes de senha.
//
// O token emitido no login tem o formato
//
//	<user_id>.<base64(ms desde a época custom)>.<base64(32 bytes aleatórios)>
//
// mas isso é um detalhe de emissão: todo o resto do serviço (cache de
// identidade incluso) trata o token como string opaca e nunca parseia a
// estrutura.
package credentials

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/argon2"
)

// Época custom dos timestamps embutidos em tokens (2022-01-01T00:00:00Z).
const tokenEpochMillis = 1_640_995_200_000

// Parâmetros do argon2id. Os recomendados pela RFC 9106 para uso interativo.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

var b64 = base64.RawURLEncoding

// GenerateID devolve n bytes aleatórios em base64 URL-safe sem padding.
// Usado para IDs públicos de usuários e pastes.
func GenerateID(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("credentials: reading random bytes: %w", err)
	}
	return b64.EncodeToString(buf), nil
}

// NewToken emite um token de sessão para o usuário.
func NewToken(userID string) (string, error) {
	ts := make([]byte, 8)
	binary.BigEndian.PutUint64(ts, uint64(time.Now().UnixMilli()-tokenEpochMillis))

	nonce := make([]byte, 32)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("credentials: reading token nonce: %w", err)
	}

	return userID + "." + b64.EncodeToString(ts) + "." + b64.EncodeToString(nonce), nil
}

// HashPassword devolve o hash argon2id da senha em formato PHC.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("credentials: reading salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argonMemory, argonTime, argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(key)), nil
}

// VerifyPassword confere a senha contra um hash PHC produzido por HashPassword.
func VerifyPassword(password, encoded string) (bool, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, fmt.Errorf("credentials: malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return false, fmt.Errorf("credentials: malformed hash version: %w", err)
	}
	if version != argon2.Version {
		return false, fmt.Errorf("credentials: unsupported argon2 version %d", version)
	}

	var memory, iterations uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return false, fmt.Errorf("credentials: malformed hash parameters: %w", err)
	}

	salt, err := b64.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("credentials: malformed hash salt: %w", err)
	}
	want, err := b64.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("credentials: malformed hash key: %w", err)
	}

	got := argon2.IDKey([]byte(password), salt, iterations, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(got, want) == 1, nil
}

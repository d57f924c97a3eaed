package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// Visibility controla quem enxerga um paste.
type Visibility uint8

const (
	VisibilityPrivate      Visibility = 0
	VisibilityProtected    Visibility = 1
	VisibilityUnlisted     Visibility = 2
	VisibilityDiscoverable Visibility = 3
)

// File é um arquivo dentro de um paste.
type File struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// Paste é o registro durável de um paste. AuthorName é derivado (join com a
// conta do autor) e só é preenchido na leitura.
type Paste struct {
	ID          string
	AuthorID    string
	AuthorName  string
	Name        string
	Description string
	Visibility  Visibility
	Files       []File
	Stars       int64
}

// CreatePaste persiste o paste. Os arquivos vão serializados em um único
// campo do hash; eles são sempre lidos e escritos juntos.
func (s *Store) CreatePaste(ctx context.Context, p Paste) error {
	files, err := json.Marshal(p.Files)
	if err != nil {
		return fmt.Errorf("storage: encoding paste files: %w", err)
	}

	err = s.rdb.HSet(ctx, "paste:"+p.ID, map[string]any{
		"author_id":   p.AuthorID,
		"name":        p.Name,
		"description": p.Description,
		"visibility":  int(p.Visibility),
		"files":       string(files),
	}).Err()
	if err != nil {
		return fmt.Errorf("storage: saving paste: %w", err)
	}
	return nil
}

// PasteByID carrega o paste e resolve o nome do autor, se houver.
func (s *Store) PasteByID(ctx context.Context, id string) (Paste, error) {
	fields, err := s.rdb.HGetAll(ctx, "paste:"+id).Result()
	if err != nil {
		return Paste{}, fmt.Errorf("storage: loading paste: %w", err)
	}
	if len(fields) == 0 {
		return Paste{}, ErrNotFound
	}

	vis, _ := strconv.Atoi(fields["visibility"])
	p := Paste{
		ID:          id,
		AuthorID:    fields["author_id"],
		Name:        fields["name"],
		Description: fields["description"],
		Visibility:  Visibility(vis),
	}

	if raw := fields["files"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &p.Files); err != nil {
			return Paste{}, fmt.Errorf("storage: decoding paste files: %w", err)
		}
	}

	if p.AuthorID != "" {
		if author, err := s.UserByID(ctx, p.AuthorID); err == nil {
			p.AuthorName = author.Username
		}
	}

	stars, err := s.rdb.SCard(ctx, "paste:"+id+":stars").Result()
	if err != nil {
		return Paste{}, fmt.Errorf("storage: counting stars: %w", err)
	}
	p.Stars = stars

	return p, nil
}

// ToggleStar alterna a estrela do usuário no paste e devolve o estado final
// (true = estrelado).
func (s *Store) ToggleStar(ctx context.Context, pasteID, userID string) (bool, error) {
	key := "paste:" + pasteID + ":stars"

	starred, err := s.rdb.SIsMember(ctx, key, userID).Result()
	if err != nil {
		return false, fmt.Errorf("storage: checking star: %w", err)
	}

	if starred {
		if err := s.rdb.SRem(ctx, key, userID).Err(); err != nil {
			return false, fmt.Errorf("storage: removing star: %w", err)
		}
		return false, nil
	}

	if err := s.rdb.SAdd(ctx, key, userID).Err(); err != nil {
		return false, fmt.Errorf("storage: adding star: %w", err)
	}
	return true, nil
}

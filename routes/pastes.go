package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jay3332/Turbine/credentials"
	"github.com/jay3332/Turbine/httpjson"
	"github.com/jay3332/Turbine/middleware/identity"
	"github.com/jay3332/Turbine/storage"
)

const (
	pasteIDBytes = 6

	maxPasteFiles    = 16
	maxFileSizeBytes = 2 << 20
)

type createPasteRequest struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Visibility  *uint8         `json:"visibility"`
	Files       []storage.File `json:"files"`
}

type pasteResponse struct {
	ID          string         `json:"id"`
	AuthorID    string         `json:"author_id,omitempty"`
	AuthorName  string         `json:"author_name,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Visibility  uint8          `json:"visibility"`
	Files       []storage.File `json:"files,omitempty"`
	Stars       int64          `json:"stars"`
}

type starResponse struct {
	Starred bool  `json:"starred"`
	Stars   int64 `json:"stars"`
}

func (h *handler) createPaste(w http.ResponseWriter, r *http.Request) {
	who, _ := identity.FromContext(r.Context())

	var req createPasteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpjson.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	if req.Name == "" {
		httpjson.WriteError(w, http.StatusBadRequest, "Paste name is required")
		return
	}
	if len(req.Name) > 64 {
		httpjson.WriteError(w, http.StatusBadRequest, "Paste name must be at most 64 characters long")
		return
	}
	if len(req.Description) > 1024 {
		httpjson.WriteError(w, http.StatusBadRequest, "Paste description must be at most 1024 characters long")
		return
	}
	if len(req.Files) > maxPasteFiles {
		httpjson.WriteError(w, http.StatusBadRequest, "A paste can have at most 16 files")
		return
	}
	for _, f := range req.Files {
		if len(f.Content) > maxFileSizeBytes {
			httpjson.WriteErrorf(w, http.StatusBadRequest, "File %q exceeds the 2 MB size limit", f.Name)
			return
		}
	}

	visibility := storage.VisibilityUnlisted
	if req.Visibility != nil {
		if *req.Visibility > uint8(storage.VisibilityDiscoverable) {
			httpjson.WriteError(w, http.StatusBadRequest, "Visibility must be between 0 and 3")
			return
		}
		visibility = storage.Visibility(*req.Visibility)
	}

	id, err := credentials.GenerateID(pasteIDBytes)
	if err != nil {
		h.internalError(w, "generating paste id", err)
		return
	}

	paste := storage.Paste{
		ID:          id,
		AuthorID:    who.UserID,
		Name:        req.Name,
		Description: req.Description,
		Visibility:  visibility,
		Files:       req.Files,
	}
	if err := h.store.CreatePaste(r.Context(), paste); err != nil {
		h.internalError(w, "creating paste", err)
		return
	}

	httpjson.Write(w, http.StatusCreated, pasteResponse{
		ID:          id,
		AuthorID:    paste.AuthorID,
		Name:        paste.Name,
		Description: paste.Description,
		Visibility:  uint8(paste.Visibility),
		Files:       paste.Files,
	})
}

func (h *handler) getPaste(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	paste, err := h.store.PasteByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "Paste not found")
		return
	}
	if err != nil {
		h.internalError(w, "loading paste", err)
		return
	}

	if !canViewPaste(r, paste) {
		// 404 em vez de 403: um paste privado não deve nem confirmar que existe
		httpjson.WriteError(w, http.StatusNotFound, "Paste not found")
		return
	}

	httpjson.Write(w, http.StatusOK, pasteResponse{
		ID:          paste.ID,
		AuthorID:    paste.AuthorID,
		AuthorName:  paste.AuthorName,
		Name:        paste.Name,
		Description: paste.Description,
		Visibility:  uint8(paste.Visibility),
		Files:       paste.Files,
		Stars:       paste.Stars,
	})
}

// canViewPaste aplica as regras de visibilidade:
//   - Private: só o autor
//   - Protected: qualquer request autenticado
//   - Unlisted/Discoverable: público
func canViewPaste(r *http.Request, p storage.Paste) bool {
	who, authed := identity.FromContext(r.Context())

	switch p.Visibility {
	case storage.VisibilityPrivate:
		return authed && who.UserID == p.AuthorID
	case storage.VisibilityProtected:
		return authed
	default:
		return true
	}
}

func (h *handler) starPaste(w http.ResponseWriter, r *http.Request) {
	who, _ := identity.FromContext(r.Context())
	id := r.PathValue("id")

	paste, err := h.store.PasteByID(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		httpjson.WriteError(w, http.StatusNotFound, "Paste not found")
		return
	}
	if err != nil {
		h.internalError(w, "loading paste", err)
		return
	}
	if !canViewPaste(r, paste) {
		httpjson.WriteError(w, http.StatusNotFound, "Paste not found")
		return
	}

	starred, err := h.store.ToggleStar(r.Context(), id, who.UserID)
	if err != nil {
		h.internalError(w, "toggling star", err)
		return
	}

	stars := paste.Stars
	if starred {
		stars++
	} else {
		stars--
	}

	httpjson.Write(w, http.StatusOK, starResponse{Starred: starred, Stars: stars})
}

package api

import (
	"database/sql"
	"net/http"

	"github.com/mkovacic/biblio/internal/model"
	"github.com/mkovacic/biblio/internal/store"
)

// AuthorsHandler handles author listing and admin creation.
type AuthorsHandler struct {
	DB *sql.DB
}

type authorRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Biography string `json:"biography"`
}

// List handles GET /api/authors.
func (h *AuthorsHandler) List(w http.ResponseWriter, r *http.Request) {
	authors, err := store.ListAuthors(r.Context(), h.DB)
	if err != nil {
		domainError(w, err, "failed to list authors")
		return
	}
	if authors == nil {
		authors = []model.Author{}
	}
	jsonResponse(w, http.StatusOK, authors)
}

// Create handles POST /api/admin/authors.
func (h *AuthorsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req authorRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.FirstName == "" || req.LastName == "" {
		jsonError(w, http.StatusBadRequest, "first and last name required")
		return
	}

	author, err := store.CreateAuthor(r.Context(), h.DB, req.FirstName, req.LastName, req.Biography)
	if err != nil {
		domainError(w, err, "failed to create author")
		return
	}

	jsonResponse(w, http.StatusCreated, author)
}

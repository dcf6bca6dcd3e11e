package api

import (
	"database/sql"
	"net/http"

	"github.com/mkovacic/biblio/internal/model"
	"github.com/mkovacic/biblio/internal/store"
)

// CategoriesHandler lists the catalog's categories, so clients can offer
// them as filters and admins can pick IDs when creating books.
type CategoriesHandler struct {
	DB *sql.DB
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		domainError(w, err, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []model.Category{}
	}
	jsonResponse(w, http.StatusOK, categories)
}

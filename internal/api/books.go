package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mkovacic/biblio/internal/imaging"
	"github.com/mkovacic/biblio/internal/lending"
	"github.com/mkovacic/biblio/internal/model"
	"github.com/mkovacic/biblio/internal/store"
)

// BooksHandler handles catalog browsing and admin book CRUD.
type BooksHandler struct {
	DB      *sql.DB
	Lending *lending.Service
}

type bookRequest struct {
	ISBN            string            `json:"isbn"`
	Title           string            `json:"title"`
	Publisher       string            `json:"publisher"`
	PublicationYear int               `json:"publication_year"`
	Genre           string            `json:"genre"`
	Description     string            `json:"description"`
	Location        string            `json:"location"`
	TotalCopies     int               `json:"total_copies"`
	Authors         []store.AuthorRef `json:"authors"`
	CategoryIDs     []int64           `json:"category_ids"`
}

type setCopiesRequest struct {
	TotalCopies int `json:"total_copies"`
}

func (br bookRequest) toNewBook() store.NewBook {
	return store.NewBook{
		ISBN:            br.ISBN,
		Title:           br.Title,
		Publisher:       br.Publisher,
		PublicationYear: br.PublicationYear,
		Genre:           br.Genre,
		Description:     br.Description,
		Location:        br.Location,
		TotalCopies:     br.TotalCopies,
		Authors:         br.Authors,
		CategoryIDs:     br.CategoryIDs,
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

// List handles GET /api/books with optional search filters.
func (h *BooksHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := store.BookFilter{
		Search:        q.Get("search"),
		Author:        q.Get("author"),
		Genre:         q.Get("genre"),
		AvailableOnly: q.Get("available") == "true",
	}

	books, err := store.ListBooks(r.Context(), h.DB, filter)
	if err != nil {
		domainError(w, err, "failed to list books")
		return
	}
	if books == nil {
		books = []model.Book{}
	}
	jsonResponse(w, http.StatusOK, books)
}

// Get handles GET /api/books/{id}.
func (h *BooksHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	book, err := store.GetBook(r.Context(), h.DB, id)
	if err != nil {
		domainError(w, err, "failed to get book")
		return
	}
	if book == nil {
		jsonError(w, http.StatusNotFound, "book not found")
		return
	}
	jsonResponse(w, http.StatusOK, book)
}

// Create handles POST /api/admin/books.
func (h *BooksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}
	if req.TotalCopies < 0 {
		jsonError(w, http.StatusBadRequest, "total copies must not be negative")
		return
	}

	book, err := store.CreateBook(r.Context(), h.DB, req.toNewBook())
	if err != nil {
		domainError(w, err, "failed to create book")
		return
	}

	jsonResponse(w, http.StatusCreated, book)
}

// Update handles PUT /api/admin/books/{id}. Copy counts are not editable
// here; see SetCopies.
func (h *BooksHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req bookRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Title == "" {
		jsonError(w, http.StatusBadRequest, "title required")
		return
	}

	if err := store.UpdateBook(r.Context(), h.DB, id, req.toNewBook()); err != nil {
		domainError(w, err, "failed to update book")
		return
	}

	book, _ := store.GetBook(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, book)
}

// SetCopies handles PUT /api/admin/books/{id}/copies, routing the change
// through the lending service so the availability shift feeds the notifier.
func (h *BooksHandler) SetCopies(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	var req setCopiesRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TotalCopies < 0 {
		jsonError(w, http.StatusBadRequest, "total copies must not be negative")
		return
	}

	if err := h.Lending.SetTotalCopies(r.Context(), id, req.TotalCopies); err != nil {
		domainError(w, err, "failed to set copy counts")
		return
	}

	book, _ := store.GetBook(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, book)
}

// Delete handles DELETE /api/admin/books/{id}.
func (h *BooksHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	if err := store.DeleteBook(r.Context(), h.DB, id); err != nil {
		domainError(w, err, "failed to delete book")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

// UploadCover handles PUT /api/admin/books/{id}/cover.
func (h *BooksHandler) UploadCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("cover")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "cover file required")
		return
	}
	defer file.Close()

	cover, err := imaging.ProcessCover(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetBookCover(r.Context(), h.DB, id, cover.Data, cover.MIME); err != nil {
		domainError(w, err, "failed to save cover")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "cover uploaded"})
}

// GetCover handles GET /api/books/{id}/cover.
func (h *BooksHandler) GetCover(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid book id")
		return
	}

	data, mime, err := store.GetBookCover(r.Context(), h.DB, id)
	if err != nil {
		domainError(w, err, "failed to get cover")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no cover")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

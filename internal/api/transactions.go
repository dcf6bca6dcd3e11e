package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/mkovacic/biblio/internal/lending"
	"github.com/mkovacic/biblio/internal/model"
	"github.com/mkovacic/biblio/internal/store"
)

// TransactionsHandler handles borrowing and returning books.
type TransactionsHandler struct {
	DB      *sql.DB
	Lending *lending.Service
}

type borrowRequest struct {
	BookID int64 `json:"book_id"`
}

type returnRequest struct {
	TransactionID int64 `json:"transaction_id"`
}

// Borrow handles POST /api/transactions/borrow.
func (h *TransactionsHandler) Borrow(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req borrowRequest
	if err := decodeJSON(r, &req); err != nil || req.BookID == 0 {
		jsonError(w, http.StatusBadRequest, "book_id required")
		return
	}

	txID, err := h.Lending.Borrow(r.Context(), claims.UserID, req.BookID)
	if err != nil {
		domainError(w, err, "failed to borrow book")
		return
	}

	tx, err := store.GetTransaction(r.Context(), h.DB, txID)
	if err != nil || tx == nil {
		slog.Error("fetching new transaction", "id", txID, "error", err)
		jsonResponse(w, http.StatusCreated, map[string]int64{"transaction_id": txID})
		return
	}

	jsonResponse(w, http.StatusCreated, tx)
}

// Return handles POST /api/transactions/return.
func (h *TransactionsHandler) Return(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	var req returnRequest
	if err := decodeJSON(r, &req); err != nil || req.TransactionID == 0 {
		jsonError(w, http.StatusBadRequest, "transaction_id required")
		return
	}

	if err := h.Lending.Return(r.Context(), req.TransactionID, claims.UserID); err != nil {
		domainError(w, err, "failed to return book")
		return
	}

	tx, err := store.GetTransaction(r.Context(), h.DB, req.TransactionID)
	if err != nil || tx == nil {
		jsonResponse(w, http.StatusOK, map[string]string{"message": "book returned"})
		return
	}

	jsonResponse(w, http.StatusOK, tx)
}

// MyBooks handles GET /api/transactions/my-books, listing the caller's
// borrow history with derived overdue state.
func (h *TransactionsHandler) MyBooks(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	transactions, err := store.ListTransactionsByUser(r.Context(), h.DB, claims.UserID)
	if err != nil {
		domainError(w, err, "failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, transactions)
}

// ListAll handles GET /api/admin/transactions.
func (h *TransactionsHandler) ListAll(w http.ResponseWriter, r *http.Request) {
	transactions, err := store.ListAllTransactions(r.Context(), h.DB)
	if err != nil {
		domainError(w, err, "failed to list transactions")
		return
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}
	jsonResponse(w, http.StatusOK, transactions)
}

// Statistics handles GET /api/admin/statistics.
func (h *TransactionsHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := store.GetStatistics(r.Context(), h.DB)
	if err != nil {
		domainError(w, err, "failed to compute statistics")
		return
	}
	jsonResponse(w, http.StatusOK, stats)
}

package api

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkovacic/biblio/internal/db"
	"github.com/mkovacic/biblio/internal/store"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*httptest.Server, *sql.DB) {
	t.Helper()
	database := db.NewTestDB(t)
	srv := httptest.NewServer(NewRouter(database, testSecret))
	t.Cleanup(srv.Close)
	return srv, database
}

func seedAdmin(t *testing.T, database *sql.DB) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hashing password: %v", err)
	}
	_, err = store.CreateUser(context.Background(), database, store.NewUser{
		Username:     "admin",
		Email:        "admin@test.local",
		PasswordHash: string(hash),
		FirstName:    "Admin",
		LastName:     "User",
		Role:         "admin",
	})
	if err != nil {
		t.Fatalf("creating admin: %v", err)
	}
}

// doJSON sends a JSON request with an optional bearer token and decodes the
// response body into out (when non-nil).
func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decoding response: %v", err)
		}
	}
	return resp
}

func login(t *testing.T, srv *httptest.Server, username, password string) string {
	t.Helper()
	var result struct {
		Token string `json:"token"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "",
		map[string]string{"username": username, "password": password}, &result)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login as %s: status %d", username, resp.StatusCode)
	}
	return result.Token
}

func registerAndLogin(t *testing.T, srv *httptest.Server, username string) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username":   username,
		"email":      username + "@test.local",
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "User",
	}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("registering %s: status %d", username, resp.StatusCode)
	}
	return login(t, srv, username, "password123")
}

func createBook(t *testing.T, srv *httptest.Server, adminToken, title string, copies int) int64 {
	t.Helper()
	var book struct {
		ID int64 `json:"id"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/books", adminToken, map[string]any{
		"title":        title,
		"total_copies": copies,
		"genre":        "Science Fiction",
		"authors": []map[string]any{
			{"first_name": "Frank", "last_name": "Herbert", "author_order": 1},
		},
	}, &book)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("creating book: status %d", resp.StatusCode)
	}
	return book.ID
}

func TestRegisterAndLogin(t *testing.T) {
	srv, _ := newTestServer(t)

	token := registerAndLogin(t, srv, "alice")
	if token == "" {
		t.Fatal("expected a token")
	}

	// Second registration with the same username fails.
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/register", "", map[string]string{
		"username":   "alice",
		"email":      "other@test.local",
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "User",
	}, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for duplicate username, got %d", resp.StatusCode)
	}

	// Wrong password is rejected.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/auth/login", "",
		map[string]string{"username": "alice", "password": "wrong"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", resp.StatusCode)
	}
}

func TestPublicBrowsingNeedsNoAuth(t *testing.T) {
	srv, database := newTestServer(t)
	seedAdmin(t, database)
	adminToken := login(t, srv, "admin", "admin-pass")

	bookID := createBook(t, srv, adminToken, "Dune", 2)

	var books []map[string]any
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/books?search=dune", "", nil, &books)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("listing books: status %d", resp.StatusCode)
	}
	if len(books) != 1 {
		t.Errorf("expected 1 book, got %d", len(books))
	}

	resp = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/books/%d", srv.URL, bookID), "", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("getting book: status %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, srv.URL+"/api/books/9999", "", nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for missing book, got %d", resp.StatusCode)
	}
}

func TestListCategoriesPublic(t *testing.T) {
	srv, database := newTestServer(t)

	for _, name := range []string{"Fiction", "Science"} {
		if err := store.CreateCategory(context.Background(), database, name, ""); err != nil {
			t.Fatalf("creating category: %v", err)
		}
	}

	var categories []struct {
		ID   int64  `json:"id"`
		Name string `json:"name"`
	}
	resp := doJSON(t, http.MethodGet, srv.URL+"/api/categories", "", nil, &categories)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("listing categories: status %d", resp.StatusCode)
	}
	if len(categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(categories))
	}
	if categories[0].Name != "Fiction" || categories[0].ID == 0 {
		t.Errorf("unexpected first category: %+v", categories[0])
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	srv, _ := newTestServer(t)
	userToken := registerAndLogin(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/admin/books", userToken,
		map[string]any{"title": "Dune", "total_copies": 1}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/admin/books", "",
		map[string]any{"title": "Dune", "total_copies": 1}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", resp.StatusCode)
	}
}

func TestBorrowReturnFlow(t *testing.T) {
	srv, database := newTestServer(t)
	seedAdmin(t, database)
	adminToken := login(t, srv, "admin", "admin-pass")
	aliceToken := registerAndLogin(t, srv, "alice")
	bobToken := registerAndLogin(t, srv, "bob")

	bookID := createBook(t, srv, adminToken, "Dune", 1)

	// Alice borrows the only copy.
	var tx struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions/borrow", aliceToken,
		map[string]int64{"book_id": bookID}, &tx)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("borrowing: status %d", resp.StatusCode)
	}
	if tx.Status != "active" {
		t.Errorf("expected active transaction, got %q", tx.Status)
	}

	// Bob cannot borrow while no copy is free.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/transactions/borrow", bobToken,
		map[string]int64{"book_id": bookID}, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 while out of stock, got %d", resp.StatusCode)
	}

	// Bob cannot return Alice's loan.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/transactions/return", bobToken,
		map[string]int64{"transaction_id": tx.ID}, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("expected 403 for foreign transaction, got %d", resp.StatusCode)
	}

	// Alice's loan shows up under her account.
	var mine []map[string]any
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/transactions/my-books", aliceToken, nil, &mine)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("listing own loans: status %d", resp.StatusCode)
	}
	if len(mine) != 1 {
		t.Errorf("expected 1 loan, got %d", len(mine))
	}

	// Alice returns the book.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/transactions/return", aliceToken,
		map[string]int64{"transaction_id": tx.ID}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("returning: status %d", resp.StatusCode)
	}

	// Returning again fails with 404.
	resp = doJSON(t, http.MethodPost, srv.URL+"/api/transactions/return", aliceToken,
		map[string]int64{"transaction_id": tx.ID}, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for closed transaction, got %d", resp.StatusCode)
	}

	// The borrow/return cycle produced empty then restocked notifications.
	var notifications []map[string]any
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/admin/notifications", adminToken, nil, &notifications)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("listing notifications: status %d", resp.StatusCode)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	if notifications[0]["kind"] != "restocked" || notifications[1]["kind"] != "empty" {
		t.Errorf("unexpected notification kinds: %v, %v", notifications[0]["kind"], notifications[1]["kind"])
	}
}

func TestAdminBookManagement(t *testing.T) {
	srv, database := newTestServer(t)
	seedAdmin(t, database)
	adminToken := login(t, srv, "admin", "admin-pass")

	bookID := createBook(t, srv, adminToken, "Dune", 2)

	// Update metadata.
	var updated struct {
		Title       string `json:"title"`
		TotalCopies int    `json:"total_copies"`
	}
	resp := doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/admin/books/%d", srv.URL, bookID), adminToken,
		map[string]any{"title": "Dune Messiah", "total_copies": 99}, &updated)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("updating book: status %d", resp.StatusCode)
	}
	if updated.Title != "Dune Messiah" {
		t.Errorf("expected updated title, got %q", updated.Title)
	}
	if updated.TotalCopies != 2 {
		t.Errorf("metadata update must not change copy counts, got %d", updated.TotalCopies)
	}

	// Copy counts change through the dedicated endpoint.
	var resized struct {
		TotalCopies     int `json:"total_copies"`
		AvailableCopies int `json:"available_copies"`
	}
	resp = doJSON(t, http.MethodPut, fmt.Sprintf("%s/api/admin/books/%d/copies", srv.URL, bookID), adminToken,
		map[string]int{"total_copies": 5}, &resized)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("setting copies: status %d", resp.StatusCode)
	}
	if resized.TotalCopies != 5 || resized.AvailableCopies != 5 {
		t.Errorf("expected 5/5 copies, got %d/%d", resized.AvailableCopies, resized.TotalCopies)
	}

	// Delete, then a second delete 404s.
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/books/%d", srv.URL, bookID), adminToken, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("deleting book: status %d", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodDelete, fmt.Sprintf("%s/api/admin/books/%d", srv.URL, bookID), adminToken, nil, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 on second delete, got %d", resp.StatusCode)
	}
}

func TestStatisticsEndpoint(t *testing.T) {
	srv, database := newTestServer(t)
	seedAdmin(t, database)
	adminToken := login(t, srv, "admin", "admin-pass")
	aliceToken := registerAndLogin(t, srv, "alice")

	bookID := createBook(t, srv, adminToken, "Dune", 2)
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/transactions/borrow", aliceToken,
		map[string]int64{"book_id": bookID}, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("borrowing: status %d", resp.StatusCode)
	}

	var stats struct {
		TotalBooks    int `json:"total_books"`
		TotalUsers    int `json:"total_users"`
		ActiveBorrows int `json:"active_borrows"`
	}
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/admin/statistics", adminToken, nil, &stats)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("getting statistics: status %d", resp.StatusCode)
	}
	if stats.TotalBooks != 1 || stats.TotalUsers != 1 || stats.ActiveBorrows != 1 {
		t.Errorf("unexpected statistics: %+v", stats)
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv, "alice")

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/auth/logout", token, nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logging out: status %d", resp.StatusCode)
	}

	// The revoked token no longer opens authenticated routes.
	resp = doJSON(t, http.MethodGet, srv.URL+"/api/transactions/my-books", token, nil, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

func TestChangePassword(t *testing.T) {
	srv, _ := newTestServer(t)
	token := registerAndLogin(t, srv, "alice")

	resp := doJSON(t, http.MethodPut, srv.URL+"/api/auth/password", token,
		map[string]string{"current_password": "wrong", "new_password": "next-password"}, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 for wrong current password, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPut, srv.URL+"/api/auth/password", token,
		map[string]string{"current_password": "password123", "new_password": "next-password"}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("changing password: status %d", resp.StatusCode)
	}

	login(t, srv, "alice", "next-password")
}

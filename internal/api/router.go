package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mkovacic/biblio/internal/lending"
)

// NewRouter wires every API route. The jwtSecret signs and verifies
// session tokens; db backs both the stores and token revocation checks.
func NewRouter(db *sql.DB, jwtSecret string) http.Handler {
	svc := lending.NewService(db)

	authH := &AuthHandler{DB: db, JWTSecret: jwtSecret}
	booksH := &BooksHandler{DB: db, Lending: svc}
	txH := &TransactionsHandler{DB: db, Lending: svc}
	authorsH := &AuthorsHandler{DB: db}
	categoriesH := &CategoriesHandler{DB: db}
	notifH := &NotificationsHandler{DB: db}
	usersH := &UsersHandler{DB: db}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Route("/api", func(r chi.Router) {
		// Public routes.
		r.Post("/auth/register", authH.Register)
		r.Post("/auth/login", authH.Login)
		r.Get("/books", booksH.List)
		r.Get("/books/{id}", booksH.Get)
		r.Get("/books/{id}/cover", booksH.GetCover)
		r.Get("/authors", authorsH.List)
		r.Get("/categories", categoriesH.List)

		// Routes for logged-in users.
		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(jwtSecret, db))

			r.Put("/auth/password", authH.ChangePassword)
			r.Post("/auth/logout", authH.Logout)
			r.Post("/transactions/borrow", txH.Borrow)
			r.Post("/transactions/return", txH.Return)
			r.Get("/transactions/my-books", txH.MyBooks)
		})

		// Admin routes.
		r.Route("/admin", func(r chi.Router) {
			r.Use(AuthMiddleware(jwtSecret, db))
			r.Use(RequireAdmin)

			r.Post("/books", booksH.Create)
			r.Put("/books/{id}", booksH.Update)
			r.Delete("/books/{id}", booksH.Delete)
			r.Put("/books/{id}/copies", booksH.SetCopies)
			r.Put("/books/{id}/cover", booksH.UploadCover)
			r.Post("/authors", authorsH.Create)
			r.Get("/users", usersH.List)
			r.Get("/transactions", txH.ListAll)
			r.Get("/statistics", txH.Statistics)
			r.Get("/notifications", notifH.List)
			r.Put("/notifications/{id}/read", notifH.MarkRead)
		})
	})

	return r
}

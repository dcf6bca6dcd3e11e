package main

import (
	"context"
	"crypto/rand"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mkovacic/biblio/internal/api"
	"github.com/mkovacic/biblio/internal/config"
	"github.com/mkovacic/biblio/internal/db"
	"github.com/mkovacic/biblio/internal/store"
)

// defaultCategories are seeded into a fresh database so admins can
// classify books right away.
var defaultCategories = []struct {
	name, description string
}{
	{"Fiction", "Novels and short stories"},
	{"Non-Fiction", "Factual books"},
	{"Science", "Scientific literature"},
	{"History", "Historical works"},
	{"Technology", "Computing and engineering"},
	{"Literature", "Classic and literary works"},
	{"Children", "Books for children"},
	{"Reference", "Dictionaries, encyclopedias, manuals"},
}

func main() {
	cfg := config.Load()

	fs := flag.NewFlagSet("biblio", flag.ContinueOnError)

	var dbPath string
	fs.StringVar(&dbPath, "db", cfg.DBPath, "")
	fs.StringVar(&dbPath, "d", cfg.DBPath, "")

	var addr string
	fs.StringVar(&addr, "addr", cfg.Addr, "")
	fs.StringVar(&addr, "a", cfg.Addr, "")

	var adminUser string
	fs.StringVar(&adminUser, "user", "admin", "")
	fs.StringVar(&adminUser, "u", "admin", "")

	fs.Usage = func() {
		fmt.Fprint(os.Stdout, `Usage: biblio [flags]

Flags:
  -d, -db <path>          SQLite database path (default: biblio.sqlite3, env BIBLIO_DB)
  -a, -addr <host:port>   listen address (default: :8080, env BIBLIO_ADDR)
  -u, -user <name>        admin username on first run (default: admin)
  -h, -help               show this help and exit

The JWT signing secret can be set with BIBLIO_JWT_SECRET; if unset, a
secret is generated on first run and persisted in the database.
`)
	}

	if err := fs.Parse(os.Args[1:]); err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "unexpected argument: %s\n", fs.Arg(0))
		fs.Usage()
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	// Check if DB exists, auto-init if not.
	firstRun := false
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		firstRun = true
	}

	database, err := db.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}

	if firstRun {
		password, err := seedDatabase(database, adminUser)
		if err != nil {
			slog.Error("failed to seed database", "error", err)
			database.Close()
			os.Remove(dbPath)
			os.Exit(1)
		}
		printInitResult(dbPath, adminUser, password)
		fmt.Println()
	}

	slog.Info("database ready", "path", dbPath)

	// Prefer the secret from the environment; otherwise use the persisted
	// one (auto-generated on first run).
	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		jwtSecret, err = store.GetJWTSecret(context.Background(), database)
		if err != nil {
			slog.Error("failed to get JWT secret", "error", err)
			os.Exit(1)
		}
	}

	router := api.NewRouter(database, jwtSecret)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-quit
		slog.Info("shutdown signal received", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			slog.Error("server forced to shutdown", "error", err)
		}
	}()

	slog.Info("server started", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped, closing database")
}

// seedDatabase creates the default categories and the admin account on a
// fresh database. Returns the generated admin password.
func seedDatabase(database *sql.DB, adminUsername string) (string, error) {
	ctx := context.Background()

	for _, c := range defaultCategories {
		if err := store.CreateCategory(ctx, database, c.name, c.description); err != nil {
			return "", fmt.Errorf("seeding category %q: %w", c.name, err)
		}
	}

	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	_, err = store.CreateUser(ctx, database, store.NewUser{
		Username:     adminUsername,
		Email:        adminUsername + "@localhost",
		PasswordHash: string(hash),
		FirstName:    "Library",
		LastName:     "Admin",
		Role:         "admin",
	})
	if err != nil {
		return "", fmt.Errorf("creating admin user: %w", err)
	}

	return password, nil
}

// printInitResult prints the database initialization result to stdout.
func printInitResult(dbPath, username, password string) {
	fmt.Printf("Database created: %s\n", dbPath)
	fmt.Println("Schema initialized, default categories seeded.")
	fmt.Println()
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}

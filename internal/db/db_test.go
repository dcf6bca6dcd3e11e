package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func TestPragmasReachEveryConnection(t *testing.T) {
	database, err := Open(filepath.Join(t.TempDir(), "pragmas.sqlite3"))
	if err != nil {
		t.Fatalf("opening database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	// Pin two connections at once so the pool really opens a second one.
	ctx := context.Background()
	var conns []*sql.Conn
	for i := 0; i < 2; i++ {
		conn, err := database.Conn(ctx)
		if err != nil {
			t.Fatalf("getting connection %d: %v", i, err)
		}
		t.Cleanup(func() { conn.Close() })
		conns = append(conns, conn)
	}

	for i, conn := range conns {
		var fk int
		if err := conn.QueryRowContext(ctx, "PRAGMA foreign_keys").Scan(&fk); err != nil {
			t.Fatalf("reading foreign_keys on connection %d: %v", i, err)
		}
		if fk != 1 {
			t.Errorf("connection %d: foreign_keys = %d, want 1", i, fk)
		}

		var timeout int
		if err := conn.QueryRowContext(ctx, "PRAGMA busy_timeout").Scan(&timeout); err != nil {
			t.Fatalf("reading busy_timeout on connection %d: %v", i, err)
		}
		if timeout != 5000 {
			t.Errorf("connection %d: busy_timeout = %d, want 5000", i, timeout)
		}
	}
}

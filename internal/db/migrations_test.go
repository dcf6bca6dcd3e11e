package db

import "testing"

func TestMigrateIdempotent(t *testing.T) {
	database := NewTestDB(t)

	// NewTestDB already ran Migrate once; running it again must not fail.
	if err := Migrate(database); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
	if err := Migrate(database); err != nil {
		t.Fatalf("third Migrate: %v", err)
	}
}

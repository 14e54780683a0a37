package store

import (
	"database/sql"
	"testing"

	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/model"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(email, "hash", "Test User")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createTestList(t *testing.T, db *sql.DB, userID int64, name string) *model.ShoppingList {
	t.Helper()
	l, err := NewListStore(db).CreateList(userID, name, nil, nil)
	if err != nil {
		t.Fatalf("create list: %v", err)
	}
	return l
}

func createTestItem(t *testing.T, db *sql.DB, userID int64, name string, price *float64) *model.Item {
	t.Helper()
	it, err := NewCatalogStore(db).CreateItem(&userID, name, nil, price, false)
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	return it
}

func ptr[T any](v T) *T { return &v }

package service

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/database"
	"github.com/dukerupert/shoplist/internal/model"
)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(db, tokens, "test", logger)
}

func registerUser(t *testing.T, svc *Service, email string) *model.User {
	t.Helper()
	u, err := svc.Register(RegisterInput{Email: email, Password: "correct-horse", Name: "Tester"})
	require.NoError(t, err)
	return u
}

func createList(t *testing.T, svc *Service, userID int64, name string) *model.ShoppingList {
	t.Helper()
	l, err := svc.CreateList(userID, CreateListInput{Name: name})
	require.NoError(t, err)
	return l
}

func ptr[T any](v T) *T { return &v }

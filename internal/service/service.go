// Package service exposes the shopping-list operations to the outside
// world. Every operation takes the authenticated user id first, validates
// its input before touching storage, and reports failures with the errors in
// errors.go.
package service

import (
	"database/sql"
	"log/slog"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/pricing"
	"github.com/dukerupert/shoplist/internal/store"
	"github.com/dukerupert/shoplist/internal/validator"
)

const (
	DefaultListLimit     = 20
	DefaultPurchaseLimit = 50
	maxLimit             = 200
)

type Service struct {
	db        *sql.DB
	users     *store.UserStore
	catalog   *store.CatalogStore
	lists     *store.ListStore
	purchases *store.PurchaseStore
	spending  *store.SpendingStore
	prices    *pricing.Resolver
	tokens    *auth.TokenIssuer
	validate  *validator.Validator
	env       string
	logger    *slog.Logger
}

func New(db *sql.DB, tokens *auth.TokenIssuer, env string, logger *slog.Logger) *Service {
	spending := store.NewSpendingStore(db)
	return &Service{
		db:        db,
		users:     store.NewUserStore(db),
		catalog:   store.NewCatalogStore(db),
		lists:     store.NewListStore(db),
		purchases: store.NewPurchaseStore(db),
		spending:  spending,
		prices:    pricing.NewResolver(spending),
		tokens:    tokens,
		validate:  validator.New(),
		env:       env,
		logger:    logger,
	}
}

// check runs struct validation and wraps failures as ErrValidation.
func (s *Service) check(in any) error {
	if err := s.validate.Validate(in); err != nil {
		return invalid(err)
	}
	return nil
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

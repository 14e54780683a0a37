package service

import (
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/auth"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/store"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
	Name     string `json:"name" validate:"notblank,max=100"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResult struct {
	UserID    int64       `json:"user_id"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. A taken email yields ErrDuplicateEmail.
func (s *Service) Register(in RegisterInput) (*model.User, error) {
	in.Email = normalizeEmail(in.Email)
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}

	existing, err := s.users.GetByEmail(in.Email)
	if err != nil {
		return nil, s.fail("register", err)
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, s.fail("register", err)
	}

	user, err := s.users.Create(in.Email, hash, in.Name)
	if store.IsUniqueViolation(err) {
		return nil, ErrDuplicateEmail
	}
	if err != nil {
		return nil, s.fail("register", err)
	}
	s.logger.Info("user registered", "user_id", user.ID)
	return user, nil
}

// Login checks credentials and issues a session token. An unknown email and
// a wrong password both return ErrInvalidCredentials.
func (s *Service) Login(in LoginInput) (*LoginResult, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.check(in); err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(in.Email)
	if err != nil {
		return nil, s.fail("login", err)
	}
	if user == nil {
		auth.CheckPassword("", in.Password)
		return nil, ErrInvalidCredentials
	}
	if !auth.CheckPassword(user.PasswordHash, in.Password) {
		return nil, ErrInvalidCredentials
	}

	token, expires, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.fail("login", err)
	}
	return &LoginResult{UserID: user.ID, Token: token, ExpiresAt: expires, User: user}, nil
}

// VerifyToken returns the user a token was issued to. Tokens for deleted
// accounts are rejected like any other invalid token.
func (s *Service) VerifyToken(token string) (int64, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return 0, ErrInvalidToken
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return 0, s.fail("verify_token", err)
	}
	if user == nil {
		return 0, ErrInvalidToken
	}
	return userID, nil
}

// CurrentUser returns the account behind userID.
func (s *Service) CurrentUser(userID int64) (*model.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, s.fail("current_user", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}

// DeleteAccount removes the user and everything they own.
func (s *Service) DeleteAccount(userID int64) error {
	if _, err := s.CurrentUser(userID); err != nil {
		return err
	}
	if err := s.users.Delete(userID); err != nil {
		return s.fail("delete_account", err)
	}
	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shoplist/internal/validator"
)

func TestRegister(t *testing.T) {
	svc := setupService(t)

	u, err := svc.Register(RegisterInput{Email: "  Ann@Example.com ", Password: "correct-horse", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", u.Email)
	assert.Equal(t, "Ann", u.Name)
	assert.NotEqual(t, "correct-horse", u.PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := setupService(t)
	registerUser(t, svc, "ann@example.com")

	_, err := svc.Register(RegisterInput{Email: "ANN@example.com", Password: "another-pass", Name: "Ann 2"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestRegisterValidation(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(RegisterInput{Email: "not-an-email", Password: "short", Name: " "})
	require.ErrorIs(t, err, ErrValidation)

	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))
	fields := map[string]bool{}
	for _, e := range verrs {
		fields[e.Field] = true
	}
	assert.True(t, fields["email"])
	assert.True(t, fields["password"])
	assert.True(t, fields["name"])
}

func TestRegisterMultibytePasswordTooLong(t *testing.T) {
	svc := setupService(t)

	_, err := svc.Register(RegisterInput{Email: "ann@example.com", Password: strings.Repeat("あ", 30), Name: "Ann"})
	require.ErrorIs(t, err, ErrValidation)
	assert.NotErrorIs(t, err, ErrUnavailable)

	u, err := svc.Register(RegisterInput{Email: "ann@example.com", Password: strings.Repeat("あ", 24), Name: "Ann"})
	require.NoError(t, err)
	assert.NotZero(t, u.ID)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	svc := setupService(t)
	registerUser(t, svc, "ann@example.com")

	wrongPassword, err1 := svc.Login(LoginInput{Email: "ann@example.com", Password: "wrong-password"})
	unknownEmail, err2 := svc.Login(LoginInput{Email: "nobody@example.com", Password: "wrong-password"})

	assert.Nil(t, wrongPassword)
	assert.Nil(t, unknownEmail)
	assert.ErrorIs(t, err1, ErrInvalidCredentials)
	assert.ErrorIs(t, err2, ErrInvalidCredentials)
	assert.Equal(t, err1.Error(), err2.Error())
}

func TestLoginAndVerifyToken(t *testing.T) {
	svc := setupService(t)
	u := registerUser(t, svc, "ann@example.com")

	res, err := svc.Login(LoginInput{Email: "Ann@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, res.UserID)
	assert.NotEmpty(t, res.Token)

	userID, err := svc.VerifyToken(res.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, userID)

	_, err = svc.VerifyToken(res.Token + "x")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDeleteAccountInvalidatesToken(t *testing.T) {
	svc := setupService(t)
	u := registerUser(t, svc, "ann@example.com")
	createList(t, svc, u.ID, "Weekly")

	res, err := svc.Login(LoginInput{Email: "ann@example.com", Password: "correct-horse"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteAccount(u.ID))

	_, err = svc.VerifyToken(res.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.ErrorIs(t, svc.DeleteAccount(u.ID), ErrNotFound)
}

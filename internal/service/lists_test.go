package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/shoplist/internal/model"
)

func TestCreateListDefaults(t *testing.T) {
	svc := setupService(t)
	u := registerUser(t, svc, "ann@example.com")

	l, err := svc.CreateList(u.ID, CreateListInput{Name: "   "})
	require.NoError(t, err)
	assert.Equal(t, model.DefaultListName, l.Name)
	assert.Equal(t, time.Now().UTC().Format(dateLayout), l.Date.Format(dateLayout))
}

func TestCreateListRejectsBadDate(t *testing.T) {
	svc := setupService(t)
	u := registerUser(t, svc, "ann@example.com")

	_, err := svc.CreateList(u.ID, CreateListInput{Name: "Weekly", Date: ptr("05/03/2024")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListsAreScopedToOwner(t *testing.T) {
	svc := setupService(t)
	ann := registerUser(t, svc, "ann@example.com")
	bob := registerUser(t, svc, "bob@example.com")
	l := createList(t, svc, ann.ID, "Weekly")

	_, err := svc.GetList(bob.ID, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.UpdateList(bob.ID, l.ID, UpdateListInput{Name: ptr("Mine")})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.DeleteList(bob.ID, l.ID), ErrNotFound)

	lists, err := svc.ListLists(bob.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, lists)
}

func TestUpdateList(t *testing.T) {
	svc := setupService(t)
	u := registerUser(t, svc, "ann@example.com")
	l := createList(t, svc, u.ID, "Weekly")

	updated, err := svc.UpdateList(u.ID, l.ID, UpdateListInput{Memo: ptr("bring bags"), Date: ptr("2024-03-05")})
	require.NoError(t, err)
	assert.Equal(t, "Weekly", updated.Name)
	require.NotNil(t, updated.Memo)
	assert.Equal(t, "bring bags", *updated.Memo)
	assert.Equal(t, "2024-03-05", updated.Date.Format(dateLayout))

	_, err = svc.UpdateList(u.ID, l.ID, UpdateListInput{Name: ptr(" ")})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListListsNewestFirst(t *testing.T) {
	svc := setupService(t)
	u := registerUser(t, svc, "ann@example.com")

	_, err := svc.CreateList(u.ID, CreateListInput{Name: "Old", Date: ptr("2024-01-01")})
	require.NoError(t, err)
	_, err = svc.CreateList(u.ID, CreateListInput{Name: "New", Date: ptr("2024-02-01")})
	require.NoError(t, err)

	lists, err := svc.ListLists(u.ID, 0)
	require.NoError(t, err)
	require.Len(t, lists, 2)
	assert.Equal(t, "New", lists[0].Name)

	lists, err = svc.ListLists(u.ID, 1)
	require.NoError(t, err)
	assert.Len(t, lists, 1)
}

func TestDeleteList(t *testing.T) {
	svc := setupService(t)
	u := registerUser(t, svc, "ann@example.com")
	l := createList(t, svc, u.ID, "Weekly")

	require.NoError(t, svc.DeleteList(u.ID, l.ID))
	_, err := svc.GetList(u.ID, l.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

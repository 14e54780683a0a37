package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

// ListStore owns shopping lists and the items attached to them.
type ListStore struct {
	db DBTX
}

func NewListStore(db DBTX) *ListStore {
	return &ListStore{db: db}
}

func scanList(s scanner) (*model.ShoppingList, error) {
	var l model.ShoppingList
	var memo sql.NullString
	err := s.Scan(&l.ID, &l.UserID, &l.Name, &l.Date, &memo, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	l.Memo = stringPtr(memo)
	return &l, nil
}

const listCols = `id, user_id, name, date, memo, created_at`

// CreateList inserts a list dated today unless date is given.
func (s *ListStore) CreateList(userID int64, name string, memo *string, date *time.Time) (*model.ShoppingList, error) {
	if name == "" {
		name = model.DefaultListName
	}
	now := time.Now().UTC()
	d := now
	if date != nil {
		d = *date
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_lists (user_id, name, date, memo, created_at) VALUES (?, ?, ?, ?, ?)`,
		userID, name, dateOnly(d), nullString(memo), now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetList(id)
}

func (s *ListStore) GetList(id int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM shopping_lists WHERE id = ?`, id)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}
	return l, nil
}

// ListLists returns the user's lists, newest first.
func (s *ListStore) ListLists(userID int64, limit int) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(
		`SELECT `+listCols+` FROM shopping_lists WHERE user_id = ? ORDER BY date DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var lists []model.ShoppingList
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		lists = append(lists, *l)
	}
	return lists, rows.Err()
}

// UpdateList changes the supplied fields. It returns nil when the list does
// not exist.
func (s *ListStore) UpdateList(id int64, name, memo *string, date *time.Time) (*model.ShoppingList, error) {
	existing, err := s.GetList(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	if name != nil {
		existing.Name = *name
	}
	if memo != nil {
		existing.Memo = memo
	}
	if date != nil {
		existing.Date = *date
	}

	_, err = s.db.Exec(
		`UPDATE shopping_lists SET name = ?, memo = ?, date = ? WHERE id = ?`,
		existing.Name, nullString(existing.Memo), dateOnly(existing.Date), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	return s.GetList(id)
}

// DeleteList removes a list with its items and their purchases.
func (s *ListStore) DeleteList(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete list: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

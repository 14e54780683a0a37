package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

type PurchaseStore struct {
	db DBTX
}

func NewPurchaseStore(db DBTX) *PurchaseStore {
	return &PurchaseStore{db: db}
}

func scanPurchase(s scanner) (*model.Purchase, error) {
	var p model.Purchase
	err := s.Scan(&p.ID, &p.ShoppingListItemID, &p.ActualPrice, &p.Quantity, &p.PurchasedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const purchaseCols = `id, shopping_list_item_id, actual_price, quantity, purchased_at`

// Record inserts a purchase against a list item and marks the item checked.
// A nil quantity takes the list item's current quantity. It returns nil when
// the list item does not exist.
func (s *PurchaseStore) Record(listItemID int64, actualPrice float64, quantity *int) (*model.Purchase, error) {
	var id int64
	found := true
	err := inTx(s.db, func(tx DBTX) error {
		var current int
		err := tx.QueryRow(`SELECT quantity FROM shopping_list_items WHERE id = ?`, listItemID).Scan(&current)
		if errors.Is(err, sql.ErrNoRows) {
			found = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("get list item: %w", err)
		}

		qty := current
		if quantity != nil {
			qty = *quantity
		}

		result, err := tx.Exec(
			`INSERT INTO purchases (shopping_list_item_id, actual_price, quantity, purchased_at) VALUES (?, ?, ?, ?)`,
			listItemID, actualPrice, qty, time.Now().UTC(),
		)
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}

		if _, err := tx.Exec(`UPDATE shopping_list_items SET checked = 1 WHERE id = ?`, listItemID); err != nil {
			return fmt.Errorf("check list item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	if !found {
		return nil, nil
	}
	return s.GetByID(id)
}

func (s *PurchaseStore) GetByID(id int64) (*model.Purchase, error) {
	row := s.db.QueryRow(`SELECT `+purchaseCols+` FROM purchases WHERE id = ?`, id)
	p, err := scanPurchase(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	return p, nil
}

// OwnerID returns the user who owns the list the purchase belongs to, or 0
// when the purchase does not exist.
func (s *PurchaseStore) OwnerID(id int64) (int64, error) {
	var userID int64
	err := s.db.QueryRow(
		`SELECT sl.user_id FROM purchases p
		 JOIN shopping_list_items sli ON sli.id = p.shopping_list_item_id
		 JOIN shopping_lists sl ON sl.id = sli.shopping_list_id
		 WHERE p.id = ?`,
		id,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("purchase owner: %w", err)
	}
	return userID, nil
}

// ListByListItem returns a list item's purchases, newest first.
func (s *PurchaseStore) ListByListItem(listItemID int64) ([]model.Purchase, error) {
	rows, err := s.db.Query(
		`SELECT `+purchaseCols+` FROM purchases WHERE shopping_list_item_id = ? ORDER BY purchased_at DESC, id DESC`,
		listItemID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var purchases []model.Purchase
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		purchases = append(purchases, *p)
	}
	return purchases, rows.Err()
}

// UpdateDate moves a purchase to a new timestamp. It reports false when the
// purchase does not exist.
func (s *PurchaseStore) UpdateDate(id int64, purchasedAt time.Time) (bool, error) {
	result, err := s.db.Exec(`UPDATE purchases SET purchased_at = ? WHERE id = ?`, purchasedAt.UTC(), id)
	if err != nil {
		return false, fmt.Errorf("update purchase date: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

func scanListItem(s scanner) (*model.ShoppingListItem, error) {
	var li model.ShoppingListItem
	var itemID, storeID, categoryID sql.NullInt64
	var planned, defaultPrice sql.NullFloat64
	var plannedDate sql.NullTime
	var categoryName, storeName sql.NullString
	var checked int

	err := s.Scan(
		&li.ID, &li.ShoppingListID, &itemID, &storeID, &planned, &li.Quantity,
		&checked, &plannedDate, &li.CreatedAt,
		&li.UserID, &li.ItemName, &defaultPrice, &categoryID, &categoryName, &storeName,
	)
	if err != nil {
		return nil, err
	}

	li.ItemID = int64Ptr(itemID)
	li.StoreID = int64Ptr(storeID)
	li.PlannedPrice = float64Ptr(planned)
	li.Checked = checked != 0
	li.PlannedDate = timePtr(plannedDate)
	li.ItemDefaultPrice = float64Ptr(defaultPrice)
	li.CategoryID = int64Ptr(categoryID)
	li.CategoryName = stringPtr(categoryName)
	li.StoreName = stringPtr(storeName)
	return &li, nil
}

const listItemSelect = `SELECT sli.id, sli.shopping_list_id, sli.item_id, sli.store_id, sli.planned_price, sli.quantity,
	sli.checked, sli.planned_date, sli.created_at,
	sl.user_id, COALESCE(i.name, ''), i.default_price, i.category_id, c.name, st.name
	FROM shopping_list_items sli
	JOIN shopping_lists sl ON sl.id = sli.shopping_list_id
	LEFT JOIN items i ON i.id = sli.item_id
	LEFT JOIN categories c ON c.id = i.category_id
	LEFT JOIN stores st ON st.id = sli.store_id`

func getListItem(db DBTX, id int64) (*model.ShoppingListItem, error) {
	row := db.QueryRow(listItemSelect+` WHERE sli.id = ?`, id)
	li, err := scanListItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list item: %w", err)
	}
	return li, nil
}

func (s *ListStore) GetItem(id int64) (*model.ShoppingListItem, error) {
	return getListItem(s.db, id)
}

// ListItems returns a list's items, unchecked first, optionally restricted to
// one store.
func (s *ListStore) ListItems(listID int64, storeID *int64) ([]model.ShoppingListItem, error) {
	query := listItemSelect + ` WHERE sli.shopping_list_id = ?`
	args := []any{listID}
	if storeID != nil {
		query += ` AND sli.store_id = ?`
		args = append(args, *storeID)
	}
	query += ` ORDER BY sli.checked ASC, c.name ASC, i.name ASC, sli.id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.ShoppingListItem
	for rows.Next() {
		li, err := scanListItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list item: %w", err)
		}
		items = append(items, *li)
	}
	return items, rows.Err()
}

// AddItem attaches an item to a list. When the list already holds the same
// (item, store) pair the existing row's quantity grows by quantity and a
// supplied planned price replaces the old one. A nil store is its own key.
func (s *ListStore) AddItem(listID int64, itemID, storeID *int64, plannedPrice *float64, quantity int) (*model.ShoppingListItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var id int64
	err := inTx(s.db, func(tx DBTX) error {
		err := tx.QueryRow(
			`SELECT id FROM shopping_list_items
			 WHERE shopping_list_id = ? AND item_id IS ? AND store_id IS ?
			 ORDER BY id ASC LIMIT 1`,
			listID, nullInt64(itemID), nullInt64(storeID),
		).Scan(&id)

		switch {
		case err == nil:
			if plannedPrice != nil {
				_, err = tx.Exec(
					`UPDATE shopping_list_items SET quantity = quantity + ?, planned_price = ? WHERE id = ?`,
					quantity, *plannedPrice, id,
				)
			} else {
				_, err = tx.Exec(`UPDATE shopping_list_items SET quantity = quantity + ? WHERE id = ?`, quantity, id)
			}
			if err != nil {
				return fmt.Errorf("increment list item: %w", err)
			}
			return nil
		case errors.Is(err, sql.ErrNoRows):
			result, err := tx.Exec(
				`INSERT INTO shopping_list_items (shopping_list_id, item_id, store_id, planned_price, quantity, created_at)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				listID, nullInt64(itemID), nullInt64(storeID), nullFloat64(plannedPrice), quantity, time.Now().UTC(),
			)
			if err != nil {
				return fmt.Errorf("insert list item: %w", err)
			}
			id, err = result.LastInsertId()
			if err != nil {
				return fmt.Errorf("last insert id: %w", err)
			}
			return nil
		default:
			return fmt.Errorf("find list item: %w", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("add list item: %w", err)
	}
	return s.GetItem(id)
}

// ListItemUpdate carries the fields of a partial list item update. Nil
// fields are left alone; ClearStore detaches the store.
type ListItemUpdate struct {
	Checked      *bool
	Quantity     *int
	StoreID      *int64
	ClearStore   bool
	PlannedPrice *float64
	ClearPrice   bool
	PlannedDate  *time.Time
}

// UpdateItem applies the supplied fields and returns the updated row, or nil
// when the id does not exist. A row with a recorded purchase stays checked.
func (s *ListStore) UpdateItem(id int64, u ListItemUpdate) (*model.ShoppingListItem, error) {
	sets := ""
	var args []any
	add := func(expr string, v ...any) {
		if sets != "" {
			sets += ", "
		}
		sets += expr
		args = append(args, v...)
	}

	if u.Checked != nil {
		checked := 0
		if *u.Checked {
			checked = 1
		}
		add(`checked = CASE WHEN EXISTS (SELECT 1 FROM purchases WHERE shopping_list_item_id = ?) THEN 1 ELSE ? END`, id, checked)
	}
	if u.Quantity != nil {
		add("quantity = ?", *u.Quantity)
	}
	if u.ClearStore {
		add("store_id = NULL")
	} else if u.StoreID != nil {
		add("store_id = ?", *u.StoreID)
	}
	if u.ClearPrice {
		add("planned_price = NULL")
	} else if u.PlannedPrice != nil {
		add("planned_price = ?", *u.PlannedPrice)
	}
	if u.PlannedDate != nil {
		add("planned_date = ?", dateOnly(*u.PlannedDate))
	}

	if sets == "" {
		return s.GetItem(id)
	}

	args = append(args, id)
	result, err := s.db.Exec(`UPDATE shopping_list_items SET `+sets+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("update list item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return nil, nil
	}
	return s.GetItem(id)
}

// DeleteItem reports whether a row was removed.
func (s *ListStore) DeleteItem(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete list item: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// DeleteItems removes the given ids in one transaction. Ids that do not exist
// are skipped; the count of removed rows is returned.
func (s *ListStore) DeleteItems(ids []int64) (int, error) {
	var deleted int
	err := inTx(s.db, func(tx DBTX) error {
		for _, id := range ids {
			result, err := tx.Exec(`DELETE FROM shopping_list_items WHERE id = ?`, id)
			if err != nil {
				return fmt.Errorf("delete list item %d: %w", id, err)
			}
			n, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			deleted += int(n)
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete list items: %w", err)
	}
	return deleted, nil
}

// SetItemsStore moves each item to storeID (nil detaches) one row at a time.
// Rows that fail are skipped; the number updated is returned along with the
// joined failures.
func (s *ListStore) SetItemsStore(ids []int64, storeID *int64) (int, error) {
	var updated int
	var errs []error
	for _, id := range ids {
		result, err := s.db.Exec(`UPDATE shopping_list_items SET store_id = ? WHERE id = ?`, nullInt64(storeID), id)
		if err != nil {
			errs = append(errs, fmt.Errorf("set store for list item %d: %w", id, err))
			continue
		}
		if n, err := result.RowsAffected(); err == nil && n > 0 {
			updated++
		}
	}
	return updated, errors.Join(errs...)
}

// Total sums planned line totals for a list. A missing planned price counts
// as zero.
func (s *ListStore) Total(listID int64) (*model.ListTotal, error) {
	var t model.ListTotal
	err := s.db.QueryRow(
		`SELECT
			COALESCE(SUM(COALESCE(planned_price, 0) * quantity), 0),
			COUNT(*),
			COALESCE(SUM(CASE WHEN checked = 1 THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN checked = 1 THEN COALESCE(planned_price, 0) * quantity ELSE 0 END), 0)
		 FROM shopping_list_items WHERE shopping_list_id = ?`,
		listID,
	).Scan(&t.TotalPrice, &t.TotalItems, &t.CheckedItems, &t.CheckedPrice)
	if err != nil {
		return nil, fmt.Errorf("list total: %w", err)
	}
	return &t, nil
}

package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

// CatalogStore owns stores, categories and items. Rows with a NULL owner
// form the shared catalog; reads return shared rows plus the caller's own.
type CatalogStore struct {
	db DBTX
}

func NewCatalogStore(db DBTX) *CatalogStore {
	return &CatalogStore{db: db}
}

// --- Category methods ---

func scanCategory(s scanner) (*model.Category, error) {
	var c model.Category
	var userID sql.NullInt64
	err := s.Scan(&c.ID, &c.Name, &userID, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	c.UserID = int64Ptr(userID)
	return &c, nil
}

const categoryCols = `id, name, user_id, created_at`

// ListCategories returns every visible category, duplicates included.
func (s *CatalogStore) ListCategories(userID int64) ([]model.Category, error) {
	rows, err := s.db.Query(
		`SELECT `+categoryCols+` FROM categories WHERE user_id IS NULL OR user_id = ? ORDER BY name ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, *c)
	}
	return categories, rows.Err()
}

func (s *CatalogStore) GetCategoryByID(id int64) (*model.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryCols+` FROM categories WHERE id = ?`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get category: %w", err)
	}
	return c, nil
}

// FindCategoryByName returns the first visible category with the given name,
// preferring the user's own row over a shared one.
func (s *CatalogStore) FindCategoryByName(userID int64, name string) (*model.Category, error) {
	row := s.db.QueryRow(
		`SELECT `+categoryCols+` FROM categories
		 WHERE name = ? AND (user_id IS NULL OR user_id = ?)
		 ORDER BY user_id IS NULL ASC, id ASC LIMIT 1`,
		name, userID,
	)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category: %w", err)
	}
	return c, nil
}

// CreateCategory inserts a category. With checkDuplicate set, an existing row
// with the same name and owner is returned instead. A nil userID creates a
// shared row.
func (s *CatalogStore) CreateCategory(userID *int64, name string, checkDuplicate bool) (*model.Category, error) {
	if checkDuplicate {
		row := s.db.QueryRow(
			`SELECT `+categoryCols+` FROM categories WHERE name = ? AND user_id IS ? ORDER BY id ASC LIMIT 1`,
			name, nullInt64(userID),
		)
		c, err := scanCategory(row)
		if err == nil {
			return c, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("check duplicate category: %w", err)
		}
	}

	result, err := s.db.Exec(
		`INSERT INTO categories (name, user_id, created_at) VALUES (?, ?, ?)`,
		name, nullInt64(userID), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetCategoryByID(id)
}

// --- Store methods ---

func scanStore(s scanner) (*model.Store, error) {
	var st model.Store
	var category sql.NullString
	var userID sql.NullInt64
	err := s.Scan(&st.ID, &st.Name, &category, &userID, &st.CreatedAt)
	if err != nil {
		return nil, err
	}
	st.Category = stringPtr(category)
	st.UserID = int64Ptr(userID)
	return &st, nil
}

const storeCols = `id, name, category, user_id, created_at`

// ListStores returns every visible store, duplicates included.
func (s *CatalogStore) ListStores(userID int64) ([]model.Store, error) {
	rows, err := s.db.Query(
		`SELECT `+storeCols+` FROM stores WHERE user_id IS NULL OR user_id = ? ORDER BY name ASC, id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list stores: %w", err)
	}
	defer rows.Close()

	var stores []model.Store
	for rows.Next() {
		st, err := scanStore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, *st)
	}
	return stores, rows.Err()
}

func (s *CatalogStore) GetStoreByID(id int64) (*model.Store, error) {
	row := s.db.QueryRow(`SELECT `+storeCols+` FROM stores WHERE id = ?`, id)
	st, err := scanStore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get store: %w", err)
	}
	return st, nil
}

func (s *CatalogStore) CreateStore(userID *int64, name string, category *string, checkDuplicate bool) (*model.Store, error) {
	if checkDuplicate {
		row := s.db.QueryRow(
			`SELECT `+storeCols+` FROM stores WHERE name = ? AND user_id IS ? ORDER BY id ASC LIMIT 1`,
			name, nullInt64(userID),
		)
		st, err := scanStore(row)
		if err == nil {
			return st, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("check duplicate store: %w", err)
		}
	}

	result, err := s.db.Exec(
		`INSERT INTO stores (name, category, user_id, created_at) VALUES (?, ?, ?, ?)`,
		name, nullString(category), nullInt64(userID), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert store: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetStoreByID(id)
}

// CleanDuplicateStores collapses stores sharing a (name, owner) pair onto the
// lowest id. List items pointing at a removed row are moved to the kept row
// first. A nil userID cleans every owner, shared rows included; otherwise only
// that user's stores are touched and counted.
func (s *CatalogStore) CleanDuplicateStores(userID *int64) (*model.DedupeResult, error) {
	res := &model.DedupeResult{Duplicates: []model.DuplicateGroup{}}

	err := inTx(s.db, func(tx DBTX) error {
		groups, err := duplicateStoreGroups(tx, userID)
		if err != nil {
			return err
		}

		for _, g := range groups {
			ids, err := storeIDsByNameOwner(tx, g.Name, g.OwnerID)
			if err != nil {
				return err
			}
			if len(ids) < 2 {
				continue
			}
			g.KeptID = ids[0]
			g.DeletedIDs = ids[1:]

			for _, id := range g.DeletedIDs {
				if _, err := tx.Exec(`UPDATE shopping_list_items SET store_id = ? WHERE store_id = ?`, g.KeptID, id); err != nil {
					return fmt.Errorf("repoint list items: %w", err)
				}
				if _, err := tx.Exec(`DELETE FROM stores WHERE id = ?`, id); err != nil {
					return fmt.Errorf("delete duplicate store: %w", err)
				}
				res.Cleaned++
			}
			res.Duplicates = append(res.Duplicates, g)
		}

		if userID == nil {
			err = tx.QueryRow(`SELECT COUNT(*) FROM stores`).Scan(&res.Remaining)
		} else {
			err = tx.QueryRow(`SELECT COUNT(*) FROM stores WHERE user_id = ?`, *userID).Scan(&res.Remaining)
		}
		if err != nil {
			return fmt.Errorf("count stores: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("clean duplicate stores: %w", err)
	}
	return res, nil
}

func duplicateStoreGroups(tx DBTX, userID *int64) ([]model.DuplicateGroup, error) {
	query := `SELECT name, user_id, COUNT(*) FROM stores`
	var args []any
	if userID != nil {
		query += ` WHERE user_id = ?`
		args = append(args, *userID)
	}
	query += ` GROUP BY name, user_id HAVING COUNT(*) > 1 ORDER BY name ASC, user_id ASC`

	rows, err := tx.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("find duplicate stores: %w", err)
	}
	defer rows.Close()

	var groups []model.DuplicateGroup
	for rows.Next() {
		var g model.DuplicateGroup
		var owner sql.NullInt64
		if err := rows.Scan(&g.Name, &owner, &g.Count); err != nil {
			return nil, fmt.Errorf("scan duplicate group: %w", err)
		}
		g.OwnerID = int64Ptr(owner)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func storeIDsByNameOwner(tx DBTX, name string, owner *int64) ([]int64, error) {
	rows, err := tx.Query(`SELECT id FROM stores WHERE name = ? AND user_id IS ? ORDER BY id ASC`, name, nullInt64(owner))
	if err != nil {
		return nil, fmt.Errorf("list duplicate stores: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan store id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// --- Item methods ---

func scanItem(s scanner) (*model.Item, error) {
	var it model.Item
	var price sql.NullFloat64
	var categoryID, userID sql.NullInt64
	err := s.Scan(&it.ID, &it.Name, &price, &categoryID, &userID, &it.CreatedAt)
	if err != nil {
		return nil, err
	}
	it.DefaultPrice = float64Ptr(price)
	it.CategoryID = int64Ptr(categoryID)
	it.UserID = int64Ptr(userID)
	return &it, nil
}

const itemCols = `id, name, default_price, category_id, user_id, created_at`

func (s *CatalogStore) queryItems(query string, args ...any) ([]model.Item, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// ListItems returns visible items, optionally restricted to one category.
func (s *CatalogStore) ListItems(userID int64, categoryID *int64) ([]model.Item, error) {
	query := `SELECT ` + itemCols + ` FROM items WHERE (user_id IS NULL OR user_id = ?)`
	args := []any{userID}
	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY name ASC, id ASC`

	items, err := s.queryItems(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// SearchItems matches a case-insensitive substring against the user's own
// items. Shared items are not searched.
func (s *CatalogStore) SearchItems(userID int64, q string) ([]model.Item, error) {
	items, err := s.queryItems(
		`SELECT `+itemCols+` FROM items WHERE user_id = ? AND name LIKE ? ESCAPE '\' ORDER BY name ASC, id ASC`,
		userID, "%"+escapeLike(q)+"%",
	)
	if err != nil {
		return nil, fmt.Errorf("search items: %w", err)
	}
	return items, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (s *CatalogStore) GetItemByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM items WHERE id = ?`, id)
	it, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

func (s *CatalogStore) CreateItem(userID *int64, name string, categoryID *int64, defaultPrice *float64, checkDuplicate bool) (*model.Item, error) {
	if checkDuplicate {
		row := s.db.QueryRow(
			`SELECT `+itemCols+` FROM items WHERE name = ? AND user_id IS ? ORDER BY id ASC LIMIT 1`,
			name, nullInt64(userID),
		)
		it, err := scanItem(row)
		if err == nil {
			return it, nil
		}
		if err != sql.ErrNoRows {
			return nil, fmt.Errorf("check duplicate item: %w", err)
		}
	}

	result, err := s.db.Exec(
		`INSERT INTO items (name, default_price, category_id, user_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		name, nullFloat64(defaultPrice), nullInt64(categoryID), nullInt64(userID), time.Now().UTC(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetItemByID(id)
}

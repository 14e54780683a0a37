package store

import (
	"database/sql"
	"fmt"

	"github.com/dukerupert/shoplist/internal/model"
)

// SpendingStore answers read-only roll-ups over purchases. Nothing is
// cached; every call re-queries.
type SpendingStore struct {
	db DBTX
}

func NewSpendingStore(db DBTX) *SpendingStore {
	return &SpendingStore{db: db}
}

const purchaseJoins = `FROM purchases p
	JOIN shopping_list_items sli ON sli.id = p.shopping_list_item_id
	JOIN shopping_lists sl ON sl.id = sli.shopping_list_id
	LEFT JOIN items i ON i.id = sli.item_id
	LEFT JOIN categories c ON c.id = i.category_id
	LEFT JOIN stores st ON st.id = sli.store_id`

// purchaseFilter builds the WHERE clause shared by the roll-ups. Both range
// bounds are inclusive.
func purchaseFilter(userID int64, r model.DateRange) (string, []any) {
	where := ` WHERE sl.user_id = ?`
	args := []any{userID}
	if r.Start != nil {
		where += ` AND p.purchased_at >= ?`
		args = append(args, r.Start.UTC())
	}
	if r.End != nil {
		where += ` AND p.purchased_at <= ?`
		args = append(args, r.End.UTC())
	}
	return where, args
}

// CategorySpending totals actual_price * quantity per category name, largest
// first. Purchases without a category are grouped under
// model.UncategorizedLabel.
func (s *SpendingStore) CategorySpending(userID int64, r model.DateRange) ([]model.CategorySpending, error) {
	where, args := purchaseFilter(userID, r)
	args = append([]any{model.UncategorizedLabel}, args...)

	rows, err := s.db.Query(
		`SELECT COALESCE(c.name, ?) AS category_name, SUM(p.actual_price * p.quantity) AS total `+
			purchaseJoins+where+` GROUP BY 1 ORDER BY 2 DESC, 1 ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("category spending: %w", err)
	}
	defer rows.Close()

	result := []model.CategorySpending{}
	for rows.Next() {
		var cs model.CategorySpending
		if err := rows.Scan(&cs.Category, &cs.TotalSpending); err != nil {
			return nil, fmt.Errorf("scan category spending: %w", err)
		}
		result = append(result, cs)
	}
	return result, rows.Err()
}

// StoreSpending is CategorySpending grouped by store name, with
// model.UnspecifiedLabel for purchases without a store.
func (s *SpendingStore) StoreSpending(userID int64, r model.DateRange) ([]model.StoreSpending, error) {
	where, args := purchaseFilter(userID, r)
	args = append([]any{model.UnspecifiedLabel}, args...)

	rows, err := s.db.Query(
		`SELECT COALESCE(st.name, ?) AS store_name, SUM(p.actual_price * p.quantity) AS total `+
			purchaseJoins+where+` GROUP BY 1 ORDER BY 2 DESC, 1 ASC`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("store spending: %w", err)
	}
	defer rows.Close()

	result := []model.StoreSpending{}
	for rows.Next() {
		var ss model.StoreSpending
		if err := rows.Scan(&ss.Store, &ss.TotalSpending); err != nil {
			return nil, fmt.Errorf("scan store spending: %w", err)
		}
		result = append(result, ss)
	}
	return result, rows.Err()
}

// UserPurchases returns individual purchases in range, newest first.
func (s *SpendingStore) UserPurchases(userID int64, r model.DateRange) ([]model.PurchaseRecord, error) {
	return s.purchaseRecords(userID, r, 0)
}

// RecentPurchases returns the user's latest purchases up to limit.
func (s *SpendingStore) RecentPurchases(userID int64, limit int) ([]model.PurchaseRecord, error) {
	return s.purchaseRecords(userID, model.DateRange{}, limit)
}

func (s *SpendingStore) purchaseRecords(userID int64, r model.DateRange, limit int) ([]model.PurchaseRecord, error) {
	where, args := purchaseFilter(userID, r)
	args = append([]any{model.UncategorizedLabel, model.UnspecifiedLabel}, args...)

	query := `SELECT p.id, p.actual_price, p.quantity, p.purchased_at,
		COALESCE(i.name, ''), COALESCE(c.name, ?), COALESCE(st.name, ?), sl.date,
		p.actual_price * p.quantity ` + purchaseJoins + where + ` ORDER BY p.purchased_at DESC, p.id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("purchase history: %w", err)
	}
	defer rows.Close()

	result := []model.PurchaseRecord{}
	for rows.Next() {
		var pr model.PurchaseRecord
		err := rows.Scan(
			&pr.ID, &pr.ActualPrice, &pr.Quantity, &pr.PurchasedAt,
			&pr.ItemName, &pr.CategoryName, &pr.StoreName, &pr.ShoppingDate, &pr.Total,
		)
		if err != nil {
			return nil, fmt.Errorf("scan purchase record: %w", err)
		}
		result = append(result, pr)
	}
	return result, rows.Err()
}

// LatestPlannedPrice returns the planned price of the user's most recently
// created list entry for itemID that has one, across all lists. It returns
// nil when the item was never planned with a price.
func (s *SpendingStore) LatestPlannedPrice(userID, itemID int64) (*float64, error) {
	var price float64
	err := s.db.QueryRow(
		`SELECT sli.planned_price FROM shopping_list_items sli
		 JOIN shopping_lists sl ON sl.id = sli.shopping_list_id
		 WHERE sl.user_id = ? AND sli.item_id = ? AND sli.planned_price IS NOT NULL
		 ORDER BY sli.created_at DESC, sli.id DESC LIMIT 1`,
		userID, itemID,
	).Scan(&price)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest planned price: %w", err)
	}
	return &price, nil
}

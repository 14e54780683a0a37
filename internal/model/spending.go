package model

import "time"

// Labels used when a purchase has no category or no store.
const (
	UncategorizedLabel = "uncategorized"
	UnspecifiedLabel   = "unspecified"
)

// ListTotal sums planned line totals across a list.
type ListTotal struct {
	TotalPrice   float64 `json:"total_price"`
	TotalItems   int     `json:"total_items"`
	CheckedItems int     `json:"checked_items"`
	CheckedPrice float64 `json:"checked_price"`
}

type CategorySpending struct {
	Category      string  `json:"category"`
	TotalSpending float64 `json:"total_spending"`
}

type StoreSpending struct {
	Store         string  `json:"store"`
	TotalSpending float64 `json:"total_spending"`
}

// PurchaseRecord is one purchase joined with its item, category, store and
// list date.
type PurchaseRecord struct {
	ID           int64     `json:"id"`
	ActualPrice  float64   `json:"actual_price"`
	Quantity     int       `json:"quantity"`
	PurchasedAt  time.Time `json:"purchased_at"`
	ItemName     string    `json:"item_name"`
	CategoryName string    `json:"category_name"`
	StoreName    string    `json:"store_name"`
	ShoppingDate time.Time `json:"shopping_date"`
	Total        float64   `json:"total"`
}

// DateRange bounds a query on purchase time. Both ends are inclusive and
// either may be nil.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// DayRange builds a range covering whole calendar days: start at midnight
// and end at the last instant of its day. Zero values leave that end open.
func DayRange(start, end time.Time) DateRange {
	var r DateRange
	if !start.IsZero() {
		s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
		r.Start = &s
	}
	if !end.IsZero() {
		e := time.Date(end.Year(), end.Month(), end.Day(), 23, 59, 59, 999999999, time.UTC)
		r.End = &e
	}
	return r
}

// MonthRange covers the given calendar month.
func MonthRange(year int, month time.Month) DateRange {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)
	return DateRange{Start: &start, End: &end}
}

type DuplicateGroup struct {
	Name       string  `json:"name"`
	OwnerID    *int64  `json:"owner_id"`
	KeptID     int64   `json:"kept_id"`
	DeletedIDs []int64 `json:"deleted_ids"`
	Count      int     `json:"count"`
}

// DedupeResult reports what a duplicate cleanup removed.
type DedupeResult struct {
	Cleaned    int              `json:"cleaned"`
	Remaining  int              `json:"remaining"`
	Duplicates []DuplicateGroup `json:"duplicates"`
}

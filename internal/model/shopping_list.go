package model

import "time"

// DefaultListName is used when a list is created without a name.
const DefaultListName = "Shopping List"

type ShoppingList struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Memo      *string   `json:"memo"`
	CreatedAt time.Time `json:"created_at"`
}

// ShoppingListItem links a list to a catalog item. The name, price, category
// and store fields after CreatedAt are joined from related rows for display.
type ShoppingListItem struct {
	ID             int64      `json:"id"`
	ShoppingListID int64      `json:"shopping_list_id"`
	ItemID         *int64     `json:"item_id"`
	StoreID        *int64     `json:"store_id"`
	PlannedPrice   *float64   `json:"planned_price"`
	Quantity       int        `json:"quantity"`
	Checked        bool       `json:"checked"`
	PlannedDate    *time.Time `json:"planned_date"`
	CreatedAt      time.Time  `json:"created_at"`

	UserID           int64    `json:"user_id"`
	ItemName         string   `json:"item_name"`
	ItemDefaultPrice *float64 `json:"item_default_price"`
	CategoryID       *int64   `json:"category_id"`
	CategoryName     *string  `json:"category_name"`
	StoreName        *string  `json:"store_name"`
}

// LineTotal is the planned price times quantity, with a missing price
// counted as zero.
func (li ShoppingListItem) LineTotal() float64 {
	if li.PlannedPrice == nil {
		return 0
	}
	return *li.PlannedPrice * float64(li.Quantity)
}

// ListItemView is a list item annotated with the price to show for it.
type ListItemView struct {
	ShoppingListItem
	ExpectedPrice     float64 `json:"expected_price"`
	PriceSource       string  `json:"price_source"`
	ExpectedLineTotal float64 `json:"expected_line_total"`
}

package model

import "time"

type Purchase struct {
	ID                 int64     `json:"id"`
	ShoppingListItemID int64     `json:"shopping_list_item_id"`
	ActualPrice        float64   `json:"actual_price"`
	Quantity           int       `json:"quantity"`
	PurchasedAt        time.Time `json:"purchased_at"`
}

// Total is the amount paid for the purchase.
func (p Purchase) Total() float64 {
	return p.ActualPrice * float64(p.Quantity)
}

package model

import "time"

// Store is a shop where items are bought. A nil UserID marks a shared store
// visible to every user.
type Store struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  *string   `json:"category"`
	UserID    *int64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Category struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	UserID    *int64    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Item struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	DefaultPrice *float64  `json:"default_price"`
	CategoryID   *int64    `json:"category_id"`
	UserID       *int64    `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// Shared reports whether the row belongs to the shared catalog.
func (s Store) Shared() bool { return s.UserID == nil }

func (c Category) Shared() bool { return c.UserID == nil }

func (i Item) Shared() bool { return i.UserID == nil }

// Package pricing picks the price to show or prefill for a list item.
package pricing

import "fmt"

// Source names where a resolved price came from.
type Source string

const (
	SourcePlanned Source = "planned"
	SourceDefault Source = "default"
	SourceHistory Source = "history"
	SourceNone    Source = "none"
)

// History looks up the most recent planned price a user gave an item.
// store.SpendingStore satisfies it.
type History interface {
	LatestPlannedPrice(userID, itemID int64) (*float64, error)
}

type Resolution struct {
	Price  float64 `json:"price"`
	Source Source  `json:"source"`
}

// Resolver applies the fixed fallback chain: the list item's planned price,
// the catalog default, the user's latest planned price for the item, zero.
// Planned and default prices only count when positive.
type Resolver struct {
	history History
}

func NewResolver(history History) *Resolver {
	return &Resolver{history: history}
}

// Resolve returns the first usable price. History is consulted only when
// the planned and default prices are unusable and itemID is known.
func (r *Resolver) Resolve(userID int64, planned, defaultPrice *float64, itemID *int64) (Resolution, error) {
	if planned != nil && *planned > 0 {
		return Resolution{Price: *planned, Source: SourcePlanned}, nil
	}
	if defaultPrice != nil && *defaultPrice > 0 {
		return Resolution{Price: *defaultPrice, Source: SourceDefault}, nil
	}
	if itemID != nil && r.history != nil {
		latest, err := r.history.LatestPlannedPrice(userID, *itemID)
		if err != nil {
			return Resolution{Source: SourceNone}, fmt.Errorf("resolve price history: %w", err)
		}
		if latest != nil {
			return Resolution{Price: *latest, Source: SourceHistory}, nil
		}
	}
	return Resolution{Source: SourceNone}, nil
}

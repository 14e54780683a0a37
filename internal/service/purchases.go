package service

import (
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

type RecordPurchaseInput struct {
	ActualPrice *float64 `json:"actual_price" validate:"omitnil,gte=0"`
	Quantity    *int     `json:"quantity" validate:"omitnil,gte=1,lte=999"`
}

type UpdatePurchaseDateInput struct {
	PurchasedAt string `json:"purchased_at" validate:"notblank"`
}

// DateRangeInput bounds a purchase query by whole days. Either end may be
// left out.
type DateRangeInput struct {
	Start *string `json:"start" validate:"omitnil,dateonly"`
	End   *string `json:"end" validate:"omitnil,dateonly"`
}

// RecordPurchase logs what was paid for a list item and checks it off. A
// missing price is filled in from the price resolution chain and a missing
// quantity from the list item.
func (s *Service) RecordPurchase(userID, listItemID int64, in RecordPurchaseInput) (*model.Purchase, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	li, err := s.ownedListItem("record_purchase", userID, listItemID)
	if err != nil {
		return nil, err
	}

	price := in.ActualPrice
	if price == nil {
		res, err := s.prices.Resolve(userID, li.PlannedPrice, li.ItemDefaultPrice, li.ItemID)
		if err != nil {
			return nil, s.fail("record_purchase", err)
		}
		price = &res.Price
	}

	p, err := s.purchases.Record(listItemID, *price, in.Quantity)
	if err != nil {
		return nil, s.fail("record_purchase", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// ListPurchases returns the purchases recorded against one list item.
func (s *Service) ListPurchases(userID, listItemID int64) ([]model.Purchase, error) {
	if _, err := s.ownedListItem("list_purchases", userID, listItemID); err != nil {
		return nil, err
	}
	purchases, err := s.purchases.ListByListItem(listItemID)
	if err != nil {
		return nil, s.fail("list_purchases", err)
	}
	if purchases == nil {
		purchases = []model.Purchase{}
	}
	return purchases, nil
}

// parsePurchaseTime accepts a calendar date, taken as midnight UTC, or a full
// RFC 3339 timestamp.
func parsePurchaseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// UpdatePurchaseDate corrects when a purchase happened.
func (s *Service) UpdatePurchaseDate(userID, purchaseID int64, in UpdatePurchaseDateInput) (*model.Purchase, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	at, ok := parsePurchaseTime(in.PurchasedAt)
	if !ok {
		return nil, invalidf("purchased_at must be a date (YYYY-MM-DD) or an RFC 3339 timestamp")
	}

	owner, err := s.purchases.OwnerID(purchaseID)
	if err != nil {
		return nil, s.fail("update_purchase_date", err)
	}
	if owner != userID {
		return nil, ErrNotFound
	}

	updated, err := s.purchases.UpdateDate(purchaseID, at)
	if err != nil {
		return nil, s.fail("update_purchase_date", err)
	}
	if !updated {
		return nil, ErrNotFound
	}
	p, err := s.purchases.GetByID(purchaseID)
	if err != nil {
		return nil, s.fail("update_purchase_date", err)
	}
	if p == nil {
		return nil, ErrNotFound
	}
	return p, nil
}

// dayRange validates in and converts it to an inclusive range of whole days.
func (s *Service) dayRange(in DateRangeInput) (model.DateRange, error) {
	if err := s.check(in); err != nil {
		return model.DateRange{}, err
	}
	var start, end time.Time
	if p := parseDate(in.Start); p != nil {
		start = *p
	}
	if p := parseDate(in.End); p != nil {
		end = *p
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return model.DateRange{}, invalidf("end must not be before start")
	}
	return model.DayRange(start, end), nil
}

// GetUserPurchases lists every purchase in range, newest first.
func (s *Service) GetUserPurchases(userID int64, in DateRangeInput) ([]model.PurchaseRecord, error) {
	r, err := s.dayRange(in)
	if err != nil {
		return nil, err
	}
	records, err := s.spending.UserPurchases(userID, r)
	if err != nil {
		return nil, s.fail("get_user_purchases", err)
	}
	if records == nil {
		records = []model.PurchaseRecord{}
	}
	return records, nil
}

func (s *Service) RecentPurchases(userID int64, limit int) ([]model.PurchaseRecord, error) {
	records, err := s.spending.RecentPurchases(userID, clampLimit(limit, DefaultPurchaseLimit))
	if err != nil {
		return nil, s.fail("recent_purchases", err)
	}
	if records == nil {
		records = []model.PurchaseRecord{}
	}
	return records, nil
}

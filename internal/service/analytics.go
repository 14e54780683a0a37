package service

import (
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

type MonthInput struct {
	Year  int `json:"year" validate:"gte=2000,lte=9999"`
	Month int `json:"month" validate:"gte=1,lte=12"`
}

// CategorySpending totals purchases per category, largest first. No
// purchases in range is an empty result.
func (s *Service) CategorySpending(userID int64, in DateRangeInput) ([]model.CategorySpending, error) {
	r, err := s.dayRange(in)
	if err != nil {
		return nil, err
	}
	return s.categorySpending("category_spending", userID, r)
}

// MonthlySpending is CategorySpending over one calendar month.
func (s *Service) MonthlySpending(userID int64, in MonthInput) ([]model.CategorySpending, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	return s.categorySpending("monthly_spending", userID, model.MonthRange(in.Year, time.Month(in.Month)))
}

func (s *Service) categorySpending(op string, userID int64, r model.DateRange) ([]model.CategorySpending, error) {
	rows, err := s.spending.CategorySpending(userID, r)
	if err != nil {
		return nil, s.fail(op, err)
	}
	return rows, nil
}

func (s *Service) StoreSpending(userID int64, in DateRangeInput) ([]model.StoreSpending, error) {
	r, err := s.dayRange(in)
	if err != nil {
		return nil, err
	}
	rows, err := s.spending.StoreSpending(userID, r)
	if err != nil {
		return nil, s.fail("store_spending", err)
	}
	return rows, nil
}

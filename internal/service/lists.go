package service

import (
	"strings"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

const dateLayout = "2006-01-02"

type CreateListInput struct {
	Name string  `json:"name" validate:"max=100"`
	Memo *string `json:"memo" validate:"omitnil,max=1000"`
	Date *string `json:"date" validate:"omitnil,dateonly"`
}

type UpdateListInput struct {
	Name *string `json:"name" validate:"omitnil,notblank,max=100"`
	Memo *string `json:"memo" validate:"omitnil,max=1000"`
	Date *string `json:"date" validate:"omitnil,dateonly"`
}

// parseDate turns an optional YYYY-MM-DD string into a UTC date. Empty means
// absent.
func parseDate(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil
	}
	return &t
}

// CreateList makes a new list for the user. A blank name falls back to the
// default list name and a missing date to today.
func (s *Service) CreateList(userID int64, in CreateListInput) (*model.ShoppingList, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}

	list, err := s.lists.CreateList(userID, in.Name, in.Memo, parseDate(in.Date))
	if err != nil {
		return nil, s.fail("create_list", err)
	}
	return list, nil
}

// GetList returns the list when it belongs to the user.
func (s *Service) GetList(userID, listID int64) (*model.ShoppingList, error) {
	list, err := s.lists.GetList(listID)
	if err != nil {
		return nil, s.fail("get_list", err)
	}
	if list == nil || list.UserID != userID {
		return nil, ErrNotFound
	}
	return list, nil
}

// ListLists returns the user's lists newest first.
func (s *Service) ListLists(userID int64, limit int) ([]model.ShoppingList, error) {
	lists, err := s.lists.ListLists(userID, clampLimit(limit, DefaultListLimit))
	if err != nil {
		return nil, s.fail("list_lists", err)
	}
	if lists == nil {
		lists = []model.ShoppingList{}
	}
	return lists, nil
}

func (s *Service) UpdateList(userID, listID int64, in UpdateListInput) (*model.ShoppingList, error) {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		in.Name = &name
	}
	if err := s.check(in); err != nil {
		return nil, err
	}
	if _, err := s.GetList(userID, listID); err != nil {
		return nil, err
	}

	list, err := s.lists.UpdateList(listID, in.Name, in.Memo, parseDate(in.Date))
	if err != nil {
		return nil, s.fail("update_list", err)
	}
	if list == nil {
		return nil, ErrNotFound
	}
	return list, nil
}

// DeleteList removes the list together with its items and their purchases.
func (s *Service) DeleteList(userID, listID int64) error {
	if _, err := s.GetList(userID, listID); err != nil {
		return err
	}
	deleted, err := s.lists.DeleteList(listID)
	if err != nil {
		return s.fail("delete_list", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

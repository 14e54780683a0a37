package service

import (
	"strings"

	"github.com/dukerupert/shoplist/internal/model"
)

type CreateItemInput struct {
	Name           string   `json:"name" validate:"notblank,max=100"`
	CategoryID     *int64   `json:"category_id" validate:"omitnil,gt=0"`
	DefaultPrice   *float64 `json:"default_price" validate:"omitnil,gte=0"`
	CheckDuplicate bool     `json:"check_duplicate"`
}

type CreateStoreInput struct {
	Name           string  `json:"name" validate:"notblank,max=100"`
	Category       *string `json:"category" validate:"omitnil,max=50"`
	CheckDuplicate bool    `json:"check_duplicate"`
}

type CreateCategoryInput struct {
	Name           string `json:"name" validate:"notblank,max=50"`
	CheckDuplicate bool   `json:"check_duplicate"`
}

func (s *Service) ListCategories(userID int64) ([]model.Category, error) {
	categories, err := s.catalog.ListCategories(userID)
	if err != nil {
		return nil, s.fail("list_categories", err)
	}
	if categories == nil {
		categories = []model.Category{}
	}
	return categories, nil
}

// DisplayCategories is ListCategories with one entry per name. The user's
// own row wins over a shared one; otherwise the lowest id wins.
func (s *Service) DisplayCategories(userID int64) ([]model.Category, error) {
	categories, err := s.ListCategories(userID)
	if err != nil {
		return nil, err
	}
	return dedupeByName(categories, func(c model.Category) (string, bool) { return c.Name, c.Shared() }), nil
}

func (s *Service) ListStores(userID int64) ([]model.Store, error) {
	stores, err := s.catalog.ListStores(userID)
	if err != nil {
		return nil, s.fail("list_stores", err)
	}
	if stores == nil {
		stores = []model.Store{}
	}
	return stores, nil
}

// DisplayStores is ListStores with one entry per name. Records are left
// untouched; CleanDuplicateStores repairs them.
func (s *Service) DisplayStores(userID int64) ([]model.Store, error) {
	stores, err := s.ListStores(userID)
	if err != nil {
		return nil, err
	}
	return dedupeByName(stores, func(st model.Store) (string, bool) { return st.Name, st.Shared() }), nil
}

// dedupeByName keeps the first row per name, replacing a shared row with a
// personal one when both exist. Input order is preserved.
func dedupeByName[T any](rows []T, key func(T) (string, bool)) []T {
	out := make([]T, 0, len(rows))
	pos := make(map[string]int, len(rows))
	for _, row := range rows {
		name, shared := key(row)
		i, seen := pos[name]
		if !seen {
			pos[name] = len(out)
			out = append(out, row)
			continue
		}
		if _, keptShared := key(out[i]); keptShared && !shared {
			out[i] = row
		}
	}
	return out
}

// ListItems returns the visible catalog, optionally narrowed to a category.
func (s *Service) ListItems(userID int64, categoryID *int64) ([]model.Item, error) {
	items, err := s.catalog.ListItems(userID, categoryID)
	if err != nil {
		return nil, s.fail("list_items", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

// SearchItems matches the user's own items by case-insensitive substring.
func (s *Service) SearchItems(userID int64, query string) ([]model.Item, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []model.Item{}, nil
	}
	items, err := s.catalog.SearchItems(userID, query)
	if err != nil {
		return nil, s.fail("search_items", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (s *Service) CreateItem(userID int64, in CreateItemInput) (*model.Item, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.CategoryID != nil {
		if err := s.visibleCategory(userID, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	item, err := s.catalog.CreateItem(&userID, in.Name, in.CategoryID, in.DefaultPrice, in.CheckDuplicate)
	if err != nil {
		return nil, s.fail("create_item", err)
	}
	return item, nil
}

func (s *Service) CreateStore(userID int64, in CreateStoreInput) (*model.Store, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}
	st, err := s.catalog.CreateStore(&userID, in.Name, in.Category, in.CheckDuplicate)
	if err != nil {
		return nil, s.fail("create_store", err)
	}
	return st, nil
}

func (s *Service) CreateCategory(userID int64, in CreateCategoryInput) (*model.Category, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}
	c, err := s.catalog.CreateCategory(&userID, in.Name, in.CheckDuplicate)
	if err != nil {
		return nil, s.fail("create_category", err)
	}
	return c, nil
}

// CleanDuplicateStores merges the user's duplicate stores. Shared stores are
// not touched.
func (s *Service) CleanDuplicateStores(userID int64) (*model.DedupeResult, error) {
	result, err := s.catalog.CleanDuplicateStores(&userID)
	if err != nil {
		return nil, s.fail("clean_duplicate_stores", err)
	}
	if result.Cleaned > 0 {
		s.logger.Info("duplicate stores cleaned", "user_id", userID, "cleaned", result.Cleaned)
	}
	return result, nil
}

func visibleTo(owner *int64, userID int64) bool {
	return owner == nil || *owner == userID
}

func (s *Service) visibleCategory(userID, categoryID int64) error {
	c, err := s.catalog.GetCategoryByID(categoryID)
	if err != nil {
		return s.fail("get_category", err)
	}
	if c == nil || !visibleTo(c.UserID, userID) {
		return ErrNotFound
	}
	return nil
}

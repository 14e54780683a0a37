package service

import (
	"database/sql"
	"strings"

	"github.com/dukerupert/shoplist/internal/grocery"
	"github.com/dukerupert/shoplist/internal/model"
	"github.com/dukerupert/shoplist/internal/pricing"
	"github.com/dukerupert/shoplist/internal/store"
)

// AddItemInput adds either a catalog item by id or a free-typed name. A name
// that matches none of the user's items creates a new one.
type AddItemInput struct {
	ItemID       *int64   `json:"item_id" validate:"omitnil,gt=0"`
	Name         string   `json:"name" validate:"required_without=ItemID,max=100"`
	CategoryID   *int64   `json:"category_id" validate:"omitnil,gt=0"`
	StoreID      *int64   `json:"store_id" validate:"omitnil,gt=0"`
	PlannedPrice *float64 `json:"planned_price" validate:"omitnil,gte=0"`
	Quantity     int      `json:"quantity" validate:"gte=0,lte=999"`
}

type UpdateListItemInput struct {
	Checked      *bool    `json:"checked"`
	Quantity     *int     `json:"quantity" validate:"omitnil,gte=1,lte=999"`
	StoreID      *int64   `json:"store_id" validate:"omitnil,gt=0"`
	ClearStore   bool     `json:"clear_store"`
	PlannedPrice *float64 `json:"planned_price" validate:"omitnil,gte=0"`
	PlannedDate  *string  `json:"planned_date" validate:"omitnil,dateonly"`
}

// BatchResult reports how many of the requested rows a batch changed.
type BatchResult struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
}

func positive(p *float64) *float64 {
	if p == nil || *p <= 0 {
		return nil
	}
	return p
}

// AddItem puts an item on a list. Adding the same item and store again
// increases the existing row's quantity.
func (s *Service) AddItem(userID, listID int64, in AddItemInput) (*model.ShoppingListItem, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	if _, err := s.GetList(userID, listID); err != nil {
		return nil, err
	}
	if in.StoreID != nil {
		if err := s.visibleStore(userID, *in.StoreID); err != nil {
			return nil, err
		}
	}
	if in.ItemID != nil {
		if err := s.visibleItem(userID, *in.ItemID); err != nil {
			return nil, err
		}
	} else if in.CategoryID != nil {
		if err := s.visibleCategory(userID, *in.CategoryID); err != nil {
			return nil, err
		}
	}

	var li *model.ShoppingListItem
	err := store.WithTx(s.db, func(tx *sql.Tx) error {
		itemID := in.ItemID
		if itemID == nil {
			id, err := findOrCreateItem(store.NewCatalogStore(tx), userID, in)
			if err != nil {
				return err
			}
			itemID = &id
		}

		var err error
		li, err = store.NewListStore(tx).AddItem(listID, itemID, in.StoreID, positive(in.PlannedPrice), in.Quantity)
		return err
	})
	if err != nil {
		return nil, s.fail("add_item", err)
	}
	return li, nil
}

// findOrCreateItem reuses the user's item with exactly this name, ignoring
// case. A new item takes the given category or one guessed from its name,
// and the planned price as its default.
func findOrCreateItem(catalog *store.CatalogStore, userID int64, in AddItemInput) (int64, error) {
	matches, err := catalog.SearchItems(userID, in.Name)
	if err != nil {
		return 0, err
	}
	for _, m := range matches {
		if strings.EqualFold(m.Name, in.Name) {
			return m.ID, nil
		}
	}

	categoryID := in.CategoryID
	if categoryID == nil {
		c, err := catalog.FindCategoryByName(userID, grocery.Categorize(in.Name))
		if err != nil {
			return 0, err
		}
		if c != nil {
			categoryID = &c.ID
		}
	}

	item, err := catalog.CreateItem(&userID, in.Name, categoryID, positive(in.PlannedPrice), false)
	if err != nil {
		return 0, err
	}
	return item.ID, nil
}

// ownedListItem loads a list item and hides it unless its list belongs to
// the user.
func (s *Service) ownedListItem(op string, userID, listItemID int64) (*model.ShoppingListItem, error) {
	li, err := s.lists.GetItem(listItemID)
	if err != nil {
		return nil, s.fail(op, err)
	}
	if li == nil || li.UserID != userID {
		return nil, ErrNotFound
	}
	return li, nil
}

// UpdateItem changes only the supplied fields. A planned price of zero
// clears it.
func (s *Service) UpdateItem(userID, listItemID int64, in UpdateListItemInput) (*model.ShoppingListItem, error) {
	if err := s.check(in); err != nil {
		return nil, err
	}
	if in.ClearStore && in.StoreID != nil {
		return nil, invalidf("store_id and clear_store cannot both be set")
	}
	if _, err := s.ownedListItem("update_item", userID, listItemID); err != nil {
		return nil, err
	}
	if in.Checked != nil && !*in.Checked {
		purchases, err := s.purchases.ListByListItem(listItemID)
		if err != nil {
			return nil, s.fail("update_item", err)
		}
		if len(purchases) > 0 {
			return nil, invalidf("item has a recorded purchase and cannot be unchecked")
		}
	}
	if in.StoreID != nil {
		if err := s.visibleStore(userID, *in.StoreID); err != nil {
			return nil, err
		}
	}

	li, err := s.lists.UpdateItem(listItemID, store.ListItemUpdate{
		Checked:      in.Checked,
		Quantity:     in.Quantity,
		StoreID:      in.StoreID,
		ClearStore:   in.ClearStore,
		PlannedPrice: positive(in.PlannedPrice),
		ClearPrice:   in.PlannedPrice != nil && positive(in.PlannedPrice) == nil,
		PlannedDate:  parseDate(in.PlannedDate),
	})
	if err != nil {
		return nil, s.fail("update_item", err)
	}
	if li == nil {
		return nil, ErrNotFound
	}
	return li, nil
}

func (s *Service) RemoveItem(userID, listItemID int64) error {
	if _, err := s.ownedListItem("remove_item", userID, listItemID); err != nil {
		return err
	}
	deleted, err := s.lists.DeleteItem(listItemID)
	if err != nil {
		return s.fail("remove_item", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

// ownedIDs drops ids that are missing or belong to someone else.
func (s *Service) ownedIDs(op string, userID int64, ids []int64) ([]int64, error) {
	if err := s.validate.Var("ids", ids, "required,max=500,dive,gt=0"); err != nil {
		return nil, invalid(err)
	}
	owned := make([]int64, 0, len(ids))
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		li, err := s.lists.GetItem(id)
		if err != nil {
			return nil, s.fail(op, err)
		}
		if li != nil && li.UserID == userID {
			owned = append(owned, id)
		}
	}
	return owned, nil
}

// RemoveItems deletes a batch in one transaction. Ids that no longer exist
// are skipped without failing the batch.
func (s *Service) RemoveItems(userID int64, ids []int64) (*BatchResult, error) {
	owned, err := s.ownedIDs("remove_items", userID, ids)
	if err != nil {
		return nil, err
	}
	deleted, err := s.lists.DeleteItems(owned)
	if err != nil {
		return nil, s.fail("remove_items", err)
	}
	return &BatchResult{Requested: len(ids), Succeeded: deleted}, nil
}

// SetItemsStore moves the selected items to a store, or detaches them when
// storeID is nil. Rows are updated one at a time and the result counts the
// ones that succeeded.
func (s *Service) SetItemsStore(userID int64, ids []int64, storeID *int64) (*BatchResult, error) {
	owned, err := s.ownedIDs("set_items_store", userID, ids)
	if err != nil {
		return nil, err
	}
	if storeID != nil {
		if err := s.visibleStore(userID, *storeID); err != nil {
			return nil, err
		}
	}

	updated, err := s.lists.SetItemsStore(owned, storeID)
	if err != nil {
		s.logger.Warn("set items store partially failed", "user_id", userID, "updated", updated, "error", err)
	}
	return &BatchResult{Requested: len(ids), Succeeded: updated}, nil
}

// GetListItems returns the list's items with the price each one is expected
// to cost.
func (s *Service) GetListItems(userID, listID int64, storeID *int64) ([]model.ListItemView, error) {
	if _, err := s.GetList(userID, listID); err != nil {
		return nil, err
	}
	items, err := s.lists.ListItems(listID, storeID)
	if err != nil {
		return nil, s.fail("get_list_items", err)
	}

	views := make([]model.ListItemView, 0, len(items))
	for _, li := range items {
		res, err := s.prices.Resolve(userID, li.PlannedPrice, li.ItemDefaultPrice, li.ItemID)
		if err != nil {
			return nil, s.fail("get_list_items", err)
		}
		views = append(views, model.ListItemView{
			ShoppingListItem:  li,
			ExpectedPrice:     res.Price,
			PriceSource:       string(res.Source),
			ExpectedLineTotal: res.Price * float64(li.Quantity),
		})
	}
	return views, nil
}

func (s *Service) GetListTotal(userID, listID int64) (*model.ListTotal, error) {
	if _, err := s.GetList(userID, listID); err != nil {
		return nil, err
	}
	total, err := s.lists.Total(listID)
	if err != nil {
		return nil, s.fail("get_list_total", err)
	}
	return total, nil
}

// SuggestedPurchasePrice is the value to prefill when recording a purchase.
func (s *Service) SuggestedPurchasePrice(userID, listItemID int64) (pricing.Resolution, error) {
	li, err := s.ownedListItem("suggested_purchase_price", userID, listItemID)
	if err != nil {
		return pricing.Resolution{}, err
	}
	res, err := s.prices.Resolve(userID, li.PlannedPrice, li.ItemDefaultPrice, li.ItemID)
	if err != nil {
		return pricing.Resolution{}, s.fail("suggested_purchase_price", err)
	}
	return res, nil
}

func (s *Service) visibleStore(userID, storeID int64) error {
	st, err := s.catalog.GetStoreByID(storeID)
	if err != nil {
		return s.fail("get_store", err)
	}
	if st == nil || !visibleTo(st.UserID, userID) {
		return ErrNotFound
	}
	return nil
}

func (s *Service) visibleItem(userID, itemID int64) error {
	item, err := s.catalog.GetItemByID(itemID)
	if err != nil {
		return s.fail("get_item", err)
	}
	if item == nil || !visibleTo(item.UserID, userID) {
		return ErrNotFound
	}
	return nil
}

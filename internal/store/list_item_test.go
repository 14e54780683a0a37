package store

import (
	"testing"
	"time"
)

func TestAddItemUpsertsByItemAndStore(t *testing.T) {
	db := setupTestDB(t)
	ls := NewListStore(db)
	cs := NewCatalogStore(db)
	u := createTestUser(t, db, "alice@example.com")
	list := createTestList(t, db, u.ID, "Weekly")
	milk := createTestItem(t, db, u.ID, "Milk", nil)

	first, err := ls.AddItem(list.ID, &milk.ID, nil, ptr(200.0), 1)
	if err != nil {
		t.Fatalf("add item: %v", err)
	}
	if first.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", first.Quantity)
	}
	if first.PlannedPrice == nil || *first.PlannedPrice != 200 {
		t.Errorf("planned price = %v, want 200", first.PlannedPrice)
	}
	if first.ItemName != "Milk" {
		t.Errorf("item name = %q, want %q", first.ItemName, "Milk")
	}

	second, err := ls.AddItem(list.ID, &milk.ID, nil, nil, 2)
	if err != nil {
		t.Fatalf("add item again: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second add created row %d, want existing %d", second.ID, first.ID)
	}
	if second.Quantity != 3 {
		t.Errorf("quantity = %d, want 3", second.Quantity)
	}
	if second.PlannedPrice == nil || *second.PlannedPrice != 200 {
		t.Errorf("planned price = %v, want 200 kept", second.PlannedPrice)
	}

	third, _ := ls.AddItem(list.ID, &milk.ID, nil, ptr(220.0), 1)
	if *third.PlannedPrice != 220 {
		t.Errorf("planned price = %v, want 220 after overwrite", *third.PlannedPrice)
	}

	shop, _ := cs.CreateStore(&u.ID, "Market", nil, false)
	atShop, err := ls.AddItem(list.ID, &milk.ID, &shop.ID, nil, 1)
	if err != nil {
		t.Fatalf("add at store: %v", err)
	}
	if atShop.ID == first.ID {
		t.Error("a concrete store must be a distinct key from no store")
	}
	if atShop.StoreName == nil || *atShop.StoreName != "Market" {
		t.Errorf("store name = %v, want Market", atShop.StoreName)
	}

	items, _ := ls.ListItems(list.ID, nil)
	if len(items) != 2 {
		t.Errorf("list has %d rows, want 2", len(items))
	}
	byStore, _ := ls.ListItems(list.ID, &shop.ID)
	if len(byStore) != 1 {
		t.Errorf("store filter returned %d rows, want 1", len(byStore))
	}
}

func TestListTotal(t *testing.T) {
	db := setupTestDB(t)
	ls := NewListStore(db)
	u := createTestUser(t, db, "alice@example.com")
	list := createTestList(t, db, u.ID, "Weekly")

	empty, err := ls.Total(list.ID)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if empty.TotalPrice != 0 || empty.TotalItems != 0 {
		t.Errorf("empty total = %+v, want zeros", empty)
	}

	milk := createTestItem(t, db, u.ID, "Milk", nil)
	eggs := createTestItem(t, db, u.ID, "Eggs", nil)
	bread := createTestItem(t, db, u.ID, "Bread", nil)
	ls.AddItem(list.ID, &milk.ID, nil, ptr(200.0), 3)
	eggsLI, _ := ls.AddItem(list.ID, &eggs.ID, nil, ptr(150.0), 2)
	ls.AddItem(list.ID, &bread.ID, nil, nil, 4)

	if _, err := ls.UpdateItem(eggsLI.ID, ListItemUpdate{Checked: ptr(true)}); err != nil {
		t.Fatalf("check eggs: %v", err)
	}

	total, err := ls.Total(list.ID)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if total.TotalPrice != 900 {
		t.Errorf("total price = %v, want 900", total.TotalPrice)
	}
	if total.TotalItems != 3 {
		t.Errorf("total items = %d, want 3", total.TotalItems)
	}
	if total.CheckedItems != 1 {
		t.Errorf("checked items = %d, want 1", total.CheckedItems)
	}
	if total.CheckedPrice != 300 {
		t.Errorf("checked price = %v, want 300", total.CheckedPrice)
	}

	items, _ := ls.ListItems(list.ID, nil)
	var sum float64
	for _, li := range items {
		sum += li.LineTotal()
	}
	if sum != total.TotalPrice {
		t.Errorf("sum of line totals = %v, want %v", sum, total.TotalPrice)
	}
}

func TestUpdateItemPartial(t *testing.T) {
	db := setupTestDB(t)
	ls := NewListStore(db)
	cs := NewCatalogStore(db)
	u := createTestUser(t, db, "alice@example.com")
	list := createTestList(t, db, u.ID, "Weekly")
	milk := createTestItem(t, db, u.ID, "Milk", nil)
	shop, _ := cs.CreateStore(&u.ID, "Market", nil, false)

	li, _ := ls.AddItem(list.ID, &milk.ID, &shop.ID, ptr(200.0), 1)

	when := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	updated, err := ls.UpdateItem(li.ID, ListItemUpdate{Quantity: ptr(5), PlannedDate: &when})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", updated.Quantity)
	}
	if updated.PlannedDate == nil || updated.PlannedDate.Format(time.DateOnly) != "2025-06-01" {
		t.Errorf("planned date = %v, want 2025-06-01", updated.PlannedDate)
	}
	if updated.PlannedPrice == nil || *updated.PlannedPrice != 200 {
		t.Errorf("planned price = %v, want unchanged 200", updated.PlannedPrice)
	}
	if updated.StoreID == nil || *updated.StoreID != shop.ID {
		t.Errorf("store = %v, want unchanged %d", updated.StoreID, shop.ID)
	}

	cleared, _ := ls.UpdateItem(li.ID, ListItemUpdate{ClearStore: true})
	if cleared.StoreID != nil {
		t.Errorf("store = %v, want nil after clear", cleared.StoreID)
	}

	missing, err := ls.UpdateItem(9999, ListItemUpdate{Quantity: ptr(2)})
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if missing != nil {
		t.Error("expected nil for missing list item")
	}
}

func TestUpdateItemKeepsPurchasedChecked(t *testing.T) {
	db := setupTestDB(t)
	ls := NewListStore(db)
	u := createTestUser(t, db, "alice@example.com")
	list := createTestList(t, db, u.ID, "Weekly")
	milk := createTestItem(t, db, u.ID, "Milk", nil)
	bread := createTestItem(t, db, u.ID, "Bread", nil)

	bought, _ := ls.AddItem(list.ID, &milk.ID, nil, ptr(180.0), 1)
	if _, err := NewPurchaseStore(db).Record(bought.ID, 180, nil); err != nil {
		t.Fatalf("record purchase: %v", err)
	}
	updated, err := ls.UpdateItem(bought.ID, ListItemUpdate{Checked: ptr(false), Quantity: ptr(2)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !updated.Checked {
		t.Error("purchased item must stay checked")
	}
	if updated.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", updated.Quantity)
	}

	// Without a purchase the toggle is reversible.
	plain, _ := ls.AddItem(list.ID, &bread.ID, nil, nil, 1)
	ls.UpdateItem(plain.ID, ListItemUpdate{Checked: ptr(true)})
	unchecked, _ := ls.UpdateItem(plain.ID, ListItemUpdate{Checked: ptr(false)})
	if unchecked.Checked {
		t.Error("item without purchase should uncheck")
	}
}

func TestUpdateItemClearPrice(t *testing.T) {
	db := setupTestDB(t)
	ls := NewListStore(db)
	u := createTestUser(t, db, "alice@example.com")
	list := createTestList(t, db, u.ID, "Weekly")
	milk := createTestItem(t, db, u.ID, "Milk", nil)

	li, _ := ls.AddItem(list.ID, &milk.ID, nil, ptr(200.0), 1)
	cleared, err := ls.UpdateItem(li.ID, ListItemUpdate{ClearPrice: true})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cleared.PlannedPrice != nil {
		t.Errorf("planned price = %v, want nil", *cleared.PlannedPrice)
	}
}

func TestDeleteItemsSkipsMissing(t *testing.T) {
	db := setupTestDB(t)
	ls := NewListStore(db)
	u := createTestUser(t, db, "alice@example.com")
	list := createTestList(t, db, u.ID, "Weekly")
	milk := createTestItem(t, db, u.ID, "Milk", nil)
	eggs := createTestItem(t, db, u.ID, "Eggs", nil)

	keep, _ := ls.AddItem(list.ID, &milk.ID, nil, nil, 1)
	gone, _ := ls.AddItem(list.ID, &eggs.ID, nil, nil, 1)
	if ok, _ := ls.DeleteItem(gone.ID); !ok {
		t.Fatal("expected first delete to remove the row")
	}
	if ok, _ := ls.DeleteItem(gone.ID); ok {
		t.Error("second delete of the same id reported a removal")
	}

	n, err := ls.DeleteItems([]int64{keep.ID, gone.ID})
	if err != nil {
		t.Fatalf("delete items: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}
	if li, _ := ls.GetItem(keep.ID); li != nil {
		t.Error("valid id was not deleted")
	}
}

func TestSetItemsStore(t *testing.T) {
	db := setupTestDB(t)
	ls := NewListStore(db)
	cs := NewCatalogStore(db)
	u := createTestUser(t, db, "alice@example.com")
	list := createTestList(t, db, u.ID, "Weekly")
	milk := createTestItem(t, db, u.ID, "Milk", nil)
	eggs := createTestItem(t, db, u.ID, "Eggs", nil)
	shop, _ := cs.CreateStore(&u.ID, "Market", nil, false)

	a, _ := ls.AddItem(list.ID, &milk.ID, nil, nil, 1)
	b, _ := ls.AddItem(list.ID, &eggs.ID, nil, nil, 1)

	n, err := ls.SetItemsStore([]int64{a.ID, b.ID, 9999}, &shop.ID)
	if err != nil {
		t.Fatalf("set store: %v", err)
	}
	if n != 2 {
		t.Errorf("updated = %d, want 2", n)
	}
	got, _ := ls.GetItem(b.ID)
	if got.StoreID == nil || *got.StoreID != shop.ID {
		t.Errorf("store = %v, want %d", got.StoreID, shop.ID)
	}
}

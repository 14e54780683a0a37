package store

import (
	"testing"
	"time"

	"github.com/dukerupert/shoplist/internal/model"
)

func TestBackupLifecycle(t *testing.T) {
	db := setupTestDB(t)
	bs := NewBackupStore(db)

	b, err := bs.Create("shoplist-2025.db.enc", "backups/2025-01-01T00-00-00Z.db.enc")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.Status != model.BackupStatusPending {
		t.Errorf("status = %q, want %q", b.Status, model.BackupStatusPending)
	}

	if err := bs.UpdateStatus(b.ID, model.BackupStatusFailed, "boom"); err != nil {
		t.Fatalf("update status: %v", err)
	}
	got, _ := bs.GetByID(b.ID)
	if got.ErrorMessage != "boom" {
		t.Errorf("error message = %q, want boom", got.ErrorMessage)
	}

	if latest, _ := bs.LatestCompleted(); latest != nil {
		t.Error("expected no completed backup yet")
	}
	if err := bs.UpdateCompleted(b.ID, 4096); err != nil {
		t.Fatalf("update completed: %v", err)
	}
	latest, err := bs.LatestCompleted()
	if err != nil || latest == nil {
		t.Fatalf("latest completed = %v, %v", latest, err)
	}
	if latest.SizeBytes != 4096 || latest.CompletedAt == nil {
		t.Errorf("latest = %+v, want size 4096 with completion time", latest)
	}

	list, _ := bs.List(10)
	if len(list) != 1 {
		t.Errorf("list = %d, want 1", len(list))
	}
}

func TestBackupDeleteOlderThan(t *testing.T) {
	db := setupTestDB(t)
	bs := NewBackupStore(db)

	old, _ := bs.Create("old.db.enc", "backups/old.db.enc")
	bs.Create("new.db.enc", "backups/new.db.enc")
	if _, err := db.Exec(`UPDATE backups SET created_at = ? WHERE id = ?`, time.Now().UTC().AddDate(0, 0, -40), old.ID); err != nil {
		t.Fatalf("age backup: %v", err)
	}

	keys, err := bs.DeleteOlderThan(time.Now().UTC().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("delete older: %v", err)
	}
	if len(keys) != 1 || keys[0] != "backups/old.db.enc" {
		t.Errorf("keys = %v, want [backups/old.db.enc]", keys)
	}
	remaining, _ := bs.List(10)
	if len(remaining) != 1 {
		t.Errorf("remaining = %d, want 1", len(remaining))
	}
}

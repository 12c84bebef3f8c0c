package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pasuper/supercron/pkg/models"
	"github.com/pasuper/supercron/pkg/stores"
)

func fullLocation(id int64, upc, name string) *models.Location {
	return &models.Location{
		ID:           id,
		UPC:          upc,
		Name:         name,
		Store:        "1",
		Level:        "1",
		Row:          "A",
		Side:         "L",
		Column:       "3",
		Shelf:        "2",
		Bin:          "7",
		FullLocation: "1-A-L-3-2-7",
		CreatedAt:    time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		UpdatedAt:    time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}
}

func TestExportService_ExportAll(t *testing.T) {
	repo := &fakeRepo{
		locations: map[int][]*models.Location{
			1: {fullLocation(1, "0001", "brake pad"), fullLocation(2, "0002", "oil filter")},
		},
	}
	sftp := &fakeSFTP{}
	mail := &fakeMailer{}

	svc := NewExportService(repo, mail, func() SFTPClient { return sftp }, []stores.Store{{
		ID: 1, Name: "St-Hubert", Recipient: "mgr@example.com", InventoryFile: "SUPERPICKERSTHUBERT.csv",
	}}, "inv@example.com", 2)
	svc.tempDir = t.TempDir()

	if err := svc.ExportAll(context.Background()); err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}

	if len(sftp.uploads) != 1 {
		t.Fatalf("got %d uploads, want 1", len(sftp.uploads))
	}
	for path, data := range sftp.uploads {
		if !strings.HasPrefix(path, "Dev/inventory_backup/St-Hubert/") {
			t.Errorf("upload path = %q, want under Dev/inventory_backup/St-Hubert/", path)
		}
		if !strings.Contains(string(data), "brake pad") {
			t.Error("uploaded CSV missing location row")
		}
	}

	if len(mail.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(mail.messages))
	}
	// Backups always go to the inventory team, never the store contact.
	if mail.messages[0].Recipient != "inv@example.com" {
		t.Errorf("recipient = %q, want inv@example.com", mail.messages[0].Recipient)
	}
}

func TestExportService_SkipsLabelOnlyStores(t *testing.T) {
	repo := &fakeRepo{
		locations: map[int][]*models.Location{
			2: {fullLocation(1, "0001", "brake pad")},
		},
	}
	sftp := &fakeSFTP{}
	mail := &fakeMailer{}

	svc := NewExportService(repo, mail, func() SFTPClient { return sftp }, []stores.Store{{
		ID: 2, Name: "St-Jean", LabelFile: "PRIXETIQUETTEST-JEAN.csv",
	}}, "inv@example.com", 1)
	svc.tempDir = t.TempDir()

	if err := svc.ExportAll(context.Background()); err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if len(mail.messages) != 0 || len(sftp.uploads) != 0 {
		t.Error("store without an inventory export was exported")
	}
}

func TestExportService_NoLocationsNoMail(t *testing.T) {
	repo := &fakeRepo{locations: map[int][]*models.Location{}}
	sftp := &fakeSFTP{}
	mail := &fakeMailer{}

	svc := NewExportService(repo, mail, func() SFTPClient { return sftp }, []stores.Store{{
		ID: 1, Name: "St-Hubert", InventoryFile: "SUPERPICKERSTHUBERT.csv",
	}}, "inv@example.com", 1)
	svc.tempDir = t.TempDir()

	if err := svc.ExportAll(context.Background()); err != nil {
		t.Fatalf("ExportAll() error = %v", err)
	}
	if len(mail.messages) != 0 || len(sftp.uploads) != 0 {
		t.Error("empty store produced output")
	}
}

func TestExportService_FailingStoreDoesNotStopOthers(t *testing.T) {
	repo := &fakeRepo{
		locations: map[int][]*models.Location{
			1: {fullLocation(1, "0001", "brake pad")},
			2: {fullLocation(2, "0002", "oil filter")},
		},
	}
	sftp := &fakeSFTP{}
	mail := &fakeMailer{}

	registry := []stores.Store{
		{ID: 1, Name: "St-Hubert", InventoryFile: "SUPERPICKERSTHUBERT.csv"},
		{ID: 2, Name: "St-Jean", InventoryFile: "SUPERPICKERSTJEAN.csv"},
	}

	failing := &fakeSFTP{connectErr: context.DeadlineExceeded}
	calls := 0
	dial := func() SFTPClient {
		calls++
		if calls == 1 {
			return failing
		}
		return sftp
	}

	svc := NewExportService(repo, mail, dial, registry, "inv@example.com", 1)
	svc.tempDir = t.TempDir()

	err := svc.ExportAll(context.Background())
	if err == nil {
		t.Fatal("ExportAll() expected error when a store fails")
	}
	// The second store must still have been exported.
	if len(sftp.uploads) != 1 {
		t.Errorf("got %d uploads from healthy store, want 1", len(sftp.uploads))
	}
}

func TestExportRows_SkipsIncompleteLocations(t *testing.T) {
	complete := fullLocation(1, "0001", "brake pad")
	incomplete := fullLocation(2, "0002", "oil filter")
	incomplete.Shelf = ""

	rows := exportRows([]*models.Location{complete, incomplete})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if rows[0]["id"] != "1" {
		t.Errorf("kept row id = %q, want 1", rows[0]["id"])
	}
	if rows[0]["created_at"] != "2026-01-15 09:00:00" {
		t.Errorf("created_at = %q", rows[0]["created_at"])
	}
}

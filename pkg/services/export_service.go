package services

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/pasuper/supercron/pkg/csvutil"
	apperrors "github.com/pasuper/supercron/pkg/errors"
	"github.com/pasuper/supercron/pkg/mailer"
	"github.com/pasuper/supercron/pkg/models"
	"github.com/pasuper/supercron/pkg/repository"
	"github.com/pasuper/supercron/pkg/stores"
)

// backupRoot is the NAS directory receiving inventory backups.
const backupRoot = "Dev/inventory_backup"

var exportHeaders = []string{
	"id", "upc", "name", "store", "level", "row", "side", "column",
	"shelf", "bin", "full_location", "updated_by", "updated_at",
	"created_by", "created_at", "is_archived",
}

// ExportService writes each store's active locations to CSV, uploads
// the file to the NAS and mails it to the inventory team's recipient.
type ExportService struct {
	repo      repository.Repository
	mail      mailer.Sender
	dialSFTP  SFTPDialer
	stores    []stores.Store
	recipient string
	workers   int
	tempDir   string
}

func NewExportService(repo repository.Repository, mail mailer.Sender, dialSFTP SFTPDialer, registry []stores.Store, recipient string, workers int) *ExportService {
	if workers < 1 {
		workers = 1
	}
	return &ExportService{
		repo:      repo,
		mail:      mail,
		dialSFTP:  dialSFTP,
		stores:    registry,
		recipient: recipient,
		workers:   workers,
		tempDir:   filepath.Join(os.TempDir(), "supercron_exports"),
	}
}

// ExportAll runs the export for every store with an inventory export,
// at most workers at a time. A failing store is logged and does not
// stop the others.
func (s *ExportService) ExportAll(ctx context.Context) error {
	if err := os.MkdirAll(s.tempDir, 0o755); err != nil {
		return apperrors.NewServiceError("export", "ExportAll", err)
	}

	var group errgroup.Group
	group.SetLimit(s.workers)

	failures := make(chan string, len(s.stores))
	for _, store := range s.stores {
		if store.InventoryFile == "" {
			continue
		}
		store := store
		group.Go(func() error {
			if err := s.exportStore(ctx, store); err != nil {
				log.WithError(err).WithField("store", store.Name).Error("Store export failed")
				failures <- store.Name
			}
			return nil
		})
	}
	group.Wait()
	close(failures)

	var failed []string
	for name := range failures {
		failed = append(failed, name)
	}
	if len(failed) > 0 {
		return apperrors.NewServiceError("export", "ExportAll",
			fmt.Errorf("%w: %d stores failed", apperrors.ErrExternalService, len(failed))).
			WithContext("stores", failed)
	}
	return nil
}

func (s *ExportService) exportStore(ctx context.Context, store stores.Store) error {
	logger := log.WithField("store", store.Name)

	locations, err := s.repo.ActiveLocationsByStore(ctx, store.ID)
	if err != nil {
		return err
	}
	if len(locations) == 0 {
		logger.Info("No locations to export")
		return nil
	}

	fileName := fmt.Sprintf("store_%d_locations_%s.csv", store.ID, time.Now().Format("20060102_150405"))
	localPath := filepath.Join(s.tempDir, fileName)
	defer os.Remove(localPath)

	rows := exportRows(locations)
	if err := csvutil.Write(localPath, exportHeaders, rows); err != nil {
		return err
	}
	logger.WithField("rows", len(rows)).Info("Wrote export CSV")

	if err := s.uploadBackup(localPath, store.Name, fileName); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Voici les localisations pour le magasin %d.\n\n- Date: %s\n- Store: %d\n",
		store.ID, time.Now().Format("2006-01-02 15:04:05"), store.ID)

	// Backups go to the inventory team, not the store contact.
	err = s.mail.Send(mailer.Message{
		Recipient:      s.recipient,
		Subject:        fmt.Sprintf("Inventaire Backup pour %s", store.Name),
		Body:           body,
		AttachmentPath: localPath,
		AttachmentName: fileName,
	})
	if err != nil {
		return err
	}

	logger.WithField("file", fileName).Info("Export sent")
	return nil
}

func (s *ExportService) uploadBackup(localPath, storeName, fileName string) error {
	client := s.dialSFTP()
	if err := client.Connect(); err != nil {
		return err
	}
	defer client.Close()

	remotePath := path.Join(backupRoot, storeName, fileName)
	if err := client.Upload(localPath, remotePath); err != nil {
		return err
	}
	log.WithField("path", remotePath).Info("Uploaded backup to NAS")
	return nil
}

// exportRows converts locations to CSV rows, skipping rows missing a
// required placement field.
func exportRows(locations []*models.Location) []map[string]string {
	rows := make([]map[string]string, 0, len(locations))
	for _, loc := range locations {
		if missing := missingFields(loc); len(missing) > 0 {
			log.WithFields(log.Fields{
				"location": loc.ID,
				"missing":  missing,
			}).Warn("Skipping location with missing fields")
			continue
		}
		rows = append(rows, map[string]string{
			"id":            strconv.FormatInt(loc.ID, 10),
			"upc":           loc.UPC,
			"name":          loc.Name,
			"store":         loc.Store,
			"level":         loc.Level,
			"row":           loc.Row,
			"side":          loc.Side,
			"column":        loc.Column,
			"shelf":         loc.Shelf,
			"bin":           loc.Bin,
			"full_location": loc.FullLocation,
			"updated_by":    loc.UpdatedBy,
			"updated_at":    formatTime(loc.UpdatedAt),
			"created_by":    loc.CreatedBy,
			"created_at":    formatTime(loc.CreatedAt),
			"is_archived":   strconv.FormatBool(loc.IsArchived),
		})
	}
	return rows
}

func missingFields(loc *models.Location) []string {
	required := map[string]string{
		"store":         loc.Store,
		"level":         loc.Level,
		"row":           loc.Row,
		"side":          loc.Side,
		"column":        loc.Column,
		"shelf":         loc.Shelf,
		"bin":           loc.Bin,
		"full_location": loc.FullLocation,
	}
	var missing []string
	for field, value := range required {
		if value == "" {
			missing = append(missing, field)
		}
	}
	return missing
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

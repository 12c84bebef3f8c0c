package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pasuper/supercron/pkg/csvutil"
	apperrors "github.com/pasuper/supercron/pkg/errors"
	"github.com/pasuper/supercron/pkg/mailer"
	"github.com/pasuper/supercron/pkg/models"
	"github.com/pasuper/supercron/pkg/repository"
)

var unknownReportHeaders = []string{"UPC", "Location Name", "Full Location"}

// UnknownLocationService renames unknown locations from inventory data
// and mails a report of the ones that stay unknown.
type UnknownLocationService struct {
	repo      repository.Repository
	mail      mailer.Sender
	recipient string
}

func NewUnknownLocationService(repo repository.Repository, mail mailer.Sender, recipient string) *UnknownLocationService {
	return &UnknownLocationService{repo: repo, mail: mail, recipient: recipient}
}

// UpdateUnknownLocations runs the cleanup and report.
func (s *UnknownLocationService) UpdateUnknownLocations(ctx context.Context) error {
	updated, err := s.renameFromInventory(ctx)
	if err != nil {
		return apperrors.NewServiceError("unknown", "renameFromInventory", err)
	}
	log.WithField("updated", updated).Info("Renamed unknown locations from inventory")

	groups, err := s.repo.UnknownLocationGroups(ctx)
	if err != nil {
		return apperrors.NewServiceError("unknown", "UnknownLocationGroups", err)
	}
	log.WithField("remaining", len(groups)).Info("Remaining unknown locations")

	if len(groups) == 0 {
		return nil
	}
	if err := s.sendReport(groups); err != nil {
		return apperrors.NewServiceError("unknown", "sendReport", err)
	}
	return nil
}

// renameFromInventory gives unknown locations the item name recorded in
// inventory for the same UPC. Returns the number of rows renamed.
func (s *UnknownLocationService) renameFromInventory(ctx context.Context) (int64, error) {
	upcs, err := s.repo.UnknownUPCs(ctx)
	if err != nil {
		return 0, err
	}
	if len(upcs) == 0 {
		return 0, nil
	}

	items, err := s.repo.InventoryItemsByUPC(ctx, upcs)
	if err != nil {
		return 0, err
	}

	var total int64
	for upc, item := range items {
		count, err := s.repo.RenameUnknownLocations(ctx, upc, item)
		if err != nil {
			return total, err
		}
		total += count
	}
	return total, nil
}

func (s *UnknownLocationService) sendReport(groups []models.UnknownGroup) error {
	fileName := fmt.Sprintf("unknown_locations_%s.csv", time.Now().Format("20060102_150405"))
	localPath := filepath.Join(os.TempDir(), fileName)
	defer os.Remove(localPath)

	rows := make([]map[string]string, 0, len(groups))
	for _, group := range groups {
		rows = append(rows, map[string]string{
			"UPC":           group.UPC,
			"Location Name": models.UnknownName,
			"Full Location": group.Locations,
		})
	}
	if err := csvutil.Write(localPath, unknownReportHeaders, rows); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Vous trouverez ci-joint le rapport des inconnus restants.\n\nNombre total d'inconnus : %d\n",
		len(groups))

	return s.mail.Send(mailer.Message{
		Recipient:      s.recipient,
		Subject:        "Rapport emplacements des inconnus",
		Body:           body,
		AttachmentPath: localPath,
		AttachmentName: fileName,
	})
}

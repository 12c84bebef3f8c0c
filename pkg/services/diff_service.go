package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pasuper/supercron/pkg/csvutil"
	apperrors "github.com/pasuper/supercron/pkg/errors"
	"github.com/pasuper/supercron/pkg/mailer"
	"github.com/pasuper/supercron/pkg/models"
	"github.com/pasuper/supercron/pkg/repository"
	"github.com/pasuper/supercron/pkg/stores"
)

// Inventory CSV column names as produced by the store back office.
const (
	colInvPartNumber = "Part Number"
	colInvQuantity   = "Quantity on Hand"
)

var diffReportHeaders = []string{"Item Name", "Database Count", "CSV Count", "Difference"}

// DiffService compares location counts in the database against each
// store's inventory CSV and mails the discrepancies.
type DiffService struct {
	repo    repository.Repository
	mail    mailer.Sender
	dialFTP FTPDialer
	stores  []stores.Store
}

func NewDiffService(repo repository.Repository, mail mailer.Sender, dialFTP FTPDialer, registry []stores.Store) *DiffService {
	return &DiffService{repo: repo, mail: mail, dialFTP: dialFTP, stores: registry}
}

// CheckAllStores runs the comparison for every store with an inventory
// file. A failing store is logged and does not stop the others.
func (s *DiffService) CheckAllStores(ctx context.Context) error {
	log.Info("Starting inventory check")
	var failed int

	for _, store := range s.stores {
		if store.InventoryFile == "" {
			continue
		}
		logger := log.WithField("store", store.Name)

		comparisons, err := s.compareStore(ctx, store)
		if err != nil {
			logger.WithError(err).Error("Failed to compare inventory")
			failed++
			continue
		}
		if len(comparisons) == 0 {
			logger.Info("No discrepancies found")
			continue
		}
		logger.WithField("discrepancies", len(comparisons)).Info("Found discrepancies")

		if err := s.sendReport(store, comparisons); err != nil {
			logger.WithError(err).Error("Failed to send discrepancy report")
			failed++
		}
	}

	log.Info("Completed inventory check")
	if failed > 0 {
		return apperrors.NewServiceError("diff", "CheckAllStores",
			fmt.Errorf("%w: %d stores failed", apperrors.ErrExternalService, failed))
	}
	return nil
}

func (s *DiffService) compareStore(ctx context.Context, store stores.Store) ([]models.InventoryComparison, error) {
	dbCounts, err := s.repo.LocationCountsByStore(ctx, store.ID)
	if err != nil {
		return nil, err
	}
	log.WithField("items", len(dbCounts)).Debug("Loaded database counts")

	csvCounts, err := s.fetchCSVCounts(store)
	if err != nil {
		return nil, err
	}
	log.WithField("items", len(csvCounts)).Debug("Loaded CSV counts")

	return Compare(store.ID, dbCounts, csvCounts), nil
}

// fetchCSVCounts downloads the store's inventory file and sums the
// quantity on hand per normalized part number.
func (s *DiffService) fetchCSVCounts(store stores.Store) (map[string]int, error) {
	client := s.dialFTP()
	if err := client.Connect(); err != nil {
		return nil, err
	}
	defer client.Close()

	var buf bytes.Buffer
	if err := client.Fetch(store.InventoryFile, &buf); err != nil {
		return nil, err
	}

	file, err := csvutil.ReadFrom(&buf)
	if err != nil {
		return nil, err
	}
	return csvQuantities(file), nil
}

// csvQuantities sums quantities per part number. Part numbers are
// normalized by trimming and stripping dashes; the first row of a part
// number wins, duplicates are skipped.
func csvQuantities(file *csvutil.File) map[string]int {
	quantities := make(map[string]int)
	processed := make(map[string]bool)

	for _, row := range file.Rows {
		partNumber := strings.ReplaceAll(strings.TrimSpace(row[colInvPartNumber]), "-", "")
		if partNumber == "" || processed[partNumber] {
			continue
		}
		processed[partNumber] = true
		quantities[partNumber] += csvutil.ParseQuantity(row[colInvQuantity])
	}
	return quantities
}

// Compare returns the non-zero differences between database and CSV
// counts over the union of item names, sorted by difference.
func Compare(storeID int, dbCounts, csvCounts map[string]int) []models.InventoryComparison {
	names := make(map[string]bool, len(dbCounts)+len(csvCounts))
	for name := range dbCounts {
		names[name] = true
	}
	for name := range csvCounts {
		names[name] = true
	}

	var comparisons []models.InventoryComparison
	for name := range names {
		dbCount := dbCounts[name]
		csvCount := csvCounts[name]
		if dbCount == csvCount {
			continue
		}
		comparisons = append(comparisons, models.InventoryComparison{
			StoreID:    storeID,
			ItemName:   name,
			DBCount:    dbCount,
			CSVCount:   csvCount,
			Difference: csvCount - dbCount,
		})
	}

	sort.Slice(comparisons, func(i, j int) bool {
		if comparisons[i].Difference != comparisons[j].Difference {
			return comparisons[i].Difference < comparisons[j].Difference
		}
		return comparisons[i].ItemName < comparisons[j].ItemName
	})
	return comparisons
}

func (s *DiffService) sendReport(store stores.Store, comparisons []models.InventoryComparison) error {
	fileName := fmt.Sprintf("inventory_discrepancies_%s_%s.csv", store.Name, time.Now().Format("20060102_150405"))
	localPath := filepath.Join(os.TempDir(), fileName)
	defer os.Remove(localPath)

	rows := make([]map[string]string, 0, len(comparisons))
	for _, comp := range comparisons {
		rows = append(rows, map[string]string{
			"Item Name":      comp.ItemName,
			"Database Count": strconv.Itoa(comp.DBCount),
			"CSV Count":      strconv.Itoa(comp.CSVCount),
			"Difference":     strconv.Itoa(comp.Difference),
		})
	}
	if err := csvutil.Write(localPath, diffReportHeaders, rows); err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Nous avons identifié %d écarts d'inventaire pour %s.\n"+
			"Veuillez consulter le fichier CSV joint pour plus de détails.\n\n"+
			"Résumé :\n"+
			"- Nombre total d'articles avec des écarts : %d\n"+
			"- Magasin : %s\n"+
			"- Généré le : %s\n",
		len(comparisons), store.Name, len(comparisons), store.Name,
		time.Now().Format("2006-01-02 15:04:05"))

	return s.mail.Send(mailer.Message{
		Recipient:      store.Recipient,
		Subject:        fmt.Sprintf("Rapport des écarts d'inventaire - %s", store.Name),
		Body:           body,
		AttachmentPath: localPath,
		AttachmentName: fileName,
	})
}

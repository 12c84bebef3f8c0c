package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pasuper/supercron/pkg/csvutil"
	apperrors "github.com/pasuper/supercron/pkg/errors"
	"github.com/pasuper/supercron/pkg/esl"
	"github.com/pasuper/supercron/pkg/models"
	"github.com/pasuper/supercron/pkg/stores"
)

// Label CSV column names as produced by the store back office.
const (
	colPartNumber  = "Part Number"
	colDescription = "Part Description"
	colValue       = "Value"
	colUPC         = "UPC Code"
)

// LabelService pushes price and quantity labels to the ESL vendor.
type LabelService struct {
	eslClient  ESLClient
	dialFTP    FTPDialer
	stores     []stores.Store
	batchSize  int
	batchDelay time.Duration
	maxRetries int
	retryDelay time.Duration
}

func NewLabelService(eslClient ESLClient, dialFTP FTPDialer, registry []stores.Store) *LabelService {
	return &LabelService{
		eslClient:  eslClient,
		dialFTP:    dialFTP,
		stores:     registry,
		batchSize:  1000,
		batchDelay: time.Second,
		maxRetries: 3,
		retryDelay: 5 * time.Second,
	}
}

// PushPriceLabels updates price and quantity on every label.
func (s *LabelService) PushPriceLabels(ctx context.Context) error {
	return s.run(ctx, true)
}

// PushQuantityLabels updates quantity only.
func (s *LabelService) PushQuantityLabels(ctx context.Context) error {
	return s.run(ctx, false)
}

func (s *LabelService) run(ctx context.Context, includePrice bool) error {
	client := s.dialFTP()
	if err := client.Connect(); err != nil {
		return apperrors.NewServiceError("label", "connect", err)
	}
	defer client.Close()

	var failures []string
	for _, store := range s.stores {
		if store.LabelFile == "" {
			continue
		}
		logger := log.WithFields(log.Fields{"store": store.Name, "file": store.LabelFile})

		records, err := s.fetchLabelFile(ctx, client, store.LabelFile)
		if err != nil {
			logger.WithError(err).Error("Failed to fetch label file")
			failures = append(failures, store.LabelFile)
			continue
		}
		logger.WithField("records", len(records)).Info("Fetched label file")

		if err := s.pushRecords(ctx, store.ESLCode(), records, includePrice); err != nil {
			logger.WithError(err).Error("Failed to push labels")
			failures = append(failures, store.LabelFile)
		}
	}

	if len(failures) > 0 {
		return apperrors.NewServiceError("label", "run",
			fmt.Errorf("%w: failed files: %s", apperrors.ErrExternalService, strings.Join(failures, ", ")))
	}
	return nil
}

// fetchLabelFile downloads and parses one label CSV, retrying with
// growing delays when the FTP server reports itself busy.
func (s *LabelService) fetchLabelFile(ctx context.Context, client FTPClient, fileName string) ([]models.LabelRecord, error) {
	delay := s.retryDelay
	var lastErr error

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		var buf bytes.Buffer
		err := client.Fetch("/"+fileName, &buf)
		if err == nil {
			file, perr := csvutil.ReadFrom(&buf)
			if perr != nil {
				return nil, perr
			}
			records := parseLabelRecords(file)
			if len(records) == 0 {
				return nil, fmt.Errorf("%w: empty label file %s", apperrors.ErrInvalidInput, fileName)
			}
			return records, nil
		}

		lastErr = err
		if !apperrors.IsRetryable(err) {
			return nil, err
		}
		log.WithFields(log.Fields{
			"file":    fileName,
			"attempt": attempt + 1,
			"delay":   delay,
		}).Warn("FTP server busy, retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, lastErr
}

func parseLabelRecords(file *csvutil.File) []models.LabelRecord {
	records := make([]models.LabelRecord, 0, len(file.Rows))
	for _, row := range file.Rows {
		records = append(records, models.LabelRecord{
			PartNumber:  row[colPartNumber],
			Description: row[colDescription],
			Quantity:    row[colValue],
			UPC:         row[colUPC],
		})
	}
	return records
}

// pushRecords cleans, prices and pushes records in batches.
func (s *LabelService) pushRecords(ctx context.Context, storeCode string, records []models.LabelRecord, includePrice bool) error {
	batches := splitBatches(records, s.batchSize)
	log.WithFields(log.Fields{
		"store":   storeCode,
		"batches": len(batches),
	}).Info("Pushing label batches")

	var failed int
	for i, batch := range batches {
		cleanRecords(batch)

		if includePrice {
			if err := s.mergePrices(ctx, batch); err != nil {
				log.WithError(err).WithField("batch", i+1).Error("Failed to fetch prices for batch")
				failed++
				continue
			}
		}

		products := toProducts(batch, includePrice)
		if len(products) == 0 {
			log.WithField("batch", i+1).Error("No valid products in batch")
			failed++
			continue
		}

		if err := s.eslClient.PushLabels(ctx, storeCode, products); err != nil {
			log.WithError(err).WithField("batch", i+1).Error("Failed to push batch")
			failed++
			continue
		}

		if i < len(batches)-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.batchDelay):
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d batches failed", apperrors.ErrExternalService, failed, len(batches))
	}
	return nil
}

// mergePrices looks up unit costs for the batch and writes them back
// onto the records. Part numbers without a manufacturer code prefix are
// skipped, matching the pricing API contract.
func (s *LabelService) mergePrices(ctx context.Context, batch []models.LabelRecord) error {
	params := priceParams(batch)
	if len(params) == 0 {
		return fmt.Errorf("%w: no parts eligible for pricing", apperrors.ErrInvalidInput)
	}

	prices, err := s.eslClient.FetchPrices(ctx, params)
	if err != nil {
		return err
	}

	for i := range batch {
		if price, ok := prices[batch[i].PartNumber]; ok {
			batch[i].Price = strconv.FormatFloat(price, 'f', 2, 64)
		}
	}
	return nil
}

// priceParams extracts "<code> <number>" part numbers into API params.
func priceParams(batch []models.LabelRecord) []esl.PriceParam {
	params := make([]esl.PriceParam, 0, len(batch))
	for _, record := range batch {
		partNumber := strings.TrimSpace(record.PartNumber)
		code, number, found := strings.Cut(partNumber, " ")
		if !found || code == "" || number == "" {
			continue
		}
		params = append(params, esl.PriceParam{Code: code, PartNum: number})
	}
	return params
}

// cleanRecords zero-fills blank numeric fields so the vendor never sees
// empty cells.
func cleanRecords(batch []models.LabelRecord) {
	for i := range batch {
		if strings.TrimSpace(batch[i].Quantity) == "" {
			batch[i].Quantity = "0"
		}
		if strings.TrimSpace(batch[i].Price) == "" {
			batch[i].Price = "0"
		}
	}
}

// toProducts converts records to the vendor key schema.
func toProducts(batch []models.LabelRecord, includePrice bool) []esl.Product {
	products := make([]esl.Product, 0, len(batch))
	for _, record := range batch {
		if record.PartNumber == "" {
			continue
		}
		product := esl.Product{
			"pi": record.PartNumber,
			"pn": record.Description,
			"kc": record.Quantity,
			"pc": record.UPC,
		}
		if includePrice {
			product["pp"] = record.Price
		}
		products = append(products, product)
	}
	return products
}

// splitBatches splits records into batches of at most size.
func splitBatches(records []models.LabelRecord, size int) [][]models.LabelRecord {
	if size <= 0 {
		return [][]models.LabelRecord{records}
	}
	var batches [][]models.LabelRecord
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		batches = append(batches, records[start:end])
	}
	return batches
}

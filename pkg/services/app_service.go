package services

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pasuper/supercron/pkg/repository"
)

// Operations is the job surface exposed to the HTTP handlers and the
// scheduler.
type Operations interface {
	UpdatePriceLabels(ctx context.Context) error
	UpdateQuantityLabels(ctx context.Context) error
	ExportOffline(ctx context.Context) error
	UpdateUnknownLocations(ctx context.Context) error
	CheckInventoryDiffs(ctx context.Context) error
}

// AppService coordinates all inventory jobs
type AppService struct {
	repo    repository.Repository
	labels  *LabelService
	export  *ExportService
	unknown *UnknownLocationService
	diff    *DiffService
}

func NewAppService(
	repo repository.Repository,
	labels *LabelService,
	export *ExportService,
	unknown *UnknownLocationService,
	diff *DiffService,
) *AppService {
	return &AppService{
		repo:    repo,
		labels:  labels,
		export:  export,
		unknown: unknown,
		diff:    diff,
	}
}

// UpdatePriceLabels pushes price and quantity labels for every store.
func (s *AppService) UpdatePriceLabels(ctx context.Context) error {
	return s.timed(ctx, "update_price_label", s.labels.PushPriceLabels)
}

// UpdateQuantityLabels pushes quantity-only labels for every store.
func (s *AppService) UpdateQuantityLabels(ctx context.Context) error {
	return s.timed(ctx, "update_qty_label", s.labels.PushQuantityLabels)
}

// ExportOffline exports each store's locations to the NAS and by mail.
func (s *AppService) ExportOffline(ctx context.Context) error {
	return s.timed(ctx, "offline_inv", s.export.ExportAll)
}

// UpdateUnknownLocations renames unknown locations and mails the report.
func (s *AppService) UpdateUnknownLocations(ctx context.Context) error {
	return s.timed(ctx, "unknown_inv", s.unknown.UpdateUnknownLocations)
}

// CheckInventoryDiffs compares database and store inventory counts.
func (s *AppService) CheckInventoryDiffs(ctx context.Context) error {
	return s.timed(ctx, "diff_inv", s.diff.CheckAllStores)
}

func (s *AppService) timed(ctx context.Context, job string, run func(context.Context) error) error {
	logger := log.WithField("job", job)
	logger.Info("Starting job")
	start := time.Now()

	err := run(ctx)
	if err != nil {
		logger.WithError(err).WithField("duration", time.Since(start)).Error("Job failed")
		return err
	}

	logger.WithField("duration", time.Since(start)).Info("Job completed")
	return nil
}

// Close releases shared resources.
func (s *AppService) Close() error {
	return s.repo.Close()
}

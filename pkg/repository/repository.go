package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/pasuper/supercron/pkg/models"
)

// Repository defines the data access operations used by the jobs
type Repository interface {
	// Location operations
	ActiveLocationsByStore(ctx context.Context, storeID int) ([]*models.Location, error)
	LocationCountsByStore(ctx context.Context, storeID int) (map[string]int, error)

	// Unknown location operations
	UnknownUPCs(ctx context.Context) ([]string, error)
	InventoryItemsByUPC(ctx context.Context, upcs []string) (map[string]string, error)
	RenameUnknownLocations(ctx context.Context, upc, name string) (int64, error)
	UnknownLocationGroups(ctx context.Context) ([]models.UnknownGroup, error)

	// Utility operations
	Close() error
}

// GormRepository implements Repository over the primary and secondary
// MySQL databases. Writes go to the primary; the secondary is retained
// for read-side reporting queries.
type GormRepository struct {
	primary   *gorm.DB
	secondary *gorm.DB
}

func NewGormRepository(primary, secondary *gorm.DB) Repository {
	return &GormRepository{primary: primary, secondary: secondary}
}

// ActiveLocationsByStore returns the non-archived locations of a store.
func (r *GormRepository) ActiveLocationsByStore(ctx context.Context, storeID int) ([]*models.Location, error) {
	var locations []*models.Location
	err := r.primary.WithContext(ctx).
		Where("store = ? AND is_archived = ?", strconv.Itoa(storeID), false).
		Find(&locations).Error
	if err != nil {
		return nil, fmt.Errorf("finding locations for store %d: %w", storeID, err)
	}
	return locations, nil
}

// LocationCountsByStore returns, per item name, the number of active
// named locations in a store.
func (r *GormRepository) LocationCountsByStore(ctx context.Context, storeID int) (map[string]int, error) {
	var rows []struct {
		Name  string
		Count int
	}
	err := r.primary.WithContext(ctx).Raw(`
		SELECT name, COUNT(name) AS count
		FROM locations
		WHERE name NOT LIKE ?
		  AND NOT is_archived
		  AND store = ?
		GROUP BY name`,
		models.UnknownName, strconv.Itoa(storeID)).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("counting locations for store %d: %w", storeID, err)
	}

	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		counts[row.Name] = row.Count
	}
	return counts, nil
}

// UnknownUPCs returns the distinct UPCs of active unknown locations.
func (r *GormRepository) UnknownUPCs(ctx context.Context) ([]string, error) {
	var upcs []string
	err := r.primary.WithContext(ctx).
		Model(&models.Location{}).
		Distinct("upc").
		Where("name = ? AND is_archived = ?", models.UnknownName, false).
		Pluck("upc", &upcs).Error
	if err != nil {
		return nil, fmt.Errorf("finding unknown upcs: %w", err)
	}
	return upcs, nil
}

// InventoryItemsByUPC returns a upc-to-item map for the given UPCs.
func (r *GormRepository) InventoryItemsByUPC(ctx context.Context, upcs []string) (map[string]string, error) {
	if len(upcs) == 0 {
		return map[string]string{}, nil
	}

	var items []models.InventoryItem
	err := r.primary.WithContext(ctx).
		Select("upc", "item").
		Where("upc IN ?", upcs).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("finding inventory items: %w", err)
	}

	byUPC := make(map[string]string, len(items))
	for _, item := range items {
		byUPC[item.UPC] = item.Item
	}
	return byUPC, nil
}

// RenameUnknownLocations gives every active unknown location of a UPC
// the item name found in inventory. Returns the number of rows updated.
func (r *GormRepository) RenameUnknownLocations(ctx context.Context, upc, name string) (int64, error) {
	result := r.primary.WithContext(ctx).
		Model(&models.Location{}).
		Where("upc = ? AND name = ? AND is_archived = ?", upc, models.UnknownName, false).
		Updates(map[string]interface{}{
			"name":       name,
			"updated_at": time.Now(),
			"updated_by": "system",
		})
	if result.Error != nil {
		return 0, fmt.Errorf("renaming unknown locations for upc %s: %w", upc, result.Error)
	}
	return result.RowsAffected, nil
}

// UnknownLocationGroups returns the remaining unknown UPCs with their
// locations concatenated for the report.
func (r *GormRepository) UnknownLocationGroups(ctx context.Context) ([]models.UnknownGroup, error) {
	var groups []models.UnknownGroup
	err := r.primary.WithContext(ctx).Raw(`
		SELECT upc, GROUP_CONCAT(full_location) AS locations
		FROM locations
		WHERE name = ?
		  AND is_archived = 0
		GROUP BY upc
		ORDER BY upc`,
		models.UnknownName).Scan(&groups).Error
	if err != nil {
		return nil, fmt.Errorf("grouping unknown locations: %w", err)
	}
	return groups, nil
}

// Close closes both database connections.
func (r *GormRepository) Close() error {
	var firstErr error
	for _, db := range []*gorm.DB{r.primary, r.secondary} {
		if db == nil {
			continue
		}
		sqlDB, err := db.DB()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if err := sqlDB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package models

import (
	"time"

	"gorm.io/gorm"
)

// UnknownName is the placeholder name given to scanned locations whose
// item could not be identified at scan time.
const UnknownName = "inconnu"

// easternLocation is resolved once; warehouse timestamps are recorded in
// US/Eastern to match the stores' business hours.
var easternLocation = mustLoadLocation("US/Eastern")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EasternNow returns the current time in the US/Eastern timezone.
func EasternNow() time.Time {
	return time.Now().In(easternLocation)
}

// Location is a physical warehouse location holding one scanned item.
type Location struct {
	ID           int64     `gorm:"column:id;primaryKey;autoIncrement"`
	UPC          string    `gorm:"column:upc"`
	Name         string    `gorm:"column:name"`
	Store        string    `gorm:"column:store"`
	Level        string    `gorm:"column:level"`
	Row          string    `gorm:"column:row"`
	Side         string    `gorm:"column:side"`
	Column       string    `gorm:"column:column"`
	Shelf        string    `gorm:"column:shelf"`
	Bin          string    `gorm:"column:bin"`
	FullLocation string    `gorm:"column:full_location"`
	UpdatedBy    string    `gorm:"column:updated_by"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
	CreatedBy    string    `gorm:"column:created_by"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	IsArchived   bool      `gorm:"column:is_archived"`
}

// TableName implements the gorm table name convention
func (Location) TableName() string {
	return "locations"
}

// BeforeCreate stamps audit times in Eastern time
func (l *Location) BeforeCreate(tx *gorm.DB) error {
	now := EasternNow()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	if l.UpdatedAt.IsZero() {
		l.UpdatedAt = now
	}
	return nil
}

// IsUnknown reports whether the location's item was never identified.
func (l *Location) IsUnknown() bool {
	return l.Name == UnknownName
}

// InventoryItem is a row of the inventory reference table.
type InventoryItem struct {
	ID          int64  `gorm:"column:id;primaryKey"`
	UPC         string `gorm:"column:upc"`
	SKU         string `gorm:"column:sku"`
	Item        string `gorm:"column:item"`
	Description string `gorm:"column:description"`
	Pack        int    `gorm:"column:pack"`
}

// TableName implements the gorm table name convention
func (InventoryItem) TableName() string {
	return "inventory"
}

// UnknownGroup is a distinct unknown UPC with all of its locations
// concatenated into a single field for reporting.
type UnknownGroup struct {
	UPC       string `gorm:"column:upc"`
	Locations string `gorm:"column:locations"`
}

package models

// LabelRecord is one shelf label line parsed from a store's label CSV.
type LabelRecord struct {
	PartNumber  string
	Description string
	Quantity    string
	UPC         string
	Price       string
}

// InventoryComparison is one discrepancy between the location database
// and a store's inventory CSV.
type InventoryComparison struct {
	StoreID    int
	ItemName   string
	DBCount    int
	CSVCount   int
	Difference int
}

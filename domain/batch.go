package domain

// Batch is one tracked physical unit of a Product.
//
// Name and Description are copied from the Product when the batch is
// recorded and are never refreshed. Deleting the Product leaves the batch
// pointing at a barcode that no longer exists in the catalog.
type Batch struct {
	ID          int64  `db:"id" json:"id"`
	Barcode     string `db:"barcode" json:"barcode"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
	ExpDate     string `db:"exp_date" json:"exp_date"`
}

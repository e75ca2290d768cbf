package domain

// Product is a catalog entry keyed by its barcode.
type Product struct {
	Barcode     string `db:"barcode" json:"barcode"`
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description"`
}

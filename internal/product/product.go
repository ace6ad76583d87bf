package product

import "time"

// ScanInput is a raw scan or manual-entry event: a code, an opaque image
// reference, or both
type ScanInput struct {
	Code     string `json:"code"`
	ImageRef string `json:"imageRef,omitempty"`
}

// AnalysisResult is the single result type returned by every resolution tier.
// Failure is represented as a low-confidence or escalated result, never as a
// separate error shape.
type AnalysisResult struct {
	ProductName         string  `json:"productName"`
	Category            string  `json:"category"`
	ExpiryDate          string  `json:"expiryDate"` // ISO 8601 date (YYYY-MM-DD)
	ConfidenceScore     float64 `json:"confidenceScore"`
	ManualEntryRequired bool    `json:"manualEntryRequired,omitempty"`
}

// CatalogEntry is a row in the managed product reference table, keyed by code.
// Read-only from the resolver's perspective.
type CatalogEntry struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	ShelfLifeDays *int   `json:"shelf_life_days"`
}

// Item is a product saved to the inventory
type Item struct {
	ID          string    `json:"id"`
	Barcode     string    `json:"barcode"`
	ProductName string    `json:"product_name"`
	Category    string    `json:"category"`
	ExpiryDate  string    `json:"expiry_date"` // ISO 8601 date (YYYY-MM-DD)
	Confidence  float64   `json:"ai_confidence"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewItem carries the caller-supplied fields for saving an item, either from
// an accepted resolution or from a manual-entry form
type NewItem struct {
	Barcode     string  `json:"barcode"`
	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	ExpiryDate  string  `json:"expiry_date"`
	Confidence  float64 `json:"ai_confidence"`
}

package inferring

import "errors"

// ProductGuess contains the product details a model inferred from a code
type ProductGuess struct {
	ProductName     string  `json:"productName"`
	Category        string  `json:"category"`
	ExpiryDate      string  `json:"expiryDate"` // ISO 8601 date (YYYY-MM-DD)
	ConfidenceScore float64 `json:"confidenceScore"`
}

// Provider defines the interface for AI product inference
type Provider interface {
	// AnalyzeCode sends a barcode/product code to the model and returns its guess.
	// Content-level failures (unparseable output, empty fields) degrade into a
	// below-threshold fallback guess; only transport and configuration failures
	// return an error.
	AnalyzeCode(code string) (*ProductGuess, error)
	// Close closes the provider and releases resources
	Close() error
}

var (
	// ErrNotConfigured indicates the provider credential is missing entirely
	ErrNotConfigured = errors.New("inference provider is not configured")

	// ErrUnavailable indicates the provider could not be reached at the
	// transport or HTTP level
	ErrUnavailable = errors.New("inference provider unavailable")
)

// productAnalysisPrompt is the shared instruction used by all LLM providers for
// guessing product details from a barcode or product code
const productAnalysisPrompt = `You are a product information assistant. Based on a barcode or product code, estimate product details.
Return a JSON object with: productName (string), category (string like "Dairy", "Meat", "Produce", "Beverages", "Snacks", etc.),
expiryDate (ISO date string YYYY-MM-DD, estimate based on typical shelf life), and confidenceScore (float 0-1).
If uncertain, use "Unknown Product" for productName and a generic category. Make realistic estimates for expiry dates based on product type.

Guess the product details based on this barcode/text: %s

Return ONLY valid JSON in this exact format: {"productName": "...", "category": "...", "expiryDate": "YYYY-MM-DD", "confidenceScore": 0.0}
Do not include any text before or after the JSON.
Do not use markdown code blocks.`

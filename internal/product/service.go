package product

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shelfscan/internal/inferring"
)

const (
	// confidenceThreshold is the fixed acceptance gate for AI results
	confidenceThreshold = 0.6

	// defaultShelfLifeDays is applied when a catalog entry carries no shelf
	// life and for escalated results
	defaultShelfLifeDays = 7

	unknownProductName = "Unknown Product"
	defaultCategory    = "General"
)

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service resolves product codes through the tiered cascade: AI inference,
// confidence validation, catalog lookup, manual-entry escalation
type Service struct {
	provider   inferring.Provider
	catalog    Catalog
	timeSource TimeSource
}

// NewService creates a new Service with the default time source
func NewService(provider inferring.Provider, catalog Catalog) *Service {
	return &Service{
		provider:   provider,
		catalog:    catalog,
		timeSource: &defaultTimeSource{},
	}
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(provider inferring.Provider, catalog Catalog, timeSrc TimeSource) *Service {
	return &Service{
		provider:   provider,
		catalog:    catalog,
		timeSource: timeSrc,
	}
}

// normalizeCode validates and trims a scan input down to the code to resolve
func normalizeCode(input ScanInput) (string, error) {
	code := strings.TrimSpace(input.Code)
	if code != "" {
		return code, nil
	}
	if strings.TrimSpace(input.ImageRef) != "" {
		// Image-based recognition is not implemented; without a code there is
		// nothing to resolve
		slog.Warn("Image analysis is not implemented, a code is required")
	}
	return "", ErrInputRequired
}

// trusted reports whether an AI result is reliable enough to return directly
func trusted(result *AnalysisResult) bool {
	return result.ConfidenceScore >= confidenceThreshold &&
		!strings.Contains(strings.ToLower(result.ProductName), "unknown")
}

// Resolve runs one pass of the cascade for a scan input. It always returns a
// well-formed AnalysisResult except for invalid input and provider
// configuration/transport failures.
func (s *Service) Resolve(input ScanInput) (*AnalysisResult, error) {
	code, err := normalizeCode(input)
	if err != nil {
		return nil, err
	}

	guess, err := s.provider.AnalyzeCode(code)
	if err != nil {
		return nil, fmt.Errorf("analyzing product code: %w", err)
	}

	result := &AnalysisResult{
		ProductName:     guess.ProductName,
		Category:        guess.Category,
		ExpiryDate:      guess.ExpiryDate,
		ConfidenceScore: inferring.ClampConfidence(guess.ConfidenceScore),
	}

	if trusted(result) {
		return result, nil
	}

	entry, err := s.catalog.Find(code)
	if err == nil {
		return s.fromCatalog(entry), nil
	}
	// A miss and an unreachable catalog degrade the same way; neither is
	// surfaced to the caller
	slog.Warn("Catalog lookup did not resolve code", "code", code, "error", err)

	return s.escalate(), nil
}

// fromCatalog converts a reference entry into an authoritative result
func (s *Service) fromCatalog(entry *CatalogEntry) *AnalysisResult {
	shelfLife := defaultShelfLifeDays
	if entry.ShelfLifeDays != nil {
		shelfLife = *entry.ShelfLifeDays
	}

	category := entry.Category
	if strings.TrimSpace(category) == "" {
		category = defaultCategory
	}

	return &AnalysisResult{
		ProductName:     entry.Name,
		Category:        category,
		ExpiryDate:      s.timeSource.Now().AddDate(0, 0, shelfLife).Format("2006-01-02"),
		ConfidenceScore: 1.0, // catalog matches are authoritative
	}
}

// escalate builds the terminal manual-entry result
func (s *Service) escalate() *AnalysisResult {
	return &AnalysisResult{
		ProductName:         unknownProductName,
		Category:            defaultCategory,
		ExpiryDate:          s.timeSource.Now().AddDate(0, 0, defaultShelfLifeDays).Format("2006-01-02"),
		ConfidenceScore:     0,
		ManualEntryRequired: true,
	}
}

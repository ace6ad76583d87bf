package inferring

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	unknownProductName = "Unknown Product"
	defaultCategory    = "General"

	// fallbackConfidence sits deliberately below the acceptance threshold so a
	// fallback guess always continues into the catalog tier
	fallbackConfidence = 0.3

	fallbackShelfLifeDays = 7
)

// FallbackGuess returns the default guess used when a model's output could not
// be parsed or the model produced nothing usable
func FallbackGuess(now time.Time) *ProductGuess {
	return &ProductGuess{
		ProductName:     unknownProductName,
		Category:        defaultCategory,
		ExpiryDate:      now.AddDate(0, 0, fallbackShelfLifeDays).Format("2006-01-02"),
		ConfidenceScore: fallbackConfidence,
	}
}

// parseProductJSON extracts and normalizes the JSON guess from raw model text
func parseProductJSON(text string) (*ProductGuess, error) {
	text = strings.TrimSpace(text)

	// Remove opening markdown code blocks
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSpace(text)

	// Find the JSON object boundaries - look for first { and last }
	startIdx := strings.Index(text, "{")
	if startIdx == -1 {
		return nil, fmt.Errorf("no JSON object found in response")
	}

	endIdx := strings.LastIndex(text, "}")
	if endIdx == -1 || endIdx < startIdx {
		return nil, fmt.Errorf("invalid JSON object in response")
	}

	text = text[startIdx : endIdx+1]

	var guess ProductGuess
	if err := json.Unmarshal([]byte(text), &guess); err != nil {
		return nil, fmt.Errorf("unmarshaling json: %w", err)
	}

	guess.ProductName = strings.TrimSpace(guess.ProductName)
	if guess.ProductName == "" {
		guess.ProductName = unknownProductName
	}

	guess.Category = strings.TrimSpace(guess.Category)
	if guess.Category == "" {
		guess.Category = defaultCategory
	}

	guess.ExpiryDate = normalizeDate(guess.ExpiryDate)
	guess.ConfidenceScore = ClampConfidence(guess.ConfidenceScore)

	return &guess, nil
}

// normalizeDate coerces a model-supplied date into YYYY-MM-DD, defaulting to a
// week out when the date is absent or unparseable
func normalizeDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Now().AddDate(0, 0, fallbackShelfLifeDays).Format("2006-01-02")
	}

	if d, err := time.Parse("2006-01-02", value); err == nil {
		return d.Format("2006-01-02")
	}

	// Try other common formats
	formats := []string{
		"2006/01/02",
		"01/02/2006",
		"02-01-2006",
	}
	for _, format := range formats {
		if d, err := time.Parse(format, value); err == nil {
			return d.Format("2006-01-02")
		}
	}

	return time.Now().AddDate(0, 0, fallbackShelfLifeDays).Format("2006-01-02")
}

// ClampConfidence forces a confidence score into [0, 1]
func ClampConfidence(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Package hitl decides whether a quote needs human-in-the-loop review before
// it is sent to the customer.
package hitl

import "strings"

// DefaultConfidenceThreshold is the average OCR confidence below which review is required.
const DefaultConfidenceThreshold = 80.0

// PageConfidence is the OCR confidence for one page, 0-100.
type PageConfidence struct {
	ConfidencePct float64 `json:"confidencePct" yaml:"confidencePct"`
}

// Decision records which rules fired.
type Decision struct {
	Required          bool    `json:"required"`
	LanguagePair      bool    `json:"languagePair"`
	LowConfidence     bool    `json:"lowConfidence"`
	AverageConfidence float64 `json:"averageConfidence"`
}

// LanguagePairRequiresHITL is true when neither side of the pair is English.
func LanguagePairRequiresHITL(sourceLang, targetLang string) bool {
	return !strings.EqualFold(sourceLang, "en") && !strings.EqualFold(targetLang, "en")
}

// AverageConfidence returns the mean page confidence, or 0 for no pages.
func AverageConfidence(pages []PageConfidence) float64 {
	if len(pages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range pages {
		sum += p.ConfidencePct
	}
	return sum / float64(len(pages))
}

// ConfidenceRequiresHITL is true when avg is strictly below threshold.
func ConfidenceRequiresHITL(avg, threshold float64) bool {
	return avg < threshold
}

// RequiresHITL combines the language-pair and confidence rules.
func RequiresHITL(sourceLang, targetLang string, pages []PageConfidence, threshold float64) bool {
	return Evaluate(sourceLang, targetLang, pages, threshold).Required
}

// Evaluate runs both rules and reports each outcome along with the average.
func Evaluate(sourceLang, targetLang string, pages []PageConfidence, threshold float64) Decision {
	avg := AverageConfidence(pages)
	d := Decision{
		LanguagePair:      LanguagePairRequiresHITL(sourceLang, targetLang),
		LowConfidence:     ConfidenceRequiresHITL(avg, threshold),
		AverageConfidence: avg,
	}
	d.Required = d.LanguagePair || d.LowConfidence
	return d
}

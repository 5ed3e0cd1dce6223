// Package sla turns a page count into a delivery commitment in business days.
package sla

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const baseDays = 2

// Rule maps a page range to either a fixed number of business days or a
// per-block increment. Pages is "a-b", "n+" or a single integer.
type Rule struct {
	Pages                      string `json:"pages" yaml:"pages" validate:"page_range"`
	BusinessDays               *int   `json:"businessDays,omitempty" yaml:"businessDays,omitempty" validate:"omitempty,min=0"`
	AdditionalDaysPerFourPages *int   `json:"additionalDaysPerFourPages,omitempty" yaml:"additionalDaysPerFourPages,omitempty" validate:"omitempty,min=0"`
}

// Settings is the ordered rule list; the first matching rule wins.
type Settings struct {
	Rules []Rule `json:"rules" yaml:"rules" validate:"required,min=1,dive"`
}

// DefaultSettings returns 2 days for 1-3 pages and one extra day per block of 4 pages after that.
func DefaultSettings() Settings {
	two, one := 2, 1
	return Settings{Rules: []Rule{
		{Pages: "1-3", BusinessDays: &two},
		{Pages: "4+", AdditionalDaysPerFourPages: &one},
	}}
}

// bounds parses a range expression. max < 0 means open ended.
func bounds(expr string) (lo, hi int, ok bool) {
	expr = strings.TrimSpace(expr)

	if a, b, found := strings.Cut(expr, "-"); found {
		lo, err := strconv.Atoi(strings.TrimSpace(a))
		if err != nil {
			return 0, 0, false
		}
		b = strings.TrimSpace(b)
		if b == "+" {
			return lo, -1, true
		}
		hi, err := strconv.Atoi(b)
		if err != nil {
			return 0, 0, false
		}
		return lo, hi, true
	}

	if rest, found := strings.CutSuffix(expr, "+"); found {
		lo, err := strconv.Atoi(strings.TrimSpace(rest))
		if err != nil {
			return 0, 0, false
		}
		return lo, -1, true
	}

	n, err := strconv.Atoi(expr)
	if err != nil {
		return 0, 0, false
	}
	return n, n, true
}

// ValidRange reports whether expr is a parseable page range.
func ValidRange(expr string) bool {
	_, _, ok := bounds(expr)
	return ok
}

// MatchesPageRange reports whether pageCount falls in the range expression.
// Malformed expressions never match.
func MatchesPageRange(pageCount int, expr string) bool {
	lo, hi, ok := bounds(expr)
	if !ok {
		return false
	}
	if hi < 0 {
		return pageCount >= lo
	}
	return pageCount >= lo && pageCount <= hi
}

// DeliveryDays returns the number of business days needed for pageCount pages.
func DeliveryDays(pageCount int, settings Settings) int {
	for _, rule := range settings.Rules {
		if !MatchesPageRange(pageCount, rule.Pages) {
			continue
		}
		if rule.BusinessDays != nil {
			return *rule.BusinessDays
		}
		if rule.AdditionalDaysPerFourPages != nil {
			extra := max(0, pageCount-3)
			return baseDays + blocksOfFour(extra)*(*rule.AdditionalDaysPerFourPages)
		}
		return baseDays
	}

	return baseDays + blocksOfFour(pageCount-3)
}

func blocksOfFour(pages int) int {
	return int(math.Ceil(float64(pages) / 4))
}

// Validate checks that every rule has a parseable range and exactly one day field.
func (s Settings) Validate() error {
	if len(s.Rules) == 0 {
		return errors.New("sla: at least one rule is required")
	}
	for i, rule := range s.Rules {
		if !ValidRange(rule.Pages) {
			return fmt.Errorf("sla: rule %d: invalid page range %q", i, rule.Pages)
		}
		if (rule.BusinessDays == nil) == (rule.AdditionalDaysPerFourPages == nil) {
			return fmt.Errorf("sla: rule %d: exactly one of businessDays or additionalDaysPerFourPages must be set", i)
		}
		if rule.BusinessDays != nil && *rule.BusinessDays < 0 {
			return fmt.Errorf("sla: rule %d: businessDays must not be negative", i)
		}
		if rule.AdditionalDaysPerFourPages != nil && *rule.AdditionalDaysPerFourPages < 0 {
			return fmt.Errorf("sla: rule %d: additionalDaysPerFourPages must not be negative", i)
		}
	}
	return nil
}

// ParseSettings decodes the stored SLA JSON and validates it.
func ParseSettings(data []byte) (Settings, error) {
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("sla: decode settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// JSON encodes the settings in the stored format.
func (s Settings) JSON() (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("sla: encode settings: %w", err)
	}
	return string(b), nil
}

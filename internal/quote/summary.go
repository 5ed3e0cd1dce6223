package quote

import (
	"context"
	"fmt"
	"strings"

	"github.com/Simplici0/quote.works/internal/money"
)

// Summary renders the billed snapshot of a quote as plain text. Nothing is recalculated.
func (s *Service) Summary(ctx context.Context, id string) (string, error) {
	q, err := s.CustomerQuote(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderSummary(q), nil
}

// StaffSummary renders the latest calculation, with the billed total and drift
// when they differ.
func (s *Service) StaffSummary(ctx context.Context, id string) (string, error) {
	q, err := s.store.GetQuote(ctx, id)
	if err != nil {
		return "", err
	}
	return RenderSummary(q), nil
}

// RenderSummary prints q.Breakdown. Use q.CustomerView() first for customer copies.
func RenderSummary(q Quote) string {
	b := q.Breakdown
	cur := q.Currency

	var sb strings.Builder
	title := q.Title
	if title == "" {
		title = "(untitled)"
	}
	fmt.Fprintf(&sb, "Quote %s: %s\n", q.ID, title)
	fmt.Fprintf(&sb, "Created: %s\n", q.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&sb, "Languages: %s -> %s (tier x%.2f)\n", q.SourceLang, q.TargetLang, b.TierMultiplier)
	if q.CustomerEmail != "" {
		fmt.Fprintf(&sb, "Customer: %s\n", q.CustomerEmail)
	}

	sb.WriteString("\nDocuments:\n")
	for _, it := range b.Items {
		name := it.DocumentType
		if name == "" {
			name = fmt.Sprintf("Document %d", it.Position)
		}
		fmt.Fprintf(&sb, "  %d. %s: %d pages, %d words, %.2f units x %s = %s\n",
			it.Position, name, it.PageCount, it.Words, it.Units, money.Format(it.Rate, ""), money.Format(it.Subtotal, cur))
		if it.CertificationName != "" {
			fmt.Fprintf(&sb, "     Certification (%s): %s\n", it.CertificationName, money.Format(it.CertificationCost, cur))
		}
	}

	sb.WriteString("\n")
	fmt.Fprintf(&sb, "Translation: %s\n", money.Format(b.TranslationSubtotal, cur))
	fmt.Fprintf(&sb, "Certification: %s\n", money.Format(b.CertificationTotal, cur))
	if q.Rush {
		fmt.Fprintf(&sb, "Rush (%.0f%%): %s\n", b.RushPct, money.Format(b.RushFee, cur))
	}
	if b.ShippingMethod != "" {
		fmt.Fprintf(&sb, "Shipping (%s): %s\n", b.ShippingMethod, money.Format(b.ShippingFee, cur))
	}
	fmt.Fprintf(&sb, "Subtotal: %s\n", money.Format(b.Tax.Subtotal, cur))
	fmt.Fprintf(&sb, "Tax (%s, %.2f%%): %s\n", b.Tax.Region, b.Tax.TaxRate, money.Format(b.Tax.TaxAmount, cur))
	fmt.Fprintf(&sb, "Total: %s\n", money.Format(b.GrandTotal, cur))
	if money.Cents(q.Drift) != 0 {
		fmt.Fprintf(&sb, "Billed total: %s (drift %s)\n", money.Format(q.Ledger.Billed.Total, cur), money.Format(money.Round(q.Drift), cur))
	}

	fmt.Fprintf(&sb, "\nDelivery: %d business days, due %s\n", b.DeliveryDays, b.DueDate)
	if b.HITL.Required {
		var reasons []string
		if b.HITL.LanguagePair {
			reasons = append(reasons, "non-English language pair")
		}
		if b.HITL.LowConfidence {
			reasons = append(reasons, fmt.Sprintf("OCR confidence %.1f%%", b.HITL.AverageConfidence))
		}
		fmt.Fprintf(&sb, "Review: required (%s)\n", strings.Join(reasons, ", "))
	} else {
		sb.WriteString("Review: not required\n")
	}

	return sb.String()
}

package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/quote.works/internal/hitl"
	"github.com/Simplici0/quote.works/internal/money"
	"github.com/Simplici0/quote.works/internal/pricing"
	"github.com/Simplici0/quote.works/internal/sla"
	"github.com/Simplici0/quote.works/internal/tax"
	"github.com/Simplici0/quote.works/internal/validate"
)

var (
	itemFile string

	subtotal    float64
	country     string
	province    string
	regionsFile string

	pageCount int
	rulesFile string
	fromDate  string

	sourceLang    string
	targetLang    string
	confidences   []float64
	hitlThreshold float64
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price one document from a YAML item file",
	Long: `Price one document. The item file holds pages, baseRate, tierMultiplier
and the optional certification and rounding fields. A missing tierMultiplier
or complexityMultiplier counts as 1.

  baseRate: 40
  tierMultiplier: 1.35
  certificationPriceCents: 5000
  pages:
    - words: 450
    - words: 120
      complexityMultiplier: 1.15`,
	Args: cobra.NoArgs,
	RunE: runPrice,
}

var taxCmd = &cobra.Command{
	Use:   "tax",
	Short: "Apply the regional sales tax to a subtotal",
	Args:  cobra.NoArgs,
	RunE:  runTax,
}

var slaCmd = &cobra.Command{
	Use:   "sla",
	Short: "Compute delivery business days and due date for a page count",
	Args:  cobra.NoArgs,
	RunE:  runSLA,
}

var hitlCmd = &cobra.Command{
	Use:   "hitl",
	Short: "Decide whether a quote needs human review",
	Args:  cobra.NoArgs,
	RunE:  runHITL,
}

func init() {
	priceCmd.Flags().StringVarP(&itemFile, "file", "f", "", "item YAML file")
	_ = priceCmd.MarkFlagRequired("file")

	taxCmd.Flags().Float64Var(&subtotal, "subtotal", 0, "pre-tax subtotal")
	taxCmd.Flags().StringVar(&country, "country", "CA", "ISO country code")
	taxCmd.Flags().StringVar(&province, "province", "", "province or state code")
	taxCmd.Flags().StringVar(&regionsFile, "regions", "", "YAML list of tax regions (default built-in table)")

	slaCmd.Flags().IntVar(&pageCount, "pages", 0, "total page count")
	slaCmd.Flags().StringVar(&rulesFile, "rules", "", "YAML SLA rules (default built-in rules)")
	slaCmd.Flags().StringVar(&fromDate, "from", "", "start date YYYY-MM-DD (default today, UTC)")
	_ = slaCmd.MarkFlagRequired("pages")

	hitlCmd.Flags().StringVar(&sourceLang, "source", "", "source language code")
	hitlCmd.Flags().StringVar(&targetLang, "target", "", "target language code")
	hitlCmd.Flags().Float64SliceVar(&confidences, "confidence", nil, "OCR confidence per page, 0-100")
	hitlCmd.Flags().Float64Var(&hitlThreshold, "threshold", hitl.DefaultConfidenceThreshold, "minimum average OCR confidence")
	_ = hitlCmd.MarkFlagRequired("source")
	_ = hitlCmd.MarkFlagRequired("target")
}

func runPrice(cmd *cobra.Command, _ []string) error {
	var in pricing.ItemInput
	if err := readYAML(itemFile, &in); err != nil {
		return err
	}
	if len(in.Pages) == 0 {
		return errors.New("item has no pages")
	}
	if err := validate.Struct(in); err != nil {
		return err
	}
	if in.TierMultiplier == 0 {
		in.TierMultiplier = 1
	}
	for i := range in.Pages {
		if in.Pages[i].ComplexityMultiplier == 0 {
			in.Pages[i].ComplexityMultiplier = 1
		}
	}
	logger.Debug("pricing item", zap.Int("pages", len(in.Pages)), zap.Float64("base_rate", in.BaseRate))

	res := pricing.PriceItem(in)
	res.Subtotal = money.Round(res.Subtotal)
	res.CertificationCost = money.Round(res.CertificationCost)
	res.Total = money.Round(res.Total)

	return printJSON(cmd.OutOrStdout(), struct {
		Result pricing.Result `json:"result"`
		Totals pricing.Totals `json:"totals"`
	}{res, pricing.ComputedTotals(in)})
}

func runTax(cmd *cobra.Command, _ []string) error {
	if subtotal < 0 {
		return errors.New("--subtotal must not be negative")
	}

	regions := tax.DefaultRegions()
	if regionsFile != "" {
		regions = nil
		if err := readYAML(regionsFile, &regions); err != nil {
			return err
		}
	}

	calc := tax.ForRegion(subtotal, strings.ToUpper(country), strings.ToUpper(province), regions)
	calc.TaxAmount = money.Round(calc.TaxAmount)
	calc.Total = money.Round(calc.Total)
	return printJSON(cmd.OutOrStdout(), calc)
}

func runSLA(cmd *cobra.Command, _ []string) error {
	if pageCount < 0 {
		return errors.New("--pages must not be negative")
	}

	settings := sla.DefaultSettings()
	if rulesFile != "" {
		settings = sla.Settings{}
		if err := readYAML(rulesFile, &settings); err != nil {
			return err
		}
		if err := validate.Struct(settings); err != nil {
			return fmt.Errorf("sla: %w", err)
		}
		if err := settings.Validate(); err != nil {
			return err
		}
	}

	from := time.Now().UTC()
	if fromDate != "" {
		t, err := time.Parse("2006-01-02", fromDate)
		if err != nil {
			return fmt.Errorf("--from: %w", err)
		}
		from = t
	}

	days := sla.DeliveryDays(pageCount, settings)
	return printJSON(cmd.OutOrStdout(), struct {
		Pages        int    `json:"pages"`
		BusinessDays int    `json:"businessDays"`
		DueDate      string `json:"dueDate"`
	}{pageCount, days, sla.DeliveryDate(from, days).Format("2006-01-02")})
}

func runHITL(cmd *cobra.Command, _ []string) error {
	pages := make([]hitl.PageConfidence, 0, len(confidences))
	for _, c := range confidences {
		if c < 0 || c > 100 {
			return fmt.Errorf("--confidence %v is outside 0-100", c)
		}
		pages = append(pages, hitl.PageConfidence{ConfidencePct: c})
	}
	return printJSON(cmd.OutOrStdout(), hitl.Evaluate(sourceLang, targetLang, pages, hitlThreshold))
}

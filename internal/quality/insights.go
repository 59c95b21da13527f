package quality

import (
	"context"
	"fmt"
	"log/slog"

	"carmarket/pkg/contracts/domain"
)

// Concentration thresholds that trigger market insights.
const (
	top3ConcentrationLimit = 60.0
	hhiConcentratedLimit   = 2500.0
)

// Insights evaluates the rule set over the scored datasets, the
// cleaning report and the market structure. Rules are independent; an
// empty slice means no threshold was breached.
func (r *Reporter) Insights(ctx context.Context, reports []domain.QualityReport, validation *domain.ValidationReport, concentration domain.MarketConcentration, shares []domain.MarketShareEntry) []domain.Insight {
	var insights []domain.Insight

	if concentration.Top3Percent > top3ConcentrationLimit {
		insights = append(insights, domain.Insight{
			Severity: domain.SeverityWarning,
			Category: "market",
			Message: fmt.Sprintf(
				"top 3 automakers hold %.1f%% of sales; consider diversification in downstream analyses",
				concentration.Top3Percent),
		})
	}
	if concentration.HHI > hhiConcentratedLimit {
		insights = append(insights, domain.Insight{
			Severity: domain.SeverityWarning,
			Category: "market",
			Message: fmt.Sprintf(
				"market is highly concentrated (HHI %.0f, threshold %.0f)",
				concentration.HHI, hhiConcentratedLimit),
		})
	}

	if validation != nil {
		switch {
		case validation.QualityScore < 50:
			insights = append(insights, domain.Insight{
				Severity: domain.SeverityCritical,
				Category: "catalog",
				Message: fmt.Sprintf(
					"catalog cleaning score is %.0f; source data needs manual review before analysis",
					validation.QualityScore),
			})
		case validation.QualityScore < 70:
			insights = append(insights, domain.Insight{
				Severity: domain.SeverityWarning,
				Category: "catalog",
				Message: fmt.Sprintf(
					"catalog cleaning score is %.0f; re-run cleaning after fixing the reported issues",
					validation.QualityScore),
			})
		}
	}

	for _, report := range reports {
		if report.Completeness < 80 {
			insights = append(insights, domain.Insight{
				Severity: domain.SeverityWarning,
				Category: report.Dataset,
				Message: fmt.Sprintf(
					"%s dataset is only %.0f%% complete; joins will degrade to nulls or zeros",
					report.Dataset, report.Completeness),
			})
		}
		if report.Uniqueness < 95 {
			insights = append(insights, domain.Insight{
				Severity: domain.SeverityWarning,
				Category: report.Dataset,
				Message: fmt.Sprintf(
					"%s dataset has duplicate identifiers (uniqueness %.0f%%)",
					report.Dataset, report.Uniqueness),
			})
		}
		if report.Accuracy < 90 {
			insights = append(insights, domain.Insight{
				Severity: domain.SeverityInfo,
				Category: report.Dataset,
				Message: fmt.Sprintf(
					"%s dataset carries a notable outlier share (accuracy %.0f%%); review before regression",
					report.Dataset, report.Accuracy),
			})
		}
		if report.Rating == "Critical" {
			insights = append(insights, domain.Insight{
				Severity: domain.SeverityCritical,
				Category: report.Dataset,
				Message:  fmt.Sprintf("%s dataset quality is critical (overall %.0f)", report.Dataset, report.Overall),
			})
		}
	}

	if len(shares) > 0 && shares[0].SharePercent > 50 {
		insights = append(insights, domain.Insight{
			Severity: domain.SeverityInfo,
			Category: "market",
			Message: fmt.Sprintf(
				"%s alone holds %.1f%% of sales", shares[0].Automaker, shares[0].SharePercent),
		})
	}

	r.logger.InfoContext(ctx, "insight evaluation complete", slog.Int("insights", len(insights)))
	return insights
}

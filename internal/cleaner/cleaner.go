package cleaner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"carmarket/pkg/contracts/domain"
)

// corrections maps known-bad automaker values (model names entered as
// automakers, group names, spelling variants) to the correct automaker.
var corrections = map[string]string{
	"Sebring":           "Chrysler",
	"PT Cruiser":        "Chrysler",
	"Town & Country":    "Chrysler",
	"300C":              "Chrysler",
	"Crossfire":         "Chrysler",
	"Mercedes":          "Mercedes-Benz",
	"BMW Group":         "BMW",
	"VW":                "Volkswagen",
	"VW Group":          "Volkswagen",
	"Audi AG":           "Audi",
	"Toyota Motor":      "Toyota",
	"Ford Motor":        "Ford",
	"General Motors":    "GM",
	"Chrysler Group":    "Chrysler",
	"Range Rover":       "Land Rover",
	"Jaguar Land Rover": "Jaguar",
}

// blocklist holds sentinel values that are never real automaker or
// model names. Matched after trimming and case-folding.
var blocklist = map[string]bool{
	"undefined":        true,
	"unknown":          true,
	"null":             true,
	"none":             true,
	"n/a":              true,
	"tbd":              true,
	"to be determined": true,
	"other":            true,
	"misc":             true,
	"miscellaneous":    true,
}

// suspiciousPatterns flag automaker names that look like leftover test
// fixtures. They are reported, not removed.
var suspiciousPatterns = []string{"test", "demo", "sample", "xxx", "zzz"}

// Cleaner corrects and filters the catalog's identity columns.
type Cleaner struct {
	logger *slog.Logger
}

// NewCleaner creates a catalog cleaner.
func NewCleaner(logger *slog.Logger) *Cleaner {
	return &Cleaner{logger: logger.With(slog.String("component", "cleaner"))}
}

// Clean normalizes whitespace, applies the correction table, removes
// blocklisted rows, and deduplicates composite keys. It is idempotent:
// cleaning already-cleaned data changes nothing. The returned report
// describes the surviving catalog.
func (c *Cleaner) Clean(ctx context.Context, entries []domain.CatalogEntry) ([]domain.CatalogEntry, *domain.ValidationReport) {
	var corrected, removed, duplicates int
	seen := make(map[domain.CompositeKey]bool, len(entries))
	cleaned := make([]domain.CatalogEntry, 0, len(entries))

	for _, entry := range entries {
		automaker := domain.NormalizeName(entry.Key.Automaker)
		genmodel := domain.NormalizeName(entry.Key.Genmodel)

		if fixed, ok := corrections[automaker]; ok {
			automaker = fixed
			corrected++
		}

		if blocked(automaker) || blocked(genmodel) {
			removed++
			continue
		}

		key := domain.CompositeKey{
			Automaker:  automaker,
			Genmodel:   genmodel,
			GenmodelID: strings.TrimSpace(entry.Key.GenmodelID),
		}
		if seen[key] {
			duplicates++
			continue
		}
		seen[key] = true
		cleaned = append(cleaned, domain.CatalogEntry{Key: key})
	}

	report := c.validate(cleaned, duplicates)

	c.logger.InfoContext(ctx, "catalog cleaned",
		slog.Int("input_rows", len(entries)),
		slog.Int("output_rows", len(cleaned)),
		slog.Int("corrected", corrected),
		slog.Int("removed", removed),
		slog.Int("duplicates", duplicates),
		slog.Float64("quality_score", report.QualityScore))

	return cleaned, report
}

// blocked reports whether a cleaned name is empty or a sentinel value.
func blocked(name string) bool {
	return name == "" || blocklist[strings.ToLower(name)]
}

// validate builds the validation report over a cleaned catalog.
func (c *Cleaner) validate(cleaned []domain.CatalogEntry, duplicates int) *domain.ValidationReport {
	var issues, recommendations []string

	var nulls int
	modelsPerMaker := make(map[string]int)
	for _, entry := range cleaned {
		if entry.Key.Automaker == "" {
			nulls++
		}
		modelsPerMaker[entry.Key.Automaker]++
	}
	if nulls > 0 {
		issues = append(issues, fmt.Sprintf("%d rows with null or blank automaker", nulls))
	}
	if duplicates > 0 {
		issues = append(issues, fmt.Sprintf("%d duplicate rows removed", duplicates))
	}

	for _, pattern := range suspiciousPatterns {
		var hits int
		for maker := range modelsPerMaker {
			if strings.Contains(strings.ToLower(maker), pattern) {
				hits++
			}
		}
		if hits > 0 {
			issues = append(issues, fmt.Sprintf("%d automaker names match suspicious pattern %q", hits, pattern))
		}
	}

	singles := make([]string, 0)
	for maker, count := range modelsPerMaker {
		if count == 1 {
			singles = append(singles, maker)
		}
	}
	sort.Strings(singles)
	for _, maker := range singles {
		recommendations = append(recommendations,
			fmt.Sprintf("automaker %q has only one model, verify it is not a misspelling", maker))
	}

	score := 100.0 - 10.0*float64(len(issues)) - 5.0*float64(len(recommendations))
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return &domain.ValidationReport{
		TotalRecords:     len(cleaned),
		UniqueAutomakers: len(modelsPerMaker),
		Issues:           issues,
		Recommendations:  recommendations,
		QualityScore:     score,
		QualityStatus:    scoreStatus(score),
	}
}

func scoreStatus(score float64) string {
	switch {
	case score >= 90:
		return "excellent"
	case score >= 70:
		return "good"
	case score >= 50:
		return "fair"
	default:
		return "poor"
	}
}

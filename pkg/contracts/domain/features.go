package domain

// PriceTier is a quantile-based price segment label. The tiers partition the
// catalog: every entry receives exactly one label, with Unknown reserved for
// models that have no price data.
type PriceTier string

const (
	TierBudget   PriceTier = "Budget"
	TierMidRange PriceTier = "Mid-Range"
	TierPremium  PriceTier = "Premium"
	TierLuxury   PriceTier = "Luxury"
	TierUnknown  PriceTier = "Unknown"
)

// PerformanceTier labels a model's total sales volume.
type PerformanceTier string

const (
	PerformanceLow       PerformanceTier = "Low"
	PerformanceMedium    PerformanceTier = "Medium"
	PerformanceHigh      PerformanceTier = "High"
	PerformanceExcellent PerformanceTier = "Excellent"
	PerformanceUnknown   PerformanceTier = "Unknown"
)

// TierAssignment attaches a price tier to one catalog entry.
type TierAssignment struct {
	Key  CompositeKey `json:"key"`
	Tier PriceTier    `json:"tier"`
}

// SegmentSales is the total sales volume attributed to one price tier.
type SegmentSales struct {
	Tier       PriceTier `json:"tier"`
	TotalSales float64   `json:"total_sales"`
	Models     int       `json:"models"`
}

// ElasticityPoint is one row of the experimental price-elasticity series.
// Elasticity is nil where the successive percent-change in price is zero
// (undefined ratio). The series is computed over merged row order, not over
// properly paired per-model deltas; treat it as exploratory.
type ElasticityPoint struct {
	Key        CompositeKey `json:"key"`
	Elasticity *float64     `json:"elasticity,omitempty"`
}

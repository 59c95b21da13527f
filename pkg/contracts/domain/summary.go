package domain

// PriceSummary aggregates all price observations for one model.
// Volatility is stddev/mean; nil when the mean is zero (undefined ratio).
type PriceSummary struct {
	Key        CompositeKey `json:"key"`
	Min        float64      `json:"min"`
	Max        float64      `json:"max"`
	Mean       float64      `json:"mean"`
	Median     float64      `json:"median"`
	StdDev     float64      `json:"std_dev"`
	Volatility *float64     `json:"volatility,omitempty"`
	Count      int          `json:"count"`
}

// PriceRow is one row of the catalog left-joined with price summaries.
// Summary is nil for catalog entries with no price observations: absence of
// price data means "unknown", never zero.
type PriceRow struct {
	Key     CompositeKey  `json:"key"`
	Summary *PriceSummary `json:"summary,omitempty"`
}

// SalesSummary aggregates all sales observations for one model. Unlike price,
// a catalog entry with no sales rows is represented by a zero-valued summary:
// absence of sales records means zero volume, not missing data.
type SalesSummary struct {
	Key           CompositeKey `json:"key"`
	Total         float64      `json:"total"`
	Mean          float64      `json:"mean"`
	Max           float64      `json:"max"`
	Min           float64      `json:"min"`
	StdDev        float64      `json:"std_dev"`
	YearsWithData int          `json:"years_with_data"`
	// Trend is the OLS slope of volume against year; 0 with fewer than
	// two observations.
	Trend float64 `json:"trend"`
}

// TrimSummary aggregates trim-level records for one model.
type TrimSummary struct {
	Key        CompositeKey `json:"key"`
	PriceMin   float64      `json:"price_min"`
	PriceMax   float64      `json:"price_max"`
	PriceMean  float64      `json:"price_mean"`
	Count      int          `json:"count"`
	YearMin    int          `json:"year_min"`
	YearMax    int          `json:"year_max"`
	CommonFuel string       `json:"common_fuel"`
	TrimCount  int          `json:"trim_count"`
}

// TrimRow is one row of the catalog left-joined with trim summaries;
// Summary is nil when the model has no trim records (price-style policy).
type TrimRow struct {
	Key     CompositeKey `json:"key"`
	Summary *TrimSummary `json:"summary,omitempty"`
}

// MarketShareEntry is one automaker's share of total catalog sales.
type MarketShareEntry struct {
	Automaker    string  `json:"automaker"`
	TotalSales   float64 `json:"total_sales"`
	SharePercent float64 `json:"share_percent"`
}

// MarketConcentration summarizes how concentrated the market is.
type MarketConcentration struct {
	// HHI is the Herfindahl-Hirschman index: the sum of squared share
	// percentages across all automakers.
	HHI                float64 `json:"hhi"`
	Top3Percent        float64 `json:"top3_percent"`
	Top5Percent        float64 `json:"top5_percent"`
	SignificantPlayers int     `json:"significant_players"`
}

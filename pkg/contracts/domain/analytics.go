package domain

// OutlierMethod selects the outlier detection algorithm.
type OutlierMethod string

const (
	OutlierIQR    OutlierMethod = "iqr"
	OutlierZScore OutlierMethod = "zscore"
)

// OutlierSet holds the models flagged as outliers for one numeric column.
type OutlierSet struct {
	Column string        `json:"column"`
	Method OutlierMethod `json:"method"`
	Keys   []CompositeKey `json:"keys"`
	// LowerBound/UpperBound are populated for the IQR method.
	LowerBound *float64 `json:"lower_bound,omitempty"`
	UpperBound *float64 `json:"upper_bound,omitempty"`
	// Threshold is populated for the z-score method.
	Threshold float64 `json:"threshold,omitempty"`
}

// ClusterAssignment attaches a k-means cluster to one model. Label is a fixed
// index-based lookup kept purely for presentation; it carries no guarantee
// about the actual centroid ordering.
type ClusterAssignment struct {
	Key     CompositeKey `json:"key"`
	Cluster int          `json:"cluster"`
	Label   string       `json:"label"`
}

// CorrelationMethod selects the correlation coefficient.
type CorrelationMethod string

const (
	CorrelationPearson  CorrelationMethod = "pearson"
	CorrelationSpearman CorrelationMethod = "spearman"
)

// CorrelationMatrix is a symmetric matrix over a configured feature set.
type CorrelationMatrix struct {
	Method   CorrelationMethod `json:"method"`
	Features []string          `json:"features"`
	Values   [][]float64       `json:"values"`
}

// CorrelationPair is one feature pair ranked by absolute Pearson magnitude.
type CorrelationPair struct {
	FeatureA       string  `json:"feature_a"`
	FeatureB       string  `json:"feature_b"`
	Pearson        float64 `json:"pearson"`
	Spearman       float64 `json:"spearman"`
	Interpretation string  `json:"interpretation"`
}

// TTestResult is an independent two-sample t-test between two groups.
type TTestResult struct {
	GroupA           string  `json:"group_a"`
	GroupB           string  `json:"group_b"`
	MeanA            float64 `json:"mean_a"`
	MeanB            float64 `json:"mean_b"`
	SampleA          int     `json:"sample_a"`
	SampleB          int     `json:"sample_b"`
	TStatistic       float64 `json:"t_statistic"`
	PValue           float64 `json:"p_value"`
	CohensD          float64 `json:"cohens_d"`
	EffectSize       string  `json:"effect_size"`
	Significant      bool    `json:"significant"`
	InsufficientData bool    `json:"insufficient_data"`
}

// GroupMean is the mean of one group in an ANOVA comparison.
type GroupMean struct {
	Group string  `json:"group"`
	Mean  float64 `json:"mean"`
	Size  int     `json:"size"`
}

// ANOVAResult is a one-way ANOVA across all price tiers.
type ANOVAResult struct {
	FStatistic       float64     `json:"f_statistic"`
	PValue           float64     `json:"p_value"`
	Groups           []GroupMean `json:"groups"`
	Significant      bool        `json:"significant"`
	InsufficientData bool        `json:"insufficient_data"`
}

// NormalityResult reports whether a metric is plausibly normally distributed,
// used to decide whether parametric tests are appropriate.
type NormalityResult struct {
	Metric           string  `json:"metric"`
	Statistic        float64 `json:"statistic"`
	PValue           float64 `json:"p_value"`
	Normal           bool    `json:"normal"`
	SampleSize       int     `json:"sample_size"`
	InsufficientData bool    `json:"insufficient_data"`
}

// RegressionPoint is one point of the fitted line with its 95% confidence
// band, for visualization consumers.
type RegressionPoint struct {
	X      float64 `json:"x"`
	Fitted float64 `json:"fitted"`
	Lower  float64 `json:"lower"`
	Upper  float64 `json:"upper"`
}

// RegressionResult is a simple OLS fit of total sales on mean price.
type RegressionResult struct {
	Slope            float64           `json:"slope"`
	Intercept        float64           `json:"intercept"`
	RSquared         float64           `json:"r_squared"`
	PValue           float64           `json:"p_value"`
	SampleSize       int               `json:"sample_size"`
	Band             []RegressionPoint `json:"band,omitempty"`
	InsufficientData bool              `json:"insufficient_data"`
}

package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"carmarket/pkg/contracts/domain"
)

// Outliers flags models whose column values fall outside the chosen
// method's bounds. Columns run independently, fanned out over a
// bounded worker group; they only read the shared table.
func (a *Analyzer) Outliers(ctx context.Context, table *FeatureTable, method domain.OutlierMethod, columns []string) ([]domain.OutlierSet, error) {
	if len(columns) == 0 {
		columns = DefaultOutlierColumns
	}

	results := make([]domain.OutlierSet, len(columns))
	g, _ := errgroup.WithContext(ctx)
	if a.cfg.Workers > 0 {
		g.SetLimit(a.cfg.Workers)
	}

	for i, column := range columns {
		i, column := i, column
		g.Go(func() error {
			set, err := a.outlierColumn(table, method, column)
			if err != nil {
				return err
			}
			results[i] = set
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.logger.InfoContext(ctx, "outlier detection complete",
		slog.String("method", string(method)), slog.Int("columns", len(columns)))
	return results, nil
}

func (a *Analyzer) outlierColumn(table *FeatureTable, method domain.OutlierMethod, column string) (domain.OutlierSet, error) {
	values, ok := table.Column(column)
	if !ok {
		return domain.OutlierSet{}, fmt.Errorf("unknown feature column %q", column)
	}

	switch method {
	case domain.OutlierIQR:
		return a.iqrOutliers(table, column, values), nil
	case domain.OutlierZScore:
		return a.zscoreOutliers(table, column, values), nil
	default:
		return domain.OutlierSet{}, fmt.Errorf("unknown outlier method %q", method)
	}
}

func (a *Analyzer) iqrOutliers(table *FeatureTable, column string, values []float64) domain.OutlierSet {
	set := domain.OutlierSet{Column: column, Method: domain.OutlierIQR}

	clean := dropNaN(values)
	if len(clean) == 0 {
		return set
	}
	sort.Float64s(clean)

	q1 := quantile(clean, 0.25)
	q3 := quantile(clean, 0.75)
	iqr := q3 - q1
	lower := q1 - a.cfg.IQRMultiplier*iqr
	upper := q3 + a.cfg.IQRMultiplier*iqr
	set.LowerBound = &lower
	set.UpperBound = &upper

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if v < lower || v > upper {
			set.Keys = append(set.Keys, table.Keys[i])
		}
	}
	return set
}

func (a *Analyzer) zscoreOutliers(table *FeatureTable, column string, values []float64) domain.OutlierSet {
	set := domain.OutlierSet{Column: column, Method: domain.OutlierZScore, Threshold: a.cfg.ZScoreThreshold}

	clean := dropNaN(values)
	if len(clean) < 2 {
		return set
	}
	mean := stat.Mean(clean, nil)
	stddev := stat.StdDev(clean, nil)
	if stddev == 0 {
		return set
	}

	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.Abs(v-mean)/stddev > a.cfg.ZScoreThreshold {
			set.Keys = append(set.Keys, table.Keys[i])
		}
	}
	return set
}

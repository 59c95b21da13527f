package analytics

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat"

	"carmarket/pkg/contracts/domain"
)

// clusterLabels is a fixed cluster-id to name lookup kept for
// presentation. It does not correspond to centroid ordering.
var clusterLabels = []string{
	"Budget Segment",
	"Volume Leader",
	"Premium Segment",
	"Balanced Segment",
	"Niche Segment",
}

// Clusters standardizes the chosen features and runs seeded k-means
// over the complete-case rows. Identical input and seed always produce
// identical assignments. Fewer than 2 usable features or fewer rows
// than clusters yield an empty result.
func (a *Analyzer) Clusters(ctx context.Context, table *FeatureTable, features []string) []domain.ClusterAssignment {
	if len(features) == 0 {
		features = DefaultClusterFeatures
	}

	columns := make([][]float64, 0, len(features))
	for _, name := range features {
		col, ok := table.Column(name)
		if !ok {
			continue
		}
		columns = append(columns, col)
	}
	if len(columns) < 2 {
		a.logger.WarnContext(ctx, "clustering skipped, not enough usable features",
			slog.Int("features", len(columns)))
		return nil
	}

	// complete cases only
	var rowIdx []int
	for i := 0; i < table.Len(); i++ {
		complete := true
		for _, col := range columns {
			if math.IsNaN(col[i]) {
				complete = false
				break
			}
		}
		if complete {
			rowIdx = append(rowIdx, i)
		}
	}

	k := a.cfg.ClusterCount
	if len(rowIdx) < k {
		a.logger.WarnContext(ctx, "clustering skipped, fewer rows than clusters",
			slog.Int("rows", len(rowIdx)), slog.Int("k", k))
		return nil
	}

	points := standardize(columns, rowIdx)
	assignments := kmeans(points, k, a.cfg.ClusterSeed, a.cfg.ClusterMaxIter)

	out := make([]domain.ClusterAssignment, len(rowIdx))
	for i, row := range rowIdx {
		cluster := assignments[i]
		out[i] = domain.ClusterAssignment{
			Key:     table.Keys[row],
			Cluster: cluster,
			Label:   clusterLabel(cluster),
		}
	}

	a.logger.InfoContext(ctx, "clustering complete",
		slog.Int("rows", len(out)), slog.Int("k", k))
	return out
}

func clusterLabel(cluster int) string {
	if cluster >= 0 && cluster < len(clusterLabels) {
		return clusterLabels[cluster]
	}
	return fmt.Sprintf("Segment %d", cluster)
}

// standardize builds the point matrix for the selected rows with each
// feature scaled to zero mean and unit variance. Zero-variance
// features contribute zeros.
func standardize(columns [][]float64, rowIdx []int) [][]float64 {
	type scale struct {
		mean, stddev float64
	}
	scales := make([]scale, len(columns))
	for c, col := range columns {
		sample := make([]float64, len(rowIdx))
		for i, row := range rowIdx {
			sample[i] = col[row]
		}
		scales[c] = scale{mean: stat.Mean(sample, nil)}
		if len(sample) > 1 {
			scales[c].stddev = stat.StdDev(sample, nil)
		}
	}

	points := make([][]float64, len(rowIdx))
	for i, row := range rowIdx {
		point := make([]float64, len(columns))
		for c, col := range columns {
			if scales[c].stddev > 0 {
				point[c] = (col[row] - scales[c].mean) / scales[c].stddev
			}
		}
		points[i] = point
	}
	return points
}

// kmeans is Lloyd's algorithm with seeded initialization: centroids
// start at k distinct points chosen by the seeded source, so runs are
// reproducible for identical input.
func kmeans(points [][]float64, k int, seed int64, maxIter int) []int {
	if maxIter <= 0 {
		maxIter = 100
	}

	rng := rand.New(rand.NewSource(seed))
	perm := rng.Perm(len(points))

	dims := len(points[0])
	centroids := make([][]float64, k)
	for i := 0; i < k; i++ {
		centroids[i] = append([]float64(nil), points[perm[i]]...)
	}

	assignments := make([]int, len(points))
	for iter := 0; iter < maxIter; iter++ {
		changed := false
		for i, p := range points {
			best := nearestCentroid(p, centroids)
			if best != assignments[i] {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		// recompute centroids; empty clusters keep their position
		sums := make([][]float64, k)
		counts := make([]int, k)
		for i := range sums {
			sums[i] = make([]float64, dims)
		}
		for i, p := range points {
			c := assignments[i]
			counts[c]++
			for d, v := range p {
				sums[c][d] += v
			}
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			for d := 0; d < dims; d++ {
				centroids[c][d] = sums[c][d] / float64(counts[c])
			}
		}
	}

	return assignments
}

func nearestCentroid(p []float64, centroids [][]float64) int {
	best := 0
	bestDist := math.MaxFloat64
	for c, centroid := range centroids {
		var dist float64
		for d, v := range p {
			diff := v - centroid[d]
			dist += diff * diff
		}
		if dist < bestDist {
			bestDist = dist
			best = c
		}
	}
	return best
}

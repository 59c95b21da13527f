package engine

import (
	"sync"
	"time"

	"carmarket/internal/analytics"
	"carmarket/pkg/contracts/domain"
)

// Snapshot is one immutable view of the cleaned and reconciled
// tables. Queries hold a snapshot reference for their whole lifetime,
// so a concurrent reload never mixes rows from two loads. Derived
// results are memoized per snapshot and die with it.
type Snapshot struct {
	ID       string
	Version  uint64
	LoadedAt time.Time

	Catalog        []domain.CatalogEntry
	PriceRows      []domain.PriceRow
	SalesSummaries []domain.SalesSummary
	TrimRows       []domain.TrimRow
	Tiers          []domain.TierAssignment
	Validation     *domain.ValidationReport
	Quality        []domain.QualityReport
	Warnings       []string

	features *analytics.FeatureTable

	memo sync.Map
}

// SnapshotInfo is the externally visible identity of a snapshot.
type SnapshotInfo struct {
	ID       string    `json:"id"`
	Version  uint64    `json:"version"`
	LoadedAt time.Time `json:"loaded_at"`
	Catalog  int       `json:"catalog_records"`
	Warnings []string  `json:"warnings,omitempty"`
}

// Info summarizes the snapshot for status responses.
func (s *Snapshot) Info() SnapshotInfo {
	return SnapshotInfo{
		ID:       s.ID,
		Version:  s.Version,
		LoadedAt: s.LoadedAt,
		Catalog:  len(s.Catalog),
		Warnings: s.Warnings,
	}
}

// cached returns the memoized value under key, computing and storing
// it on first use. Concurrent callers may compute twice; the first
// stored value wins, keeping all readers consistent.
func cached[T any](s *Snapshot, key string, compute func() T) T {
	if v, ok := s.memo.Load(key); ok {
		return v.(T)
	}
	v, _ := s.memo.LoadOrStore(key, compute())
	return v.(T)
}

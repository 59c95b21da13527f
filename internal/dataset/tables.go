package dataset

import (
	"carmarket/pkg/contracts/domain"
)

// MissingVolume marks a sales cell with no observation for that year.
// Real volumes are never negative.
const MissingVolume int32 = -1

// PriceRecord is one raw price observation as it appears in the price
// table. The composite key is resolved later against the catalog.
type PriceRecord struct {
	GenmodelID string
	Year       int
	Price      float64
}

// SalesRow is one raw row of the wide sales table. Volumes is aligned
// with SalesTable.Years.
type SalesRow struct {
	Automaker  string
	Genmodel   string
	GenmodelID string
	Volumes    []int32
}

// SalesTable holds the wide sales table before reshaping. Years lists
// the accepted year columns in ascending order.
type SalesTable struct {
	Years []int
	Rows  []SalesRow
}

// Tables bundles the raw sources of one load. Any source may be empty
// when its file is missing or unreadable.
type Tables struct {
	Catalog  []domain.CatalogEntry
	Prices   []PriceRecord
	Sales    *SalesTable
	Trims    []domain.TrimEntry
	Warnings []string
}

// internPool deduplicates repeated category strings such as automaker
// and model names.
type internPool map[string]string

func newInternPool() internPool {
	return make(internPool)
}

func (p internPool) intern(s string) string {
	if v, ok := p[s]; ok {
		return v
	}
	p[s] = s
	return s
}

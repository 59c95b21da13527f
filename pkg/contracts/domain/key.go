package domain

import (
	"fmt"
	"strings"
)

// CompositeKey uniquely identifies a model across the catalog, price, and
// sales tables. Genmodel_ID alone is not guaranteed unique across automakers,
// so all three fields participate in joins.
type CompositeKey struct {
	Automaker  string `json:"automaker"`
	Genmodel   string `json:"genmodel"`
	GenmodelID string `json:"genmodel_id"`
}

// String returns a stable pipe-delimited representation suitable for map keys.
func (k CompositeKey) String() string {
	return fmt.Sprintf("%s|%s|%s", k.Automaker, k.Genmodel, k.GenmodelID)
}

// IsZero reports whether the key carries no identifying information.
func (k CompositeKey) IsZero() bool {
	return k.Automaker == "" && k.Genmodel == "" && k.GenmodelID == ""
}

// Less provides a deterministic ordering for sorted output tables.
func (k CompositeKey) Less(other CompositeKey) bool {
	if k.Automaker != other.Automaker {
		return k.Automaker < other.Automaker
	}
	if k.Genmodel != other.Genmodel {
		return k.Genmodel < other.Genmodel
	}
	return k.GenmodelID < other.GenmodelID
}

// CatalogEntry is one row of the cleaned catalog (identity) table.
type CatalogEntry struct {
	Key CompositeKey `json:"key"`
}

// PriceObservation is one historical price record for a model.
type PriceObservation struct {
	Key   CompositeKey `json:"key"`
	Year  int          `json:"year"`
	Price float64      `json:"price"`
}

// SalesObservation is one (model, year) volume record, produced by reshaping
// the wide year-indexed sales table. Volume is held as int32 for memory
// efficiency; all statistics are computed in float64.
type SalesObservation struct {
	Key    CompositeKey `json:"key"`
	Year   int          `json:"year"`
	Volume int32        `json:"volume"`
}

// TrimEntry is one raw trim-level record. The trim table keys rows by
// Genmodel_ID only; the composite key is resolved against the catalog.
type TrimEntry struct {
	GenmodelID string  `json:"genmodel_id"`
	Trim       string  `json:"trim"`
	Year       int     `json:"year"`
	Price      float64 `json:"price"`
	FuelType   string  `json:"fuel_type"`
}

// NormalizeName trims leading/trailing whitespace and collapses internal
// whitespace runs to single spaces. Shared by the cleaner and key resolution.
func NormalizeName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

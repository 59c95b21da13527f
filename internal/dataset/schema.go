package dataset

import (
	"strconv"
	"strings"
)

// tableSchema describes the minimal expected shape of one source table.
// Synonyms map accepted alternative column names onto canonical ones.
type tableSchema struct {
	name     string
	required []string
	synonyms map[string]string
}

var (
	catalogSchema = tableSchema{
		name:     "catalog",
		required: []string{"Automaker", "Genmodel", "Genmodel_ID"},
		synonyms: map[string]string{
			"Maker":    "Automaker",
			"Model":    "Genmodel",
			"Model_ID": "Genmodel_ID",
		},
	}

	priceSchema = tableSchema{
		name:     "price",
		required: []string{"Genmodel_ID", "Year", "Entry_price"},
		synonyms: map[string]string{
			"Model_ID": "Genmodel_ID",
			"Price":    "Entry_price",
		},
	}

	salesSchema = tableSchema{
		name:     "sales",
		required: []string{"Genmodel_ID", "Genmodel"},
		synonyms: map[string]string{
			"Maker":    "Automaker",
			"Model":    "Genmodel",
			"Model_ID": "Genmodel_ID",
		},
	}

	trimSchema = tableSchema{
		name:     "trim",
		required: []string{"Genmodel_ID", "Trim", "Year", "Price"},
		synonyms: map[string]string{
			"Model_ID": "Genmodel_ID",
			"Fuel":     "Fuel_type",
		},
	}
)

// canonicalize rewrites a header into canonical column names. Matching
// is exact first, then case-insensitive against both canonical and
// synonym names.
func (s tableSchema) canonicalize(header []string) []string {
	canonical := make(map[string]string, len(s.required)+len(s.synonyms))
	for _, name := range s.required {
		canonical[strings.ToLower(name)] = name
	}
	for syn, name := range s.synonyms {
		canonical[strings.ToLower(syn)] = name
	}

	out := make([]string, len(header))
	for i, col := range header {
		col = strings.TrimSpace(col)
		if name, ok := s.synonyms[col]; ok {
			out[i] = name
			continue
		}
		if name, ok := canonical[strings.ToLower(col)]; ok {
			out[i] = name
			continue
		}
		out[i] = col
	}
	return out
}

// missingColumns returns the required columns absent from a
// canonicalized header.
func (s tableSchema) missingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, col := range header {
		present[col] = true
	}

	var missing []string
	for _, col := range s.required {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	return missing
}

// columnIndex maps canonical column names to their positions.
func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, col := range header {
		if _, seen := idx[col]; !seen {
			idx[col] = i
		}
	}
	return idx
}

// yearColumn reports whether a column label is a purely numeric year.
func yearColumn(label string) (int, bool) {
	label = strings.TrimSpace(label)
	if len(label) != 4 {
		return 0, false
	}
	year, err := strconv.Atoi(label)
	if err != nil {
		return 0, false
	}
	return year, true
}

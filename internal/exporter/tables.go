package exporter

import (
	"fmt"
	"strconv"

	"carmarket/pkg/contracts/domain"
)

// WritePriceSummaries emits the per-model price summary table.
// Models without price observations carry empty cells.
func (w *CSVWriter) WritePriceSummaries(name string, rows []domain.PriceRow) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		record := []string{row.Key.Automaker, row.Key.Genmodel, row.Key.GenmodelID}
		if row.Summary == nil {
			record = append(record, "", "", "", "", "", "", "")
		} else {
			s := row.Summary
			record = append(record,
				formatFloat(s.Min), formatFloat(s.Max), formatFloat(s.Mean),
				formatFloat(s.Median), formatFloat(s.StdDev),
				formatOptional(s.Volatility), strconv.Itoa(s.Count))
		}
		records = append(records, record)
	}

	return w.WriteCSV(name, WriteOptions{
		Headers: []string{
			"Automaker", "Genmodel", "Genmodel_ID",
			"Min_price", "Max_price", "Mean_price", "Median_price",
			"Stddev_price", "Volatility", "Count",
		},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteSalesSummaries emits the per-model sales summary table.
func (w *CSVWriter) WriteSalesSummaries(name string, summaries []domain.SalesSummary) error {
	records := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		records = append(records, []string{
			s.Key.Automaker, s.Key.Genmodel, s.Key.GenmodelID,
			formatFloat(s.Total), formatFloat(s.Mean),
			formatFloat(s.Min), formatFloat(s.Max),
			formatFloat(s.StdDev), formatFloat(s.Trend),
			strconv.Itoa(s.YearsWithData),
		})
	}

	return w.WriteCSV(name, WriteOptions{
		Headers: []string{
			"Automaker", "Genmodel", "Genmodel_ID",
			"Total_sales", "Mean_sales", "Min_sales", "Max_sales",
			"Stddev_sales", "Trend", "Years_with_data",
		},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteMarketShare emits the per-automaker share table, largest
// first.
func (w *CSVWriter) WriteMarketShare(name string, shares []domain.MarketShareEntry) error {
	records := make([][]string, 0, len(shares))
	for _, s := range shares {
		records = append(records, []string{
			s.Automaker, formatFloat(s.TotalSales), formatFloat(s.SharePercent),
		})
	}

	return w.WriteCSV(name, WriteOptions{
		Headers:   []string{"Automaker", "Total_sales", "Share_percent"},
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteClusters emits the k-means segment of every clustered model.
func (w *CSVWriter) WriteClusters(name string, clusters []domain.ClusterAssignment) error {
	records := make([][]string, 0, len(clusters))
	for _, c := range clusters {
		records = append(records, []string{
			c.Key.Automaker, c.Key.Genmodel, c.Key.GenmodelID,
			strconv.Itoa(c.Cluster), c.Label,
		})
	}

	return w.WriteCSV(name, WriteOptions{
		Headers:   []string{"Automaker", "Genmodel", "Genmodel_ID", "Cluster", "Label"},
		Records:   records,
		BOMPrefix: true,
	})
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.4f", *v)
}

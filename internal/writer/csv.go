package writer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/deanshub/fintrack/internal/models"
)

// CSVWriter exports ledger transactions to CSV.
type CSVWriter struct {
	// IncludeHeader controls whether the column header row is written.
	IncludeHeader bool
}

// WriteToFile writes the transactions to a CSV file at the given path.
func (w *CSVWriter) WriteToFile(path string, txs []models.Transaction, categories []models.Category) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file %q: %w", path, err)
	}
	defer f.Close()

	return w.Write(f, txs, categories)
}

// Write writes the transactions in CSV format to the given writer.
// Category ids are resolved to names; unresolved ids are written as-is.
func (w *CSVWriter) Write(out io.Writer, txs []models.Transaction, categories []models.Category) error {
	names := make(map[string]string, len(categories))
	for _, c := range categories {
		names[c.ID] = c.Name
	}

	writer := csv.NewWriter(out)
	defer writer.Flush()

	if w.IncludeHeader {
		if err := writer.Write([]string{"Date", "Description", "Source", "Type", "Amount", "Category"}); err != nil {
			return fmt.Errorf("failed to write CSV header: %w", err)
		}
	}

	for _, tx := range txs {
		category := ""
		if tx.CategoryID != nil {
			category = *tx.CategoryID
			if name, ok := names[category]; ok {
				category = name
			}
		}
		row := []string{
			tx.Date,
			tx.Description,
			tx.Source,
			string(tx.Type),
			FormatAmount(tx.Amount),
			category,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	return writer.Error()
}

// FormatAmount renders integer agorot as a decimal string (12345 ->
// "123.45").
func FormatAmount(agorot int64) string {
	sign := ""
	if agorot < 0 {
		sign = "-"
		agorot = -agorot
	}
	return fmt.Sprintf("%s%d.%02d", sign, agorot/100, agorot%100)
}

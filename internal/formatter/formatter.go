// package formatter exports purchase history to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/jhpark-dev/lottoctl/internal/models"
)

const timeLayout = "2006-01-02 15:04"

// ExportToCSV converts purchase records to CSV format with columns: Date, Run, Game, Mode, Source, Numbers, Cost, Result, Error
func ExportToCSV(records []*models.PurchaseRecord) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Date", "Run", "Game", "Mode", "Source", "Numbers", "Cost", "Result", "Error"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range records {
		row := []string{
			rec.CreatedAt().Format(timeLayout),
			rec.RunID(),
			strconv.Itoa(rec.GameIndex() + 1),
			rec.Mode(),
			rec.Source(),
			rec.NumbersString(),
			strconv.Itoa(rec.Cost()),
			resultString(rec),
			rec.Error(),
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts purchase records to a Markdown table with a summary header
func ExportToMarkdown(records []*models.PurchaseRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Purchase History\n\n")

	bought, spent := summarize(records)
	buf.WriteString(fmt.Sprintf("**Records**: %d\n", len(records)))
	buf.WriteString(fmt.Sprintf("**Bought**: %d\n", bought))
	buf.WriteString(fmt.Sprintf("**Spent**: %d won\n\n", spent))

	buf.WriteString("| Date | Game | Mode | Numbers | Result |\n")
	buf.WriteString("| --- | --- | --- | --- | --- |\n")
	for _, rec := range records {
		numbers := rec.NumbersString()
		if numbers == "" {
			numbers = "site pick"
		}
		buf.WriteString(fmt.Sprintf("| %s | %d | %s | %s | %s |\n",
			rec.CreatedAt().Format(timeLayout),
			rec.GameIndex()+1,
			rec.Mode(),
			numbers,
			resultString(rec),
		))
	}

	return buf.Bytes(), nil
}

// ExportToText converts purchase records to plain text format
func ExportToText(records []*models.PurchaseRecord) ([]byte, error) {
	var buf bytes.Buffer

	bought, spent := summarize(records)
	buf.WriteString(fmt.Sprintf("Purchases: %d (%d bought, %d won spent)\n\n", len(records), bought, spent))

	for i, rec := range records {
		numbers := rec.NumbersString()
		if numbers == "" {
			numbers = "site pick"
		}
		buf.WriteString(fmt.Sprintf("%d. %s  game %d  %s  [%s]  %s\n",
			i+1,
			rec.CreatedAt().Format(timeLayout),
			rec.GameIndex()+1,
			rec.Mode(),
			numbers,
			resultString(rec),
		))
		if rec.Error() != "" {
			buf.WriteString(fmt.Sprintf("   error: %s\n", rec.Error()))
		}
	}

	return buf.Bytes(), nil
}

// WriteExport writes the history in the named format ("csv", "markdown",
// "text") to path and returns the path written.
func WriteExport(records []*models.PurchaseRecord, format, path string) (string, error) {
	var (
		data []byte
		err  error
	)

	switch format {
	case "csv":
		data, err = ExportToCSV(records)
		if path == "" {
			path = "purchases.csv"
		}
	case "markdown", "md":
		data, err = ExportToMarkdown(records)
		if path == "" {
			path = "purchases.md"
		}
	case "text", "txt":
		data, err = ExportToText(records)
		if path == "" {
			path = "purchases.txt"
		}
	default:
		return "", fmt.Errorf("unknown export format %q", format)
	}
	if err != nil {
		return "", fmt.Errorf("failed to generate %s export: %w", format, err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}

	return path, nil
}

func resultString(rec *models.PurchaseRecord) string {
	if rec.Succeeded() {
		return "bought"
	}
	return "failed"
}

func summarize(records []*models.PurchaseRecord) (bought, spent int) {
	for _, rec := range records {
		if rec.Succeeded() {
			bought++
			spent += rec.Cost()
		}
	}
	return bought, spent
}

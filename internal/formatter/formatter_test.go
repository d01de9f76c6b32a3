package formatter

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jhpark-dev/lottoctl/internal/models"
)

func testRecords(t *testing.T) []*models.PurchaseRecord {
	t.Helper()

	ts := time.Date(2025, 7, 3, 21, 5, 0, 0, time.UTC)

	bought := models.NewPurchaseRecord("run-1", 0, "manual", "random", []int{1, 9, 17, 25, 33, 41}, 1000)
	bought.SetSucceeded(true)
	bought.SetCreatedAt(ts)

	failed := models.NewPurchaseRecord("run-1", 1, "auto", "", nil, 0)
	failed.SetError("buy button not found")
	failed.SetCreatedAt(ts)

	return []*models.PurchaseRecord{bought, failed}
}

func TestExportToCSV(t *testing.T) {
	data, err := ExportToCSV(testRecords(t))
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("invalid CSV output: %v", err)
	}

	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "Date" || rows[0][7] != "Result" {
		t.Errorf("unexpected header: %v", rows[0])
	}
	if rows[1][5] != "1,9,17,25,33,41" || rows[1][7] != "bought" {
		t.Errorf("unexpected first row: %v", rows[1])
	}
	if rows[2][7] != "failed" || rows[2][8] != "buy button not found" {
		t.Errorf("unexpected second row: %v", rows[2])
	}
}

func TestExportToMarkdown(t *testing.T) {
	data, err := ExportToMarkdown(testRecords(t))
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		"# Purchase History",
		"**Bought**: 1",
		"**Spent**: 1000 won",
		"| 2025-07-03 21:05 | 1 | manual | 1,9,17,25,33,41 | bought |",
		"site pick",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q:\n%s", want, out)
		}
	}
}

func TestExportToText(t *testing.T) {
	data, err := ExportToText(testRecords(t))
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	out := string(data)

	if !strings.Contains(out, "Purchases: 2 (1 bought, 1000 won spent)") {
		t.Errorf("missing summary line:\n%s", out)
	}
	if !strings.Contains(out, "error: buy button not found") {
		t.Errorf("missing error detail:\n%s", out)
	}
}

func TestWriteExport(t *testing.T) {
	records := testRecords(t)

	t.Run("writes each format", func(t *testing.T) {
		dir := t.TempDir()
		for _, format := range []string{"csv", "markdown", "text"} {
			path, err := WriteExport(records, format, filepath.Join(dir, "out_"+format))
			if err != nil {
				t.Fatalf("%s export failed: %v", format, err)
			}
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read %s export: %v", format, err)
			}
			if len(data) == 0 {
				t.Errorf("%s export is empty", format)
			}
		}
	})

	t.Run("rejects unknown formats", func(t *testing.T) {
		if _, err := WriteExport(records, "xml", ""); err == nil {
			t.Error("expected an error for an unknown format")
		}
	})
}

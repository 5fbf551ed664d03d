package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

func sample() []core.Expense {
	return []core.Expense{
		{ID: "1", Amount: 12.5, Category: core.CategoryFood, Description: "Lunch", Date: "2024-03-15T08:00:00Z"},
		{ID: "2", Amount: 30, Category: core.CategoryTransport, Description: "Taxi", Date: "2024-03-14T20:00:00Z"},
		{ID: "3", Amount: 7.25, Category: core.CategoryFood, Description: "Coffee", Date: "2024-03-16T09:00:00Z"},
	}
}

func TestSortExpenses(t *testing.T) {
	in := sample()

	byDateDesc := SortExpenses(in, SortByDate, Descending)
	if byDateDesc[0].ID != "3" || byDateDesc[2].ID != "2" {
		t.Fatalf("unexpected date desc order: %+v", byDateDesc)
	}

	byAmountAsc := SortExpenses(in, SortByAmount, Ascending)
	if byAmountAsc[0].ID != "3" || byAmountAsc[2].ID != "2" {
		t.Fatalf("unexpected amount asc order: %+v", byAmountAsc)
	}

	// Input untouched.
	if in[0].ID != "1" {
		t.Fatalf("input mutated: %+v", in)
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("csv"); err != nil {
		t.Fatalf("csv: %v", err)
	}
	if _, err := ParseFormat("xlsx"); err != nil {
		t.Fatalf("xlsx: %v", err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected error for unsupported format")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header and 3 rows, got %d lines", len(lines))
	}
	if lines[0] != "Date,Description,Category,Amount" {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	if lines[1] != "2024-03-15,Lunch,Food,12.5" {
		t.Fatalf("unexpected first row: %q", lines[1])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("write: %v", err)
	}
	if strings.TrimSpace(buf.String()) != "Date,Description,Category,Amount" {
		t.Fatalf("expected header only, got %q", buf.String())
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sample()); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue(SheetName, "A1"); got != "Date" {
		t.Fatalf("unexpected A1: %q", got)
	}
	if got, _ := f.GetCellValue(SheetName, "B2"); got != "Lunch" {
		t.Fatalf("unexpected B2: %q", got)
	}
	if got, _ := f.GetCellValue(SheetName, "D2"); got != "12.5" {
		t.Fatalf("unexpected D2: %q", got)
	}
	if got, _ := f.GetCellValue(SheetName, "C4"); got != "Food" {
		t.Fatalf("unexpected C4: %q", got)
	}
}

// Package export renders an expense collection as a downloadable tabular
// file. The layout is four columns: Date (calendar day), Description,
// Category and Amount (raw numeric, no currency formatting).
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/xuri/excelize/v2"

	"fintrack/internal/core"
)

// Format selects the output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// SortKey selects the field the exported rows are ordered by.
type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByDescription SortKey = "description"
	SortByCategory    SortKey = "category"
	SortByAmount      SortKey = "amount"
)

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SheetName is the workbook sheet holding the exported rows.
const SheetName = "Expenses"

var headers = []string{"Date", "Description", "Category", "Amount"}

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatCSV, FormatXLSX:
		return Format(s), nil
	default:
		return "", fmt.Errorf("unsupported export format: %q", s)
	}
}

// SortExpenses returns a sorted copy of the collection. The input is never
// mutated. Unknown keys fall back to date; records compare equal under the
// key keep their input order.
func SortExpenses(expenses []core.Expense, key SortKey, dir Direction) []core.Expense {
	out := append([]core.Expense(nil), expenses...)
	less := lessFunc(key)
	sort.SliceStable(out, func(i, j int) bool {
		if dir == Descending {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})
	return out
}

func lessFunc(key SortKey) func(a, b core.Expense) bool {
	switch key {
	case SortByDescription:
		return func(a, b core.Expense) bool { return a.Description < b.Description }
	case SortByCategory:
		return func(a, b core.Expense) bool { return a.Category < b.Category }
	case SortByAmount:
		return func(a, b core.Expense) bool { return a.Amount < b.Amount }
	default:
		return func(a, b core.Expense) bool { return a.Date < b.Date }
	}
}

// Write renders the collection in the given format.
func Write(w io.Writer, expenses []core.Expense, format Format) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, expenses)
	default:
		return WriteCSV(w, expenses)
	}
}

// WriteCSV writes the collection as comma-separated rows with a header line.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	csvWriter := csv.NewWriter(w)

	if err := csvWriter.Write(headers); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, e := range expenses {
		if err := csvWriter.Write([]string{
			core.DayKey(e.Date),
			e.Description,
			string(e.Category),
			strconv.FormatFloat(e.Amount, 'f', -1, 64),
		}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	csvWriter.Flush()
	if err := csvWriter.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// WriteXLSX writes the collection as a single-sheet spreadsheet workbook.
// Amounts are stored as numeric cells so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, expenses []core.Expense) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("write header %q: %w", h, err)
		}
	}

	for i, e := range expenses {
		row := i + 2
		values := []any{
			core.DayKey(e.Date),
			e.Description,
			string(e.Category),
			e.Amount,
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("row cell: %w", err)
			}
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Package importer loads catalog records from spreadsheets.
package importer

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/imrishuroy/go-catalogflow/internal/records"
)

// ErrNoTitleColumn is returned when the header row has no title column.
var ErrNoTitleColumn = errors.New("header row has no title column")

var knownColumns = []string{"title", "category", "date", "price", "description", "stock", "rating"}

// ParseRecords reads the first sheet of an xlsx workbook. The first row is
// the header; its cells name the columns in any order. Ids are left zero so
// the store assigns them.
func ParseRecords(r io.Reader) ([]records.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}

	cols := mapColumns(rows[0])
	if _, ok := cols["title"]; !ok {
		return nil, ErrNoTitleColumn
	}

	out := make([]records.Record, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if isBlank(row) {
			continue
		}
		rec, err := parseRow(row, cols)
		if err != nil {
			// +2: one for the header, one for 1-based sheet rows.
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func mapColumns(header []string) map[string]int {
	cols := make(map[string]int, len(knownColumns))
	for i, cell := range header {
		name := strings.ToLower(strings.TrimSpace(cell))
		for _, known := range knownColumns {
			if name == known {
				if _, dup := cols[name]; !dup {
					cols[name] = i
				}
			}
		}
	}
	return cols
}

func parseRow(row []string, cols map[string]int) (records.Record, error) {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	rec := records.Record{
		Title:       cell("title"),
		Category:    cell("category"),
		Date:        cell("date"),
		Description: cell("description"),
	}

	if v := cell("price"); v != "" {
		p, err := strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
		if err != nil {
			return rec, fmt.Errorf("price %q is not a number", v)
		}
		rec.Price = p
	}
	for _, f := range []struct {
		name string
		dst  *int
	}{{"stock", &rec.Stock}, {"rating", &rec.Rating}} {
		v := cell(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return rec, fmt.Errorf("%s %q is not an integer", f.name, v)
		}
		*f.dst = n
	}
	return rec, nil
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

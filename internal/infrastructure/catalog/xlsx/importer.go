// Package xlsx reads the published dangerous-goods catalog workbook
// into substance records.
package xlsx

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/hazref/hazsearch/internal/core/domain"
)

// Column layout of the catalog sheet. The first row is a header.
const (
	colUNNumber = iota
	colName
	colNameEN
	colHazardClass
	colSecondaryHazard
	colPackingGroup
	colSpecialProvisions
	colLimitedQuantity
	colExceptedQuantity
	colPackingInstruction
)

// ImportReport summarizes one workbook pass.
type ImportReport struct {
	Parsed  int
	Skipped int
}

// ReadCatalog parses the first sheet of the workbook at path. Rows
// without a numeric UN number are counted as skipped, not fatal.
func ReadCatalog(path string) ([]domain.SubstanceRecord, ImportReport, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, ImportReport{}, fmt.Errorf("open catalog workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, ImportReport{}, fmt.Errorf("catalog workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ImportReport{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) < 2 {
		return nil, ImportReport{}, fmt.Errorf("sheet %q has no data rows", sheet)
	}

	now := time.Now().UTC()
	report := ImportReport{}
	records := make([]domain.SubstanceRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		unNumber, ok := parseUNCell(cell(row, colUNNumber))
		if !ok {
			report.Skipped++
			continue
		}
		records = append(records, domain.SubstanceRecord{
			UNNumber:           unNumber,
			Name:               cell(row, colName),
			NameEN:             cell(row, colNameEN),
			HazardClass:        cell(row, colHazardClass),
			SecondaryHazard:    cell(row, colSecondaryHazard),
			PackingGroup:       cell(row, colPackingGroup),
			SpecialProvisions:  cell(row, colSpecialProvisions),
			LimitedQuantity:    cell(row, colLimitedQuantity),
			ExceptedQuantity:   cell(row, colExceptedQuantity),
			PackingInstruction: cell(row, colPackingInstruction),
			CreatedAt:          now,
			UpdatedAt:          now,
		})
		report.Parsed++
	}
	if report.Parsed == 0 {
		return nil, report, fmt.Errorf("sheet %q yielded no usable rows", sheet)
	}
	return records, report, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseUNCell(raw string) (int, bool) {
	raw = strings.TrimSpace(strings.TrimPrefix(strings.ToUpper(raw), "UN"))
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > 9999 {
		return 0, false
	}
	return n, true
}

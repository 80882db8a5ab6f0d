// Package export renders a year's settlement report as an xlsx workbook.
package export

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"

	"github.com/ellinstar/offering-app/internal/core"
)

// SettlementWorkbook renders one sheet per report dimension for the given
// year: settlement weeks first, then persons and categories.
func SettlementWorkbook(records []core.ContributionRecord, year int) ([]byte, error) {
	xlsx := excelize.NewFile()

	_ = xlsx.SetAppProps(&excelize.AppProperties{
		Application: "offering-app",
		DocSecurity: 2,
	})

	weeks := xlsx.GetSheetName(xlsx.GetActiveSheetIndex())
	writeWeekSheet(xlsx, weeks, records, year)
	_ = xlsx.SetSheetName(weeks, "Weeks")

	for _, s := range []struct {
		name string
		dim  core.Dimension
	}{
		{"Persons", core.ByPerson},
		{"Types", core.ByType},
	} {
		if _, err := xlsx.NewSheet(s.name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		writeSummarySheet(xlsx, s.name, records, s.dim, year)
	}

	xlsx.SetActiveSheet(0)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeWeekSheet(xlsx *excelize.File, sheet string, records []core.ContributionRecord, year int) {
	_ = xlsx.SetColWidth(sheet, "A", "B", 14)
	_ = xlsx.SetColWidth(sheet, "C", "C", 14)
	_ = xlsx.SetColWidth(sheet, "D", "D", 60)

	writeHeader(xlsx, sheet, "Week Start", "Week End", "Total", "Breakdown")

	row := 2
	var total int64
	for _, sr := range core.Summarize(records, core.ByWeek, year, "") {
		start, end, err := core.SettlementRange(sr.Key)
		if err != nil {
			// Week keys come from SettlementKey and are always parseable.
			start, end = sr.Key, sr.Key
		}
		_ = xlsx.SetCellValue(sheet, cell('A', row), start)
		_ = xlsx.SetCellValue(sheet, cell('B', row), end)
		_ = xlsx.SetCellValue(sheet, cell('C', row), sr.Total)
		_ = xlsx.SetCellValue(sheet, cell('D', row), sr.Breakdown)
		styleAmount(xlsx, sheet, 'C', row)
		total += sr.Total
		row++
	}

	writeTotal(xlsx, sheet, row, 'C', total)
}

func writeSummarySheet(xlsx *excelize.File, sheet string, records []core.ContributionRecord, dim core.Dimension, year int) {
	_ = xlsx.SetColWidth(sheet, "A", "A", 24)
	_ = xlsx.SetColWidth(sheet, "B", "B", 14)
	_ = xlsx.SetColWidth(sheet, "C", "C", 60)

	writeHeader(xlsx, sheet, "Name", "Total", "Breakdown")

	row := 2
	var total int64
	for _, sr := range core.Summarize(records, dim, year, "") {
		_ = xlsx.SetCellValue(sheet, cell('A', row), sr.Key)
		_ = xlsx.SetCellValue(sheet, cell('B', row), sr.Total)
		_ = xlsx.SetCellValue(sheet, cell('C', row), sr.Breakdown)
		styleAmount(xlsx, sheet, 'B', row)
		total += sr.Total
		row++
	}

	writeTotal(xlsx, sheet, row, 'B', total)
}

func writeHeader(xlsx *excelize.File, sheet string, titles ...string) {
	col := 'A'
	for _, title := range titles {
		_ = xlsx.SetCellValue(sheet, cell(col, 1), title)
		col++
	}
	style, _ := xlsx.NewStyle(mergeStyles(fontBold(), thinBorder("bottom")))
	_ = xlsx.SetCellStyle(sheet, cell('A', 1), cell(col-1, 1), style)
}

func writeTotal(xlsx *excelize.File, sheet string, row int, col rune, total int64) {
	_ = xlsx.SetCellValue(sheet, cell('A', row), "Total")
	_ = xlsx.SetCellValue(sheet, cell(col, row), total)
	style, _ := xlsx.NewStyle(mergeStyles(fontBold(), numberFormat(), thickBorder("top")))
	_ = xlsx.SetCellStyle(sheet, cell('A', row), cell('D', row), style)
}

func styleAmount(xlsx *excelize.File, sheet string, col rune, row int) {
	style, _ := xlsx.NewStyle(mergeStyles(numberFormat(), textAlignment("right")))
	_ = xlsx.SetCellStyle(sheet, cell(col, row), cell(col, row), style)
}

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

func numberFormat() *excelize.Style {
	fmt := "#,##0"
	return &excelize.Style{
		CustomNumFmt: &fmt,
	}
}

func textAlignment(a string) *excelize.Style {
	return &excelize.Style{
		Alignment: &excelize.Alignment{
			Horizontal: a,
		},
	}
}

func thinBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: 1,
		})
	}
	return s
}

func thickBorder(where ...string) *excelize.Style {
	s := &excelize.Style{}
	for _, w := range where {
		s.Border = append(s.Border, excelize.Border{
			Type:  w,
			Color: "#000000",
			Style: 2,
		})
	}
	return s
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}

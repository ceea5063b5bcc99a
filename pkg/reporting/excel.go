package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/ducminhle1904/regime-stream/internal/regime"
)

// DefaultExcelReporter writes the regime indicator frame to a workbook.
type DefaultExcelReporter struct{}

// NewDefaultExcelReporter creates a new Excel reporter.
func NewDefaultExcelReporter() *DefaultExcelReporter {
	return &DefaultExcelReporter{}
}

var indicatorHeader = []string{
	"Time", "Reg State", "P0", "P1", "Confidence",
	"Open", "Close", "Window ID", "Age",
	"TMV", "TLen", "R", "DC Event",
}

// WriteIndicatorXLSX writes the indicator frame to a single-sheet
// workbook with a styled header row, matching the teacher's dark-header,
// bordered-data-row convention.
func (r *DefaultExcelReporter) WriteIndicatorXLSX(rows []regime.IndicatorRow, path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	fx := excelize.NewFile()
	defer fx.Close()

	const sheet = "Regime Indicator"
	fx.SetSheetName(fx.GetSheetName(0), sheet)

	headerStyle, err := fx.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11, Color: "FFFFFF", Family: "Calibri"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"2F4F4F"}, Pattern: 1},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return err
	}

	baseStyle, err := fx.NewStyle(&excelize.Style{
		Border: []excelize.Border{
			{Type: "bottom", Color: "E0E0E0", Style: 1},
		},
	})
	if err != nil {
		return err
	}

	for col, name := range indicatorHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := fx.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	headerRange, _ := excelize.CoordinatesToCellName(1, 1)
	headerEnd, _ := excelize.CoordinatesToCellName(len(indicatorHeader), 1)
	if err := fx.SetCellStyle(sheet, headerRange, headerEnd, headerStyle); err != nil {
		return err
	}

	for i, row := range rows {
		r := i + 2
		values := []interface{}{
			row.T.Format("2006-01-02 15:04:05"),
			row.RegState,
			row.RegP0,
			row.RegP1,
			row.RegConf,
			row.RegOpen,
			row.RegClose,
			row.RegWindowID,
			row.RegAge,
			row.DCTMV,
			row.DCTLen,
			row.DCR,
			row.DCEventBar,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			if err := fx.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
		rowStart, _ := excelize.CoordinatesToCellName(1, r)
		rowEnd, _ := excelize.CoordinatesToCellName(len(indicatorHeader), r)
		if err := fx.SetCellStyle(sheet, rowStart, rowEnd, baseStyle); err != nil {
			return err
		}
	}

	if err := fx.SetColWidth(sheet, "A", "A", 20); err != nil {
		return err
	}

	return fx.SaveAs(path)
}

// WriteIndicatorXLSX is a package-level convenience wrapper.
func WriteIndicatorXLSX(rows []regime.IndicatorRow, path string) error {
	reporter := NewDefaultExcelReporter()
	return reporter.WriteIndicatorXLSX(rows, path)
}

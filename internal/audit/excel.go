package audit

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// TableExporter provides access to database tables for export.
type TableExporter interface {
	// GetTableNames returns list of table names to export.
	GetTableNames(ctx context.Context) ([]string, error)

	// GetTableData returns rows for a table as maps.
	GetTableData(ctx context.Context, tableName string) ([]map[string]interface{}, []string, error)
}

// WriteExcel exports every audit table to one xlsx workbook, one sheet
// per table, and writes the workbook to w.
func WriteExcel(ctx context.Context, exporter TableExporter, w io.Writer) error {
	tables, err := exporter.GetTableNames(ctx)
	if err != nil {
		return fmt.Errorf("get table names: %w", err)
	}

	file := excelize.NewFile()
	defer file.Close()

	firstSheet := true
	for _, tableName := range tables {
		data, columns, err := exporter.GetTableData(ctx, tableName)
		if err != nil {
			return fmt.Errorf("get table data %s: %w", tableName, err)
		}

		sheet := tableName
		// Excel caps sheet names at 31 chars
		if len(sheet) > 31 {
			sheet = sheet[:31]
		}
		if firstSheet {
			file.SetSheetName("Sheet1", sheet)
			firstSheet = false
		} else {
			if _, err := file.NewSheet(sheet); err != nil {
				return fmt.Errorf("create sheet %s: %w", sheet, err)
			}
		}

		if err := writeRow(file, sheet, 1, toCells(columns)); err != nil {
			return err
		}
		if style, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
			startCell, _ := excelize.CoordinatesToCellName(1, 1)
			endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
			_ = file.SetCellStyle(sheet, startCell, endCell, style)
		}

		for i, row := range data {
			cells := make([]interface{}, len(columns))
			for j, col := range columns {
				cells[j] = row[col]
			}
			if err := writeRow(file, sheet, i+2, cells); err != nil {
				return err
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRow(file *excelize.File, sheet string, rowNum int, cells []interface{}) error {
	for i, val := range cells {
		cell, err := excelize.CoordinatesToCellName(i+1, rowNum)
		if err != nil {
			return err
		}
		if err := file.SetCellValue(sheet, cell, val); err != nil {
			return err
		}
	}
	return nil
}

func toCells(columns []string) []interface{} {
	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = c
	}
	return cells
}

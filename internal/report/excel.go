package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Writer builds a tabular document one row at a time.
type Writer interface {
	AddSheet(name string) error
	WriteTitle(lines ...string) error
	WriteHeader(columns []string) error
	WriteRow(row []any) error
	Save(w io.Writer) error
	SaveToFile(path string) error
	Close() error
}

// ExcelizeWriter implements Writer with an XLSX workbook.
type ExcelizeWriter struct {
	file         *excelize.File
	currentSheet string
	currentRow   int
	columns      int
}

func NewExcelizeWriter() Writer {
	return &ExcelizeWriter{file: excelize.NewFile()}
}

// AddSheet adds a new sheet with the given name.
func (w *ExcelizeWriter) AddSheet(name string) error {
	// Excel limit
	if len([]rune(name)) > 31 {
		name = string([]rune(name)[:31])
	}

	if w.currentSheet == "" {
		if err := w.file.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet %s: %w", name, err)
		}
	} else {
		if _, err := w.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	w.currentSheet = name
	w.currentRow = 1
	return nil
}

// WriteTitle writes the first line in bold and large, the rest as plain
// lines, then leaves one empty row.
func (w *ExcelizeWriter) WriteTitle(lines ...string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, line := range lines {
		cell, err := excelize.CoordinatesToCellName(1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, line); err != nil {
			return err
		}
		if i == 0 {
			style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 16}})
			if err == nil {
				_ = w.file.SetCellStyle(w.currentSheet, cell, cell, style)
			}
		}
		w.currentRow++
	}
	w.currentRow++
	return nil
}

// WriteHeader writes bold column headers to the current sheet.
func (w *ExcelizeWriter) WriteHeader(columns []string) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, col := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, col); err != nil {
			return err
		}
	}

	style, err := w.file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		startCell, _ := excelize.CoordinatesToCellName(1, w.currentRow)
		endCell, _ := excelize.CoordinatesToCellName(len(columns), w.currentRow)
		_ = w.file.SetCellStyle(w.currentSheet, startCell, endCell, style)
	}

	w.columns = len(columns)
	w.currentRow++
	return nil
}

// WriteRow writes a data row to the current sheet.
func (w *ExcelizeWriter) WriteRow(row []any) error {
	if w.currentSheet == "" {
		return fmt.Errorf("no active sheet")
	}

	for i, val := range row {
		cell, err := excelize.CoordinatesToCellName(i+1, w.currentRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellValue(w.currentSheet, cell, val); err != nil {
			return err
		}
	}

	w.currentRow++
	return nil
}

func (w *ExcelizeWriter) Save(wr io.Writer) error {
	return w.file.Write(wr)
}

func (w *ExcelizeWriter) SaveToFile(path string) error {
	if w.currentSheet != "" && w.columns > 0 {
		last, _ := excelize.ColumnNumberToName(w.columns)
		_ = w.file.SetColWidth(w.currentSheet, "A", last, 18)
	}
	return w.file.SaveAs(path)
}

func (w *ExcelizeWriter) Close() error {
	return w.file.Close()
}

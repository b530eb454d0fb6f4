package export

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
)

// Load reads the first sheet of a workbook into rows of strings. The ERP
// exports BIFF .xls; converted files arrive as .xlsx, so both formats are
// tried regardless of extension.
func Load(path string) ([][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export file: %w", err)
	}
	rows, err := LoadReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// LoadReader reads the first sheet of a workbook from r.
func LoadReader(r io.ReadSeeker) ([][]string, error) {
	if f, err := excelize.OpenReader(r); err == nil {
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("workbook has no sheets")
		}
		rows, err := f.GetRows(sheets[0])
		if err != nil {
			return nil, fmt.Errorf("reading sheet %s: %w", sheets[0], err)
		}
		return rows, nil
	}

	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}
	workbook, err := xls.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("unsupported workbook format: %w", err)
	}
	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	var rows [][]string
	for _, row := range sheets[0].GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// Window applies the variant's header skip and column slice. Rows shorter
// than the window are right-padded with empty cells so positional access
// stays in bounds.
func Window(rows [][]string, skipRows, colStart, colEnd int) [][]string {
	if skipRows > len(rows) {
		return nil
	}
	width := colEnd - colStart

	var out [][]string
	for _, row := range rows[skipRows:] {
		cells := make([]string, width)
		for i := 0; i < width; i++ {
			if colStart+i < len(row) {
				cells[i] = row[colStart+i]
			}
		}
		out = append(out, cells)
	}
	return out
}

// Package xlsconv rewrites legacy .xls exports as .xlsx so downstream
// tooling only has to deal with one format.
package xlsconv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/notastransf/notastransf/internal/export"
)

const outputSheet = "Sheet1"

// ConvertDir converts every workbook in dir to .xlsx, skipping the
// first skipRows rows of each. Originals are deleted only when the
// source was a .xls; a file that fails to convert is logged and left
// in place.
func ConvertDir(dir string, skipRows int, log *zap.Logger) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext != ".xls" && ext != ".xlsx" {
			continue
		}

		path := filepath.Join(dir, e.Name())
		if err := convertFile(path, skipRows); err != nil {
			log.Error("conversion failed, leaving original in place",
				zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		log.Info("converted workbook", zap.String("file", e.Name()))

		if ext == ".xls" {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing %s: %w", path, err)
			}
		}
	}
	return nil
}

func convertFile(path string, skipRows int) error {
	rows, err := export.Load(path)
	if err != nil {
		return err
	}
	if skipRows > 0 {
		if skipRows >= len(rows) {
			rows = nil
		} else {
			rows = rows[skipRows:]
		}
	}

	out := excelize.NewFile()
	defer out.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := out.SetSheetRow(outputSheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	target := strings.TrimSuffix(path, filepath.Ext(path)) + ".xlsx"
	if err := out.SaveAs(target); err != nil {
		return fmt.Errorf("saving %s: %w", target, err)
	}
	return nil
}

package sheets

import (
	"context"

	"google.golang.org/api/sheets/v4"

	"github.com/notastransf/notastransf/internal/model"
)

const (
	pixelsPerChar      = 10
	justificationWidth = 500
)

var urgentFill = &sheets.Color{Red: 1, Green: 0.8, Blue: 0.8}

// format applies the presentation pass in one batch: wipe stale
// formatting, style the header, highlight urgent rows, size columns,
// enable the filter and protect the data range.
func (p *Publisher) format(ctx context.Context, sheetID int64, table model.Table, opts Options) error {
	cols := int64(len(table.Columns))
	rowCount := int64(len(table.Records)) + 1

	reqs := []*sheets.Request{
		// Drop formatting left over from the previous run.
		{RepeatCell: &sheets.RepeatCellRequest{
			Range:  &sheets.GridRange{SheetId: sheetID},
			Cell:   &sheets.CellData{},
			Fields: "userEnteredFormat",
		}},
		{RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          sheetID,
				StartRowIndex:    0,
				EndRowIndex:      1,
				StartColumnIndex: 0,
				EndColumnIndex:   cols,
			},
			Cell: &sheets.CellData{
				UserEnteredFormat: &sheets.CellFormat{
					TextFormat:          &sheets.TextFormat{Bold: true},
					HorizontalAlignment: "CENTER",
				},
			},
			Fields: "userEnteredFormat(textFormat,horizontalAlignment)",
		}},
		{SetBasicFilter: &sheets.SetBasicFilterRequest{
			Filter: &sheets.BasicFilter{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    0,
					EndRowIndex:      rowCount,
					StartColumnIndex: 0,
					EndColumnIndex:   cols,
				},
			},
		}},
	}

	if opts.HighlightUrgent {
		reqs = append(reqs, urgentFillRequests(sheetID, table, cols, opts.UrgencyDays)...)
	}

	reqs = append(reqs, columnWidthRequests(sheetID, table)...)

	if opts.ProtectColumns {
		reqs = append(reqs, protectRequest(sheetID, table, rowCount, opts.EditableColumn))
	}

	return p.call(ctx, func() error { return p.api.batchUpdate(ctx, reqs) })
}

// urgentFillRequests paints one fill per contiguous run of urgent
// rows. Post-sort the urgent records sit together at the top, so this
// is usually a single request.
func urgentFillRequests(sheetID int64, table model.Table, cols int64, urgencyDays int) []*sheets.Request {
	var reqs []*sheets.Request
	runStart := -1
	flush := func(end int) {
		if runStart < 0 {
			return
		}
		reqs = append(reqs, &sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          sheetID,
					StartRowIndex:    int64(runStart) + 1, // +1 for the header row
					EndRowIndex:      int64(end) + 1,
					StartColumnIndex: 0,
					EndColumnIndex:   cols,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{BackgroundColor: urgentFill},
				},
				Fields: "userEnteredFormat.backgroundColor",
			},
		})
		runStart = -1
	}
	for i, r := range table.Records {
		if r.IssueDays >= urgencyDays {
			if runStart < 0 {
				runStart = i
			}
			continue
		}
		flush(i)
	}
	flush(len(table.Records))
	return reqs
}

// columnWidthRequests sizes each column from its longest rendered
// cell. The justification column gets a fixed wide berth for free
// text.
func columnWidthRequests(sheetID int64, table model.Table) []*sheets.Request {
	reqs := make([]*sheets.Request, 0, len(table.Columns))
	for i, c := range table.Columns {
		width := int64(justificationWidth)
		if c != model.ColJustification {
			longest := len([]rune(string(c)))
			for _, r := range table.Records {
				if n := len([]rune(r.Cell(c))); n > longest {
					longest = n
				}
			}
			width = int64(longest * pixelsPerChar)
		}
		reqs = append(reqs, &sheets.Request{
			UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: int64(i),
					EndIndex:   int64(i) + 1,
				},
				Properties: &sheets.DimensionProperties{PixelSize: width},
				Fields:     "pixelSize",
			},
		})
	}
	return reqs
}

// protectRequest locks the written range against edits, carving out
// the editable column so users can fill in their notes.
func protectRequest(sheetID int64, table model.Table, rowCount int64, editable model.Column) *sheets.Request {
	pr := &sheets.ProtectedRange{
		Range: &sheets.GridRange{
			SheetId:          sheetID,
			StartRowIndex:    0,
			EndRowIndex:      rowCount,
			StartColumnIndex: 0,
			EndColumnIndex:   int64(len(table.Columns)),
		},
		Description:           "Conteúdo gerado automaticamente",
		WarningOnly:           false,
		RequestingUserCanEdit: true,
	}
	for i, c := range table.Columns {
		if c == editable {
			pr.UnprotectedRanges = []*sheets.GridRange{{
				SheetId:          sheetID,
				StartRowIndex:    1,
				EndRowIndex:      rowCount,
				StartColumnIndex: int64(i),
				EndColumnIndex:   int64(i) + 1,
			}}
			break
		}
	}
	return &sheets.Request{
		AddProtectedRange: &sheets.AddProtectedRangeRequest{ProtectedRange: pr},
	}
}

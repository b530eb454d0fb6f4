package model

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Column identifies a published column. The value is the header text as it
// appears on the sheet.
type Column string

const (
	ColNote          Column = "Nota"
	ColControl       Column = "Controle"
	ColIssueDate     Column = "Emissão"
	ColIssueDays     Column = "Pendente a"
	ColEntryDate     Column = "Entrada"
	ColEntryDays     Column = "Pendente as"
	ColOrigin        Column = "Filial Origem"
	ColDestination   Column = "Filial Destino"
	ColSupplier      Column = "Fornecedor"
	ColTotal         Column = "Valor Total"
	ColRefIssue      Column = "Emissão Ref."
	ColJustification Column = "Justificativa"
)

// DateFormat is the locale date format used on published sheets.
const DateFormat = "02/01/2006"

// Cell returns the string-safe serialization of one column of r: missing
// values become the empty string, dates use DateFormat, totals keep the
// Brazilian comma decimal separator.
func (r Record) Cell(c Column) string {
	switch c {
	case ColNote:
		return r.Note
	case ColControl:
		return r.Control
	case ColIssueDate:
		if r.IssueDate.IsZero() {
			return ""
		}
		return r.IssueDate.Format(DateFormat)
	case ColIssueDays:
		return strconv.Itoa(r.IssueDays)
	case ColEntryDate:
		if r.EntryDate.IsZero() {
			return ""
		}
		return r.EntryDate.Format(DateFormat)
	case ColEntryDays:
		if r.EntryDate.IsZero() {
			return ""
		}
		return strconv.Itoa(r.EntryDays)
	case ColOrigin:
		return r.Origin
	case ColDestination:
		return r.Destination
	case ColSupplier:
		return r.Supplier
	case ColTotal:
		if r.Total.Equal(decimal.Zero) {
			return ""
		}
		return formatComma(r.Total)
	case ColRefIssue:
		return r.RefIssue
	case ColJustification:
		return r.Justification
	}
	return ""
}

// Row serializes r for the given column projection.
func (r Record) Row(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = r.Cell(c)
	}
	return out
}

// Headers returns the header row for a column projection.
func Headers(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = string(c)
	}
	return out
}

// formatComma renders a decimal with two places and a comma separator,
// matching the ERP's own money formatting.
func formatComma(d decimal.Decimal) string {
	s := d.StringFixed(2)
	for i := range s {
		if s[i] == '.' {
			return s[:i] + "," + s[i+1:]
		}
	}
	return s
}

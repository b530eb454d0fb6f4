// Package classify separates raw export rows into marker rows and data rows,
// carrying the most recent marker values forward onto the data rows.
package classify

import (
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Marker payload positions within a marker row. Detection looks at the first
// cell; the payload lives elsewhere on the same row.
const (
	branchPayloadCell   = 1
	supplierPayloadCell = 2
)

// Row is a data row annotated with the marker context in effect when it was
// read. Branch and Supplier are empty for rows preceding any marker.
type Row struct {
	Cells    []string
	Branch   string // payload of the most recent "Filial:" marker
	Supplier string // payload of the most recent "Fornecedor:" marker
}

// markers is the carry-forward accumulator threaded through a scan. One value
// per file; never shared across files.
type markers struct {
	branch   string
	supplier string
}

// Scan folds over rows in order, dropping marker and total rows and attaching
// the current marker values to each surviving data row.
func Scan(rows [][]string) []Row {
	var acc markers
	var out []Row

	for _, cells := range rows {
		first := ""
		if len(cells) > 0 {
			first = cells[0]
		}

		switch {
		case isMarker(first, "FILIAL:"):
			acc.branch = strings.TrimSpace(cellAt(cells, branchPayloadCell))
		case isMarker(first, "FORNECEDOR:"):
			acc.supplier = strings.TrimSpace(cellAt(cells, supplierPayloadCell))
		case isTotal(first):
			// Subtotal lines carry no transaction data.
		default:
			out = append(out, Row{
				Cells:    cells,
				Branch:   acc.branch,
				Supplier: acc.supplier,
			})
		}
	}
	return out
}

func cellAt(cells []string, i int) string {
	if i < len(cells) {
		return cells[i]
	}
	return ""
}

// totalPrefixes are subtotal labels the ERP interleaves with data rows.
var totalPrefixes = []string{"TOTAL:", "TOTAL FILIAL:", "TOTAL GERAL:"}

func isMarker(cell, label string) bool {
	return strings.Contains(foldCell(cell), label)
}

func isTotal(cell string) bool {
	folded := foldCell(cell)
	for _, p := range totalPrefixes {
		if strings.Contains(folded, p) {
			return true
		}
	}
	return false
}

// foldCell uppercases and strips combining accents so marker detection
// survives the ERP's inconsistent casing and encoding.
func foldCell(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(func(r rune) bool {
		return unicode.Is(unicode.Mn, r)
	}))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToUpper(strings.TrimSpace(folded))
}

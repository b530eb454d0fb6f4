// Package normalize turns classified data rows into transaction records,
// deriving elapsed-day counts and canonical branch/supplier codes.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/notastransf/notastransf/internal/classify"
	"github.com/notastransf/notastransf/internal/config"
	"github.com/notastransf/notastransf/internal/model"
)

// sentinelBranch is the ERP's placeholder destination code. Depending on the
// report it is either not a real transfer target (excluded) or a bucket of
// its own ("F98").
const sentinelBranch = 98

// dateFormats accepted for issue/entry dates, tried in order.
var dateFormats = []string{"02/01/2006", "02/01/06", "2006-01-02"}

// Policy selects the variant-dependent normalization behavior.
type Policy struct {
	Layout config.Layout
	// MinIssueDays drops records pending fewer days than this; 0 keeps all.
	MinIssueDays int
	// KeepSentinel relabels destination 98 as "F98" instead of dropping.
	KeepSentinel bool
	// Now is the run timestamp elapsed days are measured against.
	Now time.Time
}

// Records converts classified rows into records, dropping rows with a missing
// control number, an unparseable date, or an excluded destination.
func Records(rows []classify.Row, p Policy) []model.Record {
	var out []model.Record
	for _, row := range rows {
		rec, ok := record(row, p)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func record(row classify.Row, p Policy) (model.Record, bool) {
	cell := func(i int) string {
		if i >= 0 && i < len(row.Cells) {
			return strings.TrimSpace(row.Cells[i])
		}
		return ""
	}

	control := cell(p.Layout.Control)
	if control == "" {
		return model.Record{}, false
	}

	issue, ok := parseDate(cell(p.Layout.IssueDate))
	if !ok {
		return model.Record{}, false
	}

	var entry time.Time
	if p.Layout.EntryDate >= 0 {
		entry, ok = parseDate(cell(p.Layout.EntryDate))
		if !ok {
			return model.Record{}, false
		}
	}

	dest := row.Branch
	if p.Layout.Destination >= 0 {
		dest = cell(p.Layout.Destination)
	}
	destination := Branch(dest)
	if n, ok := branchNumber(destination); ok && n == sentinelBranch && !p.KeepSentinel {
		return model.Record{}, false
	}

	rec := model.Record{
		Note:        cell(p.Layout.Note),
		Control:     control,
		IssueDate:   issue,
		IssueDays:   elapsedDays(p.Now, issue),
		EntryDate:   entry,
		Destination: destination,
	}
	if !entry.IsZero() {
		rec.EntryDays = elapsedDays(p.Now, entry)
	}
	if p.MinIssueDays > 0 && rec.IssueDays < p.MinIssueDays {
		return model.Record{}, false
	}

	rec.Supplier, rec.SupplierKnown = Supplier(row.Supplier)
	if p.Layout.Origin >= 0 {
		rec.Origin = Branch(cell(p.Layout.Origin))
	}
	if p.Layout.Total >= 0 {
		rec.Total = parseBRL(cell(p.Layout.Total))
	}
	return rec, true
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	// Some exports render dates with a time suffix.
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func elapsedDays(now, t time.Time) int {
	return int(now.Sub(t).Hours() / 24)
}

var supplierRe = regexp.MustCompile(`^F0*(\d+)`)

// Supplier collapses "F01 - MATRIZ" style supplier text to its canonical
// short form "F1". Already-canonical codes pass through unchanged, so the
// function is idempotent. Non-matching text is returned verbatim with
// ok=false.
func Supplier(s string) (code string, ok bool) {
	s = strings.TrimSpace(s)
	m := supplierRe.FindStringSubmatch(s)
	if m == nil {
		return s, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return s, false
	}
	return "F" + strconv.Itoa(n), true
}

var leadingNumberRe = regexp.MustCompile(`^(\d+)`)

// Branch canonicalizes a branch value to "F<n>". Bare numeric codes ("15",
// "15 - LOJA CENTRO") and supplier-style text both collapse; anything else
// passes through verbatim.
func Branch(s string) string {
	s = strings.TrimSpace(s)
	if m := leadingNumberRe.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return "F" + strconv.Itoa(n)
		}
	}
	if code, ok := Supplier(s); ok {
		return code
	}
	return s
}

// branchNumber extracts the numeric part of a canonical "F<n>" code.
func branchNumber(s string) (int, bool) {
	if !strings.HasPrefix(s, "F") {
		return 0, false
	}
	n, err := strconv.Atoi(s[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseBRL reads a Brazilian-formatted money string ("1.234,56", "R$ 12,00").
// Unparseable values become zero; money is informational on this report.
func parseBRL(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")
	switch {
	case lastComma > lastDot:
		// Brazilian format: dots group thousands, comma is decimal.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case lastDot > lastComma:
		s = strings.ReplaceAll(s, ",", "")
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d
}

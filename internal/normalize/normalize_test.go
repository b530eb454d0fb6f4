package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notastransf/notastransf/internal/classify"
	"github.com/notastransf/notastransf/internal/config"
)

var runDate = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

func pendenciasPolicy() Policy {
	p := config.Pendencias()
	return Policy{
		Layout:       p.Layout,
		MinIssueDays: p.MinIssueDays,
		KeepSentinel: p.KeepSentinel,
		Now:          runDate,
	}
}

func transferenciasPolicy() Policy {
	p := config.Transferencias()
	return Policy{
		Layout:       p.Layout,
		KeepSentinel: p.KeepSentinel,
		Now:          runDate,
	}
}

// Pendencias layout: note, destination, issue, control, entry.
func dataRow(supplier string, cells ...string) classify.Row {
	return classify.Row{Cells: cells, Supplier: supplier}
}

func TestRecords_Basic(t *testing.T) {
	rows := []classify.Row{
		dataRow("F01 - MATRIZ", "1001", "15", "10/02/2026", "555", "11/02/2026"),
	}

	recs := Records(rows, pendenciasPolicy())
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "1001", rec.Note)
	assert.Equal(t, "555", rec.Control)
	assert.Equal(t, "F15", rec.Destination)
	assert.Equal(t, "F1", rec.Supplier)
	assert.True(t, rec.SupplierKnown)
	assert.Equal(t, 10, rec.IssueDays)
	assert.Equal(t, 9, rec.EntryDays)
}

func TestRecords_MissingControlDropped(t *testing.T) {
	rows := []classify.Row{
		dataRow("F01 - MATRIZ", "1001", "15", "10/02/2026", "", "11/02/2026"),
	}
	assert.Empty(t, Records(rows, pendenciasPolicy()))
}

func TestRecords_BadIssueDateDropped(t *testing.T) {
	rows := []classify.Row{
		dataRow("F01 - MATRIZ", "1001", "15", "not-a-date", "555", "11/02/2026"),
		dataRow("F01 - MATRIZ", "1002", "15", "", "556", "11/02/2026"),
	}
	assert.Empty(t, Records(rows, pendenciasPolicy()))
}

func TestRecords_CutoffFilter(t *testing.T) {
	rows := []classify.Row{
		dataRow("F2", "1001", "15", "16/02/2026", "555", "16/02/2026"), // 4 days
		dataRow("F2", "1002", "15", "10/02/2026", "556", "10/02/2026"), // 10 days
	}

	recs := Records(rows, pendenciasPolicy())
	require.Len(t, recs, 1)
	assert.Equal(t, "556", recs[0].Control)

	// With the cutoff disabled both survive.
	p := pendenciasPolicy()
	p.MinIssueDays = 0
	assert.Len(t, Records(rows, p), 2)
}

func TestRecords_SentinelExcludedVsRelabeled(t *testing.T) {
	rows := []classify.Row{
		dataRow("F2", "1001", "98", "01/02/2026", "555", "01/02/2026"),
	}

	assert.Empty(t, Records(rows, pendenciasPolicy()), "98 is not a transfer target here")

	p := pendenciasPolicy()
	p.KeepSentinel = true
	recs := Records(rows, p)
	require.Len(t, recs, 1)
	assert.Equal(t, "F98", recs[0].Destination)
}

func TestRecords_MarkerDestinationAndTotal(t *testing.T) {
	// Transferencias layout: note, _, issue, control, total, origin.
	row := classify.Row{
		Cells:    []string{"1001", "", "05/02/2026", "555", "1.234,56", "1"},
		Branch:   "15 - LOJA CENTRO",
		Supplier: "F03 - DEPOSITO",
	}

	recs := Records([]classify.Row{row}, transferenciasPolicy())
	require.Len(t, recs, 1)

	rec := recs[0]
	assert.Equal(t, "F15", rec.Destination, "destination from marker context")
	assert.Equal(t, "F1", rec.Origin)
	assert.Equal(t, "1234.56", rec.Total.String())
	assert.True(t, rec.EntryDate.IsZero())
}

func TestRecords_FutureDatedKept(t *testing.T) {
	rows := []classify.Row{
		dataRow("F2", "1001", "15", "25/02/2026", "555", "25/02/2026"),
	}
	p := pendenciasPolicy()
	p.MinIssueDays = 0

	recs := Records(rows, p)
	require.Len(t, recs, 1)
	assert.Negative(t, recs[0].IssueDays, "future-dated documents are retained, not flagged")
}

func TestSupplier(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"F01 - MATRIZ", "F1", true},
		{"F015 - CD NORTE", "F15", true},
		{"F3", "F3", true},
		{"F98", "F98", true},
		{"ACME LTDA", "ACME LTDA", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := Supplier(tt.in)
		assert.Equal(t, tt.want, got, "Supplier(%q)", tt.in)
		assert.Equal(t, tt.ok, ok, "Supplier(%q) ok", tt.in)
	}
}

func TestSupplier_Idempotent(t *testing.T) {
	once, _ := Supplier("F01 - MATRIZ")
	twice, ok := Supplier(once)
	assert.True(t, ok)
	assert.Equal(t, once, twice)
}

func TestBranch(t *testing.T) {
	assert.Equal(t, "F15", Branch("15"))
	assert.Equal(t, "F15", Branch("15 - LOJA CENTRO"))
	assert.Equal(t, "F8", Branch("08"))
	assert.Equal(t, "F98", Branch("F98"))
	assert.Equal(t, "MATRIZ", Branch("MATRIZ"))
	assert.Equal(t, "", Branch("  "))
}

func TestParseBRL(t *testing.T) {
	assert.Equal(t, "1234.56", parseBRL("1.234,56").String())
	assert.Equal(t, "12", parseBRL("R$ 12,00").StringFixed(0))
	assert.Equal(t, "1234.56", parseBRL("1,234.56").String())
	assert.Equal(t, "-50.1", parseBRL("(50,10)").String())
	assert.True(t, parseBRL("n/a").IsZero())
	assert.True(t, parseBRL("").IsZero())
}

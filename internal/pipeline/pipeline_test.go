package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/notastransf/notastransf/internal/config"
	"github.com/notastransf/notastransf/internal/model"
	"github.com/notastransf/notastransf/internal/sheets"
)

var runDate = time.Date(2026, 2, 20, 12, 0, 0, 0, time.UTC)

type published struct {
	table model.Table
	title string
	opts  sheets.Options
}

type fakePub struct {
	published []published
}

func (f *fakePub) Publish(ctx context.Context, table model.Table, title string, opts sheets.Options) error {
	f.published = append(f.published, published{table: table, title: title, opts: opts})
	return nil
}

func chtimes(path string, ts time.Time) error {
	return os.Chtimes(path, ts, ts)
}

func writeXLSX(t *testing.T, path string, rows [][]string) {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	require.NoError(t, f.SaveAs(path))
}

func testReport(inputDir string) config.Report {
	return config.Report{
		Name:       "test",
		InputDir:   inputDir,
		Extensions: []string{".xlsx"},
		AllFiles:   true,
		ColStart:   0,
		ColEnd:     5,
		Layout: config.Layout{
			Note:        0,
			Destination: -1,
			IssueDate:   2,
			Control:     3,
			EntryDate:   -1,
			Total:       4,
			Origin:      -1,
		},
		UrgencyDays:  10,
		KeepSentinel: true,
		ChunkSize:    5000,
		Worksheets: map[model.Bucket]string{
			model.BucketTransfer:     "transf_total",
			model.BucketDistribution: "dist_total",
		},
		TransferColumns: []model.Column{
			model.ColControl, model.ColDestination, model.ColSupplier, model.ColRefIssue,
		},
		DistributionColumns: []model.Column{
			model.ColControl, model.ColDestination, model.ColSupplier,
		},
	}
}

func exportRows() [][]string {
	return [][]string{
		{"Filial: destino", "15 - LOJA QUINZE", "", "", ""},
		{"Fornecedor:", "", "F03 - FILIAL TRES", "", ""},
		{"9672 - 0", "", "10/02/2026", "555", "1.234,56"},
		{"Total Filial:", "", "", "", "999,99"},
		{"Fornecedor:", "", "TRANSPORTADORA XYZ LTDA", "", ""},
		{"7001 - 0", "", "01/02/2026", "777", "50,00"},
	}
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	writeXLSX(t, filepath.Join(dir, "export.xlsx"), exportRows())

	refDir := t.TempDir()
	writeXLSX(t, filepath.Join(refDir, "filial_3.xlsx"), [][]string{
		{"9672", "01/02/2026"},
	})

	report := testReport(dir)
	report.Reconcile = true
	report.ReferenceDir = refDir

	pub := &fakePub{}
	p := New(pub, zap.NewNop())
	p.now = func() time.Time { return runDate }

	require.NoError(t, p.Run(context.Background(), report))
	require.Len(t, pub.published, 2)

	transf := pub.published[0]
	assert.Equal(t, "transf_total", transf.title)
	require.Len(t, transf.table.Records, 1)
	rec := transf.table.Records[0]
	assert.Equal(t, "555", rec.Control)
	assert.Equal(t, "F3", rec.Supplier)
	assert.Equal(t, "F15", rec.Destination)
	assert.Equal(t, 10, rec.IssueDays)
	assert.Equal(t, "01/02/2026", rec.RefIssue, "reference backfill applied by trimmed doc id")

	dist := pub.published[1]
	assert.Equal(t, "dist_total", dist.title)
	require.Len(t, dist.table.Records, 1)
	assert.Equal(t, "777", dist.table.Records[0].Control)
	assert.False(t, dist.table.Records[0].SupplierKnown)

	assert.Equal(t, 5000, transf.opts.ChunkSize)
}

func TestRunMissingReferenceDirIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	writeXLSX(t, filepath.Join(dir, "export.xlsx"), exportRows())

	report := testReport(dir)
	report.Reconcile = true
	report.ReferenceDir = filepath.Join(dir, "nope")

	pub := &fakePub{}
	p := New(pub, zap.NewNop())
	p.now = func() time.Time { return runDate }

	require.NoError(t, p.Run(context.Background(), report))
	require.Len(t, pub.published, 2)
	assert.Empty(t, pub.published[0].table.Records[0].RefIssue)
}

func TestRunMultipleFilesConcatenateInOrder(t *testing.T) {
	dir := t.TempDir()
	first := [][]string{
		{"Fornecedor:", "", "F01 - MATRIZ", "", ""},
		{"100 - 0", "", "01/02/2026", "111", ""},
	}
	second := [][]string{
		{"Fornecedor:", "", "F02 - CENTRO", "", ""},
		{"200 - 0", "", "01/02/2026", "222", ""},
	}
	writeXLSX(t, filepath.Join(dir, "a.xlsx"), first)
	writeXLSX(t, filepath.Join(dir, "b.xlsx"), second)
	older := runDate.Add(-48 * time.Hour)
	require.NoError(t, chtimes(filepath.Join(dir, "a.xlsx"), older))

	report := testReport(dir)
	report.UrgencyDays = 0 // keep input order: everything urgent, same destination and age

	pub := &fakePub{}
	p := New(pub, zap.NewNop())
	p.now = func() time.Time { return runDate }

	require.NoError(t, p.Run(context.Background(), report))
	transf := pub.published[0].table
	require.Len(t, transf.Records, 2)
	assert.Equal(t, "111", transf.Records[0].Control, "oldest file parsed first")
	assert.Equal(t, "222", transf.Records[1].Control)

	// supplier markers never leak across file boundaries
	assert.Equal(t, "F1", transf.Records[0].Supplier)
	assert.Equal(t, "F2", transf.Records[1].Supplier)
}

func TestRunNoFiles(t *testing.T) {
	pub := &fakePub{}
	p := New(pub, zap.NewNop())
	err := p.Run(context.Background(), testReport(t.TempDir()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no export files")
}

func TestRunSkipsUnconfiguredBucket(t *testing.T) {
	dir := t.TempDir()
	writeXLSX(t, filepath.Join(dir, "export.xlsx"), exportRows())

	report := testReport(dir)
	report.Worksheets = map[model.Bucket]string{model.BucketTransfer: "info"}

	pub := &fakePub{}
	p := New(pub, zap.NewNop())
	p.now = func() time.Time { return runDate }

	require.NoError(t, p.Run(context.Background(), report))
	require.Len(t, pub.published, 1)
	assert.Equal(t, "info", pub.published[0].title)
}

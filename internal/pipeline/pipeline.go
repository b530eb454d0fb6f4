// Package pipeline runs one report end to end: discover export files,
// classify and normalize their rows, partition and sort the records,
// optionally backfill from reference tables, and publish the result.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notastransf/notastransf/internal/classify"
	"github.com/notastransf/notastransf/internal/config"
	"github.com/notastransf/notastransf/internal/export"
	"github.com/notastransf/notastransf/internal/model"
	"github.com/notastransf/notastransf/internal/normalize"
	"github.com/notastransf/notastransf/internal/partition"
	"github.com/notastransf/notastransf/internal/reconcile"
	"github.com/notastransf/notastransf/internal/sheets"
)

// Publisher is the remote sink the pipeline writes to.
type Publisher interface {
	Publish(ctx context.Context, table model.Table, title string, opts sheets.Options) error
}

// Pipeline executes report runs against one publisher.
type Pipeline struct {
	pub Publisher
	log *zap.Logger

	// now is the run timestamp; overridable in tests.
	now func() time.Time
}

// New builds a pipeline.
func New(pub Publisher, log *zap.Logger) *Pipeline {
	return &Pipeline{pub: pub, log: log, now: time.Now}
}

// Run processes one report variant. Each stage consumes and produces
// full slices; nothing is streamed.
func (p *Pipeline) Run(ctx context.Context, report config.Report) error {
	files, err := export.Discover(report.InputDir, report.Extensions, report.AllFiles)
	if err != nil {
		return fmt.Errorf("discovering exports: %w", err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no export files matching %v in %s", report.Extensions, report.InputDir)
	}

	records, err := p.parse(files, report)
	if err != nil {
		return err
	}
	p.log.Info("parsed exports",
		zap.Int("files", len(files)),
		zap.Int("records", len(records)))

	transfer, distribution := partition.Split(records)
	partition.SortTransfer(transfer, report.UrgencyDays)
	partition.SortDistribution(distribution)

	if report.Reconcile {
		p.backfill(transfer, report)
	}

	opts := sheets.Options{
		ChunkSize:       report.ChunkSize,
		HighlightUrgent: report.HighlightUrgent,
		UrgencyDays:     report.UrgencyDays,
		ProtectColumns:  report.ProtectColumns,
		EditableColumn:  model.Column(report.EditableColumn),
		ShareLink:       report.ShareLink,
	}
	buckets := []model.Table{
		{Bucket: model.BucketTransfer, Columns: report.Columns(model.BucketTransfer), Records: transfer},
		{Bucket: model.BucketDistribution, Columns: report.Columns(model.BucketDistribution), Records: distribution},
	}
	for _, table := range buckets {
		title := report.Worksheets[table.Bucket]
		if title == "" {
			p.log.Info("no worksheet configured for bucket, skipping",
				zap.String("bucket", string(table.Bucket)))
			continue
		}
		if err := p.pub.Publish(ctx, table, title, opts); err != nil {
			return fmt.Errorf("publishing %s: %w", title, err)
		}
	}
	return nil
}

// parse reads every discovered file and concatenates the normalized
// records in discovery order. Marker state never crosses a file
// boundary.
func (p *Pipeline) parse(files []export.FileInfo, report config.Report) ([]model.Record, error) {
	policy := normalize.Policy{
		Layout:       report.Layout,
		MinIssueDays: report.MinIssueDays,
		KeepSentinel: report.KeepSentinel,
		Now:          p.now(),
	}

	var records []model.Record
	for _, f := range files {
		rows, err := export.Load(f.Path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", f.Name, err)
		}
		windowed := export.Window(rows, report.SkipRows, report.ColStart, report.ColEnd)
		recs := normalize.Records(classify.Scan(windowed), policy)
		p.log.Info("processed export",
			zap.String("file", f.Name),
			zap.Int("rows", len(windowed)),
			zap.Int("records", len(recs)))
		records = append(records, recs...)
	}
	return records, nil
}

// backfill fills reference issue dates on the transfer bucket. A
// missing or unreadable reference directory disables backfill for the
// run; it never aborts.
func (p *Pipeline) backfill(transfer []model.Record, report config.Report) {
	tables, err := reconcile.LoadDir(report.ReferenceDir)
	if err != nil {
		p.log.Warn("reference tables unavailable, skipping backfill", zap.Error(err))
		return
	}
	reconcile.Backfill(transfer, tables, p.log)
}

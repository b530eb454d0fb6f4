package sheets

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/notastransf/notastransf/internal/model"
	"github.com/notastransf/notastransf/internal/retry"
)

const (
	defaultChunkSize = 5000
	retryAttempts    = 3
	retryDelay       = 2 * time.Second
)

// Options control the presentation side effects applied after the
// data write.
type Options struct {
	ChunkSize       int
	HighlightUrgent bool
	UrgencyDays     int
	ProtectColumns  bool
	EditableColumn  model.Column
	ShareLink       bool
}

// Publisher replaces worksheet contents with output tables.
type Publisher struct {
	api   api
	log   *zap.Logger
	delay time.Duration
}

// NewPublisher wraps a client for publishing.
func NewPublisher(c *Client, log *zap.Logger) *Publisher {
	return &Publisher{api: c, log: log, delay: retryDelay}
}

func (p *Publisher) call(ctx context.Context, fn func() error) error {
	return retry.Do(ctx, retryAttempts, p.delay, IsTransient, fn)
}

// Publish clears the worksheet named title and writes the table's
// header and rows, then applies formatting, protection and sharing per
// opts. The sheet is created when missing. Between the clear and the
// first write the sheet is briefly empty; a crash in that window
// leaves it cleared.
func (p *Publisher) Publish(ctx context.Context, table model.Table, title string, opts Options) error {
	chunk := opts.ChunkSize
	if chunk <= 0 {
		chunk = defaultChunkSize
	}

	var id int64
	if err := p.call(ctx, func() error {
		var err error
		id, err = p.api.sheetID(ctx, title)
		return err
	}); err != nil {
		return err
	}

	p.log.Warn("clearing worksheet before write, prior contents will be lost",
		zap.String("worksheet", title))
	if err := p.call(ctx, func() error { return p.api.clear(ctx, title) }); err != nil {
		return err
	}

	rows := serialize(table)
	if err := p.writeChunks(ctx, title, rows, chunk); err != nil {
		return err
	}

	if err := p.format(ctx, id, table, opts); err != nil {
		return err
	}

	if opts.ShareLink {
		if err := p.call(ctx, func() error { return p.api.setPermission(ctx, "writer") }); err != nil {
			return err
		}
	}

	p.log.Info("published worksheet",
		zap.String("worksheet", title),
		zap.Int("records", len(table.Records)))
	return nil
}

// Revoke drops link sharing back to read-only.
func (p *Publisher) Revoke(ctx context.Context) error {
	return p.call(ctx, func() error { return p.api.setPermission(ctx, "reader") })
}

// serialize renders the header row followed by every record under the
// table's column projection.
func serialize(table model.Table) [][]interface{} {
	out := make([][]interface{}, 0, len(table.Records)+1)
	out = append(out, toCells(model.Headers(table.Columns)))
	for _, r := range table.Records {
		out = append(out, toCells(r.Row(table.Columns)))
	}
	return out
}

func toCells(row []string) []interface{} {
	cells := make([]interface{}, len(row))
	for i, v := range row {
		cells[i] = v
	}
	return cells
}

// writeChunks sends rows in fixed-size slices, each anchored at its
// absolute row offset so a chunk boundary never splits a row. The
// header travels in the first chunk only.
func (p *Publisher) writeChunks(ctx context.Context, title string, rows [][]interface{}, chunk int) error {
	for start := 0; start < len(rows); start += chunk {
		end := start + chunk
		if end > len(rows) {
			end = len(rows)
		}
		rangeA1 := fmt.Sprintf("'%s'!A%d", title, start+1)
		if err := p.call(ctx, func() error {
			return p.api.update(ctx, rangeA1, rows[start:end])
		}); err != nil {
			return err
		}
	}
	return nil
}

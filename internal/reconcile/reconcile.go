// Package reconcile backfills reference issue dates onto transaction
// records from per-branch lookup files supplied alongside the export.
package reconcile

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/notastransf/notastransf/internal/export"
	"github.com/notastransf/notastransf/internal/model"
)

// Table is one branch's reference lookup, keyed by trimmed document
// id. Duplicate ids keep the first row read from the file.
type Table struct {
	Branch string
	issue  map[string]string
}

// Lookup returns the reference issue date for a trimmed document id.
func (t *Table) Lookup(id string) (string, bool) {
	v, ok := t.issue[id]
	return v, ok
}

func (t *Table) add(id, issue string) {
	id = strings.TrimSpace(id)
	if id == "" {
		return
	}
	if _, dup := t.issue[id]; dup {
		return
	}
	t.issue[id] = strings.TrimSpace(issue)
}

var refFileRe = regexp.MustCompile(`^filial_(\d+)\.(csv|xls|xlsx)$`)

// LoadDir reads every reference file in dir. Files follow the
// filial_<n>.<ext> naming convention; the branch key is "F<n>" with
// leading zeros dropped. Unreadable files are returned as errors,
// unrecognized names are ignored.
func LoadDir(dir string) (map[string]*Table, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading reference dir: %w", err)
	}

	tables := make(map[string]*Table)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := refFileRe.FindStringSubmatch(strings.ToLower(e.Name()))
		if m == nil {
			continue
		}
		branch := "F" + strings.TrimLeft(m[1], "0")
		if branch == "F" {
			branch = "F0"
		}

		path := filepath.Join(dir, e.Name())
		t, err := loadTable(path, branch, m[2])
		if err != nil {
			return nil, fmt.Errorf("reference %s: %w", e.Name(), err)
		}
		if _, dup := tables[branch]; !dup {
			tables[branch] = t
		}
	}
	return tables, nil
}

func loadTable(path, branch, ext string) (*Table, error) {
	t := &Table{Branch: branch, issue: make(map[string]string)}

	var rows [][]string
	var err error
	if ext == "csv" {
		rows, err = readCSV(path)
	} else {
		rows, err = export.Load(path)
	}
	if err != nil {
		return nil, err
	}

	// First column is the document id, second the issue date. The
	// header row, when present, has a non-numeric id and simply never
	// matches a trimmed record id.
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		t.add(row[0], row[1])
	}
	return t, nil
}

// readCSV reads a semicolon-separated reference file. The exports come
// out of the ERP in ISO-8859-1, not UTF-8.
func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(f))
	r.Comma = ';'
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

// TrimDocID strips a document id to its numeric portion: the text
// before the first hyphen, trimmed. "9672 - 0" becomes "9672".
func TrimDocID(id string) string {
	if i := strings.Index(id, "-"); i >= 0 {
		id = id[:i]
	}
	return strings.TrimSpace(id)
}

// Backfill fills RefIssue on records whose supplier has a reference
// table, matching by trimmed document id. Populated values are never
// overwritten; a missing table or missing match leaves the field
// blank.
func Backfill(recs []model.Record, tables map[string]*Table, log *zap.Logger) {
	missing := make(map[string]bool)
	for i := range recs {
		r := &recs[i]
		if r.RefIssue != "" {
			continue
		}
		t, ok := tables[r.Supplier]
		if !ok {
			missing[r.Supplier] = true
			continue
		}
		if v, ok := t.Lookup(TrimDocID(r.Note)); ok {
			r.RefIssue = v
		}
	}
	for branch := range missing {
		log.Warn("no reference table for branch, skipping backfill",
			zap.String("branch", branch))
	}
}

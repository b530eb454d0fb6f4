package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/notastransf/notastransf/internal/model"
)

// Environment variables recognized by every command that talks to the
// spreadsheet service. Credentials may be supplied inline or as a file path;
// the inline blob wins.
const (
	EnvSpreadsheetID   = "SHEET_ID"
	EnvCredentials     = "GGL_CREDENTIALS"
	EnvCredentialsFile = "GGL_CREDENTIALS_FILE"
)

// defaultCredentialsFile is the fallback service-account file path.
const defaultCredentialsFile = "notas-transf.json"

// Config holds the remote-spreadsheet connection settings.
type Config struct {
	SpreadsheetID string
	Credentials   []byte // service-account JSON
}

// FromEnv reads the connection settings from the environment. Missing
// required values fail here, before any remote call is attempted.
func FromEnv() (*Config, error) {
	id := os.Getenv(EnvSpreadsheetID)
	if id == "" {
		return nil, fmt.Errorf("environment variable %s not set", EnvSpreadsheetID)
	}

	if blob := os.Getenv(EnvCredentials); blob != "" {
		return &Config{SpreadsheetID: id, Credentials: []byte(blob)}, nil
	}

	path := os.Getenv(EnvCredentialsFile)
	if path == "" {
		path = defaultCredentialsFile
	}
	creds, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("no %s set and credentials file unreadable: %w", EnvCredentials, err)
	}
	return &Config{SpreadsheetID: id, Credentials: creds}, nil
}

// Layout maps record fields to column positions inside the windowed raw row.
// -1 means the report variant does not carry that field as a data column
// (destination may instead arrive via "Filial:" marker rows).
type Layout struct {
	Note        int `yaml:"note"`
	Destination int `yaml:"destination"`
	IssueDate   int `yaml:"issue_date"`
	Control     int `yaml:"control"`
	EntryDate   int `yaml:"entry_date"`
	Total       int `yaml:"total"`
	Origin      int `yaml:"origin"`
}

// Report parameterizes one pipeline variant. Both observed variants of the
// upstream report are expressible; neither is privileged.
type Report struct {
	Name       string   `yaml:"name"`
	InputDir   string   `yaml:"input_dir"`
	Extensions []string `yaml:"extensions"`
	// AllFiles processes every matching file oldest-first instead of only
	// the most recently modified one.
	AllFiles bool `yaml:"all_files"`

	SkipRows int    `yaml:"skip_rows"`
	ColStart int    `yaml:"col_start"`
	ColEnd   int    `yaml:"col_end"`
	Layout   Layout `yaml:"layout"`

	// MinIssueDays drops records pending fewer days; 0 disables the cutoff.
	MinIssueDays int `yaml:"min_issue_days"`
	// UrgencyDays is the threshold for the urgent sort key and highlight.
	UrgencyDays int `yaml:"urgency_days"`
	// KeepSentinel relabels destination branch 98 as "F98" instead of
	// excluding it.
	KeepSentinel bool `yaml:"keep_sentinel"`

	Reconcile    bool   `yaml:"reconcile"`
	ReferenceDir string `yaml:"reference_dir"`

	ChunkSize       int    `yaml:"chunk_size"`
	HighlightUrgent bool   `yaml:"highlight_urgent"`
	ProtectColumns  bool   `yaml:"protect_columns"`
	ShareLink       bool   `yaml:"share_link"`
	EditableColumn  string `yaml:"editable_column"`

	Worksheets          map[model.Bucket]string `yaml:"worksheets"`
	TransferColumns     []model.Column          `yaml:"transfer_columns"`
	DistributionColumns []model.Column          `yaml:"distribution_columns"`
}

// Pendencias is the pending-notes report: latest export only, 7-day cutoff,
// branch 98 excluded, published to a protected, highlighted "info" worksheet.
func Pendencias() Report {
	return Report{
		Name:       "pendencias",
		InputDir:   ".",
		Extensions: []string{".xls"},
		SkipRows:   2,
		ColStart:   1,
		ColEnd:     6,
		Layout: Layout{
			Note:        0,
			Destination: 1,
			IssueDate:   2,
			Control:     3,
			EntryDate:   4,
			Total:       -1,
			Origin:      -1,
		},
		MinIssueDays:    7,
		UrgencyDays:     10,
		ChunkSize:       5000,
		HighlightUrgent: true,
		ProtectColumns:  true,
		ShareLink:       true,
		EditableColumn:  string(model.ColJustification),
		Worksheets: map[model.Bucket]string{
			model.BucketTransfer:     "info",
			model.BucketDistribution: "distribuicao",
		},
		TransferColumns: []model.Column{
			model.ColNote, model.ColControl, model.ColIssueDate,
			model.ColIssueDays, model.ColSupplier, model.ColDestination,
			model.ColJustification,
		},
		DistributionColumns: []model.Column{
			model.ColNote, model.ColControl, model.ColIssueDate,
			model.ColIssueDays, model.ColSupplier, model.ColDestination,
			model.ColJustification,
		},
	}
}

// Transferencias is the consolidated transfer report: every export oldest
// first, no cutoff, branch 98 kept as "F98", reference backfill enabled.
func Transferencias() Report {
	return Report{
		Name:       "transferencias",
		InputDir:   ".",
		Extensions: []string{".xls", ".xlsx"},
		AllFiles:   true,
		SkipRows:   2,
		ColStart:   1,
		ColEnd:     36,
		Layout: Layout{
			Note:        0,
			Destination: -1, // carried by "Filial:" marker rows
			IssueDate:   2,
			Control:     3,
			EntryDate:   -1,
			Total:       4,
			Origin:      5,
		},
		UrgencyDays:  10,
		KeepSentinel: true,
		Reconcile:    true,
		ReferenceDir: "referencias",
		ChunkSize:    5000,
		Worksheets: map[model.Bucket]string{
			model.BucketTransfer:     "transf_total",
			model.BucketDistribution: "dist_total",
		},
		TransferColumns: []model.Column{
			model.ColOrigin, model.ColIssueDate, model.ColControl,
			model.ColTotal, model.ColDestination, model.ColSupplier,
			model.ColIssueDays, model.ColRefIssue,
		},
		DistributionColumns: []model.Column{
			model.ColOrigin, model.ColIssueDate, model.ColControl,
			model.ColTotal, model.ColDestination, model.ColSupplier,
			model.ColIssueDays,
		},
	}
}

// Preset returns the named report preset.
func Preset(name string) (Report, error) {
	switch name {
	case "pendencias":
		return Pendencias(), nil
	case "transferencias":
		return Transferencias(), nil
	}
	return Report{}, fmt.Errorf("unknown report %q (want pendencias or transferencias)", name)
}

// Overlay applies YAML overrides from path onto r. Absent keys keep the
// preset value.
func Overlay(path string, r *Report) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading report config: %w", err)
	}
	if err := yaml.Unmarshal(data, r); err != nil {
		return fmt.Errorf("parsing report config: %w", err)
	}
	return nil
}

// Columns returns the column projection for a bucket.
func (r Report) Columns(b model.Bucket) []model.Column {
	if b == model.BucketDistribution {
		return r.DistributionColumns
	}
	return r.TransferColumns
}

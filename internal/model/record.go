package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Record is one transaction line parsed from a raw ERP export.
// String fields hold the canonicalized form ("F3" rather than "F03 - MATRIZ").
type Record struct {
	Note          string          // note/document id ("Nota")
	Control       string          // control number ("Controle"); never empty in output
	IssueDate     time.Time       // "Emissão"
	IssueDays     int             // days pending since issue ("Pendente a")
	EntryDate     time.Time       // "Entrada"; zero when the report variant lacks it
	EntryDays     int             // days pending since entry ("Pendente as")
	Origin        string          // origin branch ("Filial Origem")
	Destination   string          // destination branch ("Filial Destino")
	Supplier      string          // supplier code ("Fornecedor")
	SupplierKnown bool            // false when the supplier text did not match F<n> form
	Total         decimal.Decimal // "Valor Total"; zero when the variant lacks it
	RefIssue      string          // issue date backfilled from a branch reference table
	Justification string          // blank; user-editable on the published sheet
}

// Bucket names a publishing destination for partitioned records.
type Bucket string

const (
	// BucketTransfer holds records whose supplier is an internal branch.
	BucketTransfer Bucket = "transfer"
	// BucketDistribution holds everything else (external suppliers).
	BucketDistribution Bucket = "distribution"
)

// Table is an ordered set of records bound for one worksheet.
type Table struct {
	Bucket  Bucket
	Columns []Column
	Records []Record
}

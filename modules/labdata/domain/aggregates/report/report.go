package report

import (
	"time"

	"github.com/google/uuid"
)

// UploadMeta is what the upload collaborator knows about a file before any
// row has been parsed: who it belongs to, how it was classified, and the
// study the laboratory attributed it to.
type UploadMeta struct {
	TenantID          uuid.UUID
	Filename          string
	Classification    string
	SubClassification string
	Provider          string
	ReportName        string
	StartDate         time.Time
	EndDate           time.Time
}

// Row is one normalized spreadsheet row. Numeric fields are pointers because
// laboratories report non-detects and omissions as blanks.
type Row struct {
	SiteID         string
	SubstanceName  string
	SubstanceCode  string
	LabID          string
	SampleCode     string
	Method         string
	AnalysisDate   *time.Time
	Result         *float64
	Units          string
	DetectionLimit *float64
	Matrix         string
	LabSampleID    string
}

// EnrichedRow carries the fields derived from the sample code.
type EnrichedRow struct {
	Row
	WellID     *string
	Depth      *float64
	SampleDate time.Time
}

// Study is one laboratory engagement producing one or more documents.
type Study struct {
	ID         string
	TenantID   uuid.UUID
	Provider   string
	ReportName string
	StartDate  time.Time
	EndDate    time.Time
}

// Document is one source file attributed to a study.
type Document struct {
	ID                string
	StudyID           string
	TenantID          uuid.UUID
	Filename          string
	Classification    string
	SubClassification string
}

// StudyWell associates a study with a physical well. WellID may be nil when
// the code carried no recognizable well segment; the association row still
// exists so samples always have a parent.
type StudyWell struct {
	ID       string
	StudyID  string
	TenantID uuid.UUID
	WellID   *string
}

// Sample is one physical sampling event tied to a StudyWell.
type Sample struct {
	ID          string
	StudyWellID string
	TenantID    uuid.UUID
	SampleCode  string
	SampleDate  time.Time
	Depth       *float64
	Matrix      string
	LabSampleID string
}

// Concentration is one substance measurement on a sample. SourceDocument
// records the origin filename; the orphan collector scopes its first pass
// on it.
type Concentration struct {
	ID             string
	SampleID       string
	TenantID       uuid.UUID
	SubstanceID    string
	SubstanceName  string
	Method         string
	AnalysisDate   *time.Time
	Result         *float64
	Units          string
	DetectionLimit *float64
	LabID          string
	SourceDocument string
}

// EntitySet is the deduplicated output of extraction, each slice internally
// duplicate-free and ordered by first appearance.
type EntitySet struct {
	Studies        []Study
	Documents      []Document
	StudyWells     []StudyWell
	Samples        []Sample
	Concentrations []Concentration
}

// KindCounts reports row counts per entity kind. It serves as the merge
// result (rows affected), the purge result (rows deleted) and the table
// snapshot used by tests and the CLI summary.
type KindCounts struct {
	Studies        int64
	Documents      int64
	StudyWells     int64
	Samples        int64
	Concentrations int64
}

func (c *KindCounts) Total() int64 {
	return c.Studies + c.Documents + c.StudyWells + c.Samples + c.Concentrations
}

// IngestResult is the caller-facing outcome of one document ingestion.
// Deleted and Inserted count Concentration rows: the document's prior
// measurements are always fully removed and reinserted, while the parent
// kinds converge to identical rows via their content-addressed identifiers.
type IngestResult struct {
	RowsParsed int
	Deleted    int64
	Inserted   int64
	Errors     []string
}

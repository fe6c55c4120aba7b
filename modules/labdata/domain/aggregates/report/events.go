package report

import "github.com/google/uuid"

// IngestedEvent is published after an ingestion transaction commits. The
// search-index collaborator resynchronizes the document on it.
type IngestedEvent struct {
	Meta   UploadMeta
	Result *IngestResult
}

func NewIngestedEvent(meta UploadMeta, result *IngestResult) *IngestedEvent {
	return &IngestedEvent{Meta: meta, Result: result}
}

// PurgedEvent is published after a document-delete transaction commits.
type PurgedEvent struct {
	TenantID uuid.UUID
	Filename string
	Counts   *KindCounts
}

func NewPurgedEvent(tenantID uuid.UUID, filename string, counts *KindCounts) *PurgedEvent {
	return &PurgedEvent{TenantID: tenantID, Filename: filename, Counts: counts}
}

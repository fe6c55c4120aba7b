package services

import (
	"context"
	"strings"
	"sync"

	"github.com/hydrosense/hydrosense/modules/labdata/domain/aggregates/report"
)

// ClassificationLabData marks uploads the laboratory pipeline claims.
const ClassificationLabData = "lab-data"

// DocumentProcessor is a capability-checked handler for one class of
// uploaded documents.
type DocumentProcessor interface {
	// CanProcess reports whether this processor claims the document based on
	// its classification tags alone; it must not inspect the payload.
	CanProcess(meta report.UploadMeta) bool
	Process(ctx context.Context, meta report.UploadMeta, data []byte) (*report.IngestResult, error)
}

// ProcessorService dispatches an uploaded document to the first registered
// processor that claims it. No claim is a valid outcome, not an error: the
// upload is stored but needs no pipeline work.
type ProcessorService struct {
	registry *processorRegistry
}

type processorRegistry struct {
	mu         sync.RWMutex
	processors []DocumentProcessor
}

func NewProcessorService(processors ...DocumentProcessor) *ProcessorService {
	return &ProcessorService{registry: &processorRegistry{processors: processors}}
}

func (s *ProcessorService) Register(p DocumentProcessor) {
	s.registry.mu.Lock()
	defer s.registry.mu.Unlock()
	s.registry.processors = append(s.registry.processors, p)
}

func (s *ProcessorService) Process(ctx context.Context, meta report.UploadMeta, data []byte) (*report.IngestResult, error) {
	s.registry.mu.RLock()
	processors := make([]DocumentProcessor, len(s.registry.processors))
	copy(processors, s.registry.processors)
	s.registry.mu.RUnlock()

	for _, p := range processors {
		if p.CanProcess(meta) {
			return p.Process(ctx, meta, data)
		}
	}
	return &report.IngestResult{}, nil
}

// LabSheetProcessor claims uploads classified as laboratory data and runs
// them through the ingestion pipeline.
type LabSheetProcessor struct {
	ingest *IngestService
}

func NewLabSheetProcessor(ingest *IngestService) *LabSheetProcessor {
	return &LabSheetProcessor{ingest: ingest}
}

func (p *LabSheetProcessor) CanProcess(meta report.UploadMeta) bool {
	return strings.EqualFold(meta.Classification, ClassificationLabData)
}

func (p *LabSheetProcessor) Process(ctx context.Context, meta report.UploadMeta, data []byte) (*report.IngestResult, error) {
	return p.ingest.Ingest(ctx, meta, data)
}

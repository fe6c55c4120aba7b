package report

import "context"

// Repository is the transactional store behind the merge engine and the
// orphan collector. Implementations pull the active transaction from
// context; callers own transaction boundaries.
type Repository interface {
	// Merge upserts the set kind by kind in parent-to-child order. Parent
	// kinds update their mutable fields on id conflict; Concentration is
	// insert-only with conflict-ignore. Returns rows affected per kind.
	Merge(ctx context.Context, set *EntitySet) (*KindCounts, error)

	// PurgeDocument removes the concentrations owned by the named source
	// document, then sweeps newly childless parents bottom-up. Returns rows
	// deleted per kind.
	PurgeDocument(ctx context.Context, filename string) (*KindCounts, error)

	// Counts reports the current number of rows per kind for the tenant.
	Counts(ctx context.Context) (*KindCounts, error)

	// ConcentrationsByDocument lists the measurements owned by the named
	// source document, ordered by sample then substance.
	ConcentrationsByDocument(ctx context.Context, filename string) ([]Concentration, error)

	// SamplesByWell lists the samples attached to a study well, newest first.
	SamplesByWell(ctx context.Context, studyWellID string) ([]Sample, error)
}

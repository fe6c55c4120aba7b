package report

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Identifiers are content-addressed: a sha256 over the ordered business-key
// tuple, truncated to 16 hex characters. Truncation to 64 bits is an
// accepted collision risk at realistic cardinalities, not a cryptographic
// guarantee. Re-uploading an unchanged document therefore derives the exact
// ids already stored, which is what makes the merge engine idempotent
// without a lookup before insert.
//
// The serialization rules below are load-bearing: dates render as ISO
// yyyy-mm-dd, nil/zero values render as the empty string, and fields join
// with "|". Changing any of them forks previously merged entities into
// duplicates.

const idSeparator = "|"

func deriveID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, idSeparator)))
	return hex.EncodeToString(sum[:])[:16]
}

func dateKey(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func optionalKey(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func StudyID(provider, reportName string, start, end time.Time) string {
	return deriveID(provider, reportName, dateKey(start), dateKey(end))
}

func DocumentID(studyID, filename string) string {
	return deriveID(studyID, filename)
}

func StudyWellID(studyID string, wellID *string) string {
	return deriveID(studyID, optionalKey(wellID))
}

func SampleID(sampleCode, studyWellID string) string {
	return deriveID(sampleCode, studyWellID)
}

func ConcentrationID(sampleID, substanceID, method string) string {
	return deriveID(sampleID, substanceID, method)
}

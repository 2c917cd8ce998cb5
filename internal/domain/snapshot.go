package domain

import "time"

// SnapshotSchemaVersion identifies the merge-compatible snapshot layout.
// Any structural change to SyncSnapshot must bump it.
const SnapshotSchemaVersion = "v1"

// SyncSnapshot is the full export of one device's data.
// It holds exactly one item per normalized term and one log entry per ID.
type SyncSnapshot struct {
	SchemaVersion string            `json:"schema_version"`
	ExportedAt    time.Time         `json:"exported_at"`
	Vocabs        []*VocabularyItem `json:"vocabs"`
	ReviewLogs    []*ReviewLogEntry `json:"review_logs"`
}

// NewSyncSnapshot wraps items and logs in a snapshot of the current schema.
func NewSyncSnapshot(vocabs []*VocabularyItem, logs []*ReviewLogEntry, exportedAt time.Time) *SyncSnapshot {
	if vocabs == nil {
		vocabs = []*VocabularyItem{}
	}
	if logs == nil {
		logs = []*ReviewLogEntry{}
	}
	return &SyncSnapshot{
		SchemaVersion: SnapshotSchemaVersion,
		ExportedAt:    exportedAt,
		Vocabs:        vocabs,
		ReviewLogs:    logs,
	}
}

// ConflictWinner names the side kept when a merge conflict is detected.
type ConflictWinner string

// Conflict winners.
const (
	WinnerLocal    ConflictWinner = "local"
	WinnerIncoming ConflictWinner = "incoming"
)

// MergeConflict describes two versions of the same term that carry the same
// UpdatedAt but different content.
type MergeConflict struct {
	TermNormalized    string         `json:"term_normalized"`
	LocalUpdatedAt    time.Time      `json:"local_updated_at"`
	IncomingUpdatedAt time.Time      `json:"incoming_updated_at"`
	Winner            ConflictWinner `json:"winner"`
}

// MergeReport summarizes a single merge. It is returned, never persisted.
type MergeReport struct {
	AddedVocabs   int             `json:"added_vocabs"`
	UpdatedVocabs int             `json:"updated_vocabs"`
	AddedLogs     int             `json:"added_logs"`
	SkippedVocabs int             `json:"skipped_vocabs"`
	SkippedLogs   int             `json:"skipped_logs"`
	Conflicts     []MergeConflict `json:"conflicts"`
}

// Changed reports whether applying the merge modifies the local data.
func (r MergeReport) Changed() bool {
	return r.AddedVocabs > 0 || r.UpdatedVocabs > 0 || r.AddedLogs > 0
}

package domain

import (
	"context"
	"io"
)

// HistoryRepository persists run summaries, most recent first.
type HistoryRepository interface {
	Append(ctx context.Context, entry HistoryEntry) error
	List(ctx context.Context) ([]HistoryEntry, error)
}

// SnapshotReader turns binary spreadsheets into record groups.
// Grouped reads must return records carrying the key field, or fail.
type SnapshotReader interface {
	ReadSingle(ctx context.Context, r io.Reader) (RecordGroup, error)
	ReadGroups(ctx context.Context, r io.Reader, targets []string) (map[string]RecordGroup, error)

	// Pair variants read the old and new snapshot concurrently and wait for both.
	ReadSinglePair(ctx context.Context, oldSrc, newSrc io.Reader) (RecordGroup, RecordGroup, error)
	ReadGroupsPair(ctx context.Context, oldSrc, newSrc io.Reader, targets []string) (map[string]RecordGroup, map[string]RecordGroup, error)
}

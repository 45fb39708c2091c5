package repository

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locvowork/idpel_checker/internal/domain"
)

func TestHistoryRepository_EmptyWhenMissing(t *testing.T) {
	repo := NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), 0)

	entries, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestHistoryRepository_MostRecentFirstAndCapped(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "history.json")
	repo := NewHistoryRepository(path, 3)

	for i := 1; i <= 5; i++ {
		require.NoError(t, repo.Append(ctx, domain.HistoryEntry{
			SourceNameOld:  fmt.Sprintf("old_%d.xlsx", i),
			SourceNameNew:  fmt.Sprintf("new_%d.xlsx", i),
			TotalProcessed: i * 10,
			NewDataFound:   i,
		}))
	}

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "new_5.xlsx", entries[0].SourceNameNew)
	assert.Equal(t, "new_4.xlsx", entries[1].SourceNameNew)
	assert.Equal(t, "new_3.xlsx", entries[2].SourceNameNew)

	for _, e := range entries {
		_, err := uuid.Parse(e.ID)
		assert.NoError(t, err, "id %q", e.ID)
		assert.False(t, e.Timestamp.IsZero())
	}

	// a fresh repository on the same file sees the same history
	reopened, err := NewHistoryRepository(path, 3).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries, reopened)
}

func TestHistoryRepository_KeepsGivenFields(t *testing.T) {
	ctx := context.Background()
	repo := NewHistoryRepository(filepath.Join(t.TempDir(), "history.json"), 0)

	at := time.Date(2025, 9, 1, 8, 0, 0, 0, time.UTC)
	entry := domain.HistoryEntry{
		ID:                    "run-1",
		Timestamp:             at,
		SourceNameOld:         "agustus.xlsx",
		SourceNameNew:         "september.xlsx",
		TotalProcessed:        120,
		NewDataFound:          7,
		ProcessingTimeSeconds: 1.25,
		ProcessedGroupNames:   []string{"DMP", "NGL"},
	}
	require.NoError(t, repo.Append(ctx, entry))

	entries, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestHistoryRepository_JSONShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	repo := NewHistoryRepository(path, 0)
	require.NoError(t, repo.Append(context.Background(), domain.HistoryEntry{
		SourceNameOld:       "a.xlsx",
		ProcessedGroupNames: []string{"DMP"},
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, key := range []string{`"id"`, `"timestamp"`, `"sourceNameOld"`, `"sourceNameNew"`,
		`"totalProcessed"`, `"newDataFound"`, `"processingTimeSeconds"`, `"processedGroupNames"`} {
		assert.Contains(t, string(data), key)
	}
}

func TestHistoryRepository_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	repo := NewHistoryRepository(path, 0)
	_, err := repo.List(context.Background())
	assert.Error(t, err)
	assert.Error(t, repo.Append(context.Background(), domain.HistoryEntry{}))
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/idpel_checker/internal/domain"
)

// DefaultHistoryLimit is how many runs the history keeps.
const DefaultHistoryLimit = 20

type historyRepository struct {
	mu    sync.Mutex
	path  string
	limit int
	now   func() time.Time
}

// NewHistoryRepository creates a HistoryRepository stored as a JSON array in path.
// A limit <= 0 means DefaultHistoryLimit.
func NewHistoryRepository(path string, limit int) domain.HistoryRepository {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &historyRepository{path: path, limit: limit, now: time.Now}
}

// Append stores entry as the most recent run and drops the oldest runs beyond
// the limit. A missing ID or timestamp is filled in.
func (r *historyRepository) Append(ctx context.Context, entry domain.HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now().UTC()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := r.load()
	if err != nil {
		return err
	}

	entries = append([]domain.HistoryEntry{entry}, entries...)
	if len(entries) > r.limit {
		entries = entries[:r.limit]
	}
	return r.save(entries)
}

// List returns every stored run, most recent first.
func (r *historyRepository) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load()
}

func (r *historyRepository) load() ([]domain.HistoryEntry, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []domain.HistoryEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	if len(data) == 0 {
		return []domain.HistoryEntry{}, nil
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding history %s: %w", r.path, err)
	}
	return entries, nil
}

// save writes to a temp file in the same directory and renames it over the
// history so readers never see a partial file.
func (r *historyRepository) save(entries []domain.HistoryEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding history: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating history dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".history-*.json")
	if err != nil {
		return fmt.Errorf("creating temp history: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing history: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing history: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		return fmt.Errorf("replacing history: %w", err)
	}
	return nil
}

package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/locvowork/idpel_checker/internal/domain"
	"github.com/locvowork/idpel_checker/internal/logger"
)

// Source is one uploaded snapshot.
type Source struct {
	Name   string
	Reader io.Reader
}

// CheckReport is the outcome of one check run.
type CheckReport struct {
	Outcome        domain.Outcome
	SourceNameOld  string
	SourceNameNew  string
	ProcessingTime time.Duration
	// HistoryID is empty when the run could not be recorded.
	HistoryID string
}

// CheckServiceConfig holds the run settings of a CheckService.
type CheckServiceConfig struct {
	Targets     []string
	ReadTimeout time.Duration
}

// CheckService runs the read, diff, record and report flow. Only one
// operation runs at a time; overlapping calls get domain.ErrCheckInProgress.
type CheckService struct {
	reader  domain.SnapshotReader
	engine  *DiffEngine
	builder *ReportBuilder
	history domain.HistoryRepository
	cfg     CheckServiceConfig

	mu   sync.Mutex
	busy bool
}

// NewCheckService creates a CheckService. history may be nil.
func NewCheckService(reader domain.SnapshotReader, engine *DiffEngine, builder *ReportBuilder, history domain.HistoryRepository, cfg CheckServiceConfig) *CheckService {
	return &CheckService{
		reader:  reader,
		engine:  engine,
		builder: builder,
		history: history,
		cfg:     cfg,
	}
}

func (s *CheckService) acquire() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return domain.ErrCheckInProgress
	}
	s.busy = true
	return nil
}

func (s *CheckService) release() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *CheckService) readContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.ReadTimeout > 0 {
		return context.WithTimeout(ctx, s.cfg.ReadTimeout)
	}
	return context.WithCancel(ctx)
}

// CheckSingle compares the first sheet of two snapshots.
func (s *CheckService) CheckSingle(ctx context.Context, oldSrc, newSrc Source) (*CheckReport, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	start := time.Now()
	logger.InfoLog(ctx, "single check: %s vs %s", oldSrc.Name, newSrc.Name)

	readCtx, cancel := s.readContext(ctx)
	defer cancel()
	oldGroup, newGroup, err := s.reader.ReadSinglePair(readCtx, oldSrc.Reader, newSrc.Reader)
	if err != nil {
		return nil, fmt.Errorf("reading snapshots: %w", err)
	}
	if oldGroup.Len() == 0 {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("old file %q is empty or invalid", oldSrc.Name)}
	}
	if newGroup.Len() == 0 {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("new file %q is empty or invalid", newSrc.Name)}
	}

	result, err := s.engine.Diff(ctx, oldGroup, newGroup)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, runID, start, oldSrc, newSrc, result), nil
}

// CheckMulti compares the target sheets of two snapshots.
func (s *CheckService) CheckMulti(ctx context.Context, oldSrc, newSrc Source) (*CheckReport, error) {
	if err := s.acquire(); err != nil {
		return nil, err
	}
	defer s.release()

	runID := uuid.NewString()
	ctx = logger.WithRun(ctx, runID)
	start := time.Now()
	logger.InfoLog(ctx, "multi-sheet check: %s vs %s, targets %v", oldSrc.Name, newSrc.Name, s.cfg.Targets)

	readCtx, cancel := s.readContext(ctx)
	defer cancel()
	oldGroups, newGroups, err := s.reader.ReadGroupsPair(readCtx, oldSrc.Reader, newSrc.Reader, s.cfg.Targets)
	if err != nil {
		return nil, fmt.Errorf("reading snapshots: %w", err)
	}
	if !anyTargetHasData(s.cfg.Targets, oldGroups, newGroups) {
		return nil, &domain.ValidationError{
			Field:  "targets",
			Reason: fmt.Sprintf("no target sheet with data; expected one of %v", s.cfg.Targets),
		}
	}

	result, err := s.engine.DiffAll(ctx, oldGroups, newGroups, s.cfg.Targets)
	if err != nil {
		return nil, err
	}
	return s.finish(ctx, runID, start, oldSrc, newSrc, result), nil
}

func anyTargetHasData(targets []string, groups ...map[string]domain.RecordGroup) bool {
	for _, name := range targets {
		for _, g := range groups {
			if g[name].Len() > 0 {
				return true
			}
		}
	}
	return false
}

// finish records the run in the history. Recording is best effort.
func (s *CheckService) finish(ctx context.Context, runID string, start time.Time, oldSrc, newSrc Source, outcome domain.Outcome) *CheckReport {
	report := &CheckReport{
		Outcome:        outcome,
		SourceNameOld:  oldSrc.Name,
		SourceNameNew:  newSrc.Name,
		ProcessingTime: time.Since(start),
	}
	processed, fresh := domain.Totals(outcome)

	if s.history != nil {
		entry := domain.HistoryEntry{
			ID:                    runID,
			Timestamp:             time.Now().UTC(),
			SourceNameOld:         oldSrc.Name,
			SourceNameNew:         newSrc.Name,
			TotalProcessed:        processed,
			NewDataFound:          fresh,
			ProcessingTimeSeconds: report.ProcessingTime.Seconds(),
			ProcessedGroupNames:   domain.ProcessedGroupNames(outcome),
		}
		if err := s.history.Append(ctx, entry); err != nil {
			logger.ErrorLog(ctx, "failed to record run in history: %v", err)
		} else {
			report.HistoryID = runID
		}
	}

	logger.InfoLog(ctx, "check done in %s: %d records, %d new", report.ProcessingTime, processed, fresh)
	return report
}

// Download builds the report of a finished check and writes it into dir.
// It returns the written path and the artifact.
func (s *CheckService) Download(ctx context.Context, report *CheckReport, layout Layout, dir string) (string, *Artifact, error) {
	if report == nil {
		return "", nil, &domain.ValidationError{Reason: "no check result to download"}
	}
	if err := s.acquire(); err != nil {
		return "", nil, err
	}
	defer s.release()

	art, err := s.builder.Build(ctx, layout, report.Outcome)
	if err != nil {
		return "", nil, err
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating output dir: %w", err)
	}
	path := filepath.Join(dir, art.FileName)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return "", nil, fmt.Errorf("writing %s: %w", path, err)
	}

	logger.InfoLog(ctx, "report written to %s", path)
	return path, art, nil
}

// History returns the recorded runs, most recent first.
func (s *CheckService) History(ctx context.Context) ([]domain.HistoryEntry, error) {
	if s.history == nil {
		return []domain.HistoryEntry{}, nil
	}
	return s.history.List(ctx)
}

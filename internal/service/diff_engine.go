package service

import (
	"context"
	"fmt"

	"github.com/locvowork/idpel_checker/internal/domain"
	"github.com/locvowork/idpel_checker/internal/logger"
)

// DefaultKeyField is the identifier column of the customer snapshots.
const DefaultKeyField = "IDPEL"

// DiffEngine compares an old and a new snapshot by key field.
type DiffEngine struct {
	keyField string
}

// NewDiffEngine creates a DiffEngine comparing records on keyField.
func NewDiffEngine(keyField string) *DiffEngine {
	if keyField == "" {
		keyField = DefaultKeyField
	}
	return &DiffEngine{keyField: keyField}
}

// KeyField returns the field used for comparison.
func (e *DiffEngine) KeyField() string {
	return e.keyField
}

// ============================================================================
// Single group
// ============================================================================

// Diff flags every record of newGroup whose key is not among oldGroup's keys,
// then stable-partitions the records so that all new ones come first.
func (e *DiffEngine) Diff(ctx context.Context, oldGroup, newGroup domain.RecordGroup) (*domain.DiffResult, error) {
	if err := e.validate(oldGroup); err != nil {
		return nil, err
	}
	if err := e.validate(newGroup); err != nil {
		return nil, err
	}

	result := &domain.DiffResult{
		KeyField: e.keyField,
		Headers:  newGroup.Schema(),
		All:      []domain.AnnotatedRecord{},
		NewData:  []domain.AnnotatedRecord{},
	}
	if newGroup.Len() == 0 {
		return result, nil
	}

	oldKeys := buildKeySet(oldGroup.Records, e.keyField)

	fresh := make([]domain.AnnotatedRecord, 0, newGroup.Len())
	var seen []domain.AnnotatedRecord
	for _, rec := range newGroup.Records {
		_, known := oldKeys[domain.NormalizeKey(rec, e.keyField)]
		annotated := domain.AnnotatedRecord{
			Record: rec.Clone(),
			IsNew:  !known,
			Group:  newGroup.Name,
		}
		if annotated.IsNew {
			fresh = append(fresh, annotated)
		} else {
			seen = append(seen, annotated)
		}
	}

	result.All = append(make([]domain.AnnotatedRecord, 0, newGroup.Len()), fresh...)
	result.All = append(result.All, seen...)
	result.NewData = result.All[:len(fresh):len(fresh)]
	result.TotalAll = len(result.All)
	result.TotalNew = len(fresh)

	logger.DebugLog(ctx, "diff %q: %d records, %d new", newGroup.Name, result.TotalAll, result.TotalNew)
	return result, nil
}

// validate rejects a non-empty group whose schema lacks the key field.
// Rows that individually miss the key are tolerated.
func (e *DiffEngine) validate(g domain.RecordGroup) error {
	if g.Len() == 0 {
		return nil
	}
	if !g.HasField(e.keyField) {
		return &domain.ValidationError{
			Group:  g.Name,
			Field:  e.keyField,
			Reason: "key column not found",
		}
	}
	return nil
}

// buildKeySet creates index: normalized key -> present
func buildKeySet(records []domain.Record, keyField string) map[string]struct{} {
	set := make(map[string]struct{}, len(records))
	for _, r := range records {
		set[domain.NormalizeKey(r, keyField)] = struct{}{}
	}
	return set
}

// ============================================================================
// Multiple groups
// ============================================================================

// DiffAll diffs every target group in order. A group missing from an input is
// treated as empty; a group empty on both sides is marked empty and skipped.
// Repeated target names are diffed once, at their first position.
func (e *DiffEngine) DiffAll(ctx context.Context, oldGroups, newGroups map[string]domain.RecordGroup, targets []string) (*domain.MultiGroupDiffResult, error) {
	targets = uniqueNames(targets)
	result := &domain.MultiGroupDiffResult{
		KeyField:        e.keyField,
		Targets:         targets,
		Groups:          make(map[string]*domain.GroupDiffResult, len(targets)),
		ProcessedGroups: []string{},
	}

	for _, name := range targets {
		oldGroup := lookupGroup(oldGroups, name)
		newGroup := lookupGroup(newGroups, name)

		if oldGroup.Len() == 0 && newGroup.Len() == 0 {
			result.Groups[name] = &domain.GroupDiffResult{
				DiffResult: domain.DiffResult{
					KeyField: e.keyField,
					All:      []domain.AnnotatedRecord{},
					NewData:  []domain.AnnotatedRecord{},
				},
				Name:   name,
				Status: domain.GroupStatusEmpty,
			}
			logger.DebugLog(ctx, "group %q is empty in both snapshots", name)
			continue
		}

		diff, err := e.Diff(ctx, oldGroup, newGroup)
		if err != nil {
			return nil, fmt.Errorf("diff group %s: %w", name, err)
		}

		result.Groups[name] = &domain.GroupDiffResult{
			DiffResult: *diff,
			Name:       name,
			Status:     domain.GroupStatusProcessed,
		}
		result.TotalNewAll += diff.TotalNew
		result.TotalProcessedAll += diff.TotalAll
		result.ProcessedGroups = append(result.ProcessedGroups, name)
	}

	logger.InfoLog(ctx, "multi-group diff: %d/%d groups processed, %d records, %d new",
		len(result.ProcessedGroups), len(targets), result.TotalProcessedAll, result.TotalNewAll)
	return result, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// lookupGroup returns the named group, or an empty group carrying the name.
func lookupGroup(groups map[string]domain.RecordGroup, name string) domain.RecordGroup {
	if g, ok := groups[name]; ok {
		if g.Name == "" {
			g.Name = name
		}
		return g
	}
	return domain.RecordGroup{Name: name}
}

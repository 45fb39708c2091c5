package domain

import "time"

// ==================== SNAPSHOT RECORDS ====================

// Record is one spreadsheet row: an ordered set of field names and their values.
type Record struct {
	Fields []string               `json:"fields"`
	Values map[string]interface{} `json:"values"`
}

// NewRecord builds a Record from alternating field/value pairs.
// It panics on an odd number of arguments or a non-string field name.
func NewRecord(pairs ...interface{}) Record {
	if len(pairs)%2 != 0 {
		panic("domain.NewRecord: odd number of arguments")
	}
	r := Record{
		Fields: make([]string, 0, len(pairs)/2),
		Values: make(map[string]interface{}, len(pairs)/2),
	}
	for i := 0; i < len(pairs); i += 2 {
		name := pairs[i].(string)
		if _, dup := r.Values[name]; !dup {
			r.Fields = append(r.Fields, name)
		}
		r.Values[name] = pairs[i+1]
	}
	return r
}

// Get returns the value of a field and whether the field is present.
func (r Record) Get(field string) (interface{}, bool) {
	v, ok := r.Values[field]
	return v, ok
}

// Clone returns a copy that shares no maps or slices with r.
func (r Record) Clone() Record {
	c := Record{
		Fields: make([]string, len(r.Fields)),
		Values: make(map[string]interface{}, len(r.Values)),
	}
	copy(c.Fields, r.Fields)
	for k, v := range r.Values {
		c.Values[k] = v
	}
	return c
}

// RecordGroup is a named collection of records sharing one schema, e.g. one sheet.
type RecordGroup struct {
	Name    string   `json:"name"`
	Headers []string `json:"headers"`
	Records []Record `json:"records"`
}

// Len returns the number of records in the group.
func (g RecordGroup) Len() int {
	return len(g.Records)
}

// Schema returns the declared headers followed by any other record fields
// in first-seen order.
func (g RecordGroup) Schema() []string {
	seen := make(map[string]bool, len(g.Headers))
	fields := make([]string, 0, len(g.Headers))
	for _, h := range g.Headers {
		if !seen[h] {
			seen[h] = true
			fields = append(fields, h)
		}
	}
	for _, r := range g.Records {
		for _, f := range r.Fields {
			if !seen[f] {
				seen[f] = true
				fields = append(fields, f)
			}
		}
	}
	return fields
}

// HasField reports whether the group schema contains field.
func (g RecordGroup) HasField(field string) bool {
	for _, h := range g.Schema() {
		if h == field {
			return true
		}
	}
	return false
}

// ==================== DIFF RESULTS ====================

// AnnotatedRecord is a record of the new snapshot tagged with its novelty.
// Only the diff engine creates these.
type AnnotatedRecord struct {
	Record
	IsNew bool   `json:"is_new"`
	Group string `json:"group,omitempty"`
}

// DiffResult holds the partitioned outcome of diffing one group.
// All lists new records first, each class in original order; NewData is the new prefix.
type DiffResult struct {
	KeyField string            `json:"key_field"`
	Headers  []string          `json:"headers"`
	All      []AnnotatedRecord `json:"all_data"`
	NewData  []AnnotatedRecord `json:"new_data"`
	TotalAll int               `json:"total_all"`
	TotalNew int               `json:"total_new"`
}

// TotalOld returns the number of records that already existed in the old snapshot.
func (d *DiffResult) TotalOld() int {
	return d.TotalAll - d.TotalNew
}

func (d *DiffResult) outcome() {}

// GroupStatus tells whether a target group had any input.
type GroupStatus string

const (
	GroupStatusProcessed GroupStatus = "processed"
	GroupStatusEmpty     GroupStatus = "empty"
)

// GroupDiffResult is the diff of one named group in multi-group mode.
type GroupDiffResult struct {
	DiffResult
	Name   string      `json:"name"`
	Status GroupStatus `json:"status"`
}

// MultiGroupDiffResult aggregates per-group results over a fixed target list.
type MultiGroupDiffResult struct {
	KeyField          string                      `json:"key_field"`
	Targets           []string                    `json:"targets"`
	Groups            map[string]*GroupDiffResult `json:"sheet_results"`
	TotalNewAll       int                         `json:"total_new_all"`
	TotalProcessedAll int                         `json:"total_processed_all"`
	ProcessedGroups   []string                    `json:"processed_sheets"`
}

// Group returns the result for name, or nil when name was not a target.
func (m *MultiGroupDiffResult) Group(name string) *GroupDiffResult {
	return m.Groups[name]
}

func (m *MultiGroupDiffResult) outcome() {}

// Outcome is implemented by *DiffResult and *MultiGroupDiffResult.
type Outcome interface {
	outcome()
}

// Totals returns the processed and new record counts of any outcome.
func Totals(o Outcome) (processed, fresh int) {
	if IsNilOutcome(o) {
		return 0, 0
	}
	switch v := o.(type) {
	case *DiffResult:
		return v.TotalAll, v.TotalNew
	case *MultiGroupDiffResult:
		return v.TotalProcessedAll, v.TotalNewAll
	}
	return 0, 0
}

// IsNilOutcome reports whether o is nil or a typed nil result.
func IsNilOutcome(o Outcome) bool {
	switch v := o.(type) {
	case nil:
		return true
	case *DiffResult:
		return v == nil
	case *MultiGroupDiffResult:
		return v == nil
	}
	return false
}

// ProcessedGroupNames returns the processed groups of a multi-group outcome, nil otherwise.
func ProcessedGroupNames(o Outcome) []string {
	if m, ok := o.(*MultiGroupDiffResult); ok && m != nil {
		return m.ProcessedGroups
	}
	return nil
}

// ==================== HISTORY ====================

// HistoryEntry is the compact summary of one check run.
type HistoryEntry struct {
	ID                    string    `json:"id"`
	Timestamp             time.Time `json:"timestamp"`
	SourceNameOld         string    `json:"sourceNameOld"`
	SourceNameNew         string    `json:"sourceNameNew"`
	TotalProcessed        int       `json:"totalProcessed"`
	NewDataFound          int       `json:"newDataFound"`
	ProcessingTimeSeconds float64   `json:"processingTimeSeconds"`
	ProcessedGroupNames   []string  `json:"processedGroupNames"`
}

package profile

import "strings"

// Anomaly records load-time repairs applied to a profile.
type Anomaly uint8

const (
	FileReset Anomaly = 1 << iota
	CompleteReset
	PartialReset
	ColumnOrderReset
	MetadataReset
)

// Keys returns the anomaly keys in report order. Partial and column-order resets
// collapse into partialAndColumnOrderReset.
func (a Anomaly) Keys() []string {
	var keys []string
	if a&FileReset != 0 {
		keys = append(keys, "fileReset")
	}
	if a&CompleteReset != 0 {
		keys = append(keys, "completeReset")
	}
	switch {
	case a&PartialReset != 0 && a&ColumnOrderReset != 0:
		keys = append(keys, "partialAndColumnOrderReset")
	case a&PartialReset != 0:
		keys = append(keys, "partialReset")
	case a&ColumnOrderReset != 0:
		keys = append(keys, "columnOrderReset")
	}
	if a&MetadataReset != 0 {
		keys = append(keys, "metadataReset")
	}
	return keys
}

var anomalyMessages = map[string]string{
	"fileReset":                  "Settings file could not be read and was reset to defaults",
	"completeReset":              "All settings reset to defaults",
	"partialReset":               "Some settings reset to defaults",
	"columnOrderReset":           "Column announcement order reset to defaults",
	"partialAndColumnOrderReset": "Some settings, including column announcement order reset to defaults",
	"metadataReset":              "Metadata streaming configuration reset to defaults",
}

// Message is the user-facing description of a.
func (a Anomaly) Message() string {
	keys := a.Keys()
	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, anomalyMessages[key])
	}
	return strings.Join(parts, "; ")
}

func (a Anomaly) String() string {
	return strings.Join(a.Keys(), "|")
}

// ReportHeader opens the aggregated load report.
const ReportHeader = "One or more broadcast profiles had issues:"

// ReportEntry is one profile's anomalies.
type ReportEntry struct {
	Profile string
	Anomaly Anomaly
}

// Report accumulates anomalies across a pool load in load order.
type Report struct {
	entries []ReportEntry
}

// Add records a for the named profile. Zero anomalies are ignored.
func (r *Report) Add(name string, a Anomaly) {
	if a == 0 {
		return
	}
	for i := range r.entries {
		if r.entries[i].Profile == name {
			r.entries[i].Anomaly |= a
			return
		}
	}
	r.entries = append(r.entries, ReportEntry{Profile: name, Anomaly: a})
}

// Entries returns the recorded entries.
func (r *Report) Entries() []ReportEntry {
	return append([]ReportEntry(nil), r.entries...)
}

// Empty reports whether nothing was recorded.
func (r *Report) Empty() bool {
	return len(r.entries) == 0
}

// String renders the single aggregated message, or "" when empty.
func (r *Report) String() string {
	if r.Empty() {
		return ""
	}
	lines := []string{ReportHeader}
	for _, entry := range r.entries {
		lines = append(lines, entry.Profile+": "+entry.Anomaly.Message())
	}
	return strings.Join(lines, "\n")
}

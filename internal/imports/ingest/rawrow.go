package ingest

import "strings"

// RawRow is one extracted row. Labeled rows carry a column label per value;
// positional rows (no recoverable header) carry values only.
type RawRow struct {
	labels []string
	values []string
	index  map[string]int
}

// NewLabeledRow pairs labels with values by column. Labels must be unique.
func NewLabeledRow(labels, values []string) RawRow {
	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	return RawRow{labels: labels, values: values, index: index}
}

// NewPositionalRow builds a row addressed by column position only.
func NewPositionalRow(values []string) RawRow {
	return RawRow{values: values}
}

// Labeled reports whether the row has column labels.
func (r RawRow) Labeled() bool {
	return r.labels != nil
}

// Get returns the value under label.
func (r RawRow) Get(label string) (string, bool) {
	i, ok := r.index[label]
	if !ok || i >= len(r.values) {
		return "", false
	}
	return r.values[i], true
}

// Lookup returns the first non-empty value found under any of the labels, in order.
func (r RawRow) Lookup(labels ...string) string {
	for _, label := range labels {
		if value, ok := r.Get(label); ok && strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

// Values returns the non-empty values in column order.
func (r RawRow) Values() []string {
	out := make([]string, 0, len(r.values))
	for _, v := range r.values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

// At returns the i-th non-empty value, or "".
func (r RawRow) At(i int) string {
	values := r.Values()
	if i < 0 || i >= len(values) {
		return ""
	}
	return values[i]
}

// Blank reports whether every cell is empty.
func (r RawRow) Blank() bool {
	for _, v := range r.values {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

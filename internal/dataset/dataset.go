// Package dataset holds the immutable activity and goal tables the
// reports aggregate over, plus the filter that narrows them.
package dataset

import "slices"

// Kind tells activity observations apart from goal quotas.
type Kind int

const (
	Activity Kind = iota
	Goal
)

func (k Kind) String() string {
	if k == Goal {
		return "goal"
	}
	return "activity"
}

// Record is one row of a source table. Period is kept as the opaque text
// found in the source; only the period package knows how to match it.
type Record struct {
	CampaignLabel string
	Period        string
	Units         float64
	Revenue       float64
}

// Dataset is an ordered, read-only collection of records of one kind.
// It is safe for concurrent use because nothing mutates it after New.
type Dataset struct {
	kind    Kind
	records []Record
}

// New creates a dataset holding a copy of records.
func New(kind Kind, records []Record) *Dataset {
	return &Dataset{kind: kind, records: slices.Clone(records)}
}

// Kind returns the dataset kind.
func (d *Dataset) Kind() Kind {
	if d == nil {
		return Activity
	}
	return d.kind
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.records)
}

// Empty reports whether the dataset has no records.
func (d *Dataset) Empty() bool {
	return d.Len() == 0
}

// Records returns a copy of the records in source order.
func (d *Dataset) Records() []Record {
	if d == nil {
		return nil
	}
	return slices.Clone(d.records)
}

// Filter returns a new dataset with the records keep accepts.
func (d *Dataset) Filter(keep func(Record) bool) *Dataset {
	out := &Dataset{kind: d.Kind()}
	if d == nil {
		return out
	}
	for _, r := range d.records {
		if keep(r) {
			out.records = append(out.records, r)
		}
	}
	return out
}

// Totals sums the metric columns.
type Totals struct {
	Units   float64
	Revenue float64
	Records int
}

// Totals sums units and revenue over every record.
func (d *Dataset) Totals() Totals {
	var t Totals
	if d == nil {
		return t
	}
	for _, r := range d.records {
		t.Units += r.Units
		t.Revenue += r.Revenue
	}
	t.Records = len(d.records)
	return t
}

// DistinctLabels counts distinct campaign labels.
func (d *Dataset) DistinctLabels() int {
	if d == nil {
		return 0
	}
	seen := make(map[string]struct{})
	for _, r := range d.records {
		seen[r.CampaignLabel] = struct{}{}
	}
	return len(seen)
}

package dataset

import (
	"fmt"
)

// Dataset is a cleaned, age-bucketed participants table ready for grouping.
type Dataset struct {
	// Table is the cleaned table. Treat as read-only.
	Table *Table

	// AgeBuckets are the thresholds used to bucket the Age column.
	AgeBuckets AgeBuckets

	// Ages are the numeric ages in row order, before bucketing.
	Ages []float64

	// Source is the path the dataset was loaded from, if any.
	Source string

	checksum string
}

// Load reads, cleans and buckets the participants CSV at path.
func Load(path string) (*Dataset, error) {
	raw, err := LoadCSV(path)
	if err != nil {
		return nil, err
	}
	ds, err := Prepare(raw)
	if err != nil {
		return nil, fmt.Errorf("prepare %s: %w", path, err)
	}
	ds.Source = path
	return ds, nil
}

// Prepare cleans a raw export and buckets its ages.
func Prepare(raw *Table) (*Dataset, error) {
	cleaned, err := Clean(raw)
	if err != nil {
		return nil, err
	}
	bucketed, buckets, ages, err := BucketAges(cleaned)
	if err != nil {
		return nil, err
	}
	return &Dataset{
		Table:      bucketed,
		AgeBuckets: buckets,
		Ages:       ages,
		checksum:   bucketed.Checksum(),
	}, nil
}

// FromTable wraps an already prepared table, skipping cleaning and bucketing.
func FromTable(t *Table) *Dataset {
	return &Dataset{Table: t, checksum: t.Checksum()}
}

// Checksum identifies the dataset content. It is computed once at load.
func (d *Dataset) Checksum() string {
	return d.checksum
}

// Package summary computes the descriptive statistics shown next to the
// diagram: value frequencies per column and the distribution of ages.
package summary

import (
	"cmp"
	"slices"

	"github.com/montanaflynn/stats"

	"github.com/matzehuels/cancerflow/pkg/dataset"
)

// Frequency is the number of rows holding one value.
type Frequency struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ColumnSummary describes the values of one column.
type ColumnSummary struct {
	Name        string      `json:"name"`
	Distinct    int         `json:"distinct"`
	Frequencies []Frequency `json:"frequencies"`
}

// AgeStats summarizes numeric ages before bucketing.
type AgeStats struct {
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
}

// Summary describes a dataset.
type Summary struct {
	Rows    int             `json:"rows"`
	Columns []ColumnSummary `json:"columns"`

	// Ages and Buckets are set when the dataset carries raw ages.
	Ages    *AgeStats           `json:"ages,omitempty"`
	Buckets *dataset.AgeBuckets `json:"buckets,omitempty"`
}

// Frequencies counts the values of col, most frequent first. Ties are
// ordered by value.
func Frequencies(t *dataset.Table, col string) ([]Frequency, error) {
	i, err := t.Column(col)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	for _, r := range t.Rows {
		counts[r[i]]++
	}
	out := make([]Frequency, 0, len(counts))
	for v, n := range counts {
		out = append(out, Frequency{Value: v, Count: n})
	}
	slices.SortFunc(out, func(a, b Frequency) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Value, b.Value)
	})
	return out, nil
}

// Describe returns value frequencies for every column of t.
func Describe(t *dataset.Table) ([]ColumnSummary, error) {
	out := make([]ColumnSummary, 0, len(t.Columns))
	for _, col := range t.Columns {
		freq, err := Frequencies(t, col)
		if err != nil {
			return nil, err
		}
		out = append(out, ColumnSummary{Name: col, Distinct: len(freq), Frequencies: freq})
	}
	return out, nil
}

// Ages computes distribution statistics. StdDev is the population standard
// deviation. Quartiles are medians of the lower and upper halves and may
// differ slightly from the interpolated bucket thresholds.
func Ages(ages []float64) (AgeStats, error) {
	data := stats.Float64Data(ages)
	var s AgeStats
	var err error
	if s.Min, err = stats.Min(data); err != nil {
		return AgeStats{}, err
	}
	if s.Max, err = stats.Max(data); err != nil {
		return AgeStats{}, err
	}
	if s.Mean, err = stats.Mean(data); err != nil {
		return AgeStats{}, err
	}
	if s.Median, err = stats.Median(data); err != nil {
		return AgeStats{}, err
	}
	if s.StdDev, err = stats.StandardDeviation(data); err != nil {
		return AgeStats{}, err
	}
	s.Q1, s.Q3 = s.Median, s.Median
	if len(ages) > 1 {
		q, err := stats.Quartile(data)
		if err != nil {
			return AgeStats{}, err
		}
		s.Q1, s.Q3 = q.Q1, q.Q3
	}
	s.Count = len(ages)
	return s, nil
}

// Summarize describes every column of ds and, when available, its ages.
func Summarize(ds *dataset.Dataset) (*Summary, error) {
	cols, err := Describe(ds.Table)
	if err != nil {
		return nil, err
	}
	s := &Summary{Rows: ds.Table.Len(), Columns: cols}
	if len(ds.Ages) > 0 {
		ages, err := Ages(ds.Ages)
		if err != nil {
			return nil, err
		}
		buckets := ds.AgeBuckets
		s.Ages, s.Buckets = &ages, &buckets
	}
	return s, nil
}

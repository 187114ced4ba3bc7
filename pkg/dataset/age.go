package dataset

import (
	"math"
	"slices"
	"strconv"
	"strings"

	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

// Age range labels, youngest first.
const (
	AgeYoungest    = "youngest_age"
	AgeMiddle      = "middle_age"
	AgeOlderMiddle = "older_middle_age"
	AgeOldest      = "oldest_age"
)

// AgeBuckets holds the quartile thresholds that split ages into four ranges.
// Boundaries are inclusive on the upper side: an age equal to Q1 is
// classified as youngest.
type AgeBuckets struct {
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
}

// ComputeAgeBuckets computes the 25th, 50th and 75th percentiles of ages,
// interpolating linearly between the two nearest ranks.
func ComputeAgeBuckets(ages []float64) (AgeBuckets, error) {
	if len(ages) == 0 {
		return AgeBuckets{}, cferrors.New(cferrors.ErrCodeInvalidInput, "cannot compute age ranges of an empty dataset")
	}
	sorted := slices.Clone(ages)
	slices.Sort(sorted)
	return AgeBuckets{
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
	}, nil
}

// Classify returns the age range label for age.
func (b AgeBuckets) Classify(age float64) string {
	switch {
	case age <= b.Q1:
		return AgeYoungest
	case age <= b.Median:
		return AgeMiddle
	case age <= b.Q3:
		return AgeOlderMiddle
	default:
		return AgeOldest
	}
}

// quantile expects sorted input.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	a, b := sorted[int(lo)], sorted[int(hi)]
	return a + (b-a)*(pos-lo)
}

// ParseAge parses an age cell. Fractional ages are truncated toward zero.
func ParseAge(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return float64(n), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, cferrors.New(cferrors.ErrCodeInvalidInput, "invalid age %q", s)
	}
	return math.Trunc(f), nil
}

// BucketAges replaces the Age column of t with age range labels.
// It returns the new table, the thresholds used and the parsed ages in row
// order. t is not modified.
func BucketAges(t *Table) (*Table, AgeBuckets, []float64, error) {
	col, err := t.Column(ColAge)
	if err != nil {
		return nil, AgeBuckets{}, nil, err
	}

	ages := make([]float64, len(t.Rows))
	for i, r := range t.Rows {
		age, err := ParseAge(r[col])
		if err != nil {
			return nil, AgeBuckets{}, nil, cferrors.Wrap(cferrors.ErrCodeInvalidInput, err, "row %d", i+1)
		}
		ages[i] = age
	}

	buckets, err := ComputeAgeBuckets(ages)
	if err != nil {
		return nil, AgeBuckets{}, nil, err
	}

	rows := make([][]string, len(t.Rows))
	for i, r := range t.Rows {
		out := slices.Clone(r)
		out[col] = buckets.Classify(ages[i])
		rows[i] = out
	}
	bucketed, err := NewTable(t.Columns, rows)
	if err != nil {
		return nil, AgeBuckets{}, nil, err
	}
	return bucketed, buckets, ages, nil
}

package flow

import (
	"slices"
	"strconv"
	"strings"

	"github.com/matzehuels/cancerflow/pkg/dataset"
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

// GroupedCount is one distinct combination of layer values and the number
// of rows that share it.
type GroupedCount struct {
	Values []string `json:"values"` // One value per layer, in LayerSpec order
	Count  int      `json:"count"`
}

// Group counts the rows of t for every distinct combination of values in
// the layer columns and keeps the combinations seen at least minCount times.
// Columns not named in layers are ignored.
//
// Rows are returned sorted by their values, compared layer by layer.
func Group(t *dataset.Table, layers LayerSpec, minCount int) ([]GroupedCount, error) {
	if err := layers.Validate(); err != nil {
		return nil, err
	}
	if minCount < 1 {
		return nil, cferrors.New(cferrors.ErrCodeInvalidThreshold, "minimum count must be at least 1, got %d", minCount)
	}
	cols := make([]int, len(layers))
	for i, name := range layers {
		c, err := t.Column(name)
		if err != nil {
			return nil, err
		}
		cols[i] = c
	}

	counts := make(map[string]*GroupedCount)
	var key strings.Builder
	for _, row := range t.Rows {
		key.Reset()
		for _, c := range cols {
			// Length-prefixed so that no cell content can alias another tuple.
			key.WriteString(strconv.Itoa(len(row[c])))
			key.WriteByte(':')
			key.WriteString(row[c])
		}
		k := key.String()
		if g, ok := counts[k]; ok {
			g.Count++
			continue
		}
		values := make([]string, len(cols))
		for i, c := range cols {
			values[i] = row[c]
		}
		counts[k] = &GroupedCount{Values: values, Count: 1}
	}

	out := make([]GroupedCount, 0, len(counts))
	for _, g := range counts {
		if g.Count >= minCount {
			out = append(out, *g)
		}
	}
	slices.SortFunc(out, func(a, b GroupedCount) int {
		return slices.Compare(a.Values, b.Values)
	})
	return out, nil
}

// TotalCount returns the sum of counts over grouped.
func TotalCount(grouped []GroupedCount) int {
	total := 0
	for _, g := range grouped {
		total += g.Count
	}
	return total
}

package flow

import (
	"strings"

	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

// MinLayers is the smallest number of layers that forms an edge.
const MinLayers = 2

// LayerSpec names the columns that form the diagram layers, left to right.
type LayerSpec []string

// Validate checks the shape of the layer list: at least [MinLayers]
// entries, each a well-formed column name appearing once.
func (s LayerSpec) Validate() error {
	if len(s) < MinLayers {
		return cferrors.New(cferrors.ErrCodeInsufficientLayers,
			"at least %d layers (source and target) are required, got %d", MinLayers, len(s))
	}
	seen := make(map[string]bool, len(s))
	for _, col := range s {
		if err := cferrors.ValidateColumnName(col); err != nil {
			return err
		}
		if seen[col] {
			return cferrors.New(cferrors.ErrCodeDuplicateLayer, "column %q is used as more than one layer", col)
		}
		seen[col] = true
	}
	return nil
}

// Pairs returns the number of adjacent layer pairs.
func (s LayerSpec) Pairs() int {
	if len(s) < MinLayers {
		return 0
	}
	return len(s) - 1
}

// String joins the layers with arrows, e.g. "Diagnosis → Age → Therapy".
func (s LayerSpec) String() string {
	return strings.Join(s, " → ")
}

// ParseLayerSpec splits a comma-separated list of column names.
// Surrounding whitespace and empty entries are dropped.
func ParseLayerSpec(s string) LayerSpec {
	var out LayerSpec
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

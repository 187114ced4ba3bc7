package dataset

import (
	"strings"

	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

// Column names of the cleaned table.
const (
	ColDiagnosis = "Diagnosis"
	ColAge       = "Age"
	ColGender    = "Gender"
	ColTherapy   = "Therapy"
	ColRace      = "Race"
)

// Column names of the raw participants export.
const (
	SourceDiagnosis = "Diagnosis"
	SourceAge       = "Age"
	SourceSex       = "Sex"
	SourceTherapy   = "Targeted Therapy"
	SourceRace      = "Race"
)

// NoTherapy replaces an empty therapy list.
const NoTherapy = "No_therapy_listed"

// sourceColumns maps raw export columns to cleaned names, in output order.
var sourceColumns = []struct{ source, clean string }{
	{SourceDiagnosis, ColDiagnosis},
	{SourceAge, ColAge},
	{SourceSex, ColGender},
	{SourceTherapy, ColTherapy},
}

// Clean keeps the diagnosis, age, sex and targeted therapy columns of a raw
// export, renames them to Diagnosis, Age, Gender and Therapy, and reduces
// each therapy list to its first entry. A Race column is carried along when
// the export has one.
//
// Missing required columns produce an UNKNOWN_COLUMN error.
func Clean(raw *Table) (*Table, error) {
	var src, cols []string
	for _, c := range sourceColumns {
		if !raw.HasColumn(c.source) {
			return nil, cferrors.New(cferrors.ErrCodeUnknownColumn,
				"dataset is missing required column %q", c.source)
		}
		src = append(src, c.source)
		cols = append(cols, c.clean)
	}
	if raw.HasColumn(SourceRace) {
		src = append(src, SourceRace)
		cols = append(cols, ColRace)
	}

	selected, err := raw.Select(src...)
	if err != nil {
		return nil, err
	}

	// Select copies rows, so rewriting cells leaves raw untouched.
	therapy, err := selected.Column(SourceTherapy)
	if err != nil {
		return nil, err
	}
	for _, r := range selected.Rows {
		r[therapy] = FirstTherapy(r[therapy])
	}
	return NewTable(cols, selected.Rows)
}

// FirstTherapy extracts the first therapy of a bracketed list such as
// "[Afatinib,Osimertinib]". An empty list yields [NoTherapy].
func FirstTherapy(s string) string {
	s = strings.ReplaceAll(s, "[", "")
	s = strings.ReplaceAll(s, "]", "")
	first, _, _ := strings.Cut(s, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return NoTherapy
	}
	return first
}

// MiddleLayers returns the columns of t that may sit between Diagnosis and
// Therapy in a diagram: Age and Gender, plus Race when present.
func MiddleLayers(t *Table) []string {
	out := []string{ColAge, ColGender}
	if t.HasColumn(ColRace) {
		out = append(out, ColRace)
	}
	return out
}

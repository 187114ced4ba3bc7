package flow

import (
	"reflect"
	"testing"

	"github.com/matzehuels/cancerflow/pkg/dataset"
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
)

func mustTable(t *testing.T, cols []string, rows ...[]string) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(cols, rows)
	if err != nil {
		t.Fatalf("NewTable: %v", err)
	}
	return tbl
}

func repeat(n int, row ...string) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = row
	}
	return out
}

// patients is a small cleaned table used across tests.
func patients(t *testing.T) *dataset.Table {
	t.Helper()
	var rows [][]string
	rows = append(rows, repeat(3, "Lung", "youngest_age", "Female", "Afatinib")...)
	rows = append(rows, repeat(2, "Lung", "oldest_age", "Male", "Osimertinib")...)
	rows = append(rows, repeat(1, "Breast", "middle_age", "Female", "Palbociclib")...)
	rows = append(rows, repeat(4, "Breast", "middle_age", "Female", "Afatinib")...)
	rows = append(rows, repeat(1, "Colon", "oldest_age", "Male", "No_therapy_listed")...)
	return mustTable(t, []string{"Diagnosis", "Age", "Gender", "Therapy"}, rows...)
}

func TestGroupScenarioA(t *testing.T) {
	var rows [][]string
	rows = append(rows, repeat(3, "Lung", "ChemoA")...)
	rows = append(rows, repeat(1, "Lung", "ChemoB")...)
	tbl := mustTable(t, []string{"Diagnosis", "Therapy"}, rows...)
	layers := LayerSpec{"Diagnosis", "Therapy"}

	grouped, err := Group(tbl, layers, 2)
	if err != nil {
		t.Fatalf("Group: %v", err)
	}
	want := []GroupedCount{{Values: []string{"Lung", "ChemoA"}, Count: 3}}
	if !reflect.DeepEqual(grouped, want) {
		t.Fatalf("Group() = %+v, want %+v", grouped, want)
	}

	d, err := Build(grouped, layers)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !reflect.DeepEqual(d.Labels, []string{"Lung", "ChemoA"}) {
		t.Errorf("Labels = %v", d.Labels)
	}
	if !reflect.DeepEqual(d.Edges, []Edge{{Source: 0, Target: 1, Value: 3}}) {
		t.Errorf("Edges = %v", d.Edges)
	}
}

func TestBuildScenarioB(t *testing.T) {
	layers := LayerSpec{"Diagnosis", "Age", "Therapy"}
	grouped := []GroupedCount{{Values: []string{"Lung", "middle_age", "Afatinib"}, Count: 5}}

	d, err := Build(grouped, layers)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(d.Edges) != 2 {
		t.Fatalf("len(Edges) = %d, want 2", len(d.Edges))
	}
	first, second := d.Edges[0], d.Edges[1]
	if first.Target != second.Source {
		t.Errorf("middle node not shared: %v then %v", first, second)
	}
	if d.Labels[first.Source] != "Lung" || d.Labels[first.Target] != "middle_age" || d.Labels[second.Target] != "Afatinib" {
		t.Errorf("unexpected labels %v for edges %v", d.Labels, d.Edges)
	}
	if first.Value != 5 || second.Value != 5 {
		t.Errorf("edge values = %d, %d; want 5, 5", first.Value, second.Value)
	}
}

func TestBuildScenarioCSharedLabel(t *testing.T) {
	layers := LayerSpec{"Diagnosis", "Therapy"}
	grouped := []GroupedCount{
		{Values: []string{"Other", "Afatinib"}, Count: 2},
		{Values: []string{"Lung", "Other"}, Count: 4},
	}

	d, err := Build(grouped, layers)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	n := 0
	other := -1
	for i, l := range d.Labels {
		if l == "Other" {
			n++
			other = i
		}
	}
	if n != 1 {
		t.Fatalf("Other appears %d times in %v, want 1", n, d.Labels)
	}
	if d.Edges[0].Source != other {
		t.Errorf("diagnosis Other resolves to %d, want %d", d.Edges[0].Source, other)
	}
	if d.Edges[1].Target != other {
		t.Errorf("therapy Other resolves to %d, want %d", d.Edges[1].Target, other)
	}
	if !reflect.DeepEqual(d.Labels, []string{"Other", "Lung", "Afatinib"}) {
		t.Errorf("Labels = %v, want first-seen order", d.Labels)
	}
	if !reflect.DeepEqual(d.NodeLayers, []int{0, 0, 1}) {
		t.Errorf("NodeLayers = %v", d.NodeLayers)
	}
}

func TestBuildIdempotent(t *testing.T) {
	layers := LayerSpec{"Diagnosis", "Age", "Gender", "Therapy"}
	grouped, err := Group(patients(t), layers, 1)
	if err != nil {
		t.Fatal(err)
	}
	a, err := Build(grouped, layers)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Build(grouped, layers)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("Build is not deterministic:\n%+v\n%+v", a, b)
	}

	again, _ := Group(patients(t), layers, 1)
	if !reflect.DeepEqual(grouped, again) {
		t.Error("Group is not deterministic")
	}
}

func TestCountConservation(t *testing.T) {
	layers := LayerSpec{"Diagnosis", "Therapy"}
	grouped, err := Group(patients(t), layers, 1)
	if err != nil {
		t.Fatal(err)
	}
	d, err := Build(grouped, layers)
	if err != nil {
		t.Fatal(err)
	}
	sum := 0
	for _, e := range d.Edges {
		sum += e.Value
	}
	if sum != TotalCount(grouped) {
		t.Errorf("edge weight sum = %d, grouped total = %d", sum, TotalCount(grouped))
	}
	if TotalCount(grouped) != patients(t).Len() {
		t.Errorf("grouped total = %d, want all %d rows", TotalCount(grouped), patients(t).Len())
	}
	if d.TotalFlow() != sum {
		t.Errorf("TotalFlow() = %d, want %d", d.TotalFlow(), sum)
	}
}

func TestEdgeCardinalityAndCoverage(t *testing.T) {
	specs := []LayerSpec{
		{"Diagnosis", "Therapy"},
		{"Diagnosis", "Age", "Therapy"},
		{"Diagnosis", "Gender", "Therapy"},
		{"Diagnosis", "Age", "Gender", "Therapy"},
		{"Therapy", "Gender", "Age", "Diagnosis"},
	}
	for _, layers := range specs {
		t.Run(layers.String(), func(t *testing.T) {
			grouped, err := Group(patients(t), layers, 1)
			if err != nil {
				t.Fatal(err)
			}
			d, err := Build(grouped, layers)
			if err != nil {
				t.Fatal(err)
			}
			if want := len(grouped) * (len(layers) - 1); len(d.Edges) != want {
				t.Errorf("len(Edges) = %d, want %d", len(d.Edges), want)
			}
			if err := d.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
			for i := 0; i < layers.Pairs(); i++ {
				pair := d.PairEdges(i)
				if len(pair) != len(grouped) {
					t.Errorf("PairEdges(%d) = %d edges, want %d", i, len(pair), len(grouped))
				}
				for j, e := range pair {
					if d.Labels[e.Source] != grouped[j].Values[i] || d.Labels[e.Target] != grouped[j].Values[i+1] {
						t.Errorf("pair %d edge %d = %v, want %v", i, j, e, grouped[j].Values[i:i+2])
					}
				}
			}
		})
	}
}

func TestThresholdMonotonicity(t *testing.T) {
	layers := LayerSpec{"Diagnosis", "Age", "Therapy"}
	prev := -1
	for minCount := 1; minCount <= 6; minCount++ {
		grouped, err := Group(patients(t), layers, minCount)
		if err != nil {
			t.Fatal(err)
		}
		for _, g := range grouped {
			if g.Count < minCount {
				t.Errorf("min %d kept row with count %d", minCount, g.Count)
			}
		}
		if prev >= 0 && len(grouped) > prev {
			t.Errorf("min %d produced %d rows, more than %d at min %d", minCount, len(grouped), prev, minCount-1)
		}
		prev = len(grouped)
	}
	if prev != 0 {
		t.Errorf("min 6 should drop every row, kept %d", prev)
	}
}

func TestGroupSorted(t *testing.T) {
	grouped, err := Group(patients(t), LayerSpec{"Diagnosis", "Therapy"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []GroupedCount{
		{Values: []string{"Breast", "Afatinib"}, Count: 4},
		{Values: []string{"Breast", "Palbociclib"}, Count: 1},
		{Values: []string{"Colon", "No_therapy_listed"}, Count: 1},
		{Values: []string{"Lung", "Afatinib"}, Count: 3},
		{Values: []string{"Lung", "Osimertinib"}, Count: 2},
	}
	if !reflect.DeepEqual(grouped, want) {
		t.Errorf("Group() =\n%+v\nwant\n%+v", grouped, want)
	}
}

func TestGroupDistinguishesSeparatorContent(t *testing.T) {
	tbl := mustTable(t, []string{"A", "B"},
		[]string{"x:1", "y"},
		[]string{"x", "1:y"},
	)
	grouped, err := Group(tbl, LayerSpec{"A", "B"}, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(grouped) != 2 {
		t.Errorf("len(Group()) = %d, want 2 distinct tuples", len(grouped))
	}
}

func TestGroupErrors(t *testing.T) {
	tests := []struct {
		name     string
		layers   LayerSpec
		minCount int
		code     cferrors.Code
	}{
		{"no layers", nil, 1, cferrors.ErrCodeInsufficientLayers},
		{"one layer", LayerSpec{"Diagnosis"}, 1, cferrors.ErrCodeInsufficientLayers},
		{"unknown column", LayerSpec{"Diagnosis", "Stage"}, 1, cferrors.ErrCodeUnknownColumn},
		{"duplicate layer", LayerSpec{"Diagnosis", "Therapy", "Diagnosis"}, 1, cferrors.ErrCodeDuplicateLayer},
		{"zero threshold", LayerSpec{"Diagnosis", "Therapy"}, 0, cferrors.ErrCodeInvalidThreshold},
		{"empty column name", LayerSpec{"Diagnosis", ""}, 1, cferrors.ErrCodeUnknownColumn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Group(patients(t), tt.layers, tt.minCount)
			if !cferrors.Is(err, tt.code) {
				t.Errorf("Group() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBuildBoundaries(t *testing.T) {
	t.Run("one layer", func(t *testing.T) {
		_, err := Build(nil, LayerSpec{"Diagnosis"})
		if !cferrors.Is(err, cferrors.ErrCodeInsufficientLayers) {
			t.Errorf("Build() error = %v, want INSUFFICIENT_LAYERS", err)
		}
	})

	t.Run("empty grouped", func(t *testing.T) {
		d, err := Build(nil, LayerSpec{"Diagnosis", "Age", "Therapy"})
		if err != nil {
			t.Fatalf("Build() error = %v, want nil", err)
		}
		if len(d.Edges) != 0 || len(d.Labels) != 0 {
			t.Errorf("Build(empty) = %d labels, %d edges", len(d.Labels), len(d.Edges))
		}
		if !d.Empty() || d.TotalFlow() != 0 {
			t.Error("empty diagram should report Empty and zero flow")
		}
		if err := d.Validate(); err != nil {
			t.Errorf("Validate: %v", err)
		}
	})

	t.Run("width mismatch", func(t *testing.T) {
		grouped := []GroupedCount{{Values: []string{"Lung"}, Count: 1}}
		_, err := Build(grouped, LayerSpec{"Diagnosis", "Therapy"})
		if !cferrors.Is(err, cferrors.ErrCodeInvalidInput) {
			t.Errorf("Build() error = %v, want INVALID_INPUT", err)
		}
	})
}

func TestBuildSize(t *testing.T) {
	layers := LayerSpec{"Diagnosis", "Therapy"}

	d, err := Build(nil, layers)
	if err != nil {
		t.Fatal(err)
	}
	if d.Width != DefaultWidth || d.Height != DefaultHeight {
		t.Errorf("default size = %dx%d, want %dx%d", d.Width, d.Height, DefaultWidth, DefaultHeight)
	}

	d, err = Build(nil, layers, WithSize(250, 200))
	if err != nil {
		t.Fatal(err)
	}
	if d.Width != 250 || d.Height != 200 {
		t.Errorf("size = %dx%d, want 250x200", d.Width, d.Height)
	}

	for _, size := range [][2]int{{0, 800}, {1500, -1}} {
		_, err := Build(nil, layers, WithSize(size[0], size[1]))
		if !cferrors.Is(err, cferrors.ErrCodeInvalidDimension) {
			t.Errorf("WithSize(%d, %d) error = %v, want INVALID_DIMENSION", size[0], size[1], err)
		}
	}
}

func TestBuildDoesNotAliasInput(t *testing.T) {
	layers := LayerSpec{"Diagnosis", "Therapy"}
	grouped := []GroupedCount{{Values: []string{"Lung", "Afatinib"}, Count: 1}}
	d, err := Build(grouped, layers)
	if err != nil {
		t.Fatal(err)
	}
	layers[0] = "Changed"
	if d.Layers[0] != "Diagnosis" {
		t.Errorf("diagram layers alias the input spec: %v", d.Layers)
	}
}

func TestParseLayerSpec(t *testing.T) {
	tests := []struct {
		in   string
		want LayerSpec
	}{
		{"Diagnosis,Therapy", LayerSpec{"Diagnosis", "Therapy"}},
		{" Diagnosis , Age ,Therapy ", LayerSpec{"Diagnosis", "Age", "Therapy"}},
		{"Diagnosis,,Therapy,", LayerSpec{"Diagnosis", "Therapy"}},
		{"", nil},
	}
	for _, tt := range tests {
		if got := ParseLayerSpec(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ParseLayerSpec(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

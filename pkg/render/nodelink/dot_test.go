package nodelink

import (
	"strings"
	"testing"

	"github.com/matzehuels/cancerflow/pkg/flow"
)

func buildDiagram(t *testing.T, grouped []flow.GroupedCount, layers flow.LayerSpec) *flow.Diagram {
	t.Helper()
	d, err := flow.Build(grouped, layers)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestToDOT_Basic(t *testing.T) {
	d := buildDiagram(t, []flow.GroupedCount{
		{Values: []string{"Lung", "Afatinib"}, Count: 3},
	}, flow.LayerSpec{"Diagnosis", "Therapy"})

	dot := ToDOT(d, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	if !strings.Contains(dot, "rankdir=LR") {
		t.Error("ToDOT() output should lay out left to right")
	}
	if !strings.Contains(dot, `"n0" [label="Lung"]`) {
		t.Error("ToDOT() output missing node Lung")
	}
	if !strings.Contains(dot, `"n1" [label="Afatinib"]`) {
		t.Error("ToDOT() output missing node Afatinib")
	}
	if !strings.Contains(dot, `"n0" -> "n1" [label="3"`) {
		t.Error("ToDOT() output missing edge")
	}
}

func TestToDOT_Ranks(t *testing.T) {
	d := buildDiagram(t, []flow.GroupedCount{
		{Values: []string{"Breast", "Female", "Afatinib"}, Count: 1},
		{Values: []string{"Lung", "Male", "Afatinib"}, Count: 1},
	}, flow.LayerSpec{"Diagnosis", "Gender", "Therapy"})

	dot := ToDOT(d, Options{})

	for _, want := range []string{
		`{ rank=same; "n0"; "n1"; }`,
		`{ rank=same; "n2"; "n3"; }`,
		`{ rank=same; "n4"; }`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing rank group %s\n%s", want, dot)
		}
	}
}

func TestToDOT_MergesParallelEdges(t *testing.T) {
	d := buildDiagram(t, []flow.GroupedCount{
		{Values: []string{"Lung", "Female", "Afatinib"}, Count: 2},
		{Values: []string{"Lung", "Male", "Afatinib"}, Count: 5},
	}, flow.LayerSpec{"Diagnosis", "Gender", "Therapy"})

	dot := ToDOT(d, Options{})

	if n := strings.Count(dot, " -> "); n != 4 {
		t.Errorf("edge count = %d, want 4", n)
	}

	d = buildDiagram(t, []flow.GroupedCount{
		{Values: []string{"Lung", "Afatinib", "x"}, Count: 2},
		{Values: []string{"Lung", "Afatinib", "y"}, Count: 5},
	}, flow.LayerSpec{"Diagnosis", "Therapy", "Other"})
	dot = ToDOT(d, Options{})
	if !strings.Contains(dot, `"n0" -> "n1" [label="7"`) {
		t.Errorf("parallel edges not merged:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	d := buildDiagram(t, []flow.GroupedCount{
		{Values: []string{"Lung", "Afatinib"}, Count: 3},
		{Values: []string{"Lung", "Osimertinib"}, Count: 4},
	}, flow.LayerSpec{"Diagnosis", "Therapy"})

	dot := ToDOT(d, Options{Detailed: true})

	if !strings.Contains(dot, `layer: Diagnosis\npatients: 7`) {
		t.Errorf("ToDOT() detailed output missing layer info:\n%s", dot)
	}
	if !strings.Contains(dot, `layer: Therapy\npatients: 4`) {
		t.Errorf("ToDOT() detailed output missing patient total:\n%s", dot)
	}
}

func TestToDOT_Empty(t *testing.T) {
	d := buildDiagram(t, nil, flow.LayerSpec{"Diagnosis", "Therapy"})
	dot := ToDOT(d, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("empty diagram should still be a valid graph:\n%s", dot)
	}
	if strings.Contains(dot, "->") {
		t.Error("empty diagram should have no edges")
	}
}

func TestPenWidth(t *testing.T) {
	if got := penWidth(0, 0); got != minPenWidth {
		t.Errorf("penWidth(0, 0) = %v, want %v", got, minPenWidth)
	}
	if got := penWidth(10, 10); got != maxPenWidth {
		t.Errorf("penWidth(10, 10) = %v, want %v", got, maxPenWidth)
	}
	if a, b := penWidth(2, 10), penWidth(5, 10); a >= b {
		t.Errorf("penWidth should grow with value: %v >= %v", a, b)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}

	plain := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

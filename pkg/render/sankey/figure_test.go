package sankey

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/cancerflow/pkg/flow"
)

func sampleDiagram(t *testing.T) *flow.Diagram {
	t.Helper()
	d, err := flow.Build([]flow.GroupedCount{
		{Values: []string{"Lung", "middle_age", "Afatinib"}, Count: 5},
		{Values: []string{"Breast", "oldest_age", "Afatinib"}, Count: 2},
	}, flow.LayerSpec{"Diagnosis", "Age", "Therapy"}, flow.WithSize(1000, 600))
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestToFigure(t *testing.T) {
	d := sampleDiagram(t)
	fig := ToFigure(d)

	if len(fig.Data) != 1 || fig.Data[0].Type != "sankey" {
		t.Fatalf("Data = %+v, want one sankey trace", fig.Data)
	}
	tr := fig.Data[0]
	if tr.Node.Pad != NodePad || tr.Node.Thickness != NodeThickness {
		t.Errorf("node style = %d/%d, want %d/%d", tr.Node.Pad, tr.Node.Thickness, NodePad, NodeThickness)
	}
	if !reflect.DeepEqual(tr.Node.Label, d.Labels) {
		t.Errorf("labels = %v, want %v", tr.Node.Label, d.Labels)
	}
	if len(tr.Link.Source) != len(d.Edges) || len(tr.Link.Target) != len(d.Edges) || len(tr.Link.Value) != len(d.Edges) {
		t.Fatalf("link arrays have wrong length: %+v", tr.Link)
	}
	for i, e := range d.Edges {
		if tr.Link.Source[i] != e.Source || tr.Link.Target[i] != e.Target || tr.Link.Value[i] != e.Value {
			t.Errorf("link %d = (%d,%d,%d), want %v", i, tr.Link.Source[i], tr.Link.Target[i], tr.Link.Value[i], e)
		}
	}
	if fig.Layout.Autosize || fig.Layout.Width != 1000 || fig.Layout.Height != 600 {
		t.Errorf("layout = %+v", fig.Layout)
	}
}

func TestToFigureEmpty(t *testing.T) {
	d, err := flow.Build(nil, flow.LayerSpec{"Diagnosis", "Therapy"})
	if err != nil {
		t.Fatal(err)
	}
	data, err := MarshalFigure(ToFigure(d))
	if err != nil {
		t.Fatal(err)
	}
	s := string(data)
	for _, want := range []string{`"label":[]`, `"source":[]`, `"target":[]`, `"value":[]`} {
		if !strings.Contains(s, want) {
			t.Errorf("empty figure JSON missing %s: %s", want, s)
		}
	}
}

func TestMarshalUnmarshalFigure(t *testing.T) {
	fig := ToFigure(sampleDiagram(t))
	data, err := MarshalFigure(fig)
	if err != nil {
		t.Fatal(err)
	}
	got, err := UnmarshalFigure(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, fig) {
		t.Errorf("UnmarshalFigure() = %+v, want %+v", got, fig)
	}
	if _, err := UnmarshalFigure([]byte("{")); err == nil {
		t.Error("expected error for truncated JSON")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(sampleDiagram(t), &buf); err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if _, ok := decoded["layout"]; !ok {
		t.Error("missing layout")
	}
}

func TestRenderHTML(t *testing.T) {
	page, err := RenderHTML(sampleDiagram(t), "Diagnosis & Therapy")
	if err != nil {
		t.Fatal(err)
	}
	s := string(page)
	if !strings.Contains(s, PlotlyCDN) {
		t.Error("page does not load plotly.js")
	}
	if !strings.Contains(s, "Diagnosis &amp; Therapy") {
		t.Error("title not escaped into page")
	}
	if !strings.Contains(s, `"type":"sankey"`) {
		t.Error("figure not embedded")
	}
}

func TestRenderHTMLEscapesLabels(t *testing.T) {
	d, err := flow.Build([]flow.GroupedCount{
		{Values: []string{"</script><b>", "x"}, Count: 1},
	}, flow.LayerSpec{"Diagnosis", "Therapy"})
	if err != nil {
		t.Fatal(err)
	}
	page, err := RenderHTML(d, "t")
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(page), "</script><b>") {
		t.Error("label was embedded unescaped")
	}
}

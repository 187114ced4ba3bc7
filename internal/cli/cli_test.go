package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/cancerflow/pkg/config"
	"github.com/matzehuels/cancerflow/pkg/dataset"
	cferrors "github.com/matzehuels/cancerflow/pkg/errors"
	"github.com/matzehuels/cancerflow/pkg/pipeline"
	"github.com/matzehuels/cancerflow/pkg/render/sankey"
	"github.com/matzehuels/cancerflow/pkg/summary"
)

const participantsCSV = `Diagnosis,Age,Sex,Targeted Therapy,Race
Lung,45,Male,[Afatinib],Asian
Lung,52,Male,"[Afatinib,Osimertinib]",White
Lung,67,Female,[Osimertinib],White
Breast,38,Female,[],Black
Breast,41,Female,[Afatinib],White
Colon,70,Male,[],Asian
Colon,59,Female,[Afatinib],White
Breast,63,Female,[Afatinib],Black
`

// isolate points config, cache and working directories at temp dirs and
// clears the environment variables the config layer reads.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	for _, k := range []string{config.EnvData, config.EnvAddr, config.EnvPort, config.EnvCache,
		config.EnvCacheDir, config.EnvRedisURL, config.EnvMongoURI} {
		t.Setenv(k, "")
	}
	t.Chdir(dir)
	return dir
}

func writeParticipants(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "participants.csv")
	if err := os.WriteFile(path, []byte(participantsCSV), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) error {
	t.Helper()
	c := New(io.Discard, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := New(io.Discard, LogInfo).RootCommand()
	want := []string{"cache", "completion", "describe", "sankey", "serve", "values"}
	var got []string
	for _, cmd := range root.Commands() {
		got = append(got, cmd.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("subcommand %q not registered (have %v)", name, got)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{pipeline.FormatSVG}},
		{"json", []string{"json"}},
		{"SVG, png,,pdf ", []string{"svg", "png", "pdf"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestResolveLayers(t *testing.T) {
	tests := []struct {
		name string
		opts sankeyOpts
		want []string
	}{
		{"default", sankeyOpts{}, []string{"Diagnosis", "Therapy"}},
		{"middle", sankeyOpts{middle: "Age, Gender"}, []string{"Diagnosis", "Age", "Gender", "Therapy"}},
		{"layers win", sankeyOpts{middle: "Age", layers: "Gender,Therapy"}, []string{"Gender", "Therapy"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveLayers(nil, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("resolveLayers() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "out", "diagram")
	artifacts := map[string][]byte{"json": []byte("{}"), "dot": []byte("digraph G {}")}

	paths, err := writeArtifacts(base, []string{"dot", "svg", "json"}, artifacts)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{base + ".dot", base + ".json"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(base + ".dot")
	if err != nil || string(data) != "digraph G {}" {
		t.Errorf("dot file = %q, %v", data, err)
	}
}

func TestSankeyCommand(t *testing.T) {
	dir := isolate(t)
	data := writeParticipants(t, dir)
	out := filepath.Join(dir, "diagram")

	err := execute(t, "sankey", "--data", data, "--middle", "Gender", "-f", "json,dot,html", "-o", out)
	if err != nil {
		t.Fatalf("sankey: %v", err)
	}

	raw, err := os.ReadFile(out + ".json")
	if err != nil {
		t.Fatal(err)
	}
	fig, err := sankey.UnmarshalFigure(raw)
	if err != nil {
		t.Fatal(err)
	}
	if fig.Layout.Width != pipeline.DefaultWidth || fig.Layout.Height != pipeline.DefaultHeight {
		t.Errorf("layout size = %dx%d", fig.Layout.Width, fig.Layout.Height)
	}
	labels := fig.Data[0].Node.Label
	for _, want := range []string{"Breast", "Colon", "Lung", "Female", "Male", "Afatinib", dataset.NoTherapy} {
		found := false
		for _, l := range labels {
			if l == want {
				found = true
			}
		}
		if !found {
			t.Errorf("label %q missing from %v", want, labels)
		}
	}

	dot, err := os.ReadFile(out + ".dot")
	if err != nil || !strings.HasPrefix(string(dot), "digraph") {
		t.Errorf("dot output = %.40q, %v", dot, err)
	}
	html, err := os.ReadFile(out + ".html")
	if err != nil || !strings.Contains(string(html), "Therapy Linkage Dashboard") {
		t.Errorf("html output missing title: %v", err)
	}
}

func TestSankeyCommandErrors(t *testing.T) {
	dir := isolate(t)
	data := writeParticipants(t, dir)

	tests := []struct {
		name string
		args []string
		code cferrors.Code
	}{
		{"no data", []string{"sankey"}, cferrors.ErrCodeInvalidPath},
		{"not csv", []string{"sankey", "--data", filepath.Join(dir, "x.txt")}, cferrors.ErrCodeInvalidPath},
		{"single layer", []string{"sankey", "--data", data, "--layers", "Diagnosis", "--no-cache"}, cferrors.ErrCodeInsufficientLayers},
		{"unknown column", []string{"sankey", "--data", data, "--middle", "Weight", "--no-cache"}, cferrors.ErrCodeUnknownColumn},
		{"duplicate layer", []string{"sankey", "--data", data, "--layers", "Gender,Gender", "--no-cache"}, cferrors.ErrCodeDuplicateLayer},
		{"bad threshold", []string{"sankey", "--data", data, "--min-count", "-1", "--no-cache"}, cferrors.ErrCodeInvalidThreshold},
		{"bad width", []string{"sankey", "--data", data, "--width", "-5", "--no-cache"}, cferrors.ErrCodeInvalidDimension},
		{"bad format", []string{"sankey", "--data", data, "-f", "gif", "--no-cache"}, cferrors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := execute(t, tt.args...)
			if got := cferrors.GetCode(err); got != tt.code {
				t.Errorf("code = %v (err %v), want %v", got, err, tt.code)
			}
		})
	}
}

func TestValuesCommand(t *testing.T) {
	dir := isolate(t)
	data := writeParticipants(t, dir)

	if err := execute(t, "values", "Gender", "--data", data); err != nil {
		t.Fatalf("values: %v", err)
	}
	err := execute(t, "values", "Weight", "--data", data)
	if cferrors.GetCode(err) != cferrors.ErrCodeUnknownColumn {
		t.Errorf("unknown column err = %v", err)
	}
}

func TestDescribeCommand(t *testing.T) {
	dir := isolate(t)
	data := writeParticipants(t, dir)

	if err := execute(t, "describe", "--data", data, "--top", "2"); err != nil {
		t.Fatalf("describe: %v", err)
	}
	if err := execute(t, "describe", "--data", data, "--json"); err != nil {
		t.Fatalf("describe --json: %v", err)
	}
	err := execute(t, "describe", "--data", data, "--column", "Weight")
	if cferrors.GetCode(err) != cferrors.ErrCodeUnknownColumn {
		t.Errorf("unknown column err = %v", err)
	}
}

func TestFrequencyRows(t *testing.T) {
	freq := []summary.Frequency{{Value: "Lung", Count: 3}, {Value: "Breast", Count: 2}, {Value: "Colon", Count: 1}}

	rows := frequencyRows(freq, 6, 2)
	want := [][]string{{"Lung", "3", "50.0%"}, {"Breast", "2", "33.3%"}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("frequencyRows() = %v, want %v", rows, want)
	}
	if got := frequencyRows(freq, 6, 0); len(got) != 3 {
		t.Errorf("top 0 kept %d rows, want 3", len(got))
	}
	if got := frequencyRows(freq, 0, 0); got[0][2] != "0.0%" {
		t.Errorf("zero total share = %q", got[0][2])
	}
}

func TestDashboardURL(t *testing.T) {
	tests := map[string]string{
		":8050":        "http://localhost:8050",
		"0.0.0.0:9000": "http://0.0.0.0:9000",
	}
	for addr, want := range tests {
		if got := dashboardURL(addr); got != want {
			t.Errorf("dashboardURL(%q) = %q, want %q", addr, got, want)
		}
	}
}

func TestLayerPickerModel(t *testing.T) {
	raw, err := dataset.ReadCSV(strings.NewReader(participantsCSV))
	if err != nil {
		t.Fatal(err)
	}
	ds, err := dataset.Prepare(raw)
	if err != nil {
		t.Fatal(err)
	}

	var m tea.Model = NewLayerPickerModel(ds.Table)
	picker := m.(LayerPickerModel)
	if want := []string{"Age", "Gender", "Race"}; !reflect.DeepEqual(picker.Columns, want) {
		t.Fatalf("Columns = %v, want %v", picker.Columns, want)
	}
	if picker.Distinct["Gender"] != 2 {
		t.Errorf("Distinct[Gender] = %d, want 2", picker.Distinct["Gender"])
	}

	keys := []tea.KeyMsg{
		{Type: tea.KeyDown},                       // Gender
		{Type: tea.KeySpace, Runes: []rune{' '}}, // check Gender
		{Type: tea.KeyUp},                         // Age
		{Type: tea.KeySpace, Runes: []rune{' '}}, // check Age
		{Type: tea.KeyDown},
		{Type: tea.KeyDown}, // Race
		{Type: tea.KeySpace, Runes: []rune{' '}},
		{Type: tea.KeySpace, Runes: []rune{' '}}, // uncheck Race
	}
	for _, k := range keys {
		m, _ = m.Update(k)
	}
	picker = m.(LayerPickerModel)
	if want := []string{"Gender", "Age"}; !reflect.DeepEqual(picker.Order, want) {
		t.Errorf("Order = %v, want %v", picker.Order, want)
	}
	if !strings.Contains(picker.View(), "Diagnosis → Gender → Age → Therapy") {
		t.Error("View() lacks layer preview")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil || !m.(LayerPickerModel).Confirmed {
		t.Error("enter should confirm and quit")
	}
}

func TestLayerPreview(t *testing.T) {
	if got := layerPreview(nil); got != "Diagnosis → Therapy" {
		t.Errorf("layerPreview(nil) = %q", got)
	}
}

func TestSankeyOutputIsValidJSON(t *testing.T) {
	dir := isolate(t)
	data := writeParticipants(t, dir)
	out := filepath.Join(dir, "f")

	if err := execute(t, "sankey", "--data", data, "--min-count", "2", "-f", "json", "-o", out, "--no-cache"); err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(out + ".json")
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if _, ok := v["data"]; !ok {
		t.Error("figure lacks data")
	}
}

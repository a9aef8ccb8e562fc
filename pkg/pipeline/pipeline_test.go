package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/reasontree/pkg/cache"
	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/render"
	"github.com/matzehuels/reasontree/pkg/view"
)

const sampleTree = `{"id": 1, "brief": "root", "children": [
	{"id": 2, "brief": "child A", "reasoning": "because"},
	{"id": 3, "brief": "child B"}
]}`

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}
	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	var o Options
	if err := o.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}
	if len(o.Formats) != 1 || o.Formats[0] != FormatSVG {
		t.Errorf("Formats = %v", o.Formats)
	}
	if o.Scale != DefaultScale || o.View != view.DefaultOptions() {
		t.Errorf("defaults not applied: %+v", o)
	}

	bad := Options{View: view.Options{EdgeColor: "grey"}}
	if err := bad.ValidateAndSetDefaults(); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad view options: err = %v", err)
	}
}

func TestRunnerLoad(t *testing.T) {
	r := NewRunner(nil, nil, nil)

	root, g, err := r.Load(context.Background(), []byte(sampleTree))
	if err != nil {
		t.Fatal(err)
	}
	if root == nil || g.NodeCount() != 3 || g.EdgeCount() != 2 {
		t.Errorf("Load = %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	}

	_, _, err = r.Load(context.Background(), []byte(`{"id": 1,`))
	if !errors.IsLoadFailure(err) {
		t.Errorf("truncated JSON: err = %v", err)
	}
}

func TestRunnerRenderTextFormats(t *testing.T) {
	ctx := context.Background()
	c, _ := cache.NewFileCache(t.TempDir())
	r := NewRunner(c, nil, nil)

	_, g, err := r.Load(ctx, []byte(sampleTree))
	if err != nil {
		t.Fatal(err)
	}

	opts := Options{Formats: []string{FormatDOT, FormatJSON}}
	out, hit, err := r.Render(ctx, g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("first render should miss the cache")
	}
	if !strings.Contains(string(out[FormatDOT]), "rankdir=TB") {
		t.Error("dot output is not DOT")
	}
	back, err := graph.UnmarshalGraph(out[FormatJSON])
	if err != nil || back.NodeCount() != 3 {
		t.Errorf("json output does not round-trip: %v", err)
	}

	again, hit, err := r.Render(ctx, g, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second render should hit the cache")
	}
	if string(again[FormatDOT]) != string(out[FormatDOT]) {
		t.Error("cached DOT differs")
	}

	opts.Refresh = true
	if _, hit, _ := r.Render(ctx, g, opts); hit {
		t.Error("refresh should bypass the cache")
	}

	opts.Refresh = false
	opts.View = view.DefaultOptions()
	opts.View.EdgeWidth = 7
	if _, hit, _ := r.Render(ctx, g, opts); hit {
		t.Error("changed view options should miss the cache")
	}
}

func TestRunnerExecuteSVG(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sampleTree), Options{})
	if err != nil {
		t.Fatal(err)
	}
	svg := string(res.Artifacts[FormatSVG])
	if !strings.Contains(svg, "<svg") || !strings.Contains(svg, `data-node-id="3"`) {
		t.Error("svg artifact missing or not annotated")
	}
	if res.Stats.NodeCount != 3 || res.GraphHash == "" {
		t.Errorf("result = %+v", res.Stats)
	}
}

func TestRunnerExecutePNG(t *testing.T) {
	if !render.Available() {
		t.Skip("rsvg-convert not installed")
	}
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), []byte(sampleTree), Options{Formats: []string{FormatPNG}})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(res.Artifacts[FormatPNG]), "\x89PNG") {
		t.Error("png artifact is not a PNG")
	}
}

func TestRunnerExecuteErrors(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), []byte("[]"), Options{}); !errors.IsLoadFailure(err) {
		t.Errorf("array document: err = %v", err)
	}
	if _, err := r.Execute(context.Background(), []byte(sampleTree), Options{Formats: []string{"gif"}}); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("gif: err = %v", err)
	}
}

func TestRunnerExecuteGraph(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	first, err := r.Execute(ctx, []byte(sampleTree), Options{Formats: []string{FormatJSON, FormatDOT}})
	if err != nil {
		t.Fatal(err)
	}

	res, err := r.ExecuteGraph(ctx, first.Artifacts[FormatJSON], Options{Formats: []string{FormatDOT}})
	if err != nil {
		t.Fatalf("ExecuteGraph: %v", err)
	}
	if res.Tree != nil {
		t.Error("graph input should not produce a tree")
	}
	if res.GraphHash != first.GraphHash {
		t.Errorf("graph hash = %s, want %s", res.GraphHash, first.GraphHash)
	}
	if string(res.Artifacts[FormatDOT]) != string(first.Artifacts[FormatDOT]) {
		t.Error("DOT from exported graph differs from DOT from the tree")
	}

	bad := `{"nodes":[{"id":"1"},{"id":"2"}],"edges":[]}`
	if _, err := r.ExecuteGraph(ctx, []byte(bad), Options{}); !errors.Is(err, errors.ErrCodeInvalidTree) {
		t.Errorf("disconnected graph: err = %v", err)
	}
}

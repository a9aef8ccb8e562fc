package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/tree"
	"github.com/matzehuels/reasontree/pkg/view"
)

func testScene(t *testing.T) view.Scene {
	t.Helper()
	root := &tree.Node{
		ID:    tree.IntID(1),
		Brief: tree.Str("root"),
		Children: []*tree.Node{
			{ID: tree.IntID(2), Brief: tree.Str("child A"), Reasoning: tree.Str("because")},
			{ID: tree.StringID(`say "hi"`), Brief: tree.Str("child B")},
		},
	}
	return view.BuildScene(graph.Convert(root), view.DefaultOptions())
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testScene(t), view.DefaultOptions())

	for _, want := range []string{
		"digraph G {",
		"rankdir=TB;",
		"ranksep=4.17;",
		"nodesep=5.56;",
		"fontsize=14",
		`fontcolor="#ffffff"`,
		`"1" [id="n0", label="Node 1\nroot", fillcolor="#667eea", color="#667eea"];`,
		`"2" [id="n1", label="Node 2\nchild A", fillcolor="#10b981", color="#10b981"];`,
		`"say \"hi\"" [id="n2"`,
		`"1" -> "2" [color="#64748b", penwidth=3, arrowhead=normal];`,
		`"1" -> "say \"hi\""`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestDotQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", `"plain"`},
		{"Node 3\ntwo lines", `"Node 3\ntwo lines"`},
		{`say "hi"`, `"say \"hi\""`},
		{`C:\tmp`, `"C:\\tmp"`},
		{"tab\there \u0001 ctl", `"tab here  ctl"`},
		{"caf\u00e9 \u2192 ok", "\"caf\u00e9 \u2192 ok\""},
		{"", `""`},
	}
	for _, tt := range tests {
		if got := dotQuote(tt.in); got != tt.want {
			t.Errorf("dotQuote(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestToDOTControlCharactersInBrief(t *testing.T) {
	root := &tree.Node{ID: tree.IntID(3), Brief: tree.Str("tab\there \u0001 ctl")}
	dot := ToDOT(view.BuildScene(graph.Convert(root), view.DefaultOptions()), view.DefaultOptions())

	if want := `label="Node 3\ntab here  ctl"`; !strings.Contains(dot, want) {
		t.Errorf("DOT missing %s\n%s", want, dot)
	}
	if strings.Contains(dot, `\x01`) || strings.Contains(dot, `\t`) {
		t.Errorf("DOT contains Go escapes\n%s", dot)
	}
}

func TestToDOTZeroOptionsUseDefaults(t *testing.T) {
	scene := testScene(t)
	if ToDOT(scene, view.Options{}) != ToDOT(scene, view.DefaultOptions()) {
		t.Error("zero options should render like the defaults")
	}
}

func TestAnnotate(t *testing.T) {
	scene := testScene(t)
	svg := []byte(`<svg><g id="n0" class="node"><title>1</title></g>` +
		`<g id="n2" class="node"><title>x</title></g>` +
		`<g id="n9" class="node"></g>` +
		`<g id="edge1" class="edge"></g></svg>`)

	got := string(Annotate(svg, scene))

	for _, want := range []string{
		`<g id="n0" class="node" data-node-id="1">`,
		`<g id="n2" class="node" data-node-id="say &#34;hi&#34;">`,
		`<g id="n9" class="node">`,
		`<g id="edge1" class="edge">`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("annotated SVG missing %q\n%s", want, got)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox =\n%s\nwant\n%s", got, want)
	}

	noBox := []byte(`<svg><g/></svg>`)
	if string(normalizeViewBox(noBox)) != string(noBox) {
		t.Error("SVG without viewBox should pass through")
	}
}

func TestRenderSVG(t *testing.T) {
	scene := testScene(t)
	svg, err := RenderSVG(context.Background(), ToDOT(scene, view.DefaultOptions()))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	s := string(Annotate(svg, scene))
	if !strings.Contains(s, "<svg") {
		t.Fatal("output is not SVG")
	}
	for _, id := range []string{`data-node-id="1"`, `data-node-id="2"`} {
		if !strings.Contains(s, id) {
			t.Errorf("SVG missing %s", id)
		}
	}
}

func TestRenderSVGInvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), "digraph {"); err == nil {
		t.Error("expected error for malformed DOT")
	}
}

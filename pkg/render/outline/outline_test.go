package outline

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/tree"
	"github.com/matzehuels/reasontree/pkg/view"
)

func sampleScene(t *testing.T) view.Scene {
	t.Helper()
	root, err := tree.Parse([]byte(`{
		"id": 1, "brief": "root",
		"children": [
			{"id": 2, "brief": "left", "children": [{"id": 4, "brief": "deep"}]},
			{"id": 3, "brief": "right", "reasoning": "r"}
		]
	}`))
	if err != nil {
		t.Fatal(err)
	}
	return view.BuildScene(graph.Convert(root), view.DefaultOptions())
}

func TestLayout(t *testing.T) {
	rows := Layout(sampleScene(t))

	want := []string{
		"● Node 1 · root",
		"├── ● Node 2 · left",
		"│   └── ● Node 4 · deep",
		"└── ● Node 3 · right",
	}
	if got := Plain(rows); got != strings.Join(want, "\n") {
		t.Errorf("Layout =\n%s\nwant\n%s", got, strings.Join(want, "\n"))
	}

	ids := make([]string, len(rows))
	depths := make([]int, len(rows))
	for i, r := range rows {
		ids[i], depths[i] = r.ID, r.Depth
	}
	if fmt.Sprint(ids) != "[1 2 4 3]" {
		t.Errorf("ids = %v", ids)
	}
	if fmt.Sprint(depths) != "[0 1 2 1]" {
		t.Errorf("depths = %v", depths)
	}
	if rows[3].Color != view.DefaultReasoningColor || rows[0].Color != view.DefaultPlainColor {
		t.Error("row colors do not follow the scene")
	}
}

func TestLayoutRowsMatchSceneOrder(t *testing.T) {
	scene := sampleScene(t)
	for i, r := range Layout(scene) {
		if r.ID != scene.Nodes[i].ID {
			t.Errorf("row %d = %s, scene node %s", i, r.ID, scene.Nodes[i].ID)
		}
	}
}

func TestLayoutEmpty(t *testing.T) {
	if rows := Layout(view.Scene{}); len(rows) != 0 {
		t.Errorf("empty scene produced %d rows", len(rows))
	}
}

func TestRenderContainsText(t *testing.T) {
	out := Render(Layout(sampleScene(t)), view.DefaultOptions(), 1)
	for _, want := range []string{"Node 1 · root", "Node 4 · deep", "└── "} {
		if !strings.Contains(out, want) {
			t.Errorf("Render missing %q", want)
		}
	}
	if strings.Count(out, "\n") != 3 {
		t.Errorf("Render produced %d lines", strings.Count(out, "\n")+1)
	}
}

type textSurface struct {
	frame    view.Frame
	listener func([]string)
}

func (s *textSurface) Paint(f view.Frame) error { s.frame = f; return nil }
func (s *textSurface) Clear() error             { s.frame = view.Frame{}; return nil }
func (s *textSurface) Listen(fn func([]string)) func() {
	s.listener = fn
	return func() { s.listener = nil }
}

func TestEngine(t *testing.T) {
	s := &textSurface{}
	inst, err := Engine{}.Open(context.Background(), s, sampleScene(t), view.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if s.frame.MediaType != MediaTypeText || !strings.Contains(string(s.frame.Data), "Node 3") {
		t.Errorf("frame = %q", s.frame.Data)
	}

	var got []string
	_ = inst.OnSelect(func(ids []string) { got = append(got, strings.Join(ids, ",")) })
	s.listener([]string{"4"})
	s.listener([]string{"nope"})
	s.listener([]string{"4", "nope"})
	s.listener([]string{})

	if fmt.Sprint(got) != "[4 ]" {
		t.Errorf("events = %q", got)
	}

	_ = inst.Destroy()
	if s.listener != nil {
		t.Error("Destroy did not detach")
	}
}

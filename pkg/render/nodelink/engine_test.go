package nodelink

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/matzehuels/reasontree/pkg/cache"
	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/tree"
	"github.com/matzehuels/reasontree/pkg/view"
)

type recordingSurface struct {
	mu       sync.Mutex
	frames   []view.Frame
	listener func([]string)
	detached int
	cleared  int
	paintErr error
}

func (s *recordingSurface) Paint(f view.Frame) error {
	if s.paintErr != nil {
		return s.paintErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, f)
	return nil
}

func (s *recordingSurface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleared++
	return nil
}

func (s *recordingSurface) Listen(fn func([]string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.listener = nil
		s.detached++
	}
}

func (s *recordingSurface) click(ids ...string) {
	s.mu.Lock()
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(ids)
	}
}

func TestEngineOpen(t *testing.T) {
	surface := &recordingSurface{}
	inst, err := (&Engine{}).Open(context.Background(), surface, testScene(t), view.DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer inst.Destroy()

	if len(surface.frames) != 1 {
		t.Fatalf("painted %d frames, want 1", len(surface.frames))
	}
	f := surface.frames[0]
	if f.MediaType != MediaTypeSVG {
		t.Errorf("MediaType = %s", f.MediaType)
	}
	if !strings.Contains(string(f.Data), `data-node-id="2"`) {
		t.Error("painted SVG is not annotated")
	}

	var got [][]string
	if err := inst.OnSelect(func(ids []string) { got = append(got, ids) }); err != nil {
		t.Fatal(err)
	}

	surface.click("2")
	surface.click("unknown")
	surface.click("2", "ghost")
	surface.click("1", "2")
	surface.click()

	want := [][]string{{"2"}, {"1", "2"}, {}}
	if len(got) != len(want) {
		t.Fatalf("got %d events, want %d", len(got), len(want))
	}
	for i := range want {
		if strings.Join(got[i], ",") != strings.Join(want[i], ",") {
			t.Errorf("event %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestEngineDestroy(t *testing.T) {
	surface := &recordingSurface{}
	inst, err := (&Engine{}).Open(context.Background(), surface, testScene(t), view.DefaultOptions())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	calls := 0
	_ = inst.OnSelect(func([]string) { calls++ })

	if err := inst.Destroy(); err != nil {
		t.Fatal(err)
	}
	if err := inst.Destroy(); err != nil {
		t.Fatal(err)
	}
	if surface.detached != 1 {
		t.Errorf("detached %d times, want 1", surface.detached)
	}
	if surface.cleared != 1 {
		t.Errorf("cleared %d times, want 1", surface.cleared)
	}

	surface.click("1")
	if calls != 0 {
		t.Error("destroyed instance delivered an event")
	}
	if err := inst.OnSelect(func([]string) {}); err == nil {
		t.Error("OnSelect after Destroy should fail")
	}
}

func TestEnginePaintFailureDetaches(t *testing.T) {
	surface := &recordingSurface{paintErr: errors.New("socket closed")}
	_, err := (&Engine{}).Open(context.Background(), surface, testScene(t), view.DefaultOptions())
	if err == nil {
		t.Fatal("expected paint error")
	}
	if surface.detached != 1 {
		t.Errorf("detached %d times, want 1", surface.detached)
	}
	if surface.cleared != 1 {
		t.Errorf("cleared %d times, want 1", surface.cleared)
	}
}

func TestEngineCachesSVG(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	e := NewEngine(c, nil, nil)
	scene := testScene(t)

	first, err := e.SVG(ctx, scene, view.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}

	key := cache.NewDefaultKeyer().ArtifactKey(cache.Hash([]byte(ToDOT(scene, view.DefaultOptions()))), cache.ArtifactKeyOpts{Format: "svg"})
	if _, ok, _ := c.Get(ctx, key); !ok {
		t.Fatal("SVG was not cached")
	}

	_ = c.Set(ctx, key, []byte("<svg>cached</svg>"), 0)
	second, err := e.SVG(ctx, scene, view.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	if string(second) != "<svg>cached</svg>" {
		t.Error("second render did not come from the cache")
	}
	if string(first) == string(second) {
		t.Error("first render should have come from Graphviz")
	}
}

func TestEngineWithView(t *testing.T) {
	surface := &recordingSurface{}
	v := view.New(&Engine{}, surface, nil)
	defer v.Close()

	root := &tree.Node{
		ID:       tree.IntID(1),
		Brief:    tree.Str("root"),
		Children: []*tree.Node{{ID: tree.IntID(2), Brief: tree.Str("leaf"), Reasoning: tree.Str("why")}},
	}
	var got []graph.Detail
	err := v.Render(context.Background(), graph.Convert(root), view.DefaultOptions(), func(d graph.Detail) {
		got = append(got, d)
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	surface.click("2")
	surface.click("1", "2")
	surface.click("2", "ghost")
	surface.click("ghost")
	if len(got) != 1 || got[0].Brief != "leaf" {
		t.Fatalf("selections = %+v", got)
	}
	if got[0].Reasoning == nil || *got[0].Reasoning != "why" {
		t.Errorf("reasoning = %v", got[0].Reasoning)
	}
}

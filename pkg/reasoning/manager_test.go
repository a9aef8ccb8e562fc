package reasoning

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/tree"
)

func grow(t *testing.T, m *Manager, briefs ...string) {
	t.Helper()
	for _, b := range briefs {
		if _, err := m.Continue(Step{Brief: b, Reasoning: "why " + b}); err != nil {
			t.Fatalf("Continue(%s): %v", b, err)
		}
	}
}

func TestNew(t *testing.T) {
	m := New()
	if len(m.ID()) != 4 {
		t.Errorf("run id %q should have 4 characters", m.ID())
	}
	if m.Size() != 0 || m.Current() != RootID {
		t.Errorf("size %d current %d", m.Size(), m.Current())
	}
	root, ok := m.Find(RootID)
	if !ok || *root.Brief != "" || *root.Reasoning != "" {
		t.Error("root should exist with empty brief and reasoning")
	}
}

func TestContinue(t *testing.T) {
	m := New()
	n, err := m.Continue(Step{Brief: "first", Reasoning: "r1"})
	if err != nil {
		t.Fatal(err)
	}
	if n.ID != tree.IntID(1) || m.Current() != 1 || m.Size() != 1 {
		t.Errorf("after first continue: id %s current %d size %d", n.ID, m.Current(), m.Size())
	}

	grow(t, m, "second")
	root, _ := m.Find(RootID)
	if len(root.Children) != 1 || len(root.Children[0].Children) != 1 {
		t.Error("continue should chain under the cursor")
	}

	if _, err := m.Continue(Step{Brief: "  "}); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("blank brief: err = %v", err)
	}
	if m.Size() != 2 {
		t.Error("rejected step changed the tree")
	}
}

func TestMoveTo(t *testing.T) {
	m := New()
	grow(t, m, "a", "b")

	if err := m.MoveTo(0); err != nil {
		t.Fatal(err)
	}
	grow(t, m, "c")

	root, _ := m.Find(RootID)
	if len(root.Children) != 2 {
		t.Fatalf("root has %d children, want 2", len(root.Children))
	}
	if root.Children[1].ID != tree.IntID(3) {
		t.Errorf("new branch id = %s, want 3", root.Children[1].ID)
	}

	if err := m.MoveTo(42); !errors.Is(err, errors.ErrCodeNotFound) {
		t.Errorf("MoveTo(42) err = %v", err)
	}
	if m.Current() != 3 {
		t.Error("failed move changed the cursor")
	}
}

func TestPathTo(t *testing.T) {
	m := New()
	grow(t, m, "a", "b")
	_ = m.MoveTo(1)
	grow(t, m, "c")

	tests := []struct {
		id   int
		want string
		ok   bool
	}{
		{0, "[0]", true},
		{2, "[0 1 2]", true},
		{3, "[0 1 3]", true},
		{9, "[]", false},
	}
	for _, tt := range tests {
		path, ok := m.PathTo(tt.id)
		if ok != tt.ok || (ok && fmt.Sprint(path) != tt.want) {
			t.Errorf("PathTo(%d) = %v, %v; want %s, %v", tt.id, path, ok, tt.want, tt.ok)
		}
	}
}

func TestCompressed(t *testing.T) {
	m := New()
	grow(t, m, "a", "b")
	_ = m.MoveTo(0)
	grow(t, m, "c")

	c := m.Compressed()
	reasoning := map[string]bool{}
	tree.Walk(c, func(n *tree.Node, _ int) bool {
		reasoning[n.ID.String()] = n.Reasoning != nil
		if n.Brief == nil {
			t.Errorf("node %s lost its brief", n.ID)
		}
		return true
	})
	want := map[string]bool{"0": true, "1": false, "2": false, "3": true}
	for id, has := range want {
		if reasoning[id] != has {
			t.Errorf("node %s reasoning present = %v, want %v", id, reasoning[id], has)
		}
	}

	c.Children[0].Brief = tree.Str("mutated")
	if n, _ := m.Find(1); *n.Brief != "a" {
		t.Error("Compressed shares nodes with the live tree")
	}
}

func TestCompressedJSON(t *testing.T) {
	m := New()
	grow(t, m, "a")
	_ = m.MoveTo(0)

	data, err := json.Marshal(m.Compressed())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":0,"brief":"","reasoning":"","children":[{"id":1,"brief":"a","children":[]}]}`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}

	if _, err := tree.Parse(data); err != nil {
		t.Errorf("compressed output does not load: %v", err)
	}
}

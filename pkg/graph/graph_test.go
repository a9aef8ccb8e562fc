package graph

import (
	"bytes"
	"strings"
	"testing"

	"github.com/matzehuels/reasontree/pkg/errors"
)

func TestMarshalGraph(t *testing.T) {
	g := Convert(mustParse(t, `{"id":1,"brief":"root","children":[{"id":2,"reasoning":"why"}]}`))

	data, err := MarshalGraph(g)
	if err != nil {
		t.Fatalf("MarshalGraph() error: %v", err)
	}

	s := string(data)
	for _, want := range []string{
		`"id": "1"`,
		`"label": "Node 1\nroot"`,
		`"color_tag": "reasoning"`,
		`"node_id": 2`,
		`"reasoning": null`,
		`"from": "1"`,
	} {
		if !strings.Contains(s, want) {
			t.Errorf("MarshalGraph() output missing %s:\n%s", want, s)
		}
	}

	back, err := UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("UnmarshalGraph() error: %v", err)
	}
	if back.NodeCount() != 2 || back.EdgeCount() != 1 {
		t.Errorf("decoded %d nodes / %d edges", back.NodeCount(), back.EdgeCount())
	}
	if back.Nodes[1].Detail.NodeID.String() != "2" {
		t.Errorf("decoded node id = %q", back.Nodes[1].Detail.NodeID.String())
	}
}

func TestWriteReadGraph(t *testing.T) {
	g := Convert(mustParse(t, `{"id":"r","children":[{"id":"c"}]}`))

	var buf bytes.Buffer
	if err := WriteGraph(g, &buf); err != nil {
		t.Fatalf("WriteGraph() error: %v", err)
	}
	back, err := ReadGraph(&buf)
	if err != nil {
		t.Fatalf("ReadGraph() error: %v", err)
	}
	if back.Edges[0] != (Edge{From: "r", To: "c"}) {
		t.Errorf("edge = %+v", back.Edges[0])
	}
}

func TestUnmarshalGraphErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"truncated", `{`, errors.ErrCodeInvalidInput},
		{"no nodes", `{"nodes":[],"edges":[]}`, errors.ErrCodeInvalidTree},
		{"missing edge", `{"nodes":[{"id":"1"},{"id":"2"}],"edges":[]}`, errors.ErrCodeInvalidTree},
		{"unknown endpoint", `{"nodes":[{"id":"1"},{"id":"2"}],"edges":[{"from":"1","to":"9"}]}`, errors.ErrCodeInvalidTree},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalGraph([]byte(tt.data))
			if got := errors.GetCode(err); got != tt.code {
				t.Errorf("code = %s, want %s (err %v)", got, tt.code, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	nodes := func(ids ...string) []Node {
		out := make([]Node, len(ids))
		for i, id := range ids {
			out[i] = Node{ID: id}
		}
		return out
	}
	tests := []struct {
		name    string
		g       *Graph
		wantErr string
	}{
		{"converted", Convert(mustParse(t, `{"id":1,"children":[{"id":2,"children":[{"id":3}]},{"id":4}]}`)), ""},
		{"single node", &Graph{Nodes: nodes("a")}, ""},
		{"nil", nil, "no nodes"},
		{"duplicate id", &Graph{Nodes: nodes("a", "a")}, "duplicate id"},
		{"edge into root", &Graph{Nodes: nodes("a", "b"), Edges: []Edge{{From: "b", To: "a"}}}, "has a parent"},
		{"two parents", &Graph{Nodes: nodes("a", "b", "c"), Edges: []Edge{{From: "a", To: "c"}, {From: "b", To: "c"}}}, "already has parent"},
		{"child before parent", &Graph{Nodes: nodes("a", "b", "c"), Edges: []Edge{{From: "a", To: "b"}, {From: "c", To: "b"}}}, "pre-order"},
		{"disconnected", &Graph{Nodes: nodes("a", "b", "c"), Edges: []Edge{{From: "a", To: "b"}}}, "want 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.g)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
			if !errors.Is(err, errors.ErrCodeInvalidTree) {
				t.Errorf("Validate() code = %s", errors.GetCode(err))
			}
		})
	}
}

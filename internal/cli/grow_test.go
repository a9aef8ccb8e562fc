package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/reasontree/pkg/reasoning"
	"github.com/matzehuels/reasontree/pkg/tree"
)

func TestGrowCommand(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	dir := t.TempDir()
	actions := strings.Join([]string{
		`{"action": "continue", "brief": "split the problem", "reasoning": "two cases"}`,
		`{"action": "continue", "brief": "case one"}`,
		`{"action": "move", "node_id": 1}`,
		`{"action": "continue", "brief": "case two"}`,
		`{"action": "finish"}`,
	}, "\n")
	in := writeTree(t, dir, "actions.ndjson", actions)
	snapDir := filepath.Join(dir, "snaps")

	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs([]string{"grow", in, "--snapshot-dir", snapDir, "--task", "prove it"})
	if err := root.Execute(); err != nil {
		t.Fatalf("grow: %v", err)
	}

	runs, err := os.ReadDir(snapDir)
	if err != nil || len(runs) != 1 {
		t.Fatalf("want one run directory, got %v (%v)", runs, err)
	}
	runDir := filepath.Join(snapDir, runs[0].Name())

	last, err := tree.ReadFile(filepath.Join(runDir, "3.json"))
	if err != nil {
		t.Fatalf("read last snapshot: %v", err)
	}
	if got := tree.Count(last); got != 4 {
		t.Errorf("last snapshot has %d nodes, want 4", got)
	}

	log, err := os.ReadFile(filepath.Join(runDir, reasoning.JournalFile))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"prove it", "case two"} {
		if !strings.Contains(string(log), want) {
			t.Errorf("journal does not mention %q", want)
		}
	}
}

func TestGrowMissingInput(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"grow", filepath.Join(t.TempDir(), "none.ndjson")})
	if err := root.Execute(); err == nil {
		t.Error("expected an error for a missing action file")
	}
}

package reasoning

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/matzehuels/reasontree/pkg/tree"
)

// Snapshotter writes compressed trees as <Dir>/<run>/<size>.json.
type Snapshotter struct {
	Dir string
}

// RunDir returns the directory holding a run's snapshots and journal.
func (s *Snapshotter) RunDir(runID string) string {
	return filepath.Join(s.Dir, runID)
}

// Write saves the compressed tree of m and returns the file path. A later
// write at the same size overwrites the earlier one.
func (s *Snapshotter) Write(m *Manager) (string, error) {
	dir := s.RunDir(m.ID())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, strconv.Itoa(m.Size())+".json")
	if err := tree.WriteFile(path, m.Compressed()); err != nil {
		return "", err
	}
	return path, nil
}

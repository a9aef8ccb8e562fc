package reasoning

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/tree"
)

// RootID is the id of the root node every run starts with.
const RootID = 0

// Step is the content of a new reasoning node.
type Step struct {
	Reasoning string `json:"reasoning"`
	Brief     string `json:"brief"`
}

// Manager holds one growing tree. It is safe for concurrent use.
type Manager struct {
	id string

	mu      sync.RWMutex
	root    *tree.Node
	nodes   map[int]*tree.Node
	parent  map[int]int
	size    int
	current int
}

// New starts a run with an empty root.
func New() *Manager {
	root := &tree.Node{
		ID:        tree.IntID(RootID),
		Brief:     tree.Str(""),
		Reasoning: tree.Str(""),
		Children:  []*tree.Node{},
	}
	return &Manager{
		id:      uuid.NewString()[:4],
		root:    root,
		nodes:   map[int]*tree.Node{RootID: root},
		parent:  map[int]int{},
		current: RootID,
	}
}

// ID returns the short run id used to name snapshot directories.
func (m *Manager) ID() string { return m.id }

// Size returns the number of nodes added after the root.
func (m *Manager) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.size
}

// Current returns the id of the cursor node.
func (m *Manager) Current() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Continue appends step as a child of the current node and moves the cursor
// onto it. The brief must not be blank.
func (m *Manager) Continue(step Step) (*tree.Node, error) {
	if strings.TrimSpace(step.Brief) == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "continue: brief must not be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	parent := m.nodes[m.current]
	id := m.size + 1
	n := &tree.Node{
		ID:        tree.IntID(id),
		Brief:     tree.Str(step.Brief),
		Reasoning: tree.Str(step.Reasoning),
		Children:  []*tree.Node{},
	}
	parent.Children = append(parent.Children, n)
	m.nodes[id] = n
	m.parent[id] = m.current
	m.size = id
	m.current = id
	return n, nil
}

// MoveTo moves the cursor to an existing node.
func (m *Manager) MoveTo(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[id]; !ok {
		return errors.New(errors.ErrCodeNotFound, "node %d not found (tree has nodes 0..%d)", id, m.size)
	}
	m.current = id
	return nil
}

// Find returns the node with the given id.
func (m *Manager) Find(id int) (*tree.Node, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.nodes[id]
	return n, ok
}

// PathTo returns the ids from the root down to id, inclusive.
func (m *Manager) PathTo(id int) ([]int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pathLocked(id)
}

func (m *Manager) pathLocked(id int) ([]int, bool) {
	if _, ok := m.nodes[id]; !ok {
		return nil, false
	}
	var rev []int
	for cur := id; ; {
		rev = append(rev, cur)
		if cur == RootID {
			break
		}
		cur = m.parent[cur]
	}
	path := make([]int, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path, true
}

// Compressed returns a copy of the tree in which only nodes on the path to
// the cursor carry reasoning.
func (m *Manager) Compressed() *tree.Node {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := map[int]bool{RootID: true}
	if path, ok := m.pathLocked(m.current); ok {
		for _, id := range path {
			active[id] = true
		}
	}
	return compress(m.root, active)
}

func compress(n *tree.Node, active map[int]bool) *tree.Node {
	out := &tree.Node{
		ID:       n.ID,
		Brief:    tree.Str(*n.Brief),
		Children: make([]*tree.Node, len(n.Children)),
	}
	if id, err := strconv.Atoi(n.ID.String()); err == nil && active[id] {
		out.Reasoning = tree.Str(*n.Reasoning)
	}
	for i, c := range n.Children {
		out.Children[i] = compress(c, active)
	}
	return out
}

package outline

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/view"
)

// Connectors used between rows.
const (
	branch   = "├── "
	lastLeaf = "└── "
	pipe     = "│   "
	blank    = "    "
	bullet   = "●"
)

// Row is one line of an outline.
type Row struct {
	ID     string
	Depth  int
	Prefix string // connector art before the bullet
	Text   string // label lines joined by " · "
	Color  string
}

// String renders the row without styling.
func (r Row) String() string {
	return r.Prefix + bullet + " " + r.Text
}

// Layout arranges scene nodes as a top-down tree. Children follow the order
// of the scene's edges. Nodes no edge reaches start their own tree.
func Layout(scene view.Scene) []Row {
	index := make(map[string]int, len(scene.Nodes))
	for i, n := range scene.Nodes {
		index[n.ID] = i
	}
	children := make(map[string][]string, len(scene.Nodes))
	hasParent := make(map[string]bool, len(scene.Nodes))
	for _, e := range scene.Edges {
		if _, ok := index[e.To]; !ok {
			continue
		}
		children[e.From] = append(children[e.From], e.To)
		hasParent[e.To] = true
	}

	rows := make([]Row, 0, len(scene.Nodes))
	seen := make(map[string]bool, len(scene.Nodes))

	var walk func(id, indent string, depth int, last, root bool)
	walk = func(id, indent string, depth int, last, root bool) {
		if seen[id] {
			return
		}
		seen[id] = true
		n := scene.Nodes[index[id]]

		prefix, childIndent := "", ""
		if !root {
			prefix, childIndent = indent+branch, indent+pipe
			if last {
				prefix, childIndent = indent+lastLeaf, indent+blank
			}
		}
		rows = append(rows, Row{
			ID:     n.ID,
			Depth:  depth,
			Prefix: prefix,
			Text:   strings.Join(graph.LabelLines(n.Label), " · "),
			Color:  n.Color,
		})

		kids := children[id]
		for i, c := range kids {
			walk(c, childIndent, depth+1, i == len(kids)-1, false)
		}
	}

	for _, n := range scene.Nodes {
		if !hasParent[n.ID] {
			walk(n.ID, "", 0, true, true)
		}
	}
	// Cycles have no root; draw whatever is left flat.
	for _, n := range scene.Nodes {
		walk(n.ID, "", 0, true, true)
	}
	return rows
}

// Render styles rows for a terminal. The bullet takes the node color and
// the row at highlight (if any) is drawn in the highlight color.
func Render(rows []Row, opts view.Options, highlight int) string {
	opts.SetDefaults()
	hl := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(opts.HighlightColor))
	connector := lipgloss.NewStyle().Foreground(lipgloss.Color(opts.EdgeColor))

	var b strings.Builder
	for i, r := range rows {
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(r.Color)).Render(bullet)
		text := r.Text
		if i == highlight {
			text = hl.Render(text)
		}
		b.WriteString(connector.Render(r.Prefix))
		b.WriteString(dot)
		b.WriteString(" ")
		b.WriteString(text)
		if i < len(rows)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// Plain renders rows without any styling.
func Plain(rows []Row) string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.String()
	}
	return strings.Join(lines, "\n")
}

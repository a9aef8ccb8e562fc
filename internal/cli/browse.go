package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/reasontree/pkg/errors"
	"github.com/matzehuels/reasontree/pkg/graph"
	"github.com/matzehuels/reasontree/pkg/render/outline"
	"github.com/matzehuels/reasontree/pkg/session"
	"github.com/matzehuels/reasontree/pkg/view"
)

// browseCommand creates the browse command.
func (c *CLI) browseCommand() *cobra.Command {
	var vf viewFlags

	cmd := &cobra.Command{
		Use:   "browse [tree.json]",
		Short: "Explore a reasoning tree in the terminal",
		Long: `Explore a reasoning tree in the terminal.

Move with the arrow keys, press enter to open a node's brief and reasoning,
esc to close it, o to open another file and r to reload the current one.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := vf.apply(c.Config.View)
			if err != nil {
				return err
			}
			surface := newTermSurface()
			sess := session.New(view.New(outline.Engine{}, surface, c.Logger), opts, c.Logger)
			defer sess.Close()

			m := newBrowseModel(cmd.Context(), sess, surface, opts)
			if len(args) == 1 {
				m.path = args[0]
			}
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
	vf.register(cmd)
	return cmd
}

// =============================================================================
// termSurface - the terminal canvas
// =============================================================================

// termSurface keeps the last painted outline and relays key selections to
// the engine instance listening on it.
type termSurface struct {
	mu       sync.Mutex
	frame    string
	painted  bool
	listener map[int]func([]string)
	next     int
}

func newTermSurface() *termSurface {
	return &termSurface{listener: make(map[int]func([]string))}
}

func (s *termSurface) Paint(f view.Frame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = string(f.Data)
	s.painted = true
	return nil
}

func (s *termSurface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = ""
	s.painted = false
	return nil
}

func (s *termSurface) Listen(fn func([]string)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.next
	s.next++
	s.listener[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listener, id)
	}
}

// click delivers ids to the listeners synchronously.
func (s *termSurface) click(ids []string) {
	s.mu.Lock()
	fns := make([]func([]string), 0, len(s.listener))
	for _, fn := range s.listener {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn(ids)
	}
}

// lines returns the painted outline split into rows, or nil when nothing is
// painted.
func (s *termSurface) lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.painted {
		return nil
	}
	return strings.Split(s.frame, "\n")
}

// =============================================================================
// browseModel - bubbletea program
// =============================================================================

var (
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	cursorStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	bannerStyle = lipgloss.NewStyle().Foreground(colorWhite).Background(colorRed).Padding(0, 1)
)

// loadedMsg reports a finished file load.
type loadedMsg struct {
	path string
	err  error
}

type browseModel struct {
	ctx     context.Context
	sess    *session.Session
	surface *termSurface
	opts    view.Options

	path    string
	ids     []string // node id per outline row
	cursor  int
	offset  int
	height  int
	width   int
	state   session.State
	notice  string // errors that are not load failures
	opening bool
	input   string
}

func newBrowseModel(ctx context.Context, sess *session.Session, surface *termSurface, opts view.Options) browseModel {
	return browseModel{
		ctx:     ctx,
		sess:    sess,
		surface: surface,
		opts:    opts,
		height:  20,
		state:   sess.Snapshot(),
	}
}

func (m browseModel) Init() tea.Cmd {
	if m.path == "" {
		return nil
	}
	return m.load(m.path)
}

// load reads and loads path off the update loop.
func (m browseModel) load(path string) tea.Cmd {
	sess, ctx := m.sess, m.ctx
	return func() tea.Msg {
		name := filepath.Base(path)
		if err := errors.ValidateTreeFilename(name); err != nil {
			return loadedMsg{path: path, err: err}
		}
		data, err := readInput(path)
		if err != nil {
			return loadedMsg{path: path, err: err}
		}
		return loadedMsg{path: path, err: sess.Load(ctx, name, data)}
	}
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		m.notice = ""
		if msg.err != nil && !errors.IsLoadFailure(msg.err) {
			m.notice = errors.UserMessage(msg.err)
		}
		if msg.err == nil {
			m.path = msg.path
			m.cursor, m.offset = 0, 0
		}
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = max(msg.Height-8, 5)
		return m, nil

	case tea.KeyMsg:
		if m.opening {
			return m.updatePrompt(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.ids)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			if len(m.ids) > 0 {
				m.surface.click([]string{m.ids[m.cursor]})
				m.refresh()
			}
		case "esc":
			m.sess.Dismiss()
			m.refresh()
		case "o":
			m.opening = true
			m.input = ""
		case "r":
			if m.path != "" {
				return m, m.load(m.path)
			}
		}
	}
	return m, nil
}

func (m browseModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.opening = false
	case tea.KeyEnter:
		m.opening = false
		if path := strings.TrimSpace(m.input); path != "" {
			return m, m.load(path)
		}
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.input += string(msg.Runes)
	}
	return m, nil
}

// refresh pulls the session state and the row ids of the painted outline.
func (m *browseModel) refresh() {
	m.state = m.sess.Snapshot()
	m.ids = nil
	if m.state.Graph != nil {
		for _, r := range outline.Layout(view.BuildScene(m.state.Graph, m.opts)) {
			m.ids = append(m.ids, r.ID)
		}
	}
	if m.cursor >= len(m.ids) {
		m.cursor = max(len(m.ids)-1, 0)
	}
}

func (m browseModel) View() string {
	var b strings.Builder

	title := StyleTitle.Render(appName)
	if m.state.Filename != "" {
		title += " " + StyleDim.Render(m.state.Filename+fmt.Sprintf(" · %d nodes", m.state.Nodes))
	}
	b.WriteString(title + "\n")
	b.WriteString(StyleDim.Render("↑/↓ move  ⏎ details  esc close  o open  r reload  q quit"))
	b.WriteString("\n\n")

	if m.state.Error != "" {
		b.WriteString(bannerStyle.Render("Failed to load: "+m.state.Error) + "\n\n")
	}
	if m.notice != "" {
		b.WriteString(StyleError.Render(m.notice) + "\n\n")
	}

	lines := m.surface.lines()
	switch {
	case lines != nil:
		end := min(m.offset+m.height, len(lines))
		for i := m.offset; i < end; i++ {
			marker := "  "
			if i == m.cursor {
				marker = cursorStyle.Render("▸ ")
			}
			b.WriteString(marker + lines[i] + "\n")
		}
	case m.state.Error == "":
		b.WriteString(StyleDim.Render("No tree loaded. Press o to open a file.") + "\n")
	}

	if d := m.state.Selected; d != nil && m.state.Error == "" {
		b.WriteString("\n" + detailPanel(*d, m.width))
	}

	if m.opening {
		b.WriteString("\n" + StyleValue.Render("Open: ") + m.input + cursorStyle.Render("█"))
	}
	return b.String()
}

// detailPanel renders the brief and reasoning of a selected node.
func detailPanel(d graph.Detail, width int) string {
	reasoning := StyleDim.Render("No reasoning recorded.")
	if d.HasReasoning {
		reasoning = *d.Reasoning
	}
	body := StyleTitle.Render("Node "+d.NodeID.String()) + "\n\n" +
		StyleDim.Render("Brief") + "\n" + d.Brief + "\n\n" +
		StyleDim.Render("Reasoning") + "\n" + reasoning
	style := panelStyle
	if width > 4 {
		style = style.Width(width - 4)
	}
	return style.Render(body)
}

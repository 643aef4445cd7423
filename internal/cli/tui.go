package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	errs "github.com/matzehuels/jsonflow/pkg/errors"
	"github.com/matzehuels/jsonflow/pkg/flow"
	"github.com/matzehuels/jsonflow/pkg/graph"
	"github.com/matzehuels/jsonflow/pkg/jsonvalue"
	"github.com/matzehuels/jsonflow/pkg/visualizer"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listPendingStyle  = lipgloss.NewStyle().Foreground(colorYellow)
	previewStyle      = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorDim).
				Padding(0, 1)
)

const editHelp = "↑/↓ move  t toggle  d delete  x detach  c connect  r reorganize  s save  pgup/pgdn scroll  q quit"

const (
	listWidth    = 48
	previewWidth = 44
)

// =============================================================================
// EditModel - Interactive graph editor
// =============================================================================

// editRow is one line of the node list.
type editRow struct {
	id    string
	depth int
}

// EditModel is the bubbletea model of the edit command. It lists the graph
// as an indented forest and applies edits through a visualizer.
type EditModel struct {
	vz   *visualizer.Visualizer
	save func(*flow.Graph) error

	rows    []editRow
	Cursor  int
	Offset  int
	Height  int
	pending string // source node of a connect in progress

	Status  string
	Changes int
	Dirty   bool
	preview viewport.Model
}

// NewEditModel creates an editor over vz. save is called by the "s" key.
func NewEditModel(vz *visualizer.Visualizer, save func(*flow.Graph) error) *EditModel {
	m := &EditModel{vz: vz, save: save, Height: 15, preview: viewport.New(previewWidth, 15)}
	m.refresh()
	if v, err := vz.Value(); err == nil {
		m.setPreview(v)
	}
	return m
}

// OnDataChange is passed to the visualizer as its change callback.
func (m *EditModel) OnDataChange(v jsonvalue.Value) {
	m.Changes++
	m.setPreview(v)
}

func (m *EditModel) Init() tea.Cmd {
	return nil
}

func (m *EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.preview, cmd = m.preview.Update(msg)
			return m, cmd
		}
		return m, m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
		m.preview.Height = m.Height
		if w := msg.Width - listWidth - 4; w > 10 {
			m.preview.Width = w
		}
	}
	return m, nil
}

func (m *EditModel) handleKey(key string) tea.Cmd {
	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "esc":
		if m.pending != "" {
			m.pending = ""
			m.Status = "connect cancelled"
		}
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "t":
		m.toggle()
	case "d":
		m.deleteNode()
	case "x":
		m.detach()
	case "c", "enter":
		m.connect()
	case "r":
		m.vz.Reorganize()
		m.Dirty = true
		m.Status = "layout reorganized"
	case "s":
		m.write()
	}
	return nil
}

// Selected returns the node ID under the cursor.
func (m *EditModel) Selected() string {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.Cursor].id
}

func (m *EditModel) move(delta int) {
	m.Cursor += delta
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	if m.Cursor > len(m.rows)-1 {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

func (m *EditModel) toggle() {
	id := m.Selected()
	if id == "" {
		return
	}
	changed, err := m.vz.Toggle(id)
	switch {
	case err != nil:
		m.fail(err)
	case !changed:
		m.Status = fmt.Sprintf("%s has nothing to toggle", id)
	default:
		m.Status = fmt.Sprintf("toggled %s", id)
		m.edited()
	}
}

func (m *EditModel) deleteNode() {
	id := m.Selected()
	if id == "" {
		return
	}
	if err := m.vz.DeleteNode(id); err != nil {
		m.fail(err)
		return
	}
	if m.pending == id {
		m.pending = ""
	}
	m.Status = fmt.Sprintf("deleted %s", id)
	m.edited()
}

func (m *EditModel) detach() {
	id := m.Selected()
	if id == "" {
		return
	}
	parents := m.vz.Graph().Parents(id)
	if len(parents) == 0 {
		m.Status = fmt.Sprintf("%s is already a root", id)
		return
	}
	edgeID := flow.EdgeID(parents[0], id)
	if err := m.vz.DeleteEdge(edgeID); err != nil {
		m.fail(err)
		return
	}
	m.Status = fmt.Sprintf("removed %s", edgeID)
	m.edited()
}

// connect marks the selected node as source on the first press and adds
// the edge to the selected node on the second.
func (m *EditModel) connect() {
	id := m.Selected()
	if id == "" {
		return
	}
	if m.pending == "" {
		m.pending = id
		m.Status = fmt.Sprintf("connect %s to… (select child, c to confirm, esc to cancel)", id)
		return
	}
	source := m.pending
	m.pending = ""
	e, err := m.vz.Connect(source, id)
	if err != nil {
		m.fail(err)
		return
	}
	m.Status = fmt.Sprintf("added %s", e.ID)
	m.edited()
}

func (m *EditModel) write() {
	if m.save == nil {
		return
	}
	if err := m.save(m.vz.Graph()); err != nil {
		m.fail(err)
		return
	}
	m.Dirty = false
	m.Status = "saved"
}

func (m *EditModel) fail(err error) {
	if code := errs.GetCode(err); code != "" {
		m.Status = fmt.Sprintf("%s: %s", code, errs.UserMessage(err))
		return
	}
	m.Status = err.Error()
}

func (m *EditModel) edited() {
	m.Dirty = true
	m.refresh()
}

// refresh rebuilds the node list and clamps the cursor.
func (m *EditModel) refresh() {
	m.rows = forestRows(m.vz.Graph())
	if m.Cursor > len(m.rows)-1 {
		m.Cursor = len(m.rows) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *EditModel) setPreview(v jsonvalue.Value) {
	data, err := jsonvalue.MarshalIndent(v)
	if err != nil {
		m.preview.SetContent(err.Error())
		return
	}
	m.preview.SetContent(strings.TrimRight(string(data), "\n"))
}

// forestRows lists nodes depth-first from each root in node order.
func forestRows(g *flow.Graph) []editRow {
	rows := make([]editRow, 0, g.NodeCount())
	seen := make(map[string]bool, g.NodeCount())

	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if seen[id] {
			return
		}
		seen[id] = true
		rows = append(rows, editRow{id: id, depth: depth})
		for _, child := range g.Children(id) {
			walk(child, depth+1)
		}
	}
	for _, r := range g.Roots() {
		walk(r.ID, 0)
	}
	for _, n := range g.Nodes() {
		walk(n.ID, 0)
	}
	return rows
}

func (m *EditModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Edit Graph"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(editHelp))
	b.WriteString("\n\n")

	g := m.vz.Graph()
	end := m.Offset + m.Height
	if end > len(m.rows) {
		end = len(m.rows)
	}

	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		row := m.rows[i]
		n, ok := g.Node(row.id)
		if !ok {
			continue
		}

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		dot := lipgloss.NewStyle().Foreground(lipgloss.Color(flow.Color(n.Kind))).Render("●")
		text := fmt.Sprintf("%s%s %s %s", strings.Repeat("  ", row.depth), n.Label(), g.Summary(n.ID), listDimStyle.Render(n.ID))

		style := listNormalStyle
		switch {
		case row.id == m.pending:
			style = listPendingStyle
		case i == m.Cursor:
			style = listSelectedStyle
		}
		list.WriteString(cursor + dot + " " + style.Render(text) + "\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(listWidth).Render(list.String()),
		previewStyle.Render(m.preview.View()),
	))
	b.WriteString("\n\n")

	footer := fmt.Sprintf("  [%d/%d]  %d changes", m.Cursor+1, len(m.rows), m.Changes)
	if m.Dirty {
		footer += "  " + StyleWarning.Render("unsaved")
	}
	b.WriteString(listDimStyle.Render(footer))
	if m.Status != "" {
		b.WriteString("\n  " + m.Status)
	}
	b.WriteString("\n")

	return b.String()
}

// Compile-time check.
var _ tea.Model = (*EditModel)(nil)

// saveGraphTo returns a save function writing graph files to path.
func saveGraphTo(path string) func(*flow.Graph) error {
	return func(g *flow.Graph) error {
		return graph.WriteGraphFile(g, path)
	}
}

package browser

import (
	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-jupyter/pkg/service"
	"github.com/mattsolo1/grove-jupyter/pkg/tree"
)

// Model is the main model for the contents browser TUI
type Model struct {
	service *service.Service
	workdir *service.Workdir
	root    *tree.Item
	items   []*tree.Item // visible rows

	cursor       int
	scrollOffset int
	keys         KeyMap
	help         help.Model
	width        int
	height       int

	statusMessage string
	statusIsError bool
	busy          bool // a document is being opened, edited or saved
}

// New creates a browser rooted at the directory root.
func New(svc *service.Service, root string) (Model, error) {
	wd, err := service.NewWorkdir(svc.Config.Server)
	if err != nil {
		return Model{}, err
	}

	r := tree.NewRoot(root)
	r.Expanded = true
	r.Loading = true

	return Model{
		service: svc,
		workdir: wd,
		root:    r,
		keys:    keys,
		help:    help.New(),
	}, nil
}

// Init lists the root directory.
func (m Model) Init() tea.Cmd {
	return fetchChildrenCmd(m.service, m.root.Node.Path)
}

// Close removes the local copies of edited documents. Copies whose save
// failed are kept and returned.
func (m Model) Close() ([]string, error) {
	if m.workdir == nil {
		return nil, nil
	}
	return m.workdir.Release()
}

func (m *Model) selected() *tree.Item {
	if m.cursor < 0 || m.cursor >= len(m.items) {
		return nil
	}
	return m.items[m.cursor]
}

// refreshItems rebuilds the visible rows and keeps the cursor on the same
// path when it is still shown.
func (m *Model) refreshItems() {
	var current string
	if sel := m.selected(); sel != nil {
		current = sel.Node.Path
	}

	m.items = m.root.Visible()

	m.cursor = clamp(m.cursor, 0, len(m.items)-1)
	for i, it := range m.items {
		if it.Node.Path == current {
			m.cursor = i
			break
		}
	}
	m.ensureCursorVisible()
}

func (m *Model) getViewportHeight() int {
	// header, blank, blank, status, footer
	const chrome = 6
	if m.height <= chrome {
		return 10
	}
	return m.height - chrome
}

func (m *Model) ensureCursorVisible() {
	vh := m.getViewportHeight()
	if m.cursor < m.scrollOffset {
		m.scrollOffset = m.cursor
	}
	if m.cursor >= m.scrollOffset+vh {
		m.scrollOffset = m.cursor - vh + 1
	}
	if m.scrollOffset < 0 {
		m.scrollOffset = 0
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMessage = msg
	m.statusIsError = isErr
}

func clamp(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

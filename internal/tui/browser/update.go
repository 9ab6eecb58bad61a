package browser

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-jupyter/pkg/tree"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.ensureCursorVisible()
		return m, nil

	case childrenLoadedMsg:
		item := m.root.Find(msg.path)
		if item == nil {
			// The directory left the tree while it was being listed.
			return m, nil
		}
		if msg.err != nil {
			item.Loading = false
			if item != m.root {
				item.Expanded = false
			}
			m.setStatus(fmt.Sprintf("Error listing %s: %v", msg.path, msg.err), true)
			m.refreshItems()
			return m, nil
		}
		item.SetChildren(msg.nodes)
		item.Expanded = true
		if len(msg.nodes) == 0 {
			m.setStatus(fmt.Sprintf("%s is empty", msg.path), false)
		} else if !m.statusIsError {
			m.setStatus("", false)
		}
		m.refreshItems()
		return m, nil

	case documentOpenedMsg:
		if msg.err != nil {
			m.busy = false
			m.setStatus(fmt.Sprintf("Error opening: %v", msg.err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Editing %s", msg.doc.Node.Path), false)
		return m, editCmd(m.service, msg.doc, msg.local)

	case editorFinishedMsg:
		if msg.err != nil {
			m.busy = false
			m.setStatus(fmt.Sprintf("Editor failed: %v", msg.err), true)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("Saving %s...", msg.doc.Node.Path), false)
		return m, saveDocumentCmd(m.service, m.workdir, msg.doc)

	case documentSavedMsg:
		m.busy = false
		switch {
		case msg.err != nil:
			m.setStatus(fmt.Sprintf("Save failed: %v (edits kept, enter to retry)", msg.err), true)
		case msg.changed:
			m.setStatus(fmt.Sprintf("Saved %s", msg.path), false)
		default:
			m.setStatus(fmt.Sprintf("No changes to %s", msg.path), false)
		}
		return m, nil

	case tea.KeyMsg:
		if m.help.ShowAll {
			m.help.ShowAll = false
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = true
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			m.ensureCursorVisible()
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
			m.ensureCursorVisible()
		case key.Matches(msg, m.keys.PageUp):
			m.cursor = clamp(m.cursor-m.getViewportHeight()/2, 0, len(m.items)-1)
			m.ensureCursorVisible()
		case key.Matches(msg, m.keys.PageDown):
			m.cursor = clamp(m.cursor+m.getViewportHeight()/2, 0, len(m.items)-1)
			m.ensureCursorVisible()
		case key.Matches(msg, m.keys.GoToTop):
			m.cursor = 0
			m.ensureCursorVisible()
		case key.Matches(msg, m.keys.GoToBottom):
			m.cursor = clamp(len(m.items)-1, 0, len(m.items)-1)
			m.ensureCursorVisible()
		case key.Matches(msg, m.keys.Open):
			return m.activate()
		case key.Matches(msg, m.keys.Expand):
			return m.expandSelected()
		case key.Matches(msg, m.keys.Collapse):
			m.collapseSelected()
		case key.Matches(msg, m.keys.Refresh):
			return m.refreshSelected()
		}
		return m, nil
	}

	return m, nil
}

// activate toggles a directory or opens a file or notebook for editing.
func (m Model) activate() (tea.Model, tea.Cmd) {
	sel := m.selected()
	if sel == nil {
		return m, nil
	}
	if sel.Node.Expandable() {
		if sel.Expanded {
			sel.Expanded = false
			m.refreshItems()
			return m, nil
		}
		return m, m.expand(sel)
	}

	if m.busy {
		m.setStatus("Finish the current edit first", true)
		return m, nil
	}
	m.busy = true
	m.setStatus(fmt.Sprintf("Opening %s...", sel.Node.Path), false)
	return m, openDocumentCmd(m.service, m.workdir, sel.Node)
}

func (m Model) expandSelected() (tea.Model, tea.Cmd) {
	sel := m.selected()
	if sel == nil || !sel.Node.Expandable() {
		return m, nil
	}
	if !sel.Expanded {
		return m, m.expand(sel)
	}
	if len(sel.Children) > 0 {
		m.cursor++
		m.ensureCursorVisible()
	}
	return m, nil
}

func (m *Model) collapseSelected() {
	sel := m.selected()
	if sel == nil {
		return
	}
	if sel.Node.Expandable() && sel.Expanded {
		sel.Expanded = false
		m.refreshItems()
		return
	}
	if sel.Parent != nil && sel.Parent != m.root {
		sel.Parent.Expanded = false
		m.cursor = m.indexOf(sel.Parent)
		m.refreshItems()
	}
}

func (m Model) refreshSelected() (tea.Model, tea.Cmd) {
	target := m.root
	if sel := m.selected(); sel != nil {
		if sel.Node.Expandable() {
			target = sel
		} else if sel.Parent != nil {
			target = sel.Parent
		}
	}
	return m, m.expand(target)
}

// expand lists item again; directories are listed on every expansion so the
// tree follows changes on the server.
func (m *Model) expand(item *tree.Item) tea.Cmd {
	item.Loading = true
	return fetchChildrenCmd(m.service, item.Node.Path)
}

func (m *Model) indexOf(item *tree.Item) int {
	for i, it := range m.items {
		if it == item {
			return i
		}
	}
	return m.cursor
}

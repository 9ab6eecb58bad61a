package browser

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
	"github.com/mattsolo1/grove-jupyter/pkg/tree"
)

func (m Model) View() string {
	if m.help.ShowAll {
		return "\n" + m.help.View(m.keys)
	}

	header := headerStyle.Render("Jupyter Contents")
	if server := m.service.Config.Server; server != "" {
		header += " " + infoStyle.Render(fmt.Sprintf("[%s]", server))
	}
	header += " " + mutedStyle.Render(m.root.Node.Path)

	var body string
	switch {
	case m.root.Loading && !m.root.Loaded:
		body = mutedStyle.Render("Loading...")
	case len(m.items) == 0 && m.root.Loaded:
		body = mutedStyle.Render("No entries.")
	default:
		body = m.renderTree()
	}

	status := ""
	if m.statusMessage != "" {
		if m.statusIsError {
			status = errorStyle.Render(m.statusMessage)
		} else {
			status = okStyle.Render(m.statusMessage)
		}
	}

	fullView := lipgloss.JoinVertical(lipgloss.Left,
		header,
		"",
		body,
		"",
		status,
		m.help.View(m.keys),
	)
	return "\n" + fullView
}

func (m Model) renderTree() string {
	var b strings.Builder

	viewportHeight := m.getViewportHeight()
	start := m.scrollOffset
	end := m.scrollOffset + viewportHeight
	if end > len(m.items) {
		end = len(m.items)
	}

	for i := start; i < end; i++ {
		b.WriteString(m.renderItem(m.items[i], i == m.cursor))
		b.WriteString("\n")
	}

	if len(m.items) > viewportHeight {
		b.WriteString(mutedStyle.Render(fmt.Sprintf(" (%d-%d of %d)", start+1, end, len(m.items))))
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m Model) renderItem(it *tree.Item, selected bool) string {
	cursor := "  "
	if selected {
		cursor = cursorStyle.Render("▶ ")
	}
	indent := strings.Repeat("  ", it.Depth)

	var name string
	switch it.Node.Kind {
	case models.KindDirectory:
		fold := "▸ "
		if it.Expanded {
			fold = "▾ "
		}
		name = dirStyle.Render(fold + it.Node.Name + "/")
		if it.Loading {
			name += mutedStyle.Render(" loading...")
		}
	case models.KindNotebook:
		name = nbStyle.Render("◆ " + it.Node.Name)
	default:
		name = "  " + it.Node.Name
	}

	line := cursor + indent + name
	if selected {
		line = lipgloss.NewStyle().Bold(true).Render(line)
	}
	return line
}

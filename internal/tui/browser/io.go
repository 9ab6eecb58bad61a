package browser

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

// childrenLoadedMsg carries the listing of a directory.
type childrenLoadedMsg struct {
	path  string
	nodes []*models.Node
	err   error
}

// documentOpenedMsg is sent once a document has been fetched and written
// to the workdir.
type documentOpenedMsg struct {
	doc   *service.Document
	local string
	err   error
}

// editorFinishedMsg is sent when the editor closes
type editorFinishedMsg struct {
	doc *service.Document
	err error
}

// documentSavedMsg reports the save that follows an edit.
type documentSavedMsg struct {
	path    string
	changed bool
	err     error
}

func fetchChildrenCmd(svc *service.Service, p string) tea.Cmd {
	return func() tea.Msg {
		nodes, err := svc.List(context.Background(), p)
		return childrenLoadedMsg{path: p, nodes: nodes, err: err}
	}
}

func openDocumentCmd(svc *service.Service, wd *service.Workdir, node *models.Node) tea.Cmd {
	return func() tea.Msg {
		doc, err := svc.Open(context.Background(), node)
		if err != nil {
			return documentOpenedMsg{err: err}
		}
		if doc.Binary {
			return documentOpenedMsg{err: fmt.Errorf("%s: %w", node.Path, service.ErrBinaryDocument)}
		}
		local, err := wd.Materialize(doc)
		if err != nil {
			return documentOpenedMsg{err: err}
		}
		return documentOpenedMsg{doc: doc, local: local}
	}
}

// editCmd suspends the TUI while the editor runs on the local copy.
func editCmd(svc *service.Service, doc *service.Document, local string) tea.Cmd {
	return tea.ExecProcess(svc.EditorCommand(local), func(err error) tea.Msg {
		return editorFinishedMsg{doc: doc, err: err}
	})
}

func saveDocumentCmd(svc *service.Service, wd *service.Workdir, doc *service.Document) tea.Cmd {
	return func() tea.Msg {
		changed, err := svc.SaveIfChanged(context.Background(), wd, doc)
		return documentSavedMsg{path: doc.Node.Path, changed: changed, err: err}
	}
}

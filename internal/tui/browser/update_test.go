package browser

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-jupyter/internal/fakehub"
	"github.com/mattsolo1/grove-jupyter/pkg/contents"
	"github.com/mattsolo1/grove-jupyter/pkg/service"
)

func newTestModel(t *testing.T) (Model, *fakehub.Server) {
	t.Helper()
	hub := fakehub.New("tok")
	t.Cleanup(hub.Close)

	client, err := contents.New(contents.Config{BaseURL: hub.BaseURL(), Token: "tok"})
	require.NoError(t, err)

	m, err := New(service.New(&service.Config{Server: "test"}, client), "/")
	require.NoError(t, err)
	t.Cleanup(func() { m.workdir.Cleanup() })
	return m, hub
}

// run executes cmd and feeds its message back into the model.
func run(t *testing.T, m Model, cmd tea.Cmd) (Model, tea.Cmd) {
	t.Helper()
	require.NotNil(t, cmd)
	next, out := m.Update(cmd())
	return next.(Model), out
}

func press(m Model, keys string) (Model, tea.Cmd) {
	var msg tea.KeyMsg
	switch keys {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(keys)}
	}
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func countGets(hub *fakehub.Server) int {
	n := 0
	for _, r := range hub.Requests() {
		if r.Method == http.MethodGet {
			n++
		}
	}
	return n
}

func TestInitListsRoot(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddDir("/src")
	hub.AddNotebook("/a.ipynb", `{"cells":[]}`)

	m, _ = run(t, m, m.Init())

	require.Len(t, m.items, 2)
	assert.Equal(t, "/a.ipynb", m.items[0].Node.Path)
	assert.Equal(t, "/src", m.items[1].Node.Path)
	assert.Contains(t, m.View(), "a.ipynb")
}

func TestExpandListsOnEveryExpansion(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddFile("/src/main.py", "print(1)")

	m, _ = run(t, m, m.Init())
	require.Len(t, m.items, 1)

	before := countGets(hub)
	m, cmd := press(m, "enter")
	m, _ = run(t, m, cmd)
	assert.Equal(t, before+1, countGets(hub))
	require.Len(t, m.items, 2)
	assert.Equal(t, "/src/main.py", m.items[1].Node.Path)

	// Collapse needs no request.
	m, cmd = press(m, "enter")
	assert.Nil(t, cmd)
	assert.Len(t, m.items, 1)

	// A new file shows up on the next expansion.
	hub.AddFile("/src/util.py", "")
	m, cmd = press(m, "enter")
	m, _ = run(t, m, cmd)
	assert.Equal(t, before+2, countGets(hub))
	assert.Len(t, m.items, 3)
}

func TestExpandFailureShowsError(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddDir("/secret")
	hub.FailGet("/secret", http.StatusForbidden)

	m, _ = run(t, m, m.Init())
	m, cmd := press(m, "l")
	m, _ = run(t, m, cmd)

	assert.True(t, m.statusIsError)
	assert.Contains(t, m.statusMessage, "/secret")
	assert.False(t, m.items[0].Expanded)
	assert.False(t, m.items[0].Loading)
	assert.Empty(t, m.items[0].Children)
}

func TestRootFailureShowsError(t *testing.T) {
	m, hub := newTestModel(t)
	hub.FailGet("/", http.StatusInternalServerError)

	m, _ = run(t, m, m.Init())
	assert.True(t, m.statusIsError)
	assert.Empty(t, m.items)
}

func TestCursorMovement(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddFile("/a.txt", "")
	hub.AddFile("/b.txt", "")
	hub.AddFile("/c.txt", "")

	m, _ = run(t, m, m.Init())
	m, _ = press(m, "j")
	m, _ = press(m, "j")
	m, _ = press(m, "j")
	assert.Equal(t, 2, m.cursor)

	m, _ = press(m, "k")
	assert.Equal(t, 1, m.cursor)

	m, _ = press(m, "g")
	assert.Equal(t, 0, m.cursor)
	m, _ = press(m, "G")
	assert.Equal(t, 2, m.cursor)
}

func TestCollapseMovesToParent(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddFile("/src/main.py", "")

	m, _ = run(t, m, m.Init())
	m, cmd := press(m, "l")
	m, _ = run(t, m, cmd)
	m, _ = press(m, "l") // into the first child
	require.Equal(t, "/src/main.py", m.selected().Node.Path)

	m, _ = press(m, "h")
	assert.Equal(t, "/src", m.selected().Node.Path)
	assert.Len(t, m.items, 1)
}

func TestOpenMaterializesDocument(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddNotebook("/a.ipynb", `{"cells":[{"cell_type":"code","source":"x = 1"}],"metadata":{}}`)

	m, _ = run(t, m, m.Init())
	m, cmd := press(m, "enter")
	require.NotNil(t, cmd)
	assert.True(t, m.busy)

	msg := cmd().(documentOpenedMsg)
	require.NoError(t, msg.err)
	assert.Equal(t, filepath.Join(m.workdir.Dir(), "a.ipynb.py"), msg.local)

	data, err := os.ReadFile(msg.local)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# %%\nx = 1\n")

	next, editor := m.Update(msg)
	m = next.(Model)
	assert.NotNil(t, editor)
	assert.Contains(t, m.statusMessage, "Editing /a.ipynb")

	// Simulate an edit, then the editor exiting.
	require.NoError(t, os.WriteFile(msg.local, []byte("# %%\nx = 2\n"), 0600))
	next, saveCmd := m.Update(editorFinishedMsg{doc: msg.doc})
	m, _ = run(t, next.(Model), saveCmd)

	assert.False(t, m.busy)
	assert.False(t, m.statusIsError)
	assert.Contains(t, m.statusMessage, "Saved /a.ipynb")
	stored, _ := hub.Content("/a.ipynb")
	assert.Contains(t, stored, `"x = 2"`)
}

func TestOpenFailureShowsError(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddFile("/a.txt", "x")

	m, _ = run(t, m, m.Init())
	hub.FailGet("/a.txt", http.StatusNotFound)

	m, cmd := press(m, "enter")
	m, _ = run(t, m, cmd)
	assert.True(t, m.statusIsError)
	assert.False(t, m.busy)
}

func TestSaveFailureShowsError(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddFile("/a.txt", "x")

	m, _ = run(t, m, m.Init())
	m, cmd := press(m, "enter")
	opened := cmd().(documentOpenedMsg)
	require.NoError(t, opened.err)

	hub.FailPut("/a.txt", http.StatusInternalServerError)
	require.NoError(t, os.WriteFile(opened.local, []byte("y"), 0600))

	next, saveCmd := m.Update(editorFinishedMsg{doc: opened.doc})
	m, _ = run(t, next.(Model), saveCmd)

	assert.True(t, m.statusIsError)
	assert.Contains(t, m.statusMessage, "Save failed")
	stored, _ := hub.Content("/a.txt")
	assert.Equal(t, "x", stored)
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(m, "?")
	assert.True(t, m.help.ShowAll)
	m, _ = press(m, "j")
	assert.False(t, m.help.ShowAll)
}

func TestReopenAfterFailedSaveKeepsEdits(t *testing.T) {
	m, hub := newTestModel(t)
	hub.AddFile("/a.txt", "remote")

	m, _ = run(t, m, m.Init())
	m, cmd := press(m, "enter")
	opened := cmd().(documentOpenedMsg)
	require.NoError(t, opened.err)

	hub.FailPut("/a.txt", http.StatusForbidden)
	require.NoError(t, os.WriteFile(opened.local, []byte("my edits"), 0600))
	next, saveCmd := m.Update(editorFinishedMsg{doc: opened.doc})
	m, _ = run(t, next.(Model), saveCmd)
	require.True(t, m.statusIsError)

	// Opening the file again hands the editor the unsaved copy.
	m, cmd = press(m, "enter")
	reopened := cmd().(documentOpenedMsg)
	require.NoError(t, reopened.err)
	data, err := os.ReadFile(reopened.local)
	require.NoError(t, err)
	assert.Equal(t, "my edits", string(data))

	hub.Recover("/a.txt")
	next, saveCmd = m.Update(editorFinishedMsg{doc: reopened.doc})
	m, _ = run(t, next.(Model), saveCmd)
	assert.False(t, m.statusIsError)
	stored, _ := hub.Content("/a.txt")
	assert.Equal(t, "my edits", stored)

	kept, err := m.Close()
	require.NoError(t, err)
	assert.Empty(t, kept)
}

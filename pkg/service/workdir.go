package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
	"github.com/mattsolo1/grove-jupyter/pkg/notebook"
)

// Workdir holds local copies of opened documents while they are edited.
// Text files are written as-is, notebooks as cell scripts.
type Workdir struct {
	dir    string
	server string

	mu       sync.Mutex
	snapshot map[string][]byte
	dirty    map[string]bool // local copies holding edits the server has not accepted
}

// NewWorkdir creates a private temporary directory for edits.
func NewWorkdir(server string) (*Workdir, error) {
	dir, err := os.MkdirTemp("", "jx-")
	if err != nil {
		return nil, fmt.Errorf("create workdir: %w", err)
	}
	return &Workdir{
		dir:      dir,
		server:   server,
		snapshot: make(map[string][]byte),
		dirty:    make(map[string]bool),
	}, nil
}

// Dir returns the directory holding the local copies.
func (w *Workdir) Dir() string {
	return w.dir
}

// LocalPath returns where doc is materialized.
func (w *Workdir) LocalPath(doc *Document) string {
	rel := filepath.FromSlash(strings.TrimPrefix(doc.Node.Path, "/"))
	if doc.Kind == DocumentNotebook {
		rel += notebook.ScriptExt
	}
	return filepath.Join(w.dir, rel)
}

// Materialize writes doc to its local path and returns the path. A local
// copy whose last save failed is returned as is so the edits in it survive
// reopening.
func (w *Workdir) Materialize(doc *Document) (string, error) {
	local := w.LocalPath(doc)

	w.mu.Lock()
	dirty := w.dirty[local]
	w.mu.Unlock()
	if dirty {
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	data, err := w.render(doc)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(local), 0700); err != nil {
		return "", fmt.Errorf("create workdir: %w", err)
	}
	if err := os.WriteFile(local, data, 0600); err != nil {
		return "", fmt.Errorf("write local copy: %w", err)
	}

	w.mu.Lock()
	w.snapshot[local] = data
	delete(w.dirty, local)
	w.mu.Unlock()
	return local, nil
}

// Load reads the local copy of doc back into doc. It reports false and
// leaves doc untouched when the file has not changed since it was last
// materialized or loaded.
func (w *Workdir) Load(doc *Document) (bool, error) {
	local := w.LocalPath(doc)
	data, err := os.ReadFile(local)
	if err != nil {
		return false, fmt.Errorf("read local copy: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if prev, ok := w.snapshot[local]; ok && string(prev) == string(data) {
		return false, nil
	}

	switch doc.Kind {
	case DocumentNotebook:
		nb, _, err := notebook.ParseScript(data, doc.Notebook)
		if err != nil {
			return false, err
		}
		doc.Notebook = nb
	default:
		doc.Text = string(data)
	}
	w.snapshot[local] = data
	return true, nil
}

// markDirty forgets the snapshot of doc so the next save event pushes it
// again, and protects the local copy from Materialize.
func (w *Workdir) markDirty(doc *Document) {
	local := w.LocalPath(doc)
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.snapshot, local)
	w.dirty[local] = true
}

func (w *Workdir) markClean(doc *Document) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.dirty, w.LocalPath(doc))
}

// Dirty returns the local copies whose edits have not been saved, sorted.
func (w *Workdir) Dirty() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]string, 0, len(w.dirty))
	for p := range w.dirty {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Release removes the directory unless it holds unsaved edits, in which
// case it is left in place and the paths of those copies are returned.
func (w *Workdir) Release() ([]string, error) {
	if dirty := w.Dirty(); len(dirty) > 0 {
		return dirty, nil
	}
	return nil, w.Cleanup()
}

// Cleanup removes the directory and every local copy in it.
func (w *Workdir) Cleanup() error {
	return os.RemoveAll(w.dir)
}

func (w *Workdir) render(doc *Document) ([]byte, error) {
	if doc.Kind != DocumentNotebook {
		return []byte(doc.Text), nil
	}
	header := &notebook.Header{
		Path:   doc.Node.Path,
		Server: w.server,
		Kernel: doc.Notebook.KernelName(),
	}
	return notebook.RenderScript(doc.Notebook, header)
}

// SaveIfChanged loads the local copy of doc and saves it when it changed.
func (s *Service) SaveIfChanged(ctx context.Context, w *Workdir, doc *Document) (bool, error) {
	changed, err := w.Load(doc)
	if err != nil {
		w.markDirty(doc)
		s.record(doc.Node.Path, doc.Node.Kind, models.ActionSave, err)
		return false, err
	}
	if !changed {
		return false, nil
	}
	if err := s.Save(ctx, doc); err != nil {
		w.markDirty(doc)
		return true, err
	}
	w.markClean(doc)
	return true, nil
}

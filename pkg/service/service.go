package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/grove-jupyter/pkg/contents"
	"github.com/mattsolo1/grove-jupyter/pkg/models"
)

// Store is the remote side of the service: reads and writes on the
// contents API.
type Store interface {
	Get(ctx context.Context, p string) (*models.Contents, error)
	Stat(ctx context.Context, p string) (*models.Contents, error)
	Put(ctx context.Context, p string, content string) error
}

// Recorder receives the outcome of every open and save.
type Recorder interface {
	Record(e *models.HistoryEntry) error
}

// Config holds service configuration
type Config struct {
	// Server is the name of the configured server, used in history and in
	// cell script headers.
	Server string
	Editor string
}

// Service is the core contents service
type Service struct {
	store    Store
	recorder Recorder
	Config   *Config
	Logger   *logrus.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder records open and save outcomes in r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		s.recorder = r
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *logrus.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.Logger = l
		}
	}
}

// New creates a new contents service
func New(config *Config, store Store, opts ...Option) *Service {
	if config == nil {
		config = &Config{}
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)

	s := &Service{
		store:  store,
		Config: config,
		Logger: logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List returns the entries of the directory at p, one node per entry, in
// the order the server returned them.
func (s *Service) List(ctx context.Context, p string) ([]*models.Node, error) {
	p = models.CleanPath(p)

	res, err := s.store.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	if !res.IsDirectory() {
		return nil, &contents.DecodeError{
			Path: p,
			What: "directory listing",
			Err:  fmt.Errorf("%s is a %s, not a directory", p, models.ParseNodeKind(res.Type)),
		}
	}

	var entries []models.Contents
	if len(res.Content) > 0 {
		if err := json.Unmarshal(res.Content, &entries); err != nil {
			return nil, &contents.DecodeError{Path: p, What: "directory listing", Err: err}
		}
	}

	nodes := make([]*models.Node, 0, len(entries))
	for _, e := range entries {
		name := e.Name
		if name == "" {
			name = path.Base(models.CleanPath(e.Path))
		}
		nodes = append(nodes, models.NewNode(p, name, models.ParseNodeKind(e.Type)))
	}

	s.Logger.WithFields(logrus.Fields{"path": p, "entries": len(nodes)}).Debug("Listed directory")
	return nodes, nil
}

// Stat returns the model of the resource at p without its content.
func (s *Service) Stat(ctx context.Context, p string) (*models.Contents, error) {
	res, err := s.store.Stat(ctx, models.CleanPath(p))
	if err != nil {
		return nil, err
	}
	// Servers that ignore content=0 still send it.
	res.Content = nil
	return res, nil
}

// Open fetches node and returns its editable document. Notebooks are
// decoded into cells, everything else is opened as text.
func (s *Service) Open(ctx context.Context, node *models.Node) (*Document, error) {
	doc, err := s.open(ctx, node.Path, node)
	s.record(node.Path, node.Kind, models.ActionOpen, err)
	return doc, err
}

// OpenPath opens the resource at p without a listing of its parent.
func (s *Service) OpenPath(ctx context.Context, p string) (*Document, error) {
	p = models.CleanPath(p)
	doc, err := s.open(ctx, p, nil)
	kind := models.KindFile
	if doc != nil {
		kind = doc.Node.Kind
	}
	s.record(p, kind, models.ActionOpen, err)
	return doc, err
}

func (s *Service) open(ctx context.Context, p string, node *models.Node) (*Document, error) {
	p = models.CleanPath(p)

	res, err := s.store.Get(ctx, p)
	if err != nil {
		return nil, err
	}
	if res.IsDirectory() {
		return nil, fmt.Errorf("%s is a directory", p)
	}

	if node == nil {
		name := res.Name
		if name == "" {
			name = path.Base(p)
		}
		node = &models.Node{Name: name, Path: p, Kind: models.ParseNodeKind(res.Type)}
	}

	doc := &Document{
		Node:         node,
		Format:       res.Format,
		Mimetype:     res.Mimetype,
		LastModified: res.LastModified,
	}

	if res.IsNotebook() {
		nb, err := decodeNotebookContent(res.Content)
		if err != nil {
			return nil, &contents.DecodeError{Path: p, What: "notebook", Err: err}
		}
		doc.Kind = DocumentNotebook
		doc.Notebook = nb
	} else {
		text, binary, err := decodeFileContent(res.Format, res.Content)
		if err != nil {
			return nil, &contents.DecodeError{Path: p, What: "file content", Err: err}
		}
		doc.Kind = DocumentText
		doc.Text = text
		doc.Binary = binary
	}

	s.Logger.WithFields(logrus.Fields{"path": p, "kind": doc.Kind}).Debug("Opened document")
	return doc, nil
}

// Save pushes doc back to the server. Notebooks are encoded first.
func (s *Service) Save(ctx context.Context, doc *Document) error {
	err := s.save(ctx, doc)
	s.record(doc.Node.Path, doc.Node.Kind, models.ActionSave, err)
	return err
}

func (s *Service) save(ctx context.Context, doc *Document) error {
	payload, err := doc.Payload()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, doc.Node.Path, payload); err != nil {
		return err
	}
	s.Logger.WithField("path", doc.Node.Path).Info("Saved document")
	return nil
}

// EditorCommand builds the command that opens file in the configured editor
func (s *Service) EditorCommand(file string) *exec.Cmd {
	editor := s.Config.Editor
	if strings.TrimSpace(editor) == "" {
		editor = os.Getenv("EDITOR")
	}

	parts := strings.Fields(editor)
	if len(parts) == 0 {
		parts = []string{"vim"} // fallback
	}
	args := append(parts[1:], file)
	return exec.Command(parts[0], args...)
}

// Close releases the recorder when it holds resources.
func (s *Service) Close() error {
	if c, ok := s.recorder.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Service) record(p string, kind models.NodeKind, action models.HistoryAction, err error) {
	if s.recorder == nil {
		return
	}
	entry := &models.HistoryEntry{
		Server: s.Config.Server,
		Path:   p,
		Kind:   kind,
		Action: action,
		OK:     err == nil,
	}
	if err != nil {
		entry.Message = err.Error()
	}
	if rerr := s.recorder.Record(entry); rerr != nil {
		s.Logger.WithError(rerr).Warn("Failed to record history")
	}
}

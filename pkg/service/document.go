package service

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
	"github.com/mattsolo1/grove-jupyter/pkg/notebook"
)

// DocumentKind says how a document is edited
type DocumentKind string

const (
	DocumentText     DocumentKind = "text"
	DocumentNotebook DocumentKind = "notebook"
)

const notebookExt = ".ipynb"

// ErrBinaryDocument is returned when saving a file that was served as
// base64 and is not valid UTF-8 text.
var ErrBinaryDocument = errors.New("binary files cannot be saved as text")

// Document is an opened file or notebook
type Document struct {
	Node         *models.Node
	Kind         DocumentKind
	Text         string
	Notebook     *notebook.Document
	Binary       bool
	Format       string
	Mimetype     string
	LastModified *time.Time
}

// Payload returns the text that is stored on the server for doc.
func (d *Document) Payload() (string, error) {
	switch d.Kind {
	case DocumentNotebook:
		data, err := notebook.Encode(d.Notebook)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		if d.Binary {
			return "", fmt.Errorf("%s: %w", d.Node.Path, ErrBinaryDocument)
		}
		return d.Text, nil
	}
}

// decodeNotebookContent accepts the notebook as a JSON object, or as a JSON
// string holding the notebook text (how a notebook saved as a text file
// comes back).
func decodeNotebookContent(raw json.RawMessage) (*notebook.Document, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, errors.New("notebook has no content")
	}
	if strings.HasPrefix(trimmed, `"`) {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, err
		}
		return notebook.Decode([]byte(text))
	}
	return notebook.Decode(raw)
}

// decodeFileContent returns the text of a file resource and whether it is
// binary.
func decodeFileContent(format string, raw json.RawMessage) (string, bool, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return "", false, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", false, err
	}
	if format != models.FormatBase64 {
		return text, false, nil
	}

	data, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(text, "\n", ""))
	if err != nil {
		return "", false, err
	}
	if !utf8.Valid(data) {
		return string(data), true, nil
	}
	return string(data), false, nil
}

// NewDocument builds the document for uploading data to remote. Data for a
// notebook path is read as a cell script when local has the script
// extension, and as notebook JSON otherwise.
func NewDocument(remote, local string, data []byte) (*Document, error) {
	remote = models.CleanPath(remote)
	node := &models.Node{Name: path.Base(remote), Path: remote, Kind: models.KindFile}

	if !strings.HasSuffix(remote, notebookExt) {
		return &Document{
			Node:   node,
			Kind:   DocumentText,
			Text:   string(data),
			Binary: !utf8.Valid(data),
		}, nil
	}

	node.Kind = models.KindNotebook
	var (
		nb  *notebook.Document
		err error
	)
	if strings.HasSuffix(local, notebook.ScriptExt) {
		nb, _, err = notebook.ParseScript(data, notebook.New())
	} else {
		nb, err = notebook.Decode(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", local, err)
	}
	return &Document{Node: node, Kind: DocumentNotebook, Notebook: nb}, nil
}

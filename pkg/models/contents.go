package models

import (
	"encoding/json"
	"time"
)

// Content formats reported by the contents server
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatBase64 = "base64"
)

// Contents is the resource returned by GET /api/contents/<path>.
// Content is kept raw because its shape depends on Type: an array of
// entries for directories, a notebook object for notebooks and a string
// for files.
type Contents struct {
	Name         string          `json:"name"`
	Path         string          `json:"path"`
	Type         string          `json:"type"`
	Format       string          `json:"format,omitempty"`
	Mimetype     string          `json:"mimetype,omitempty"`
	Writable     bool            `json:"writable,omitempty"`
	Size         *int64          `json:"size,omitempty"`
	Created      *time.Time      `json:"created,omitempty"`
	LastModified *time.Time      `json:"last_modified,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
}

// IsNotebook reports whether the server classified the resource as a notebook.
func (c *Contents) IsNotebook() bool {
	return ParseNodeKind(c.Type) == KindNotebook
}

// IsDirectory reports whether the server classified the resource as a directory.
func (c *Contents) IsDirectory() bool {
	return ParseNodeKind(c.Type) == KindDirectory
}

// SaveRequest is the body sent with PUT /api/contents/<path>.
type SaveRequest struct {
	Content string `json:"content"`
	Format  string `json:"format"`
	Type    string `json:"type"`
}

// NewSaveRequest builds the text-file save body for content.
func NewSaveRequest(content string) SaveRequest {
	return SaveRequest{
		Content: content,
		Format:  FormatText,
		Type:    string(KindFile),
	}
}

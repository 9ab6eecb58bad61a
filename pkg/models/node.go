package models

import (
	"path"
	"strings"
)

// NodeKind represents the kind of an entry on the contents server
type NodeKind string

const (
	KindFile      NodeKind = "file"
	KindDirectory NodeKind = "directory"
	KindNotebook  NodeKind = "notebook"
)

// ParseNodeKind maps a remote "type" value to a NodeKind. Anything the
// server reports that is not a directory or notebook is treated as a file.
func ParseNodeKind(remoteType string) NodeKind {
	switch NodeKind(remoteType) {
	case KindDirectory:
		return KindDirectory
	case KindNotebook:
		return KindNotebook
	default:
		return KindFile
	}
}

// Node is a single entry in a directory listing.
type Node struct {
	Name string   `json:"name" yaml:"name"`
	Path string   `json:"path" yaml:"path"`
	Kind NodeKind `json:"kind" yaml:"kind"`
}

// Expandable reports whether the node has children that can be listed.
func (n *Node) Expandable() bool {
	return n.Kind == KindDirectory
}

// IsLeaf reports whether the node carries the open action.
func (n *Node) IsLeaf() bool {
	return !n.Expandable()
}

// RootNode is the directory node at the top of the contents tree.
func RootNode() *Node {
	return &Node{Name: "/", Path: "/", Kind: KindDirectory}
}

// NewNode builds a node for an entry named name inside parent.
func NewNode(parent, name string, kind NodeKind) *Node {
	return &Node{
		Name: name,
		Path: JoinPath(parent, name),
		Kind: kind,
	}
}

// CleanPath normalizes a contents path to an absolute, slash-separated form.
func CleanPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return path.Clean("/" + p)
}

// JoinPath joins path elements into a cleaned absolute contents path.
func JoinPath(elem ...string) string {
	return CleanPath(path.Join(elem...))
}

// ParentPath returns the directory that contains p.
func ParentPath(p string) string {
	return path.Dir(CleanPath(p))
}

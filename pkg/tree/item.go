// Package tree holds the lazily loaded directory tree shown by the browser.
package tree

import (
	"path"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
)

// Item is one node of the tree. Children of a directory are only known
// after it has been listed, and are replaced on every listing.
type Item struct {
	Node     *models.Node
	Depth    int
	Expanded bool
	Loaded   bool
	Loading  bool

	// Hierarchy
	Parent   *Item
	Children []*Item
}

// NewRoot returns the root item for the directory at p.
func NewRoot(p string) *Item {
	p = models.CleanPath(p)
	root := models.RootNode()
	if p != "/" {
		root = &models.Node{Name: path.Base(p), Path: p, Kind: models.KindDirectory}
	}
	return &Item{Node: root, Depth: -1}
}

// SetChildren replaces the children of i with nodes. Expanded state of
// children that are still present is kept.
func (i *Item) SetChildren(nodes []*models.Node) {
	prev := make(map[string]*Item, len(i.Children))
	for _, c := range i.Children {
		prev[c.Node.Path] = c
	}

	children := make([]*Item, 0, len(nodes))
	for _, n := range nodes {
		if old, ok := prev[n.Path]; ok && old.Node.Kind == n.Kind {
			old.Node = n
			children = append(children, old)
			continue
		}
		children = append(children, &Item{Node: n, Depth: i.Depth + 1, Parent: i})
	}
	i.Children = children
	i.Loaded = true
	i.Loading = false
}

// Find returns the item for path p below i, or nil.
func (i *Item) Find(p string) *Item {
	p = models.CleanPath(p)
	if i.Node.Path == p {
		return i
	}
	for _, c := range i.Children {
		if found := c.Find(p); found != nil {
			return found
		}
	}
	return nil
}

// Visible returns the items below i that are shown, depth first. Children
// of collapsed directories are hidden.
func (i *Item) Visible() []*Item {
	var out []*Item
	for _, c := range i.Children {
		out = append(out, c)
		if c.Expanded {
			out = append(out, c.Visible()...)
		}
	}
	return out
}

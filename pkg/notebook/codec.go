// Package notebook converts between the Jupyter notebook JSON format and an
// ordered sequence of editable cells.
package notebook

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
)

// CellKind distinguishes executable cells from prose.
type CellKind string

const (
	CellCode   CellKind = "code"
	CellMarkup CellKind = "markup"
)

// Languages attached to decoded cells.
const (
	LanguagePython   = "python"
	LanguageMarkdown = "markdown"
)

// Remote cell_type values.
const (
	cellTypeCode     = "code"
	cellTypeMarkdown = "markdown"
)

// Cell is one unit of a notebook.
type Cell struct {
	Kind     CellKind
	Source   string
	Language string

	// cellType is the remote cell_type of a prose cell ("markdown", "raw").
	cellType string
	// extra holds the fields of the remote cell this model does not
	// interpret (metadata, outputs, execution_count, id, attachments).
	extra map[string]json.RawMessage
}

// NewCodeCell returns a code cell with source.
func NewCodeCell(source string) Cell {
	return Cell{Kind: CellCode, Source: source, Language: LanguagePython}
}

// NewMarkupCell returns a markdown cell with source.
func NewMarkupCell(source string) Cell {
	return Cell{Kind: CellMarkup, Source: source, Language: LanguageMarkdown}
}

// CellType returns the remote cell_type the cell encodes to.
func (c Cell) CellType() string {
	if c.Kind == CellCode {
		return cellTypeCode
	}
	if c.cellType != "" && c.cellType != cellTypeCode {
		return c.cellType
	}
	return cellTypeMarkdown
}

// Document is an ordered sequence of cells plus the notebook-level fields
// that are carried through unchanged (metadata, nbformat, nbformat_minor).
type Document struct {
	Cells []Cell

	extra map[string]json.RawMessage
}

// New returns an empty nbformat 4 document.
func New() *Document {
	return &Document{
		Cells: []Cell{},
		extra: map[string]json.RawMessage{
			"metadata":       json.RawMessage(`{}`),
			"nbformat":       json.RawMessage(`4`),
			"nbformat_minor": json.RawMessage(`5`),
		},
	}
}

// KernelName returns the kernelspec name recorded in the notebook metadata,
// or "" when there is none.
func (d *Document) KernelName() string {
	raw, ok := d.extra["metadata"]
	if !ok {
		return ""
	}
	var meta struct {
		Kernelspec struct {
			Name string `json:"name"`
		} `json:"kernelspec"`
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return ""
	}
	return meta.Kernelspec.Name
}

type rawCell map[string]json.RawMessage

// Decode parses a notebook JSON document. Cells with cell_type "code" become
// code cells; every other cell becomes a markdown cell. Order is preserved.
func Decode(data []byte) (*Document, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, fmt.Errorf("decode notebook: %w", err)
	}
	if top == nil {
		return nil, fmt.Errorf("decode notebook: document is null")
	}

	doc := &Document{Cells: []Cell{}, extra: make(map[string]json.RawMessage)}
	for k, v := range top {
		if k != "cells" {
			doc.extra[k] = v
		}
	}

	rawCells, ok := top["cells"]
	if !ok || isNull(rawCells) {
		return doc, nil
	}

	var cells []rawCell
	if err := json.Unmarshal(rawCells, &cells); err != nil {
		return nil, fmt.Errorf("decode notebook cells: %w", err)
	}

	for i, rc := range cells {
		cell, err := decodeCell(rc)
		if err != nil {
			return nil, fmt.Errorf("decode notebook cell %d: %w", i, err)
		}
		doc.Cells = append(doc.Cells, cell)
	}
	return doc, nil
}

func decodeCell(rc rawCell) (Cell, error) {
	var cellType string
	if raw, ok := rc["cell_type"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &cellType); err != nil {
			return Cell{}, fmt.Errorf("cell_type: %w", err)
		}
	}

	source, err := decodeSource(rc["source"])
	if err != nil {
		return Cell{}, err
	}

	var cell Cell
	if cellType == cellTypeCode {
		cell = NewCodeCell(source)
	} else {
		cell = NewMarkupCell(source)
		cell.cellType = cellType
	}

	for k, v := range rc {
		if k == "cell_type" || k == "source" {
			continue
		}
		if cell.extra == nil {
			cell.extra = make(map[string]json.RawMessage)
		}
		cell.extra[k] = v
	}
	return cell, nil
}

// decodeSource accepts both a string and the nbformat list of lines.
func decodeSource(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || isNull(raw) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var lines []string
	if err := json.Unmarshal(raw, &lines); err != nil {
		return "", fmt.Errorf("source must be a string or a list of strings: %w", err)
	}
	return strings.Join(lines, ""), nil
}

// Encode renders doc as notebook JSON. An empty document encodes its cells
// as an empty array.
func Encode(doc *Document) ([]byte, error) {
	top := make(map[string]any)
	cells := make([]map[string]any, 0)
	if doc != nil {
		for k, v := range doc.extra {
			top[k] = v
		}
		for _, c := range doc.Cells {
			out := make(map[string]any, len(c.extra)+2)
			for k, v := range c.extra {
				out[k] = v
			}
			out["cell_type"] = c.CellType()
			out["source"] = c.Source
			if err := doc.fillCellDefaults(out); err != nil {
				return nil, err
			}
			cells = append(cells, out)
		}
	}
	top["cells"] = cells

	data, err := json.MarshalIndent(top, "", " ")
	if err != nil {
		return nil, fmt.Errorf("encode notebook: %w", err)
	}
	return append(data, '\n'), nil
}

// formatVersion returns the declared nbformat and nbformat_minor, zero when
// absent.
func (d *Document) formatVersion() (major, minor int) {
	if raw, ok := d.extra["nbformat"]; ok {
		_ = json.Unmarshal(raw, &major)
	}
	if raw, ok := d.extra["nbformat_minor"]; ok {
		_ = json.Unmarshal(raw, &minor)
	}
	return major, minor
}

// fillCellDefaults adds the keys nbformat 4 requires on every cell when the
// cell does not carry them already. Documents that declare no nbformat are
// left as they are.
func (d *Document) fillCellDefaults(out map[string]any) error {
	major, minor := d.formatVersion()
	if major < 4 {
		return nil
	}
	if _, ok := out["metadata"]; !ok {
		out["metadata"] = json.RawMessage(`{}`)
	}
	if out["cell_type"] == cellTypeCode {
		if _, ok := out["outputs"]; !ok {
			out["outputs"] = json.RawMessage(`[]`)
		}
		if _, ok := out["execution_count"]; !ok {
			out["execution_count"] = nil
		}
	}
	// Cell ids arrived with nbformat 4.5.
	if _, ok := out["id"]; !ok && (major > 4 || minor >= 5) {
		id, err := uuid.NewV4()
		if err != nil {
			return fmt.Errorf("encode notebook: cell id: %w", err)
		}
		out["id"] = id.String()
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

package notebook

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Cell scripts are how a notebook is shown in a plain text editor: each
// cell starts with a marker line and the file opens with a commented YAML
// header.
const (
	markerPrefix   = "# %%"
	markdownMarker = "# %% [markdown]"
	rawMarker      = "# %% [raw]"
	headerFence    = "# ---"
)

// ScriptExt is appended to a notebook name when it is materialized as a
// cell script.
const ScriptExt = ".py"

// Header is the YAML block at the top of a cell script.
type Header struct {
	Path   string `yaml:"path"`
	Server string `yaml:"server,omitempty"`
	Kernel string `yaml:"kernel,omitempty"`
}

// RenderScript writes doc as a cell script. A cell whose source contains a
// marker line does not survive ParseScript unchanged.
func RenderScript(doc *Document, h *Header) ([]byte, error) {
	var buf bytes.Buffer

	if h != nil {
		data, err := yaml.Marshal(h)
		if err != nil {
			return nil, fmt.Errorf("render script header: %w", err)
		}
		buf.WriteString(headerFence + "\n")
		for _, line := range strings.Split(strings.TrimRight(string(data), "\n"), "\n") {
			buf.WriteString("# " + line + "\n")
		}
		buf.WriteString(headerFence + "\n\n")
	}

	if doc == nil {
		return buf.Bytes(), nil
	}
	for _, c := range doc.Cells {
		buf.WriteString(markerFor(c) + "\n")
		buf.WriteString(c.Source)
		buf.WriteString("\n\n")
	}
	return buf.Bytes(), nil
}

func markerFor(c Cell) string {
	if c.Kind == CellCode {
		return markerPrefix
	}
	if c.CellType() == "raw" {
		return rawMarker
	}
	return markdownMarker
}

// ParseScript reads a cell script back into a document. Notebook-level
// fields come from base; a parsed cell keeps the extra fields (outputs,
// metadata) of the base cell it is identical to, matched in order.
func ParseScript(data []byte, base *Document) (*Document, *Header, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	lines := strings.SplitAfter(text, "\n")

	header, rest, err := parseHeader(lines)
	if err != nil {
		return nil, nil, err
	}

	doc := &Document{Cells: []Cell{}}
	if base != nil {
		doc.extra = base.extra
	}

	var (
		current *Cell
		body    strings.Builder
		leading strings.Builder
	)
	flush := func() {
		if current == nil {
			return
		}
		current.Source = trimCellBody(body.String())
		doc.Cells = append(doc.Cells, *current)
		body.Reset()
	}

	for _, line := range rest {
		if cell, ok := parseMarker(strings.TrimRight(line, "\n")); ok {
			flush()
			current = &cell
			continue
		}
		if current == nil {
			leading.WriteString(line)
			continue
		}
		body.WriteString(line)
	}
	flush()

	if pre := strings.TrimSpace(leading.String()); pre != "" {
		doc.Cells = append([]Cell{NewCodeCell(pre)}, doc.Cells...)
	}

	if base != nil {
		carryExtras(doc, base)
	}
	return doc, header, nil
}

func parseHeader(lines []string) (*Header, []string, error) {
	start := 0
	for start < len(lines) && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	if start >= len(lines) || strings.TrimRight(lines[start], "\n") != headerFence {
		return nil, lines, nil
	}

	var yamlText strings.Builder
	for i := start + 1; i < len(lines); i++ {
		line := strings.TrimRight(lines[i], "\n")
		if line == headerFence {
			var h Header
			if err := yaml.Unmarshal([]byte(yamlText.String()), &h); err != nil {
				return nil, nil, fmt.Errorf("parse script header: %w", err)
			}
			return &h, lines[i+1:], nil
		}
		line = strings.TrimPrefix(line, "#")
		line = strings.TrimPrefix(line, " ")
		yamlText.WriteString(line + "\n")
	}
	return nil, nil, fmt.Errorf("parse script header: missing closing %q", headerFence)
}

func parseMarker(line string) (Cell, bool) {
	if !strings.HasPrefix(line, markerPrefix) {
		return Cell{}, false
	}
	rest := line[len(markerPrefix):]
	if rest != "" && rest[0] != ' ' {
		return Cell{}, false
	}
	switch {
	case strings.Contains(rest, "[markdown]"), strings.Contains(rest, "[md]"):
		return NewMarkupCell(""), true
	case strings.Contains(rest, "[raw]"):
		c := NewMarkupCell("")
		c.cellType = "raw"
		return c, true
	default:
		return NewCodeCell(""), true
	}
}

// trimCellBody removes the line break that ends the source and the blank
// separator line written after it.
func trimCellBody(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\n")
}

func carryExtras(doc, base *Document) {
	next := 0
	for i := range doc.Cells {
		for j := next; j < len(base.Cells); j++ {
			b := base.Cells[j]
			if b.Kind == doc.Cells[i].Kind && b.Source == doc.Cells[i].Source && b.CellType() == doc.Cells[i].CellType() {
				doc.Cells[i].extra = b.extra
				doc.Cells[i].cellType = b.cellType
				next = j + 1
				break
			}
		}
	}
}

package notebook

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const titleAndPrint = `{"cells":[{"cell_type":"markdown","source":"# Title"},{"cell_type":"code","source":"print(1)"}]}`

func TestDecodeExample(t *testing.T) {
	doc, err := Decode([]byte(titleAndPrint))
	require.NoError(t, err)
	require.Len(t, doc.Cells, 2)

	assert.Equal(t, CellMarkup, doc.Cells[0].Kind)
	assert.Equal(t, LanguageMarkdown, doc.Cells[0].Language)
	assert.Equal(t, "# Title", doc.Cells[0].Source)

	assert.Equal(t, CellCode, doc.Cells[1].Kind)
	assert.Equal(t, LanguagePython, doc.Cells[1].Language)
	assert.Equal(t, "print(1)", doc.Cells[1].Source)
}

func TestEncodeExampleReproducesCells(t *testing.T) {
	doc, err := Decode([]byte(titleAndPrint))
	require.NoError(t, err)

	data, err := Encode(doc)
	require.NoError(t, err)

	var out struct {
		Cells []struct {
			CellType string `json:"cell_type"`
			Source   string `json:"source"`
		} `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	require.Len(t, out.Cells, 2)
	assert.Equal(t, "markdown", out.Cells[0].CellType)
	assert.Equal(t, "# Title", out.Cells[0].Source)
	assert.Equal(t, "code", out.Cells[1].CellType)
	assert.Equal(t, "print(1)", out.Cells[1].Source)
}

func TestRoundTripPreservesCells(t *testing.T) {
	docs := []*Document{
		{Cells: []Cell{}},
		{Cells: []Cell{NewCodeCell("")}},
		{Cells: []Cell{NewMarkupCell("a"), NewCodeCell("x = 1\ny = 2\n"), NewMarkupCell("")}},
		{Cells: []Cell{NewCodeCell("1"), NewCodeCell("2"), NewCodeCell("3"), NewMarkupCell("four")}},
	}

	for _, d := range docs {
		data, err := Encode(d)
		require.NoError(t, err)

		back, err := Decode(data)
		require.NoError(t, err)
		require.Len(t, back.Cells, len(d.Cells))
		for i := range d.Cells {
			assert.Equal(t, d.Cells[i].Kind, back.Cells[i].Kind, "cell %d kind", i)
			assert.Equal(t, d.Cells[i].Source, back.Cells[i].Source, "cell %d source", i)
		}
	}
}

func TestEncodeEmptyDocument(t *testing.T) {
	data, err := Encode(&Document{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"cells": []}`, string(data))

	data, err = Encode(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cells": []}`, string(data))
}

func TestDecodeEmptyCells(t *testing.T) {
	for _, input := range []string{`{"cells": []}`, `{}`, `{"cells": null}`} {
		doc, err := Decode([]byte(input))
		require.NoError(t, err, input)
		assert.Empty(t, doc.Cells, input)
	}
}

func TestDecodeSourceAsLines(t *testing.T) {
	doc, err := Decode([]byte(`{"cells":[{"cell_type":"code","source":["import os\n","print(os.getcwd())"]}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Cells, 1)
	assert.Equal(t, "import os\nprint(os.getcwd())", doc.Cells[0].Source)
}

func TestDecodeNonCodeIsMarkup(t *testing.T) {
	doc, err := Decode([]byte(`{"cells":[{"cell_type":"raw","source":"raw text"},{"source":"no type"}]}`))
	require.NoError(t, err)
	require.Len(t, doc.Cells, 2)
	assert.Equal(t, CellMarkup, doc.Cells[0].Kind)
	assert.Equal(t, "raw", doc.Cells[0].CellType())
	assert.Equal(t, CellMarkup, doc.Cells[1].Kind)
	assert.Equal(t, "markdown", doc.Cells[1].CellType())
}

func TestDecodeMalformed(t *testing.T) {
	inputs := []string{
		`not json`,
		`null`,
		`{"cells": "nope"}`,
		`{"cells": [{"cell_type": "code", "source": 42}]}`,
	}
	for _, input := range inputs {
		_, err := Decode([]byte(input))
		assert.Error(t, err, input)
	}
}

func TestEncodeKeepsMetadata(t *testing.T) {
	input := `{
 "cells": [
  {"cell_type": "code", "execution_count": 3, "id": "c1", "metadata": {"tags": ["x"]}, "outputs": [{"output_type": "stream", "name": "stdout", "text": "1\n"}], "source": "print(1)"}
 ],
 "metadata": {"kernelspec": {"name": "python3", "display_name": "Python 3"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`
	doc, err := Decode([]byte(input))
	require.NoError(t, err)
	assert.Equal(t, "python3", doc.KernelName())

	data, err := Encode(doc)
	require.NoError(t, err)
	assert.JSONEq(t, input, string(data))
}

func TestNewDocumentEncodesFormatVersion(t *testing.T) {
	doc := New()
	doc.Cells = append(doc.Cells, NewCodeCell("x = 1"))

	data, err := Encode(doc)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	assert.EqualValues(t, 4, out["nbformat"])
	assert.EqualValues(t, 5, out["nbformat_minor"])
	assert.Equal(t, map[string]any{}, out["metadata"])
	require.Len(t, out["cells"], 1)
}

// encodedCells encodes doc and returns its cells as generic maps.
func encodedCells(t *testing.T, doc *Document) []map[string]any {
	t.Helper()
	data, err := Encode(doc)
	require.NoError(t, err)
	var out struct {
		Cells []map[string]any `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	return out.Cells
}

func TestEncodeFillsRequiredCellKeys(t *testing.T) {
	base, err := Decode([]byte(`{
 "cells": [
  {"cell_type": "code", "execution_count": 1, "id": "keep-me", "metadata": {"tags": ["x"]}, "outputs": [], "source": "print(1)"},
  {"cell_type": "code", "execution_count": 2, "id": "old", "metadata": {}, "outputs": [], "source": "print(2)"}
 ],
 "metadata": {},
 "nbformat": 4,
 "nbformat_minor": 5
}`))
	require.NoError(t, err)

	script, err := RenderScript(base, nil)
	require.NoError(t, err)
	edited := strings.Replace(string(script), "print(2)", "print(20)", 1) + "# %% [markdown]\nnew prose\n"

	doc, _, err := ParseScript([]byte(edited), base)
	require.NoError(t, err)
	cells := encodedCells(t, doc)
	require.Len(t, cells, 3)

	// Unchanged cells keep what they had.
	assert.Equal(t, "keep-me", cells[0]["id"])
	assert.Equal(t, map[string]any{"tags": []any{"x"}}, cells[0]["metadata"])
	assert.EqualValues(t, 1, cells[0]["execution_count"])

	for i, c := range cells {
		assert.Contains(t, c, "metadata", "cell %d", i)
		assert.NotEmpty(t, c["id"], "cell %d", i)
		assert.Regexp(t, `^[a-zA-Z0-9_-]{1,64}$`, c["id"], "cell %d", i)
	}

	// The edited code cell lost its outputs and count with its extras.
	assert.Equal(t, []any{}, cells[1]["outputs"])
	assert.Contains(t, cells[1], "execution_count")
	assert.Nil(t, cells[1]["execution_count"])
	assert.NotEqual(t, "old", cells[1]["id"])

	// Prose cells carry neither outputs nor a count.
	assert.Equal(t, "markdown", cells[2]["cell_type"])
	assert.NotContains(t, cells[2], "outputs")
	assert.NotContains(t, cells[2], "execution_count")
	assert.NotEqual(t, cells[1]["id"], cells[2]["id"])
}

func TestEncodeOmitsCellIDsBeforeMinorFive(t *testing.T) {
	doc, err := Decode([]byte(`{"cells":[],"metadata":{},"nbformat":4,"nbformat_minor":4}`))
	require.NoError(t, err)
	doc.Cells = append(doc.Cells, NewCodeCell("x = 1"))

	cells := encodedCells(t, doc)
	require.Len(t, cells, 1)
	assert.NotContains(t, cells[0], "id")
	assert.Equal(t, map[string]any{}, cells[0]["metadata"])
	assert.Equal(t, []any{}, cells[0]["outputs"])
}

func TestEncodeWithoutFormatVersionAddsNothing(t *testing.T) {
	cells := encodedCells(t, &Document{Cells: []Cell{NewCodeCell("x = 1")}})
	require.Len(t, cells, 1)
	assert.Equal(t, map[string]any{"cell_type": "code", "source": "x = 1"}, cells[0])
}

package notebook

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderScript(t *testing.T) {
	doc := &Document{Cells: []Cell{NewMarkupCell("# Title"), NewCodeCell("print(1)")}}

	data, err := RenderScript(doc, &Header{Path: "/work/a.ipynb", Kernel: "python3"})
	require.NoError(t, err)

	want := `# ---
# path: /work/a.ipynb
# kernel: python3
# ---

# %% [markdown]
# Title

# %%
print(1)

`
	assert.Equal(t, want, string(data))
}

func TestScriptRoundTrip(t *testing.T) {
	doc := &Document{Cells: []Cell{
		NewMarkupCell("# Title\n\nSome prose."),
		NewCodeCell("import os\n"),
		NewCodeCell(""),
		NewMarkupCell("trailing\n\n"),
	}}

	data, err := RenderScript(doc, &Header{Path: "/x.ipynb"})
	require.NoError(t, err)

	back, header, err := ParseScript(data, nil)
	require.NoError(t, err)
	require.NotNil(t, header)
	assert.Equal(t, "/x.ipynb", header.Path)

	require.Len(t, back.Cells, len(doc.Cells))
	for i := range doc.Cells {
		assert.Equal(t, doc.Cells[i].Kind, back.Cells[i].Kind, "cell %d", i)
		assert.Equal(t, doc.Cells[i].Source, back.Cells[i].Source, "cell %d", i)
	}
}

func TestParseScriptEmpty(t *testing.T) {
	data, err := RenderScript(&Document{}, &Header{Path: "/empty.ipynb"})
	require.NoError(t, err)

	doc, _, err := ParseScript(data, nil)
	require.NoError(t, err)
	assert.Empty(t, doc.Cells)
}

func TestParseScriptUserEdits(t *testing.T) {
	script := "# %% [markdown]\n# Heading\n# %%\nx = 1\n# %% [raw]\nraw\n"

	doc, header, err := ParseScript([]byte(script), nil)
	require.NoError(t, err)
	assert.Nil(t, header)
	require.Len(t, doc.Cells, 3)

	assert.Equal(t, CellMarkup, doc.Cells[0].Kind)
	assert.Equal(t, "# Heading", doc.Cells[0].Source)
	assert.Equal(t, CellCode, doc.Cells[1].Kind)
	assert.Equal(t, "x = 1", doc.Cells[1].Source)
	assert.Equal(t, "raw", doc.Cells[2].CellType())
}

func TestParseScriptLeadingCode(t *testing.T) {
	doc, _, err := ParseScript([]byte("import sys\n\n# %%\nprint(sys.argv)\n"), nil)
	require.NoError(t, err)
	require.Len(t, doc.Cells, 2)
	assert.Equal(t, "import sys", doc.Cells[0].Source)
	assert.Equal(t, "print(sys.argv)", doc.Cells[1].Source)
}

func TestParseScriptCRLF(t *testing.T) {
	doc, _, err := ParseScript([]byte("# %%\r\na = 1\r\n\r\n# %% [markdown]\r\nhi\r\n"), nil)
	require.NoError(t, err)
	require.Len(t, doc.Cells, 2)
	assert.Equal(t, "a = 1", doc.Cells[0].Source)
	assert.Equal(t, "hi", doc.Cells[1].Source)
}

func TestParseScriptUnclosedHeader(t *testing.T) {
	_, _, err := ParseScript([]byte("# ---\n# path: /a.ipynb\n# %%\nx\n"), nil)
	assert.Error(t, err)
}

func TestParseScriptCarriesOutputsOfUnchangedCells(t *testing.T) {
	base, err := Decode([]byte(`{
 "cells": [
  {"cell_type": "code", "execution_count": 1, "metadata": {}, "outputs": [{"output_type": "stream", "name": "stdout", "text": "1\n"}], "source": "print(1)"},
  {"cell_type": "code", "execution_count": 2, "metadata": {}, "outputs": [{"output_type": "stream", "name": "stdout", "text": "2\n"}], "source": "print(2)"}
 ],
 "metadata": {"kernelspec": {"name": "python3"}},
 "nbformat": 4,
 "nbformat_minor": 5
}`))
	require.NoError(t, err)

	script, err := RenderScript(base, nil)
	require.NoError(t, err)
	edited := strings.Replace(string(script), "print(2)", "print(20)", 1)

	doc, _, err := ParseScript([]byte(edited), base)
	require.NoError(t, err)
	require.Len(t, doc.Cells, 2)
	assert.Equal(t, "python3", doc.KernelName())

	data, err := Encode(doc)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"text": "1\n"`)
	assert.NotContains(t, out, `"text": "2\n"`)
	assert.Contains(t, out, "print(20)")
}

package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattsolo1/grove-jupyter/pkg/models"
)

func TestOpenCreatesDatabase(t *testing.T) {
	dataDir := filepath.Join(t.TempDir(), "data")

	s, err := Open(dataDir)
	require.NoError(t, err)
	defer s.Close()

	if _, err := os.Stat(filepath.Join(dataDir, "history.db")); os.IsNotExist(err) {
		t.Error("Expected database file to be created")
	}
}

func TestRecordAndRecent(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []*models.HistoryEntry{
		{Server: "hub", Path: "/a.ipynb", Kind: models.KindNotebook, Action: models.ActionOpen, OK: true, At: base},
		{Server: "hub", Path: "/a.ipynb", Kind: models.KindNotebook, Action: models.ActionSave, OK: false, Message: "status 500", At: base.Add(time.Minute)},
		{Server: "lab", Path: "/b.txt", Kind: models.KindFile, Action: models.ActionOpen, OK: true, At: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, s.Record(e))
		assert.NotZero(t, e.ID)
	}

	all, err := s.Recent("", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "/b.txt", all[0].Path)
	assert.Equal(t, "lab", all[0].Server)

	hub, err := s.Recent("hub", 10)
	require.NoError(t, err)
	require.Len(t, hub, 2)
	assert.Equal(t, models.ActionSave, hub[0].Action)
	assert.False(t, hub[0].OK)
	assert.Equal(t, "status 500", hub[0].Message)
	assert.Equal(t, models.KindNotebook, hub[0].Kind)
	assert.Equal(t, base.Add(time.Minute).Unix(), hub[0].At.Unix())

	limited, err := s.Recent("", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordSetsTime(t *testing.T) {
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	defer s.Close()

	e := &models.HistoryEntry{Server: "hub", Path: "/x", Kind: models.KindFile, Action: models.ActionOpen, OK: true}
	require.NoError(t, s.Record(e))
	assert.False(t, e.At.IsZero())
}

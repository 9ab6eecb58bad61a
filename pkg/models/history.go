package models

import "time"

// HistoryAction names what was done to a remote path
type HistoryAction string

const (
	ActionOpen HistoryAction = "open"
	ActionSave HistoryAction = "save"
)

// HistoryEntry records the outcome of one open or save.
type HistoryEntry struct {
	ID      int64         `json:"id"`
	Server  string        `json:"server"`
	Path    string        `json:"path"`
	Kind    NodeKind      `json:"kind"`
	Action  HistoryAction `json:"action"`
	OK      bool          `json:"ok"`
	Message string        `json:"message,omitempty"`
	At      time.Time     `json:"at"`
}

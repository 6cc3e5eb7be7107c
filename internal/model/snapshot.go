package model

import (
	"fmt"
	"strings"
	"time"
)

// SnapshotVersion is the format version written into exports.
const SnapshotVersion = "1.0"

// Table names in the order they are listed to operators.
const (
	TableClients       = "clients"
	TableSubscriptions = "subscriptions"
	TableEvents        = "events"
	TablePrompts       = "prompts"
	TableAiPhotos      = "ai_photos"
	TableSettings      = "settings"
)

// Tables lists every exportable table.
var Tables = []string{
	TableClients,
	TableSubscriptions,
	TableEvents,
	TablePrompts,
	TableAiPhotos,
	TableSettings,
}

// IsTable reports whether name is an exportable table.
func IsTable(name string) bool {
	for _, t := range Tables {
		if t == name {
			return true
		}
	}
	return false
}

// Snapshot is the full-database export document.
type Snapshot struct {
	ExportDate time.Time     `json:"exportDate"`
	Version    string        `json:"version"`
	Data       *SnapshotData `json:"data"`
}

// SnapshotData holds every row of each table.
type SnapshotData struct {
	Clients       []*Client       `json:"clients"`
	AiPhotos      []*AiPhoto      `json:"aiPhotos"`
	Subscriptions []*Subscription `json:"subscriptions"`
	Settings      []*Setting      `json:"settings"`
	Events        []*Event        `json:"events"`
	Prompts       []*Prompt       `json:"prompts"`
}

// SettingsMode selects how settings are restored on import.
type SettingsMode string

const (
	// SettingsMerge upserts incoming settings by key and keeps the others.
	SettingsMerge SettingsMode = "merge"
	// SettingsReplace wipes the settings table before inserting.
	SettingsReplace SettingsMode = "replace"
)

// ParseSettingsMode defaults to merge when s is empty.
func ParseSettingsMode(s string) (SettingsMode, error) {
	switch SettingsMode(s) {
	case "", SettingsMerge:
		return SettingsMerge, nil
	case SettingsReplace:
		return SettingsReplace, nil
	default:
		return "", invalid("settings", "must be merge or replace")
	}
}

// ImportResult counts the rows written per table.
type ImportResult struct {
	Clients       int `json:"clients"`
	AiPhotos      int `json:"aiPhotos"`
	Subscriptions int `json:"subscriptions"`
	Settings      int `json:"settings"`
	Events        int `json:"events"`
	Prompts       int `json:"prompts"`
}

// TableStat is a table name with its row count.
type TableStat struct {
	Name     string `json:"name"`
	RowCount int64  `json:"rowCount"`
}

// TableDump is the raw content of one table for tabular export.
type TableDump struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Validate checks that every row is present and carries an explicit primary
// key, since the importer preserves ids.
func (d *SnapshotData) Validate() error {
	for i, c := range d.Clients {
		if c == nil || c.ID <= 0 {
			return rowError("clients", i)
		}
	}
	for i, p := range d.AiPhotos {
		if p == nil || p.ID <= 0 {
			return rowError("aiPhotos", i)
		}
	}
	for i, s := range d.Subscriptions {
		if s == nil || s.ID <= 0 {
			return rowError("subscriptions", i)
		}
	}
	for i, e := range d.Events {
		if e == nil || e.ID <= 0 {
			return rowError("events", i)
		}
	}
	for i, p := range d.Prompts {
		if p == nil || p.ID <= 0 {
			return rowError("prompts", i)
		}
	}
	for i, s := range d.Settings {
		if s == nil || strings.TrimSpace(s.Key) == "" {
			return invalid("settings", fmt.Sprintf("row %d has no key", i))
		}
	}
	return nil
}

func rowError(table string, index int) error {
	return invalid(table, fmt.Sprintf("row %d has no id", index))
}

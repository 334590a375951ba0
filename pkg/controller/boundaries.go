package controller

import (
	"net/url"
	"time"

	"github.com/matst80/slask-intel/pkg/types"
)

// View is the presentation side that renders records.
type View interface {
	SetVisible(id string, visible bool)
	Reorder(ids []string)
	ReportResults(result Result)
	ShowSuggestions(query string, suggestions []string)
	Notify(notification Notification)
}

// Navigator owns the address bar. ReplaceQuery must not add a navigation entry.
type Navigator interface {
	ReplaceQuery(values url.Values)
	Location() string
}

type Tracker interface {
	TrackFilterApplied(event types.FilterApplied)
}

type Result struct {
	Total    int               `json:"total"`
	Visible  int               `json:"visible"`
	Empty    bool              `json:"empty"`
	Page     int               `json:"page"`
	Pages    int               `json:"pages"`
	PageIds  []string          `json:"pageIds"`
	State    types.FilterState `json:"state"`
	Location string            `json:"location"`
}

const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Notification is a short lived, dismissible message.
type Notification struct {
	Level   string        `json:"level"`
	Message string        `json:"message"`
	Dismiss time.Duration `json:"dismiss"`
}

// NopView discards everything.
type NopView struct{}

func (NopView) SetVisible(string, bool)          {}
func (NopView) Reorder([]string)                 {}
func (NopView) ReportResults(Result)             {}
func (NopView) ShowSuggestions(string, []string) {}
func (NopView) Notify(Notification)              {}

// MemoryNavigator keeps the location in memory.
type MemoryNavigator struct {
	Path  string
	query string
}

func (m *MemoryNavigator) ReplaceQuery(values url.Values) {
	m.query = values.Encode()
}

func (m *MemoryNavigator) Location() string {
	if m.query == "" {
		return m.Path
	}
	return m.Path + "?" + m.query
}

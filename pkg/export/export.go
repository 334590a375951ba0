package export

import (
	"io"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/matst80/slask-intel/pkg/common/jsoncompat"
	"github.com/matst80/slask-intel/pkg/types"
)

// Item is the flattened projection of a record written to exports.
type Item struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Source      string   `json:"source"`
	Tactic      string   `json:"tactic"`
	Date        string   `json:"date"`
	Tags        []string `json:"tags"`
	Kind        string   `json:"kind,omitempty"`
}

type Document struct {
	Id         string            `json:"id"`
	Filters    types.FilterState `json:"filters"`
	ExportTime string            `json:"exportTime"`
	TotalItems int               `json:"totalItems"`
	Items      []Item            `json:"items"`
}

func Project(r types.Record) Item {
	tags := slices.Clone(r.Tags)
	if tags == nil {
		tags = []string{}
	}
	return Item{
		Id:          r.Id,
		Title:       r.Title,
		Description: r.Description,
		Severity:    r.Severity,
		Source:      r.Source,
		Tactic:      r.Tactic,
		Date:        r.Date,
		Tags:        tags,
		Kind:        r.Kind,
	}
}

// Build snapshots state and the given records, nothing is modified.
func Build(state types.FilterState, records []types.Record, now time.Time) Document {
	items := make([]Item, len(records))
	for i, r := range records {
		items[i] = Project(r)
	}
	return Document{
		Id:         uuid.NewString(),
		Filters:    state.Clone(),
		ExportTime: now.Format(time.RFC3339),
		TotalItems: len(items),
		Items:      items,
	}
}

func FileName(now time.Time) string {
	return "threat-intel-export-" + now.Format(time.DateOnly) + ".json"
}

func Write(w io.Writer, doc Document) error {
	enc := jsoncompat.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

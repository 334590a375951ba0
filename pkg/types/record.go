package types

import (
	"encoding/json"
	"slices"
	"time"
)

const (
	KindThreat = "threat"
	KindActor  = "actor"
	KindTool   = "tool"
)

// Record is a read-only view of one intelligence item.
type Record struct {
	Id          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Source      string   `json:"source"`
	Tactic      string   `json:"tactic"`
	Date        string   `json:"date,omitempty"`
	Tags        []string `json:"tags"`
	Kind        string   `json:"kind,omitempty"`
}

func (r Record) Time() (time.Time, bool) {
	return ParseRecordDate(r.Date)
}

func (r Record) Clone() Record {
	r.Tags = slices.Clone(r.Tags)
	return r
}

type recordAlias Record

// ToolRiskLevel rates a tool without an explicit risk level by how many actors use it.
func ToolRiskLevel(usedBy int) string {
	switch {
	case usedBy > 5:
		return SeverityHigh
	case usedBy > 2:
		return SeverityMedium
	}
	return SeverityLow
}

// UnmarshalJSON accepts the actor and tool feed files as well as threats.
// The title may be stored as "name". Actors rate by sophistication and tools
// by risk level. Aliases, category and country become tags.
func (r *Record) UnmarshalJSON(data []byte) error {
	tmp := struct {
		recordAlias
		Name           string            `json:"name"`
		Sophistication string            `json:"sophistication"`
		RiskLevel      string            `json:"risk_level"`
		UsedBy         []json.RawMessage `json:"used_by"`
		Aliases        []string          `json:"aliases"`
		Category       string            `json:"category"`
		Country        string            `json:"country"`
	}{}
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	*r = Record(tmp.recordAlias)
	if r.Title == "" {
		r.Title = tmp.Name
	}
	if r.Severity == "" {
		switch {
		case tmp.RiskLevel != "":
			r.Severity = tmp.RiskLevel
		case tmp.Sophistication != "":
			r.Severity = tmp.Sophistication
		case tmp.UsedBy != nil:
			r.Severity = ToolRiskLevel(len(tmp.UsedBy))
		}
	}
	if r.Tags == nil {
		r.Tags = []string{}
	}
	for _, tag := range append(tmp.Aliases, tmp.Category, tmp.Country) {
		if tag != "" && !slices.Contains(r.Tags, tag) {
			r.Tags = append(r.Tags, tag)
		}
	}
	return nil
}

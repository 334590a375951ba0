package presets

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/matst80/slask-intel/pkg/types"
)

var ErrUnknownPreset = errors.New("unknown preset")

type Preset struct {
	Name     string         `json:"name" validate:"required"`
	Label    string         `json:"label"`
	Fragment types.Fragment `json:"fragment"`
}

// Catalog is the static table of presets, built once at startup.
type Catalog struct {
	presets map[string]Preset
	order   []string
}

var validate = validator.New()

func NewCatalog(presets ...Preset) (*Catalog, error) {
	c := &Catalog{
		presets: make(map[string]Preset, len(presets)),
		order:   make([]string, 0, len(presets)),
	}
	for _, p := range presets {
		if err := validate.Struct(p); err != nil {
			return nil, fmt.Errorf("preset %q: %w", p.Name, err)
		}
		if p.Fragment.DateRange != nil && *p.Fragment.DateRange != "" && !types.IsDateRange(*p.Fragment.DateRange) {
			return nil, fmt.Errorf("preset %q: invalid date range %q", p.Name, *p.Fragment.DateRange)
		}
		if _, exists := c.presets[p.Name]; exists {
			return nil, fmt.Errorf("preset %q defined twice", p.Name)
		}
		c.presets[p.Name] = p
		c.order = append(c.order, p.Name)
	}
	return c, nil
}

func (c *Catalog) Get(name string) (Preset, bool) {
	p, ok := c.presets[name]
	return p, ok
}

func (c *Catalog) Names() []string {
	return append([]string(nil), c.order...)
}

func (c *Catalog) All() []Preset {
	ret := make([]Preset, 0, len(c.order))
	for _, name := range c.order {
		ret = append(ret, c.presets[name])
	}
	return ret
}

// Apply merges the preset into current and resets the page.
func (c *Catalog) Apply(name string, current types.FilterState) (types.FilterState, error) {
	p, ok := c.presets[name]
	if !ok {
		return current, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	next := current.Merge(p.Fragment)
	next.Page = 1
	return next, nil
}

// Delta wraps Apply for the controller pipeline.
func (c *Catalog) Delta(name string) types.Delta {
	return types.Delta{
		Name:       "preset:" + name,
		ResetsPage: true,
		Apply: func(s types.FilterState) (types.FilterState, error) {
			return c.Apply(name, s)
		},
	}
}

func tags(t ...string) *types.TagSet {
	ts := types.NewTagSet(t...)
	return &ts
}

func DefaultPresets() []Preset {
	return []Preset{
		{
			Name:  "critical-threats",
			Label: "Critical threats",
			Fragment: types.Fragment{
				Severity:  types.Ptr(types.SeverityCritical),
				SortBy:    types.Ptr(types.SortBySeverity),
				SortOrder: types.Ptr(types.SortDesc),
			},
		},
		{
			Name:  "recent-high",
			Label: "High severity this week",
			Fragment: types.Fragment{
				Severity:  types.Ptr(types.SeverityHigh),
				DateRange: types.Ptr(types.DateRangeWeek),
			},
		},
		{
			Name:  "apt-groups",
			Label: "APT groups",
			Fragment: types.Fragment{
				Tags:      tags("apt"),
				SortBy:    types.Ptr(types.SortByName),
				SortOrder: types.Ptr(types.SortAsc),
			},
		},
		{
			Name:  "ransomware",
			Label: "Ransomware",
			Fragment: types.Fragment{
				Tags:      tags("ransomware"),
				SortBy:    types.Ptr(types.SortByDate),
				SortOrder: types.Ptr(types.SortDesc),
			},
		},
		{
			Name:  "mitre-attack",
			Label: "MITRE ATT&CK techniques",
			Fragment: types.Fragment{
				Source:    types.Ptr("MITRE ATT&CK"),
				SortBy:    types.Ptr(types.SortByName),
				SortOrder: types.Ptr(types.SortAsc),
			},
		},
		{
			Name:  "cisa-alerts",
			Label: "CISA alerts",
			Fragment: types.Fragment{
				Source:    types.Ptr("CISA"),
				SortBy:    types.Ptr(types.SortByDate),
				SortOrder: types.Ptr(types.SortDesc),
			},
		},
	}
}

func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultPresets()...)
	if err != nil {
		panic(err)
	}
	return c
}

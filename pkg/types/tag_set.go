package types

import (
	"encoding/json"
	"slices"
	"strings"
)

// TagSet is a canonical set of tags: sorted, unique and without empty members.
// Members never contain the separator so the joined form splits back losslessly.
type TagSet []string

func NewTagSet(tags ...string) TagSet {
	ret := make(TagSet, 0, len(tags))
	for _, joined := range tags {
		for _, tag := range strings.Split(joined, TagSeparator) {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			ret = append(ret, tag)
		}
	}
	slices.Sort(ret)
	return slices.Compact(ret)
}

func TagSetFromString(joined string) TagSet {
	return NewTagSet(joined)
}

func (t TagSet) String() string {
	return strings.Join(t, TagSeparator)
}

func (t TagSet) IsEmpty() bool {
	return len(t) == 0
}

func (t TagSet) Contains(tag string) bool {
	_, found := slices.BinarySearch(t, tag)
	return found
}

func (t TagSet) Intersects(tags []string) bool {
	for _, tag := range tags {
		if t.Contains(tag) {
			return true
		}
	}
	return false
}

func (t TagSet) With(tags ...string) TagSet {
	return NewTagSet(append(slices.Clone(t), tags...)...)
}

func (t TagSet) Without(tags ...string) TagSet {
	ret := make(TagSet, 0, len(t))
	for _, tag := range t {
		if !slices.Contains(tags, tag) {
			ret = append(ret, tag)
		}
	}
	return ret
}

func (t TagSet) Toggle(tag string) TagSet {
	if t.Contains(tag) {
		return t.Without(tag)
	}
	return t.With(tag)
}

func (t TagSet) Clone() TagSet {
	if t == nil {
		return TagSet{}
	}
	return slices.Clone(t)
}

func (t TagSet) Equal(other TagSet) bool {
	return slices.Equal(t, other)
}

func (t TagSet) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

func (t *TagSet) UnmarshalJSON(data []byte) error {
	var tags []string
	if err := json.Unmarshal(data, &tags); err != nil {
		return err
	}
	*t = NewTagSet(tags...)
	return nil
}

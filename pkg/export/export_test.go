package export

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/matst80/slask-intel/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestBuild(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	state := types.DefaultFilterState()
	state.Severity = types.SeverityCritical
	records := []types.Record{
		{Id: "1", Title: "Ryuk", Severity: "Critical", Tags: []string{"ransomware"}},
		{Id: "2", Title: "Conti", Severity: "Critical"},
	}

	doc := Build(state, records, now)
	assert.Equal(t, 2, doc.TotalItems)
	assert.Equal(t, "2024-06-15T12:00:00Z", doc.ExportTime)
	assert.NotEmpty(t, doc.Id)
	assert.True(t, doc.Filters.Equal(state))
	assert.Equal(t, []string{}, doc.Items[1].Tags)

	doc.Items[0].Tags[0] = "changed"
	assert.Equal(t, "ransomware", records[0].Tags[0], "records must not be shared with the export")
}

func TestWrite(t *testing.T) {
	doc := Build(types.DefaultFilterState(), []types.Record{{Id: "1", Title: "Emotet"}}, time.Now())
	buf := bytes.Buffer{}
	assert.NoError(t, Write(&buf, doc))

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	for _, key := range []string{"filters", "exportTime", "totalItems", "items"} {
		assert.Contains(t, decoded, key)
	}
	filters := decoded["filters"].(map[string]any)
	assert.Equal(t, "date", filters["sortBy"])
	assert.Equal(t, []any{}, filters["tags"])
}

func TestFileName(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	assert.Equal(t, "threat-intel-export-2024-01-02.json", FileName(now))
}

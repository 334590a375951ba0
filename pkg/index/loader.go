package index

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/matst80/slask-intel/pkg/common/jsoncompat"
	"github.com/matst80/slask-intel/pkg/types"
)

// DataFiles maps the collection files of the data directory to record kinds.
var DataFiles = map[string]string{
	"threats.json": types.KindThreat,
	"actors.json":  types.KindActor,
	"tools.json":   types.KindTool,
}

var fileOrder = []string{"threats.json", "actors.json", "tools.json"}

func LoadFile(fileName, kind string) ([]types.Record, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, err
	}
	records := make([]types.Record, 0)
	if err := jsoncompat.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	for i := range records {
		if records[i].Kind == "" {
			records[i].Kind = kind
		}
		if records[i].Severity == "" && records[i].Kind == types.KindTool {
			records[i].Severity = types.ToolRiskLevel(0)
		}
	}
	return records, nil
}

// LoadFiles reads every known collection file in dir and replaces the
// repository contents with them. Missing files are skipped.
func (r *MemoryRepository) LoadFiles(dir string) error {
	loaded := make([]types.Record, 0)
	for _, name := range fileOrder {
		records, err := LoadFile(filepath.Join(dir, name), DataFiles[name])
		if errors.Is(err, os.ErrNotExist) {
			log.Printf("No %s in %s, skipping", name, dir)
			continue
		}
		if err != nil {
			return err
		}
		log.Printf("Loaded %d records from %s", len(records), name)
		loaded = append(loaded, records...)
	}
	r.Replace(loaded...)
	return nil
}

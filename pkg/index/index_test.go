package index

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matst80/slask-intel/pkg/facet"
	"github.com/matst80/slask-intel/pkg/types"
)

func testRecords() []types.Record {
	return []types.Record{
		{Id: "t1", Title: "Ransomware wave", Severity: types.SeverityCritical, Source: "CISA", Tactic: "Impact", Tags: []string{"ransomware", "apt"}, Kind: types.KindThreat},
		{Id: "t2", Title: "Phishing kit", Severity: types.SeverityHigh, Source: "MITRE", Tactic: "Initial Access", Tags: []string{"phishing"}, Kind: types.KindThreat},
		{Id: "a1", Title: "APT29", Source: "MITRE", Tags: []string{"apt"}, Kind: types.KindActor},
	}
}

func TestRepositoryKeepsInsertionOrder(t *testing.T) {
	repo := NewMemoryRepository(testRecords()...)
	all := repo.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	for i, id := range []string{"t1", "t2", "a1"} {
		if all[i].Id != id {
			t.Errorf("expected %s at %d, got %s", id, i, all[i].Id)
		}
	}
}

func TestRepositoryReturnsCopies(t *testing.T) {
	repo := NewMemoryRepository(testRecords()...)
	all := repo.All()
	all[0].Tags[0] = "changed"
	item, ok := repo.Get("t1")
	if !ok {
		t.Fatal("expected t1 to exist")
	}
	if item.Tags[0] != "ransomware" {
		t.Errorf("repository was mutated through a returned record: %v", item.Tags)
	}
}

func TestUpsertReplacesInPlace(t *testing.T) {
	repo := NewMemoryRepository(testRecords()...)
	before := repo.Version()
	changed := uint64(0)
	repo.AddChangeHandler(ChangeHandlerFunc(func(v uint64) {
		changed = v
	}))
	repo.Upsert(types.Record{Id: "t2", Title: "Updated"}, types.Record{Id: "n1", Title: "New"})
	if repo.Len() != 4 {
		t.Fatalf("expected 4 records, got %d", repo.Len())
	}
	all := repo.All()
	if all[1].Title != "Updated" || all[3].Id != "n1" {
		t.Errorf("unexpected order after upsert: %+v", all)
	}
	if repo.Version() <= before || changed != repo.Version() {
		t.Errorf("expected version bump to be reported, got %d (handler %d)", repo.Version(), changed)
	}
}

func TestDelete(t *testing.T) {
	repo := NewMemoryRepository(testRecords()...)
	repo.Delete("t1", "missing")
	if repo.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", repo.Len())
	}
	if _, ok := repo.Get("t1"); ok {
		t.Error("expected t1 to be deleted")
	}
	if item, ok := repo.Get("a1"); !ok || item.Title != "APT29" {
		t.Errorf("expected a1 to be reachable after delete, got %+v", item)
	}
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	threats := `[{"id":"t1","title":"Ransomware wave","severity":"Critical","source":"CISA","tactic":"Impact","date":"2024-01-15","tags":["ransomware"]}]`
	actors := `[{"id":"a1","name":"APT29","severity":"High","source":"MITRE","tags":["apt"]}]`
	if err := os.WriteFile(filepath.Join(dir, "threats.json"), []byte(threats), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "actors.json"), []byte(actors), 0644); err != nil {
		t.Fatal(err)
	}
	repo := NewMemoryRepository()
	if err := repo.LoadFiles(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", repo.Len())
	}
	actor, _ := repo.Get("a1")
	if actor.Kind != types.KindActor || actor.Title != "APT29" {
		t.Errorf("expected actor kind and name fallback, got %+v", actor)
	}
	threat, _ := repo.Get("t1")
	if threat.Kind != types.KindThreat {
		t.Errorf("expected threat kind, got %s", threat.Kind)
	}
}

func TestLoadFilesRatesActorsAndTools(t *testing.T) {
	dir := t.TempDir()
	actors := `[{"id":"a1","name":"APT28","sophistication":"High","aliases":["Fancy Bear","Sofacy"],"country":"Russia"}]`
	tools := `[
		{"id":"x1","name":"Mimikatz","category":"Credential Access","risk_level":"High","used_by":[6]},
		{"id":"x2","name":"Cobalt Strike","used_by":["a","b","c","d","e","f"]},
		{"id":"x3","name":"PsExec","used_by":["a","b","c"]},
		{"id":"x4","name":"Netcat"}
	]`
	if err := os.WriteFile(filepath.Join(dir, "actors.json"), []byte(actors), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tools.json"), []byte(tools), 0644); err != nil {
		t.Fatal(err)
	}
	repo := NewMemoryRepository()
	if err := repo.LoadFiles(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := map[string]string{
		"a1": types.SeverityHigh,
		"x1": types.SeverityHigh,
		"x2": types.SeverityHigh,
		"x3": types.SeverityMedium,
		"x4": types.SeverityLow,
	}
	for id, severity := range expected {
		r, ok := repo.Get(id)
		if !ok {
			t.Fatalf("expected %s to be loaded", id)
		}
		if r.Severity != severity {
			t.Errorf("expected %s to have severity %s, got %q", id, severity, r.Severity)
		}
	}

	actor, _ := repo.Get("a1")
	for _, tag := range []string{"Fancy Bear", "Sofacy", "Russia"} {
		if !slices.Contains(actor.Tags, tag) {
			t.Errorf("expected tag %q on actor, got %v", tag, actor.Tags)
		}
	}
	tool, _ := repo.Get("x1")
	if !slices.Contains(tool.Tags, "Credential Access") {
		t.Errorf("expected category tag on tool, got %v", tool.Tags)
	}

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	state := types.DefaultFilterState()
	state.Severity = types.SeverityHigh
	if got := facet.Filter(repo.All(), state, now); len(got) != 3 {
		t.Errorf("expected 3 high severity records, got %d", len(got))
	}
	state = types.DefaultFilterState()
	state.Search = "fancy bear"
	if got := facet.Filter(repo.All(), state, now); len(got) != 1 || got[0].Id != "a1" {
		t.Errorf("expected alias search to find the actor, got %+v", got)
	}

	stats := repo.Stats(now)
	if stats.BySeverity[types.SeverityHigh] != 3 || stats.BySeverity[types.SeverityUnknown] != 0 {
		t.Errorf("unexpected severity counts %v", stats.BySeverity)
	}
}

func TestLoadFilesReplacesContents(t *testing.T) {
	dir := t.TempDir()
	repo := NewMemoryRepository(types.Record{Id: "old", Title: "Gone after reload"})
	changed := 0
	repo.AddChangeHandler(ChangeHandlerFunc(func(uint64) { changed++ }))
	threats := `[{"id":"t1","title":"Fresh"}]`
	if err := os.WriteFile(filepath.Join(dir, "threats.json"), []byte(threats), 0644); err != nil {
		t.Fatal(err)
	}
	if err := repo.LoadFiles(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := repo.Get("old"); ok {
		t.Error("expected records missing from the files to be dropped")
	}
	if repo.Len() != 1 || changed != 1 {
		t.Errorf("expected 1 record and 1 change, got %d and %d", repo.Len(), changed)
	}
}

func TestLoadFilesInvalidJson(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "tools.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := NewMemoryRepository().LoadFiles(dir); err == nil {
		t.Error("expected parse error")
	}
}

func TestStats(t *testing.T) {
	repo := NewMemoryRepository(testRecords()...)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	stats := repo.Stats(now)
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.ByKind[types.KindThreat] != 2 || stats.ByKind[types.KindActor] != 1 {
		t.Errorf("unexpected kind counts %v", stats.ByKind)
	}
	if stats.BySeverity[types.SeverityUnknown] != 1 || stats.BySeverity[types.SeverityCritical] != 1 {
		t.Errorf("unexpected severity counts %v", stats.BySeverity)
	}
	if stats.LastUpdated != "2024-03-01 12:00:00" {
		t.Errorf("unexpected timestamp %s", stats.LastUpdated)
	}
}

func TestGetFacetValues(t *testing.T) {
	values := GetFacetValues(testRecords())
	if len(values.Source) != 2 || values.Source[0].Value != "CISA" || values.Source[1].Count != 2 {
		t.Errorf("unexpected sources %+v", values.Source)
	}
	if len(values.Tactic) != 2 {
		t.Errorf("expected empty tactic to be skipped, got %+v", values.Tactic)
	}
	if len(values.Tags) != 3 || values.Tags[0].Value != "apt" || values.Tags[0].Count != 2 {
		t.Errorf("unexpected tags %+v", values.Tags)
	}
}

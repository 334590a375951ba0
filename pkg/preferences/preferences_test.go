package preferences

import (
	"context"
	"testing"

	"github.com/matst80/slask-intel/pkg/storage"
)

func TestLoadDefaults(t *testing.T) {
	s := NewStore(storage.NewMemoryStorage())
	if p := s.Load(context.Background(), "p1"); p != Defaults() {
		t.Errorf("Expected defaults, got %+v", p)
	}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	s := NewStore(storage.NewDiskStorage(t.TempDir()))
	want := Preferences{AutoRefresh: true, Theme: ThemeDark}
	if err := s.Save(ctx, "p1", want); err != nil {
		t.Fatal(err)
	}
	if got := s.Load(ctx, "p1"); got != want {
		t.Errorf("Expected %+v, got %+v", want, got)
	}
	if got := s.Load(ctx, "p2"); got != Defaults() {
		t.Errorf("Expected other profile to have defaults, got %+v", got)
	}
}

func TestSaveRejectsUnknownTheme(t *testing.T) {
	s := NewStore(storage.NewMemoryStorage())
	if err := s.Save(context.Background(), "p1", Preferences{Theme: "neon"}); err == nil {
		t.Error("Expected validation error")
	}
}

func TestLoadCorrupt(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryStorage()
	_ = kv.Set(ctx, "prefs:p1", []byte("nope"))
	_ = kv.Set(ctx, "prefs:p2", []byte(`{"theme":"neon"}`))
	s := NewStore(kv)
	if got := s.Load(ctx, "p1"); got != Defaults() {
		t.Errorf("Expected defaults for corrupt data, got %+v", got)
	}
	if got := s.Load(ctx, "p2"); got != Defaults() {
		t.Errorf("Expected defaults for invalid data, got %+v", got)
	}
}

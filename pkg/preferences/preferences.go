package preferences

import (
	"context"
	"errors"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/matst80/slask-intel/pkg/storage"
)

const (
	ThemeAuto  = "auto"
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Preferences are profile scoped and independent of the filter state.
type Preferences struct {
	AutoRefresh bool   `json:"autoRefresh"`
	Theme       string `json:"theme" validate:"oneof=auto light dark"`
}

func Defaults() Preferences {
	return Preferences{AutoRefresh: false, Theme: ThemeAuto}
}

var validate = validator.New()

func (p Preferences) Validate() error {
	return validate.Struct(p)
}

type Store struct {
	kv storage.KeyValueStore
}

func NewStore(kv storage.KeyValueStore) *Store {
	return &Store{kv: kv}
}

func key(profile string) string {
	return "prefs:" + profile
}

// Load returns the stored preferences or the defaults when nothing usable is stored.
func (s *Store) Load(ctx context.Context, profile string) Preferences {
	p := Defaults()
	err := storage.GetJson(ctx, s.kv, key(profile), &p)
	if errors.Is(err, storage.ErrNotFound) {
		return Defaults()
	}
	if err != nil {
		log.Printf("Failed to load preferences for %s: %v", profile, err)
		return Defaults()
	}
	if err := p.Validate(); err != nil {
		log.Printf("Ignoring invalid preferences for %s: %v", profile, err)
		return Defaults()
	}
	return p
}

func (s *Store) Save(ctx context.Context, profile string, p Preferences) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return storage.SetJson(ctx, s.kv, key(profile), p)
}

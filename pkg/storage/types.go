package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/matst80/slask-intel/pkg/common/jsoncompat"
)

var ErrNotFound = errors.New("key not found")

// KeyValueStore persists opaque values by key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

func GetJson(ctx context.Context, store KeyValueStore, key string, out any) error {
	data, err := store.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := jsoncompat.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func SetJson(ctx context.Context, store KeyValueStore, key string, value any) error {
	data, err := jsoncompat.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return store.Set(ctx, key, data)
}

type DiskStorage struct {
	RootFolder string
}

func NewDiskStorage(rootFolder string) *DiskStorage {
	return &DiskStorage{
		RootFolder: rootFolder,
	}
}

var keyReplacer = strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")

func (ds *DiskStorage) GetFileName(key string) (string, string) {
	fileName := path.Join(ds.RootFolder, keyReplacer.Replace(key)+".json")
	tmpFileName := fileName + ".tmp-" + fmt.Sprintf("%d", time.Now().UnixNano())
	return fileName, tmpFileName
}

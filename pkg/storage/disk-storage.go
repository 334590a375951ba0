package storage

import (
	"context"
	"errors"
	"os"
)

func (d *DiskStorage) Get(_ context.Context, key string) ([]byte, error) {
	name, _ := d.GetFileName(key)
	data, err := os.ReadFile(name)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNotFound
	}
	return data, err
}

// Set writes to a temporary file and renames it so readers never see a partial value.
func (d *DiskStorage) Set(_ context.Context, key string, value []byte) error {
	if err := os.MkdirAll(d.RootFolder, 0o755); err != nil {
		return err
	}
	fileName, tmpFileName := d.GetFileName(key)

	file, err := os.Create(tmpFileName)
	if err != nil {
		return err
	}
	_, err = file.Write(value)
	file.Close()
	if err != nil {
		os.Remove(tmpFileName)
		return err
	}

	return os.Rename(tmpFileName, fileName)
}

func (d *DiskStorage) Delete(_ context.Context, key string) error {
	name, _ := d.GetFileName(key)
	err := os.Remove(name)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

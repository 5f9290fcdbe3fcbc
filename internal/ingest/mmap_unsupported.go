//go:build !linux && !darwin

package ingest

import "os"

// On unsupported platforms the file is read into memory instead of mapped
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return data, func() error { return nil }, nil
}

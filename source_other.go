//go:build !unix

package docstore

import "os"

// MapFile reads the file at path into an in-memory Source. On
// platforms without mmap support the data is copied once at open
// time; slicing remains zero-copy.
func MapFile(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return NewSource(data), nil
}

//go:build unix

package docstore

import (
	"os"
	"runtime"

	"golang.org/x/sys/unix"
)

// MapFile maps the file at path into memory as a read-only Source.
// The mapping is unmapped automatically once the last Source (or
// Reader) referencing it has been dropped, there is no explicit
// close.
func MapFile(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := int(stat.Size())
	if size == 0 {
		return EmptySource(), nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}

	buf := &buffer{data: data}
	runtime.AddCleanup(buf, func(d []byte) { _ = unix.Munmap(d) }, data)
	return &Source{buf: buf, stop: size}, nil
}

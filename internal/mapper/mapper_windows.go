//go:build windows

package mapper

import (
	"io"
	"os"
)

// windowsMapper falls back to reading the whole file into memory, matching
// internal/common/mmap_windows.go's ReadAll fallback rather than pulling in
// the Windows file-mapping syscalls.
type windowsMapper struct {
	f    *os.File
	data []byte
}

func openMapped(f *os.File, size int64) (Mapper, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &windowsMapper{f: f, data: data}, nil
}

func (m *windowsMapper) Data() []byte { return m.data }

func (m *windowsMapper) Close() error {
	return m.f.Close()
}

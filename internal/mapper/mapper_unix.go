//go:build !windows

package mapper

import (
	"os"

	"golang.org/x/sys/unix"
)

// unixMapper holds an mmap'd region backed by an open file descriptor,
// released together on Close.
type unixMapper struct {
	f    *os.File
	data []byte
}

func openMapped(f *os.File, size int64) (Mapper, error) {
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &unixMapper{f: f, data: data}, nil
}

func (m *unixMapper) Data() []byte { return m.data }

func (m *unixMapper) Close() error {
	err := unix.Munmap(m.data)
	if cerr := m.f.Close(); err == nil {
		err = cerr
	}
	return err
}

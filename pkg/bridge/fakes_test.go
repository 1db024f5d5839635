package bridge_test

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/afero"

	"fsbridge/pkg/types"
)

type recordLogger struct {
	infos  []string
	errors []string
}

func (r *recordLogger) Info(msg string, args ...interface{}) {
	r.infos = append(r.infos, fmt.Sprintf(msg, args...))
}

func (r *recordLogger) Error(msg string, args ...interface{}) {
	r.errors = append(r.errors, fmt.Sprintf(msg, args...))
}

// shortFS hands out files that drop the last byte of every write
type shortFS struct {
	types.FS
	last *shortFile
}

func (s *shortFS) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	f, err := s.FS.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	s.last = &shortFile{File: f}
	return s.last, nil
}

type shortFile struct {
	afero.File
	closed bool
}

func (f *shortFile) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return f.File.Write(p[:len(p)-1])
}

func (f *shortFile) Close() error {
	f.closed = true
	return f.File.Close()
}

// deniedFS fails every stat with EACCES
type deniedFS struct {
	types.FS
}

func (deniedFS) Stat(name string) (os.FileInfo, error) {
	return nil, &os.PathError{Op: "stat", Path: name, Err: syscall.EACCES}
}

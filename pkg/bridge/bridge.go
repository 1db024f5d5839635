// Package bridge exposes single-call file primitives with a boolean result
// contract. Every call opens, acts on and releases its own descriptor; the
// Bridge itself only carries immutable configuration.
package bridge

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"fsbridge/pkg/errors"
	"fsbridge/pkg/types"
)

// Bridge translates file operations into file system calls
type Bridge struct {
	fs        types.FS
	log       types.Logger
	fileMode  os.FileMode
	dirMode   os.FileMode
	chunkSize int
}

// New creates a Bridge. Without options it works on the OS file system
// with modes 0666/0777 and discards its log output.
func New(opts ...Option) *Bridge {
	o := newOptions(opts...)
	return &Bridge{
		fs:        o.fs,
		log:       o.logger,
		fileMode:  o.fileMode,
		dirMode:   o.dirMode,
		chunkSize: o.chunkSize,
	}
}

// WriteString creates or truncates path and writes content to it
func (b *Bridge) WriteString(path, content string) bool {
	return b.Write(path, []byte(content)) == nil
}

// AppendToFile creates path if needed and appends content at end of file
func (b *Bridge) AppendToFile(path, content string) bool {
	return b.Append(path, []byte(content)) == nil
}

// Write creates or truncates path and writes data in full
func (b *Bridge) Write(path string, data []byte) error {
	return b.put(types.OpWrite, path, data, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
}

// Append creates path if needed and appends data in full
func (b *Bridge) Append(path string, data []byte) error {
	return b.put(types.OpAppend, path, data, os.O_WRONLY|os.O_CREATE|os.O_APPEND)
}

func (b *Bridge) put(op types.Op, path string, data []byte, flag int) error {
	f, err := b.fs.OpenFile(path, flag, b.fileMode)
	if err != nil {
		b.log.Error("open file failed: %s, error: %s", path, describe(err))
		return errors.OpenError(err, path).WithContext("op", string(op))
	}

	n, werr := f.Write(data)
	cerr := f.Close()

	switch {
	case werr != nil:
		b.log.Error("%s file failed: %s, error: %s", op, path, describe(werr))
		return errors.Wrap(werr, errors.ErrorTypeWrite, string(op)+" failed").
			WithContext("path", path).
			WithContext("written", n)
	case n != len(data):
		b.log.Error("%s file failed: %s, error: short write %d of %d bytes", op, path, n, len(data))
		return errors.ShortWriteError(path, n, len(data)).WithContext("op", string(op))
	case cerr != nil:
		b.log.Error("%s file failed: %s, error: %s", op, path, describe(cerr))
		return errors.Wrap(cerr, errors.ErrorTypeWrite, "close failed").WithContext("path", path)
	}

	if op == types.OpAppend {
		b.log.Info("appended file: %s", path)
	} else {
		b.log.Info("wrote file: %s", path)
	}
	return nil
}

// ReadFromFile returns the content of path, or "" when it cannot be read.
// Use ReadFile to tell an empty file from a failure.
func (b *Bridge) ReadFromFile(path string) string {
	data, err := b.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// ReadFile reads path in fixed-size chunks until EOF. A missing path yields
// an error of type not_found.
func (b *Bridge) ReadFile(path string) ([]byte, error) {
	f, err := b.fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		b.log.Error("open file failed: %s, error: %s", path, describe(err))
		return nil, errors.OpenError(err, path).WithContext("op", string(types.OpRead))
	}
	defer f.Close()

	var buf bytes.Buffer
	chunk := make([]byte, b.chunkSize)
	for {
		n, rerr := f.Read(chunk)
		buf.Write(chunk[:n])
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			b.log.Error("read file failed: %s, error: %s", path, describe(rerr))
			return nil, errors.Wrap(rerr, errors.ErrorTypeRead, "read failed").
				WithContext("path", path).
				WithContext("bytes", buf.Len())
		}
	}

	b.log.Info("read file: %s, length: %d", path, buf.Len())
	return buf.Bytes(), nil
}

// Stat returns the file info for path, following symlinks
func (b *Bridge) Stat(path string) (os.FileInfo, error) {
	info, err := b.fs.Stat(path)
	if err != nil {
		return nil, errors.StatError(err, path)
	}
	return info, nil
}

// FileExists reports whether path names a regular file. Symlinks are
// followed.
func (b *Bridge) FileExists(path string) bool {
	info, err := b.Stat(path)
	exists := err == nil && info.Mode().IsRegular()
	b.log.Info("check file exists: %s, result: %t", path, exists)
	return exists
}

// Mkdirs creates path and any missing parents
func (b *Bridge) Mkdirs(path string) bool {
	return b.EnsureDirectory(path) == nil
}

// EnsureDirectory creates every prefix of path and then path itself.
// Failures on intermediate prefixes are logged and skipped; the result is
// decided by the final mkdir and a post-check that path is a directory.
// Directories created along the way are left in place on failure.
func (b *Bridge) EnsureDirectory(path string) error {
	if b.isDir(path) {
		b.log.Info("directory already exists: %s", path)
		return nil
	}

	for i := 0; i < len(path); i++ {
		if !os.IsPathSeparator(path[i]) {
			continue
		}
		dir := path[:i]
		if dir == "" {
			continue
		}
		if err := b.fs.Mkdir(dir, b.dirMode); err != nil && !stderrors.Is(err, fs.ErrExist) {
			b.log.Error("create directory failed: %s, error: %s", dir, describe(err))
		}
	}

	err := b.fs.Mkdir(path, b.dirMode)
	created := err == nil
	switch {
	case created:
		b.log.Info("created directory: %s", path)
	case stderrors.Is(err, fs.ErrExist):
		// decided by the post-check below
	default:
		b.log.Error("create final directory failed: %s, error: %s", path, describe(err))
	}

	if created || b.isDir(path) {
		if !created {
			b.log.Info("directory already exists: %s", path)
		}
		return nil
	}

	if stderrors.Is(err, fs.ErrExist) {
		b.log.Error("create final directory failed: %s, error: exists and is not a directory", path)
		return errors.ConflictErrorf("%s exists and is not a directory", path).WithContext("path", path)
	}
	return errors.Wrap(err, errors.ErrorTypeMkdir, "failed to create directory").WithContext("path", path)
}

// WriteToFile writes content to path after creating a missing parent
// directory.
func (b *Bridge) WriteToFile(path, content string) bool {
	parent := filepath.Dir(path)
	if parent != "." && !b.isDir(parent) {
		created := b.Mkdirs(parent)
		b.log.Info("create parent directory: %s, result: %t", parent, created)
	}
	return b.WriteString(path, content)
}

// ReadTrimmed returns the whitespace-trimmed content of path, or "" when
// path is not a regular file.
func (b *Bridge) ReadTrimmed(path string) string {
	if !b.FileExists(path) {
		return ""
	}
	return strings.TrimSpace(b.ReadFromFile(path))
}

func (b *Bridge) isDir(path string) bool {
	info, err := b.Stat(path)
	return err == nil && info.IsDir()
}

// describe returns the OS error description without the op/path prefix
func describe(err error) string {
	var pe *fs.PathError
	if stderrors.As(err, &pe) {
		return pe.Err.Error()
	}
	return err.Error()
}

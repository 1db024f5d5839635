package bridge

import (
	"os"

	"fsbridge/pkg/logging"
	"fsbridge/pkg/types"
)

const (
	// DefaultFileMode is the create mode for new files before umask
	DefaultFileMode os.FileMode = 0666
	// DefaultDirMode is the create mode for new directories before umask
	DefaultDirMode os.FileMode = 0777
	// DefaultChunkSize is the read buffer size
	DefaultChunkSize = 4096
)

type options struct {
	fs        types.FS
	logger    types.Logger
	fileMode  os.FileMode
	dirMode   os.FileMode
	chunkSize int
}

type Option func(o *options)

func newOptions(opts ...Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	mergeDefaults(o)
	return o
}

func mergeDefaults(o *options) {
	if o.fs == nil {
		o.fs = types.NewOSFS()
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	if o.fileMode == 0 {
		o.fileMode = DefaultFileMode
	}
	if o.dirMode == 0 {
		o.dirMode = DefaultDirMode
	}
	if o.chunkSize <= 0 {
		o.chunkSize = DefaultChunkSize
	}
}

func WithFS(fs types.FS) Option {
	return func(o *options) {
		o.fs = fs
	}
}

func WithLogger(l types.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithFileMode sets the permission bits for files the bridge creates.
// Zero keeps the default.
func WithFileMode(m os.FileMode) Option {
	return func(o *options) {
		o.fileMode = m.Perm()
	}
}

// WithDirMode sets the permission bits for directories the bridge creates.
// Zero keeps the default.
func WithDirMode(m os.FileMode) Option {
	return func(o *options) {
		o.dirMode = m.Perm()
	}
}

func WithChunkSize(n int) Option {
	return func(o *options) {
		o.chunkSize = n
	}
}

package types

import (
	"github.com/spf13/afero"
)

// NewOSFS returns an FS backed by the operating system's file system
func NewOSFS() FS {
	return afero.NewOsFs()
}

// NewMemFS returns an in-memory FS. Parent directories are created
// implicitly, so it does not reproduce missing-parent open failures.
func NewMemFS() FS {
	return afero.NewMemMapFs()
}

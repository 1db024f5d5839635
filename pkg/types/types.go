package types

import (
	"os"
	"time"

	"github.com/spf13/afero"
)

// FS is the subset of file system calls the bridge needs. afero.Fs
// implementations satisfy it.
type FS interface {
	OpenFile(name string, flag int, perm os.FileMode) (afero.File, error)
	Stat(name string) (os.FileInfo, error)
	Mkdir(name string, perm os.FileMode) error
}

// Logger is the diagnostic sink the bridge reports to
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Op names a bridge operation
type Op string

const (
	OpWrite  Op = "write"
	OpRead   Op = "read"
	OpExists Op = "exists"
	OpMkdirs Op = "mkdirs"
	OpAppend Op = "append"
)

// Valid reports whether o is a known operation
func (o Op) Valid() bool {
	switch o {
	case OpWrite, OpRead, OpExists, OpMkdirs, OpAppend:
		return true
	default:
		return false
	}
}

// Step is one operation in a batch manifest
type Step struct {
	Op      Op     `yaml:"op" json:"op"`
	Path    string `yaml:"path" json:"path"`
	Content string `yaml:"content,omitempty" json:"content,omitempty"`
	Line    int    `yaml:"-" json:"line,omitempty"`
}

// OpResult is the outcome of executing a Step
type OpResult struct {
	Op       Op            `json:"op"`
	Path     string        `json:"path"`
	Success  bool          `json:"success"`
	Bytes    int           `json:"bytes"`
	Duration time.Duration `json:"duration_ns"`
	Error    string        `json:"error,omitempty"`
}

// Failed reports whether the step counts as a failure. An exists step only
// answers a question, so a false answer is not a failure.
func (r OpResult) Failed() bool {
	return !r.Success && r.Op != OpExists
}

// Outcome is the result label for r: "true"/"false" for exists,
// "success"/"failure" for every other op.
func (r OpResult) Outcome() string {
	if r.Op == OpExists {
		if r.Success {
			return "true"
		}
		return "false"
	}
	if r.Success {
		return "success"
	}
	return "failure"
}

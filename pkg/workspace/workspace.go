// Package workspace scopes intermediate image files to a single run.
// Every recipe writes its intermediates under one pid-keyed directory
// that is removed on all exit paths (the command entrypoint cancels
// in-flight tool invocations on SIGINT/SIGTERM, so deferred removal
// still runs).
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvTmpDir overrides the base directory for intermediate files.
// Defaults to os.TempDir().
const EnvTmpDir = "IMFX_TMPDIR"

// Workspace is a temporary directory holding the intermediate artifacts
// of one recipe run.
type Workspace struct {
	dir string
}

// New creates a workspace directory named after prefix and the current
// process id, e.g. /tmp/imfx-kaleidoscope.12345.821734982.
func New(prefix string) (*Workspace, error) {
	base := os.Getenv(EnvTmpDir)
	if base == "" {
		base = os.TempDir()
	}
	dir, err := os.MkdirTemp(base, fmt.Sprintf("%s.%d.", prefix, os.Getpid()))
	if err != nil {
		return nil, fmt.Errorf("create workspace under %s: %w", base, err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace directory.
func (w *Workspace) Dir() string { return w.dir }

// Path returns the absolute path for a named intermediate file.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Remove deletes the workspace and everything in it. Safe to call more
// than once.
func (w *Workspace) Remove() error {
	if w.dir == "" {
		return nil
	}
	err := os.RemoveAll(w.dir)
	w.dir = ""
	return err
}

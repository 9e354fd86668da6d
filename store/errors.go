package store

import (
	"fmt"
	"path/filepath"
)

// PersistenceError reports a file of the output directory that could not be
// read, written or decoded
type PersistenceError struct {
	Op   string // "read", "write" or "decode"
	Path string
	Dir  string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s in directory %s: %v", e.Op, filepath.Base(e.Path), e.Dir, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (d Dir) errorf(op, path string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Path: path, Dir: string(d), Err: err}
}

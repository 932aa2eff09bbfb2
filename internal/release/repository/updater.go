package repository

import (
	"io"

	"github.com/inconshreveable/go-update"
)

// BinaryUpdater replaces the running executable.
type BinaryUpdater struct {
	// TargetPath overrides the executable to replace; empty means the running one.
	TargetPath string
}

func (u BinaryUpdater) Apply(reader io.Reader) error {
	return update.Apply(reader, update.Options{TargetPath: u.TargetPath})
}

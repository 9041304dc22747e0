package deploy

import (
	"fmt"
	"io"
	"os"
)

// failingSystem wraps RealSystem and fails the nth CopyFile call, or every
// operation touching a matching path. Used to exercise rollback from every
// step of a transaction.
type failingSystem struct {
	RealSystem
	failCopyAt   int
	copyCalls    int
	failWritesTo string
}

func (s *failingSystem) CopyFile(src string, dst string) error {
	s.copyCalls++
	if s.failCopyAt > 0 && s.copyCalls == s.failCopyAt {
		return fmt.Errorf("injected copy failure at call %d", s.copyCalls)
	}
	return s.RealSystem.CopyFile(src, dst)
}

func (s *failingSystem) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if s.failWritesTo != "" && filename == s.failWritesTo {
		return fmt.Errorf("injected write failure for %s", filename)
	}
	return s.RealSystem.WriteFileAtomic(filename, data, perm)
}

func discard() io.Writer {
	return io.Discard
}

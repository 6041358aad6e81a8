package hugego

import (
	"errors"
	"fmt"
)

var (
	// ErrIDMapNotBuilt is returned when an import surface that needs mapped
	// node ids is requested before BuildIDMap has completed.
	ErrIDMapNotBuilt = errors.New("id map not built")

	// ErrAlreadyBuilt is returned when a build phase is started twice.
	ErrAlreadyBuilt = errors.New("already built")
)

// ErrBuildFailed indicates that a phase of the import pipeline failed.
//
// The original underlying error can be accessed via errors.Unwrap; in
// particular, errors.Is(err, resource.ErrMemoryLimitExceeded) reports whether
// the failure was a budget rejection.
type ErrBuildFailed struct {
	Phase string
	cause error
}

func (e *ErrBuildFailed) Error() string {
	return fmt.Sprintf("build failed in phase %q: %v", e.Phase, e.cause)
}

func (e *ErrBuildFailed) Unwrap() error { return e.cause }

func buildError(phase string, err error) error {
	if err == nil {
		return nil
	}
	return &ErrBuildFailed{Phase: phase, cause: err}
}

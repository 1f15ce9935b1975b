package service

import (
	"errors"
	"fmt"
)

// Sentinels naming the stage of a run that failed. Use errors.Is against them.
var (
	ErrBoundaryFetch = errors.New("boundary fetch failed")
	ErrDockRead      = errors.New("dock read failed")
	ErrMatch         = errors.New("dock matching failed")
	ErrDockWrite     = errors.New("dock write failed")
	ErrPersist       = errors.New("dock persistence failed")
)

// StageError labels the cause of a failed run with its stage.
type StageError struct {
	Stage error // Stage is one of the Err* sentinels of this package.
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%v: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.Stage, e.Err}
}

func stageError(stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

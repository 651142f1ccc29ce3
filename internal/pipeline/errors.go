package pipeline

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyDataset is returned when a stage has no rows to work with.
	ErrEmptyDataset = errors.New("empty dataset")
	// ErrFileNotFound is returned when a stage's local input file is missing.
	ErrFileNotFound = errors.New("file not found")
)

// Stage names a pipeline step.
type Stage string

const (
	StageFetch  Stage = "fetch"
	StageClean  Stage = "clean"
	StageUpload Stage = "upload"
	StageLoad   Stage = "load"
)

// StageError is the single failure a run reports: the stage that stopped it,
// a description, and the underlying cause.
type StageError struct {
	Stage   Stage
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.Message, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func stageErr(stage Stage, msg string, err error) *StageError {
	return &StageError{Stage: stage, Message: msg, Err: err}
}

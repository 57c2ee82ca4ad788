package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadNotFound is returned when the staged payload is absent (expired or never written)
	ErrPayloadNotFound = errors.New("staged payload not found")

	// ErrInvalidPayload is returned when a batch or one of its nested fields is malformed
	ErrInvalidPayload = errors.New("invalid payload")

	// ErrUnknownJobKind is returned for a kind outside the closed set
	ErrUnknownJobKind = errors.New("unknown job kind")

	// ErrCacheWrite is returned when a batch cannot be staged at acceptance time
	ErrCacheWrite = errors.New("failed to stage batch")

	// ErrUnauthorized is returned when a request token does not resolve to an active user
	ErrUnauthorized = errors.New("unauthorized")
)

// Stage names the step of job processing that failed
type Stage string

const (
	StageFetch   Stage = "fetch"
	StageConvert Stage = "convert"
	StageStore   Stage = "store"
	StageCleanup Stage = "cleanup"
)

// ProcessingError is a failure that drops a job
type ProcessingError struct {
	JobID string
	Kind  JobKind
	Stage Stage
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("job %s (%s) failed at %s: %v", e.JobID, e.Kind, e.Stage, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// NewProcessingError wraps err with job context
func NewProcessingError(job JobRecord, stage Stage, err error) error {
	return &ProcessingError{JobID: job.ID, Kind: job.Kind, Stage: stage, Err: err}
}

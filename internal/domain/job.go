package domain

import "time"

// JobKind is the closed set of batch types accepted by the service
type JobKind string

const (
	JobKindOrder       JobKind = "Order"
	JobKindOrderEffect JobKind = "OrderEffect"
	JobKindSession     JobKind = "Session"
	JobKindRuneHistory JobKind = "RuneHistory"
)

// JobKinds lists every supported kind
var JobKinds = []JobKind{JobKindOrder, JobKindOrderEffect, JobKindSession, JobKindRuneHistory}

// Valid reports whether k is one of the known kinds
func (k JobKind) Valid() bool {
	switch k {
	case JobKindOrder, JobKindOrderEffect, JobKindSession, JobKindRuneHistory:
		return true
	}
	return false
}

// JobState is the lifecycle of a single job
type JobState string

// Committed and Dropped are terminal
const (
	JobStateEnqueued   JobState = "ENQUEUED"
	JobStateDequeued   JobState = "DEQUEUED"
	JobStateProcessing JobState = "PROCESSING"
	JobStateCommitted  JobState = "COMMITTED"
	JobStateDropped    JobState = "DROPPED"
)

// Terminal reports whether no further transition is possible
func (s JobState) Terminal() bool {
	return s == JobStateCommitted || s == JobStateDropped
}

// JobRecord describes one accepted batch. It only lives in the in-memory queue.
type JobRecord struct {
	ID         string    `json:"id"` // tracking id, also the staging cache key
	Kind       JobKind   `json:"kind"`
	UserID     int64     `json:"user_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

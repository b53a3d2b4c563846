package manager

import (
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"flamed/internal/llm"
	"flamed/pkg/types"
)

// State represents lifecycle state of the manager/instances.
type State string

const (
	StateReady    State = "ready"
	StateLoading  State = "loading"
	StateError    State = "error"
	StateDraining State = "draining"
)

// Instance represents a loaded model (one per model id).
type Instance struct {
	ID       string
	State    State
	LastUsed time.Time
	Model    types.Model
	Err      string

	gen *llm.TextGeneration
	// Queueing primitives: queueCh holds a slot for every admitted request
	// (waiting or running); sem bounds the running ones.
	queueCh  chan struct{}
	sem      *semaphore.Weighted
	inflight atomic.Int32
	served   atomic.Uint64
}

package manager

import (
	"context"
	"time"
)

// beginGeneration reserves a queue slot and then one of the instance's
// generation slots. Returns a release func to be deferred.
func (m *Manager) beginGeneration(ctx context.Context, modelID string) (func(), error) {
	m.mu.RLock()
	inst := m.instances[modelID]
	var state State
	if inst != nil {
		state = inst.State
	}
	m.mu.RUnlock()
	if inst == nil {
		return func() {}, modelNotFoundError{id: modelID}
	}
	if state == StateDraining {
		return func() {}, tooBusyError{modelID: modelID, reason: "draining"}
	}

	// Try to reserve a queue slot with timeout
	timer := time.NewTimer(m.maxWait)
	defer timer.Stop()
	select {
	case inst.queueCh <- struct{}{}:
		// reserved queue slot
	case <-ctx.Done():
		return func() {}, ctx.Err()
	case <-timer.C:
		return func() {}, tooBusyError{modelID: modelID, reason: "queue_full"}
	}

	// Wait for a generation slot, again bounded by maxWait
	waitCtx, cancel := context.WithTimeout(ctx, m.maxWait)
	defer cancel()
	if err := inst.sem.Acquire(waitCtx, 1); err != nil {
		<-inst.queueCh
		if ctx.Err() != nil {
			return func() {}, ctx.Err()
		}
		return func() {}, tooBusyError{modelID: modelID, reason: "wait_timeout"}
	}
	inst.inflight.Add(1)
	m.mu.Lock()
	inst.LastUsed = time.Now()
	m.mu.Unlock()
	return func() {
		inst.inflight.Add(-1)
		inst.served.Add(1)
		inst.sem.Release(1)
		<-inst.queueCh
	}, nil
}

package manager

import (
	"sort"
	"time"

	"flamed/pkg/types"
)

// Status builds a detailed status response for /status.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	now := time.Now()
	resp := types.StatusResponse{
		State:          string(m.state),
		DefaultModel:   m.defaultModel,
		LastError:      m.err,
		UptimeSeconds:  int64(now.Sub(m.startTime).Seconds()),
		ServerTimeUnix: now.Unix(),
		LoadsTotal:     m.loadsTotal,
	}
	resp.Instances = make([]types.InstanceStatus, 0, len(m.instances))
	for _, inst := range m.instances {
		inflight := int(inst.inflight.Load())
		resp.Instances = append(resp.Instances, types.InstanceStatus{
			ModelID:       inst.ID,
			State:         string(inst.State),
			LastUsed:      inst.LastUsed.Unix(),
			QueueLen:      max(len(inst.queueCh)-inflight, 0),
			Inflight:      inflight,
			MaxQueueDepth: cap(inst.queueCh),
			Served:        inst.served.Load(),
		})
	}
	sort.Slice(resp.Instances, func(i, j int) bool { return resp.Instances[i].ModelID < resp.Instances[j].ModelID })
	return resp
}

// Info describes modelID, or the default model when modelID is empty, in the
// shape of the text-generation-inference /info route.
func (m *Manager) Info(modelID string) (types.Info, error) {
	modelID, err := m.resolveModel(modelID)
	if err != nil {
		return types.Info{}, err
	}
	if _, ok := m.getModelByID(modelID); !ok {
		return types.Info{}, ErrModelNotFound(modelID)
	}
	tag := "text-generation"
	return types.Info{
		ModelID:               modelID,
		ModelPipelineTag:      &tag,
		ModelDType:            "float32",
		ModelDeviceType:       "cpu",
		MaxConcurrentRequests: m.maxConcurrent,
		MaxBestOf:             m.limits.MaxBestOf,
		MaxStopSequences:      m.limits.MaxStopSequences,
		MaxInputLength:        m.limits.MaxInputLength,
		MaxTotalTokens:        m.limits.MaxTotalTokens,
		WaitingServedRatio:    1.2,
		MaxBatchTotalTokens:   m.limits.MaxTotalTokens,
		MaxWaitingTokens:      m.maxQueueDepth,
		ValidationWorkers:     1,
		Version:               m.version,
	}, nil
}

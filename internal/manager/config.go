package manager

import (
	"time"

	"github.com/rs/zerolog"

	"flamed/internal/llm"
	"flamed/internal/llm/backend"
	"flamed/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultMaxConcurrent = 4
	defaultDrainTimeout  = 5 * time.Second
)

// LoaderFunc builds the model and tokenizer of a descriptor.
type LoaderFunc func(types.Model) (*backend.Loaded, error)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry     []types.Model
	DefaultModel string
	// Admission: queued requests per instance, concurrent generations per
	// instance, and the longest a request waits for either.
	MaxQueueDepth int
	MaxConcurrent int
	MaxWait       time.Duration
	DrainTimeout  time.Duration
	// Request limits; the zero value selects llm.DefaultLimits.
	Limits llm.Limits
	// Version reported by Info.
	Version string

	Logger    *zerolog.Logger
	Publisher EventPublisher
	// Loader defaults to backend.Load.
	Loader LoaderFunc
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		state:        StateLoading,
		registry:     cfg.Registry,
		defaultModel: cfg.DefaultModel,
		instances:    make(map[string]*Instance),
		limits:       cfg.Limits,
		version:      cfg.Version,
		publisher:    cfg.Publisher,
		loader:       cfg.Loader,
		log:          zerolog.Nop(),
		startTime:    time.Now(),
	}
	// Apply defaults if unset
	if cfg.MaxQueueDepth <= 0 {
		m.maxQueueDepth = defaultMaxQueueDepth
	} else {
		m.maxQueueDepth = cfg.MaxQueueDepth
	}
	if cfg.MaxConcurrent <= 0 {
		m.maxConcurrent = defaultMaxConcurrent
	} else {
		m.maxConcurrent = cfg.MaxConcurrent
	}
	if cfg.MaxWait <= 0 {
		m.maxWait = defaultMaxWait
	} else {
		m.maxWait = cfg.MaxWait
	}
	if cfg.DrainTimeout <= 0 {
		m.drainTimeout = defaultDrainTimeout
	} else {
		m.drainTimeout = cfg.DrainTimeout
	}
	if m.limits == (llm.Limits{}) {
		m.limits = llm.DefaultLimits()
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Logger()
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if m.loader == nil {
		m.loader = backend.Load
	}
	return m
}

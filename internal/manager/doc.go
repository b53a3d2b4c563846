// Package manager provides lifecycle, admission, and generation coordination for
// model instances. It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: internal state types (State, Instance).
//   - errors.go: error types and helpers (IsTooBusy, IsModelNotFound, IsDependencyUnavailable).
//   - admission.go: per-instance queueing and in-flight generation admission.
//   - ensure.go: EnsureInstance lifecycle; builds the model backend once per instance.
//   - generate.go: Generate/GenerateStream entry points delegating to the llm pipeline.
//   - metrics.go: Prometheus generation metrics.
//   - events.go, eventpub_memory.go: lifecycle events.
//   - status.go: Status and Info reporting.
//   - unload.go: draining and removal of instances.
//   - ops.go: background preloading.
//
// External packages should treat this package as the orchestration layer and use
// public methods only (e.g., New/NewWithConfig, Ready, ListModels, Status, Generate).
// Internal types are subject to change.
package manager

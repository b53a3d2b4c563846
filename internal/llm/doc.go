// Package llm implements the text generation pipeline behind the TGI routes.
// It is structured into small files by concern:
//
//   - capability.go: the Model and Tokenizer capabilities consumed by the pipeline.
//   - errors.go: error taxonomy (validation, model, invalid state, cancellation).
//   - parameter.go: request parameter validation and normalization.
//   - sampler.go: greedy and stochastic token selection from logits.
//   - token_generator.go: drives one sequence at the token-id level.
//   - text_generator.go: incremental decoding and stop-sequence matching.
//   - text_generation.go: request orchestration, best_of fan-out and reporting.
//
// Concrete capabilities live in the backend subpackage and are selected by the
// manager from a model descriptor.
package llm

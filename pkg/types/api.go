package types

// GenerateParameters holds the sampling and reporting options of a request.
// Pointer fields distinguish "unset" from an explicit zero.
type GenerateParameters struct {
	// Number of independent sequences to sample; the best one is reported.
	// example: 1
	BestOf *int `json:"best_of,omitempty" example:"1"`
	// Echo the prompt tokens with their log-probabilities.
	DecoderInputDetails bool `json:"decoder_input_details"`
	// Return generation details (finish reason, tokens, seed).
	Details bool `json:"details"`
	// Sample instead of greedy decoding.
	DoSample bool `json:"do_sample"`
	// Maximum number of new tokens to generate.
	// example: 20
	MaxNewTokens *int `json:"max_new_tokens,omitempty" example:"20"`
	// Repetition penalty; 1.0 disables it.
	// example: 1.03
	RepetitionPenalty *float32 `json:"repetition_penalty,omitempty" example:"1.03"`
	// Number of most recent generated tokens the repetition penalty looks at; 0 = all.
	// example: 64
	RepeatLastN *int `json:"repeat_last_n,omitempty" example:"64"`
	// Prepend the prompt to the generated text and keep a matched stop sequence.
	// example: false
	ReturnFullText *bool `json:"return_full_text,omitempty" example:"false"`
	// Random seed for reproducible sampling.
	// example: 299792458
	Seed *uint64 `json:"seed,omitempty" example:"299792458"`
	// Stop generating when any of these strings appears in the output.
	// example: ["photographer"]
	Stop []string `json:"stop,omitempty"`
	// Sampling temperature.
	// example: 0.5
	Temperature *float32 `json:"temperature,omitempty" example:"0.5"`
	// Keep only the k most likely tokens.
	// example: 10
	TopK *int `json:"top_k,omitempty" example:"10"`
	// Number of alternative tokens to report per step (accepted, not reported).
	// example: 5
	TopNTokens *int `json:"top_n_tokens,omitempty" example:"5"`
	// Nucleus sampling threshold.
	// example: 0.95
	TopP *float32 `json:"top_p,omitempty" example:"0.95"`
	// Keep only the last N prompt tokens.
	Truncate *int `json:"truncate,omitempty"`
	// Typical decoding mass.
	// example: 0.95
	TypicalP *float32 `json:"typical_p,omitempty" example:"0.95"`
	// Bias sampling towards a pseudo-random green list of tokens.
	Watermark bool `json:"watermark"`
}

// GenerateRequest is the body of POST /generate and POST /generate_stream.
type GenerateRequest struct {
	// example: My name is Olivier and I
	Inputs     string              `json:"inputs" example:"My name is Olivier and I"`
	Parameters *GenerateParameters `json:"parameters,omitempty"`
}

// CompatGenerateRequest is the body of POST / and POST /model/{model}/.
type CompatGenerateRequest struct {
	// example: My name is Olivier and I
	Inputs     string              `json:"inputs" example:"My name is Olivier and I"`
	Parameters *GenerateParameters `json:"parameters,omitempty"`
	// Stream tokens as server-sent events.
	Stream bool `json:"stream"`
}

// Token is one generated token.
type Token struct {
	// example: 0
	ID int `json:"id" example:"0"`
	// example: test
	Text string `json:"text" example:"test"`
	// example: -0.34
	Logprob float32 `json:"logprob" example:"-0.34"`
	// example: false
	Special bool `json:"special" example:"false"`
}

// PrefillToken is one prompt token echoed back with decoder_input_details.
// The first prompt token has no log-probability.
type PrefillToken struct {
	ID      int      `json:"id"`
	Text    string   `json:"text"`
	Logprob *float32 `json:"logprob"`
}

// BestOfSequence summarizes a candidate that was not chosen as the response body.
type BestOfSequence struct {
	GeneratedText   string         `json:"generated_text"`
	FinishReason    FinishReason   `json:"finish_reason"`
	GeneratedTokens int            `json:"generated_tokens"`
	Seed            *uint64        `json:"seed,omitempty"`
	Prefill         []PrefillToken `json:"prefill,omitempty"`
	Tokens          []Token        `json:"tokens,omitempty"`
}

// Details accompanies a non-streaming response when details were requested.
type Details struct {
	FinishReason    FinishReason     `json:"finish_reason"`
	GeneratedTokens int              `json:"generated_tokens"`
	Seed            *uint64          `json:"seed,omitempty"`
	Prefill         []PrefillToken   `json:"prefill,omitempty"`
	Tokens          []Token          `json:"tokens,omitempty"`
	BestOfSequences []BestOfSequence `json:"best_of_sequences,omitempty"`
}

// GenerateResponse is returned by POST /generate.
type GenerateResponse struct {
	// example: test
	GeneratedText string   `json:"generated_text" example:"test"`
	Details       *Details `json:"details,omitempty"`
}

// StreamDetails accompanies the final event of a stream.
type StreamDetails struct {
	FinishReason    FinishReason     `json:"finish_reason"`
	GeneratedTokens int              `json:"generated_tokens"`
	Seed            *uint64          `json:"seed,omitempty"`
	BestOfSequences []BestOfSequence `json:"best_of_sequences,omitempty"`
}

// StreamResponse is one server-sent event of POST /generate_stream.
// GeneratedText and Details are only set on the final event.
type StreamResponse struct {
	Token         Token          `json:"token"`
	GeneratedText *string        `json:"generated_text,omitempty"`
	Details       *StreamDetails `json:"details,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Input validation error
	Error string `json:"error" example:"Input validation error"`
	// Error kind: validation, generation, overloaded, not_found, unavailable, invalid_state,
	// timeout, bad_request, healthcheck, internal.
	// example: validation
	ErrorType string `json:"error_type" example:"validation"`
}

// Info describes the served model and the server limits (GET /info).
type Info struct {
	ModelID               string  `json:"model_id" example:"tiny-bigram"`
	ModelSHA              *string `json:"model_sha,omitempty"`
	ModelDType            string  `json:"model_dtype" example:"float32"`
	ModelDeviceType       string  `json:"model_device_type" example:"cpu"`
	ModelPipelineTag      *string `json:"model_pipeline_tag,omitempty"`
	MaxConcurrentRequests int     `json:"max_concurrent_requests" example:"4"`
	MaxBestOf             int     `json:"max_best_of" example:"4"`
	MaxStopSequences      int     `json:"max_stop_sequences" example:"4"`
	MaxInputLength        int     `json:"max_input_length" example:"1024"`
	MaxTotalTokens        int     `json:"max_total_tokens" example:"2048"`
	WaitingServedRatio    float32 `json:"waiting_served_ratio" example:"1.2"`
	MaxBatchTotalTokens   int     `json:"max_batch_total_tokens" example:"2048"`
	MaxWaitingTokens      int     `json:"max_waiting_tokens" example:"32"`
	ValidationWorkers     int     `json:"validation_workers" example:"2"`
	Version               string  `json:"version" example:"0.1.0"`
	SHA                   *string `json:"sha,omitempty"`
	DockerLabel           *string `json:"docker_label,omitempty"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	Models []Model `json:"models"`
}

// InstanceStatus summarizes a loaded model instance for /status.
type InstanceStatus struct {
	// example: tiny-bigram
	ModelID string `json:"model_id" example:"tiny-bigram"`
	// example: ready
	State string `json:"state" example:"ready"`
	// Last time this instance served a request (unix seconds).
	LastUsed int64 `json:"last_used_unix" example:"1700000000"`
	// Requests waiting for a generation slot.
	QueueLen int `json:"queue_len" example:"0"`
	// Generations currently running.
	Inflight int `json:"inflight" example:"1"`
	// Maximum queued requests before backpressure.
	MaxQueueDepth int `json:"max_queue_depth" example:"32"`
	// Total generation requests served by the instance.
	Served uint64 `json:"served" example:"12"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	Instances      []InstanceStatus `json:"instances"`
	State          string           `json:"state" example:"ready"`
	DefaultModel   string           `json:"default_model,omitempty" example:"tiny-bigram"`
	LastError      string           `json:"last_error,omitempty"`
	UptimeSeconds  int64            `json:"uptime_seconds" example:"3600"`
	ServerTimeUnix int64            `json:"server_time_unix" example:"1700000000"`
	LoadsTotal     uint64           `json:"loads_total" example:"2"`
}

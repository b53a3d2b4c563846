package llm

import (
	"fmt"

	"flamed/pkg/types"
)

// Parameter defaults applied when a request leaves a field unset.
const (
	DefaultMaxNewTokens      = 50
	DefaultTemperature       = 1.0
	DefaultRepetitionPenalty = 1.0
	DefaultRepeatLastN       = 64
	DefaultTopP              = 1.0
	DefaultTypicalP          = 1.0

	// MaxTopNTokens bounds top_n_tokens.
	MaxTopNTokens = 5
)

// Limits are the server-side bounds a request is validated against.
// Zero disables the corresponding bound.
type Limits struct {
	MaxBestOf        int
	MaxStopSequences int
	MaxInputLength   int
	MaxTotalTokens   int
}

// DefaultLimits mirror the TGI launcher defaults.
func DefaultLimits() Limits {
	return Limits{
		MaxBestOf:        2,
		MaxStopSequences: 4,
		MaxInputLength:   1024,
		MaxTotalTokens:   2048,
	}
}

// GenerateParameter is the validated, normalized form of types.GenerateParameters.
// TopK 0, TopP 1, TypicalP 1 and RepetitionPenalty 1 mean the filter is off.
type GenerateParameter struct {
	BestOf              int
	MaxNewTokens        int
	DoSample            bool
	Temperature         float32
	TopK                int
	TopP                float32
	TypicalP            float32
	RepetitionPenalty   float32
	RepeatLastN         int
	Watermark           bool
	Seed                uint64
	SeedSet             bool
	Stop                []string
	ReturnFullText      bool
	Details             bool
	DecoderInputDetails bool
	Truncate            int
	TopNTokens          int
}

// NormalizeParameters validates p against lim and fills in defaults. Every
// violated constraint is reported in a single *ValidationError. A nil p yields
// the defaults.
func NormalizeParameters(p *types.GenerateParameters, lim Limits) (GenerateParameter, error) {
	if p == nil {
		p = &types.GenerateParameters{}
	}
	out := GenerateParameter{
		BestOf:              1,
		MaxNewTokens:        DefaultMaxNewTokens,
		DoSample:            p.DoSample,
		Temperature:         DefaultTemperature,
		TopP:                DefaultTopP,
		TypicalP:            DefaultTypicalP,
		RepetitionPenalty:   DefaultRepetitionPenalty,
		RepeatLastN:         DefaultRepeatLastN,
		Watermark:           p.Watermark,
		Stop:                p.Stop,
		Details:             p.Details,
		DecoderInputDetails: p.DecoderInputDetails,
	}
	var v []string

	if p.Temperature != nil {
		out.Temperature = *p.Temperature
		out.DoSample = true
		if *p.Temperature <= 0 {
			v = append(v, "`temperature` must be strictly positive")
		}
	}
	if p.RepetitionPenalty != nil {
		out.RepetitionPenalty = *p.RepetitionPenalty
		if *p.RepetitionPenalty <= 0 {
			v = append(v, "`repetition_penalty` must be strictly positive")
		}
	}
	if p.RepeatLastN != nil {
		out.RepeatLastN = *p.RepeatLastN
		if *p.RepeatLastN < 0 {
			v = append(v, "`repeat_last_n` must be >= 0")
		}
	}
	if p.TopK != nil {
		out.TopK = *p.TopK
		out.DoSample = true
		if *p.TopK <= 0 {
			v = append(v, "`top_k` must be strictly positive")
		}
	}
	if p.TopP != nil {
		out.TopP = *p.TopP
		out.DoSample = true
		if *p.TopP < 0 || *p.TopP > 1 {
			v = append(v, "`top_p` must be >= 0.0 and <= 1.0")
		}
	}
	if p.TypicalP != nil {
		out.TypicalP = *p.TypicalP
		out.DoSample = true
		if *p.TypicalP <= 0 || *p.TypicalP > 1 {
			v = append(v, "`typical_p` must be > 0.0 and <= 1.0")
		}
	}
	if p.MaxNewTokens != nil {
		out.MaxNewTokens = *p.MaxNewTokens
		if *p.MaxNewTokens <= 0 {
			v = append(v, "`max_new_tokens` must be strictly positive")
		}
	}
	if p.TopNTokens != nil {
		out.TopNTokens = *p.TopNTokens
		if *p.TopNTokens < 0 || *p.TopNTokens > MaxTopNTokens {
			v = append(v, fmt.Sprintf("`top_n_tokens` must be >= 0 and <= %d", MaxTopNTokens))
		}
	}
	if p.Truncate != nil {
		out.Truncate = *p.Truncate
		if *p.Truncate <= 0 || (lim.MaxInputLength > 0 && *p.Truncate > lim.MaxInputLength) {
			v = append(v, fmt.Sprintf("`truncate` must be strictly positive and less than %d. Given: %d", lim.MaxInputLength, *p.Truncate))
		}
	}
	if p.ReturnFullText != nil {
		out.ReturnFullText = *p.ReturnFullText
	}
	if p.Seed != nil {
		out.Seed = *p.Seed
		out.SeedSet = true
	}

	if p.BestOf != nil {
		out.BestOf = *p.BestOf
		switch {
		case *p.BestOf <= 0:
			v = append(v, "`best_of` must be strictly positive")
		case lim.MaxBestOf > 0 && *p.BestOf > lim.MaxBestOf:
			v = append(v, fmt.Sprintf("`best_of` must be <= %d. Given: %d", lim.MaxBestOf, *p.BestOf))
		case *p.BestOf > 1 && !out.DoSample:
			v = append(v, "you must use sampling when `best_of` is > 1")
		}
	}

	if lim.MaxStopSequences > 0 && len(p.Stop) > lim.MaxStopSequences {
		v = append(v, fmt.Sprintf("`stop` supports up to %d stop sequences. Given: %d", lim.MaxStopSequences, len(p.Stop)))
	}
	for _, s := range p.Stop {
		if s == "" {
			v = append(v, "`stop` sequences cannot be empty")
			break
		}
	}

	if len(v) > 0 {
		return out, &ValidationError{Violations: v}
	}
	return out, nil
}

// checkPrompt validates the tokenized prompt against lim, appending to v.
func checkPrompt(v []string, inputs string, promptLen int, param GenerateParameter, lim Limits) []string {
	if inputs == "" || promptLen == 0 {
		return append(v, "`inputs` cannot be empty")
	}
	if lim.MaxInputLength > 0 && promptLen > lim.MaxInputLength {
		v = append(v, fmt.Sprintf("`inputs` must have less than %d tokens. Given: %d", lim.MaxInputLength, promptLen))
	}
	if lim.MaxTotalTokens > 0 && param.MaxNewTokens > 0 && promptLen+param.MaxNewTokens > lim.MaxTotalTokens {
		v = append(v, fmt.Sprintf("`inputs` tokens + `max_new_tokens` must be <= %d. Given: %d `inputs` tokens and %d `max_new_tokens`",
			lim.MaxTotalTokens, promptLen, param.MaxNewTokens))
	}
	return v
}

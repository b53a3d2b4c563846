package llm

import (
	"math"
	"math/rand/v2"
	"sort"
)

// Watermark constants of the TGI green-list scheme.
const (
	watermarkGamma   = 0.5
	watermarkDelta   = 2.0
	watermarkHashKey = 15485863
)

// Sampler turns logits into a token id and its log-probability.
// A Sampler belongs to one candidate and is not safe for concurrent use.
type Sampler struct {
	param GenerateParameter
	seed  uint64
	rng   *rand.Rand
}

// NewSampler creates the sampler of candidate index. Candidates of a seeded
// request draw from seed+index; an unseeded request gets a fresh random seed.
func NewSampler(param GenerateParameter, index int) *Sampler {
	seed := rand.Uint64()
	if param.SeedSet {
		seed = param.Seed + uint64(index)
	}
	return &Sampler{
		param: param,
		seed:  seed,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Seed returns the seed the sampler draws from.
func (s *Sampler) Seed() uint64 { return s.seed }

// Sample picks the next token. history is the full context seen by the model
// (prompt followed by the tokens generated so far).
//
// The pipeline is:
//  1. watermark green-list bias (if enabled)
//  2. greedy: argmax, lowest id wins ties
//  3. repetition penalty over the last RepeatLastN history tokens
//  4. temperature, top-k, top-p, typical-p
//  5. renormalize and draw
func (s *Sampler) Sample(logits []float32, history []int) (int, float32) {
	scores := make([]float64, len(logits))
	for i, v := range logits {
		scores[i] = float64(v)
	}

	if s.param.Watermark && len(history) > 0 {
		applyWatermark(scores, history[len(history)-1])
	}

	if !s.param.DoSample {
		id := argmax(scores)
		return id, float32(logSoftmax(scores)[id])
	}

	if s.param.RepetitionPenalty != 1 {
		applyRepetitionPenalty(scores, history, s.param.RepetitionPenalty, s.param.RepeatLastN)
	}
	if s.param.Temperature != 1 {
		t := float64(s.param.Temperature)
		for i := range scores {
			scores[i] /= t
		}
	}
	if s.param.TopK > 0 && s.param.TopK < len(scores) {
		topKFilter(scores, s.param.TopK)
	}
	if s.param.TopP < 1 {
		topPFilter(scores, float64(s.param.TopP))
	}
	if s.param.TypicalP < 1 {
		typicalFilter(scores, float64(s.param.TypicalP))
	}

	probs := softmax(scores)
	id := s.multinomial(probs)
	return id, float32(math.Log(probs[id]))
}

func argmax(scores []float64) int {
	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i] > scores[best] {
			best = i
		}
	}
	return best
}

// applyRepetitionPenalty penalizes every distinct token of the window: positive
// scores are divided by the penalty, negative ones multiplied.
func applyRepetitionPenalty(scores []float64, history []int, penalty float32, window int) {
	recent := history
	if window > 0 && len(history) > window {
		recent = history[len(history)-window:]
	}
	p := float64(penalty)
	seen := make(map[int]struct{}, len(recent))
	for _, tok := range recent {
		if tok < 0 || tok >= len(scores) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		if scores[tok] > 0 {
			scores[tok] /= p
		} else {
			scores[tok] *= p
		}
	}
}

// rankByScore returns token ids ordered by descending score, lowest id first on ties.
func rankByScore(scores []float64) []int {
	idx := make([]int, len(scores))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })
	return idx
}

func maskExcept(scores []float64, keep []int) {
	kept := make([]bool, len(scores))
	for _, id := range keep {
		kept[id] = true
	}
	for i := range scores {
		if !kept[i] {
			scores[i] = math.Inf(-1)
		}
	}
}

func topKFilter(scores []float64, k int) {
	maskExcept(scores, rankByScore(scores)[:k])
}

// topPFilter keeps the smallest nucleus whose cumulative probability reaches p.
func topPFilter(scores []float64, p float64) {
	probs := softmax(scores)
	ranked := rankByScore(scores)
	n, cum := 0, 0.0
	for n < len(ranked) {
		cum += probs[ranked[n]]
		n++
		if cum >= p {
			break
		}
	}
	maskExcept(scores, ranked[:n])
}

// typicalFilter keeps the tokens whose information content is closest to the
// entropy of the distribution until their mass reaches mass.
func typicalFilter(scores []float64, mass float64) {
	probs := softmax(scores)
	entropy := 0.0
	for _, p := range probs {
		if p > 0 {
			entropy -= p * math.Log(p)
		}
	}
	ids := make([]int, 0, len(probs))
	shift := make([]float64, len(probs))
	for i, p := range probs {
		if p == 0 {
			continue
		}
		shift[i] = math.Abs(-math.Log(p) - entropy)
		ids = append(ids, i)
	}
	sort.SliceStable(ids, func(a, b int) bool { return shift[ids[a]] < shift[ids[b]] })
	n, cum := 0, 0.0
	for n < len(ids) {
		cum += probs[ids[n]]
		n++
		if cum >= mass {
			break
		}
	}
	maskExcept(scores, ids[:n])
}

// applyWatermark adds delta to a green list derived from the previous token.
func applyWatermark(scores []float64, prev int) {
	rng := rand.New(rand.NewPCG(uint64(watermarkHashKey)*uint64(prev), 0))
	green := rng.Perm(len(scores))[:int(float64(len(scores))*watermarkGamma)]
	for _, id := range green {
		scores[id] += watermarkDelta
	}
}

func (s *Sampler) multinomial(probs []float64) int {
	r := s.rng.Float64()
	cum := 0.0
	last := 0
	for i, p := range probs {
		if p == 0 {
			continue
		}
		cum += p
		last = i
		if r < cum {
			return i
		}
	}
	return last
}

func softmax(scores []float64) []float64 {
	maxVal := math.Inf(-1)
	for _, v := range scores {
		if v > maxVal {
			maxVal = v
		}
	}
	probs := make([]float64, len(scores))
	if math.IsInf(maxVal, -1) {
		return probs
	}
	sum := 0.0
	for i, v := range scores {
		if math.IsInf(v, -1) {
			continue
		}
		probs[i] = math.Exp(v - maxVal)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

func logSoftmax(scores []float64) []float64 {
	maxVal := math.Inf(-1)
	for _, v := range scores {
		if v > maxVal {
			maxVal = v
		}
	}
	sum := 0.0
	for _, v := range scores {
		sum += math.Exp(v - maxVal)
	}
	lse := maxVal + math.Log(sum)
	out := make([]float64, len(scores))
	for i, v := range scores {
		out[i] = v - lse
	}
	return out
}

// tokenLogprob returns the log-softmax of logits at id, or -Inf when id is out of range.
func tokenLogprob(logits []float32, id int) float32 {
	if id < 0 || id >= len(logits) {
		return float32(math.Inf(-1))
	}
	scores := make([]float64, len(logits))
	for i, v := range logits {
		scores[i] = float64(v)
	}
	return float32(logSoftmax(scores)[id])
}

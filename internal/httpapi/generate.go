package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"flamed/pkg/types"
)

// generate godoc
// @Summary      Generate tokens
// @Tags         Text Generation Inference
// @Accept       json
// @Produce      json
// @Param        request  body      types.GenerateRequest  true  "Generation request"
// @Success      200      {object}  types.GenerateResponse
// @Failure      422      {object}  types.ErrorResponse  "Input validation error"
// @Failure      424      {object}  types.ErrorResponse  "Generation error"
// @Failure      429      {object}  types.ErrorResponse  "Model is overloaded"
// @Router       /generate [post]
func (a *api) generate(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a.runGenerate(w, r, "", req)
}

// generateStream godoc
// @Summary      Generate a stream of tokens using Server-Sent Events
// @Tags         Text Generation Inference
// @Accept       json
// @Produce      text/event-stream
// @Param        request  body      types.GenerateRequest  true  "Generation request"
// @Success      200      {object}  types.StreamResponse   "Generated text, one event per token"
// @Failure      422      {object}  types.ErrorResponse    "Input validation error"
// @Failure      424      {object}  types.ErrorResponse    "Generation error"
// @Failure      429      {object}  types.ErrorResponse    "Model is overloaded"
// @Router       /generate_stream [post]
func (a *api) generateStream(w http.ResponseWriter, r *http.Request) {
	var req types.GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	a.runStream(w, r, "", req)
}

// compatGenerate godoc
// @Summary      Generate tokens if `stream == false` or a stream of tokens if `stream == true`
// @Tags         Text Generation Inference
// @Accept       json
// @Produce      json,text/event-stream
// @Param        model    path      string                       false  "Model id; the default model when omitted"
// @Param        request  body      types.CompatGenerateRequest  true   "Generation request"
// @Success      200      {object}  types.GenerateResponse
// @Failure      404      {object}  types.ErrorResponse  "Unknown model"
// @Failure      422      {object}  types.ErrorResponse  "Input validation error"
// @Failure      424      {object}  types.ErrorResponse  "Generation error"
// @Failure      429      {object}  types.ErrorResponse  "Model is overloaded"
// @Router       / [post]
// @Router       /model/{model}/ [post]
func (a *api) compatGenerate(w http.ResponseWriter, r *http.Request) {
	var req types.CompatGenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	model := chi.URLParam(r, "model")
	gr := types.GenerateRequest{Inputs: req.Inputs, Parameters: req.Parameters}
	if req.Stream {
		a.runStream(w, r, model, gr)
		return
	}
	a.runGenerate(w, r, model, gr)
}

func (a *api) runGenerate(w http.ResponseWriter, r *http.Request, model string, req types.GenerateRequest) {
	rl := newRequestLogger(r, model)
	rl.begin()
	// Join server base context with request context so shutdown cancels work too.
	ctx, cancel := generationContext(r)
	defer cancel()

	start := time.Now()
	resp, err := a.svc.Generate(ctx, model, req)
	if err != nil {
		// If the client disconnected there is nobody to answer.
		if clientGone(r) {
			rl.end(499, err)
			return
		}
		rl.end(writeServiceError(w, err), err)
		return
	}
	h := w.Header()
	h.Set("Content-Type", "application/json")
	h.Set("X-Compute-Type", "cpu")
	h.Set("X-Total-Time", strconv.FormatInt(time.Since(start).Milliseconds(), 10))
	if resp.Details != nil {
		h.Set("X-Generated-Tokens", strconv.Itoa(resp.Details.GeneratedTokens))
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		rl.end(http.StatusInternalServerError, err)
		return
	}
	rl.end(http.StatusOK, nil)
}

func (a *api) runStream(w http.ResponseWriter, r *http.Request, model string, req types.GenerateRequest) {
	rl := newRequestLogger(r, model)
	rl.begin()
	ctx, cancel := generationContext(r)
	defer cancel()

	sse := newSSEWriter(w)
	err := a.svc.GenerateStream(ctx, model, req, func(ev types.StreamResponse) error {
		rl.token(ev.Token.ID, ev.Token.Text)
		return sse.send(ev)
	})
	if err == nil {
		rl.end(http.StatusOK, nil)
		return
	}
	if clientGone(r) {
		rl.end(499, err)
		return
	}
	if !sse.started {
		rl.end(writeServiceError(w, err), err)
		return
	}
	status, errType := errorStatus(err)
	_ = sse.sendError(types.ErrorResponse{Error: err.Error(), ErrorType: errType})
	rl.end(status, err)
}

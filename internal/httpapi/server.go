package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"flamed/pkg/types"
)

// Service defines the methods required by the HTTP API layer.
type Service interface {
	ListModels() []types.Model
	Status() types.StatusResponse
	Ready() bool
	Info(modelID string) (types.Info, error)
	Generate(ctx context.Context, modelID string, req types.GenerateRequest) (types.GenerateResponse, error)
	GenerateStream(ctx context.Context, modelID string, req types.GenerateRequest, emit func(types.StreamResponse) error) error
}

type api struct {
	svc Service
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	// Basic middlewares: request id, real ip, recoverer
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if c := corsMiddleware(); c != nil {
		r.Use(c)
	}
	r.Use(MetricsMiddleware)
	// Compression for JSON endpoints; event streams are not in the default type list
	r.Use(middleware.Compress(5))
	// Security headers
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})

	a := &api{svc: svc}
	r.Post("/", a.compatGenerate)
	r.Post("/generate", a.generate)
	r.Post("/generate_stream", a.generateStream)
	r.Post("/model/{model}", a.compatGenerate)
	r.Post("/model/{model}/", a.compatGenerate)
	r.Get("/info", a.info)
	r.Get("/health", a.health)
	r.Get("/models", a.models)
	r.Get("/status", a.status)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if svc.Ready() {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ready"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("loading"))
	})

	// Prometheus metrics endpoint
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	MountSwagger(r)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, swaggerIndex, http.StatusTemporaryRedirect)
	})
	return r
}

// decodeJSON reads a JSON body into v, writing the error response itself.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json", "bad_request")
		return false
	}
	// Limit body size (configurable, default 1MiB)
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		// If exceeded size, MaxBytesReader may cause an error; still return 400 to avoid size leak details
		writeJSONError(w, http.StatusBadRequest, "invalid JSON body", "bad_request")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to encode response", "internal")
	}
}

// models godoc
// @Summary      List model descriptors
// @Tags         Status
// @Produce      json
// @Success      200  {object}  types.ModelsResponse
// @Router       /models [get]
func (a *api) models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, types.ModelsResponse{Models: a.svc.ListModels()})
}

// status godoc
// @Summary      Instance and admission status
// @Tags         Status
// @Produce      json
// @Success      200  {object}  types.StatusResponse
// @Router       /status [get]
func (a *api) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, a.svc.Status())
}

// info godoc
// @Summary      Text Generation Inference endpoint info
// @Tags         Text Generation Inference
// @Produce      json
// @Success      200  {object}  types.Info
// @Failure      404  {object}  types.ErrorResponse
// @Router       /info [get]
func (a *api) info(w http.ResponseWriter, r *http.Request) {
	info, err := a.svc.Info(r.URL.Query().Get("model"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, info)
}

// health godoc
// @Summary      Health check
// @Tags         Text Generation Inference
// @Produce      plain
// @Success      200  {string}  string  "Everything is working fine"
// @Failure      503  {object}  types.ErrorResponse
// @Router       /health [get]
func (a *api) health(w http.ResponseWriter, r *http.Request) {
	if !a.svc.Ready() {
		writeJSONError(w, http.StatusServiceUnavailable, "unhealthy", "healthcheck")
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Everything is working fine"))
}

package httpapi

import (
	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "flamed/internal/httpapi/docs"
)

const swaggerIndex = "/swagger-ui/index.html"

// MountSwagger serves the OpenAPI document and Swagger UI under /swagger-ui/.
func MountSwagger(r chi.Router) {
	r.Get("/swagger-ui/*", httpSwagger.Handler(httpSwagger.URL("/swagger-ui/doc.json")))
}

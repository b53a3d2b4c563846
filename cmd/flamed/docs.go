package main

// General API documentation for swaggo. Run `swag init -g cmd/flamed/docs.go -o internal/httpapi/docs` to regenerate.
//
// @title           flamed API
// @version         1.0
// @description     Text Generation Inference compatible HTTP API for local models.
//
// @contact.name   flamed maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http

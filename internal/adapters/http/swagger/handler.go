// Package swagger serves the embedded OpenAPI description of the API.
package swagger

import (
	"context"
	"net/http"
)

// Register attaches the OpenAPI routes to mux.
//
//	GET /openapi.yaml -> embedded OpenAPI document
//	GET /api-docs     -> landing page linking to it
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("GET /api-docs", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(indexHTML))
	})

	mux.HandleFunc("GET /openapi.yaml", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
		_, _ = w.Write(OpenAPI)
	})
}

const indexHTML = `<!doctype html>
<html lang="pt">
  <head>
    <meta charset="utf-8">
    <title>Barberbook API</title>
  </head>
  <body>
    <h1>Barberbook API</h1>
    <p>The OpenAPI document is served at <a href="/openapi.yaml">/openapi.yaml</a>.</p>
  </body>
</html>`

package http

import (
	"net/http"
)

const swaggerUI = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"/><title>FRED Data API Docs</title>
<link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css"/>
<style>body{margin:0;padding:0}</style>
</head><body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
<script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-standalone-preset.js"></script>
<script>
  window.onload = () => {
    SwaggerUIBundle({
      url: '/swagger.json',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIStandalonePreset],
      layout: 'BaseLayout'
    });
  };
</script>
</body></html>`

type docsHandler struct {
	document map[string]any
}

func (h *docsHandler) Document(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.document)
}

func (h *docsHandler) UI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(swaggerUI))
}

func (h *docsHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/api-docs", http.StatusFound)
}

func NewDocsHandler(serverURL string) *docsHandler {
	return &docsHandler{document: openAPI(serverURL)}
}

func openAPI(serverURL string) map[string]any {
	jsonBody := func(ref string) map[string]any {
		return map[string]any{
			"application/json": map[string]any{
				"schema": map[string]any{"$ref": "#/components/schemas/" + ref},
			},
		}
	}

	errorResponse := func(description string) map[string]any {
		return map[string]any{"description": description, "content": jsonBody("Error")}
	}

	stringParam := func(name, in string, required bool) map[string]any {
		return map[string]any{
			"name":     name,
			"in":       in,
			"required": required,
			"schema":   map[string]any{"type": "string"},
		}
	}

	return map[string]any{
		"openapi": "3.0.0",
		"info": map[string]any{
			"title":       "FRED Data API",
			"version":     "1.0.0",
			"description": "API for chat interactions with AI and retrieval of FRED time-series observations.",
		},
		"servers": []map[string]any{
			{"url": serverURL, "description": "Local server"},
		},
		"paths": map[string]any{
			"/chat": map[string]any{
				"post": map[string]any{
					"summary":     "Chat with AI",
					"requestBody": map[string]any{"required": true, "content": jsonBody("ChatRequest")},
					"responses": map[string]any{
						"200": map[string]any{"description": "AI response", "content": jsonBody("ChatResponse")},
						"400": errorResponse("Bad request"),
						"500": errorResponse("Server error"),
					},
				},
			},
			"/observations": map[string]any{
				"get": map[string]any{
					"summary":    "Get observations",
					"parameters": []map[string]any{stringParam("seriesId", "query", false)},
					"responses": map[string]any{
						"200": map[string]any{"description": "List of observations", "content": jsonBody("ObservationsResponse")},
						"500": errorResponse("Server error"),
					},
				},
			},
			"/search": map[string]any{
				"get": map[string]any{
					"summary": "Semantic search over indexed observations",
					"parameters": []map[string]any{
						stringParam("q", "query", true),
						{"name": "topK", "in": "query", "schema": map[string]any{"type": "integer", "minimum": 1, "maximum": maxSearchTopK}},
					},
					"responses": map[string]any{
						"200": map[string]any{"description": "Ranked matches", "content": jsonBody("SearchResponse")},
						"400": errorResponse("Bad request"),
						"500": errorResponse("Server error"),
					},
				},
			},
			"/analysis/{seriesId}": map[string]any{
				"get": map[string]any{
					"summary": "Regression analysis of a stored series",
					"parameters": []map[string]any{
						stringParam("seriesId", "path", true),
						{"name": "summary", "in": "query", "schema": map[string]any{"type": "boolean"}},
						{"name": "clean", "in": "query", "schema": map[string]any{"type": "boolean"}},
						{"name": "normalize", "in": "query", "schema": map[string]any{"type": "boolean"}},
						{"name": "window", "in": "query", "schema": map[string]any{"type": "integer", "minimum": 1}},
						stringParam("from", "query", false),
						stringParam("to", "query", false),
					},
					"responses": map[string]any{
						"200": map[string]any{"description": "Analysis report", "content": jsonBody("AnalysisReport")},
						"400": errorResponse("Bad request"),
						"404": errorResponse("No data for series"),
						"500": errorResponse("Server error"),
					},
				},
			},
			"/analysis/{seriesId}/chart.png": map[string]any{
				"get": map[string]any{
					"summary": "Chart of a stored series with its linear or logarithmic fit",
					"parameters": []map[string]any{
						stringParam("seriesId", "path", true),
						{"name": "scale", "in": "query", "schema": map[string]any{"type": "string", "enum": []string{"linear", "log"}}},
						{"name": "clean", "in": "query", "schema": map[string]any{"type": "boolean"}},
						{"name": "normalize", "in": "query", "schema": map[string]any{"type": "boolean"}},
						{"name": "window", "in": "query", "schema": map[string]any{"type": "integer", "minimum": 1}},
						stringParam("from", "query", false),
						stringParam("to", "query", false),
					},
					"responses": map[string]any{
						"200": map[string]any{
							"description": "PNG chart",
							"content":     map[string]any{"image/png": map[string]any{"schema": map[string]any{"type": "string", "format": "binary"}}},
						},
						"400": errorResponse("Bad request"),
						"404": errorResponse("No data for series"),
						"500": errorResponse("Server error"),
					},
				},
			},
			"/ingest": map[string]any{
				"post": map[string]any{
					"summary": "Fetch every configured series into the document store",
					"responses": map[string]any{
						"200": map[string]any{"description": "Per-series results", "content": jsonBody("IngestResponse")},
						"500": errorResponse("Server error"),
					},
				},
			},
			"/ingest/{seriesId}": map[string]any{
				"post": map[string]any{
					"summary":    "Fetch one series into the document store",
					"parameters": []map[string]any{stringParam("seriesId", "path", true)},
					"responses": map[string]any{
						"200": map[string]any{"description": "Series result", "content": jsonBody("IngestResponse")},
						"500": errorResponse("Server error"),
					},
				},
			},
			"/upsert": map[string]any{
				"post": map[string]any{
					"summary": "Embed stored observations and upsert them to the vector index",
					"responses": map[string]any{
						"200": map[string]any{"description": "Upserted vector count", "content": jsonBody("UpsertResponse")},
						"500": errorResponse("Server error"),
					},
				},
			},
			"/healthz": map[string]any{
				"get": map[string]any{
					"summary": "Liveness and configured chat providers",
					"responses": map[string]any{
						"200": map[string]any{"description": "Healthy", "content": jsonBody("HealthResponse")},
					},
				},
			},
		},
		"components": map[string]any{
			"schemas": map[string]any{
				"ChatRequest": map[string]any{
					"type":     "object",
					"required": []string{"message"},
					"properties": map[string]any{
						"message": map[string]any{"type": "string"},
						"history": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"role":    map[string]any{"type": "string"},
									"content": map[string]any{"type": "string"},
									"parts": map[string]any{
										"type": "array",
										"items": map[string]any{
											"type":       "object",
											"properties": map[string]any{"text": map[string]any{"type": "string"}},
										},
									},
								},
							},
						},
						"systemInstruction": map[string]any{"type": "string"},
						"provider":          map[string]any{"type": "string", "enum": []string{"google", "anthropic", "openai", "azure"}},
					},
				},
				"ChatResponse": map[string]any{
					"type":       "object",
					"properties": map[string]any{"response": map[string]any{"type": "string"}},
				},
				"ObservationsResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"observations": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
					},
				},
				"SearchResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"matches": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
					},
				},
				"AnalysisReport": map[string]any{"type": "object"},
				"IngestResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"results": map[string]any{"type": "array", "items": map[string]any{"type": "object"}},
					},
				},
				"UpsertResponse": map[string]any{
					"type":       "object",
					"properties": map[string]any{"upserted": map[string]any{"type": "integer"}},
				},
				"HealthResponse": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"status":    map[string]any{"type": "string"},
						"providers": map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					},
				},
				"Error": map[string]any{
					"type":       "object",
					"properties": map[string]any{"error": map[string]any{"type": "string"}},
				},
			},
		},
	}
}

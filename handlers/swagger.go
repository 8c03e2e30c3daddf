package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints for the attachments service.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg gin.IRoutes) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(swaggerJSON))
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>wiki-attachments Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the attachment endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "wiki-attachments", "version": "v0.1.0" },
  "paths": {
    "/files/{attachment_id}/{filename}": {
      "get": {
        "summary": "Serve an attachment file (attachments host) or redirect to it (main site)",
        "parameters": [
          {"name":"attachment_id","in":"path","required":true,"schema":{"type":"integer"}},
          {"name":"filename","in":"path","required":true,"schema":{"type":"string"}}
        ],
        "responses": { "200": { "description": "file content" }, "301": { "description": "canonical file URL" }, "404": { "description": "unknown attachment or no current revision" } }
      }
    },
    "/@api/deki/files/{file_id}/{filename}": {
      "get": {
        "summary": "Redirect a legacy MindTouch file URL",
        "parameters": [{"name":"file_id","in":"path","required":true,"schema":{"type":"integer"}}],
        "responses": { "301": { "description": "canonical file URL" }, "404": { "description": "unknown legacy id" } }
      }
    },
    "/attachments/upload/{locale}/{slug}": {
      "post": {
        "summary": "Upload a new attachment to a document",
        "requestBody": { "content": { "multipart/form-data": { "schema": {"type":"object","required":["title","file"],"properties":{"title":{"type":"string","maxLength":255},"file":{"type":"string","format":"binary"},"description":{"type":"string","maxLength":500},"comment":{"type":"string"}}}}}},
        "responses": { "200": { "description": "form re-rendered with errors" }, "302": { "description": "uploaded; redirect to the document editor, or login challenge" }, "403": { "description": "not allowed to upload" }, "404": { "description": "unknown document" } }
      }
    },
    "/api/attachments/{attachment_id}": {
      "get": { "summary": "Attachment metadata and revision history", "responses": { "200": { "description": "attachment" }, "404": { "description": "not found" } } }
    },
    "/api/documents/{locale}/attachments": {
      "get": {
        "summary": "List a document's attachments",
        "parameters": [{"name":"slug","in":"query","required":true,"schema":{"type":"string"}}],
        "responses": { "200": { "description": "attachments" }, "404": { "description": "unknown document" } }
      }
    },
    "/api/v1/me": {
      "get": { "summary": "Get user info", "responses": { "200": { "description": "user or claims" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`

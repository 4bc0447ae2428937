package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
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
    <title>lovestory — Swagger</title>
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

const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "lovestory", "version": "v0.2.0" },
  "components": { "securitySchemes": { "bearer": { "type": "http", "scheme": "bearer" } } },
  "paths": {
    "/auth/register": {
      "post": { "summary": "Create an owner account", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"},"name":{"type":"string"}}}}}}, "responses": { "201": { "description": "owner created" }, "409": { "description": "email taken" } } }
    },
    "/auth/login": {
      "post": { "summary": "Sign in and unlock a project with its template code", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"},"templateCode":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens and project summary" }, "401": { "description": "wrong password or template code" }, "404": { "description": "no project for this owner" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout, revoke tokens and close the editor", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/editor/content": {
      "get": { "summary": "Read the draft", "security": [{"bearer": []}], "responses": { "200": { "description": "content, mode and dirty flag" } } },
      "patch": { "summary": "Replace named top-level sections of the draft", "security": [{"bearer": []}], "responses": { "200": { "description": "updated draft" }, "400": { "description": "unknown section or bad shape" } } }
    },
    "/api/editor/save": {
      "post": { "summary": "Commit the draft to the project", "security": [{"bearer": []}], "responses": { "200": { "description": "saved" }, "500": { "description": "save failed, draft retained" } } }
    },
    "/api/editor/publish": {
      "post": { "summary": "Publish the share link", "security": [{"bearer": []}], "responses": { "200": { "description": "project summary" } } }
    },
    "/api/editor/project": {
      "get": { "summary": "Project summary and share link", "security": [{"bearer": []}], "responses": { "200": { "description": "project summary" } } }
    },
    "/api/editor/images/{section}": {
      "post": { "summary": "Upload an image into a slot of section", "security": [{"bearer": []}], "responses": { "200": { "description": "image reference and updated draft" }, "413": { "description": "image too large" }, "400": { "description": "unsupported type or bad target" } } }
    },
    "/v/{template}/{slug}": {
      "get": { "summary": "Published page content", "responses": { "200": { "description": "content" }, "404": { "description": "not found" } } }
    },
    "/api/games/memory": { "post": { "summary": "Start a memory-match game", "responses": { "201": { "description": "game id and view" } } } },
    "/api/games/memory/{id}/flip": { "post": { "summary": "Turn a card", "responses": { "200": { "description": "game view" } } } },
    "/api/games/memory/{id}/resolve": { "post": { "summary": "Settle a turned pair", "responses": { "200": { "description": "game view" } } } },
    "/api/games/memory/{id}/reset": { "post": { "summary": "Reshuffle", "responses": { "200": { "description": "game view" } } } },
    "/api/games/hearts": { "post": { "summary": "Start a heart-catch game", "responses": { "201": { "description": "game id and view" } } } },
    "/api/games/hearts/{id}/attempt": { "post": { "summary": "Try to catch the heart", "responses": { "200": { "description": "caught flag and view" } } } },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } },
    "/metrics": { "get": { "summary": "Prometheus metrics", "responses": { "200": { "description": "metrics" } } } }
  }
}`

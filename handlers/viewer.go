package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/internal/editor"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
)

// ViewerHandler serves published pages to anyone holding the share link.
type ViewerHandler struct {
	projectsSvc *projects.Service
}

func NewViewerHandler(p *projects.Service) *ViewerHandler {
	return &ViewerHandler{projectsSvc: p}
}

func (h *ViewerHandler) Register(r gin.IRoutes) {
	r.GET("/v/:template/:slug", h.View)
}

// View returns the saved document of a published project. Missing and
// unpublished projects get the same 404 so slugs cannot be enumerated.
func (h *ViewerHandler) View(c *gin.Context) {
	p, err := h.projectsSvc.Published(c.Request.Context(), c.Param("template"), c.Param("slug"))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.Header("Cache-Control", "public, max-age=60")
	c.JSON(http.StatusOK, gin.H{
		"template": p.TemplateType,
		"slug":     p.Slug,
		"content":  editor.View(c.Request.Context(), p),
	})
}

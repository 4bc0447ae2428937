package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
	"github.com/lovestory/lovestory/backend/go-services/internal/config"
	"github.com/lovestory/lovestory/backend/go-services/internal/content"
	"github.com/lovestory/lovestory/backend/go-services/internal/content/store"
	"github.com/lovestory/lovestory/backend/go-services/internal/editor"
	"github.com/lovestory/lovestory/backend/go-services/internal/imaging"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
	"github.com/lovestory/lovestory/backend/go-services/pkg/middleware"
)

// EditorHandler serves the owner's working copy. Every route expects
// AuthMiddleware to have run.
type EditorHandler struct {
	cfg         *config.Config
	projectsSvc *projects.Service
	editors     *editor.Registry
	images      *imaging.Ingestor
}

func NewEditorHandler(cfg *config.Config, p *projects.Service, e *editor.Registry, i *imaging.Ingestor) *EditorHandler {
	return &EditorHandler{cfg: cfg, projectsSvc: p, editors: e, images: i}
}

func (h *EditorHandler) Register(rg *gin.RouterGroup) {
	e := rg.Group("/editor")
	e.GET("/content", h.GetContent)
	e.PATCH("/content", h.PatchContent)
	e.POST("/save", h.Save)
	e.POST("/publish", h.Publish)
	e.POST("/images/:section", h.UploadImage)
	e.GET("/project", h.GetProject)
}

// workspace resolves the caller's store. A token for another template or a
// project the owner no longer holds gets no editor.
func (h *EditorHandler) workspace(c *gin.Context) (*store.Store, *projects.Project, bool) {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok || claims.ProjectID == "" || claims.TemplateType != h.cfg.Content.TemplateType {
		respondError(c, apperr.ErrAuth)
		return nil, nil, false
	}
	s, p, err := h.editors.Acquire(c.Request.Context(), claims.Subject())
	if err != nil {
		respondError(c, err)
		return nil, nil, false
	}
	return s, p, true
}

func contentResponse(s *store.Store) gin.H {
	return gin.H{"content": s.Read(), "mode": s.Mode().String(), "dirty": s.Dirty()}
}

// GetContent returns the draft.
func (h *EditorHandler) GetContent(c *gin.Context) {
	s, _, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, contentResponse(s))
}

// PatchContent replaces the named top-level sections of the draft.
func (h *EditorHandler) PatchContent(c *gin.Context) {
	s, _, ok := h.workspace(c)
	if !ok {
		return
	}
	var p content.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Update(p); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, contentResponse(s))
}

// Save commits the draft to the project. A failed save keeps the draft so
// the client can retry.
func (h *EditorHandler) Save(c *gin.Context) {
	s, _, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := s.Commit(c.Request.Context()); err != nil {
		c.AbortWithStatusJSON(apperr.Status(err), gin.H{"error": apperr.Message(err), "draftRetained": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "saved", "dirty": s.Dirty()})
}

// Publish makes the share link live. Unsaved draft changes are not
// published.
func (h *EditorHandler) Publish(c *gin.Context) {
	s, p, ok := h.workspace(c)
	if !ok {
		return
	}
	if err := h.projectsSvc.Publish(c.Request.Context(), p.ID); err != nil {
		respondError(c, err)
		return
	}
	p.IsPublished = true
	c.JSON(http.StatusOK, gin.H{"project": projects.SummaryOf(h.cfg.Server.PublicBaseURL, p), "unsavedChanges": s.Dirty()})
}

// UploadImage stores an image and points the addressed slot of section at
// it. Oversized bodies are cut off while parsing, and nothing in the draft
// changes when the image is rejected.
func (h *EditorHandler) UploadImage(c *gin.Context) {
	s, p, ok := h.workspace(c)
	if !ok {
		return
	}
	// the multipart envelope gets some slack over the image ceiling
	limit := h.images.MaxBytes() + 64<<10
	if c.Request.ContentLength > limit {
		respondError(c, imaging.TooLarge(h.images.MaxBytes()))
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	if err := c.Request.ParseMultipartForm(h.images.MaxBytes()); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(c, imaging.TooLarge(h.images.MaxBytes()))
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "multipart form expected"})
		return
	}

	target := content.ImageTarget{Section: c.Param("section"), Key: c.PostForm("key")}
	if raw := c.PostForm("index"); raw != "" {
		i, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, err)
			return
		}
		target.Index = i
	}
	if _, err := content.ImagePatch(s.Read(), target, ""); err != nil {
		respondError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		badRequest(c, err)
		return
	}
	defer f.Close()

	ref, err := h.images.Ingest(c.Request.Context(), p.ID, fieldName(target), f, fh.Size)
	if err != nil {
		respondError(c, err)
		return
	}
	patch, err := content.ImagePatch(s.Read(), target, ref)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := s.Update(patch); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ref": ref, "content": s.Read()})
}

func fieldName(t content.ImageTarget) string {
	switch {
	case t.Key != "":
		return t.Section + "-" + t.Key
	default:
		return t.Section + "-" + strconv.Itoa(t.Index)
	}
}

// GetProject returns the project summary and share link.
func (h *EditorHandler) GetProject(c *gin.Context) {
	s, p, ok := h.workspace(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"project": projects.SummaryOf(h.cfg.Server.PublicBaseURL, p), "dirty": s.Dirty()})
}

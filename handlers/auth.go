package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lovestory/lovestory/backend/go-services/internal/config"
	"github.com/lovestory/lovestory/backend/go-services/internal/editor"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
	"github.com/lovestory/lovestory/backend/go-services/internal/sessions"
	"github.com/lovestory/lovestory/backend/go-services/internal/tokens"
	"github.com/lovestory/lovestory/backend/go-services/internal/users"
	"github.com/lovestory/lovestory/backend/go-services/pkg/logger"
	"github.com/lovestory/lovestory/backend/go-services/pkg/middleware"
)

// RegisterRequest creates an owner account.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name"`
}

// LoginRequest signs an owner in and unlocks one project with its template
// code.
type LoginRequest struct {
	Email        string `json:"email" binding:"required"`
	Password     string `json:"password" binding:"required"`
	TemplateCode string `json:"templateCode" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	usersSvc    *users.Service
	projectsSvc *projects.Service
	sessionsSvc *sessions.Service
	editors     *editor.Registry
}

func NewAuthHandler(cfg *config.Config, u *users.Service, p *projects.Service, s *sessions.Service, e *editor.Registry) *AuthHandler {
	return &AuthHandler{cfg: cfg, usersSvc: u, projectsSvc: p, sessionsSvc: s, editors: e}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/register", h.RegisterOwner)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

func (h *AuthHandler) accessTTL() time.Duration {
	if h.cfg.JWT.AccessTokenTTL > 0 {
		return h.cfg.JWT.AccessTokenTTL
	}
	return 15 * time.Minute
}

func (h *AuthHandler) refreshTTL() time.Duration {
	if h.cfg.JWT.RefreshTokenTTL > 0 {
		return h.cfg.JWT.RefreshTokenTTL
	}
	return 7 * 24 * time.Hour
}

// RegisterOwner creates an owner account. Projects are attached separately.
func (h *AuthHandler) RegisterOwner(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	u, err := h.usersSvc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": u})
}

// Login checks the owner password, resolves the project unlocked by the
// template code and issues tokens bound to that project.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	u, err := h.usersSvc.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := h.projectsSvc.Resolve(ctx, u.Email, h.cfg.Content.TemplateType, req.TemplateCode)
	if err != nil {
		respondError(c, err)
		return
	}
	subj := tokens.Subject{Email: u.Email, ProjectID: p.ID, TemplateType: p.TemplateType}
	rft, err := h.sessionsSvc.CreateSession(ctx, sessions.Binding{Email: u.Email, ProjectID: p.ID, TemplateType: p.TemplateType}, h.refreshTTL())
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, subj, h.accessTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	logger.Infof("login: %s opened project %s", u.Email, p.ID)
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": rft,
		"expiresIn":    int(h.accessTTL().Seconds()),
		"project":      projects.SummaryOf(h.cfg.Server.PublicBaseURL, p),
	})
}

// Refresh accepts a refresh token and returns a new access token for the
// same project, provided the project still belongs to the owner.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()
	sess, err := h.sessionsSvc.ValidateRefresh(ctx, req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	p, err := h.projectsSvc.ResolveByID(ctx, sess.ProjectID, sess.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	subj := tokens.Subject{Email: sess.Email, ProjectID: p.ID, TemplateType: p.TemplateType}
	access, err := tokens.GenerateAccessToken(h.cfg, subj, h.accessTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken": access,
		"expiresIn":   int(h.accessTTL().Seconds()),
		"project":     projects.SummaryOf(h.cfg.Server.PublicBaseURL, p),
	})
}

// Logout invalidates the refresh token, blacklists the presented access
// token for the rest of its lifetime and closes the editor workspace. The
// cached draft survives so the next login resumes it.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	ctx := c.Request.Context()

	projectID := ""
	if at, ok := middleware.BearerToken(c); ok {
		if claims, err := tokens.Parse(h.cfg.JWT.Secret, at); err == nil {
			projectID = claims.ProjectID
			if ttl := time.Until(claims.ExpiresAt.Time); ttl > 0 {
				if err := sessions.BlacklistAccessToken(ctx, at, ttl); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
					return
				}
			}
		}
	}

	if sess, err := h.sessionsSvc.ValidateRefresh(ctx, req.RefreshToken); err == nil && sess != nil && projectID == "" {
		projectID = sess.ProjectID
	}
	if err := h.sessionsSvc.DeleteRefresh(ctx, req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	if projectID != "" && h.editors != nil {
		h.editors.Drop(projectID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

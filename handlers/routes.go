package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lovestory/lovestory/backend/go-services/internal/config"
	"github.com/lovestory/lovestory/backend/go-services/internal/editor"
	"github.com/lovestory/lovestory/backend/go-services/internal/imaging"
	"github.com/lovestory/lovestory/backend/go-services/internal/projects"
	"github.com/lovestory/lovestory/backend/go-services/internal/sessions"
	"github.com/lovestory/lovestory/backend/go-services/internal/tokens"
	"github.com/lovestory/lovestory/backend/go-services/internal/users"
	"github.com/lovestory/lovestory/backend/go-services/pkg/middleware"
)

// Deps are the services the HTTP surface is built from.
type Deps struct {
	Config   *config.Config
	Users    *users.Service
	Projects *projects.Service
	Sessions *sessions.Service
	Editors  *editor.Registry
	Images   *imaging.Ingestor
	Games    *GamesHandler
	Checks   map[string]Check
}

// Mount registers every route on r:
//
//	/auth/*           owner sign-in
//	/api/editor/*     the signed-in owner's workspace (bearer token)
//	/api/games/*      mini-games, public
//	/v/:template/:slug published pages
func Mount(r *gin.Engine, d Deps) {
	RegisterHealth(r, d.Checks)
	RegisterSwagger(r)

	NewAuthHandler(d.Config, d.Users, d.Projects, d.Sessions, d.Editors).Register(r.Group("/"))
	NewViewerHandler(d.Projects).Register(r)

	api := r.Group("/api")
	secured := api.Group("", middleware.AuthMiddleware(tokens.NewVerifier(d.Config)))
	NewEditorHandler(d.Config, d.Projects, d.Editors, d.Images).Register(secured)
	if d.Games != nil {
		d.Games.Register(api)
	}
}

package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lovestory/lovestory/backend/go-services/internal/games"
	"github.com/lovestory/lovestory/backend/go-services/internal/games/heartcatch"
	"github.com/lovestory/lovestory/backend/go-services/internal/games/memory"
)

// GamesHandler runs the mini-games for viewers. Games live in memory only.
type GamesHandler struct {
	memory *games.Registry[*memory.Game]
	hearts *games.Registry[*heartcatch.Game]
}

func NewGamesHandler(ttl time.Duration, maxGames int) *GamesHandler {
	return &GamesHandler{
		memory: games.NewRegistry[*memory.Game](ttl, maxGames),
		hearts: games.NewRegistry[*heartcatch.Game](ttl, maxGames),
	}
}

func (h *GamesHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/games")
	g.POST("/memory", h.StartMemory)
	g.POST("/memory/:id/flip", h.Flip)
	g.POST("/memory/:id/resolve", h.Resolve)
	g.POST("/memory/:id/reset", h.ResetMemory)
	g.POST("/hearts", h.StartHearts)
	g.POST("/hearts/:id/attempt", h.Attempt)
}

func (h *GamesHandler) StartMemory(c *gin.Context) {
	g := memory.New(nil)
	v := g.Start()
	c.JSON(http.StatusCreated, gin.H{"id": h.memory.Add(g), "game": v})
}

func (h *GamesHandler) memoryGame(c *gin.Context) (*memory.Game, bool) {
	g, err := h.memory.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return g, true
}

func (h *GamesHandler) Flip(c *gin.Context) {
	var req struct {
		Card *int `json:"card" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	g, ok := h.memoryGame(c)
	if !ok {
		return
	}
	v, err := g.Flip(*req.Card)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": v})
}

func (h *GamesHandler) Resolve(c *gin.Context) {
	g, ok := h.memoryGame(c)
	if !ok {
		return
	}
	v, err := g.Resolve()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": v})
}

func (h *GamesHandler) ResetMemory(c *gin.Context) {
	g, ok := h.memoryGame(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": g.Reset()})
}

func (h *GamesHandler) StartHearts(c *gin.Context) {
	var req struct {
		Target    int     `json:"target"`
		Threshold float64 `json:"threshold"`
	}
	// an empty body selects the defaults
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	g := heartcatch.New(req.Target, req.Threshold)
	v := g.Start()
	c.JSON(http.StatusCreated, gin.H{"id": h.hearts.Add(g), "game": v})
}

func (h *GamesHandler) Attempt(c *gin.Context) {
	var req struct {
		Pointer heartcatch.Point `json:"pointer"`
		Heart   heartcatch.Point `json:"heart"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	g, err := h.hearts.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	caught, v, err := g.Attempt(req.Pointer, req.Heart)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"caught": caught, "game": v})
}

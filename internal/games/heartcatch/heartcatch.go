// Package heartcatch is the reflex mini-game: catch a moving heart by
// landing the pointer close enough to it, enough times.
package heartcatch

import (
	"fmt"
	"math"
	"sync"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

type State string

const (
	Idle    State = "idle"
	Playing State = "playing"
	Won     State = "won"
)

const (
	DefaultTarget    = 5
	DefaultThreshold = 40.0
)

var ErrNotPlaying = fmt.Errorf("%w: game is not in progress", apperr.ErrValidation)

// Point is a position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type View struct {
	State     State   `json:"state"`
	Caught    int     `json:"caught"`
	Target    int     `json:"target"`
	Threshold float64 `json:"threshold"`
}

// Game is safe for concurrent use.
type Game struct {
	mu        sync.Mutex
	state     State
	caught    int
	target    int
	threshold float64
}

// New returns an idle game won after target catches closer than threshold.
// Non-positive arguments select the defaults.
func New(target int, threshold float64) *Game {
	if target <= 0 {
		target = DefaultTarget
	}
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Game{state: Idle, target: target, threshold: threshold}
}

func (g *Game) Start() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Playing
	g.caught = 0
	return g.view()
}

// Attempt records a pointer position against the heart's position and
// reports whether it was a catch.
func (g *Game) Attempt(pointer, heart Point) (bool, View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Playing {
		return false, g.view(), ErrNotPlaying
	}
	if math.Hypot(pointer.X-heart.X, pointer.Y-heart.Y) >= g.threshold {
		return false, g.view(), nil
	}
	g.caught++
	if g.caught >= g.target {
		g.state = Won
	}
	return true, g.view(), nil
}

func (g *Game) Reset() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Idle
	g.caught = 0
	return g.view()
}

func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view()
}

func (g *Game) view() View {
	return View{State: g.state, Caught: g.caught, Target: g.target, Threshold: g.threshold}
}

// Package memory is the card-matching mini-game: six pairs, two cards up at
// a time, scored by the number of pairs turned.
package memory

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

// State of a game.
type State string

const (
	Idle     State = "idle"
	Playing  State = "playing"
	Checking State = "checking"
	Won      State = "won"
)

// Symbols are the card faces; each appears twice.
var Symbols = []string{"💕", "💖", "💗", "💝", "🦋", "🌹"}

var (
	ErrNotPlaying = fmt.Errorf("%w: game is not in progress", apperr.ErrValidation)
	ErrPairUp     = fmt.Errorf("%w: two cards are already face up", apperr.ErrConflict)
	ErrNoPair     = fmt.Errorf("%w: no pair to resolve", apperr.ErrValidation)
)

// Card is one card on the table.
type Card struct {
	ID      int    `json:"id"`
	Symbol  string `json:"symbol,omitempty"`
	Flipped bool   `json:"flipped"`
	Matched bool   `json:"matched"`
}

// View is what a player may see: face-down cards carry no symbol.
type View struct {
	State State  `json:"state"`
	Cards []Card `json:"cards"`
	Moves int    `json:"moves"`
	Combo int    `json:"combo"`
	Stars int    `json:"stars,omitempty"`
	// Match is set while a turned pair waits for Resolve.
	Match *bool `json:"match,omitempty"`
}

// Game is safe for concurrent use.
type Game struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	state   State
	cards   []Card
	pending []int
	moves   int
	combo   int
}

// New returns an idle game shuffling with rnd. A nil rnd uses a random seed.
func New(rnd *rand.Rand) *Game {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Game{rnd: rnd, state: Idle}
}

// Start deals a freshly shuffled table and starts play. Starting a game in
// progress redeals it.
func (g *Game) Start() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	faces := make([]string, 0, 2*len(Symbols))
	faces = append(faces, Symbols...)
	faces = append(faces, Symbols...)
	g.rnd.Shuffle(len(faces), func(i, j int) { faces[i], faces[j] = faces[j], faces[i] })

	g.cards = make([]Card, len(faces))
	for i, f := range faces {
		g.cards[i] = Card{ID: i, Symbol: f}
	}
	g.pending = nil
	g.moves = 0
	g.combo = 0
	g.state = Playing
	return g.view()
}

// Flip turns card id face up. Turning the second card of a pair counts a
// move and moves the game to Checking until Resolve is called; no third
// card can be turned meanwhile.
func (g *Game) Flip(id int) (View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	switch g.state {
	case Checking:
		return g.view(), ErrPairUp
	case Playing:
	default:
		return g.view(), ErrNotPlaying
	}
	if id < 0 || id >= len(g.cards) {
		return g.view(), fmt.Errorf("%w: no card %d", apperr.ErrValidation, id)
	}
	c := &g.cards[id]
	if c.Flipped || c.Matched {
		return g.view(), fmt.Errorf("%w: card %d is already face up", apperr.ErrValidation, id)
	}
	c.Flipped = true
	g.pending = append(g.pending, id)
	if len(g.pending) == 2 {
		g.moves++
		g.state = Checking
	}
	return g.view(), nil
}

// Resolve settles the pending pair: a match stays up, a miss is turned back
// down. When the last pair matches the game is won.
func (g *Game) Resolve() (View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != Checking {
		return g.view(), ErrNoPair
	}
	a, b := &g.cards[g.pending[0]], &g.cards[g.pending[1]]
	if a.Symbol == b.Symbol {
		a.Matched, b.Matched = true, true
		g.combo++
	} else {
		a.Flipped, b.Flipped = false, false
		g.combo = 0
	}
	g.pending = nil
	g.state = Playing
	if g.allMatched() {
		g.state = Won
	}
	return g.view(), nil
}

// Reset returns the game to Idle.
func (g *Game) Reset() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = Idle
	g.cards = nil
	g.pending = nil
	g.moves = 0
	g.combo = 0
	return g.view()
}

// View returns the current player view.
func (g *Game) View() View {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.view()
}

func (g *Game) allMatched() bool {
	for _, c := range g.cards {
		if !c.Matched {
			return false
		}
	}
	return len(g.cards) > 0
}

func (g *Game) view() View {
	v := View{State: g.state, Moves: g.moves, Combo: g.combo, Cards: make([]Card, len(g.cards))}
	for i, c := range g.cards {
		if !c.Flipped && !c.Matched {
			c.Symbol = ""
		}
		v.Cards[i] = c
	}
	if g.state == Checking {
		m := g.cards[g.pending[0]].Symbol == g.cards[g.pending[1]].Symbol
		v.Match = &m
	}
	if g.state == Won {
		v.Stars = Stars(g.moves)
	}
	return v
}

// Stars rates a finished game: 3 for at most 8 moves, 2 for at most 12,
// otherwise 1.
func Stars(moves int) int {
	switch {
	case moves <= 8:
		return 3
	case moves <= 12:
		return 2
	}
	return 1
}

package memory

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lovestory/lovestory/backend/go-services/internal/apperr"
)

func seeded() *Game { return New(rand.New(rand.NewPCG(1, 2))) }

// positions maps each symbol to its two card ids.
func positions(g *Game) map[string][]int {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := map[string][]int{}
	for _, c := range g.cards {
		out[c.Symbol] = append(out[c.Symbol], c.ID)
	}
	return out
}

func TestStartDealsSixPairsFaceDown(t *testing.T) {
	g := seeded()
	require.Equal(t, Idle, g.View().State)
	v := g.Start()
	require.Equal(t, Playing, v.State)
	require.Len(t, v.Cards, 12)
	for _, c := range v.Cards {
		require.Empty(t, c.Symbol, "face-down card leaked its symbol")
	}
	for sym, ids := range positions(g) {
		require.Len(t, ids, 2, sym)
	}
}

func TestFlipBeforeStart(t *testing.T) {
	_, err := seeded().Flip(0)
	require.ErrorIs(t, err, ErrNotPlaying)
}

func TestThirdFlipRefusedWhileChecking(t *testing.T) {
	g := seeded()
	g.Start()
	pos := positions(g)
	a, b := pos[Symbols[0]][0], pos[Symbols[1]][0]

	_, err := g.Flip(a)
	require.NoError(t, err)
	v, err := g.Flip(b)
	require.NoError(t, err)
	require.Equal(t, Checking, v.State)
	require.NotNil(t, v.Match)
	require.False(t, *v.Match)
	require.Equal(t, 1, v.Moves)

	_, err = g.Flip(pos[Symbols[2]][0])
	require.ErrorIs(t, err, ErrPairUp)
	require.ErrorIs(t, err, apperr.ErrConflict)

	v, err = g.Resolve()
	require.NoError(t, err)
	require.Equal(t, Playing, v.State)
	require.False(t, v.Cards[a].Flipped)
	require.False(t, v.Cards[b].Flipped)
	require.Zero(t, v.Combo)
}

func TestFlipSameCardTwice(t *testing.T) {
	g := seeded()
	g.Start()
	_, err := g.Flip(3)
	require.NoError(t, err)
	_, err = g.Flip(3)
	require.ErrorIs(t, err, apperr.ErrValidation)
	_, err = g.Flip(99)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPerfectGameWinsWithThreeStars(t *testing.T) {
	g := seeded()
	g.Start()
	var v View
	for _, ids := range positions(g) {
		_, err := g.Flip(ids[0])
		require.NoError(t, err)
		v, err = g.Flip(ids[1])
		require.NoError(t, err)
		require.True(t, *v.Match)
		v, err = g.Resolve()
		require.NoError(t, err)
	}
	require.Equal(t, Won, v.State)
	require.Equal(t, 6, v.Moves)
	require.Equal(t, 6, v.Combo)
	require.Equal(t, 3, v.Stars)

	_, err := g.Flip(0)
	require.ErrorIs(t, err, ErrNotPlaying)
	_, err = g.Resolve()
	require.ErrorIs(t, err, ErrNoPair)

	require.Equal(t, Idle, g.Reset().State)
}

func TestStars(t *testing.T) {
	cases := map[int]int{6: 3, 8: 3, 9: 2, 12: 2, 13: 1, 40: 1}
	for moves, want := range cases {
		require.Equal(t, want, Stars(moves), "moves=%d", moves)
	}
}

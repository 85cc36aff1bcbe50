package grid

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scripted replays fixed draws for a config whose Min is 1.
type scripted struct {
	vals []int
	i    int
}

func (s *scripted) IntN(n int) int {
	v := s.vals[s.i%len(s.vals)]
	s.i++
	return v - 1
}

func draws(vals ...int) *scripted { return &scripted{vals: vals} }

func row(n int) Config { return Config{Rows: 1, Cols: n, Min: 1, Max: 1000} }

func newTestGame(t *testing.T, cfg Config, src Source) *Game {
	t.Helper()
	g, err := New(cfg, src, Hooks{})
	require.NoError(t, err)
	return g
}

func assertNonDecreasing(t *testing.T, cells []int) {
	t.Helper()
	prev, seen := 0, false
	for i, v := range cells {
		if v == Empty {
			continue
		}
		if seen {
			require.LessOrEqualf(t, prev, v, "cell %d breaks order in %v", i, cells)
		}
		prev, seen = v, true
	}
}

func TestIsValidPlacement_SparseNeighbours(t *testing.T) {
	g := newTestGame(t, row(5), draws(1))

	assert.True(t, g.IsValidPlacement(2, 50), "empty board accepts anything")
	g.cells[2] = 50

	assert.False(t, g.IsValidPlacement(4, 10), "predecessor 50 > 10")
	assert.True(t, g.IsValidPlacement(0, 10), "successor 50 >= 10, no predecessor")
	assert.True(t, g.IsValidPlacement(4, 50), "equal to predecessor")
	assert.True(t, g.IsValidPlacement(0, 50), "equal to successor")
}

func TestIsValidPlacement_FilledCellRejectsEveryValue(t *testing.T) {
	g := newTestGame(t, row(5), draws(1))
	g.cells = []int{0, 0, 40, 0, 0}

	for _, v := range []int{1, 39, 40, 41, 1000, math.MaxInt} {
		assert.Falsef(t, g.IsValidPlacement(2, v), "value %d on a filled cell", v)
	}
}

func TestIsValidPlacement_OutOfRange(t *testing.T) {
	g := newTestGame(t, row(5), draws(1))
	assert.False(t, g.IsValidPlacement(-1, 5))
	assert.False(t, g.IsValidPlacement(5, 5))
}

func TestIsValidPlacement_SingleGap(t *testing.T) {
	cases := []struct {
		name  string
		cells []int
		index int
		ok    []int
		bad   []int
	}{
		{"both sides", []int{10, 20, 0, 60, 70}, 2, []int{20, 21, 59, 60}, []int{19, 61}},
		{"left edge", []int{0, 20, 30, 40, 50}, 0, []int{1, 20}, []int{21, 1000}},
		{"right edge", []int{10, 20, 30, 40, 0}, 4, []int{40, 1000, math.MaxInt}, []int{1, 39}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newTestGame(t, row(5), draws(1))
			g.cells = tc.cells
			for _, v := range tc.ok {
				assert.Truef(t, g.IsValidPlacement(tc.index, v), "expected %d to fit", v)
			}
			for _, v := range tc.bad {
				assert.Falsef(t, g.IsValidPlacement(tc.index, v), "expected %d to be rejected", v)
			}
		})
	}
}

func TestHasValidPlacementFor(t *testing.T) {
	g := newTestGame(t, row(5), draws(1))
	g.cells = []int{10, 0, 0, 0, 90}

	assert.False(t, g.HasValidPlacementFor(500))
	assert.False(t, g.HasValidPlacementFor(9))
	assert.True(t, g.HasValidPlacementFor(10))
	assert.True(t, g.HasValidPlacementFor(90))
	assert.True(t, g.HasValidPlacementFor(55))
}

func TestStartNewGame(t *testing.T) {
	var events []string
	g, err := New(row(3), draws(7), Hooks{
		OnNumberUpdated: func(n int) { events = append(events, "number") },
		OnGridUpdated:   func(cells []int) { events = append(events, "grid") },
	})
	require.NoError(t, err)
	assert.Equal(t, NotStarted, g.State())
	assert.Equal(t, Ignored, g.HandleCellClick(0), "clicks before the first round are ignored")

	g.StartNewGame()
	assert.Equal(t, InProgress, g.State())
	assert.Equal(t, 7, g.Current())
	assert.Equal(t, []int{0, 0, 0}, g.Cells())
	assert.Equal(t, []string{"number", "grid"}, events)
}

func TestHandleCellClick_InvalidIsNoOp(t *testing.T) {
	var gridEvents int
	g, err := New(row(5), draws(50, 10), Hooks{OnGridUpdated: func([]int) { gridEvents++ }})
	require.NoError(t, err)
	g.StartNewGame()
	gridEvents = 0

	require.Equal(t, Continue, g.HandleCellClick(2))
	require.Equal(t, 10, g.Current())

	before := g.Snapshot()
	assert.Equal(t, Ignored, g.HandleCellClick(4), "10 cannot follow 50")
	assert.Equal(t, Ignored, g.HandleCellClick(2), "filled cell")
	assert.Equal(t, Ignored, g.HandleCellClick(99), "out of range")
	assert.Equal(t, before, g.Snapshot())
	assert.Equal(t, 1, gridEvents)

	assert.Equal(t, Continue, g.HandleCellClick(0))
	assert.Equal(t, []int{10, 0, 50, 0, 0}, g.Cells())
}

func TestHandleCellClick_Loss(t *testing.T) {
	type over struct {
		won        bool
		impossible int
	}
	var got []over
	g, err := New(row(5), draws(10, 90, 500), Hooks{
		OnGameOver: func(won bool, n int) { got = append(got, over{won, n}) },
	})
	require.NoError(t, err)
	g.StartNewGame()

	require.Equal(t, Continue, g.HandleCellClick(0))
	require.Equal(t, Loss, g.HandleCellClick(4))

	assert.Equal(t, Lost, g.State())
	assert.Equal(t, []int{10, 0, 0, 0, 90}, g.Cells(), "loss leaves the board untouched")
	assert.Equal(t, 500, g.Impossible())
	assert.Equal(t, 500, g.Current())
	assert.Equal(t, []over{{false, 500}}, got)
	assert.Equal(t, Stats{GamesPlayed: 1, GamesLost: 1, TotalPlacements: 2}, g.Stats())

	assert.Equal(t, Ignored, g.HandleCellClick(1), "finished rounds ignore clicks")
}

func TestHandleCellClick_Win(t *testing.T) {
	var won []bool
	var impossible int
	g, err := New(row(3), draws(1, 2, 3), Hooks{
		OnGameOver: func(w bool, n int) { won = append(won, w); impossible = n },
	})
	require.NoError(t, err)
	g.StartNewGame()

	assert.Equal(t, Continue, g.HandleCellClick(0))
	assert.Equal(t, Continue, g.HandleCellClick(1))
	assert.Equal(t, Win, g.HandleCellClick(2))

	assert.Equal(t, Won, g.State())
	assert.Equal(t, []bool{true}, won)
	assert.Equal(t, NoNumber, impossible)
	assert.Equal(t, NoNumber, g.Impossible())
	assert.Equal(t,
		"You won 1 out of 1 games and lost 0 out of 1 games, with 3 successful placements, an average of 3.00 per game.",
		g.StatsSummary())
}

func TestStatsCarryAcrossRounds(t *testing.T) {
	g := newTestGame(t, row(2), draws(5, 5, 9, 1))
	g.StartNewGame()
	require.Equal(t, Continue, g.HandleCellClick(0))
	require.Equal(t, Win, g.HandleCellClick(1))

	// Round two: 9 at index 1, then 1 still fits at index 0, win again.
	g.StartNewGame()
	assert.Equal(t, 0, g.Placements())
	require.Equal(t, Continue, g.HandleCellClick(1))
	require.Equal(t, Win, g.HandleCellClick(0))

	// Abandoned round is not recorded.
	g.StartNewGame()
	require.Equal(t, Continue, g.HandleCellClick(0))
	g.StartNewGame()

	assert.Equal(t, Stats{GamesPlayed: 2, GamesWon: 2, TotalPlacements: 4}, g.Stats())
}

func TestRandomPlayKeepsOrder(t *testing.T) {
	cfg := DefaultConfig()
	g := newTestGame(t, cfg, NewSeededSource(42))
	picker := NewSeededSource(7)

	for round := 0; round < 200; round++ {
		g.StartNewGame()
		for g.State() == InProgress {
			var legal []int
			for i := 0; i < cfg.CellCount(); i++ {
				if g.IsValidPlacement(i, g.Current()) {
					legal = append(legal, i)
				}
			}
			require.NotEmpty(t, legal, "in-progress round always has a legal cell")

			out := g.HandleCellClick(legal[picker.IntN(len(legal))])
			require.NotEqual(t, Ignored, out)
			assertNonDecreasing(t, g.Cells())

			switch out {
			case Win:
				assert.Equal(t, cfg.CellCount(), g.Placements())
			case Loss:
				assert.False(t, g.HasValidPlacementFor(g.Impossible()))
				assert.Less(t, g.Placements(), cfg.CellCount())
			}
		}
	}

	s := g.Stats()
	assert.Equal(t, 200, s.GamesPlayed)
	assert.Equal(t, s.GamesPlayed, s.GamesWon+s.GamesLost)
}

func TestDrawsStayInRange(t *testing.T) {
	cfg := Config{Rows: 1, Cols: 1, Min: 3, Max: 5}
	g := newTestGame(t, cfg, NewSeededSource(1))
	for i := 0; i < 500; i++ {
		g.StartNewGame()
		assert.GreaterOrEqual(t, g.Current(), 3)
		assert.LessOrEqual(t, g.Current(), 5)
	}
}

func TestSeededSourceIsDeterministic(t *testing.T) {
	a, b := NewSeededSource(99), NewSeededSource(99)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.IntN(1000), b.IntN(1000))
	}
}

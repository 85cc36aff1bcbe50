// internal/grid/engine.go
//
// Core engine for a single Number Game session.
// Responsibilities:
//   - Hold a fixed-size row-major board of cells (Empty = 0).
//   - Draw numbers one at a time from an injected Source.
//   - Accept a placement only if it keeps the filled cells non-decreasing
//     in index order (nearest filled neighbours, not adjacent slots).
//   - Detect win (board full) and loss (draw fits nowhere).
//   - Keep running statistics across rounds of the same session.
//
// A Game is not safe for concurrent use; its owner serializes access.

package grid

import "fmt"

// Game is the state of one play session: the current round plus statistics
// accumulated over every finished round.
type Game struct {
	cfg   Config
	src   Source
	hooks Hooks

	cells      []int
	current    int
	placements int
	impossible int
	state      State

	stats Stats
}

// New constructs a game in the NotStarted state.
// A nil src falls back to NewRandomSource.
func New(cfg Config, src Source, hooks Hooks) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src == nil {
		src = NewRandomSource()
	}
	return &Game{
		cfg:   cfg,
		src:   src,
		hooks: hooks,
		cells: make([]int, cfg.CellCount()),
	}, nil
}

// SetHooks replaces the notification callbacks.
func (g *Game) SetHooks(h Hooks) { g.hooks = h }

// StartNewGame clears the board, resets the placement counter and draws the
// first number. An unfinished round is dropped without touching statistics.
func (g *Game) StartNewGame() {
	for i := range g.cells {
		g.cells[i] = Empty
	}
	g.placements = 0
	g.impossible = 0
	g.state = InProgress
	g.current = g.nextNumber()
	g.notifyNumber()
	g.notifyGrid()
}

// IsValidPlacement reports whether value may go into the cell at index.
// Filled and out-of-range cells are never valid.
func (g *Game) IsValidPlacement(index, value int) bool {
	if index < 0 || index >= len(g.cells) || g.cells[index] != Empty {
		return false
	}

	// Missing neighbours are unbounded, not clamped to an integer limit.
	for i := index - 1; i >= 0; i-- {
		if g.cells[i] != Empty {
			if g.cells[i] > value {
				return false
			}
			break
		}
	}
	for i := index + 1; i < len(g.cells); i++ {
		if g.cells[i] != Empty {
			if value > g.cells[i] {
				return false
			}
			break
		}
	}
	return true
}

// HasValidPlacementFor reports whether any empty cell accepts value.
func (g *Game) HasValidPlacementFor(value int) bool {
	for i := range g.cells {
		if g.IsValidPlacement(i, value) {
			return true
		}
	}
	return false
}

// HandleCellClick places the current number at index if that is legal.
//
// Illegal clicks (wrong cell, finished or unstarted game) return Ignored and
// change nothing. A legal click stores the value, then either finishes the
// round as a win (board full), finishes it as a loss (the next draw fits
// nowhere; the board is left as is), or reports Continue with a new number.
func (g *Game) HandleCellClick(index int) Outcome {
	if g.state != InProgress || !g.IsValidPlacement(index, g.current) {
		return Ignored
	}

	g.cells[index] = g.current
	g.placements++
	g.notifyGrid()

	if g.placements == len(g.cells) {
		g.finish(true, NoNumber)
		return Win
	}

	g.current = g.nextNumber()
	if !g.HasValidPlacementFor(g.current) {
		g.finish(false, g.current)
		return Loss
	}

	g.notifyNumber()
	return Continue
}

// RecordGameEnd adds the current round to the running statistics.
func (g *Game) RecordGameEnd(won bool) {
	g.stats.record(won, g.placements)
}

// StatsSummary is the human-readable statistics line.
func (g *Game) StatsSummary() string { return g.stats.Summary() }

// Stats returns the running statistics.
func (g *Game) Stats() Stats { return g.stats }

// State returns the lifecycle state of the current round.
func (g *Game) State() State { return g.state }

// Current returns the number waiting to be placed (0 before the first round).
func (g *Game) Current() int { return g.current }

// Placements returns successful placements in the current round.
func (g *Game) Placements() int { return g.placements }

// Impossible returns the number that ended the round: the unplaceable draw
// on a loss, NoNumber on a win and 0 while the round is still open.
func (g *Game) Impossible() int { return g.impossible }

// Config returns the board configuration.
func (g *Game) Config() Config { return g.cfg }

// Cells returns a copy of the board.
func (g *Game) Cells() []int {
	out := make([]int, len(g.cells))
	copy(out, g.cells)
	return out
}

// Snapshot returns a serializable view of the game.
func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		Rows:       g.cfg.Rows,
		Cols:       g.cfg.Cols,
		Cells:      g.Cells(),
		Current:    g.current,
		State:      g.state,
		Placements: g.placements,
		Impossible: g.impossible,
		Stats:      g.stats,
	}
}

func (g *Game) String() string {
	return fmt.Sprintf("grid %dx%d %s current=%d placements=%d", g.cfg.Rows, g.cfg.Cols, g.state, g.current, g.placements)
}

func (g *Game) finish(won bool, impossible int) {
	if won {
		g.state = Won
	} else {
		g.state = Lost
	}
	g.impossible = impossible
	g.RecordGameEnd(won)
	if g.hooks.OnGameOver != nil {
		g.hooks.OnGameOver(won, impossible)
	}
}

func (g *Game) nextNumber() int {
	return draw(g.src, g.cfg.Min, g.cfg.Max)
}

func (g *Game) notifyGrid() {
	if g.hooks.OnGridUpdated != nil {
		g.hooks.OnGridUpdated(g.Cells())
	}
}

func (g *Game) notifyNumber() {
	if g.hooks.OnNumberUpdated != nil {
		g.hooks.OnNumberUpdated(g.current)
	}
}

// internal/grid/types.go
//
// Core type definitions for the number placement engine.
// Defines:
//   - Config: board dimensions and the inclusive draw range.
//   - State: lifecycle of a single game (not_started → in_progress → won/lost).
//   - Outcome: what a single cell click did.
//   - Hooks: notification callbacks for the presentation layer.
//   - Snapshot: a read-only JSON view of a game.

package grid

import (
	"errors"
	"fmt"
)

const (
	// Empty marks a cell that holds no value. Draws are always >= 1.
	Empty = 0

	// NoNumber is reported as the unplaceable number when a game is won.
	NoNumber = -1

	defaultRows = 4
	defaultCols = 5
	defaultMin  = 1
	defaultMax  = 1000
)

// ErrInvalidConfig is returned by Config.Validate and New.
var ErrInvalidConfig = errors.New("grid: invalid config")

// Config describes the board and the draw range.
// Min and Max are both inclusive.
type Config struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
	Min  int `json:"min"`
	Max  int `json:"max"`
}

// DefaultConfig is the classic 4x5 board with draws in 1..1000.
func DefaultConfig() Config {
	return Config{Rows: defaultRows, Cols: defaultCols, Min: defaultMin, Max: defaultMax}
}

// Validate checks dimensions and draw range.
// Min must stay above Empty so a draw can never look like an empty cell.
func (c Config) Validate() error {
	switch {
	case c.Rows < 1 || c.Cols < 1:
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d", ErrInvalidConfig, c.Rows, c.Cols)
	case c.Min <= Empty:
		return fmt.Errorf("%w: min draw must be > %d, got %d", ErrInvalidConfig, Empty, c.Min)
	case c.Max < c.Min:
		return fmt.Errorf("%w: max draw %d below min %d", ErrInvalidConfig, c.Max, c.Min)
	}
	return nil
}

// CellCount is Rows*Cols.
func (c Config) CellCount() int { return c.Rows * c.Cols }

// Index maps a (row, col) pair to a row-major cell index.
// Returns -1 when the coordinates fall outside the board.
func (c Config) Index(row, col int) int {
	if row < 0 || row >= c.Rows || col < 0 || col >= c.Cols {
		return -1
	}
	return row*c.Cols + col
}

// State is the lifecycle state of a game.
type State int

const (
	NotStarted State = iota
	InProgress
	Won
	Lost
)

func (s State) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "not_started"
	}
}

// MarshalText renders the state as its string form in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText parses the string form produced by MarshalText.
func (s *State) UnmarshalText(b []byte) error {
	for _, v := range []State{NotStarted, InProgress, Won, Lost} {
		if v.String() == string(b) {
			*s = v
			return nil
		}
	}
	return fmt.Errorf("grid: unknown state %q", b)
}

// Finished reports whether the state is terminal until the next StartNewGame.
func (s State) Finished() bool { return s == Won || s == Lost }

// Outcome reports what HandleCellClick did.
type Outcome int

const (
	// Ignored: the click was not a legal placement; nothing changed.
	Ignored Outcome = iota
	// Continue: the value was placed and a new number is waiting.
	Continue
	// Win: the value was placed and the board is full.
	Win
	// Loss: the value was placed but the next draw fits nowhere.
	Loss
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "continue"
	case Win:
		return "win"
	case Loss:
		return "loss"
	default:
		return "ignored"
	}
}

// MarshalText renders the outcome as its string form in JSON.
func (o Outcome) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText parses the string form produced by MarshalText.
func (o *Outcome) UnmarshalText(b []byte) error {
	for _, v := range []Outcome{Ignored, Continue, Win, Loss} {
		if v.String() == string(b) {
			*o = v
			return nil
		}
	}
	return fmt.Errorf("grid: unknown outcome %q", b)
}

// Hooks are the notifications a presentation layer observes.
// Any nil hook is skipped.
type Hooks struct {
	// OnGridUpdated receives a copy of every cell value.
	OnGridUpdated func(cells []int)
	// OnNumberUpdated receives the next number to place.
	OnNumberUpdated func(current int)
	// OnGameOver reports the result; impossible is NoNumber on a win.
	OnGameOver func(won bool, impossible int)
}

// Snapshot is a point-in-time view of a game, safe to serialize.
type Snapshot struct {
	Rows       int   `json:"rows"`
	Cols       int   `json:"cols"`
	Cells      []int `json:"cells"`
	Current    int   `json:"current"`
	State      State `json:"state"`
	Placements int   `json:"placements"`
	Impossible int   `json:"impossible,omitempty"`
	Stats      Stats `json:"stats"`
}

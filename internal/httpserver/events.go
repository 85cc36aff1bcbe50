package httpserver

import (
	"github.com/rs/zerolog"

	"github.com/robalobadob/numbergame/internal/grid"
)

// Event is one engine notification, replayed to the client in order.
type Event struct {
	Type       string `json:"type"` // grid | number | game_over
	Cells      []int  `json:"cells,omitempty"`
	Number     int    `json:"number,omitempty"`
	Won        *bool  `json:"won,omitempty"`
	Impossible int    `json:"impossible,omitempty"`
}

// recorder collects the hooks fired while one request drives a game.
type recorder struct {
	logger *zerolog.Logger
	events []Event
}

func (rec *recorder) hooks() grid.Hooks {
	return grid.Hooks{
		OnGridUpdated: func(cells []int) {
			rec.events = append(rec.events, Event{Type: "grid", Cells: cells})
		},
		OnNumberUpdated: func(n int) {
			rec.events = append(rec.events, Event{Type: "number", Number: n})
		},
		OnGameOver: func(won bool, impossible int) {
			rec.events = append(rec.events, Event{Type: "game_over", Won: &won, Impossible: impossible})
			rec.logger.Info().Bool("won", won).Int("impossible", impossible).Msg("game over")
		},
	}
}

package grid

import "fmt"

// Stats accumulates results over the rounds of one session.
type Stats struct {
	GamesPlayed     int `json:"gamesPlayed"`
	GamesWon        int `json:"gamesWon"`
	GamesLost       int `json:"gamesLost"`
	TotalPlacements int `json:"totalPlacements"`
}

func (s *Stats) record(won bool, placements int) {
	s.GamesPlayed++
	if won {
		s.GamesWon++
	} else {
		s.GamesLost++
	}
	s.TotalPlacements += placements
}

// Average is placements per finished game, or 0 before any game finished.
func (s Stats) Average() float64 {
	if s.GamesPlayed == 0 {
		return 0
	}
	return float64(s.TotalPlacements) / float64(s.GamesPlayed)
}

// Summary formats the statistics the way the end-of-session dialog shows them.
func (s Stats) Summary() string {
	return fmt.Sprintf("You won %d out of %d games and lost %d out of %d games, with %d successful placements, an average of %.2f per game.",
		s.GamesWon, s.GamesPlayed, s.GamesLost, s.GamesPlayed, s.TotalPlacements, s.Average())
}

package models

import "time"

// Goal is a match-sheet detail row. The authoritative score lives on the
// match; goals exist for scorer leaderboards and minute-by-minute records.
type Goal struct {
	ID        int       `json:"id"`
	MatchID   int       `json:"match_id"`
	PlayerID  int       `json:"player_id"`
	Minute    *int      `json:"minute,omitempty"`
	OwnGoal   bool      `json:"own_goal"`
	CreatedAt time.Time `json:"created_at"`
}

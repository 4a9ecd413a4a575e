package models

import "time"

// TeamStatistics is the derived standings row for one team in one tournament.
// It is recomputed wholesale from completed matches on every change and must
// never be edited by hand; losses in particular are always played-wins-draws,
// never tracked on their own.
type TeamStatistics struct {
	ID             int       `json:"id"`
	TeamID         int       `json:"team_id"`
	TournamentID   int       `json:"tournament_id"`
	Played         int       `json:"played"`
	Wins           int       `json:"wins"`
	Draws          int       `json:"draws"`
	Losses         int       `json:"losses"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	YellowCards    int       `json:"yellow_cards"`
	RedCards       int       `json:"red_cards"`
	UpdatedAt      time.Time `json:"updated_at"`

	Team *Team `json:"team,omitempty"`
}

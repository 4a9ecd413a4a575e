package models

// Outcome is the result a match completes with. It is a closed set: Normal
// for a played match, Walkover when one team forfeits, PenaltyShootout when
// an elimination match ends level and goes to penalties. A match holding no
// outcome is still scheduled, so the illegal flag combinations of the flat
// row (penalties on a group match, walkover with a score pair) cannot be
// expressed.
type Outcome interface {
	outcome()
}

type Normal struct {
	HomeGoals int `json:"home_goals"`
	AwayGoals int `json:"away_goals"`
}

type Walkover struct {
	AbsentTeamID int            `json:"absent_team_id"`
	Reason       WalkoverReason `json:"reason"`
}

type PenaltyShootout struct {
	HomeGoals     int `json:"home_goals"`
	AwayGoals     int `json:"away_goals"`
	HomePenalties int `json:"home_penalties"`
	AwayPenalties int `json:"away_penalties"`
}

func (Normal) outcome()          {}
func (Walkover) outcome()        {}
func (PenaltyShootout) outcome() {}

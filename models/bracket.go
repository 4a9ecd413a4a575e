package models

import "time"

// EliminationPhase is one knockout round of a tournament. Phases are ordered;
// winners of phase N feed the slots of phase N+1.
type EliminationPhase struct {
	ID           int             `json:"id"`
	TournamentID int             `json:"tournament_id"`
	Name         TournamentPhase `json:"name"`
	Order        int             `json:"order"`
	Completed    bool            `json:"completed"`
	CreatedAt    time.Time       `json:"created_at"`
}

// BracketSlot is a placeholder in an elimination phase. It starts empty and
// fills as qualifiers are seeded or prior-round winners propagate; once both
// teams are present a match can be generated for it.
type BracketSlot struct {
	ID         int       `json:"id"`
	PhaseID    int       `json:"phase_id"`
	Position   int       `json:"position"`
	HomeTeamID *int      `json:"home_team_id,omitempty"`
	AwayTeamID *int      `json:"away_team_id,omitempty"`
	MatchID    *int      `json:"match_id,omitempty"`
	Completed  bool      `json:"completed"`
	CreatedAt  time.Time `json:"created_at"`

	HomeTeam *Team  `json:"home_team,omitempty"`
	AwayTeam *Team  `json:"away_team,omitempty"`
	Match    *Match `json:"match,omitempty"`
}

// Filled reports whether both pairing sides are assigned.
func (s *BracketSlot) Filled() bool {
	return s.HomeTeamID != nil && s.AwayTeamID != nil
}

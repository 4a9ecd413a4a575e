package models

import "time"

type MatchStatus string

const (
	MatchStatusScheduled MatchStatus = "scheduled"
	MatchStatusCompleted MatchStatus = "completed"
)

type WalkoverReason string

const (
	WalkoverNoShow     WalkoverReason = "no_show"
	WalkoverWithdrawal WalkoverReason = "withdrawal"
	WalkoverSanction   WalkoverReason = "sanction"
)

// WalkoverGoals is the score awarded to the present team when its opponent
// forfeits, per league regulations.
const WalkoverGoals = 3

// Match is the single source of truth for results. Standings and bracket
// outcomes are derived from completed matches and never stored independently.
//
// Exactly one of GroupRound and PhaseID is set: a match belongs to a
// group-stage round or to an elimination phase, never both.
type Match struct {
	ID               int             `json:"id"`
	TournamentID     int             `json:"tournament_id"`
	HomeTeamID       int             `json:"home_team_id"`
	AwayTeamID       int             `json:"away_team_id"`
	GroupRound       *int            `json:"group_round,omitempty"`
	PhaseID          *int            `json:"phase_id,omitempty"`
	Status           MatchStatus     `json:"status"`
	HomeGoals        *int            `json:"home_goals,omitempty"`
	AwayGoals        *int            `json:"away_goals,omitempty"`
	HomePenalties    *int            `json:"home_penalties,omitempty"`
	AwayPenalties    *int            `json:"away_penalties,omitempty"`
	WalkoverReason   *WalkoverReason `json:"walkover_reason,omitempty"`
	WalkoverWinnerID *int            `json:"walkover_winner_id,omitempty"`
	KickoffAt        time.Time       `json:"kickoff_at"`
	CreatedAt        time.Time       `json:"created_at"`
}

func (m *Match) Completed() bool {
	return m.Status == MatchStatusCompleted
}

// Elimination reports whether the match belongs to a knockout phase.
func (m *Match) Elimination() bool {
	return m.PhaseID != nil
}

func (m *Match) HasTeam(teamID int) bool {
	return m.HomeTeamID == teamID || m.AwayTeamID == teamID
}

// OpponentOf returns the other team of the pairing.
func (m *Match) OpponentOf(teamID int) int {
	if m.HomeTeamID == teamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}

// WinnerTeamID resolves the winner of a completed match: the walkover
// beneficiary, the side with more goals, or the penalty shootout winner when
// an elimination match ends level. The second return is false for scheduled
// matches and for group-stage draws.
func (m *Match) WinnerTeamID() (int, bool) {
	if !m.Completed() {
		return 0, false
	}
	if m.WalkoverWinnerID != nil {
		return *m.WalkoverWinnerID, true
	}
	if m.HomeGoals == nil || m.AwayGoals == nil {
		return 0, false
	}
	switch {
	case *m.HomeGoals > *m.AwayGoals:
		return m.HomeTeamID, true
	case *m.AwayGoals > *m.HomeGoals:
		return m.AwayTeamID, true
	}
	if m.HomePenalties != nil && m.AwayPenalties != nil {
		if *m.HomePenalties > *m.AwayPenalties {
			return m.HomeTeamID, true
		}
		return m.AwayTeamID, true
	}
	return 0, false
}

// Outcome rebuilds the tagged outcome a completed match was finalized with.
func (m *Match) Outcome() Outcome {
	if !m.Completed() {
		return nil
	}
	if m.WalkoverReason != nil && m.WalkoverWinnerID != nil {
		return Walkover{
			AbsentTeamID: m.OpponentOf(*m.WalkoverWinnerID),
			Reason:       *m.WalkoverReason,
		}
	}
	if m.HomePenalties != nil && m.AwayPenalties != nil {
		return PenaltyShootout{
			HomeGoals:     *m.HomeGoals,
			AwayGoals:     *m.AwayGoals,
			HomePenalties: *m.HomePenalties,
			AwayPenalties: *m.AwayPenalties,
		}
	}
	return Normal{HomeGoals: *m.HomeGoals, AwayGoals: *m.AwayGoals}
}

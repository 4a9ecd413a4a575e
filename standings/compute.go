// Package standings derives team statistics from completed matches. Every
// function here is pure: the same match set always produces the same row,
// which is what makes the replay guarantee of the result processor testable.
package standings

import "github.com/mvallesteros/ligastar/models"

// Counts is the match-derived part of a standings row. Card totals are
// appended by the caller from the card ledger.
type Counts struct {
	Played         int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
}

// Compute replays every completed match the team took part in and derives its
// counts from scratch. Nothing is incremented against a previous value, so a
// reversed or corrected match can never leave drift behind. Penalty shootouts
// do not alter the regular score: an elimination match decided on penalties
// still counts as a draw here.
func Compute(teamID int, matches []models.Match) Counts {
	var c Counts
	for i := range matches {
		m := &matches[i]
		if !m.Completed() || !m.HasTeam(teamID) {
			continue
		}
		if m.HomeGoals == nil || m.AwayGoals == nil {
			continue
		}
		goalsFor, goalsAgainst := *m.HomeGoals, *m.AwayGoals
		if m.AwayTeamID == teamID {
			goalsFor, goalsAgainst = goalsAgainst, goalsFor
		}

		c.Played++
		c.GoalsFor += goalsFor
		c.GoalsAgainst += goalsAgainst
		switch {
		case goalsFor > goalsAgainst:
			c.Wins++
		case goalsFor == goalsAgainst:
			c.Draws++
		}
	}
	c.Losses = c.Played - c.Wins - c.Draws
	c.GoalDifference = c.GoalsFor - c.GoalsAgainst
	c.Points = c.Wins*3 + c.Draws
	return c
}

// Apply writes the counts onto a statistics row, leaving identity and card
// fields untouched.
func (c Counts) Apply(row *models.TeamStatistics) {
	row.Played = c.Played
	row.Wins = c.Wins
	row.Draws = c.Draws
	row.Losses = c.Losses
	row.GoalsFor = c.GoalsFor
	row.GoalsAgainst = c.GoalsAgainst
	row.GoalDifference = c.GoalDifference
	row.Points = c.Points
}

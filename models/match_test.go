package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func TestWinnerTeamID(t *testing.T) {
	phaseID := 3
	walkoverWinner := 2
	reason := WalkoverNoShow

	tests := []struct {
		name   string
		match  Match
		winner int
		ok     bool
	}{
		{
			name:  "scheduled match has no winner",
			match: Match{Status: MatchStatusScheduled, HomeTeamID: 1, AwayTeamID: 2},
		},
		{
			name: "home win",
			match: Match{
				Status: MatchStatusCompleted, HomeTeamID: 1, AwayTeamID: 2,
				HomeGoals: intp(2), AwayGoals: intp(1),
			},
			winner: 1, ok: true,
		},
		{
			name: "away win",
			match: Match{
				Status: MatchStatusCompleted, HomeTeamID: 1, AwayTeamID: 2,
				HomeGoals: intp(0), AwayGoals: intp(3),
			},
			winner: 2, ok: true,
		},
		{
			name: "group draw has no winner",
			match: Match{
				Status: MatchStatusCompleted, HomeTeamID: 1, AwayTeamID: 2,
				HomeGoals: intp(1), AwayGoals: intp(1),
			},
		},
		{
			name: "penalties decide a level elimination match",
			match: Match{
				Status: MatchStatusCompleted, HomeTeamID: 1, AwayTeamID: 2,
				PhaseID:   &phaseID,
				HomeGoals: intp(1), AwayGoals: intp(1),
				HomePenalties: intp(4), AwayPenalties: intp(3),
			},
			winner: 1, ok: true,
		},
		{
			name: "walkover beneficiary wins",
			match: Match{
				Status: MatchStatusCompleted, HomeTeamID: 1, AwayTeamID: 2,
				WalkoverWinnerID: &walkoverWinner,
				WalkoverReason:   &reason,
				HomeGoals:        intp(0), AwayGoals: intp(WalkoverGoals),
			},
			winner: 2, ok: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winner, ok := tt.match.WinnerTeamID()
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.winner, winner)
		})
	}
}

func TestOutcomeRoundTrip(t *testing.T) {
	reason := WalkoverSanction
	winner := 1

	t.Run("normal", func(t *testing.T) {
		m := Match{
			Status: MatchStatusCompleted, HomeTeamID: 1, AwayTeamID: 2,
			HomeGoals: intp(2), AwayGoals: intp(1),
		}
		assert.Equal(t, Normal{HomeGoals: 2, AwayGoals: 1}, m.Outcome())
	})

	t.Run("walkover", func(t *testing.T) {
		m := Match{
			Status: MatchStatusCompleted, HomeTeamID: 1, AwayTeamID: 2,
			WalkoverWinnerID: &winner,
			WalkoverReason:   &reason,
			HomeGoals:        intp(WalkoverGoals), AwayGoals: intp(0),
		}
		assert.Equal(t, Walkover{AbsentTeamID: 2, Reason: WalkoverSanction}, m.Outcome())
	})

	t.Run("penalty shootout", func(t *testing.T) {
		phaseID := 5
		m := Match{
			Status: MatchStatusCompleted, HomeTeamID: 1, AwayTeamID: 2,
			PhaseID:   &phaseID,
			HomeGoals: intp(0), AwayGoals: intp(0),
			HomePenalties: intp(5), AwayPenalties: intp(4),
		}
		assert.Equal(t, PenaltyShootout{HomePenalties: 5, AwayPenalties: 4}, m.Outcome())
	})

	t.Run("scheduled match has none", func(t *testing.T) {
		m := Match{Status: MatchStatusScheduled}
		assert.Nil(t, m.Outcome())
	})
}

func TestGroupLabels(t *testing.T) {
	tr := Tournament{GroupCount: 3}
	assert.Equal(t, []string{"A", "B", "C"}, tr.GroupLabels())
}

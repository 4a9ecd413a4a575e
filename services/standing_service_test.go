package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvallesteros/ligastar/models"
)

func TestStandingTable(t *testing.T) {
	f := newQualificationFixture(t)
	ctx := context.Background()

	players := newFakePlayerRepo()
	cards := newFakeCardRepo(f.matches, players)
	goals := newFakeGoalRepo()
	svc := NewStandingService(&fakeTxRunner{}, f.matches, cards, goals, f.standings, f.tournaments, discardLogger())

	_, err := svc.Table(ctx, 99)
	assert.ErrorIs(t, err, ErrTournamentNotFound)

	table, err := svc.Table(ctx, 1)
	require.NoError(t, err)
	require.Len(t, table.Groups, 2)
	assert.Equal(t, "A", table.Groups[0].Label)
	assert.Len(t, table.Groups[0].Rows, 4)
	assert.Equal(t, "B", table.Groups[1].Label)
	assert.Len(t, table.Overall, 8)
}

func TestRecomputeCountsCards(t *testing.T) {
	f := newQualificationFixture(t)
	ctx := context.Background()

	players := newFakePlayerRepo()
	players.add(models.Player{ID: 1, TeamID: 1, JerseyNumber: 10})
	cards := newFakeCardRepo(f.matches, players)
	goals := newFakeGoalRepo()
	svc := NewStandingService(&fakeTxRunner{}, f.matches, cards, goals, f.standings, f.tournaments, discardLogger())

	round := 1
	home, away := 1, 1
	match := f.matches.add(models.Match{
		TournamentID: 1, HomeTeamID: 1, AwayTeamID: 2, GroupRound: &round,
		Status: models.MatchStatusCompleted, HomeGoals: &home, AwayGoals: &away,
		KickoffAt: time.Now(),
	})
	require.NoError(t, cards.Create(ctx, nil, &models.Card{PlayerID: 1, MatchID: match.ID, Type: models.CardYellow}))
	require.NoError(t, cards.Create(ctx, nil, &models.Card{PlayerID: 1, MatchID: match.ID, Type: models.CardRed}))

	row, err := svc.Recompute(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, row.Played)
	assert.Equal(t, 1, row.Draws)
	assert.Equal(t, 1, row.YellowCards)
	assert.Equal(t, 1, row.RedCards)
}

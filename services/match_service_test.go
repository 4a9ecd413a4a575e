package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func intPtr(v int) *int { return &v }

type matchFixture struct {
	teams       *fakeTeamRepo
	players     *fakePlayerRepo
	matches     *fakeMatchRepo
	cards       *fakeCardRepo
	goals       *fakeGoalRepo
	parts       *fakeParticipationRepo
	categories  *fakeCategoryRepo
	standings   *fakeStandingRepo
	tournaments *fakeTournamentRepo
	broadcaster *fakeBroadcaster
	notifier    *fakeNotifier
	discipline  DisciplineService
	svc         MatchService
}

// newMatchFixture wires one tournament with two five-player teams in group A.
// Team 1 holds players 1-5, team 2 holds players 6-10, jerseys 1-5 each.
func newMatchFixture(t *testing.T) *matchFixture {
	t.Helper()

	f := &matchFixture{
		teams:       newFakeTeamRepo(),
		players:     newFakePlayerRepo(),
		matches:     newFakeMatchRepo(),
		goals:       newFakeGoalRepo(),
		parts:       newFakeParticipationRepo(),
		categories:  newFakeCategoryRepo(),
		tournaments: newFakeTournamentRepo(),
		broadcaster: &fakeBroadcaster{},
		notifier:    &fakeNotifier{},
	}
	f.cards = newFakeCardRepo(f.matches, f.players)
	f.standings = newFakeStandingRepo(f.teams)

	f.tournaments.add(models.Tournament{
		ID: 1, Name: "Clausura 2026", CategoryID: 1,
		Phase: models.PhaseGroups, GroupCount: 1, QualifiersPerGroup: 2,
		StartDate: time.Now(), Active: true,
	})
	f.categories.add(models.Category{
		ID: 1, Name: "Primera Fuerza",
		YellowCardLimit: 3, YellowSuspensionMatches: 1,
		RedSuspensionMatches: 2, AbsenceLimit: 2,
	}, 1)

	groupA := "A"
	f.teams.add(models.Team{ID: 1, TournamentID: 1, Name: "Atlas", GroupLabel: &groupA, Active: true})
	f.teams.add(models.Team{ID: 2, TournamentID: 1, Name: "Bravo", GroupLabel: &groupA, Active: true})
	for jersey := 1; jersey <= 5; jersey++ {
		f.players.add(models.Player{TeamID: 1, FirstName: "Home", JerseyNumber: jersey})
	}
	for jersey := 1; jersey <= 5; jersey++ {
		f.players.add(models.Player{TeamID: 2, FirstName: "Away", JerseyNumber: jersey})
	}

	tx := &fakeTxRunner{}
	logger := discardLogger()
	f.discipline = NewDisciplineService(tx, f.players, f.matches, f.cards, f.categories, logger)
	standingSvc := NewStandingService(tx, f.matches, f.cards, f.goals, f.standings, f.tournaments, logger)
	f.svc = NewMatchService(tx, f.matches, f.teams, f.players, f.cards, f.goals, f.parts,
		f.categories, f.standings, f.discipline, standingSvc, f.broadcaster, f.notifier, logger)
	return f
}

func (f *matchFixture) scheduleGroup(t *testing.T, home, away int) *models.Match {
	t.Helper()
	round := 1
	match, err := f.svc.Schedule(context.Background(), ScheduleMatchInput{
		TournamentID: 1, HomeTeamID: home, AwayTeamID: away,
		GroupRound: &round, KickoffAt: time.Now(),
	})
	require.NoError(t, err)
	return match
}

func (f *matchFixture) scheduleElimination(t *testing.T, home, away int) *models.Match {
	t.Helper()
	phaseID := 1
	match, err := f.svc.Schedule(context.Background(), ScheduleMatchInput{
		TournamentID: 1, HomeTeamID: home, AwayTeamID: away,
		PhaseID: &phaseID, KickoffAt: time.Now(),
	})
	require.NoError(t, err)
	return match
}

// fullSheet fields every eligible player of both teams as a starter.
func (f *matchFixture) fullSheet() *MatchSheet {
	sheet := &MatchSheet{}
	players, _ := f.players.ListByTeams(context.Background(), nil, []int{1, 2})
	for _, p := range players {
		if p.Suspended {
			continue
		}
		sheet.Participations = append(sheet.Participations, SheetEntry{
			PlayerID: p.ID, Starter: true, JerseyNumber: p.JerseyNumber,
		})
	}
	return sheet
}

func (f *matchFixture) standing(t *testing.T, teamID int) *models.TeamStatistics {
	t.Helper()
	row, err := f.standings.GetByTeamAndTournament(context.Background(), nil, teamID, 1)
	require.NoError(t, err)
	return row
}

func TestScheduleValidation(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	f.teams.add(models.Team{ID: 3, TournamentID: 2, Name: "Foreign", Active: true})
	f.teams.add(models.Team{ID: 4, TournamentID: 1, Name: "Excluded", Active: false, Excluded: true})
	f.teams.add(models.Team{ID: 5, TournamentID: 1, Name: "Inactive", Active: false})

	round := 1
	phaseID := 1
	tests := []struct {
		name    string
		input   ScheduleMatchInput
		wantErr error
	}{
		{
			name:    "same team on both sides",
			input:   ScheduleMatchInput{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 1, GroupRound: &round},
			wantErr: ErrSameTeam,
		},
		{
			name:    "round and phase together",
			input:   ScheduleMatchInput{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 2, GroupRound: &round, PhaseID: &phaseID},
			wantErr: ErrRoundXorPhase,
		},
		{
			name:    "neither round nor phase",
			input:   ScheduleMatchInput{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 2},
			wantErr: ErrRoundXorPhase,
		},
		{
			name:    "unknown team",
			input:   ScheduleMatchInput{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 99, GroupRound: &round},
			wantErr: ErrTeamNotFound,
		},
		{
			name:    "team from another tournament",
			input:   ScheduleMatchInput{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 3, GroupRound: &round},
			wantErr: ErrTeamMismatch,
		},
		{
			name:    "excluded team",
			input:   ScheduleMatchInput{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 4, GroupRound: &round},
			wantErr: ErrTeamExcluded,
		},
		{
			name:    "inactive team",
			input:   ScheduleMatchInput{TournamentID: 1, HomeTeamID: 1, AwayTeamID: 5, GroupRound: &round},
			wantErr: ErrTeamInactive,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Schedule(ctx, tc.input)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}

	match := f.scheduleGroup(t, 1, 2)
	assert.Equal(t, models.MatchStatusScheduled, match.Status)
	stored, err := f.svc.GetByID(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.HomeTeamID)
	assert.Equal(t, 2, stored.AwayTeamID)
}

func TestCompleteMatchNormal(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	match := f.scheduleGroup(t, 1, 2)

	sheet := f.fullSheet()
	sheet.Goals = []SheetGoal{
		{PlayerID: 1, Minute: intPtr(12)},
		{PlayerID: 1, Minute: intPtr(55)},
		{PlayerID: 6, Minute: intPtr(80)},
	}

	result, err := f.svc.CompleteMatch(ctx, match.ID, models.Normal{HomeGoals: 2, AwayGoals: 1}, sheet)
	require.NoError(t, err)
	require.True(t, result.Match.Completed())
	assert.Equal(t, 2, *result.Match.HomeGoals)
	assert.Equal(t, 1, *result.Match.AwayGoals)
	assert.Equal(t, []int{1, 2}, result.StatisticsUpdated)
	assert.Empty(t, result.SuspensionsChanged)
	assert.Nil(t, result.ExcludedTeamID)

	home := f.standing(t, 1)
	assert.Equal(t, 1, home.Played)
	assert.Equal(t, 1, home.Wins)
	assert.Equal(t, 3, home.Points)
	assert.Equal(t, 2, home.GoalsFor)
	assert.Equal(t, 1, home.GoalsAgainst)
	assert.Equal(t, 1, home.GoalDifference)

	away := f.standing(t, 2)
	assert.Equal(t, 1, away.Losses)
	assert.Equal(t, 0, away.Points)
	assert.Equal(t, -1, away.GoalDifference)

	goals, err := f.goals.ListByMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Len(t, goals, 3)
	parts, err := f.parts.ListByMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Len(t, parts, 10)

	require.Len(t, f.broadcaster.events, 2)
	assert.Equal(t, EventMatchCompleted, f.broadcaster.events[0].Type)
	assert.Equal(t, EventStandingsUpdated, f.broadcaster.events[1].Type)

	_, err = f.svc.CompleteMatch(ctx, match.ID, models.Normal{HomeGoals: 1, AwayGoals: 0}, f.fullSheet())
	assert.ErrorIs(t, err, ErrMatchAlreadyCompleted)
}

func TestCompleteMatchOutcomeRules(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	group := f.scheduleGroup(t, 1, 2)
	elim := f.scheduleElimination(t, 1, 2)

	tests := []struct {
		name    string
		matchID int
		outcome models.Outcome
		sheet   *MatchSheet
		wantErr error
	}{
		{
			name:    "nil outcome",
			matchID: group.ID,
			outcome: nil,
			sheet:   f.fullSheet(),
			wantErr: ErrInvalidResult,
		},
		{
			name:    "negative score",
			matchID: group.ID,
			outcome: models.Normal{HomeGoals: -1, AwayGoals: 0},
			sheet:   f.fullSheet(),
			wantErr: ErrInvalidResult,
		},
		{
			name:    "played match without a sheet",
			matchID: group.ID,
			outcome: models.Normal{HomeGoals: 1, AwayGoals: 0},
			sheet:   nil,
			wantErr: ErrInvalidResult,
		},
		{
			name:    "elimination draw without penalties",
			matchID: elim.ID,
			outcome: models.Normal{HomeGoals: 1, AwayGoals: 1},
			sheet:   f.fullSheet(),
			wantErr: ErrPenaltiesRequired,
		},
		{
			name:    "penalties on a group match",
			matchID: group.ID,
			outcome: models.PenaltyShootout{HomeGoals: 1, AwayGoals: 1, HomePenalties: 4, AwayPenalties: 3},
			sheet:   f.fullSheet(),
			wantErr: ErrPenaltiesNotAllowed,
		},
		{
			name:    "penalties after a decided score",
			matchID: elim.ID,
			outcome: models.PenaltyShootout{HomeGoals: 2, AwayGoals: 1, HomePenalties: 4, AwayPenalties: 3},
			sheet:   f.fullSheet(),
			wantErr: ErrPenaltiesNotAllowed,
		},
		{
			name:    "tied shootout",
			matchID: elim.ID,
			outcome: models.PenaltyShootout{HomeGoals: 0, AwayGoals: 0, HomePenalties: 4, AwayPenalties: 4},
			sheet:   f.fullSheet(),
			wantErr: ErrPenaltiesTied,
		},
		{
			name:    "walkover with a sheet",
			matchID: group.ID,
			outcome: models.Walkover{AbsentTeamID: 2, Reason: models.WalkoverNoShow},
			sheet:   f.fullSheet(),
			wantErr: ErrInvalidResult,
		},
		{
			name:    "walkover by a team outside the match",
			matchID: group.ID,
			outcome: models.Walkover{AbsentTeamID: 9, Reason: models.WalkoverNoShow},
			sheet:   nil,
			wantErr: ErrTeamMismatch,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CompleteMatch(ctx, tc.matchID, tc.outcome, tc.sheet)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCompleteMatchPenaltyShootout(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	match := f.scheduleElimination(t, 1, 2)

	result, err := f.svc.CompleteMatch(ctx, match.ID,
		models.PenaltyShootout{HomeGoals: 1, AwayGoals: 1, HomePenalties: 4, AwayPenalties: 3},
		f.fullSheet())
	require.NoError(t, err)

	winner, ok := result.Match.WinnerTeamID()
	require.True(t, ok)
	assert.Equal(t, 1, winner)
	assert.Equal(t, 4, *result.Match.HomePenalties)

	// The shootout decides who advances; on the table both teams drew.
	for _, teamID := range []int{1, 2} {
		row := f.standing(t, teamID)
		assert.Equal(t, 1, row.Draws, "team %d", teamID)
		assert.Equal(t, 1, row.Points, "team %d", teamID)
	}
}

func TestCompleteMatchSheetValidation(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	f.players.players[5].Suspended = true
	f.players.players[5].SuspensionMatchesLeft = 1

	withEntry := func(e SheetEntry) *MatchSheet {
		sheet := f.fullSheet()
		sheet.Participations = append(sheet.Participations, e)
		return sheet
	}

	tooManySubs := f.fullSheet()
	for i := range tooManySubs.Participations {
		if tooManySubs.Participations[i].PlayerID >= 6 {
			tooManySubs.Participations[i].Starter = false
		}
	}

	shortRoster := &MatchSheet{}
	for _, e := range f.fullSheet().Participations {
		if e.PlayerID == 1 || e.PlayerID == 2 {
			continue
		}
		shortRoster.Participations = append(shortRoster.Participations, e)
	}

	ghostScorer := f.fullSheet()
	ghostScorer.Goals = []SheetGoal{{PlayerID: 5}}

	ghostBooking := f.fullSheet()
	ghostBooking.Cards = []SheetCard{{PlayerID: 5, Type: models.CardYellow}}

	tests := []struct {
		name    string
		sheet   *MatchSheet
		wantErr error
	}{
		{
			name:    "player outside both teams",
			sheet:   withEntry(SheetEntry{PlayerID: 99, Starter: true, JerseyNumber: 9}),
			wantErr: ErrPlayerNotInMatch,
		},
		{
			name:    "player listed twice",
			sheet:   withEntry(SheetEntry{PlayerID: 1, Starter: true, JerseyNumber: 1}),
			wantErr: ErrValidationFailed,
		},
		{
			name:    "suspended player fielded",
			sheet:   withEntry(SheetEntry{PlayerID: 5, Starter: true, JerseyNumber: 5}),
			wantErr: ErrPlayerSuspended,
		},
		{
			name:    "wrong jersey number",
			sheet:   withEntry(SheetEntry{PlayerID: 5, Starter: true, JerseyNumber: 7}),
			wantErr: ErrPlayerSuspended, // suspension is checked before the jersey
		},
		{
			name: "jersey mismatch",
			sheet: func() *MatchSheet {
				sheet := f.fullSheet()
				sheet.Participations[0].JerseyNumber = 42
				return sheet
			}(),
			wantErr: ErrJerseyMismatch,
		},
		{
			name:    "roster below the minimum",
			sheet:   shortRoster,
			wantErr: ErrRosterTooSmall,
		},
		{
			name:    "too many substitutes",
			sheet:   tooManySubs,
			wantErr: ErrSubstitutionLimit,
		},
		{
			name:    "scorer missing from the sheet",
			sheet:   ghostScorer,
			wantErr: ErrValidationFailed,
		},
		{
			name:    "booked player missing from the sheet",
			sheet:   ghostBooking,
			wantErr: ErrValidationFailed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			match := f.scheduleGroup(t, 1, 2)
			_, err := f.svc.CompleteMatch(ctx, match.ID, models.Normal{HomeGoals: 1, AwayGoals: 0}, tc.sheet)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestCompleteMatchWalkover(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	first := f.scheduleGroup(t, 1, 2)
	second := f.scheduleGroup(t, 2, 1)

	result, err := f.svc.CompleteMatch(ctx, first.ID,
		models.Walkover{AbsentTeamID: 2, Reason: models.WalkoverNoShow}, nil)
	require.NoError(t, err)
	assert.Equal(t, models.WalkoverGoals, *result.Match.HomeGoals)
	assert.Equal(t, 0, *result.Match.AwayGoals)
	assert.Equal(t, 1, *result.Match.WalkoverWinnerID)
	assert.Nil(t, result.ExcludedTeamID)

	home := f.standing(t, 1)
	assert.Equal(t, 1, home.Wins)
	assert.Equal(t, 3, home.Points)
	assert.Equal(t, models.WalkoverGoals, home.GoalsFor)

	away := f.standing(t, 2)
	assert.Equal(t, 1, away.Losses)
	assert.Equal(t, models.WalkoverGoals, away.GoalsAgainst)

	absent, err := f.teams.GetByID(ctx, nil, 2)
	require.NoError(t, err)
	assert.Equal(t, 1, absent.Absences)
	assert.False(t, absent.Excluded)

	// The second absence crosses the category limit.
	result, err = f.svc.CompleteMatch(ctx, second.ID,
		models.Walkover{AbsentTeamID: 2, Reason: models.WalkoverNoShow}, nil)
	require.NoError(t, err)
	require.NotNil(t, result.ExcludedTeamID)
	assert.Equal(t, 2, *result.ExcludedTeamID)

	absent, err = f.teams.GetByID(ctx, nil, 2)
	require.NoError(t, err)
	assert.True(t, absent.Excluded)
	assert.False(t, absent.Active)
	assert.Equal(t, []int{2}, f.notifier.exclusionNotices)

	var excludedEvents int
	for _, e := range f.broadcaster.events {
		if e.Type == EventTeamExcluded {
			excludedEvents++
		}
	}
	assert.Equal(t, 1, excludedEvents)
}

func TestCompleteMatchRedCardSuspends(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	match := f.scheduleGroup(t, 1, 2)

	sheet := f.fullSheet()
	sheet.Cards = []SheetCard{{PlayerID: 3, Type: models.CardRed, Minute: intPtr(60)}}

	result, err := f.svc.CompleteMatch(ctx, match.ID, models.Normal{HomeGoals: 0, AwayGoals: 0}, sheet)
	require.NoError(t, err)
	assert.Empty(t, result.SuspensionsChanged)

	player, err := f.players.GetByID(ctx, nil, 3)
	require.NoError(t, err)
	assert.True(t, player.Suspended)
	assert.Equal(t, 2, player.SuspensionMatchesLeft)
	assert.Equal(t, []int{3}, f.notifier.suspensionNotices)

	home := f.standing(t, 1)
	assert.Equal(t, 1, home.RedCards)
}

func TestCompleteMatchNoticeSurvivesTeamLookupFailure(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))
	tx := &fakeTxRunner{}
	standingSvc := NewStandingService(tx, f.matches, f.cards, f.goals, f.standings, f.tournaments, logger)
	svc := NewMatchService(tx, f.matches, f.teams, f.players, f.cards, f.goals, f.parts,
		f.categories, f.standings, f.discipline, standingSvc, f.broadcaster, f.notifier, logger)

	match := f.scheduleGroup(t, 1, 2)
	sheet := f.fullSheet()
	sheet.Cards = []SheetCard{{PlayerID: 3, Type: models.CardRed, Minute: intPtr(60)}}
	f.teams.getByIDErr = errors.New("connection reset")

	_, err := svc.CompleteMatch(ctx, match.ID, models.Normal{HomeGoals: 0, AwayGoals: 0}, sheet)
	require.NoError(t, err)
	assert.Empty(t, f.notifier.suspensionNotices)
	assert.Contains(t, logs.String(), "failed to load team for suspension notice")
}

func TestCompleteMatchReleasesServedSuspensions(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	match := f.scheduleGroup(t, 1, 2)

	// Player 5 sits this match out; player 4 gets sent off during it.
	f.players.players[5].Suspended = true
	f.players.players[5].SuspensionMatchesLeft = 1

	sheet := f.fullSheet()
	sheet.Cards = []SheetCard{{PlayerID: 4, Type: models.CardRed}}

	result, err := f.svc.CompleteMatch(ctx, match.ID, models.Normal{HomeGoals: 0, AwayGoals: 0}, sheet)
	require.NoError(t, err)
	assert.Equal(t, []int{5}, result.SuspensionsChanged)

	released, err := f.players.GetByID(ctx, nil, 5)
	require.NoError(t, err)
	assert.False(t, released.Suspended)
	assert.Equal(t, 0, released.SuspensionMatchesLeft)

	// The suspension earned in this match does not start serving in it.
	sentOff, err := f.players.GetByID(ctx, nil, 4)
	require.NoError(t, err)
	assert.True(t, sentOff.Suspended)
	assert.Equal(t, 2, sentOff.SuspensionMatchesLeft)
}

func TestReopenMatch(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()
	match := f.scheduleGroup(t, 1, 2)

	_, err := f.svc.ReopenMatch(ctx, match.ID)
	assert.ErrorIs(t, err, ErrMatchNotCompleted)

	sheet := f.fullSheet()
	sheet.Goals = []SheetGoal{{PlayerID: 1}, {PlayerID: 2}}
	sheet.Cards = []SheetCard{{PlayerID: 6, Type: models.CardYellow}}
	_, err = f.svc.CompleteMatch(ctx, match.ID, models.Normal{HomeGoals: 2, AwayGoals: 0}, sheet)
	require.NoError(t, err)

	reopened, err := f.svc.ReopenMatch(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusScheduled, reopened.Status)
	assert.Nil(t, reopened.HomeGoals)

	goals, err := f.goals.ListByMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Empty(t, goals)
	cards, err := f.cards.ListByMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Empty(t, cards)
	parts, err := f.parts.ListByMatch(ctx, nil, match.ID)
	require.NoError(t, err)
	assert.Empty(t, parts)

	for _, teamID := range []int{1, 2} {
		row := f.standing(t, teamID)
		assert.Equal(t, 0, row.Played, "team %d", teamID)
		assert.Equal(t, 0, row.Points, "team %d", teamID)
		assert.Equal(t, 0, row.YellowCards, "team %d", teamID)
	}
}

func TestDeleteMatch(t *testing.T) {
	f := newMatchFixture(t)
	ctx := context.Background()

	err := f.svc.DeleteMatch(ctx, 99)
	assert.ErrorIs(t, err, ErrMatchNotFound)

	match := f.scheduleGroup(t, 1, 2)
	_, err = f.svc.CompleteMatch(ctx, match.ID, models.Normal{HomeGoals: 3, AwayGoals: 1}, f.fullSheet())
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteMatch(ctx, match.ID))

	_, err = f.matches.GetByID(ctx, nil, match.ID)
	assert.ErrorIs(t, err, repositories.ErrMatchNotFound)
	home := f.standing(t, 1)
	assert.Equal(t, 0, home.Played)
	assert.Equal(t, 0, home.Points)
}

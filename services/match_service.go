package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
)

// SheetEntry registers one player on the match sheet.
type SheetEntry struct {
	PlayerID     int  `json:"player_id"`
	Starter      bool `json:"starter"`
	JerseyNumber int  `json:"jersey_number"`
}

// SheetGoal attributes one goal to a player. Own goals count for the
// opponent on the scoreboard; the score itself comes from the outcome.
type SheetGoal struct {
	PlayerID int  `json:"player_id"`
	Minute   *int `json:"minute,omitempty"`
	OwnGoal  bool `json:"own_goal"`
}

// SheetCard books one card during the match.
type SheetCard struct {
	PlayerID int             `json:"player_id"`
	Type     models.CardType `json:"type"`
	Minute   *int            `json:"minute,omitempty"`
}

// MatchSheet is the played-match paperwork: who was fielded, who scored, who
// was booked. Walkovers carry no sheet.
type MatchSheet struct {
	Participations []SheetEntry `json:"participations"`
	Goals          []SheetGoal  `json:"goals"`
	Cards          []SheetCard  `json:"cards"`
}

// ScheduleMatchInput creates a new fixture. Exactly one of GroupRound and
// PhaseID must be set.
type ScheduleMatchInput struct {
	TournamentID int       `json:"tournament_id"`
	HomeTeamID   int       `json:"home_team_id"`
	AwayTeamID   int       `json:"away_team_id"`
	GroupRound   *int      `json:"group_round,omitempty"`
	PhaseID      *int      `json:"phase_id,omitempty"`
	KickoffAt    time.Time `json:"kickoff_at"`
}

// CompleteMatchResult reports everything a completion changed.
type CompleteMatchResult struct {
	Match              *models.Match `json:"match"`
	StatisticsUpdated  []int         `json:"statistics_updated"`
	SuspensionsChanged []int         `json:"suspensions_changed"`
	ExcludedTeamID     *int          `json:"excluded_team_id,omitempty"`
}

// MatchService is the match result processor: the single place a match moves
// from scheduled to completed, with standings and discipline settled in the
// same transaction.
type MatchService interface {
	Schedule(ctx context.Context, input ScheduleMatchInput) (*models.Match, error)
	GetByID(ctx context.Context, matchID int) (*models.Match, error)
	ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]models.Match, error)
	ListUpcomingByTeam(ctx context.Context, teamID int) ([]models.Match, error)

	// CompleteMatch finalizes a scheduled match with the given outcome.
	// The sheet is required for played outcomes and must be nil for
	// walkovers.
	CompleteMatch(ctx context.Context, matchID int, outcome models.Outcome, sheet *MatchSheet) (*CompleteMatchResult, error)

	// ReopenMatch reverts a completed match to scheduled, discarding its
	// sheet and re-deriving both teams' statistics without it.
	ReopenMatch(ctx context.Context, matchID int) (*models.Match, error)

	// DeleteMatch removes a match entirely; a completed one is reopened
	// first so statistics are re-derived as if it never existed.
	DeleteMatch(ctx context.Context, matchID int) error
}

type matchService struct {
	txRunner     TxRunner
	matchRepo    repositories.MatchRepository
	teamRepo     repositories.TeamRepository
	playerRepo   repositories.PlayerRepository
	cardRepo     repositories.CardRepository
	goalRepo     repositories.GoalRepository
	partRepo     repositories.ParticipationRepository
	categoryRepo repositories.CategoryRepository
	standingRepo repositories.StandingRepository
	discipline   DisciplineService
	standingSvc  StandingService
	broadcaster  EventBroadcaster
	notifier     Notifier
	logger       *slog.Logger
}

func NewMatchService(
	txRunner TxRunner,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	playerRepo repositories.PlayerRepository,
	cardRepo repositories.CardRepository,
	goalRepo repositories.GoalRepository,
	partRepo repositories.ParticipationRepository,
	categoryRepo repositories.CategoryRepository,
	standingRepo repositories.StandingRepository,
	discipline DisciplineService,
	standingSvc StandingService,
	broadcaster EventBroadcaster,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		txRunner:     txRunner,
		matchRepo:    matchRepo,
		teamRepo:     teamRepo,
		playerRepo:   playerRepo,
		cardRepo:     cardRepo,
		goalRepo:     goalRepo,
		partRepo:     partRepo,
		categoryRepo: categoryRepo,
		standingRepo: standingRepo,
		discipline:   discipline,
		standingSvc:  standingSvc,
		broadcaster:  broadcaster,
		notifier:     notifier,
		logger:       logger,
	}
}

func (s *matchService) Schedule(ctx context.Context, input ScheduleMatchInput) (*models.Match, error) {
	if input.HomeTeamID == input.AwayTeamID {
		return nil, ErrSameTeam
	}
	if (input.GroupRound == nil) == (input.PhaseID == nil) {
		return nil, ErrRoundXorPhase
	}

	var match *models.Match
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, teamID := range [2]int{input.HomeTeamID, input.AwayTeamID} {
			team, err := s.teamRepo.GetByID(ctx, exec, teamID)
			if err != nil {
				return mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
			}
			if team.TournamentID != input.TournamentID {
				return fmt.Errorf("%w: team %d", ErrTeamMismatch, teamID)
			}
			if team.Excluded {
				return fmt.Errorf("%w: team %d", ErrTeamExcluded, teamID)
			}
			if !team.Active {
				return fmt.Errorf("%w: team %d", ErrTeamInactive, teamID)
			}
		}

		match = &models.Match{
			TournamentID: input.TournamentID,
			HomeTeamID:   input.HomeTeamID,
			AwayTeamID:   input.AwayTeamID,
			GroupRound:   input.GroupRound,
			PhaseID:      input.PhaseID,
			Status:       models.MatchStatusScheduled,
			KickoffAt:    input.KickoffAt,
		}
		return s.matchRepo.Create(ctx, exec, match)
	})
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (s *matchService) GetByID(ctx context.Context, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, nil, matchID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrMatchNotFound, ErrMatchNotFound)
	}
	return match, nil
}

func (s *matchService) ListByTournament(ctx context.Context, tournamentID int, filter repositories.MatchFilter) ([]models.Match, error) {
	return s.matchRepo.ListByTournament(ctx, nil, tournamentID, filter)
}

func (s *matchService) ListUpcomingByTeam(ctx context.Context, teamID int) ([]models.Match, error) {
	return s.matchRepo.ListScheduledByTeam(ctx, nil, teamID)
}

func (s *matchService) CompleteMatch(ctx context.Context, matchID int, outcome models.Outcome, sheet *MatchSheet) (*CompleteMatchResult, error) {
	if outcome == nil {
		return nil, fmt.Errorf("%w: an outcome is required", ErrInvalidResult)
	}

	var (
		result       *CompleteMatchResult
		excludedTeam *models.Team
		suspended    []*models.Player
	)
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrMatchNotFound, ErrMatchNotFound)
		}
		if match.Completed() {
			return ErrMatchAlreadyCompleted
		}

		category, err := s.categoryRepo.GetByTournamentID(ctx, exec, match.TournamentID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrCategoryNotFound, ErrCategoryNotFound)
		}

		players, err := s.playerRepo.ListByTeams(ctx, exec, []int{match.HomeTeamID, match.AwayTeamID})
		if err != nil {
			return err
		}

		// Snapshot the players already suspended before this match's own
		// cards are processed: only their suspensions count this match as
		// served.
		var suspendedBefore []models.Player
		for _, p := range players {
			if p.Suspended {
				suspendedBefore = append(suspendedBefore, p)
			}
		}

		switch o := outcome.(type) {
		case models.Normal:
			if match.Elimination() && o.HomeGoals == o.AwayGoals {
				return ErrPenaltiesRequired
			}
			suspended, err = s.commitPlayedMatch(ctx, exec, match, category, players, sheet, o.HomeGoals, o.AwayGoals, nil, nil)
			if err != nil {
				return err
			}
		case models.PenaltyShootout:
			if !match.Elimination() {
				return ErrPenaltiesNotAllowed
			}
			if o.HomeGoals != o.AwayGoals {
				return fmt.Errorf("%w: regular score is not level", ErrPenaltiesNotAllowed)
			}
			if o.HomePenalties == o.AwayPenalties {
				return ErrPenaltiesTied
			}
			hp, ap := o.HomePenalties, o.AwayPenalties
			suspended, err = s.commitPlayedMatch(ctx, exec, match, category, players, sheet, o.HomeGoals, o.AwayGoals, &hp, &ap)
			if err != nil {
				return err
			}
		case models.Walkover:
			if sheet != nil {
				return fmt.Errorf("%w: a walkover carries no match sheet", ErrInvalidResult)
			}
			excludedTeam, err = s.commitWalkover(ctx, exec, match, category, o)
			if err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unsupported outcome", ErrInvalidResult)
		}

		// Both teams' statistics are re-derived inside the same
		// transaction, so a reader never sees a completed match with
		// stale standings.
		for _, teamID := range [2]int{match.HomeTeamID, match.AwayTeamID} {
			if _, err := s.standingSvc.RecomputeExec(ctx, exec, teamID, match.TournamentID); err != nil {
				return err
			}
		}

		changed, err := s.discipline.ReleaseServed(ctx, exec, suspendedBefore)
		if err != nil {
			return err
		}

		result = &CompleteMatchResult{
			Match:              match,
			StatisticsUpdated:  []int{match.HomeTeamID, match.AwayTeamID},
			SuspensionsChanged: changed,
		}
		if excludedTeam != nil {
			result.ExcludedTeamID = &excludedTeam.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	broadcast(s.broadcaster, result.Match.TournamentID, EventMatchCompleted, result.Match)
	broadcast(s.broadcaster, result.Match.TournamentID, EventStandingsUpdated, result.StatisticsUpdated)
	if s.notifier != nil {
		for _, p := range suspended {
			team, err := s.teamRepo.GetByID(ctx, nil, p.TeamID)
			if err != nil {
				s.logger.Error("failed to load team for suspension notice",
					slog.Int("player_id", p.ID), slog.Int("team_id", p.TeamID), slog.Any("error", err))
				continue
			}
			if err := s.notifier.SendSuspensionNotice(team, p); err != nil {
				s.logger.Error("failed to send suspension notice",
					slog.Int("player_id", p.ID), slog.Any("error", err))
			}
		}
	}
	if excludedTeam != nil {
		broadcast(s.broadcaster, result.Match.TournamentID, EventTeamExcluded, excludedTeam)
		if s.notifier != nil {
			if err := s.notifier.SendExclusionNotice(excludedTeam); err != nil {
				s.logger.Error("failed to send exclusion notice",
					slog.Int("team_id", excludedTeam.ID), slog.Any("error", err))
			}
		}
	}
	s.logger.Info("match completed",
		slog.Int("match_id", matchID),
		slog.Int("tournament_id", result.Match.TournamentID))
	return result, nil
}

// commitPlayedMatch validates and persists the sheet of a played match, then
// writes the result onto the row. It returns the players this match's own
// cards left suspended.
func (s *matchService) commitPlayedMatch(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, category *models.Category, players []models.Player, sheet *MatchSheet, homeGoals, awayGoals int, homePens, awayPens *int) ([]*models.Player, error) {
	if homeGoals < 0 || awayGoals < 0 {
		return nil, fmt.Errorf("%w: negative score", ErrInvalidResult)
	}
	if sheet == nil {
		return nil, fmt.Errorf("%w: a played match needs a match sheet", ErrInvalidResult)
	}

	byID := make(map[int]*models.Player, len(players))
	for i := range players {
		byID[players[i].ID] = &players[i]
	}

	rosterSize := map[int]int{}
	substitutes := map[int]int{}
	entries := make([]models.Participation, 0, len(sheet.Participations))
	seen := make(map[int]bool, len(sheet.Participations))
	for _, e := range sheet.Participations {
		player, ok := byID[e.PlayerID]
		if !ok {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerNotInMatch, e.PlayerID)
		}
		if seen[e.PlayerID] {
			return nil, fmt.Errorf("%w: player %d listed twice", ErrValidationFailed, e.PlayerID)
		}
		seen[e.PlayerID] = true
		if player.Suspended {
			return nil, fmt.Errorf("%w: player %d", ErrPlayerSuspended, e.PlayerID)
		}
		if e.JerseyNumber != player.JerseyNumber {
			return nil, fmt.Errorf("%w: player %d wears %d, sheet says %d",
				ErrJerseyMismatch, e.PlayerID, player.JerseyNumber, e.JerseyNumber)
		}
		rosterSize[player.TeamID]++
		if !e.Starter {
			substitutes[player.TeamID]++
		}
		entries = append(entries, models.Participation{
			MatchID:      match.ID,
			PlayerID:     e.PlayerID,
			Starter:      e.Starter,
			JerseyNumber: e.JerseyNumber,
		})
	}

	for _, teamID := range [2]int{match.HomeTeamID, match.AwayTeamID} {
		if rosterSize[teamID] < models.MinRosterSize {
			return nil, fmt.Errorf("%w: team %d fielded %d of %d",
				ErrRosterTooSmall, teamID, rosterSize[teamID], models.MinRosterSize)
		}
		if substitutes[teamID] > models.MaxSubstitutions {
			return nil, fmt.Errorf("%w: team %d used %d", ErrSubstitutionLimit, teamID, substitutes[teamID])
		}
	}

	if err := s.partRepo.BatchCreate(ctx, exec, entries); err != nil {
		return nil, err
	}

	for _, g := range sheet.Goals {
		if _, ok := byID[g.PlayerID]; !ok {
			return nil, fmt.Errorf("%w: scorer %d", ErrPlayerNotInMatch, g.PlayerID)
		}
		if !seen[g.PlayerID] {
			return nil, fmt.Errorf("%w: scorer %d is not on the sheet", ErrValidationFailed, g.PlayerID)
		}
		goal := &models.Goal{MatchID: match.ID, PlayerID: g.PlayerID, Minute: g.Minute, OwnGoal: g.OwnGoal}
		if err := s.goalRepo.Create(ctx, exec, goal); err != nil {
			return nil, err
		}
	}

	var suspended []*models.Player
	for _, c := range sheet.Cards {
		player, ok := byID[c.PlayerID]
		if !ok {
			return nil, fmt.Errorf("%w: booked player %d", ErrPlayerNotInMatch, c.PlayerID)
		}
		if !seen[c.PlayerID] {
			return nil, fmt.Errorf("%w: booked player %d is not on the sheet", ErrValidationFailed, c.PlayerID)
		}
		wasSuspended := player.Suspended
		cardResult, err := s.discipline.RecordCardExec(ctx, exec, player, match, category, c.Type, c.Minute)
		if err != nil {
			return nil, err
		}
		if cardResult.Suspended && !wasSuspended {
			suspended = append(suspended, player)
		}
	}

	match.Status = models.MatchStatusCompleted
	match.HomeGoals = &homeGoals
	match.AwayGoals = &awayGoals
	match.HomePenalties = homePens
	match.AwayPenalties = awayPens
	if err := s.matchRepo.UpdateResult(ctx, exec, match); err != nil {
		return nil, err
	}
	return suspended, nil
}

// commitWalkover awards the fixed score to the present team and increments
// the absent team's counter, excluding it when the category limit is
// crossed. It returns the excluded team, if any.
func (s *matchService) commitWalkover(ctx context.Context, exec repositories.SQLExecutor, match *models.Match, category *models.Category, o models.Walkover) (*models.Team, error) {
	if !match.HasTeam(o.AbsentTeamID) {
		return nil, fmt.Errorf("%w: absent team %d", ErrTeamMismatch, o.AbsentTeamID)
	}
	winnerID := match.OpponentOf(o.AbsentTeamID)

	winnerGoals, absentGoals := models.WalkoverGoals, 0
	if match.HomeTeamID == winnerID {
		match.HomeGoals, match.AwayGoals = &winnerGoals, &absentGoals
	} else {
		match.HomeGoals, match.AwayGoals = &absentGoals, &winnerGoals
	}
	reason := o.Reason
	match.WalkoverReason = &reason
	match.WalkoverWinnerID = &winnerID
	match.Status = models.MatchStatusCompleted
	if err := s.matchRepo.UpdateResult(ctx, exec, match); err != nil {
		return nil, err
	}

	absences, err := s.teamRepo.IncrementAbsences(ctx, exec, o.AbsentTeamID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrTeamNotFound, ErrTeamNotFound)
	}
	if absences < category.AbsenceLimit {
		return nil, nil
	}

	// The team crossed the absence limit: excluded and deactivated. Its
	// remaining fixtures stay scheduled; rescheduling is the organizer's
	// call.
	if err := s.teamRepo.MarkExcluded(ctx, exec, o.AbsentTeamID); err != nil {
		return nil, err
	}
	team, err := s.teamRepo.GetByID(ctx, exec, o.AbsentTeamID)
	if err != nil {
		return nil, err
	}
	s.logger.Warn("team excluded for absences",
		slog.Int("team_id", team.ID), slog.Int("absences", absences))
	return team, nil
}

func (s *matchService) ReopenMatch(ctx context.Context, matchID int) (*models.Match, error) {
	var match *models.Match
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		var err error
		match, err = s.reopenExec(ctx, exec, matchID)
		return err
	})
	if err != nil {
		return nil, err
	}
	broadcast(s.broadcaster, match.TournamentID, EventStandingsUpdated, []int{match.HomeTeamID, match.AwayTeamID})
	return match, nil
}

// reopenExec reverts the match and re-derives both teams' statistics as if
// it had never been completed. Sheet rows are dropped with it, so the card
// totals replay cleanly too.
func (s *matchService) reopenExec(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
	if err != nil {
		return nil, mapRepoNotFound(err, repositories.ErrMatchNotFound, ErrMatchNotFound)
	}
	if !match.Completed() {
		return nil, ErrMatchNotCompleted
	}

	if err := s.cardRepo.DeleteByMatch(ctx, exec, matchID); err != nil {
		return nil, err
	}
	if err := s.goalRepo.DeleteByMatch(ctx, exec, matchID); err != nil {
		return nil, err
	}
	if err := s.partRepo.DeleteByMatch(ctx, exec, matchID); err != nil {
		return nil, err
	}
	if err := s.matchRepo.Reopen(ctx, exec, matchID); err != nil {
		return nil, err
	}

	for _, teamID := range [2]int{match.HomeTeamID, match.AwayTeamID} {
		if _, err := s.standingSvc.RecomputeExec(ctx, exec, teamID, match.TournamentID); err != nil {
			return nil, err
		}
	}

	match.Status = models.MatchStatusScheduled
	match.HomeGoals, match.AwayGoals = nil, nil
	match.HomePenalties, match.AwayPenalties = nil, nil
	match.WalkoverReason, match.WalkoverWinnerID = nil, nil
	return match, nil
}

func (s *matchService) DeleteMatch(ctx context.Context, matchID int) error {
	var tournamentID int
	var teams [2]int
	err := s.txRunner.RunInTx(ctx, func(exec repositories.SQLExecutor) error {
		match, err := s.matchRepo.GetByIDForUpdate(ctx, exec, matchID)
		if err != nil {
			return mapRepoNotFound(err, repositories.ErrMatchNotFound, ErrMatchNotFound)
		}
		tournamentID = match.TournamentID
		teams = [2]int{match.HomeTeamID, match.AwayTeamID}

		// A completed match is reopened first so the recompute already ran
		// without it; the row deletion then changes nothing derived.
		if match.Completed() {
			if _, err := s.reopenExec(ctx, exec, matchID); err != nil {
				return err
			}
		}
		return s.matchRepo.Delete(ctx, exec, matchID)
	})
	if err != nil {
		return err
	}
	broadcast(s.broadcaster, tournamentID, EventStandingsUpdated, teams[:])
	s.logger.Info("match deleted", slog.Int("match_id", matchID))
	return nil
}

package services

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
)

// The fakes below keep everything in maps and hand out copies, so tests
// exercise the services exactly as they run against postgres, minus the SQL.

type fakeTxRunner struct {
	calls int
}

func (r *fakeTxRunner) RunInTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	r.calls++
	return fn(nil)
}

type broadcastEvent struct {
	TournamentID int
	Type         string
	Payload      interface{}
}

type fakeBroadcaster struct {
	events []broadcastEvent
}

func (b *fakeBroadcaster) BroadcastToTournament(tournamentID int, eventType string, payload interface{}) {
	b.events = append(b.events, broadcastEvent{TournamentID: tournamentID, Type: eventType, Payload: payload})
}

type fakeNotifier struct {
	suspensionNotices []int
	exclusionNotices  []int
}

func (n *fakeNotifier) SendSuspensionNotice(team *models.Team, player *models.Player) error {
	n.suspensionNotices = append(n.suspensionNotices, player.ID)
	return nil
}

func (n *fakeNotifier) SendExclusionNotice(team *models.Team) error {
	n.exclusionNotices = append(n.exclusionNotices, team.ID)
	return nil
}

type fakeTeamRepo struct {
	teams      map[int]*models.Team
	nextID     int
	getByIDErr error
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{teams: map[int]*models.Team{}, nextID: 1}
}

func (r *fakeTeamRepo) add(team models.Team) *models.Team {
	if team.ID == 0 {
		team.ID = r.nextID
	}
	if team.ID >= r.nextID {
		r.nextID = team.ID + 1
	}
	r.teams[team.ID] = &team
	return &team
}

func (r *fakeTeamRepo) Create(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	team.ID = r.nextID
	r.nextID++
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Team, error) {
	if r.getByIDErr != nil {
		return nil, r.getByIDErr
	}
	team, ok := r.teams[id]
	if !ok {
		return nil, repositories.ErrTeamNotFound
	}
	copied := *team
	return &copied, nil
}

func (r *fakeTeamRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.Team, error) {
	var out []models.Team
	for _, t := range r.teams {
		if t.TournamentID == tournamentID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) ListByGroup(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupLabel string) ([]models.Team, error) {
	var out []models.Team
	for _, t := range r.teams {
		if t.TournamentID == tournamentID && t.GroupLabel != nil && *t.GroupLabel == groupLabel {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTeamRepo) Update(ctx context.Context, exec repositories.SQLExecutor, team *models.Team) error {
	if _, ok := r.teams[team.ID]; !ok {
		return repositories.ErrTeamNotFound
	}
	copied := *team
	r.teams[team.ID] = &copied
	return nil
}

func (r *fakeTeamRepo) IncrementAbsences(ctx context.Context, exec repositories.SQLExecutor, id int) (int, error) {
	team, ok := r.teams[id]
	if !ok {
		return 0, repositories.ErrTeamNotFound
	}
	team.Absences++
	return team.Absences, nil
}

func (r *fakeTeamRepo) MarkExcluded(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.Excluded = true
	team.Active = false
	return nil
}

func (r *fakeTeamRepo) UpdateLogoKey(ctx context.Context, exec repositories.SQLExecutor, id int, key *string) error {
	team, ok := r.teams[id]
	if !ok {
		return repositories.ErrTeamNotFound
	}
	team.LogoKey = key
	return nil
}

func (r *fakeTeamRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.teams[id]; !ok {
		return repositories.ErrTeamNotFound
	}
	delete(r.teams, id)
	return nil
}

type fakePlayerRepo struct {
	players map[int]*models.Player
	nextID  int
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{players: map[int]*models.Player{}, nextID: 1}
}

func (r *fakePlayerRepo) add(player models.Player) *models.Player {
	if player.ID == 0 {
		player.ID = r.nextID
	}
	if player.ID >= r.nextID {
		r.nextID = player.ID + 1
	}
	r.players[player.ID] = &player
	return &player
}

func (r *fakePlayerRepo) Create(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	player.ID = r.nextID
	r.nextID++
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Player, error) {
	player, ok := r.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	copied := *player
	return &copied, nil
}

func (r *fakePlayerRepo) ListByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]models.Player, error) {
	return r.ListByTeams(ctx, exec, []int{teamID})
}

func (r *fakePlayerRepo) ListByTeams(ctx context.Context, exec repositories.SQLExecutor, teamIDs []int) ([]models.Player, error) {
	want := map[int]bool{}
	for _, id := range teamIDs {
		want[id] = true
	}
	var out []models.Player
	for _, p := range r.players {
		if want[p.TeamID] {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePlayerRepo) Update(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	if _, ok := r.players[player.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	copied := *player
	r.players[player.ID] = &copied
	return nil
}

func (r *fakePlayerRepo) UpdateSuspension(ctx context.Context, exec repositories.SQLExecutor, player *models.Player) error {
	stored, ok := r.players[player.ID]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	stored.Suspended = player.Suspended
	stored.SuspensionMatchesLeft = player.SuspensionMatchesLeft
	stored.SuspensionEndsAt = player.SuspensionEndsAt
	return nil
}

func (r *fakePlayerRepo) UpdatePhotoKey(ctx context.Context, exec repositories.SQLExecutor, id int, key *string) error {
	player, ok := r.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	player.PhotoKey = key
	return nil
}

func (r *fakePlayerRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.players, id)
	return nil
}

type fakeMatchRepo struct {
	matches map[int]*models.Match
	nextID  int
}

func newFakeMatchRepo() *fakeMatchRepo {
	return &fakeMatchRepo{matches: map[int]*models.Match{}, nextID: 1}
}

func (r *fakeMatchRepo) add(match models.Match) *models.Match {
	if match.ID == 0 {
		match.ID = r.nextID
	}
	if match.ID >= r.nextID {
		r.nextID = match.ID + 1
	}
	if match.Status == "" {
		match.Status = models.MatchStatusScheduled
	}
	r.matches[match.ID] = &match
	return &match
}

func (r *fakeMatchRepo) Create(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	match.ID = r.nextID
	r.nextID++
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	match, ok := r.matches[id]
	if !ok {
		return nil, repositories.ErrMatchNotFound
	}
	copied := *match
	return &copied, nil
}

func (r *fakeMatchRepo) GetByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Match, error) {
	return r.GetByID(ctx, exec, id)
}

func (r *fakeMatchRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, filter repositories.MatchFilter) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.matches {
		if m.TournamentID != tournamentID {
			continue
		}
		if filter.GroupRound != nil && (m.GroupRound == nil || *m.GroupRound != *filter.GroupRound) {
			continue
		}
		if filter.PhaseID != nil && (m.PhaseID == nil || *m.PhaseID != *filter.PhaseID) {
			continue
		}
		if filter.Status != nil && m.Status != *filter.Status {
			continue
		}
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListCompletedByTeam(ctx context.Context, exec repositories.SQLExecutor, tournamentID, teamID int) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.Completed() && m.HasTeam(teamID) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) ListScheduledByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]models.Match, error) {
	var out []models.Match
	for _, m := range r.matches {
		if m.Status == models.MatchStatusScheduled && m.HasTeam(teamID) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMatchRepo) CountUnfinishedGroupMatches(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (int, error) {
	count := 0
	for _, m := range r.matches {
		if m.TournamentID == tournamentID && m.GroupRound != nil && !m.Completed() {
			count++
		}
	}
	return count, nil
}

func (r *fakeMatchRepo) UpdateResult(ctx context.Context, exec repositories.SQLExecutor, match *models.Match) error {
	if _, ok := r.matches[match.ID]; !ok {
		return repositories.ErrMatchNotFound
	}
	copied := *match
	r.matches[match.ID] = &copied
	return nil
}

func (r *fakeMatchRepo) Reopen(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	match, ok := r.matches[id]
	if !ok {
		return repositories.ErrMatchNotFound
	}
	match.Status = models.MatchStatusScheduled
	match.HomeGoals, match.AwayGoals = nil, nil
	match.HomePenalties, match.AwayPenalties = nil, nil
	match.WalkoverReason, match.WalkoverWinnerID = nil, nil
	return nil
}

func (r *fakeMatchRepo) Delete(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	if _, ok := r.matches[id]; !ok {
		return repositories.ErrMatchNotFound
	}
	delete(r.matches, id)
	return nil
}

type fakeCardRepo struct {
	cards   map[int]*models.Card
	nextID  int
	matches *fakeMatchRepo
	players *fakePlayerRepo
}

func newFakeCardRepo(matches *fakeMatchRepo, players *fakePlayerRepo) *fakeCardRepo {
	return &fakeCardRepo{cards: map[int]*models.Card{}, nextID: 1, matches: matches, players: players}
}

func (r *fakeCardRepo) Create(ctx context.Context, exec repositories.SQLExecutor, card *models.Card) error {
	card.ID = r.nextID
	r.nextID++
	copied := *card
	r.cards[card.ID] = &copied
	return nil
}

func (r *fakeCardRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Card, error) {
	card, ok := r.cards[id]
	if !ok {
		return nil, repositories.ErrCardNotFound
	}
	copied := *card
	return &copied, nil
}

func (r *fakeCardRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]models.Card, error) {
	var out []models.Card
	for _, c := range r.cards {
		if c.MatchID == matchID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCardRepo) ListUncountedYellow(ctx context.Context, exec repositories.SQLExecutor, playerID, tournamentID int) ([]models.Card, error) {
	var out []models.Card
	for _, c := range r.cards {
		if c.PlayerID != playerID || c.Type != models.CardYellow || c.Counted {
			continue
		}
		match, ok := r.matches.matches[c.MatchID]
		if !ok || match.TournamentID != tournamentID {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCardRepo) MarkCounted(ctx context.Context, exec repositories.SQLExecutor, cardIDs []int) error {
	for _, id := range cardIDs {
		if card, ok := r.cards[id]; ok {
			card.Counted = true
		}
	}
	return nil
}

func (r *fakeCardRepo) MarkFinePaid(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	card, ok := r.cards[id]
	if !ok {
		return repositories.ErrCardNotFound
	}
	if card.FinePaid {
		return repositories.ErrCardAlreadySettled
	}
	card.FinePaid = true
	return nil
}

func (r *fakeCardRepo) CountByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID, tournamentID int) (int, int, error) {
	yellow, red := 0, 0
	for _, c := range r.cards {
		player, ok := r.players.players[c.PlayerID]
		if !ok || player.TeamID != teamID {
			continue
		}
		match, ok := r.matches.matches[c.MatchID]
		if !ok || match.TournamentID != tournamentID {
			continue
		}
		switch c.Type {
		case models.CardYellow:
			yellow++
		case models.CardRed:
			red++
		}
	}
	return yellow, red, nil
}

func (r *fakeCardRepo) ListUnpaidByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]models.Card, error) {
	var out []models.Card
	for _, c := range r.cards {
		player, ok := r.players.players[c.PlayerID]
		if !ok || player.TeamID != teamID || c.FinePaid {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCardRepo) MostCarded(ctx context.Context, exec repositories.SQLExecutor, tournamentID, limit int) ([]repositories.CardTally, error) {
	return nil, nil
}

func (r *fakeCardRepo) DeleteByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	for id, c := range r.cards {
		if c.MatchID == matchID {
			delete(r.cards, id)
		}
	}
	return nil
}

type fakeGoalRepo struct {
	goals  map[int]*models.Goal
	nextID int
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{goals: map[int]*models.Goal{}, nextID: 1}
}

func (r *fakeGoalRepo) Create(ctx context.Context, exec repositories.SQLExecutor, goal *models.Goal) error {
	goal.ID = r.nextID
	r.nextID++
	copied := *goal
	r.goals[goal.ID] = &copied
	return nil
}

func (r *fakeGoalRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]models.Goal, error) {
	var out []models.Goal
	for _, g := range r.goals {
		if g.MatchID == matchID {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeGoalRepo) TopScorers(ctx context.Context, exec repositories.SQLExecutor, tournamentID, limit int) ([]repositories.ScorerTally, error) {
	return nil, nil
}

func (r *fakeGoalRepo) DeleteByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	for id, g := range r.goals {
		if g.MatchID == matchID {
			delete(r.goals, id)
		}
	}
	return nil
}

type fakeParticipationRepo struct {
	entries map[int]*models.Participation
	nextID  int
}

func newFakeParticipationRepo() *fakeParticipationRepo {
	return &fakeParticipationRepo{entries: map[int]*models.Participation{}, nextID: 1}
}

func (r *fakeParticipationRepo) BatchCreate(ctx context.Context, exec repositories.SQLExecutor, entries []models.Participation) error {
	for i := range entries {
		entries[i].ID = r.nextID
		r.nextID++
		copied := entries[i]
		r.entries[copied.ID] = &copied
	}
	return nil
}

func (r *fakeParticipationRepo) ListByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) ([]models.Participation, error) {
	var out []models.Participation
	for _, e := range r.entries {
		if e.MatchID == matchID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeParticipationRepo) DeleteByMatch(ctx context.Context, exec repositories.SQLExecutor, matchID int) error {
	for id, e := range r.entries {
		if e.MatchID == matchID {
			delete(r.entries, id)
		}
	}
	return nil
}

type fakeCategoryRepo struct {
	categories  map[int]*models.Category
	tournaments map[int]int // tournament ID to category ID
	nextID      int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[int]*models.Category{}, tournaments: map[int]int{}, nextID: 1}
}

func (r *fakeCategoryRepo) add(category models.Category, tournamentIDs ...int) *models.Category {
	if category.ID == 0 {
		category.ID = r.nextID
	}
	if category.ID >= r.nextID {
		r.nextID = category.ID + 1
	}
	r.categories[category.ID] = &category
	for _, tid := range tournamentIDs {
		r.tournaments[tid] = category.ID
	}
	return &category
}

func (r *fakeCategoryRepo) Create(ctx context.Context, exec repositories.SQLExecutor, category *models.Category) error {
	category.ID = r.nextID
	r.nextID++
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	copied := *category
	return &copied, nil
}

func (r *fakeCategoryRepo) GetByTournamentID(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) (*models.Category, error) {
	categoryID, ok := r.tournaments[tournamentID]
	if !ok {
		return nil, repositories.ErrCategoryNotFound
	}
	return r.GetByID(ctx, exec, categoryID)
}

func (r *fakeCategoryRepo) List(ctx context.Context, exec repositories.SQLExecutor) ([]models.Category, error) {
	var out []models.Category
	for _, c := range r.categories {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeCategoryRepo) Update(ctx context.Context, exec repositories.SQLExecutor, category *models.Category) error {
	if _, ok := r.categories[category.ID]; !ok {
		return repositories.ErrCategoryNotFound
	}
	copied := *category
	r.categories[category.ID] = &copied
	return nil
}

type fakeStandingRepo struct {
	rows   map[int]*models.TeamStatistics // keyed by team ID
	teams  *fakeTeamRepo
	nextID int
}

func newFakeStandingRepo(teams *fakeTeamRepo) *fakeStandingRepo {
	return &fakeStandingRepo{rows: map[int]*models.TeamStatistics{}, teams: teams, nextID: 1}
}

func (r *fakeStandingRepo) GetByTeamAndTournament(ctx context.Context, exec repositories.SQLExecutor, teamID, tournamentID int) (*models.TeamStatistics, error) {
	row, ok := r.rows[teamID]
	if !ok || row.TournamentID != tournamentID {
		return nil, repositories.ErrStandingNotFound
	}
	copied := *row
	return &copied, nil
}

func (r *fakeStandingRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, stats *models.TeamStatistics) error {
	if existing, ok := r.rows[stats.TeamID]; ok {
		stats.ID = existing.ID
	} else {
		stats.ID = r.nextID
		r.nextID++
	}
	copied := *stats
	r.rows[stats.TeamID] = &copied
	return nil
}

func (r *fakeStandingRepo) ListByTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.TeamStatistics, error) {
	var out []models.TeamStatistics
	for _, row := range r.rows {
		if row.TournamentID == tournamentID {
			out = append(out, *row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r *fakeStandingRepo) ListByGroup(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, groupLabel string) ([]models.TeamStatistics, error) {
	var out []models.TeamStatistics
	for _, row := range r.rows {
		if row.TournamentID != tournamentID {
			continue
		}
		team, ok := r.teams.teams[row.TeamID]
		if !ok || team.GroupLabel == nil || *team.GroupLabel != groupLabel {
			continue
		}
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TeamID < out[j].TeamID })
	return out, nil
}

func (r *fakeStandingRepo) DeleteByTeamAndTournament(ctx context.Context, exec repositories.SQLExecutor, teamID, tournamentID int) error {
	delete(r.rows, teamID)
	return nil
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
	nextID      int
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{tournaments: map[int]*models.Tournament{}, nextID: 1}
}

func (r *fakeTournamentRepo) add(tournament models.Tournament) *models.Tournament {
	if tournament.ID == 0 {
		tournament.ID = r.nextID
	}
	if tournament.ID >= r.nextID {
		r.nextID = tournament.ID + 1
	}
	r.tournaments[tournament.ID] = &tournament
	return &tournament
}

func (r *fakeTournamentRepo) Create(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	tournament.ID = r.nextID
	r.nextID++
	copied := *tournament
	r.tournaments[tournament.ID] = &copied
	return nil
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.Tournament, error) {
	tournament, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	copied := *tournament
	return &copied, nil
}

func (r *fakeTournamentRepo) ListActive(ctx context.Context, exec repositories.SQLExecutor) ([]models.Tournament, error) {
	var out []models.Tournament
	for _, t := range r.tournaments {
		if t.Active {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTournamentRepo) UpdatePhase(ctx context.Context, exec repositories.SQLExecutor, id int, phase models.TournamentPhase) error {
	tournament, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	tournament.Phase = phase
	return nil
}

func (r *fakeTournamentRepo) Update(ctx context.Context, exec repositories.SQLExecutor, tournament *models.Tournament) error {
	if _, ok := r.tournaments[tournament.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	copied := *tournament
	r.tournaments[tournament.ID] = &copied
	return nil
}

type fakeBracketRepo struct {
	phases    map[int]*models.EliminationPhase
	slots     map[int]*models.BracketSlot
	nextPhase int
	nextSlot  int
}

func newFakeBracketRepo() *fakeBracketRepo {
	return &fakeBracketRepo{
		phases:    map[int]*models.EliminationPhase{},
		slots:     map[int]*models.BracketSlot{},
		nextPhase: 1,
		nextSlot:  1,
	}
}

func (r *fakeBracketRepo) CreatePhase(ctx context.Context, exec repositories.SQLExecutor, phase *models.EliminationPhase) error {
	phase.ID = r.nextPhase
	r.nextPhase++
	copied := *phase
	r.phases[phase.ID] = &copied
	return nil
}

func (r *fakeBracketRepo) GetPhaseByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.EliminationPhase, error) {
	phase, ok := r.phases[id]
	if !ok {
		return nil, repositories.ErrPhaseNotFound
	}
	copied := *phase
	return &copied, nil
}

func (r *fakeBracketRepo) GetPhaseByName(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, name models.TournamentPhase) (*models.EliminationPhase, error) {
	for _, p := range r.phases {
		if p.TournamentID == tournamentID && p.Name == name {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repositories.ErrPhaseNotFound
}

func (r *fakeBracketRepo) ListPhases(ctx context.Context, exec repositories.SQLExecutor, tournamentID int) ([]models.EliminationPhase, error) {
	var out []models.EliminationPhase
	for _, p := range r.phases {
		if p.TournamentID == tournamentID {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (r *fakeBracketRepo) MarkPhaseCompleted(ctx context.Context, exec repositories.SQLExecutor, id int) error {
	phase, ok := r.phases[id]
	if !ok {
		return repositories.ErrPhaseNotFound
	}
	phase.Completed = true
	return nil
}

func (r *fakeBracketRepo) CreateSlot(ctx context.Context, exec repositories.SQLExecutor, slot *models.BracketSlot) error {
	slot.ID = r.nextSlot
	r.nextSlot++
	copied := *slot
	r.slots[slot.ID] = &copied
	return nil
}

func (r *fakeBracketRepo) GetSlotByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.BracketSlot, error) {
	slot, ok := r.slots[id]
	if !ok {
		return nil, repositories.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (r *fakeBracketRepo) GetSlotByIDForUpdate(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.BracketSlot, error) {
	return r.GetSlotByID(ctx, exec, id)
}

func (r *fakeBracketRepo) GetSlotByPosition(ctx context.Context, exec repositories.SQLExecutor, phaseID, position int) (*models.BracketSlot, error) {
	for _, s := range r.slots {
		if s.PhaseID == phaseID && s.Position == position {
			copied := *s
			return &copied, nil
		}
	}
	return nil, repositories.ErrSlotNotFound
}

func (r *fakeBracketRepo) ListSlotsByPhase(ctx context.Context, exec repositories.SQLExecutor, phaseID int) ([]models.BracketSlot, error) {
	var out []models.BracketSlot
	for _, s := range r.slots {
		if s.PhaseID == phaseID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

func (r *fakeBracketRepo) UpdateSlot(ctx context.Context, exec repositories.SQLExecutor, slot *models.BracketSlot) error {
	if _, ok := r.slots[slot.ID]; !ok {
		return repositories.ErrSlotNotFound
	}
	copied := *slot
	r.slots[slot.ID] = &copied
	return nil
}

type fakeFinanceRepo struct {
	transactions map[int]*models.PaymentTransaction
	nextID       int
}

func newFakeFinanceRepo() *fakeFinanceRepo {
	return &fakeFinanceRepo{transactions: map[int]*models.PaymentTransaction{}, nextID: 1}
}

func (r *fakeFinanceRepo) Create(ctx context.Context, exec repositories.SQLExecutor, txn *models.PaymentTransaction) error {
	txn.ID = r.nextID
	r.nextID++
	copied := *txn
	r.transactions[txn.ID] = &copied
	return nil
}

func (r *fakeFinanceRepo) ListByTeam(ctx context.Context, exec repositories.SQLExecutor, teamID int) ([]models.PaymentTransaction, error) {
	var out []models.PaymentTransaction
	for _, txn := range r.transactions {
		if txn.TeamID == teamID {
			out = append(out, *txn)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeFinanceRepo) SumByTeamAndType(ctx context.Context, exec repositories.SQLExecutor, teamID int, txnType models.TransactionType) (decimal.Decimal, error) {
	sum := decimal.Zero
	for _, txn := range r.transactions {
		if txn.TeamID == teamID && txn.Type == txnType {
			sum = sum.Add(txn.Amount)
		}
	}
	return sum, nil
}

type fakeUserRepo struct {
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(ctx context.Context, exec repositories.SQLExecutor, user *models.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	r.nextID++
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, exec repositories.SQLExecutor, id int) (*models.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(ctx context.Context, exec repositories.SQLExecutor, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

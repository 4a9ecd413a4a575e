// Package brackets holds the pure pairing and propagation rules for single
// elimination play. Persistence and transactions live in the bracket service;
// this package only answers who meets whom and where winners go.
package brackets

import (
	"errors"
	"fmt"
	"sort"

	"github.com/mvallesteros/ligastar/models"
)

var (
	ErrOddTeamCount      = errors.New("brackets: team count must be even")
	ErrNoTeams           = errors.New("brackets: no teams to seed")
	ErrGroupTooSmall     = errors.New("brackets: cross-group seeding needs two qualifiers per group")
	ErrBracketSizeNoFit  = errors.New("brackets: pair count does not fit an elimination phase")
	ErrDuplicateSeedTeam = errors.New("brackets: team seeded twice")
)

// Pair is one slot assignment: two team IDs that will meet.
type Pair struct {
	Home int `json:"home_team_id"`
	Away int `json:"away_team_id"`
}

// GroupQualifiers carries one group's qualifying teams in rank order,
// winner first.
type GroupQualifiers struct {
	Label   string `json:"label"`
	TeamIDs []int  `json:"team_ids"`
}

// CrossGroupPairs is the default seeding policy: the winner of each group
// meets the runner-up of the next group in label order, wrapping around, so
// two teams from the same group can only meet again in a later round.
func CrossGroupPairs(groups []GroupQualifiers) ([]Pair, error) {
	if len(groups) == 0 {
		return nil, ErrNoTeams
	}
	sorted := make([]GroupQualifiers, len(groups))
	copy(sorted, groups)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Label < sorted[j].Label })

	for _, g := range sorted {
		if len(g.TeamIDs) < 2 {
			return nil, fmt.Errorf("%w: group %s has %d", ErrGroupTooSmall, g.Label, len(g.TeamIDs))
		}
	}

	pairs := make([]Pair, 0, len(sorted))
	for i, g := range sorted {
		next := sorted[(i+1)%len(sorted)]
		pairs = append(pairs, Pair{Home: g.TeamIDs[0], Away: next.TeamIDs[1]})
	}
	return pairs, validateDistinct(pairs)
}

// SeededPairs pairs an ordered list of teams strongest against weakest:
// first vs last, second vs second-to-last, and so on. It serves qualifier
// lists that cross-group pairing cannot, such as rankings extended with best
// losers. The list length must be even; this league plays no byes.
func SeededPairs(teamIDs []int) ([]Pair, error) {
	if len(teamIDs) == 0 {
		return nil, ErrNoTeams
	}
	if len(teamIDs)%2 != 0 {
		return nil, fmt.Errorf("%w: got %d", ErrOddTeamCount, len(teamIDs))
	}
	pairs := make([]Pair, 0, len(teamIDs)/2)
	for i := 0; i < len(teamIDs)/2; i++ {
		pairs = append(pairs, Pair{
			Home: teamIDs[i],
			Away: teamIDs[len(teamIDs)-1-i],
		})
	}
	return pairs, validateDistinct(pairs)
}

func validateDistinct(pairs []Pair) error {
	seen := make(map[int]struct{}, len(pairs)*2)
	for _, p := range pairs {
		for _, id := range [2]int{p.Home, p.Away} {
			if _, dup := seen[id]; dup {
				return fmt.Errorf("%w: team %d", ErrDuplicateSeedTeam, id)
			}
			seen[id] = struct{}{}
		}
	}
	return nil
}

// EntryPhase maps a pair count onto the knockout phase a bracket of that size
// starts at: 8 pairs enter at the round of 16, 4 at quarterfinals, 2 at
// semifinals, 1 at the final.
func EntryPhase(pairCount int) (models.TournamentPhase, error) {
	switch pairCount {
	case 8:
		return models.PhaseRoundOf16, nil
	case 4:
		return models.PhaseQuarterfinals, nil
	case 2:
		return models.PhaseSemifinals, nil
	case 1:
		return models.PhaseFinal, nil
	}
	return "", fmt.Errorf("%w: %d pairs", ErrBracketSizeNoFit, pairCount)
}

// PhasesFrom returns the remaining knockout phases starting at entry,
// in play order.
func PhasesFrom(entry models.TournamentPhase) []models.TournamentPhase {
	for i, p := range models.EliminationOrder {
		if p == entry {
			return models.EliminationOrder[i:]
		}
	}
	return nil
}

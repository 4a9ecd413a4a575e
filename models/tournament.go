package models

import "time"

type TournamentPhase string

const (
	PhaseRegistration  TournamentPhase = "registration"
	PhaseGroups        TournamentPhase = "groups"
	PhaseRoundOf16     TournamentPhase = "round_of_16"
	PhaseQuarterfinals TournamentPhase = "quarterfinals"
	PhaseSemifinals    TournamentPhase = "semifinals"
	PhaseFinal         TournamentPhase = "final"
	PhaseFinished      TournamentPhase = "finished"
)

// EliminationOrder lists the knockout phases in play order. A tournament
// enters the bracket at whichever phase its qualifier count fills.
var EliminationOrder = []TournamentPhase{
	PhaseRoundOf16,
	PhaseQuarterfinals,
	PhaseSemifinals,
	PhaseFinal,
}

type Tournament struct {
	ID                 int             `json:"id" db:"id"`
	Name               string          `json:"name" db:"name"`
	CategoryID         int             `json:"category_id" db:"category_id"`
	Phase              TournamentPhase `json:"phase" db:"phase"`
	GroupCount         int             `json:"group_count" db:"group_count"`
	QualifiersPerGroup int             `json:"qualifiers_per_group" db:"qualifiers_per_group"`
	BestLoserSlots     int             `json:"best_loser_slots" db:"best_loser_slots"`
	StartDate          time.Time       `json:"start_date" db:"start_date"`
	EndDate            *time.Time      `json:"end_date,omitempty" db:"end_date"`
	Active             bool            `json:"active" db:"active"`
	CreatedAt          time.Time       `json:"created_at" db:"created_at"`

	Category *Category `json:"category,omitempty" db:"-"`
}

// GroupLabels returns the labels of the configured groups, "A" onward.
func (t *Tournament) GroupLabels() []string {
	labels := make([]string, 0, t.GroupCount)
	for i := 0; i < t.GroupCount; i++ {
		labels = append(labels, string(rune('A'+i)))
	}
	return labels
}

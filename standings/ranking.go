package standings

import (
	"sort"

	"github.com/mvallesteros/ligastar/models"
)

// Less is the league tie-break key order: points, then goal difference, then
// goals for, all descending. Ascending team ID is the final key so that a
// full three-way tie still ranks deterministically instead of falling back to
// storage order.
func Less(a, b *models.TeamStatistics) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference != b.GoalDifference {
		return a.GoalDifference > b.GoalDifference
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.TeamID < b.TeamID
}

// Rank sorts rows into tie-break key order, in place.
func Rank(rows []models.TeamStatistics) {
	sort.Slice(rows, func(i, j int) bool {
		return Less(&rows[i], &rows[j])
	})
}

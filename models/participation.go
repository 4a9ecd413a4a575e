package models

const (
	// MinRosterSize is the fewest players a team may field in a match.
	MinRosterSize = 4
	// MaxSubstitutions caps the non-starter entries per team per match.
	MaxSubstitutions = 3
)

// Participation registers one player on one match sheet. JerseyNumber is the
// number presented on the sheet and must match the player's registered one.
type Participation struct {
	ID           int  `json:"id"`
	MatchID      int  `json:"match_id"`
	PlayerID     int  `json:"player_id"`
	Starter      bool `json:"starter"`
	JerseyNumber int  `json:"jersey_number"`
}

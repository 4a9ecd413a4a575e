package models

import "time"

type CardType string

const (
	CardYellow CardType = "YELLOW"
	CardRed    CardType = "RED"
)

// Card is a booking issued to a player in a match. Counted flips to true once
// the card has contributed to a suspension, so the same booking can never
// trigger one twice. FinePaid tracks the monetary side independently.
type Card struct {
	ID        int       `json:"id"`
	PlayerID  int       `json:"player_id"`
	MatchID   int       `json:"match_id"`
	Type      CardType  `json:"type"`
	Minute    *int      `json:"minute,omitempty"`
	Counted   bool      `json:"counted"`
	FinePaid  bool      `json:"fine_paid"`
	CreatedAt time.Time `json:"created_at"`
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Category is the rule set a tournament plays under: how many yellow cards
// trigger a suspension, how long suspensions last, how many absences exclude
// a team, and what the league charges for cards and inscription.
type Category struct {
	ID                      int             `json:"id"`
	Name                    string          `json:"name"`
	Description             *string         `json:"description,omitempty"`
	YellowCardLimit         int             `json:"yellow_card_limit"`
	YellowSuspensionMatches int             `json:"yellow_suspension_matches"`
	RedSuspensionMatches    int             `json:"red_suspension_matches"`
	AbsenceLimit            int             `json:"absence_limit"`
	YellowCardFine          decimal.Decimal `json:"yellow_card_fine"`
	RedCardFine             decimal.Decimal `json:"red_card_fine"`
	InscriptionCost         decimal.Decimal `json:"inscription_cost"`
	CreatedAt               time.Time       `json:"created_at"`
}

// FineFor returns the fine the category charges for a card of the given type.
func (c *Category) FineFor(cardType CardType) decimal.Decimal {
	if cardType == CardRed {
		return c.RedCardFine
	}
	return c.YellowCardFine
}

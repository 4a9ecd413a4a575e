package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionInscription TransactionType = "inscription_payment"
	TransactionYellowFine  TransactionType = "yellow_fine"
	TransactionRedFine     TransactionType = "red_fine"
	TransactionReferee     TransactionType = "referee_payment"
	TransactionOther       TransactionType = "other"
)

type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
)

// PaymentTransaction is one row of the money ledger. Income rows are money
// the league receives (inscriptions, fines); the rest are payouts such as
// referee fees. Fine rows keep a card reference so the card's paid flag and
// the ledger can never disagree about which booking was settled.
type PaymentTransaction struct {
	ID        int             `json:"id"`
	Reference string          `json:"reference"`
	TeamID    int             `json:"team_id"`
	PlayerID  *int            `json:"player_id,omitempty"`
	CardID    *int            `json:"card_id,omitempty"`
	Type      TransactionType `json:"type"`
	Method    PaymentMethod   `json:"method"`
	Amount    decimal.Decimal `json:"amount"`
	Income    bool            `json:"income"`
	Notes     *string         `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// TeamFinanceSummary reports what a team owes and has paid within its
// tournament's category rules.
type TeamFinanceSummary struct {
	TeamID          int             `json:"team_id"`
	InscriptionCost decimal.Decimal `json:"inscription_cost"`
	InscriptionPaid decimal.Decimal `json:"inscription_paid"`
	FinesAccrued    decimal.Decimal `json:"fines_accrued"`
	FinesPaid       decimal.Decimal `json:"fines_paid"`
	Balance         decimal.Decimal `json:"balance"`
}

package models

import "time"

type Team struct {
	ID           int       `json:"id" db:"id"`
	TournamentID int       `json:"tournament_id" db:"tournament_id"`
	Name         string    `json:"name" db:"name"`
	GroupLabel   *string   `json:"group_label,omitempty" db:"group_label"`
	ContactEmail *string   `json:"contact_email,omitempty" db:"contact_email"`
	Active       bool      `json:"active" db:"active"`
	Absences     int       `json:"absences" db:"absences"`
	Excluded     bool      `json:"excluded" db:"excluded"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	Players []Player `json:"players,omitempty" db:"-"`

	LogoKey *string `json:"-" db:"logo_key"`
	LogoURL *string `json:"logo_url,omitempty" db:"-"`
}

package models

import "time"

// Suspension is the active sanction on a player. It exists only while the
// player is suspended; eligibility is the absence of one.
type Suspension struct {
	MatchesRemaining int        `json:"matches_remaining"`
	EndsAt           *time.Time `json:"ends_at,omitempty"`
}

type Player struct {
	ID                    int        `json:"id"`
	TeamID                int        `json:"team_id"`
	FirstName             string     `json:"first_name"`
	LastName              string     `json:"last_name"`
	JerseyNumber          int        `json:"jersey_number"`
	Suspended             bool       `json:"suspended"`
	SuspensionMatchesLeft int        `json:"suspension_matches_left"`
	SuspensionEndsAt      *time.Time `json:"suspension_ends_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`

	PhotoKey *string `json:"-"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

func (p *Player) FullName() string {
	return p.FirstName + " " + p.LastName
}

// CurrentSuspension reports the active suspension, if any. All writes to the
// underlying fields go through the discipline service; everything else reads
// the state through here.
func (p *Player) CurrentSuspension() (Suspension, bool) {
	if !p.Suspended {
		return Suspension{}, false
	}
	return Suspension{
		MatchesRemaining: p.SuspensionMatchesLeft,
		EndsAt:           p.SuspensionEndsAt,
	}, true
}

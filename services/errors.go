package services

import "errors"

// Sentinel errors shared across services and the HTTP error mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business-rule errors.
	ErrValidationFailed      = errors.New("validation failed")
	ErrInvalidResult         = errors.New("invalid match result")
	ErrTeamMismatch          = errors.New("team does not belong to this match")
	ErrSameTeam              = errors.New("a match needs two distinct teams")
	ErrRosterTooSmall        = errors.New("match sheet has fewer players than the minimum roster")
	ErrSubstitutionLimit     = errors.New("substitution limit exceeded")
	ErrJerseyMismatch        = errors.New("sheet jersey number does not match the registered one")
	ErrPlayerSuspended       = errors.New("player is suspended")
	ErrPlayerNotInMatch      = errors.New("player does not belong to either match team")
	ErrMatchAlreadyCompleted = errors.New("match is already completed")
	ErrMatchNotCompleted     = errors.New("match is not completed")
	ErrPenaltiesRequired     = errors.New("elimination match ended level, penalty scores are required")
	ErrPenaltiesNotAllowed   = errors.New("penalty scores are only valid for a level elimination match")
	ErrPenaltiesTied         = errors.New("penalty shootout cannot end level")
	ErrTeamExcluded          = errors.New("team is excluded and cannot be scheduled")
	ErrTeamInactive          = errors.New("team is not active")
	ErrRoundXorPhase         = errors.New("match needs a group round or an elimination phase, not both")
	ErrGroupLabelInvalid     = errors.New("group label is not configured for the tournament")

	// Qualification and bracket consistency errors.
	ErrGroupStageIncomplete = errors.New("group stage has unfinished matches")
	ErrSlotNotFilled        = errors.New("bracket slot is missing a team")
	ErrSlotNotDecided       = errors.New("bracket slot match is missing or not completed")
	ErrSlotAlreadyAdvanced  = errors.New("bracket slot winner already advanced")
	ErrBracketAlreadySeeded = errors.New("bracket already seeded for tournament")

	// Finance errors.
	ErrCardFineAlreadyPaid = errors.New("card fine is already paid")
	ErrAmountNotPositive   = errors.New("amount must be positive")

	// Authentication errors.
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthEmailTaken         = errors.New("email is already taken")
	ErrPasswordTooShort       = errors.New("password is too short")

	// Entity lookups.
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrCardNotFound       = errors.New("card not found")
	ErrPhaseNotFound      = errors.New("elimination phase not found")
	ErrSlotNotFound       = errors.New("bracket slot not found")

	// Conflicts.
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrJerseyTaken            = errors.New("jersey number is already taken in the team")

	// Tournament phase errors.
	ErrTournamentPhaseInvalid    = errors.New("invalid tournament phase")
	ErrTournamentPhaseTransition = errors.New("invalid tournament phase transition")
)

package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/mvallesteros/ligastar/brackets"
	"github.com/mvallesteros/ligastar/services"
)

type BracketHandler struct {
	bracketService       services.BracketService
	qualificationService services.QualificationService
}

func NewBracketHandler(bracketService services.BracketService, qualificationService services.QualificationService) *BracketHandler {
	return &BracketHandler{
		bracketService:       bracketService,
		qualificationService: qualificationService,
	}
}

func (h *BracketHandler) Qualifiers(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.qualificationService.ResolveQualifiers(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"qualifiers": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Seed builds the bracket. Without a body it resolves qualifiers and applies
// cross-group pairing; an explicit pairs list overrides that.
func (h *BracketHandler) Seed(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Pairs []brackets.Pair `json:"pairs,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	pairs := input.Pairs
	if len(pairs) == 0 {
		qualifiers, err := h.qualificationService.ResolveQualifiers(r.Context(), tournamentID)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
		if len(qualifiers.BestLosers) > 0 {
			ranked := make([]int, 0)
			for _, g := range qualifiers.Groups {
				ranked = append(ranked, g.TeamIDs...)
			}
			ranked = append(ranked, qualifiers.BestLosers...)
			pairs, err = brackets.SeededPairs(ranked)
		} else {
			pairs, err = brackets.CrossGroupPairs(qualifiers.Groups)
		}
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	phases, err := h.bracketService.SeedBracket(r.Context(), tournamentID, pairs)
	if err != nil {
		if errors.Is(err, brackets.ErrBracketSizeNoFit) ||
			errors.Is(err, brackets.ErrDuplicateSeedTeam) ||
			errors.Is(err, brackets.ErrOddTeamCount) {
			badRequestResponse(w, r, err)
			return
		}
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"phases": phases}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) Overview(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	phases, err := h.bracketService.PhaseOverview(r.Context(), tournamentID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": phases}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) GenerateSlotMatch(w http.ResponseWriter, r *http.Request) {
	slotID, err := getIDFromURL(r, "slotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		KickoffAt *time.Time `json:"kickoff_at,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := readJSON(w, r, &input); err != nil {
			badRequestResponse(w, r, err)
			return
		}
	}

	slot, err := h.bracketService.GenerateSlotMatch(r.Context(), slotID, input.KickoffAt)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"slot": slot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *BracketHandler) AdvanceWinner(w http.ResponseWriter, r *http.Request) {
	slotID, err := getIDFromURL(r, "slotID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.bracketService.AdvanceWinner(r.Context(), slotID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

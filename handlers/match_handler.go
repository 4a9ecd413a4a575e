package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/repositories"
	"github.com/mvallesteros/ligastar/services"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(matchService services.MatchService) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var input services.ScheduleMatchInput

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.Schedule(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetByID(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListByTournament(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	filter, err := matchFilterFromQuery(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListByTournament(r.Context(), tournamentID, filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ListUpcomingByTeam(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.matchService.ListUpcomingByTeam(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// completeMatchRequest is the wire form of a match completion. The outcome is
// a tagged union keyed by "type".
type completeMatchRequest struct {
	Outcome outcomePayload       `json:"outcome"`
	Sheet   *services.MatchSheet `json:"sheet,omitempty"`
}

type outcomePayload struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"-"`
}

func (p *outcomePayload) UnmarshalJSON(data []byte) error {
	var tag struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return err
	}
	p.Type = tag.Type
	p.Data = data
	return nil
}

func (p outcomePayload) toOutcome() (models.Outcome, error) {
	switch p.Type {
	case "normal":
		var out models.Normal
		if err := json.Unmarshal(p.Data, &struct {
			Type string `json:"type"`
			*models.Normal
		}{Normal: &out}); err != nil {
			return nil, err
		}
		return out, nil
	case "walkover":
		var out models.Walkover
		if err := json.Unmarshal(p.Data, &struct {
			Type string `json:"type"`
			*models.Walkover
		}{Walkover: &out}); err != nil {
			return nil, err
		}
		if out.Reason == "" {
			out.Reason = models.WalkoverNoShow
		}
		return out, nil
	case "penalty_shootout":
		var out models.PenaltyShootout
		if err := json.Unmarshal(p.Data, &struct {
			Type string `json:"type"`
			*models.PenaltyShootout
		}{PenaltyShootout: &out}); err != nil {
			return nil, err
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown outcome type %q", p.Type)
	}
}

func (h *MatchHandler) Complete(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req completeMatchRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	outcome, err := req.Outcome.toOutcome()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.matchService.CompleteMatch(r.Context(), matchID, outcome, req.Sheet)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Reopen(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ReopenMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.matchService.DeleteMatch(r.Context(), matchID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func matchFilterFromQuery(r *http.Request) (repositories.MatchFilter, error) {
	var filter repositories.MatchFilter
	q := r.URL.Query()

	if raw := q.Get("group_round"); raw != "" {
		round, err := parsePositiveInt(raw)
		if err != nil {
			return filter, errors.New("invalid group_round query parameter")
		}
		filter.GroupRound = &round
	}
	if raw := q.Get("phase_id"); raw != "" {
		phaseID, err := parsePositiveInt(raw)
		if err != nil {
			return filter, errors.New("invalid phase_id query parameter")
		}
		filter.PhaseID = &phaseID
	}
	if raw := q.Get("status"); raw != "" {
		status := models.MatchStatus(raw)
		if status != models.MatchStatusScheduled && status != models.MatchStatusCompleted {
			return filter, errors.New("invalid status query parameter")
		}
		filter.Status = &status
	}

	return filter, nil
}

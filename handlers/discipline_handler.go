package handlers

import (
	"errors"
	"net/http"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/services"
)

type DisciplineHandler struct {
	disciplineService services.DisciplineService
}

func NewDisciplineHandler(disciplineService services.DisciplineService) *DisciplineHandler {
	return &DisciplineHandler{disciplineService: disciplineService}
}

// RecordCard books a card outside match completion, for corrections after
// the fact. Cards on a fresh match sheet go through the match endpoint.
func (h *DisciplineHandler) RecordCard(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PlayerID int             `json:"player_id"`
		MatchID  int             `json:"match_id"`
		Type     models.CardType `json:"type"`
		Minute   *int            `json:"minute,omitempty"`
	}

	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.PlayerID < 1 || input.MatchID < 1 {
		badRequestResponse(w, r, errors.New("player_id and match_id are required"))
		return
	}
	if input.Type != models.CardYellow && input.Type != models.CardRed {
		badRequestResponse(w, r, errors.New("type must be YELLOW or RED"))
		return
	}

	result, err := h.disciplineService.RecordCard(r.Context(), input.PlayerID, input.MatchID, input.Type, input.Minute)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

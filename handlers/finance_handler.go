package handlers

import (
	"errors"
	"net/http"

	"github.com/mvallesteros/ligastar/models"
	"github.com/mvallesteros/ligastar/services"
	"github.com/shopspring/decimal"
)

type FinanceHandler struct {
	financeService services.FinanceService
}

func NewFinanceHandler(financeService services.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

func paymentMethod(raw string) (models.PaymentMethod, error) {
	method := models.PaymentMethod(raw)
	if method != models.MethodCash && method != models.MethodTransfer {
		return "", errors.New("method must be cash or transfer")
	}
	return method, nil
}

func (h *FinanceHandler) PayCardFine(w http.ResponseWriter, r *http.Request) {
	cardID, err := getIDFromURL(r, "cardID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Method string `json:"method"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	method, err := paymentMethod(input.Method)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	txn, err := h.financeService.PayCardFine(r.Context(), cardID, method)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"transaction": txn}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FinanceHandler) RecordInscriptionPayment(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		Amount decimal.Decimal `json:"amount"`
		Method string          `json:"method"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	method, err := paymentMethod(input.Method)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	txn, err := h.financeService.RecordInscriptionPayment(r.Context(), teamID, input.Amount, method)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"transaction": txn}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FinanceHandler) TeamSummary(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	summary, err := h.financeService.TeamSummary(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"summary": summary}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *FinanceHandler) ListTeamTransactions(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	transactions, err := h.financeService.ListTeamTransactions(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"transactions": transactions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

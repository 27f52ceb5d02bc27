package http

import (
	"net/http"

	"financas/internal/core"
)

func (s *Server) handleCreateCreditCard(w http.ResponseWriter, r *http.Request) {
	var in core.CreditCardInput
	if !decodeBody(w, r, &in) {
		return
	}

	id, err := s.ledger.CreateCreditCard(r.Context(), in)
	if err != nil {
		// Duplicate names and missing closing_day both surface from the
		// store as constraint violations, reported as 500 with detail.
		writeLedgerError(w, r, err, "credit card not found", "failed to save")
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{Message: "credit card recorded", ID: id})
}

func (s *Server) handleListCreditCards(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListCreditCards(r.Context())
	if err != nil {
		writeLedgerError(w, r, err, "credit card not found", "failed to query")
		return
	}

	writeJSON(w, http.StatusOK, creditCardResponses(items))
}

func (s *Server) handleCreateCardCharge(w http.ResponseWriter, r *http.Request) {
	var in core.CardChargeInput
	if !decodeBody(w, r, &in) {
		return
	}

	id, err := s.ledger.CreateCardCharge(r.Context(), in)
	if err != nil {
		writeLedgerError(w, r, err, "credit card not found", "failed to save")
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{Message: "card charge recorded", ID: id})
}

func (s *Server) handleListCardCharges(w http.ResponseWriter, r *http.Request) {
	cardID, ok := pathID(r, "cartao_id")
	if !ok {
		writeError(w, http.StatusNotFound, "credit card not found")
		return
	}

	items, err := s.ledger.ListCardCharges(r.Context(), &cardID)
	if err != nil {
		writeLedgerError(w, r, err, "credit card not found", "failed to query")
		return
	}

	writeJSON(w, http.StatusOK, cardChargeResponses(items))
}

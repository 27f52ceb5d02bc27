package http

import (
	"net/http"

	"financas/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.TransactionInput
	if !decodeBody(w, r, &in) {
		return
	}

	id, err := s.ledger.CreateTransaction(r.Context(), in)
	if err != nil {
		writeLedgerError(w, r, err, "transaction not found", "failed to save")
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{Message: "transaction recorded", ID: id})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "transaction not found")
		return
	}

	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		writeLedgerError(w, r, err, "transaction not found", "failed to delete")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "transaction removed"})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month := optionalQueryInt(r, "mes")
	year := optionalQueryInt(r, "ano")

	items, err := s.ledger.ListTransactions(r.Context(), month, year)
	if err != nil {
		writeLedgerError(w, r, err, "transaction not found", "failed to query")
		return
	}

	writeJSON(w, http.StatusOK, transactionResponses(items))
}

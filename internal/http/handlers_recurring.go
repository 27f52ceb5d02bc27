package http

import (
	"net/http"

	"financas/internal/core"
)

func (s *Server) handleCreateRecurringBill(w http.ResponseWriter, r *http.Request) {
	var in core.RecurringBillInput
	if !decodeBody(w, r, &in) {
		return
	}

	id, err := s.ledger.CreateRecurringBill(r.Context(), in)
	if err != nil {
		writeLedgerError(w, r, err, "recurring bill not found", "failed to save")
		return
	}

	writeJSON(w, http.StatusCreated, createdResponse{Message: "recurring bill recorded", ID: id})
}

func (s *Server) handleListRecurringBills(w http.ResponseWriter, r *http.Request) {
	items, err := s.ledger.ListRecurringBills(r.Context())
	if err != nil {
		writeLedgerError(w, r, err, "recurring bill not found", "failed to query")
		return
	}

	writeJSON(w, http.StatusOK, recurringBillResponses(items))
}

func (s *Server) handleDeleteRecurringBill(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		writeError(w, http.StatusNotFound, "recurring bill not found")
		return
	}

	if err := s.ledger.DeleteRecurringBill(r.Context(), id); err != nil {
		writeLedgerError(w, r, err, "recurring bill not found", "failed to delete")
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "recurring bill removed"})
}

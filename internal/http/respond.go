package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"financas/internal/core"
	"financas/internal/storage"
)

type messageResponse struct {
	Message string `json:"message"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type transactionResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	Kind        string    `json:"kind"`
	Timestamp   time.Time `json:"timestamp"`
	Category    *string   `json:"category"`
}

type creditCardResponse struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	DueDay     int64  `json:"due_day"`
	ClosingDay int64  `json:"closing_day"`
}

type cardChargeResponse struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	PurchasedAt time.Time `json:"purchased_at"`
	CardID      int64     `json:"card_id"`
}

type recurringBillResponse struct {
	ID               int64   `json:"id"`
	Description      string  `json:"description"`
	EstimatedAmount  float64 `json:"estimated_amount"`
	Kind             string  `json:"kind"`
	DueDay           int64   `json:"due_day"`
	Recurrence       string  `json:"recurrence"`
	NotifyBeforeDays int64   `json:"notify_before_days"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeLedgerError maps a service error onto the response: validation
// failures become 400, missing records 404, and everything else (constraint
// violations included) 500 with the error detail in the body.
func writeLedgerError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg, failurePrefix string) {
	var ve *core.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, notFoundMsg)
	default:
		slog.ErrorContext(r.Context(), "Ledger operation failed",
			"error", err,
			"method", r.Method,
			"url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, failurePrefix+": "+err.Error())
	}
}

func transactionResponses(items []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(items))
	for _, t := range items {
		out = append(out, transactionResponse{
			ID:          t.ID,
			Description: t.Description,
			Amount:      t.Amount,
			Kind:        string(t.Kind),
			Timestamp:   t.Timestamp,
			Category:    t.Category,
		})
	}
	return out
}

func creditCardResponses(items []core.CreditCard) []creditCardResponse {
	out := make([]creditCardResponse, 0, len(items))
	for _, c := range items {
		out = append(out, creditCardResponse{
			ID:         c.ID,
			Name:       c.Name,
			DueDay:     c.DueDay,
			ClosingDay: c.ClosingDay,
		})
	}
	return out
}

func cardChargeResponses(items []core.CardCharge) []cardChargeResponse {
	out := make([]cardChargeResponse, 0, len(items))
	for _, c := range items {
		out = append(out, cardChargeResponse{
			ID:          c.ID,
			Description: c.Description,
			Amount:      c.Amount,
			PurchasedAt: c.PurchasedAt,
			CardID:      c.CardID,
		})
	}
	return out
}

func recurringBillResponses(items []core.RecurringBill) []recurringBillResponse {
	out := make([]recurringBillResponse, 0, len(items))
	for _, b := range items {
		out = append(out, recurringBillResponse{
			ID:               b.ID,
			Description:      b.Description,
			EstimatedAmount:  b.EstimatedAmount,
			Kind:             string(b.Kind),
			DueDay:           b.DueDay,
			Recurrence:       b.Recurrence,
			NotifyBeforeDays: b.NotifyBeforeDays,
		})
	}
	return out
}

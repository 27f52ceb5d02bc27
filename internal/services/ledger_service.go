package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

// EventPublisher announces completed writes. A nil publisher disables events.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, entity, action string, id int64) error
}

// LedgerService runs the write path for every entity: validate the payload,
// check referenced entities where needed, persist, then publish an event.
// Event publication never fails the request; the write already committed.
type LedgerService struct {
	repo      *storage.SQLiteRepository
	publisher EventPublisher
}

func NewLedgerService(repo *storage.SQLiteRepository, publisher EventPublisher) *LedgerService {
	return &LedgerService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *LedgerService) CreateTransaction(ctx context.Context, in core.TransactionInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateTransaction(ctx, in.Transaction(time.Now()))
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.ActionCreated, id)
	return id, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id int64) error {
	if err := s.repo.DeleteTransaction(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityTransaction, amqp.ActionDeleted, id)
	return nil
}

// ListTransactions applies the calendar filter only when both month and year
// are supplied.
func (s *LedgerService) ListTransactions(ctx context.Context, month, year *int) ([]core.Transaction, error) {
	return s.repo.ListTransactions(ctx, month, year)
}

func (s *LedgerService) CreateCreditCard(ctx context.Context, in core.CreditCardInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	// ClosingDay passes through unchecked; a nil value fails at the store's
	// nullability constraint rather than here.
	id, err := s.repo.CreateCreditCard(ctx, *in.Name, *in.DueDay, in.ClosingDay)
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.EntityCreditCard, amqp.ActionCreated, id)
	return id, nil
}

func (s *LedgerService) ListCreditCards(ctx context.Context) ([]core.CreditCard, error) {
	return s.repo.ListCreditCards(ctx)
}

// CreateCardCharge verifies the owning card exists before persisting, so an
// unknown card surfaces as not-found rather than as a constraint failure.
func (s *LedgerService) CreateCardCharge(ctx context.Context, in core.CardChargeInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	if _, err := s.repo.GetCreditCard(ctx, *in.CardID); err != nil {
		return 0, fmt.Errorf("check card %d: %w", *in.CardID, err)
	}
	id, err := s.repo.CreateCardCharge(ctx, in.Charge(time.Now()))
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.EntityCardCharge, amqp.ActionCreated, id)
	return id, nil
}

// ListCardCharges lists every charge, or only one card's after confirming the
// card exists.
func (s *LedgerService) ListCardCharges(ctx context.Context, cardID *int64) ([]core.CardCharge, error) {
	if cardID != nil {
		if _, err := s.repo.GetCreditCard(ctx, *cardID); err != nil {
			return nil, fmt.Errorf("check card %d: %w", *cardID, err)
		}
	}
	return s.repo.ListCardCharges(ctx, cardID)
}

func (s *LedgerService) CreateRecurringBill(ctx context.Context, in core.RecurringBillInput) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	id, err := s.repo.CreateRecurringBill(ctx, in.Bill())
	if err != nil {
		return 0, err
	}
	s.publish(ctx, amqp.EntityRecurringBill, amqp.ActionCreated, id)
	return id, nil
}

func (s *LedgerService) ListRecurringBills(ctx context.Context) ([]core.RecurringBill, error) {
	return s.repo.ListRecurringBills(ctx)
}

func (s *LedgerService) DeleteRecurringBill(ctx context.Context, id int64) error {
	if err := s.repo.DeleteRecurringBill(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, amqp.EntityRecurringBill, amqp.ActionDeleted, id)
	return nil
}

func (s *LedgerService) publish(ctx context.Context, entity, action string, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, entity, action, id); err != nil {
		// The write already committed; losing an event is not a request failure.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"error", err,
			"entity", entity,
			"action", action,
			"id", id)
	}
}

package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"financas/internal/amqp"
	"financas/internal/core"
	"financas/internal/storage"
)

type recordedEvent struct {
	entity string
	action string
	id     int64
}

type fakePublisher struct {
	events []recordedEvent
	err    error
}

func (f *fakePublisher) PublishLedgerEvent(_ context.Context, entity, action string, id int64) error {
	f.events = append(f.events, recordedEvent{entity: entity, action: action, id: id})
	return f.err
}

func newTestService(t *testing.T) (*LedgerService, *storage.SQLiteRepository, *fakePublisher) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "financas.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository() error = %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	pub := &fakePublisher{}
	return NewLedgerService(repo, pub), repo, pub
}

func strPtr(s string) *string   { return &s }
func f64Ptr(v float64) *float64 { return &v }
func i64Ptr(v int64) *int64     { return &v }

func TestCreateTransactionPublishesEvent(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, core.TransactionInput{
		Description: strPtr("groceries"),
		Amount:      f64Ptr(42.50),
		Kind:        strPtr("expense"),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	got, err := repo.GetTransaction(ctx, id)
	if err != nil {
		t.Fatalf("GetTransaction() error = %v", err)
	}
	if got.Description != "groceries" {
		t.Errorf("persisted description = %q, want %q", got.Description, "groceries")
	}

	want := []recordedEvent{{entity: amqp.EntityTransaction, action: amqp.ActionCreated, id: id}}
	if len(pub.events) != 1 || pub.events[0] != want[0] {
		t.Errorf("published events = %+v, want %+v", pub.events, want)
	}
}

func TestCreateTransactionValidationFailure(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateTransaction(ctx, core.TransactionInput{
		Description: strPtr("incomplete"),
	})
	var verr *core.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("CreateTransaction() error = %v, want ValidationError", err)
	}

	items, err := repo.ListTransactions(ctx, nil, nil)
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(items) != 0 {
		t.Errorf("transactions persisted after validation failure: %+v", items)
	}
	if len(pub.events) != 0 {
		t.Errorf("events published after validation failure: %+v", pub.events)
	}
}

func TestDeleteTransactionPublishesEvent(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, core.TransactionInput{
		Description: strPtr("temp"),
		Amount:      f64Ptr(1),
		Kind:        strPtr("income"),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	if err := svc.DeleteTransaction(ctx, id); err != nil {
		t.Fatalf("DeleteTransaction() error = %v", err)
	}

	last := pub.events[len(pub.events)-1]
	want := recordedEvent{entity: amqp.EntityTransaction, action: amqp.ActionDeleted, id: id}
	if last != want {
		t.Errorf("last event = %+v, want %+v", last, want)
	}
}

func TestDeleteTransactionNotFoundPublishesNothing(t *testing.T) {
	svc, _, pub := newTestService(t)

	err := svc.DeleteTransaction(context.Background(), 9999)
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteTransaction() error = %v, want ErrNotFound", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("events published for failed delete: %+v", pub.events)
	}
}

func TestCreateCardChargeUnknownCard(t *testing.T) {
	svc, repo, pub := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCardCharge(ctx, core.CardChargeInput{
		Description: strPtr("dinner"),
		Amount:      f64Ptr(85.90),
		CardID:      i64Ptr(42),
	})
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("CreateCardCharge() error = %v, want ErrNotFound", err)
	}

	charges, err := repo.ListCardCharges(ctx, nil)
	if err != nil {
		t.Fatalf("ListCardCharges() error = %v", err)
	}
	if len(charges) != 0 {
		t.Errorf("charges persisted for unknown card: %+v", charges)
	}
	if len(pub.events) != 0 {
		t.Errorf("events published for failed charge: %+v", pub.events)
	}
}

func TestCreateCardChargeAndListByCard(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	cardID, err := svc.CreateCreditCard(ctx, core.CreditCardInput{
		Name:       strPtr("black"),
		DueDay:     i64Ptr(10),
		ClosingDay: i64Ptr(3),
	})
	if err != nil {
		t.Fatalf("CreateCreditCard() error = %v", err)
	}

	chargeID, err := svc.CreateCardCharge(ctx, core.CardChargeInput{
		Description: strPtr("fuel"),
		Amount:      f64Ptr(50),
		CardID:      &cardID,
	})
	if err != nil {
		t.Fatalf("CreateCardCharge() error = %v", err)
	}

	charges, err := svc.ListCardCharges(ctx, &cardID)
	if err != nil {
		t.Fatalf("ListCardCharges() error = %v", err)
	}
	if len(charges) != 1 || charges[0].ID != chargeID || charges[0].CardID != cardID {
		t.Fatalf("ListCardCharges() = %+v, want the created charge", charges)
	}

	unknown := int64(9999)
	if _, err := svc.ListCardCharges(ctx, &unknown); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ListCardCharges(unknown card) error = %v, want ErrNotFound", err)
	}

	wantEvents := []recordedEvent{
		{entity: amqp.EntityCreditCard, action: amqp.ActionCreated, id: cardID},
		{entity: amqp.EntityCardCharge, action: amqp.ActionCreated, id: chargeID},
	}
	if len(pub.events) != len(wantEvents) {
		t.Fatalf("published events = %+v, want %+v", pub.events, wantEvents)
	}
	for i, want := range wantEvents {
		if pub.events[i] != want {
			t.Errorf("events[%d] = %+v, want %+v", i, pub.events[i], want)
		}
	}
}

func TestCreateCreditCardNilClosingDay(t *testing.T) {
	svc, _, pub := newTestService(t)

	_, err := svc.CreateCreditCard(context.Background(), core.CreditCardInput{
		Name:   strPtr("gold"),
		DueDay: i64Ptr(10),
	})
	if !errors.Is(err, storage.ErrConstraint) {
		t.Fatalf("CreateCreditCard(nil closing day) error = %v, want ErrConstraint", err)
	}
	if len(pub.events) != 0 {
		t.Errorf("events published for failed card create: %+v", pub.events)
	}
}

func TestRecurringBillLifecycle(t *testing.T) {
	svc, _, pub := newTestService(t)
	ctx := context.Background()

	id, err := svc.CreateRecurringBill(ctx, core.RecurringBillInput{
		Description:     strPtr("rent"),
		EstimatedAmount: f64Ptr(1200),
		DueDay:          i64Ptr(5),
	})
	if err != nil {
		t.Fatalf("CreateRecurringBill() error = %v", err)
	}

	bills, err := svc.ListRecurringBills(ctx)
	if err != nil {
		t.Fatalf("ListRecurringBills() error = %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("ListRecurringBills() count = %d, want 1", len(bills))
	}
	if bills[0].Kind != core.KindExpense || bills[0].Recurrence != core.DefaultRecurrence ||
		bills[0].NotifyBeforeDays != core.DefaultNotifyBeforeDays {
		t.Errorf("ListRecurringBills()[0] = %+v, defaults not applied", bills[0])
	}

	if err := svc.DeleteRecurringBill(ctx, id); err != nil {
		t.Fatalf("DeleteRecurringBill() error = %v", err)
	}

	last := pub.events[len(pub.events)-1]
	want := recordedEvent{entity: amqp.EntityRecurringBill, action: amqp.ActionDeleted, id: id}
	if last != want {
		t.Errorf("last event = %+v, want %+v", last, want)
	}
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	svc, repo, pub := newTestService(t)
	pub.err = errors.New("broker unavailable")
	ctx := context.Background()

	id, err := svc.CreateTransaction(ctx, core.TransactionInput{
		Description: strPtr("groceries"),
		Amount:      f64Ptr(42.50),
		Kind:        strPtr("expense"),
	})
	if err != nil {
		t.Fatalf("CreateTransaction() error = %v, want nil despite publish failure", err)
	}
	if _, err := repo.GetTransaction(ctx, id); err != nil {
		t.Errorf("GetTransaction() error = %v, write should have committed", err)
	}
}

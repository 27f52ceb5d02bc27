package core

import (
	"strings"
	"time"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

// Defaults applied when the corresponding payload field is absent.
const (
	DefaultRecurrence       = "monthly"
	DefaultNotifyBeforeDays = 3
)

type (
	// Kind is an enumerated transaction direction. It is only enforced for
	// Transaction payloads; recurring bills store whatever string they were
	// given, defaulting to expense.
	Kind string

	Transaction struct {
		ID          int64
		Description string
		Amount      float64
		Kind        Kind
		Timestamp   time.Time
		Category    *string
	}

	RecurringBill struct {
		ID               int64
		Description      string
		EstimatedAmount  float64
		Kind             Kind
		DueDay           int64
		Recurrence       string
		NotifyBeforeDays int64
	}

	CreditCard struct {
		ID         int64
		Name       string
		DueDay     int64
		ClosingDay int64
	}

	CardCharge struct {
		ID          int64
		Description string
		Amount      float64
		PurchasedAt time.Time
		CardID      int64
	}
)

// TransactionInput is the write payload for a transaction. Pointer fields
// distinguish absent from zero.
type TransactionInput struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	Kind        *string  `json:"kind"`
	Category    *string  `json:"category"`
}

func (in TransactionInput) Validate() error {
	missing := missingFields(
		field{"description", in.Description == nil},
		field{"amount", in.Amount == nil},
		field{"kind", in.Kind == nil},
	)
	if len(missing) > 0 {
		return incompletef(missing)
	}
	if k := Kind(*in.Kind); k != KindExpense && k != KindIncome {
		return invalidf("invalid kind %q, use %q or %q", *in.Kind, KindExpense, KindIncome)
	}
	return nil
}

// Transaction builds the entity, stamping the given creation time in UTC.
func (in TransactionInput) Transaction(now time.Time) Transaction {
	return Transaction{
		Description: *in.Description,
		Amount:      *in.Amount,
		Kind:        Kind(*in.Kind),
		Timestamp:   now.UTC(),
		Category:    in.Category,
	}
}

// RecurringBillInput is the write payload for a recurring bill. due_day and
// recurrence are intentionally not range-checked.
type RecurringBillInput struct {
	Description      *string  `json:"description"`
	EstimatedAmount  *float64 `json:"estimated_amount"`
	Kind             *string  `json:"kind"`
	DueDay           *int64   `json:"due_day"`
	Recurrence       *string  `json:"recurrence"`
	NotifyBeforeDays *int64   `json:"notify_before_days"`
}

func (in RecurringBillInput) Validate() error {
	missing := missingFields(
		field{"description", in.Description == nil},
		field{"estimated_amount", in.EstimatedAmount == nil},
		field{"due_day", in.DueDay == nil},
	)
	if len(missing) > 0 {
		return incompletef(missing)
	}
	return nil
}

// Bill builds the entity, substituting defaults for absent optional fields.
func (in RecurringBillInput) Bill() RecurringBill {
	b := RecurringBill{
		Description:      *in.Description,
		EstimatedAmount:  *in.EstimatedAmount,
		Kind:             KindExpense,
		DueDay:           *in.DueDay,
		Recurrence:       DefaultRecurrence,
		NotifyBeforeDays: DefaultNotifyBeforeDays,
	}
	if in.Kind != nil {
		b.Kind = Kind(*in.Kind)
	}
	if in.Recurrence != nil {
		b.Recurrence = *in.Recurrence
	}
	if in.NotifyBeforeDays != nil {
		b.NotifyBeforeDays = *in.NotifyBeforeDays
	}
	return b
}

// CreditCardInput is the write payload for a credit card. ClosingDay is read
// without a presence check: an absent value reaches the store as NULL and
// fails there, at the nullability constraint.
type CreditCardInput struct {
	Name       *string `json:"name"`
	DueDay     *int64  `json:"due_day"`
	ClosingDay *int64  `json:"closing_day"`
}

func (in CreditCardInput) Validate() error {
	missing := missingFields(
		field{"name", in.Name == nil},
		field{"due_day", in.DueDay == nil},
	)
	if len(missing) > 0 {
		return incompletef(missing)
	}
	return nil
}

// CardChargeInput is the write payload for a card charge. The referenced
// card's existence is checked by the service, not here.
type CardChargeInput struct {
	Description *string  `json:"description"`
	Amount      *float64 `json:"amount"`
	CardID      *int64   `json:"card_id"`
}

func (in CardChargeInput) Validate() error {
	missing := missingFields(
		field{"description", in.Description == nil},
		field{"amount", in.Amount == nil},
		field{"card_id", in.CardID == nil},
	)
	if len(missing) > 0 {
		return incompletef(missing)
	}
	return nil
}

// Charge builds the entity, stamping the given purchase time in UTC.
func (in CardChargeInput) Charge(now time.Time) CardCharge {
	return CardCharge{
		Description: *in.Description,
		Amount:      *in.Amount,
		PurchasedAt: now.UTC(),
		CardID:      *in.CardID,
	}
}

type field struct {
	name   string
	absent bool
}

func missingFields(fields ...field) []string {
	var missing []string
	for _, f := range fields {
		if f.absent {
			missing = append(missing, f.name)
		}
	}
	return missing
}

func incompletef(missing []string) *ValidationError {
	return invalidf("incomplete payload (%s)", strings.Join(missing, ", "))
}

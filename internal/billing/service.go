package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// Service wraps invoicing and collection business rules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateInvoiceRequest, createdBy int64) (Invoice, error) {
	if err := httpx.Validate(req); err != nil {
		return Invoice{}, err
	}
	if req.DueDate.Before(req.InvoiceDate) {
		return Invoice{}, fmt.Errorf("%w: due_date precedes invoice_date", httpx.ErrValidation)
	}
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		docNumber, err := repo.GenerateNumber(ctx, req.InvoiceDate)
		if err != nil {
			return err
		}
		id, err = repo.Create(ctx, Invoice{
			DocNumber:    docNumber,
			BookingID:    req.BookingID,
			CustomerName: req.CustomerName,
			Currency:     req.Currency,
			TotalAmount:  req.TotalAmount,
			Status:       StatusDraft,
			InvoiceDate:  req.InvoiceDate,
			DueDate:      req.DueDate,
			Notes:        req.Notes,
			CreatedBy:    createdBy,
		})
		return err
	})
	if err != nil {
		return Invoice{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (Invoice, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Invoice, int, error) {
	return s.repo.List(ctx, filter)
}

// Bill issues a draft invoice to the customer. Only billed invoices accept
// payments and appear in collection monitoring.
func (s *Service) Bill(ctx context.Context, id int64) (Invoice, error) {
	var out Invoice
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		inv, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != StatusDraft {
			return fmt.Errorf("%w: invoice %s is already %s", httpx.ErrValidation, inv.DocNumber, inv.Status)
		}
		now := time.Now().UTC()
		inv.Status = StatusBilled
		inv.BilledAt = &now
		if err := repo.Update(ctx, inv); err != nil {
			return err
		}
		out = inv
		return nil
	})
	if err != nil {
		return Invoice{}, err
	}
	return out, nil
}

// ApplyPayment records a collection. Overpayment is rejected; exact payment
// closes the invoice.
func (s *Service) ApplyPayment(ctx context.Context, id int64, req PaymentRequest) (Invoice, error) {
	if err := httpx.Validate(req); err != nil {
		return Invoice{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		inv, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if inv.Status != StatusBilled && inv.Status != StatusPartiallyPaid {
			return fmt.Errorf("%w: invoice %s is %s and does not accept payments",
				httpx.ErrValidation, inv.DocNumber, inv.Status)
		}
		amount := RoundCents(req.Amount)
		if amount-inv.Outstanding() >= centEpsilon {
			return fmt.Errorf("%w: payment %.2f exceeds outstanding %.2f on %s",
				httpx.ErrValidation, amount, inv.Outstanding(), inv.DocNumber)
		}

		if err := repo.InsertPayment(ctx, Payment{
			InvoiceID: id,
			Amount:    amount,
			Method:    req.Method,
			Reference: req.Reference,
			PaidAt:    req.PaidAt,
		}); err != nil {
			return err
		}

		inv.AmountPaid = RoundCents(inv.AmountPaid + amount)
		if inv.Outstanding() < centEpsilon {
			now := time.Now().UTC()
			inv.Status = StatusPaid
			inv.PaidAt = &now
		} else {
			inv.Status = StatusPartiallyPaid
		}
		return repo.Update(ctx, inv)
	})
	if err != nil {
		return Invoice{}, err
	}
	return s.repo.Get(ctx, id)
}

// Aging groups outstanding balances by days overdue as of the given time.
func (s *Service) Aging(ctx context.Context, asOf time.Time) (AgingBucket, error) {
	invoices, err := s.repo.ListOutstanding(ctx)
	if err != nil {
		return AgingBucket{}, err
	}
	if asOf.IsZero() {
		asOf = time.Now()
	}
	var bucket AgingBucket
	for _, inv := range invoices {
		bucket.Age(inv.Outstanding(), inv.DueDate, asOf)
	}
	return bucket, nil
}

// Outstanding lists the invoices behind the aging figures, oldest due first.
func (s *Service) Outstanding(ctx context.Context) ([]Invoice, error) {
	return s.repo.ListOutstanding(ctx)
}

package cashadvance

import (
	"context"
	"fmt"
	"time"

	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// Service wraps cash advance business rules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateAdvanceRequest, requestedBy int64) (CashAdvance, error) {
	if err := httpx.Validate(req); err != nil {
		return CashAdvance{}, err
	}
	now := time.Now().UTC()
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		docNumber, err := repo.GenerateNumber(ctx, now)
		if err != nil {
			return err
		}
		id, err = repo.Create(ctx, CashAdvance{
			DocNumber:   docNumber,
			Category:    Category(req.Category),
			Purpose:     req.Purpose,
			BookingID:   req.BookingID,
			Amount:      req.Amount,
			Currency:    req.Currency,
			Status:      StatusRequested,
			RequestedBy: requestedBy,
			RequestedAt: now,
		})
		return err
	})
	if err != nil {
		return CashAdvance{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (CashAdvance, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]CashAdvance, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Approve(ctx context.Context, id, actorID int64) (CashAdvance, error) {
	return s.transition(ctx, id, StatusApproved, func(ca *CashAdvance, now time.Time) {
		ca.ApprovedBy = &actorID
		ca.ApprovedAt = &now
	})
}

func (s *Service) Reject(ctx context.Context, id, actorID int64, reason string) (CashAdvance, error) {
	if reason == "" {
		return CashAdvance{}, fmt.Errorf("%w: rejection requires a reason", httpx.ErrValidation)
	}
	return s.transition(ctx, id, StatusRejected, func(ca *CashAdvance, now time.Time) {
		ca.RejectedBy = &actorID
		ca.RejectedAt = &now
		ca.RejectionReason = &reason
	})
}

// Release records the funds handover. Requires the disburse grant at the
// route layer.
func (s *Service) Release(ctx context.Context, id, actorID int64) (CashAdvance, error) {
	return s.transition(ctx, id, StatusReleased, func(ca *CashAdvance, now time.Time) {
		ca.ReleasedBy = &actorID
		ca.ReleasedAt = &now
	})
}

// Liquidate closes a released advance against actual expenses. Receipted
// advances require a receipt reference on every expense line. Balance is
// advance minus expenses: positive means the requester owes a refund,
// negative means the company reimburses the difference.
func (s *Service) Liquidate(ctx context.Context, id int64, req LiquidateRequest) (LiquidationResult, error) {
	if err := httpx.Validate(req); err != nil {
		return LiquidationResult{}, err
	}
	var out CashAdvance
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		ca, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !ca.Status.CanTransition(StatusLiquidated) {
			return fmt.Errorf("%w: cash advance %s cannot be liquidated from %s",
				httpx.ErrValidation, ca.DocNumber, ca.Status)
		}

		var total float64
		for _, e := range req.Expenses {
			if ca.Category == CategoryReceipted && (e.ReceiptRef == nil || *e.ReceiptRef == "") {
				return fmt.Errorf("%w: receipted advance %s requires a receipt reference on every expense",
					httpx.ErrValidation, ca.DocNumber)
			}
			total += e.Amount
			if err := repo.InsertExpense(ctx, Expense{
				AdvanceID:   id,
				Description: e.Description,
				Amount:      e.Amount,
				ReceiptRef:  e.ReceiptRef,
				SpentAt:     e.SpentAt,
			}); err != nil {
				return err
			}
		}

		now := time.Now().UTC()
		ca.Status = StatusLiquidated
		ca.LiquidatedAt = &now
		ca.ExpenseTotal = roundCents(total)
		ca.Balance = roundCents(ca.Amount - ca.ExpenseTotal)
		if err := repo.Update(ctx, ca); err != nil {
			return err
		}
		out = ca
		return nil
	})
	if err != nil {
		return LiquidationResult{}, err
	}
	full, err := s.repo.Get(ctx, out.ID)
	if err != nil {
		return LiquidationResult{}, err
	}
	return LiquidationResult{Advance: full, Settlement: Settle(full.Balance)}, nil
}

func (s *Service) transition(ctx context.Context, id int64, target Status, apply func(*CashAdvance, time.Time)) (CashAdvance, error) {
	var out CashAdvance
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		ca, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !ca.Status.CanTransition(target) {
			return fmt.Errorf("%w: cash advance %s cannot move from %s to %s",
				httpx.ErrValidation, ca.DocNumber, ca.Status, target)
		}
		ca.Status = target
		apply(&ca, time.Now().UTC())
		if err := repo.Update(ctx, ca); err != nil {
			return err
		}
		out = ca
		return nil
	})
	if err != nil {
		return CashAdvance{}, err
	}
	return out, nil
}

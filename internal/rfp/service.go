package rfp

import (
	"context"
	"fmt"
	"time"

	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// Service wraps request-for-payment business rules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, req CreateRFPRequest, createdBy int64) (RFP, error) {
	if err := httpx.Validate(req); err != nil {
		return RFP{}, err
	}
	var id int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		docNumber, err := repo.GenerateNumber(ctx, time.Now().UTC())
		if err != nil {
			return err
		}
		id, err = repo.Create(ctx, RFP{
			DocNumber: docNumber,
			Payee:     req.Payee,
			Purpose:   req.Purpose,
			BookingID: req.BookingID,
			Amount:    req.Amount,
			Currency:  req.Currency,
			DueDate:   req.DueDate,
			Status:    StatusDraft,
			CreatedBy: createdBy,
		})
		return err
	})
	if err != nil {
		return RFP{}, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (RFP, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]RFP, int, error) {
	return s.repo.List(ctx, filter)
}

// Update patches a draft. Everything past draft is immutable.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRFPRequest) (RFP, error) {
	if err := httpx.Validate(req); err != nil {
		return RFP{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		r, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if r.Status != StatusDraft {
			return fmt.Errorf("%w: rfp %s is %s, only drafts are editable",
				httpx.ErrValidation, r.DocNumber, r.Status)
		}
		if req.Payee != nil {
			r.Payee = *req.Payee
		}
		if req.Purpose != nil {
			r.Purpose = *req.Purpose
		}
		if req.Amount != nil {
			r.Amount = *req.Amount
		}
		if req.DueDate != nil {
			r.DueDate = *req.DueDate
		}
		return repo.Update(ctx, r)
	})
	if err != nil {
		return RFP{}, err
	}
	return s.repo.Get(ctx, id)
}

// Submit queues a draft for approval.
func (s *Service) Submit(ctx context.Context, id int64) (RFP, error) {
	return s.transition(ctx, id, StatusPending, func(r *RFP, now time.Time) {
		r.SubmittedAt = &now
	})
}

func (s *Service) Approve(ctx context.Context, id, actorID int64) (RFP, error) {
	return s.transition(ctx, id, StatusApproved, func(r *RFP, now time.Time) {
		r.ApprovedBy = &actorID
		r.ApprovedAt = &now
	})
}

func (s *Service) Reject(ctx context.Context, id, actorID int64, reason string) (RFP, error) {
	if reason == "" {
		return RFP{}, fmt.Errorf("%w: rejection requires a reason", httpx.ErrValidation)
	}
	return s.transition(ctx, id, StatusRejected, func(r *RFP, now time.Time) {
		r.RejectedBy = &actorID
		r.RejectedAt = &now
		r.RejectionReason = &reason
	})
}

// Disburse records the payout of an approved request.
func (s *Service) Disburse(ctx context.Context, id, actorID int64, req DisburseRequest) (RFP, error) {
	if err := httpx.Validate(req); err != nil {
		return RFP{}, err
	}
	method := PaymentMethod(req.Method)
	if method != MethodCash && (req.PaymentRef == nil || *req.PaymentRef == "") {
		return RFP{}, fmt.Errorf("%w: %s disbursement requires a payment reference",
			httpx.ErrValidation, method)
	}
	return s.transition(ctx, id, StatusDisbursed, func(r *RFP, now time.Time) {
		r.DisbursedBy = &actorID
		r.DisbursedAt = &now
		r.Method = &method
		r.PaymentRef = req.PaymentRef
	})
}

func (s *Service) transition(ctx context.Context, id int64, target Status, apply func(*RFP, time.Time)) (RFP, error) {
	var out RFP
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		r, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !r.Status.CanTransition(target) {
			return fmt.Errorf("%w: rfp %s cannot move from %s to %s",
				httpx.ErrValidation, r.DocNumber, r.Status, target)
		}
		r.Status = target
		apply(&r, time.Now().UTC())
		if err := repo.Update(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return RFP{}, err
	}
	return out, nil
}

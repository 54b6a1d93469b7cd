package quotations

import (
	"context"
	"fmt"
	"time"

	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/platform/httpx"
)

// Service wraps quotation business rules.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func buildLines(quotationID int64, reqs []ChargeLineRequest) ([]ChargeLine, float64) {
	lines := make([]ChargeLine, 0, len(reqs))
	var total float64
	for i, lr := range reqs {
		amount := LineAmount(lr.Quantity, lr.UnitRate)
		total += amount
		lines = append(lines, ChargeLine{
			QuotationID: quotationID,
			Description: lr.Description,
			Basis:       lr.Basis,
			Quantity:    lr.Quantity,
			UnitRate:    lr.UnitRate,
			Amount:      amount,
			LineOrder:   i + 1,
		})
	}
	return lines, total
}

func (s *Service) Create(ctx context.Context, req CreateQuotationRequest, createdBy int64) (Quotation, error) {
	if err := httpx.Validate(req); err != nil {
		return Quotation{}, err
	}
	if req.ValidUntil.Before(req.QuoteDate) {
		return Quotation{}, fmt.Errorf("%w: valid_until precedes quote_date", httpx.ErrValidation)
	}

	var quotationID int64
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		docNumber, err := repo.GenerateNumber(ctx, req.QuoteDate)
		if err != nil {
			return err
		}
		lines, total := buildLines(0, req.Lines)
		id, err := repo.Create(ctx, Quotation{
			DocNumber:    docNumber,
			ServiceType:  milestones.ServiceType(req.ServiceType),
			CustomerName: req.CustomerName,
			OriginPort:   req.OriginPort,
			DestPort:     req.DestPort,
			Currency:     req.Currency,
			Status:       StatusDraft,
			QuoteDate:    req.QuoteDate,
			ValidUntil:   req.ValidUntil,
			TotalAmount:  total,
			Notes:        req.Notes,
			CreatedBy:    createdBy,
		})
		if err != nil {
			return err
		}
		quotationID = id
		for _, line := range lines {
			line.QuotationID = id
			if err := repo.InsertLine(ctx, line); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Quotation{}, err
	}
	return s.repo.Get(ctx, quotationID)
}

func (s *Service) Get(ctx context.Context, id int64) (Quotation, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Quotation, int, error) {
	return s.repo.List(ctx, filter)
}

// Update patches a draft. Submitted and decided quotations are immutable.
func (s *Service) Update(ctx context.Context, id int64, req UpdateQuotationRequest) (Quotation, error) {
	if err := httpx.Validate(req); err != nil {
		return Quotation{}, err
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if q.Status != StatusDraft {
			return fmt.Errorf("%w: quotation %s is %s, only drafts are editable",
				httpx.ErrValidation, q.DocNumber, q.Status)
		}
		if req.CustomerName != nil {
			q.CustomerName = *req.CustomerName
		}
		if req.OriginPort != nil {
			q.OriginPort = *req.OriginPort
		}
		if req.DestPort != nil {
			q.DestPort = *req.DestPort
		}
		if req.Currency != nil {
			q.Currency = *req.Currency
		}
		if req.ValidUntil != nil {
			if req.ValidUntil.Before(q.QuoteDate) {
				return fmt.Errorf("%w: valid_until precedes quote_date", httpx.ErrValidation)
			}
			q.ValidUntil = *req.ValidUntil
		}
		if req.Notes != nil {
			q.Notes = req.Notes
		}
		if req.Lines != nil {
			if err := repo.DeleteLines(ctx, id); err != nil {
				return err
			}
			lines, total := buildLines(id, req.Lines)
			for _, line := range lines {
				if err := repo.InsertLine(ctx, line); err != nil {
					return err
				}
			}
			q.TotalAmount = total
		}
		return repo.Update(ctx, q)
	})
	if err != nil {
		return Quotation{}, err
	}
	return s.repo.Get(ctx, id)
}

// Submit moves a draft into the approval queue.
func (s *Service) Submit(ctx context.Context, id int64) (Quotation, error) {
	return s.transition(ctx, id, StatusSubmitted, 0, nil)
}

// Approve records the decision and the deciding actor.
func (s *Service) Approve(ctx context.Context, id int64, actorID int64) (Quotation, error) {
	return s.transition(ctx, id, StatusApproved, actorID, nil)
}

// Reject records the decision, the actor, and the mandatory reason.
func (s *Service) Reject(ctx context.Context, id int64, actorID int64, reason string) (Quotation, error) {
	if reason == "" {
		return Quotation{}, fmt.Errorf("%w: rejection requires a reason", httpx.ErrValidation)
	}
	return s.transition(ctx, id, StatusRejected, actorID, &reason)
}

func (s *Service) transition(ctx context.Context, id int64, target Status, actorID int64, reason *string) (Quotation, error) {
	var out Quotation
	err := s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		q, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if !q.Status.CanTransition(target) {
			return fmt.Errorf("%w: quotation %s cannot move from %s to %s",
				httpx.ErrValidation, q.DocNumber, q.Status, target)
		}
		now := time.Now().UTC()
		q.Status = target
		switch target {
		case StatusSubmitted:
			q.SubmittedAt = &now
		case StatusApproved:
			q.ApprovedBy = &actorID
			q.ApprovedAt = &now
		case StatusRejected:
			q.RejectedBy = &actorID
			q.RejectedAt = &now
			q.RejectionReason = reason
		}
		if err := repo.Update(ctx, q); err != nil {
			return err
		}
		out = q
		return nil
	})
	if err != nil {
		return Quotation{}, err
	}
	return out, nil
}

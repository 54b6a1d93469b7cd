package bookings

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sbclc/sbclc/internal/milestones"
	"github.com/sbclc/sbclc/internal/platform/httpx"
	"github.com/sbclc/sbclc/internal/workflow"
)

// Service wraps booking business rules. Creating a booking snapshots the
// active milestone set for its service type into tracking records.
type Service struct {
	logger  *slog.Logger
	repo    Repository
	tracker *milestones.Tracker
}

func NewService(logger *slog.Logger, repo Repository, tracker *milestones.Tracker) *Service {
	return &Service{logger: logger, repo: repo, tracker: tracker}
}

func (s *Service) Create(ctx context.Context, req CreateBookingRequest, createdBy int64) (Booking, error) {
	if err := httpx.Validate(req); err != nil {
		return Booking{}, err
	}
	serviceType := milestones.ServiceType(req.ServiceType)

	ref, err := s.repo.GenerateRef(ctx, req.BookingDate)
	if err != nil {
		return Booking{}, err
	}

	booking := Booking{
		BookingRef:    ref,
		ServiceType:   serviceType,
		Status:        StatusPending,
		CustomerName:  req.CustomerName,
		Consignee:     req.Consignee,
		OriginPort:    req.OriginPort,
		DestPort:      req.DestPort,
		Commodity:     req.Commodity,
		GrossWeightKg: req.GrossWeightKg,
		VolumeCbm:     req.VolumeCbm,
		ContainerQty:  req.ContainerQty,
		BookingDate:   req.BookingDate,
		Remarks:       req.Remarks,
		CreatedBy:     createdBy,
	}
	id, err := s.repo.Create(ctx, booking)
	if err != nil {
		return Booking{}, err
	}

	if _, err := s.tracker.Snapshot(ctx, id, serviceType, req.BookingDate); err != nil {
		// The booking exists; surface the failure so the operator re-runs
		// the checklist setup instead of silently tracking nothing.
		s.logger.Error("snapshot milestones", slog.Int64("booking_id", id), slog.Any("error", err))
		return Booking{}, fmt.Errorf("snapshot milestones for booking %s: %w", ref, err)
	}

	return s.repo.Get(ctx, id)
}

func (s *Service) Get(ctx context.Context, id int64) (Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Booking, int, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown status %q", httpx.ErrValidation, filter.Status)
	}
	if filter.ServiceType != "" && !filter.ServiceType.IsValid() {
		return nil, 0, fmt.Errorf("%w: unknown service type %q", httpx.ErrValidation, filter.ServiceType)
	}
	return s.repo.List(ctx, filter)
}

// Update patches booking details. Service type and booking date are fixed at
// intake because the milestone snapshot derives from them.
func (s *Service) Update(ctx context.Context, id int64, req UpdateBookingRequest) (Booking, error) {
	if err := httpx.Validate(req); err != nil {
		return Booking{}, err
	}
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if req.CustomerName != nil {
		booking.CustomerName = *req.CustomerName
	}
	if req.Consignee != nil {
		booking.Consignee = req.Consignee
	}
	if req.OriginPort != nil {
		booking.OriginPort = *req.OriginPort
	}
	if req.DestPort != nil {
		booking.DestPort = *req.DestPort
	}
	if req.Commodity != nil {
		booking.Commodity = *req.Commodity
	}
	if req.GrossWeightKg != nil {
		booking.GrossWeightKg = *req.GrossWeightKg
	}
	if req.VolumeCbm != nil {
		booking.VolumeCbm = *req.VolumeCbm
	}
	if req.ContainerQty != nil {
		booking.ContainerQty = *req.ContainerQty
	}
	if req.Remarks != nil {
		booking.Remarks = req.Remarks
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return Booking{}, err
	}
	return s.repo.Get(ctx, id)
}

// SetStatus moves the booking through its lifecycle.
func (s *Service) SetStatus(ctx context.Context, id int64, target Status) (Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if !booking.Status.CanTransition(target) {
		return Booking{}, fmt.Errorf("%w: booking %s cannot move from %s to %s",
			httpx.ErrValidation, booking.BookingRef, booking.Status, target)
	}
	booking.Status = target
	if err := s.repo.Update(ctx, booking); err != nil {
		return Booking{}, err
	}
	return booking, nil
}

// BookingInfo satisfies the workflow assistant's booking source.
func (s *Service) BookingInfo(ctx context.Context, id int64) (workflow.BookingInfo, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return workflow.BookingInfo{}, err
	}
	return workflow.BookingInfo{ServiceType: booking.ServiceType, BookingDate: booking.BookingDate}, nil
}

var _ workflow.BookingSource = (*Service)(nil)

package rfp

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type memoryRFPRepo struct {
	rfps   map[int64]RFP
	nextID int64
	seq    int64
}

func newMemoryRFPRepo() *memoryRFPRepo {
	return &memoryRFPRepo{rfps: make(map[int64]RFP), nextID: 1}
}

func (m *memoryRFPRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memoryRFPRepo) Create(_ context.Context, r RFP) (int64, error) {
	r.ID = m.nextID
	m.nextID++
	m.rfps[r.ID] = r
	return r.ID, nil
}

func (m *memoryRFPRepo) Get(_ context.Context, id int64) (RFP, error) {
	r, ok := m.rfps[id]
	if !ok {
		return RFP{}, httpx.ErrNotFound
	}
	return r, nil
}

func (m *memoryRFPRepo) List(_ context.Context, filter ListFilter) ([]RFP, int, error) {
	var out []RFP
	for _, r := range m.rfps {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		out = append(out, r)
	}
	return out, len(out), nil
}

func (m *memoryRFPRepo) Update(_ context.Context, r RFP) error {
	if _, ok := m.rfps[r.ID]; !ok {
		return httpx.ErrNotFound
	}
	m.rfps[r.ID] = r
	return nil
}

func (m *memoryRFPRepo) GenerateNumber(_ context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("RFP-%s-%04d", date.Format("0601"), m.seq), nil
}

func rfpRequest() CreateRFPRequest {
	return CreateRFPRequest{
		Payee:    "Harbor Centre Port Services",
		Purpose:  "Storage charges, week 15",
		Amount:   12500,
		Currency: "PHP",
		DueDate:  time.Date(2026, 4, 20, 0, 0, 0, 0, time.UTC),
	}
}

func approved(t *testing.T, svc *Service) RFP {
	t.Helper()
	r, err := svc.Create(context.Background(), rfpRequest(), 5)
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), r.ID)
	require.NoError(t, err)
	r, err = svc.Approve(context.Background(), r.ID, 9)
	require.NoError(t, err)
	return r
}

func TestFullLifecycle(t *testing.T) {
	svc := NewService(newMemoryRFPRepo())
	r := approved(t, svc)
	require.Equal(t, StatusApproved, r.Status)
	require.Equal(t, int64(9), *r.ApprovedBy)

	ref := "CHK-0042"
	r, err := svc.Disburse(context.Background(), r.ID, 11, DisburseRequest{Method: "check", PaymentRef: &ref})
	require.NoError(t, err)
	require.Equal(t, StatusDisbursed, r.Status)
	require.Equal(t, MethodCheck, *r.Method)
	require.Equal(t, int64(11), *r.DisbursedBy)
}

func TestDisburseRequiresApproval(t *testing.T) {
	svc := NewService(newMemoryRFPRepo())
	r, err := svc.Create(context.Background(), rfpRequest(), 5)
	require.NoError(t, err)

	_, err = svc.Disburse(context.Background(), r.ID, 11, DisburseRequest{Method: "cash"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestNonCashDisbursementNeedsReference(t *testing.T) {
	svc := NewService(newMemoryRFPRepo())
	r := approved(t, svc)

	_, err := svc.Disburse(context.Background(), r.ID, 11, DisburseRequest{Method: "bank_transfer"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Disburse(context.Background(), r.ID, 11, DisburseRequest{Method: "cash"})
	require.NoError(t, err)
}

func TestRejectFromPendingOnly(t *testing.T) {
	svc := NewService(newMemoryRFPRepo())
	r, err := svc.Create(context.Background(), rfpRequest(), 5)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), r.ID, 9, "missing billing statement")
	require.ErrorIs(t, err, httpx.ErrValidation, "drafts cannot be rejected")

	_, err = svc.Submit(context.Background(), r.ID)
	require.NoError(t, err)

	r, err = svc.Reject(context.Background(), r.ID, 9, "missing billing statement")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, r.Status)
	require.Equal(t, "missing billing statement", *r.RejectionReason)

	_, err = svc.Submit(context.Background(), r.ID)
	require.ErrorIs(t, err, httpx.ErrValidation, "rejected requests are terminal")
}

func TestUpdateOnlyDraft(t *testing.T) {
	svc := NewService(newMemoryRFPRepo())
	r, err := svc.Create(context.Background(), rfpRequest(), 5)
	require.NoError(t, err)

	amount := 9999.0
	r, err = svc.Update(context.Background(), r.ID, UpdateRFPRequest{Amount: &amount})
	require.NoError(t, err)
	require.Equal(t, 9999.0, r.Amount)

	_, err = svc.Submit(context.Background(), r.ID)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), r.ID, UpdateRFPRequest{Amount: &amount})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

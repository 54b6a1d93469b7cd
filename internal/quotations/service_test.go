package quotations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type memoryQuotationRepo struct {
	quotations map[int64]Quotation
	lines      map[int64][]ChargeLine
	nextID     int64
	nextLineID int64
	seq        int64
}

func newMemoryQuotationRepo() *memoryQuotationRepo {
	return &memoryQuotationRepo{
		quotations: make(map[int64]Quotation),
		lines:      make(map[int64][]ChargeLine),
		nextID:     1,
		nextLineID: 1,
	}
}

func (m *memoryQuotationRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memoryQuotationRepo) Create(_ context.Context, q Quotation) (int64, error) {
	q.ID = m.nextID
	m.nextID++
	m.quotations[q.ID] = q
	return q.ID, nil
}

func (m *memoryQuotationRepo) InsertLine(_ context.Context, line ChargeLine) error {
	line.ID = m.nextLineID
	m.nextLineID++
	m.lines[line.QuotationID] = append(m.lines[line.QuotationID], line)
	return nil
}

func (m *memoryQuotationRepo) DeleteLines(_ context.Context, quotationID int64) error {
	delete(m.lines, quotationID)
	return nil
}

func (m *memoryQuotationRepo) Get(_ context.Context, id int64) (Quotation, error) {
	q, ok := m.quotations[id]
	if !ok {
		return Quotation{}, httpx.ErrNotFound
	}
	q.Lines = append([]ChargeLine(nil), m.lines[id]...)
	return q, nil
}

func (m *memoryQuotationRepo) List(_ context.Context, filter ListFilter) ([]Quotation, int, error) {
	var out []Quotation
	for _, q := range m.quotations {
		if filter.Status != "" && q.Status != filter.Status {
			continue
		}
		out = append(out, q)
	}
	return out, len(out), nil
}

func (m *memoryQuotationRepo) Update(_ context.Context, q Quotation) error {
	if _, ok := m.quotations[q.ID]; !ok {
		return httpx.ErrNotFound
	}
	q.Lines = nil
	m.quotations[q.ID] = q
	return nil
}

func (m *memoryQuotationRepo) GenerateNumber(_ context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("QT-%s-%04d", date.Format("0601"), m.seq), nil
}

func createReq() CreateQuotationRequest {
	return CreateQuotationRequest{
		ServiceType:  "import",
		CustomerName: "Acme Trading",
		OriginPort:   "Busan",
		DestPort:     "Manila",
		Currency:     "PHP",
		QuoteDate:    time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		ValidUntil:   time.Date(2026, 6, 4, 0, 0, 0, 0, time.UTC),
		Lines: []ChargeLineRequest{
			{Description: "Ocean freight", Basis: "per_container", Quantity: 2, UnitRate: 1500},
			{Description: "Documentation", Basis: "flat", Quantity: 1, UnitRate: 250},
		},
	}
}

func TestCreateComputesTotals(t *testing.T) {
	svc := NewService(newMemoryQuotationRepo())

	q, err := svc.Create(context.Background(), createReq(), 3)
	require.NoError(t, err)
	require.Equal(t, StatusDraft, q.Status)
	require.Equal(t, 3250.0, q.TotalAmount)
	require.Len(t, q.Lines, 2)
	require.Equal(t, 3000.0, q.Lines[0].Amount)
	require.Regexp(t, `^QT-2605-\d{4}$`, q.DocNumber)
}

func TestCreateRejectsInvertedValidity(t *testing.T) {
	svc := NewService(newMemoryQuotationRepo())
	req := createReq()
	req.ValidUntil = req.QuoteDate.AddDate(0, 0, -1)

	_, err := svc.Create(context.Background(), req, 3)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestLifecycle(t *testing.T) {
	svc := NewService(newMemoryQuotationRepo())
	q, err := svc.Create(context.Background(), createReq(), 3)
	require.NoError(t, err)

	q, err = svc.Submit(context.Background(), q.ID)
	require.NoError(t, err)
	require.Equal(t, StatusSubmitted, q.Status)
	require.NotNil(t, q.SubmittedAt)

	q, err = svc.Approve(context.Background(), q.ID, 9)
	require.NoError(t, err)
	require.Equal(t, StatusApproved, q.Status)
	require.NotNil(t, q.ApprovedBy)
	require.Equal(t, int64(9), *q.ApprovedBy)

	_, err = svc.Submit(context.Background(), q.ID)
	require.ErrorIs(t, err, httpx.ErrValidation, "approved quotations are terminal")
}

func TestRejectRecordsActorAndReason(t *testing.T) {
	svc := NewService(newMemoryQuotationRepo())
	q, err := svc.Create(context.Background(), createReq(), 3)
	require.NoError(t, err)

	_, err = svc.Submit(context.Background(), q.ID)
	require.NoError(t, err)

	q, err = svc.Reject(context.Background(), q.ID, 9, "rates above tariff")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, q.Status)
	require.Equal(t, int64(9), *q.RejectedBy)
	require.Equal(t, "rates above tariff", *q.RejectionReason)
}

func TestApproveRequiresSubmission(t *testing.T) {
	svc := NewService(newMemoryQuotationRepo())
	q, err := svc.Create(context.Background(), createReq(), 3)
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), q.ID, 9)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestUpdateOnlyDrafts(t *testing.T) {
	svc := NewService(newMemoryQuotationRepo())
	q, err := svc.Create(context.Background(), createReq(), 3)
	require.NoError(t, err)

	newLines := []ChargeLineRequest{{Description: "Trucking", Basis: "per_shipment", Quantity: 1, UnitRate: 800}}
	updated, err := svc.Update(context.Background(), q.ID, UpdateQuotationRequest{Lines: newLines})
	require.NoError(t, err)
	require.Equal(t, 800.0, updated.TotalAmount)
	require.Len(t, updated.Lines, 1)

	_, err = svc.Submit(context.Background(), q.ID)
	require.NoError(t, err)

	name := "Other Customer"
	_, err = svc.Update(context.Background(), q.ID, UpdateQuotationRequest{CustomerName: &name})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

package billing

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type memoryBillingRepo struct {
	invoices map[int64]Invoice
	payments map[int64][]Payment
	nextID   int64
	seq      int64
}

func newMemoryBillingRepo() *memoryBillingRepo {
	return &memoryBillingRepo{
		invoices: make(map[int64]Invoice),
		payments: make(map[int64][]Payment),
		nextID:   1,
	}
}

func (m *memoryBillingRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memoryBillingRepo) Create(_ context.Context, inv Invoice) (int64, error) {
	inv.ID = m.nextID
	m.nextID++
	m.invoices[inv.ID] = inv
	return inv.ID, nil
}

func (m *memoryBillingRepo) Get(_ context.Context, id int64) (Invoice, error) {
	inv, ok := m.invoices[id]
	if !ok {
		return Invoice{}, httpx.ErrNotFound
	}
	inv.Payments = append([]Payment(nil), m.payments[id]...)
	return inv, nil
}

func (m *memoryBillingRepo) List(_ context.Context, filter ListFilter) ([]Invoice, int, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	return out, len(out), nil
}

func (m *memoryBillingRepo) ListOutstanding(_ context.Context) ([]Invoice, error) {
	var out []Invoice
	for _, inv := range m.invoices {
		if inv.Status == StatusBilled || inv.Status == StatusPartiallyPaid {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (m *memoryBillingRepo) Update(_ context.Context, inv Invoice) error {
	if _, ok := m.invoices[inv.ID]; !ok {
		return httpx.ErrNotFound
	}
	inv.Payments = nil
	m.invoices[inv.ID] = inv
	return nil
}

func (m *memoryBillingRepo) InsertPayment(_ context.Context, p Payment) error {
	m.payments[p.InvoiceID] = append(m.payments[p.InvoiceID], p)
	return nil
}

func (m *memoryBillingRepo) GenerateNumber(_ context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("INV-%s-%04d", date.Format("0601"), m.seq), nil
}

func invoiceRequest(total float64, due time.Time) CreateInvoiceRequest {
	return CreateInvoiceRequest{
		CustomerName: "Acme Trading",
		Currency:     "PHP",
		TotalAmount:  total,
		InvoiceDate:  due.AddDate(0, 0, -30),
		DueDate:      due,
	}
}

func payment(amount float64) PaymentRequest {
	return PaymentRequest{
		Amount: amount,
		Method: "bank_transfer",
		PaidAt: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC),
	}
}

func billed(t *testing.T, svc *Service, total float64, due time.Time) Invoice {
	t.Helper()
	inv, err := svc.Create(context.Background(), invoiceRequest(total, due), 3)
	require.NoError(t, err)
	inv, err = svc.Bill(context.Background(), inv.ID)
	require.NoError(t, err)
	return inv
}

func TestPaymentFlowToPaid(t *testing.T) {
	svc := NewService(newMemoryBillingRepo())
	due := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	inv := billed(t, svc, 10000, due)

	inv, err := svc.ApplyPayment(context.Background(), inv.ID, payment(4000))
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, inv.Status)
	require.Equal(t, 6000.0, inv.Outstanding())

	inv, err = svc.ApplyPayment(context.Background(), inv.ID, payment(6000))
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)
	require.NotNil(t, inv.PaidAt)
	require.Len(t, inv.Payments, 2)
}

func TestFractionalPaymentsSettleExactly(t *testing.T) {
	svc := NewService(newMemoryBillingRepo())
	due := time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)
	inv := billed(t, svc, 0.30, due)

	inv, err := svc.ApplyPayment(context.Background(), inv.ID, payment(0.10))
	require.NoError(t, err)
	require.Equal(t, StatusPartiallyPaid, inv.Status)
	require.Equal(t, 0.20, inv.Outstanding())

	// 0.30 - 0.10 accumulates float64 noise; paying the displayed
	// remainder must still land and close the invoice.
	inv, err = svc.ApplyPayment(context.Background(), inv.ID, payment(0.20))
	require.NoError(t, err)
	require.Equal(t, StatusPaid, inv.Status)
	require.NotNil(t, inv.PaidAt)
	require.Equal(t, 0.0, inv.Outstanding())
}

func TestRoundCents(t *testing.T) {
	require.Equal(t, 0.20, RoundCents(0.30-0.10))
	require.Equal(t, 1234.57, RoundCents(1234.565000001))
	require.InDelta(t, 0.0, RoundCents(-0.004), 1e-9)
}

func TestOverpaymentRejected(t *testing.T) {
	svc := NewService(newMemoryBillingRepo())
	inv := billed(t, svc, 1000, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC))

	_, err := svc.ApplyPayment(context.Background(), inv.ID, payment(1500))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDraftRejectsPayments(t *testing.T) {
	svc := NewService(newMemoryBillingRepo())
	inv, err := svc.Create(context.Background(), invoiceRequest(1000, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC)), 3)
	require.NoError(t, err)

	_, err = svc.ApplyPayment(context.Background(), inv.ID, payment(100))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBillOnlyOnce(t *testing.T) {
	svc := NewService(newMemoryBillingRepo())
	inv := billed(t, svc, 1000, time.Date(2026, 5, 15, 0, 0, 0, 0, time.UTC))

	_, err := svc.Bill(context.Background(), inv.ID)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestAgingBuckets(t *testing.T) {
	svc := NewService(newMemoryBillingRepo())
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	billed(t, svc, 1000, asOf.AddDate(0, 0, 10))  // not yet due
	billed(t, svc, 2000, asOf.AddDate(0, 0, -10)) // 10 days late
	billed(t, svc, 3000, asOf.AddDate(0, 0, -45)) // 45 days late
	inv := billed(t, svc, 4000, asOf.AddDate(0, 0, -200))
	// Partially collected: only the remainder ages.
	_, err := svc.ApplyPayment(context.Background(), inv.ID, payment(1500))
	require.NoError(t, err)

	bucket, err := svc.Aging(context.Background(), asOf)
	require.NoError(t, err)
	require.Equal(t, 1000.0, bucket.Current)
	require.Equal(t, 2000.0, bucket.Bucket30)
	require.Equal(t, 3000.0, bucket.Bucket60)
	require.Equal(t, 0.0, bucket.Bucket90)
	require.Equal(t, 2500.0, bucket.Bucket120)
	require.Equal(t, 8500.0, bucket.Total())
}

func TestPaidInvoicesLeaveAging(t *testing.T) {
	svc := NewService(newMemoryBillingRepo())
	asOf := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	inv := billed(t, svc, 1000, asOf.AddDate(0, 0, -10))

	_, err := svc.ApplyPayment(context.Background(), inv.ID, payment(1000))
	require.NoError(t, err)

	bucket, err := svc.Aging(context.Background(), asOf)
	require.NoError(t, err)
	require.Equal(t, 0.0, bucket.Total())
}

func TestFormatMoney(t *testing.T) {
	require.Equal(t, "12,345.68", FormatMoney(12345.678))
	require.Equal(t, "0.00", FormatMoney(0))
	require.Equal(t, "-1,500.00", FormatMoney(-1500))
}

package cashadvance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sbclc/sbclc/internal/platform/httpx"
)

type memoryAdvanceRepo struct {
	advances map[int64]CashAdvance
	expenses map[int64][]Expense
	nextID   int64
	seq      int64
}

func newMemoryAdvanceRepo() *memoryAdvanceRepo {
	return &memoryAdvanceRepo{
		advances: make(map[int64]CashAdvance),
		expenses: make(map[int64][]Expense),
		nextID:   1,
	}
}

func (m *memoryAdvanceRepo) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	return fn(ctx, m)
}

func (m *memoryAdvanceRepo) Create(_ context.Context, ca CashAdvance) (int64, error) {
	ca.ID = m.nextID
	m.nextID++
	m.advances[ca.ID] = ca
	return ca.ID, nil
}

func (m *memoryAdvanceRepo) Get(_ context.Context, id int64) (CashAdvance, error) {
	ca, ok := m.advances[id]
	if !ok {
		return CashAdvance{}, httpx.ErrNotFound
	}
	ca.Expenses = append([]Expense(nil), m.expenses[id]...)
	return ca, nil
}

func (m *memoryAdvanceRepo) List(_ context.Context, filter ListFilter) ([]CashAdvance, int, error) {
	var out []CashAdvance
	for _, ca := range m.advances {
		if filter.Status != "" && ca.Status != filter.Status {
			continue
		}
		if filter.Category != "" && ca.Category != filter.Category {
			continue
		}
		out = append(out, ca)
	}
	return out, len(out), nil
}

func (m *memoryAdvanceRepo) Update(_ context.Context, ca CashAdvance) error {
	if _, ok := m.advances[ca.ID]; !ok {
		return httpx.ErrNotFound
	}
	ca.Expenses = nil
	m.advances[ca.ID] = ca
	return nil
}

func (m *memoryAdvanceRepo) InsertExpense(_ context.Context, e Expense) error {
	m.expenses[e.AdvanceID] = append(m.expenses[e.AdvanceID], e)
	return nil
}

func (m *memoryAdvanceRepo) GenerateNumber(_ context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("CA-%s-%04d", date.Format("0601"), m.seq), nil
}

func advanceRequest(category string, amount float64) CreateAdvanceRequest {
	return CreateAdvanceRequest{
		Category: category,
		Purpose:  "Port charges for BK-2604-0001",
		Amount:   amount,
		Currency: "PHP",
	}
}

func receipt(ref string) *string { return &ref }

func expenses(items ...Expense) LiquidateRequest {
	req := LiquidateRequest{}
	for _, e := range items {
		req.Expenses = append(req.Expenses, ExpenseRequest{
			Description: e.Description,
			Amount:      e.Amount,
			ReceiptRef:  e.ReceiptRef,
			SpentAt:     time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC),
		})
	}
	return req
}

func released(t *testing.T, svc *Service, category string, amount float64) CashAdvance {
	t.Helper()
	ca, err := svc.Create(context.Background(), advanceRequest(category, amount), 5)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), ca.ID, 9)
	require.NoError(t, err)
	ca, err = svc.Release(context.Background(), ca.ID, 11)
	require.NoError(t, err)
	return ca
}

func TestLifecycleToLiquidation(t *testing.T) {
	svc := NewService(newMemoryAdvanceRepo())
	ca := released(t, svc, "non_receipted", 5000)
	require.Equal(t, StatusReleased, ca.Status)
	require.Equal(t, int64(11), *ca.ReleasedBy)

	result, err := svc.Liquidate(context.Background(), ca.ID, expenses(
		Expense{Description: "Arrastre", Amount: 3000},
		Expense{Description: "Wharfage", Amount: 1200},
	))
	require.NoError(t, err)
	require.Equal(t, StatusLiquidated, result.Advance.Status)
	require.Equal(t, 4200.0, result.Advance.ExpenseTotal)
	require.Equal(t, 800.0, result.Advance.Balance)
	require.Equal(t, SettlementRefund, result.Settlement)
	require.Len(t, result.Advance.Expenses, 2)
}

func TestLiquidationOverspendIsReimbursement(t *testing.T) {
	svc := NewService(newMemoryAdvanceRepo())
	ca := released(t, svc, "non_receipted", 1000)

	result, err := svc.Liquidate(context.Background(), ca.ID, expenses(
		Expense{Description: "Detention charges", Amount: 1500},
	))
	require.NoError(t, err)
	require.Equal(t, -500.0, result.Advance.Balance)
	require.Equal(t, SettlementReimburse, result.Settlement)
}

func TestReceiptedRequiresReceipts(t *testing.T) {
	svc := NewService(newMemoryAdvanceRepo())
	ca := released(t, svc, "receipted", 1000)

	_, err := svc.Liquidate(context.Background(), ca.ID, expenses(
		Expense{Description: "Fuel", Amount: 400},
	))
	require.ErrorIs(t, err, httpx.ErrValidation)

	result, err := svc.Liquidate(context.Background(), ca.ID, expenses(
		Expense{Description: "Fuel", Amount: 400, ReceiptRef: receipt("OR-1234")},
	))
	require.NoError(t, err)
	require.Equal(t, 600.0, result.Advance.Balance)
}

func TestRejectOnlyBeforeRelease(t *testing.T) {
	svc := NewService(newMemoryAdvanceRepo())
	ca, err := svc.Create(context.Background(), advanceRequest("non_receipted", 2000), 5)
	require.NoError(t, err)

	ca, err = svc.Reject(context.Background(), ca.ID, 9, "no supporting booking")
	require.NoError(t, err)
	require.Equal(t, StatusRejected, ca.Status)
	require.Equal(t, "no supporting booking", *ca.RejectionReason)

	_, err = svc.Approve(context.Background(), ca.ID, 9)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestReleaseRequiresApproval(t *testing.T) {
	svc := NewService(newMemoryAdvanceRepo())
	ca, err := svc.Create(context.Background(), advanceRequest("non_receipted", 2000), 5)
	require.NoError(t, err)

	_, err = svc.Release(context.Background(), ca.ID, 11)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestLiquidateRequiresRelease(t *testing.T) {
	svc := NewService(newMemoryAdvanceRepo())
	ca, err := svc.Create(context.Background(), advanceRequest("non_receipted", 2000), 5)
	require.NoError(t, err)
	_, err = svc.Approve(context.Background(), ca.ID, 9)
	require.NoError(t, err)

	_, err = svc.Liquidate(context.Background(), ca.ID, expenses(Expense{Description: "Fuel", Amount: 100}))
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestSettleClassification(t *testing.T) {
	require.Equal(t, SettlementEven, Settle(0))
	require.Equal(t, SettlementRefund, Settle(0.01))
	require.Equal(t, SettlementReimburse, Settle(-0.01))
	// Sub-centavo residue from float64 arithmetic is even, not a refund.
	require.Equal(t, SettlementEven, Settle(0.30-0.10-0.20))
}

func TestLiquidationFractionalExpensesSettleEven(t *testing.T) {
	svc := NewService(newMemoryAdvanceRepo())
	ca := released(t, svc, "non_receipted", 0.30)

	res, err := svc.Liquidate(context.Background(), ca.ID, expenses(
		Expense{Description: "Jeepney fare", Amount: 0.10},
		Expense{Description: "Tricycle fare", Amount: 0.20},
	))
	require.NoError(t, err)
	require.Equal(t, StatusLiquidated, res.Advance.Status)
	require.Equal(t, 0.30, res.Advance.ExpenseTotal)
	require.Equal(t, 0.0, res.Advance.Balance)
	require.Equal(t, SettlementEven, res.Settlement)
}

package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/boardpay/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBillingTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.BillModel{},
		&models.PaymentModel{},
		&models.MeterReadingModel{},
	)
	require.NoError(t, err)

	return db
}

func newTestBill(t *testing.T, tenantID uuid.UUID, month time.Month, year int) *billing.Bill {
	t.Helper()
	bill, err := billing.NewBill(
		tenantID,
		uuid.New(),
		billing.NewPeriod(month, year),
		time.Date(year, month+1, 15, 0, 0, 0, 0, time.UTC),
		billing.Charges{
			MonthlyRent: decimal.NewFromInt(5000),
			WaterFee:    decimal.NewFromInt(300),
			Electricity: decimal.NewFromInt(600),
			InternetFee: decimal.NewFromInt(200),
		},
	)
	require.NoError(t, err)
	return bill
}

func TestGormBillRepository_SaveAndFindByID(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	t.Run("round-trips a new bill", func(t *testing.T) {
		bill := newTestBill(t, uuid.New(), time.March, 2025)
		require.NoError(t, repo.Save(ctx, bill))

		found, err := repo.FindByID(ctx, bill.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, bill.ID, found.ID)
		assert.Equal(t, bill.TenantID, found.TenantID)
		assert.Equal(t, time.March, found.BillingMonth)
		assert.Equal(t, 2025, found.BillingYear)
		assert.Equal(t, billing.BillStatusNotPaid, found.Status)
		assert.False(t, found.IsApproved)
		assert.True(t, found.MonthlyRent.Equal(decimal.NewFromInt(5000)))
		assert.True(t, found.TotalAmount().Equal(decimal.NewFromInt(6100)))
		assert.Equal(t, "2025-04-15", found.DueDate.Format("2006-01-02"))
	})

	t.Run("persists state transitions", func(t *testing.T) {
		bill := newTestBill(t, uuid.New(), time.April, 2025)
		require.NoError(t, repo.Save(ctx, bill))

		require.NoError(t, bill.ApplyPayment(
			valueobject.NewMoneyPHP(decimal.NewFromInt(2000)),
			time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), "gcash", "REF-1"))
		require.NoError(t, repo.Save(ctx, bill))

		found, err := repo.FindByID(ctx, bill.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, billing.BillStatusPending, found.Status)
		assert.True(t, found.AmountPaid.Equal(decimal.NewFromInt(2000)))
		assert.Equal(t, "gcash", found.PaymentMethod)
		assert.Equal(t, "REF-1", found.PaymentReference)
		require.NotNil(t, found.PaymentDate)
	})

	t.Run("returns nil for missing bill", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

func TestGormBillRepository_UniquePerPeriod(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	first := newTestBill(t, tenantID, time.March, 2025)
	require.NoError(t, repo.Save(ctx, first))

	duplicate := newTestBill(t, tenantID, time.March, 2025)
	err := repo.Save(ctx, duplicate)
	assert.Error(t, err)

	other := newTestBill(t, tenantID, time.April, 2025)
	assert.NoError(t, repo.Save(ctx, other))
}

func TestGormBillRepository_ExistsForPeriod(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	require.NoError(t, repo.Save(ctx, newTestBill(t, tenantID, time.March, 2025)))

	exists, err := repo.ExistsForPeriod(ctx, tenantID, billing.NewPeriod(time.March, 2025))
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsForPeriod(ctx, tenantID, billing.NewPeriod(time.April, 2025))
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = repo.ExistsForPeriod(ctx, uuid.New(), billing.NewPeriod(time.March, 2025))
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormBillRepository_FindPeriods(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	require.NoError(t, repo.Save(ctx, newTestBill(t, tenantID, time.December, 2024)))
	require.NoError(t, repo.Save(ctx, newTestBill(t, tenantID, time.February, 2025)))
	require.NoError(t, repo.Save(ctx, newTestBill(t, tenantID, time.January, 2025)))
	require.NoError(t, repo.Save(ctx, newTestBill(t, uuid.New(), time.March, 2025)))

	periods, err := repo.FindPeriods(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, periods, 3)
	assert.Equal(t, billing.NewPeriod(time.December, 2024), periods[0])
	assert.Equal(t, billing.NewPeriod(time.January, 2025), periods[1])
	assert.Equal(t, billing.NewPeriod(time.February, 2025), periods[2])
}

func TestGormBillRepository_FindEscalatable(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	asOf := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	pastDue := newTestBill(t, uuid.New(), time.March, 2025) // due 2025-04-15
	require.NoError(t, repo.Save(ctx, pastDue))

	pending := newTestBill(t, uuid.New(), time.March, 2025)
	require.NoError(t, pending.ApplyPayment(
		valueobject.NewMoneyPHP(decimal.NewFromInt(1000)), asOf, "cash", ""))
	require.NoError(t, repo.Save(ctx, pending))

	paid := newTestBill(t, uuid.New(), time.March, 2025)
	require.NoError(t, paid.ApplyPayment(
		valueobject.NewMoneyPHP(decimal.NewFromInt(6100)), asOf, "cash", ""))
	require.NoError(t, repo.Save(ctx, paid))

	notYetDue := newTestBill(t, uuid.New(), time.April, 2025) // due 2025-05-15
	require.NoError(t, repo.Save(ctx, notYetDue))

	alreadyOverdue := newTestBill(t, uuid.New(), time.March, 2025)
	require.NoError(t, alreadyOverdue.MarkOverdue(asOf, decimal.NewFromInt(5)))
	require.NoError(t, repo.Save(ctx, alreadyOverdue))

	bills, err := repo.FindEscalatable(ctx, asOf)
	require.NoError(t, err)
	require.Len(t, bills, 2)

	ids := []uuid.UUID{bills[0].ID, bills[1].ID}
	assert.Contains(t, ids, pastDue.ID)
	assert.Contains(t, ids, pending.ID)
}

func TestGormBillRepository_FindEscalatable_DueToday(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	dueToday := newTestBill(t, uuid.New(), time.March, 2025) // due 2025-04-15T00:00Z
	require.NoError(t, repo.Save(ctx, dueToday))

	t.Run("not escalatable on the due date itself", func(t *testing.T) {
		laterThatDay := time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC)
		bills, err := repo.FindEscalatable(ctx, laterThatDay)
		require.NoError(t, err)
		assert.Empty(t, bills)
	})

	t.Run("escalatable the next day", func(t *testing.T) {
		nextDay := time.Date(2025, 4, 16, 0, 30, 0, 0, time.UTC)
		bills, err := repo.FindEscalatable(ctx, nextDay)
		require.NoError(t, err)
		require.Len(t, bills, 1)
		assert.Equal(t, dueToday.ID, bills[0].ID)
	})
}

func TestGormBillRepository_FindDueBetween(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	from := time.Date(2025, 4, 12, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 5)

	inWindow := newTestBill(t, uuid.New(), time.March, 2025) // due 2025-04-15
	inWindow.Approve()
	require.NoError(t, repo.Save(ctx, inWindow))

	unapproved := newTestBill(t, uuid.New(), time.March, 2025)
	require.NoError(t, repo.Save(ctx, unapproved))

	outOfWindow := newTestBill(t, uuid.New(), time.April, 2025) // due 2025-05-15
	outOfWindow.Approve()
	require.NoError(t, repo.Save(ctx, outOfWindow))

	paid := newTestBill(t, uuid.New(), time.March, 2025)
	paid.Approve()
	require.NoError(t, paid.ApplyPayment(
		valueobject.NewMoneyPHP(decimal.NewFromInt(6100)), from, "cash", ""))
	require.NoError(t, repo.Save(ctx, paid))

	bills, err := repo.FindDueBetween(ctx, from, to)
	require.NoError(t, err)
	require.Len(t, bills, 1)
	assert.Equal(t, inWindow.ID, bills[0].ID)
}

func TestGormBillRepository_FindAll(t *testing.T) {
	db := setupBillingTestDB(t)
	repo := NewGormBillRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	for month := time.January; month <= time.May; month++ {
		require.NoError(t, repo.Save(ctx, newTestBill(t, tenantID, month, 2025)))
	}
	require.NoError(t, repo.Save(ctx, newTestBill(t, uuid.New(), time.January, 2025)))

	t.Run("filters by tenant", func(t *testing.T) {
		bills, total, err := repo.FindAll(ctx, billing.BillFilter{TenantID: &tenantID})
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, bills, 5)
	})

	t.Run("filters by period", func(t *testing.T) {
		period := billing.NewPeriod(time.January, 2025)
		bills, total, err := repo.FindAll(ctx, billing.BillFilter{Period: &period})
		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, bills, 2)
	})

	t.Run("filters by status", func(t *testing.T) {
		status := billing.BillStatusPaid
		bills, total, err := repo.FindAll(ctx, billing.BillFilter{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, bills)
	})

	t.Run("paginates with full total", func(t *testing.T) {
		filter := billing.BillFilter{TenantID: &tenantID}
		filter.Page = 1
		filter.PageSize = 2

		bills, total, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		assert.Equal(t, int64(5), total)
		assert.Len(t, bills, 2)
		// default ordering is newest period first
		assert.Equal(t, time.May, bills[0].BillingMonth)
	})

	t.Run("orders by a whitelisted field", func(t *testing.T) {
		filter := billing.BillFilter{TenantID: &tenantID}
		filter.OrderBy = "due_date"
		filter.OrderDir = "asc"

		bills, _, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, bills, 5)
		assert.Equal(t, time.January, bills[0].BillingMonth)
		assert.Equal(t, time.May, bills[4].BillingMonth)
	})

	t.Run("ignores an order field outside the whitelist", func(t *testing.T) {
		filter := billing.BillFilter{TenantID: &tenantID}
		filter.OrderBy = "due_date; DROP TABLE bills; --"

		bills, _, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, bills, 5)
		// falls back to the default newest-period-first ordering
		assert.Equal(t, time.May, bills[0].BillingMonth)

		var count int64
		require.NoError(t, db.Model(&models.BillModel{}).Count(&count).Error)
		assert.Equal(t, int64(6), count)
	})
}

func TestGormTransactionManager(t *testing.T) {
	db := setupBillingTestDB(t)
	billRepo := NewGormBillRepository(db)
	paymentRepo := NewGormPaymentRepository(db)
	manager := NewGormTransactionManager(db)
	ctx := context.Background()

	t.Run("commits when fn succeeds", func(t *testing.T) {
		bill := newTestBill(t, uuid.New(), time.March, 2025)
		payment, err := billing.NewPayment(bill.ID, bill.TenantID,
			valueobject.NewMoneyPHP(decimal.NewFromInt(1000)),
			time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC), "cash", "", "")
		require.NoError(t, err)

		err = manager.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := billRepo.Save(txCtx, bill); err != nil {
				return err
			}
			return paymentRepo.Save(txCtx, payment)
		})
		require.NoError(t, err)

		found, err := billRepo.FindByID(ctx, bill.ID)
		require.NoError(t, err)
		assert.NotNil(t, found)
		payments, err := paymentRepo.FindByBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Len(t, payments, 1)
	})

	t.Run("rolls back when fn fails", func(t *testing.T) {
		bill := newTestBill(t, uuid.New(), time.April, 2025)

		err := manager.WithinTransaction(ctx, func(txCtx context.Context) error {
			if err := billRepo.Save(txCtx, bill); err != nil {
				return err
			}
			return fmt.Errorf("ledger write failed")
		})
		require.Error(t, err)

		found, err := billRepo.FindByID(ctx, bill.ID)
		require.NoError(t, err)
		assert.Nil(t, found)
	})
}

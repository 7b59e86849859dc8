package billing

import (
	"context"
	"testing"
	"time"

	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/boardpay/backend/internal/domain/property"
	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ===================== in-memory fakes =====================

type memBillRepo struct {
	bills map[uuid.UUID]*billing.Bill
}

func newMemBillRepo() *memBillRepo {
	return &memBillRepo{bills: make(map[uuid.UUID]*billing.Bill)}
}

func (r *memBillRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Bill, error) {
	bill, ok := r.bills[id]
	if !ok {
		return nil, nil
	}
	copied := *bill
	return &copied, nil
}

func (r *memBillRepo) FindAll(_ context.Context, filter billing.BillFilter) ([]billing.Bill, int64, error) {
	var out []billing.Bill
	for _, b := range r.bills {
		if filter.TenantID != nil && b.TenantID != *filter.TenantID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	return out, int64(len(out)), nil
}

func (r *memBillRepo) ExistsForPeriod(_ context.Context, tenantID uuid.UUID, period billing.Period) (bool, error) {
	for _, b := range r.bills {
		if b.TenantID == tenantID && b.Period().Equal(period) {
			return true, nil
		}
	}
	return false, nil
}

func (r *memBillRepo) FindPeriods(_ context.Context, tenantID uuid.UUID) ([]billing.Period, error) {
	var out []billing.Period
	for _, b := range r.bills {
		if b.TenantID == tenantID {
			out = append(out, b.Period())
		}
	}
	return out, nil
}

func (r *memBillRepo) FindEscalatable(_ context.Context, asOf time.Time) ([]billing.Bill, error) {
	var out []billing.Bill
	for _, b := range r.bills {
		if b.Status.CanEscalate() && billing.IsPastDue(b.DueDate, asOf) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *memBillRepo) FindDueBetween(_ context.Context, from, to time.Time) ([]billing.Bill, error) {
	var out []billing.Bill
	for _, b := range r.bills {
		if !b.IsApproved || !b.Status.CountsAsUnpaid() {
			continue
		}
		if b.DueDate.Before(from) || b.DueDate.After(to) {
			continue
		}
		out = append(out, *b)
	}
	return out, nil
}

func (r *memBillRepo) Save(_ context.Context, bill *billing.Bill) error {
	copied := *bill
	r.bills[bill.ID] = &copied
	return nil
}

type memPaymentRepo struct {
	payments []billing.Payment
}

func (r *memPaymentRepo) Save(_ context.Context, p *billing.Payment) error {
	r.payments = append(r.payments, *p)
	return nil
}

func (r *memPaymentRepo) FindByBill(_ context.Context, billID uuid.UUID) ([]billing.Payment, error) {
	var out []billing.Payment
	for _, p := range r.payments {
		if p.BillID == billID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memReadingRepo struct {
	readings map[uuid.UUID]*billing.MeterReading
}

func newMemReadingRepo() *memReadingRepo {
	return &memReadingRepo{readings: make(map[uuid.UUID]*billing.MeterReading)}
}

func (r *memReadingRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.MeterReading, error) {
	reading, ok := r.readings[id]
	if !ok {
		return nil, nil
	}
	copied := *reading
	return &copied, nil
}

func (r *memReadingRepo) FindForPeriod(_ context.Context, tenantID uuid.UUID, period billing.Period) ([]billing.MeterReading, error) {
	var out []billing.MeterReading
	for _, m := range r.readings {
		if m.TenantID == tenantID && billing.PeriodOf(m.ReadingDate).Equal(period) {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (r *memReadingRepo) Save(_ context.Context, reading *billing.MeterReading) error {
	copied := *reading
	r.readings[reading.ID] = &copied
	return nil
}

type memTenantRepo struct {
	tenants map[uuid.UUID]*property.Tenant
}

func newMemTenantRepo() *memTenantRepo {
	return &memTenantRepo{tenants: make(map[uuid.UUID]*property.Tenant)}
}

func (r *memTenantRepo) FindByID(_ context.Context, id uuid.UUID) (*property.Tenant, error) {
	t, ok := r.tenants[id]
	if !ok {
		return nil, nil
	}
	copied := *t
	return &copied, nil
}

func (r *memTenantRepo) FindBillable(_ context.Context) ([]property.Tenant, error) {
	var out []property.Tenant
	for _, t := range r.tenants {
		if !t.Archived && t.HasRoom() {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *memTenantRepo) Save(_ context.Context, t *property.Tenant) error {
	copied := *t
	r.tenants[t.ID] = &copied
	return nil
}

type memRoomRepo struct {
	rooms map[uuid.UUID]*property.Room
}

func newMemRoomRepo() *memRoomRepo {
	return &memRoomRepo{rooms: make(map[uuid.UUID]*property.Room)}
}

func (r *memRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*property.Room, error) {
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	copied := *room
	return &copied, nil
}

func (r *memRoomRepo) FindByBuilding(_ context.Context, buildingID uuid.UUID) ([]property.Room, error) {
	var out []property.Room
	for _, room := range r.rooms {
		if room.BuildingID == buildingID {
			out = append(out, *room)
		}
	}
	return out, nil
}

func (r *memRoomRepo) Save(_ context.Context, room *property.Room) error {
	copied := *room
	r.rooms[room.ID] = &copied
	return nil
}

type memBuildingRepo struct {
	buildings map[uuid.UUID]*property.Building
}

func newMemBuildingRepo() *memBuildingRepo {
	return &memBuildingRepo{buildings: make(map[uuid.UUID]*property.Building)}
}

func (r *memBuildingRepo) FindByID(_ context.Context, id uuid.UUID) (*property.Building, error) {
	b, ok := r.buildings[id]
	if !ok {
		return nil, nil
	}
	copied := *b
	return &copied, nil
}

func (r *memBuildingRepo) Save(_ context.Context, b *property.Building) error {
	copied := *b
	r.buildings[b.ID] = &copied
	return nil
}

type stubUsageResolver struct {
	charge valueobject.Money
	ok     bool
	err    error
}

func (s *stubUsageResolver) ResolveUsageCharge(context.Context, uuid.UUID, billing.Period) (valueobject.Money, bool, error) {
	return s.charge, s.ok, s.err
}

type recordingNotifier struct {
	kinds []billing.EventKind
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, _ *billing.Bill, kind billing.EventKind) error {
	if n.err != nil {
		return n.err
	}
	n.kinds = append(n.kinds, kind)
	return nil
}

// ===================== fixture =====================

type engineFixture struct {
	engine    *Engine
	bills     *memBillRepo
	payments  *memPaymentRepo
	readings  *memReadingRepo
	tenants   *memTenantRepo
	rooms     *memRoomRepo
	buildings *memBuildingRepo
	usage     *stubUsageResolver
	notifier  *recordingNotifier
	now       time.Time
}

func newEngineFixture(t *testing.T, now time.Time) *engineFixture {
	t.Helper()

	f := &engineFixture{
		bills:     newMemBillRepo(),
		payments:  &memPaymentRepo{},
		readings:  newMemReadingRepo(),
		tenants:   newMemTenantRepo(),
		rooms:     newMemRoomRepo(),
		buildings: newMemBuildingRepo(),
		usage:     &stubUsageResolver{},
		notifier:  &recordingNotifier{},
		now:       now,
	}

	f.engine = NewEngine(EngineConfig{
		BillRepo:     f.bills,
		PaymentRepo:  f.payments,
		ReadingRepo:  f.readings,
		TenantRepo:   f.tenants,
		RoomRepo:     f.rooms,
		BuildingRepo: f.buildings,
		Usage:        f.usage,
		Notifier:     f.notifier,
		Now:          func() time.Time { return f.now },
	})

	return f
}

// addTenant wires a tenant into a fresh room and building with default
// fees rent 5000, water 300, internet 200 and a 5 percent late fee.
func (f *engineFixture) addTenant(t *testing.T, startDate time.Time) *property.Tenant {
	t.Helper()

	building, err := property.NewBuilding("Main House", "123 Sampaguita St", decimal.NewFromInt(5))
	require.NoError(t, err)
	require.NoError(t, building.SetDefaultFees(
		decimal.NewFromInt(5000),
		decimal.NewFromInt(300),
		decimal.NewFromInt(12),
		decimal.NewFromInt(200),
	))
	require.NoError(t, f.buildings.Save(context.Background(), building))

	room, err := property.NewRoom("101", building.ID)
	require.NoError(t, err)
	require.NoError(t, f.rooms.Save(context.Background(), room))

	tenant, err := property.NewTenant("Juan", "Dela Cruz", "09171234567", startDate)
	require.NoError(t, err)
	require.NoError(t, tenant.AssignRoom(room.ID))
	require.NoError(t, f.tenants.Save(context.Background(), tenant))

	return tenant
}

func (f *engineFixture) addReading(t *testing.T, tenant *property.Tenant, date time.Time) *billing.MeterReading {
	t.Helper()
	prev := decimal.NewFromInt(1200)
	reading, err := billing.NewMeterReading(tenant.ID, *tenant.RoomID, date, decimal.NewFromInt(1250), &prev, decimal.NewFromInt(12))
	require.NoError(t, err)
	require.NoError(t, f.readings.Save(context.Background(), reading))
	return reading
}

func (f *engineFixture) tenantBills(t *testing.T, tenantID uuid.UUID) []billing.Bill {
	t.Helper()
	bills, _, err := f.bills.FindAll(context.Background(), billing.BillFilter{TenantID: &tenantID})
	require.NoError(t, err)
	return bills
}

// ===================== tests =====================

func TestEngine_GenerateDueBills(t *testing.T) {
	ctx := context.Background()

	t.Run("creates bill on the anchor day", func(t *testing.T) {
		refDate := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, refDate)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		f.addReading(t, tenant, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
		f.usage.charge = valueobject.NewMoneyPHPFromFloat(600)
		f.usage.ok = true

		created, err := f.engine.GenerateDueBills(ctx, refDate)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		bills := f.tenantBills(t, tenant.ID)
		require.Len(t, bills, 1)
		bill := bills[0]
		assert.Equal(t, billing.NewPeriod(time.March, 2025), bill.Period())
		assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), bill.DueDate)
		assert.True(t, bill.MonthlyRent.Equal(decimal.NewFromInt(5000)))
		assert.True(t, bill.ElectricityFee.Equal(decimal.NewFromInt(600)))
		assert.Equal(t, billing.BillStatusNotPaid, bill.Status)
		assert.False(t, bill.IsApproved)
	})

	t.Run("skips tenants whose anchor day does not match", func(t *testing.T) {
		refDate := time.Date(2025, 3, 14, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, refDate)
		f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		created, err := f.engine.GenerateDueBills(ctx, refDate)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
	})

	t.Run("idempotent across repeated runs", func(t *testing.T) {
		refDate := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, refDate)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		f.addReading(t, tenant, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		created, err := f.engine.GenerateDueBills(ctx, refDate)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		created, err = f.engine.GenerateDueBills(ctx, refDate)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
		assert.Len(t, f.tenantBills(t, tenant.ID), 1)
	})

	t.Run("skips tenant with no completed meter reading", func(t *testing.T) {
		refDate := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, refDate)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		created, err := f.engine.GenerateDueBills(ctx, refDate)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
		assert.Empty(t, f.tenantBills(t, tenant.ID))
	})

	t.Run("first billing month bypasses the reading requirement", func(t *testing.T) {
		refDate := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, refDate)
		tenant := f.addTenant(t, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))

		created, err := f.engine.GenerateDueBills(ctx, refDate)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		bills := f.tenantBills(t, tenant.ID)
		require.Len(t, bills, 1)
		assert.True(t, bills[0].ElectricityFee.IsZero())
		assert.Equal(t, time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC), bills[0].DueDate)
	})

	t.Run("broken room chain skips the tenant without failing the batch", func(t *testing.T) {
		refDate := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, refDate)

		broken := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		delete(f.rooms.rooms, *broken.RoomID)
		f.addReading(t, broken, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		healthy := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		f.addReading(t, healthy, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))

		created, err := f.engine.GenerateDueBills(ctx, refDate)
		require.NoError(t, err)
		assert.Equal(t, 1, created)
		assert.Empty(t, f.tenantBills(t, broken.ID))
		assert.Len(t, f.tenantBills(t, healthy.ID), 1)
	})

	t.Run("usage resolver failure bills zero electricity", func(t *testing.T) {
		refDate := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, refDate)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		f.addReading(t, tenant, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC))
		f.usage.err = assert.AnError

		created, err := f.engine.GenerateDueBills(ctx, refDate)
		require.NoError(t, err)
		assert.Equal(t, 1, created)

		bills := f.tenantBills(t, tenant.ID)
		require.Len(t, bills, 1)
		assert.True(t, bills[0].ElectricityFee.IsZero())
	})
}

func TestEngine_GenerateInitialBill(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 20, 8, 0, 0, 0, time.UTC)

	t.Run("due one month after contract start", func(t *testing.T) {
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		bill, err := f.engine.GenerateInitialBill(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC), bill.DueDate)
		assert.True(t, bill.ElectricityFee.IsZero())
		assert.True(t, bill.TotalAmount().Equal(decimal.NewFromInt(5500)))
	})

	t.Run("end-of-month start clamps", func(t *testing.T) {
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC))

		bill, err := f.engine.GenerateInitialBill(ctx, tenant.ID)
		require.NoError(t, err)
		assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), bill.DueDate)
	})

	t.Run("duplicate rejected", func(t *testing.T) {
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		_, err := f.engine.GenerateInitialBill(ctx, tenant.ID)
		require.NoError(t, err)

		_, err = f.engine.GenerateInitialBill(ctx, tenant.ID)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "BILL_EXISTS", domainErr.Code)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		f := newEngineFixture(t, now)
		_, err := f.engine.GenerateInitialBill(ctx, uuid.New())
		assert.Error(t, err)
	})
}

func TestEngine_BackfillAllTenants(t *testing.T) {
	ctx := context.Background()

	t.Run("fills the gap from contract start to current month", func(t *testing.T) {
		now := time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		created, err := f.engine.BackfillAllTenants(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, created) // Jan through Apr

		bills := f.tenantBills(t, tenant.ID)
		require.Len(t, bills, 4)
	})

	t.Run("past-due synthesized bills are escalated with late fee", func(t *testing.T) {
		now := time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		_, err := f.engine.BackfillAllTenants(ctx)
		require.NoError(t, err)

		overdue := 0
		for _, bill := range f.tenantBills(t, tenant.ID) {
			if bill.Status == billing.BillStatusOverdue {
				overdue++
				// 5% of the 5500 subtotal
				assert.True(t, bill.LateFee.Equal(decimal.NewFromInt(275)), "late fee %s", bill.LateFee)
			} else {
				assert.Equal(t, billing.BillStatusNotPaid, bill.Status)
				assert.True(t, bill.LateFee.IsZero())
			}
		}
		// Jan bill due Feb 15 and Feb bill due Mar 15 are past due;
		// Mar bill due Apr 15 and Apr bill due May 15 are not.
		assert.Equal(t, 2, overdue)
	})

	t.Run("re-run creates nothing new", func(t *testing.T) {
		now := time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, now)
		f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		created, err := f.engine.BackfillAllTenants(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, created)

		created, err = f.engine.BackfillAllTenants(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, created)
	})

	t.Run("fills only missing periods", func(t *testing.T) {
		now := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))

		// Seed the February bill by hand; backfill should add Jan and Mar.
		seeded, err := billing.NewBill(tenant.ID, *tenant.RoomID, billing.NewPeriod(time.February, 2025),
			time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), billing.Charges{
				MonthlyRent: decimal.NewFromInt(5000),
				WaterFee:    decimal.NewFromInt(300),
				Electricity: decimal.Zero,
				InternetFee: decimal.NewFromInt(200),
			})
		require.NoError(t, err)
		require.NoError(t, f.bills.Save(ctx, seeded))

		created, err := f.engine.BackfillAllTenants(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, created)
		assert.Len(t, f.tenantBills(t, tenant.ID), 3)
	})
}

func TestEngine_UpdateBillStatuses(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 16, 8, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*engineFixture, *property.Tenant, *billing.Bill) {
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		bill, err := f.engine.GenerateBillForTenant(ctx, tenant.ID, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		// due 2025-04-15, now is 04-16
		return f, tenant, bill
	}

	t.Run("escalates past-due bills and applies late fee", func(t *testing.T) {
		f, tenant, _ := setup(t)

		escalated, err := f.engine.UpdateBillStatuses(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, escalated)

		bills := f.tenantBills(t, tenant.ID)
		require.Len(t, bills, 1)
		assert.Equal(t, billing.BillStatusOverdue, bills[0].Status)
		assert.True(t, bills[0].LateFee.Equal(decimal.NewFromInt(275)))
		assert.Contains(t, f.notifier.kinds, billing.EventKindOverdue)
	})

	t.Run("second sweep is a no-op", func(t *testing.T) {
		f, tenant, _ := setup(t)

		_, err := f.engine.UpdateBillStatuses(ctx)
		require.NoError(t, err)

		escalated, err := f.engine.UpdateBillStatuses(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, escalated)

		bills := f.tenantBills(t, tenant.ID)
		assert.True(t, bills[0].LateFee.Equal(decimal.NewFromInt(275)))
	})

	t.Run("paid bills are never escalated", func(t *testing.T) {
		f, tenant, bill := setup(t)

		_, err := f.engine.RecordPayment(ctx, RecordPaymentCommand{
			BillID: bill.ID,
			Amount: bill.TotalAmount(),
			Method: "Cash",
		})
		require.NoError(t, err)

		escalated, err := f.engine.UpdateBillStatuses(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, escalated)

		bills := f.tenantBills(t, tenant.ID)
		assert.Equal(t, billing.BillStatusPaid, bills[0].Status)
	})
}

func TestEngine_RecordPayment(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*engineFixture, *billing.Bill) {
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		bill, err := f.engine.GenerateBillForTenant(ctx, tenant.ID, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		return f, bill
	}

	t.Run("partial then full", func(t *testing.T) {
		f, bill := setup(t) // total 5500
		_, err := f.engine.Approve(ctx, bill.ID)
		require.NoError(t, err)
		f.notifier.kinds = nil

		updated, err := f.engine.RecordPayment(ctx, RecordPaymentCommand{
			BillID:    bill.ID,
			Amount:    decimal.NewFromInt(3000),
			Method:    "GCash",
			Reference: "REF-1",
		})
		require.NoError(t, err)
		assert.Equal(t, billing.BillStatusPending, updated.Status)
		assert.Empty(t, f.notifier.kinds)

		updated, err = f.engine.RecordPayment(ctx, RecordPaymentCommand{
			BillID: bill.ID,
			Amount: decimal.NewFromInt(2500),
			Method: "GCash",
		})
		require.NoError(t, err)
		assert.Equal(t, billing.BillStatusPaid, updated.Status)
		assert.True(t, updated.AmountPaid.Equal(decimal.NewFromInt(5500)))
		assert.Contains(t, f.notifier.kinds, billing.EventKindPaymentConfirmed)

		ledger, err := f.engine.ListPayments(ctx, bill.ID)
		require.NoError(t, err)
		assert.Len(t, ledger, 2)
	})

	t.Run("rejects non-positive amount before any write", func(t *testing.T) {
		f, bill := setup(t)

		_, err := f.engine.RecordPayment(ctx, RecordPaymentCommand{
			BillID: bill.ID,
			Amount: decimal.Zero,
			Method: "Cash",
		})
		require.Error(t, err)

		ledger, err := f.engine.ListPayments(ctx, bill.ID)
		require.NoError(t, err)
		assert.Empty(t, ledger)

		stored, err := f.engine.GetBill(ctx, bill.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.BillStatusNotPaid, stored.Status)
	})

	t.Run("unknown bill", func(t *testing.T) {
		f, _ := setup(t)
		_, err := f.engine.RecordPayment(ctx, RecordPaymentCommand{
			BillID: uuid.New(),
			Amount: decimal.NewFromInt(100),
		})
		assert.Error(t, err)
	})

	t.Run("confirmation is withheld until the bill is approved", func(t *testing.T) {
		f, bill := setup(t)

		updated, err := f.engine.RecordPayment(ctx, RecordPaymentCommand{
			BillID: bill.ID,
			Amount: decimal.NewFromInt(5500),
			Method: "Cash",
		})
		require.NoError(t, err)
		assert.Equal(t, billing.BillStatusPaid, updated.Status)
		assert.NotContains(t, f.notifier.kinds, billing.EventKindPaymentConfirmed)
	})

	t.Run("notification failure does not abort the payment", func(t *testing.T) {
		f, bill := setup(t)
		_, err := f.engine.Approve(ctx, bill.ID)
		require.NoError(t, err)
		f.notifier.err = assert.AnError

		updated, err := f.engine.RecordPayment(ctx, RecordPaymentCommand{
			BillID: bill.ID,
			Amount: decimal.NewFromInt(5500),
			Method: "Cash",
		})
		require.NoError(t, err)
		assert.Equal(t, billing.BillStatusPaid, updated.Status)
	})
}

func TestEngine_ApproveWriteOffCancel(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC)

	setup := func(t *testing.T) (*engineFixture, *billing.Bill) {
		f := newEngineFixture(t, now)
		tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
		bill, err := f.engine.GenerateBillForTenant(ctx, tenant.ID, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		return f, bill
	}

	t.Run("approve fires the new-bill notification", func(t *testing.T) {
		f, bill := setup(t)

		approved, err := f.engine.Approve(ctx, bill.ID)
		require.NoError(t, err)
		assert.True(t, approved.IsApproved)
		assert.Equal(t, []billing.EventKind{billing.EventKindNewBill}, f.notifier.kinds)

		// Re-approval retries delivery.
		_, err = f.engine.Approve(ctx, bill.ID)
		require.NoError(t, err)
		assert.Len(t, f.notifier.kinds, 2)
	})

	t.Run("write off unpaid bill", func(t *testing.T) {
		f, bill := setup(t)

		written, err := f.engine.WriteOff(ctx, bill.ID, "tenant moved out")
		require.NoError(t, err)
		assert.Equal(t, billing.BillStatusWrittenOff, written.Status)

		_, err = f.engine.RecordPayment(ctx, RecordPaymentCommand{
			BillID: bill.ID,
			Amount: decimal.NewFromInt(100),
		})
		assert.Error(t, err)
	})

	t.Run("cancel requires a reason", func(t *testing.T) {
		f, bill := setup(t)
		_, err := f.engine.CancelBill(ctx, bill.ID, "")
		assert.Error(t, err)
	})
}

func TestEngine_NotifyUpcomingDue(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 13, 8, 0, 0, 0, time.UTC)

	f := newEngineFixture(t, now)
	tenant := f.addTenant(t, time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC))
	bill, err := f.engine.GenerateBillForTenant(ctx, tenant.ID, time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	// due 2025-04-15, two days out

	t.Run("unapproved bills are not announced", func(t *testing.T) {
		notified, err := f.engine.NotifyUpcomingDue(ctx, 3*24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, notified)
	})

	t.Run("approved bill inside the window", func(t *testing.T) {
		_, err := f.engine.Approve(ctx, bill.ID)
		require.NoError(t, err)
		f.notifier.kinds = nil

		notified, err := f.engine.NotifyUpcomingDue(ctx, 3*24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 1, notified)
		assert.Equal(t, []billing.EventKind{billing.EventKindUpcomingDue}, f.notifier.kinds)
	})

	t.Run("window too short", func(t *testing.T) {
		notified, err := f.engine.NotifyUpcomingDue(ctx, 24*time.Hour)
		require.NoError(t, err)
		assert.Equal(t, 0, notified)
	})
}

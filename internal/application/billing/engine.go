package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/boardpay/backend/internal/domain/property"
	"github.com/boardpay/backend/internal/domain/shared"
	"github.com/boardpay/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine coordinates the recurring billing cycle: it generates bills on
// each tenant's anchor day, reconciles gaps for tenants whose history
// has holes, escalates past-due bills, and records payments. Every
// batch operation isolates per-tenant failures so one broken record
// never aborts the run.
type Engine struct {
	billRepo     billing.BillRepository
	paymentRepo  billing.PaymentRepository
	readingRepo  billing.MeterReadingRepository
	tenantRepo   property.TenantRepository
	roomRepo     property.RoomRepository
	buildingRepo property.BuildingRepository
	resolver     *billing.FeeScheduleResolver
	usage        billing.UsageResolver
	notifier     billing.Notifier
	publisher    shared.EventPublisher
	txManager    billing.TransactionManager
	logger       *zap.Logger
	now          func() time.Time
}

// EngineConfig holds the collaborators for the billing engine
type EngineConfig struct {
	BillRepo     billing.BillRepository
	PaymentRepo  billing.PaymentRepository
	ReadingRepo  billing.MeterReadingRepository
	TenantRepo   property.TenantRepository
	RoomRepo     property.RoomRepository
	BuildingRepo property.BuildingRepository
	Resolver     *billing.FeeScheduleResolver
	Usage        billing.UsageResolver
	Notifier     billing.Notifier
	Publisher    shared.EventPublisher
	TxManager    billing.TransactionManager
	Logger       *zap.Logger
	Now          func() time.Time
}

// NewEngine creates a billing engine
func NewEngine(config EngineConfig) *Engine {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	resolver := config.Resolver
	if resolver == nil {
		resolver = billing.NewFeeScheduleResolver(billing.DefaultFallbackFees())
	}

	return &Engine{
		billRepo:     config.BillRepo,
		paymentRepo:  config.PaymentRepo,
		readingRepo:  config.ReadingRepo,
		tenantRepo:   config.TenantRepo,
		roomRepo:     config.RoomRepo,
		buildingRepo: config.BuildingRepo,
		resolver:     resolver,
		usage:        config.Usage,
		notifier:     config.Notifier,
		publisher:    config.Publisher,
		txManager:    config.TxManager,
		logger:       logger,
		now:          now,
	}
}

// RecordPaymentCommand carries the input for recording a payment
type RecordPaymentCommand struct {
	BillID    uuid.UUID
	Amount    decimal.Decimal
	PaidAt    time.Time
	Method    string
	Reference string
	Notes     string
}

// GenerateDueBills creates bills for every tenant whose effective
// billing day matches refDate. A tenant is skipped when a bill for the
// period already exists, when the room/building chain is broken, or
// when the period has no completed meter reading yet; tenants still in
// their contract's first month get the initial bill instead and bypass
// the reading requirement. Returns the number of bills created.
// Re-invoking on the same date never creates duplicates.
func (e *Engine) GenerateDueBills(ctx context.Context, refDate time.Time) (int, error) {
	tenants, err := e.tenantRepo.FindBillable(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load billable tenants: %w", err)
	}

	period := billing.PeriodOf(refDate)
	created := 0

	for i := range tenants {
		tenant := &tenants[i]

		if !billing.IsBillingDay(tenant.StartDate, refDate) {
			continue
		}

		exists, err := e.billRepo.ExistsForPeriod(ctx, tenant.ID, period)
		if err != nil {
			e.logger.Error("Failed to check existing bill",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("period", period.String()),
				zap.Error(err))
			continue
		}
		if exists {
			continue
		}

		var bill *billing.Bill
		if billing.IsFirstBillingMonth(tenant.StartDate, refDate) {
			bill, err = e.createInitialBill(ctx, tenant)
		} else {
			hasReading, checkErr := e.hasCompletedReading(ctx, tenant.ID, period)
			if checkErr != nil {
				e.logger.Error("Failed to check meter readings",
					zap.String("tenant_id", tenant.ID.String()),
					zap.Error(checkErr))
				continue
			}
			if !hasReading {
				e.logger.Info("Skipping tenant without completed meter reading",
					zap.String("tenant_id", tenant.ID.String()),
					zap.String("period", period.String()))
				continue
			}
			bill, err = e.createRecurringBill(ctx, tenant, period)
		}
		if err != nil {
			e.logger.Error("Failed to generate bill",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("period", period.String()),
				zap.Error(err))
			continue
		}

		created++
		e.logger.Info("Bill generated",
			zap.String("bill_id", bill.ID.String()),
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("period", period.String()),
			zap.String("total", bill.TotalAmount().String()))
	}

	return created, nil
}

// GenerateBillForTenant creates one bill for the tenant covering the
// billing period that contains refDate
func (e *Engine) GenerateBillForTenant(ctx context.Context, tenantID uuid.UUID, refDate time.Time) (*billing.Bill, error) {
	tenant, err := e.loadBillableTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	period := billing.PeriodOf(refDate)
	if err := e.ensureNoBill(ctx, tenantID, period); err != nil {
		return nil, err
	}

	if billing.IsFirstBillingMonth(tenant.StartDate, refDate) {
		return e.createInitialBill(ctx, tenant)
	}
	return e.createRecurringBill(ctx, tenant, period)
}

// GenerateInitialBill creates the tenant's first bill, anchored to the
// contract start date. Electricity is forced to zero since first-cycle
// usage is never billed retroactively, and the due date falls exactly
// one calendar month after the start date.
func (e *Engine) GenerateInitialBill(ctx context.Context, tenantID uuid.UUID) (*billing.Bill, error) {
	tenant, err := e.loadBillableTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if err := e.ensureNoBill(ctx, tenantID, billing.PeriodOf(tenant.StartDate)); err != nil {
		return nil, err
	}

	return e.createInitialBill(ctx, tenant)
}

// BackfillAllTenants walks every billable tenant's history from the
// contract start month to the current month and synthesizes any
// missing bill. Synthesized bills that are already past due are
// immediately escalated to Overdue with the late fee applied. The walk
// re-scans existing periods, so re-running it is safe.
func (e *Engine) BackfillAllTenants(ctx context.Context) (int, error) {
	tenants, err := e.tenantRepo.FindBillable(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load billable tenants: %w", err)
	}

	created := 0
	for i := range tenants {
		n, err := e.backfillTenant(ctx, &tenants[i])
		if err != nil {
			e.logger.Error("Backfill failed for tenant",
				zap.String("tenant_id", tenants[i].ID.String()),
				zap.Error(err))
			continue
		}
		created += n
	}

	return created, nil
}

func (e *Engine) backfillTenant(ctx context.Context, tenant *property.Tenant) (int, error) {
	existing, err := e.billRepo.FindPeriods(ctx, tenant.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to load billed periods: %w", err)
	}
	billed := make(map[billing.Period]bool, len(existing))
	for _, p := range existing {
		billed[p] = true
	}

	refNow := e.now()
	start := billing.PeriodOf(tenant.StartDate)
	current := billing.PeriodOf(refNow)

	created := 0
	for p := start; !p.After(current); p = p.Next() {
		if billed[p] {
			continue
		}

		var bill *billing.Bill
		var genErr error
		if p.Equal(start) {
			bill, genErr = e.createInitialBill(ctx, tenant)
		} else {
			bill, genErr = e.createRecurringBill(ctx, tenant, p)
		}
		if genErr != nil {
			e.logger.Warn("Failed to synthesize bill during backfill",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("period", p.String()),
				zap.Error(genErr))
			continue
		}
		created++

		if bill.IsPastDue(refNow) {
			if err := e.escalate(ctx, bill, refNow); err != nil {
				e.logger.Warn("Failed to escalate backfilled bill",
					zap.String("bill_id", bill.ID.String()),
					zap.Error(err))
			}
		}
	}

	return created, nil
}

// UpdateBillStatuses sweeps all NotPaid and Pending bills whose due
// date has passed and moves them to Overdue, applying the owning
// building's late fee at most once per bill. The sweep may run any
// number of times per day without recomputing fees. Returns the number
// of bills escalated.
func (e *Engine) UpdateBillStatuses(ctx context.Context) (int, error) {
	refNow := e.now()
	bills, err := e.billRepo.FindEscalatable(ctx, refNow)
	if err != nil {
		return 0, fmt.Errorf("failed to load past-due bills: %w", err)
	}

	escalated := 0
	for i := range bills {
		bill := &bills[i]
		if err := e.escalate(ctx, bill, refNow); err != nil {
			e.logger.Error("Failed to escalate bill",
				zap.String("bill_id", bill.ID.String()),
				zap.Error(err))
			continue
		}
		escalated++
	}

	return escalated, nil
}

func (e *Engine) escalate(ctx context.Context, bill *billing.Bill, asOf time.Time) error {
	percent, err := e.lateFeePercentFor(ctx, bill.RoomID)
	if err != nil {
		return err
	}

	if err := bill.MarkOverdue(asOf, percent); err != nil {
		return err
	}
	if err := e.billRepo.Save(ctx, bill); err != nil {
		return fmt.Errorf("failed to save overdue bill: %w", err)
	}

	e.logger.Info("Bill marked overdue",
		zap.String("bill_id", bill.ID.String()),
		zap.String("tenant_id", bill.TenantID.String()),
		zap.String("late_fee", bill.LateFee.String()))

	e.notify(ctx, bill, billing.EventKindOverdue)
	e.publishEvents(ctx, bill)
	return nil
}

// RecordPayment records a payment against a bill. The payment row and
// the bill mutation commit in one transaction; the aggregate decides
// whether the bill moves to Pending or Paid.
func (e *Engine) RecordPayment(ctx context.Context, cmd RecordPaymentCommand) (*billing.Bill, error) {
	if !cmd.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}

	bill, err := e.loadBill(ctx, cmd.BillID)
	if err != nil {
		return nil, err
	}

	paidAt := cmd.PaidAt
	if paidAt.IsZero() {
		paidAt = e.now()
	}

	amount := valueobject.NewMoneyPHP(cmd.Amount)
	if err := bill.ApplyPayment(amount, paidAt, cmd.Method, cmd.Reference); err != nil {
		return nil, err
	}

	payment, err := billing.NewPayment(bill.ID, bill.TenantID, amount, paidAt, cmd.Method, cmd.Reference, cmd.Notes)
	if err != nil {
		return nil, err
	}

	err = e.inTransaction(ctx, func(txCtx context.Context) error {
		if err := e.paymentRepo.Save(txCtx, payment); err != nil {
			return fmt.Errorf("failed to save payment: %w", err)
		}
		if err := e.billRepo.Save(txCtx, bill); err != nil {
			return fmt.Errorf("failed to save bill: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("Payment recorded",
		zap.String("bill_id", bill.ID.String()),
		zap.String("amount", cmd.Amount.String()),
		zap.String("status", bill.Status.String()))

	// Confirmation only reaches the tenant once the bill is visible
	if bill.Status == billing.BillStatusPaid && bill.IsApproved {
		e.notify(ctx, bill, billing.EventKindPaymentConfirmed)
	}
	e.publishEvents(ctx, bill)

	return bill, nil
}

// Approve marks a bill as visible to the tenant and fires the new-bill
// notification. Approving twice re-fires the notification, so delivery
// can be retried.
func (e *Engine) Approve(ctx context.Context, billID uuid.UUID) (*billing.Bill, error) {
	bill, err := e.loadBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	bill.Approve()
	if err := e.billRepo.Save(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}

	e.notify(ctx, bill, billing.EventKindNewBill)
	e.publishEvents(ctx, bill)

	return bill, nil
}

// WriteOff forgives an unpaid bill with a recorded reason
func (e *Engine) WriteOff(ctx context.Context, billID uuid.UUID, reason string) (*billing.Bill, error) {
	bill, err := e.loadBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if err := bill.WriteOff(reason, e.now()); err != nil {
		return nil, err
	}
	if err := e.billRepo.Save(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}

	e.publishEvents(ctx, bill)
	return bill, nil
}

// CancelBill voids a bill with a recorded reason
func (e *Engine) CancelBill(ctx context.Context, billID uuid.UUID, reason string) (*billing.Bill, error) {
	bill, err := e.loadBill(ctx, billID)
	if err != nil {
		return nil, err
	}

	if err := bill.Cancel(reason, e.now()); err != nil {
		return nil, err
	}
	if err := e.billRepo.Save(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}

	e.publishEvents(ctx, bill)
	return bill, nil
}

// NotifyUpcomingDue sends a reminder for every approved, unpaid bill
// whose due date falls within the window. Returns the number of
// reminders delivered.
func (e *Engine) NotifyUpcomingDue(ctx context.Context, within time.Duration) (int, error) {
	refNow := e.now()
	bills, err := e.billRepo.FindDueBetween(ctx, refNow, refNow.Add(within))
	if err != nil {
		return 0, fmt.Errorf("failed to load upcoming bills: %w", err)
	}

	notified := 0
	for i := range bills {
		if e.notifier == nil {
			break
		}
		if err := e.notifier.Notify(ctx, &bills[i], billing.EventKindUpcomingDue); err != nil {
			e.logger.Warn("Failed to send upcoming-due reminder",
				zap.String("bill_id", bills[i].ID.String()),
				zap.Error(err))
			continue
		}
		notified++
	}

	return notified, nil
}

// GetBill returns a bill by ID
func (e *Engine) GetBill(ctx context.Context, billID uuid.UUID) (*billing.Bill, error) {
	return e.loadBill(ctx, billID)
}

// ListBills lists bills with filtering
func (e *Engine) ListBills(ctx context.Context, filter billing.BillFilter) ([]billing.Bill, int64, error) {
	return e.billRepo.FindAll(ctx, filter)
}

// ListPayments returns the payment ledger for one bill
func (e *Engine) ListPayments(ctx context.Context, billID uuid.UUID) ([]billing.Payment, error) {
	return e.paymentRepo.FindByBill(ctx, billID)
}

// ===================== internals =====================

// createRecurringBill builds a regular-cycle bill: fee schedule from
// the room/building chain, electricity from metered usage, due date on
// the anchor day of the following month.
func (e *Engine) createRecurringBill(ctx context.Context, tenant *property.Tenant, period billing.Period) (*billing.Bill, error) {
	schedule, err := e.resolveSchedule(ctx, tenant)
	if err != nil {
		return nil, err
	}

	electricity := decimal.Zero
	if e.usage != nil {
		charge, ok, usageErr := e.usage.ResolveUsageCharge(ctx, tenant.ID, period)
		switch {
		case usageErr != nil:
			e.logger.Warn("Usage resolution failed, billing zero electricity",
				zap.String("tenant_id", tenant.ID.String()),
				zap.String("period", period.String()),
				zap.Error(usageErr))
		case ok:
			electricity = charge.Amount()
		}
	}

	charges := billing.Charges{
		MonthlyRent: schedule.Rent.Amount,
		WaterFee:    schedule.Water.Amount,
		Electricity: electricity,
		InternetFee: schedule.Internet.Amount,
	}

	dueDate := billing.DueDate(tenant.BillingAnchorDay(), period)
	return e.persistNewBill(ctx, tenant, period, dueDate, charges, true)
}

// createInitialBill builds the first-cycle bill: electricity forced to
// zero, due date one calendar month after the contract start.
func (e *Engine) createInitialBill(ctx context.Context, tenant *property.Tenant) (*billing.Bill, error) {
	schedule, err := e.resolveSchedule(ctx, tenant)
	if err != nil {
		return nil, err
	}

	charges := billing.Charges{
		MonthlyRent: schedule.Rent.Amount,
		WaterFee:    schedule.Water.Amount,
		Electricity: decimal.Zero,
		InternetFee: schedule.Internet.Amount,
	}

	period := billing.PeriodOf(tenant.StartDate)
	dueDate := billing.InitialDueDate(tenant.StartDate)
	return e.persistNewBill(ctx, tenant, period, dueDate, charges, false)
}

func (e *Engine) persistNewBill(ctx context.Context, tenant *property.Tenant, period billing.Period, dueDate time.Time, charges billing.Charges, attachReading bool) (*billing.Bill, error) {
	bill, err := billing.NewBill(tenant.ID, *tenant.RoomID, period, dueDate, charges)
	if err != nil {
		return nil, err
	}

	err = e.inTransaction(ctx, func(txCtx context.Context) error {
		if err := e.billRepo.Save(txCtx, bill); err != nil {
			return err
		}
		if attachReading {
			if err := e.attachLatestReading(txCtx, bill, period); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.publishEvents(ctx, bill)
	return bill, nil
}

// attachLatestReading claims the period's latest unbilled meter reading
// for the bill so its usage charge cannot be billed twice
func (e *Engine) attachLatestReading(ctx context.Context, bill *billing.Bill, period billing.Period) error {
	readings, err := e.readingRepo.FindForPeriod(ctx, bill.TenantID, period)
	if err != nil {
		return fmt.Errorf("failed to load meter readings: %w", err)
	}
	if len(readings) == 0 {
		return nil
	}

	latest := &readings[len(readings)-1]
	if latest.IsBilled() {
		e.logger.Warn("Latest meter reading already attached to another bill",
			zap.String("reading_id", latest.ID.String()),
			zap.String("bill_id", bill.ID.String()))
		return nil
	}

	if err := latest.AttachToBill(bill.ID); err != nil {
		return err
	}
	return e.readingRepo.Save(ctx, latest)
}

// resolveSchedule walks the tenant's room/building chain and resolves
// the fee schedule. A missing link in the chain is a configuration
// error: the tenant is skipped, never billed with guessed amounts.
func (e *Engine) resolveSchedule(ctx context.Context, tenant *property.Tenant) (billing.FeeSchedule, error) {
	var schedule billing.FeeSchedule

	if !tenant.HasRoom() {
		return schedule, shared.NewDomainError("MISSING_CONFIGURATION", "Tenant has no assigned room")
	}

	room, err := e.roomRepo.FindByID(ctx, *tenant.RoomID)
	if err != nil {
		return schedule, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return schedule, shared.NewDomainError("MISSING_CONFIGURATION", "Tenant's room does not exist")
	}

	building, err := e.buildingRepo.FindByID(ctx, room.BuildingID)
	if err != nil {
		return schedule, fmt.Errorf("failed to load building: %w", err)
	}
	if building == nil {
		return schedule, shared.NewDomainError("MISSING_CONFIGURATION", "Room's building does not exist")
	}

	schedule = e.resolver.Resolve(room, building)
	if schedule.HasZeroComponent() {
		e.logger.Warn("Fee schedule resolved with zero component",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("room_id", room.ID.String()))
	}

	return schedule, nil
}

func (e *Engine) lateFeePercentFor(ctx context.Context, roomID uuid.UUID) (decimal.Decimal, error) {
	room, err := e.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load room: %w", err)
	}
	if room == nil {
		return decimal.Zero, shared.NewDomainError("MISSING_CONFIGURATION", "Bill's room does not exist")
	}

	building, err := e.buildingRepo.FindByID(ctx, room.BuildingID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load building: %w", err)
	}
	if building == nil {
		return decimal.Zero, shared.NewDomainError("MISSING_CONFIGURATION", "Room's building does not exist")
	}

	return building.LateFeePercent, nil
}

func (e *Engine) hasCompletedReading(ctx context.Context, tenantID uuid.UUID, period billing.Period) (bool, error) {
	readings, err := e.readingRepo.FindForPeriod(ctx, tenantID, period)
	if err != nil {
		return false, err
	}
	return len(readings) > 0, nil
}

func (e *Engine) loadBillableTenant(ctx context.Context, tenantID uuid.UUID) (*property.Tenant, error) {
	tenant, err := e.tenantRepo.FindByID(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if tenant == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Tenant not found")
	}
	if tenant.Archived {
		return nil, shared.NewDomainError("INVALID_STATE", "Tenant is archived")
	}
	if !tenant.HasRoom() {
		return nil, shared.NewDomainError("MISSING_CONFIGURATION", "Tenant has no assigned room")
	}
	return tenant, nil
}

func (e *Engine) loadBill(ctx context.Context, billID uuid.UUID) (*billing.Bill, error) {
	bill, err := e.billRepo.FindByID(ctx, billID)
	if err != nil {
		return nil, fmt.Errorf("failed to load bill: %w", err)
	}
	if bill == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Bill not found")
	}
	return bill, nil
}

func (e *Engine) ensureNoBill(ctx context.Context, tenantID uuid.UUID, period billing.Period) error {
	exists, err := e.billRepo.ExistsForPeriod(ctx, tenantID, period)
	if err != nil {
		return fmt.Errorf("failed to check existing bill: %w", err)
	}
	if exists {
		return shared.NewDomainError("BILL_EXISTS", fmt.Sprintf("Bill already exists for %s", period))
	}
	return nil
}

func (e *Engine) inTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.txManager == nil {
		return fn(ctx)
	}
	return e.txManager.WithinTransaction(ctx, fn)
}

// notify delivers a notification without letting a delivery failure
// abort the surrounding bill mutation
func (e *Engine) notify(ctx context.Context, bill *billing.Bill, kind billing.EventKind) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, bill, kind); err != nil {
		e.logger.Warn("Notification delivery failed",
			zap.String("bill_id", bill.ID.String()),
			zap.String("kind", string(kind)),
			zap.Error(err))
	}
}

func (e *Engine) publishEvents(ctx context.Context, bill *billing.Bill) {
	if e.publisher == nil {
		bill.ClearDomainEvents()
		return
	}
	if err := e.publisher.Publish(ctx, bill.GetDomainEvents()...); err != nil {
		e.logger.Warn("Failed to publish domain events",
			zap.String("bill_id", bill.ID.String()),
			zap.Error(err))
	}
	bill.ClearDomainEvents()
}

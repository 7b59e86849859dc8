package handler

import (
	"time"

	billingapp "github.com/boardpay/backend/internal/application/billing"
	"github.com/boardpay/backend/internal/domain/billing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BillingHandler handles billing-related API endpoints
type BillingHandler struct {
	BaseHandler
	engine *billingapp.Engine
}

// NewBillingHandler creates a new BillingHandler
func NewBillingHandler(engine *billingapp.Engine) *BillingHandler {
	return &BillingHandler{
		engine: engine,
	}
}

// ===================== Request/Response DTOs =====================

// BillResponse represents a bill in API responses
type BillResponse struct {
	ID                   string     `json:"id"`
	TenantID             string     `json:"tenant_id"`
	RoomID               string     `json:"room_id"`
	BillingMonth         int        `json:"billing_month"`
	BillingYear          int        `json:"billing_year"`
	BillingDate          time.Time  `json:"billing_date"`
	DueDate              time.Time  `json:"due_date"`
	MonthlyRent          float64    `json:"monthly_rent"`
	WaterFee             float64    `json:"water_fee"`
	ElectricityFee       float64    `json:"electricity_fee"`
	InternetFee          float64    `json:"internet_fee"`
	LateFee              float64    `json:"late_fee"`
	OtherFees            float64    `json:"other_fees"`
	OtherFeesDescription string     `json:"other_fees_description,omitempty"`
	TotalAmount          float64    `json:"total_amount"`
	AmountPaid           float64    `json:"amount_paid"`
	Outstanding          float64    `json:"outstanding"`
	Status               string     `json:"status"`
	IsApproved           bool       `json:"is_approved"`
	PaymentDate          *time.Time `json:"payment_date,omitempty"`
	PaymentMethod        string     `json:"payment_method,omitempty"`
	PaymentReference     string     `json:"payment_reference,omitempty"`
	Notes                string     `json:"notes,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// PaymentResponse represents a payment ledger entry in API responses
type PaymentResponse struct {
	ID        string    `json:"id"`
	BillID    string    `json:"bill_id"`
	TenantID  string    `json:"tenant_id"`
	Amount    float64   `json:"amount"`
	PaidAt    time.Time `json:"paid_at"`
	Method    string    `json:"method"`
	Reference string    `json:"reference,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// RunResultResponse reports how many bills a batch operation touched
type RunResultResponse struct {
	Processed int `json:"processed"`
}

// GenerateBillsRequest represents a request to run bill generation
type GenerateBillsRequest struct {
	RefDate string `json:"ref_date" binding:"omitempty,datetime=2006-01-02"`
}

// RemindersRequest represents a request to send due-date reminders
type RemindersRequest struct {
	WithinDays int `json:"within_days" binding:"omitempty,min=1,max=60"`
}

// RecordPaymentRequest represents a request to record a payment against a bill
type RecordPaymentRequest struct {
	Amount    float64 `json:"amount" binding:"required,gt=0"`
	PaidAt    string  `json:"paid_at" binding:"omitempty,datetime=2006-01-02"`
	Method    string  `json:"method" binding:"required,min=1,max=50"`
	Reference string  `json:"reference" binding:"omitempty,max=100"`
	Notes     string  `json:"notes" binding:"omitempty,max=500"`
}

// ReasonRequest carries an audit reason for write-off and cancellation
type ReasonRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ListBillsRequest represents the query parameters for listing bills
type ListBillsRequest struct {
	TenantID string `form:"tenant_id" binding:"omitempty,uuid"`
	RoomID   string `form:"room_id" binding:"omitempty,uuid"`
	Status   string `form:"status" binding:"omitempty,oneof=NOT_PAID PENDING PAID OVERDUE CANCELLED WRITTEN_OFF"`
	Approved *bool  `form:"approved"`
	Year     int    `form:"year" binding:"omitempty,min=2000,max=2200"`
	Month    int    `form:"month" binding:"omitempty,min=1,max=12"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy  string `form:"order_by" binding:"omitempty,oneof=id created_at updated_at tenant_id room_id billing_year billing_month due_date status is_approved amount_paid payment_date"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

func toBillResponse(bill *billing.Bill) BillResponse {
	return BillResponse{
		ID:                   bill.ID.String(),
		TenantID:             bill.TenantID.String(),
		RoomID:               bill.RoomID.String(),
		BillingMonth:         int(bill.BillingMonth),
		BillingYear:          bill.BillingYear,
		BillingDate:          bill.BillingDate,
		DueDate:              bill.DueDate,
		MonthlyRent:          bill.MonthlyRent.InexactFloat64(),
		WaterFee:             bill.WaterFee.InexactFloat64(),
		ElectricityFee:       bill.ElectricityFee.InexactFloat64(),
		InternetFee:          bill.InternetFee.InexactFloat64(),
		LateFee:              bill.LateFee.InexactFloat64(),
		OtherFees:            bill.OtherFees.InexactFloat64(),
		OtherFeesDescription: bill.OtherFeesDescription,
		TotalAmount:          bill.TotalAmount().InexactFloat64(),
		AmountPaid:           bill.AmountPaid.InexactFloat64(),
		Outstanding:          bill.Outstanding().InexactFloat64(),
		Status:               string(bill.Status),
		IsApproved:           bill.IsApproved,
		PaymentDate:          bill.PaymentDate,
		PaymentMethod:        bill.PaymentMethod,
		PaymentReference:     bill.PaymentReference,
		Notes:                bill.Notes,
		CreatedAt:            bill.CreatedAt,
		UpdatedAt:            bill.UpdatedAt,
	}
}

func toBillResponses(bills []billing.Bill) []BillResponse {
	responses := make([]BillResponse, len(bills))
	for i := range bills {
		responses[i] = toBillResponse(&bills[i])
	}
	return responses
}

func toPaymentResponses(payments []billing.Payment) []PaymentResponse {
	responses := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		responses[i] = PaymentResponse{
			ID:        p.ID.String(),
			BillID:    p.BillID.String(),
			TenantID:  p.TenantID.String(),
			Amount:    p.Amount.InexactFloat64(),
			PaidAt:    p.PaidAt,
			Method:    p.Method,
			Reference: p.Reference,
			Notes:     p.Notes,
			CreatedAt: p.CreatedAt,
		}
	}
	return responses
}

// ===================== Batch Operations =====================

// GenerateBills runs the recurring bill generation for the given
// reference date, defaulting to today. Safe to re-invoke.
func (h *BillingHandler) GenerateBills(c *gin.Context) {
	var req GenerateBillsRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	refDate := time.Now()
	if req.RefDate != "" {
		parsed, err := time.Parse("2006-01-02", req.RefDate)
		if err != nil {
			h.BadRequest(c, "Invalid ref_date format, expected YYYY-MM-DD")
			return
		}
		refDate = parsed
	}

	created, err := h.engine.GenerateDueBills(c.Request.Context(), refDate)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RunResultResponse{Processed: created})
}

// Backfill creates any bills missed between each tenant's contract
// start and the current period
func (h *BillingHandler) Backfill(c *gin.Context) {
	created, err := h.engine.BackfillAllTenants(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RunResultResponse{Processed: created})
}

// Sweep escalates unpaid past-due bills to overdue and applies late fees
func (h *BillingHandler) Sweep(c *gin.Context) {
	updated, err := h.engine.UpdateBillStatuses(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RunResultResponse{Processed: updated})
}

// SendReminders emits due-soon notifications for approved unpaid bills
func (h *BillingHandler) SendReminders(c *gin.Context) {
	var req RemindersRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		h.BadRequest(c, err.Error())
		return
	}

	days := req.WithinDays
	if days <= 0 {
		days = 3
	}

	notified, err := h.engine.NotifyUpcomingDue(c.Request.Context(), time.Duration(days)*24*time.Hour)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, RunResultResponse{Processed: notified})
}

// ===================== Bill Operations =====================

// ListBills retrieves a paginated list of bills with filtering
func (h *BillingHandler) ListBills(c *gin.Context) {
	var req ListBillsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if req.Page <= 0 {
		req.Page = 1
	}
	if req.PageSize <= 0 {
		req.PageSize = 20
	}

	filter := billing.BillFilter{}
	filter.Page = req.Page
	filter.PageSize = req.PageSize
	filter.OrderBy = req.OrderBy
	filter.OrderDir = req.OrderDir

	if req.TenantID != "" {
		id, err := uuid.Parse(req.TenantID)
		if err != nil {
			h.BadRequest(c, "Invalid tenant_id format")
			return
		}
		filter.TenantID = &id
	}
	if req.RoomID != "" {
		id, err := uuid.Parse(req.RoomID)
		if err != nil {
			h.BadRequest(c, "Invalid room_id format")
			return
		}
		filter.RoomID = &id
	}
	if req.Status != "" {
		status := billing.BillStatus(req.Status)
		filter.Status = &status
	}
	filter.Approved = req.Approved
	if req.Year != 0 && req.Month != 0 {
		period := billing.NewPeriod(time.Month(req.Month), req.Year)
		filter.Period = &period
	} else if req.Year != 0 || req.Month != 0 {
		h.BadRequest(c, "Period filter requires both year and month")
		return
	}

	bills, total, err := h.engine.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, toBillResponses(bills), total, req.Page, req.PageSize)
}

// GetBill retrieves a bill by its ID
func (h *BillingHandler) GetBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	bill, err := h.engine.GetBill(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillResponse(bill))
}

// ListBillPayments retrieves the payment ledger for a bill
func (h *BillingHandler) ListBillPayments(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	payments, err := h.engine.ListPayments(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toPaymentResponses(payments))
}

// RecordPayment records a payment against a bill and advances its status
func (h *BillingHandler) RecordPayment(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	paidAt := time.Now()
	if req.PaidAt != "" {
		parsed, err := time.Parse("2006-01-02", req.PaidAt)
		if err != nil {
			h.BadRequest(c, "Invalid paid_at format, expected YYYY-MM-DD")
			return
		}
		paidAt = parsed
	}

	cmd := billingapp.RecordPaymentCommand{
		BillID:    billID,
		Amount:    decimal.NewFromFloat(req.Amount),
		PaidAt:    paidAt,
		Method:    req.Method,
		Reference: req.Reference,
		Notes:     req.Notes,
	}

	bill, err := h.engine.RecordPayment(c.Request.Context(), cmd)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toBillResponse(bill))
}

// ApproveBill marks a bill as reviewed by the landlord
func (h *BillingHandler) ApproveBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	bill, err := h.engine.Approve(c.Request.Context(), billID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillResponse(bill))
}

// WriteOffBill forgives a bill's outstanding balance
func (h *BillingHandler) WriteOffBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.engine.WriteOff(c.Request.Context(), billID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillResponse(bill))
}

// CancelBill administratively cancels a bill
func (h *BillingHandler) CancelBill(c *gin.Context) {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid bill ID format")
		return
	}

	var req ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	bill, err := h.engine.CancelBill(c.Request.Context(), billID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, toBillResponse(bill))
}

// ===================== Tenant Operations =====================

// GenerateInitialBill creates the prorated first bill for a tenant
func (h *BillingHandler) GenerateInitialBill(c *gin.Context) {
	tenantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID format")
		return
	}

	bill, err := h.engine.GenerateInitialBill(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, toBillResponse(bill))
}

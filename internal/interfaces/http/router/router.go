package router

import (
	"github.com/boardpay/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g., "v1", "v2")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine under the versioned prefix
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// BillingRoutes registers the billing endpoints
type BillingRoutes struct {
	handler *handler.BillingHandler
}

// NewBillingRoutes creates the billing route registrar
func NewBillingRoutes(h *handler.BillingHandler) *BillingRoutes {
	return &BillingRoutes{handler: h}
}

// RegisterRoutes implements RouteRegistrar
func (r *BillingRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	billingGroup := rg.Group("/billing")
	{
		billingGroup.POST("/generate", r.handler.GenerateBills)
		billingGroup.POST("/backfill", r.handler.Backfill)
		billingGroup.POST("/sweep", r.handler.Sweep)
		billingGroup.POST("/reminders", r.handler.SendReminders)
	}

	bills := rg.Group("/bills")
	{
		bills.GET("", r.handler.ListBills)
		bills.GET("/:id", r.handler.GetBill)
		bills.GET("/:id/payments", r.handler.ListBillPayments)
		bills.POST("/:id/payments", r.handler.RecordPayment)
		bills.POST("/:id/approve", r.handler.ApproveBill)
		bills.POST("/:id/write-off", r.handler.WriteOffBill)
		bills.POST("/:id/cancel", r.handler.CancelBill)
	}

	tenants := rg.Group("/tenants")
	{
		tenants.POST("/:id/initial-bill", r.handler.GenerateInitialBill)
	}
}

// SystemRoutes registers the system endpoints
type SystemRoutes struct {
	handler *handler.SystemHandler
}

// NewSystemRoutes creates the system route registrar
func NewSystemRoutes(h *handler.SystemHandler) *SystemRoutes {
	return &SystemRoutes{handler: h}
}

// RegisterRoutes implements RouteRegistrar
func (r *SystemRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/ping", r.handler.Ping)
		system.GET("/info", r.handler.GetSystemInfo)
	}
}

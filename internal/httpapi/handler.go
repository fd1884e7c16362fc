package httpapi

import (
	"fmt"
	"net/http"

	"affiliate-addon/pkg/config"
	"affiliate-addon/pkg/errutil"
	"affiliate-addon/pkg/health"
	"affiliate-addon/pkg/middleware"
	"affiliate-addon/services/affiliate"
	"affiliate-addon/services/commission"
	"affiliate-addon/services/order"
	"affiliate-addon/services/payout"
	"affiliate-addon/services/settings"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("httpapi",
	fx.Provide(
		NewHandler,
		NewEngine,
	),
)

type Handler struct {
	affiliates  *affiliate.Service
	orders      *order.Service
	commissions *commission.Service
	settings    *settings.Service
	payouts     *payout.Service
	health      health.HealthService
}

type HandlerParams struct {
	fx.In
	Affiliates  *affiliate.Service
	Orders      *order.Service
	Commissions *commission.Service
	Settings    *settings.Service
	Payouts     *payout.Service
	Health      health.HealthService
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		affiliates:  p.Affiliates,
		orders:      p.Orders,
		commissions: p.Commissions,
		settings:    p.Settings,
		payouts:     p.Payouts,
		health:      p.Health,
	}
}

func NewEngine(cfg *config.Config, h *Handler) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.Error())

	r.GET("/healthz", h.health.Liveness)
	r.GET("/readyz", h.health.Readiness)

	v1 := r.Group("/v1")
	{
		v1.POST("/webhooks/orders", h.ingestOrder)
		v1.GET("/orders", h.listOrders)

		v1.POST("/affiliates", h.createAffiliate)
		v1.GET("/affiliates", h.listAffiliates)
		v1.PUT("/affiliates/:id/status", h.updateAffiliateStatus)
		v1.DELETE("/affiliates/:id", h.deleteAffiliate)
		v1.POST("/affiliates/:id/link", h.generateLink)

		v1.POST("/commission-program", h.saveCommissionProgram)
		v1.GET("/commission-program", h.getCommissionProgram)
		v1.PUT("/products/:id/commission", h.saveProductCommission)

		v1.POST("/settings/base-url", h.setBaseURL)

		v1.POST("/payouts", h.requestPayout)
		v1.GET("/payouts", h.listPayouts)
	}

	return r
}

func (h *Handler) ingestOrder(c *gin.Context) {
	var env order.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	if _, err := h.orders.Ingest(c.Request.Context(), env); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order processed"})
}

func (h *Handler) listOrders(c *gin.Context) {
	records, err := h.orders.List(c.Request.Context(), order.ListRequest{
		TenantID:    c.Query("tenantId"),
		AffiliateID: c.Query("affiliateId"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) createAffiliate(c *gin.Context) {
	var req affiliate.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	record, created, err := h.affiliates.Create(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, record)
}

func (h *Handler) listAffiliates(c *gin.Context) {
	records, err := h.affiliates.List(c.Request.Context(), affiliate.ListRequest{
		TenantID:   c.Query("tenantId"),
		CustomerID: c.Query("customerId"),
		Status:     c.Query("status"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) updateAffiliateStatus(c *gin.Context) {
	var body struct {
		TenantID string           `json:"tenantId"`
		Status   affiliate.Status `json:"status"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	record, err := h.affiliates.UpdateStatus(c.Request.Context(), affiliate.UpdateStatusRequest{
		TenantID:    body.TenantID,
		AffiliateID: c.Param("id"),
		Status:      body.Status,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   fmt.Sprintf("Affiliate status updated to %s", record.Status),
		"affiliate": record,
	})
}

func (h *Handler) deleteAffiliate(c *gin.Context) {
	err := h.affiliates.SoftDelete(c.Request.Context(), c.Query("tenantId"), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Affiliate marked as Deleted"})
}

func (h *Handler) generateLink(c *gin.Context) {
	link, err := h.affiliates.TrackingLink(c.Request.Context(), c.Query("tenantId"), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"trackingLink": link})
}

func (h *Handler) saveCommissionProgram(c *gin.Context) {
	var req commission.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	result, err := h.commissions.Save(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	switch result {
	case commission.SaveUnchanged:
		c.JSON(http.StatusOK, gin.H{"message": "No changes detected in commission program."})
	case commission.SaveUpdated:
		c.JSON(http.StatusOK, gin.H{"message": "Commission program updated successfully!"})
	default:
		c.JSON(http.StatusOK, gin.H{"message": "Commission program saved successfully!"})
	}
}

func (h *Handler) getCommissionProgram(c *gin.Context) {
	record, err := h.commissions.Get(c.Request.Context(), c.Query("tenantId"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *Handler) saveProductCommission(c *gin.Context) {
	var req commission.SaveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}
	req.ProductID = c.Param("id")

	if err := h.commissions.SaveProductCommission(c.Request.Context(), req); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Commission settings updated successfully!"})
}

func (h *Handler) setBaseURL(c *gin.Context) {
	var req settings.SetBaseURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	result, err := h.settings.SetBaseURL(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	switch result {
	case settings.SaveCreated:
		c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("Base URL set for %s", req.TenantID)})
	case settings.SaveUpdated:
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Base URL updated for %s", req.TenantID)})
	default:
		c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Base URL for %s is already up to date.", req.TenantID)})
	}
}

func (h *Handler) requestPayout(c *gin.Context) {
	var req payout.RequestPayout
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.BadRequest("invalid request body", err))
		return
	}

	record, err := h.payouts.Request(c.Request.Context(), req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "Payout recorded",
		"payoutId": record.PayoutID.String(),
	})
}

func (h *Handler) listPayouts(c *gin.Context) {
	records, err := h.payouts.List(c.Request.Context(), payout.ListRequest{
		TenantID:    c.Query("tenantId"),
		AffiliateID: c.Query("affiliateId"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, records)
}

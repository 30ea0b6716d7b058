// internal/handlers/order/order_handler.go
package order

import (
	"net/http"
	"strconv"

	"github.com/basharmd94/orderapp-sub000/internal/domain/order"
	"github.com/basharmd94/orderapp-sub000/internal/middleware"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/response"
	orderService "github.com/basharmd94/orderapp-sub000/internal/service/order"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type OrderHandler struct {
	orderService *orderService.Service
	logger       *zap.Logger
}

func NewOrderHandler(svc *orderService.Service, logger *zap.Logger) *OrderHandler {
	return &OrderHandler{orderService: svc, logger: logger}
}

func parseZID(c *gin.Context) (int64, bool) {
	zid, err := strconv.ParseInt(c.Param("zid"), 10, 64)
	if err != nil || zid <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid business unit", err)
		return 0, false
	}
	return zid, true
}

// SubmitBulk ingests a batch of orders for one business unit.
func (h *OrderHandler) SubmitBulk(c *gin.Context) {
	zid, ok := parseZID(c)
	if !ok {
		return
	}

	var specs []*order.Spec
	if err := c.ShouldBindJSON(&specs); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	claims, _ := middleware.GetClaims(c)
	actor := &order.Actor{
		Username:     claims.Username,
		EmployeeCode: claims.EmployeeCode,
		Terminal:     claims.Terminal,
	}

	results := h.orderService.Submit(c.Request.Context(), zid, specs, actor)

	var failed int
	for _, r := range results {
		if !r.Succeeded {
			failed++
		}
	}
	status := http.StatusCreated
	if failed > 0 {
		status = http.StatusMultiStatus
	}
	response.Success(c, status, "bulk ingestion complete", gin.H{
		"total":   len(results),
		"failed":  failed,
		"results": results,
	})
}

// SubmitOne ingests a single order synchronously.
func (h *OrderHandler) SubmitOne(c *gin.Context) {
	zid, ok := parseZID(c)
	if !ok {
		return
	}

	var spec order.Spec
	if err := c.ShouldBindJSON(&spec); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	claims, _ := middleware.GetClaims(c)
	actor := &order.Actor{
		Username:     claims.Username,
		EmployeeCode: claims.EmployeeCode,
		Terminal:     claims.Terminal,
	}

	results := h.orderService.Submit(c.Request.Context(), zid, []*order.Spec{&spec}, actor)
	if !results[0].Succeeded {
		response.Error(c, http.StatusInternalServerError, "failed to store order", nil)
		return
	}
	response.Success(c, http.StatusCreated, "order created", results[0])
}

// Invoice returns the lines of one invoice.
func (h *OrderHandler) Invoice(c *gin.Context) {
	zid, ok := parseZID(c)
	if !ok {
		return
	}

	lines, err := h.orderService.Invoice(c.Request.Context(), zid, c.Param("invoiceno"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	if len(lines) == 0 {
		response.Error(c, http.StatusNotFound, "invoice not found", nil)
		return
	}
	response.Success(c, http.StatusOK, "invoice lines", lines)
}

// Recent returns the caller's recent order lines in the business unit.
func (h *OrderHandler) Recent(c *gin.Context) {
	zid, ok := parseZID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	claims, _ := middleware.GetClaims(c)

	lines, err := h.orderService.Recent(c.Request.Context(), zid, claims.Username, limit)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "recent orders", lines)
}

package handlers

import (
	"github.com/chefbawss/backend/internal/services"
	"github.com/chefbawss/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type FinanceHandler struct {
	financeService *services.FinanceService
}

func NewFinanceHandler(financeService *services.FinanceService) *FinanceHandler {
	return &FinanceHandler{financeService: financeService}
}

func (h *FinanceHandler) Summary(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	summary, err := h.financeService.Summary(tenant, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, summary)
}

func (h *FinanceHandler) ByChef(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	earnings, err := h.financeService.ByChef(tenant, c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, earnings)
}

// Dashboard serves the role-appropriate variant: admins get the
// organization rollup, chefs only their own earnings and schedule.
func (h *FinanceHandler) Dashboard(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	if tenant.IsAdmin() {
		dash, err := h.financeService.AdminDashboard(tenant)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, dash)
		return
	}

	dash, err := h.financeService.ChefDashboard(tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dash)
}

package handlers

import (
	"github.com/chefbawss/backend/internal/services"
	"github.com/chefbawss/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
}

func NewOrganizationHandler(orgService *services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService}
}

// Current returns the caller's organization and their role in it.
func (h *OrganizationHandler) Current(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	response.Success(c, gin.H{
		"organization": tenant.Organization,
		"role":         tenant.Membership.Role,
	})
}

// Update edits the organization's name and timezone. The slug never
// changes after registration.
func (h *OrganizationHandler) Update(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	var req services.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	org, err := h.orgService.Update(tenant, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, org)
}

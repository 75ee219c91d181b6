package handlers

import (
	"strconv"

	"github.com/chefbawss/backend/internal/services"
	"github.com/chefbawss/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ChefHandler struct {
	chefService *services.ChefService
}

func NewChefHandler(chefService *services.ChefService) *ChefHandler {
	return &ChefHandler{chefService: chefService}
}

func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func (h *ChefHandler) List(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	chefs, err := h.chefService.List(tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, chefs)
}

func (h *ChefHandler) Get(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	chef, err := h.chefService.Get(tenant, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, chef)
}

func (h *ChefHandler) Invite(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	var req services.InviteChefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	chef, err := h.chefService.Invite(tenant, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, chef)
}

func (h *ChefHandler) Update(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateChefRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	chef, err := h.chefService.Update(tenant, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, chef)
}

func (h *ChefHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *ChefHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *ChefHandler) setActive(c *gin.Context, active bool) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	chef, err := h.chefService.SetActive(tenant, id, active)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, chef)
}

func (h *ChefHandler) ResendInvite(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.chefService.ResendInvite(tenant, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "invitation sent"})
}

// Me returns the calling chef's own profile.
func (h *ChefHandler) Me(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	chef, err := h.chefService.Me(tenant)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, chef)
}

func (h *ChefHandler) UpdateMe(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	var req services.UpdateChefMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	chef, err := h.chefService.UpdateMe(tenant, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, chef)
}

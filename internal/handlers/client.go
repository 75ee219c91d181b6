package handlers

import (
	"github.com/chefbawss/backend/internal/services"
	"github.com/chefbawss/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService *services.ClientService
}

func NewClientHandler(clientService *services.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) List(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	clients, err := h.clientService.List(tenant, c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, clients)
}

func (h *ClientHandler) Get(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	client, err := h.clientService.Get(tenant, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, client)
}

func (h *ClientHandler) Create(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}

	var req services.ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	client, err := h.clientService.Create(tenant, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, client)
}

func (h *ClientHandler) Update(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req services.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	client, err := h.clientService.Update(tenant, id, &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, client)
}

func (h *ClientHandler) Delete(c *gin.Context) {
	tenant := tenantOr404(c)
	if tenant == nil {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.clientService.Delete(tenant, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"message": "client deleted"})
}

package handlers

import (
	"github.com/chefbawss/backend/internal/models"
	"github.com/chefbawss/backend/pkg/response"
	"github.com/gin-gonic/gin"
)

// Health reports process and database liveness.
func Health(c *gin.Context) {
	status := "ok"
	db := models.GetDB()
	if db != nil {
		if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
			status = "degraded"
		}
	}
	response.Success(c, gin.H{"status": status})
}

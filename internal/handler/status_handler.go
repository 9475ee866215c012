package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockpass/ticket-service/internal/domain"
	"github.com/stockpass/ticket-service/internal/service"
)

type StatusHandler struct {
	statusService *service.StatusService
	logger        *zap.Logger
}

func NewStatusHandler(statusService *service.StatusService, logger *zap.Logger) *StatusHandler {
	return &StatusHandler{
		statusService: statusService,
		logger:        logger,
	}
}

func (h *StatusHandler) CreateStatusCheck(c *gin.Context) {
	var req domain.CreateStatusCheckRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	check, err := h.statusService.CreateStatusCheck(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to create status check",
		})
		return
	}

	c.JSON(http.StatusCreated, check)
}

func (h *StatusHandler) ListStatusChecks(c *gin.Context) {
	checks, err := h.statusService.ListStatusChecks(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list status checks",
		})
		return
	}

	c.JSON(http.StatusOK, checks)
}

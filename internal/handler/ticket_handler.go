package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stockpass/ticket-service/internal/domain"
	"github.com/stockpass/ticket-service/internal/service"
)

type TicketHandler struct {
	ticketService *service.TicketService
	logger        *zap.Logger
}

func NewTicketHandler(ticketService *service.TicketService, logger *zap.Logger) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
		logger:        logger,
	}
}

func (h *TicketHandler) IssueTickets(c *gin.Context) {
	var req domain.IssueTicketsRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	tickets, err := h.ticketService.IssueTickets(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Product not found",
			})
		case errors.Is(err, service.ErrProductInactive):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Cannot create tickets for an inactive product",
			})
		case errors.Is(err, service.ErrInsufficientStock):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Not enough stock to create the requested number of tickets",
			})
		default:
			h.logger.Error("Failed to issue tickets",
				zap.String("product_id", req.ProductID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to issue tickets",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, tickets)
}

func (h *TicketHandler) ListOutstandingTickets(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "1000"))

	tickets, err := h.ticketService.ListOutstandingTickets(c.Request.Context(), int32(limit))
	if err != nil {
		h.logger.Error("Failed to list tickets", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list tickets",
		})
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticketID := c.Param("id")

	ticket, err := h.ticketService.GetTicket(c.Request.Context(), ticketID)
	if err != nil {
		if errors.Is(err, service.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Ticket not found",
			})
			return
		}

		h.logger.Error("Failed to get ticket",
			zap.String("ticket_id", ticketID),
			zap.Error(err))

		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to get ticket",
		})
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) ListTicketsByProduct(c *gin.Context) {
	productID := c.Param("product_id")

	tickets, err := h.ticketService.ListTicketsByProduct(c.Request.Context(), productID)
	if err != nil {
		h.logger.Error("Failed to list tickets",
			zap.String("product_id", productID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to list tickets",
		})
		return
	}

	c.JSON(http.StatusOK, tickets)
}

func (h *TicketHandler) RedeemTicket(c *gin.Context) {
	var req domain.RedeemTicketRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request format",
		})
		return
	}

	ticket, err := h.ticketService.RedeemTicket(c.Request.Context(), req.TicketID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTicketNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"error": "Ticket not found",
			})
		case errors.Is(err, service.ErrTicketAlreadyRedeemed):
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Ticket already redeemed",
			})
		default:
			h.logger.Error("Failed to redeem ticket",
				zap.String("ticket_id", req.TicketID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to redeem ticket",
			})
		}
		return
	}

	c.JSON(http.StatusOK, ticket)
}

package controllers

import (
	"game-store/middleware"
	"game-store/models"
	"game-store/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const maxOrderHistoryLimit = 100

type OrderController struct {
	journal *services.OrderJournal
}

func NewOrderController(journal *services.OrderJournal) *OrderController {
	return &OrderController{journal: journal}
}

// GetOrders godoc
// @Summary Order history
// @Description List the current user's orders, newest first
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param limit query int false "Maximum number of orders" default(20)
// @Success 200 {object} models.Response{data=[]models.Order}
// @Failure 503 {object} models.ErrorResponse
// @Router /orders [get]
func (ctrl *OrderController) GetOrders(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > maxOrderHistoryLimit {
		limit = maxOrderHistoryLimit
	}

	orders, err := ctrl.journal.Recent(c.Request.Context(), middleware.UserID(c), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Orders retrieved", Data: orders})
}

// GetOrderByID godoc
// @Summary Order confirmation
// @Description Get one of the current user's orders
// @Tags Orders
// @Security BearerAuth
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Response{data=models.Order}
// @Failure 404 {object} models.ErrorResponse
// @Router /orders/{id} [get]
func (ctrl *OrderController) GetOrderByID(c *gin.Context) {
	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.journal.Get(c.Request.Context(), middleware.UserID(c), orderID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Order retrieved", Data: order})
}

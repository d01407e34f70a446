package controllers

import (
	"game-store/middleware"
	"game-store/models"
	"game-store/services"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// OrderNotifier sends the order confirmation after a successful checkout.
type OrderNotifier interface {
	SendOrderConfirmation(toEmail string, order *models.Order) error
}

type TransactionController struct {
	checkout *services.CheckoutService
	notifier OrderNotifier
}

// NewTransactionController accepts a nil notifier when SMTP is not configured.
func NewTransactionController(checkout *services.CheckoutService, notifier OrderNotifier) *TransactionController {
	return &TransactionController{checkout: checkout, notifier: notifier}
}

// Checkout godoc
// @Summary Checkout cart
// @Description Convert the current user's cart into an order, decrementing stock atomically
// @Tags Transactions
// @Security BearerAuth
// @Produce json
// @Success 201 {object} models.Response{data=models.Order}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 503 {object} models.ErrorResponse
// @Router /checkout [post]
func (ctrl *TransactionController) Checkout(c *gin.Context) {
	order, err := ctrl.checkout.Checkout(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	if email := middleware.UserEmail(c); ctrl.notifier != nil && email != "" {
		go func(o models.Order) {
			if err := ctrl.notifier.SendOrderConfirmation(email, &o); err != nil {
				slog.Warn("order confirmation email failed",
					slog.Int64("order_id", o.ID),
					slog.Any("err", err),
				)
			}
		}(*order)
	}

	c.JSON(http.StatusCreated, models.Response{
		Success: true,
		Message: "Checkout successful",
		Data:    order,
	})
}

package controllers

import (
	"errors"
	"game-store/models"
	"game-store/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const retryAfterSeconds = "1"

// respondError maps service errors to a status code and the error envelope.
func respondError(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		stockErr    *services.InsufficientStockError
		notFoundErr *services.ProductNotFoundError
	)
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Success: false,
			Message: "Insufficient stock",
			Error:   stockErr.Error(),
			Data: gin.H{
				"product_id":   stockErr.ProductID,
				"product_name": stockErr.ProductName,
				"requested":    stockErr.Requested,
				"available":    stockErr.Available,
			},
		})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Success: false,
			Message: "Product not found",
			Error:   notFoundErr.Error(),
			Data:    gin.H{"product_id": notFoundErr.ProductID},
		})
	case errors.Is(err, services.ErrEmptyCart):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Cart is empty"})
	case errors.Is(err, services.ErrInvalidQuantity), errors.Is(err, services.ErrInvalidPrice):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Success: false, Message: "Invalid request", Error: err.Error()})
	case errors.Is(err, services.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Order not found"})
	case errors.Is(err, services.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Success: false, Message: "Cart item not found"})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, models.ErrorResponse{Success: false, Message: "Email already exists"})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Success: false, Message: "Invalid credentials"})
	case errors.Is(err, services.ErrUnavailable):
		c.Header("Retry-After", retryAfterSeconds)
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{
			Success: false,
			Message: "Service temporarily unavailable, please retry",
		})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Success: false, Message: "Internal server error"})
	}
}

func badRequest(c *gin.Context, message string, err error) {
	resp := models.ErrorResponse{Success: false, Message: message}
	if err != nil {
		resp.Error = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "Invalid "+name, nil)
		return 0, false
	}
	return id, true
}

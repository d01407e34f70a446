package controllers

import (
	"game-store/middleware"
	"game-store/models"
	"game-store/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type CartController struct {
	cart *services.CartService
}

func NewCartController(cart *services.CartService) *CartController {
	return &CartController{cart: cart}
}

// GetCart godoc
// @Summary Get cart
// @Description List the current user's cart lines with a total at current prices
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response{data=models.CartView}
// @Failure 503 {object} models.ErrorResponse
// @Router /cart [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	view, err := ctrl.cart.View(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart retrieved", Data: view})
}

// AddItem godoc
// @Summary Add to cart
// @Description Add a product to the cart, merging with an existing line for the same product
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.AddCartItemRequest true "Cart item"
// @Success 201 {object} models.Response{data=models.CartItem}
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/items [post]
func (ctrl *CartController) AddItem(c *gin.Context) {
	var req models.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	line, err := ctrl.cart.AddOrMerge(c.Request.Context(), middleware.UserID(c), req.ProductID, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Item added to cart", Data: line})
}

// UpdateItem godoc
// @Summary Set cart line quantity
// @Description Replace a line's quantity; zero or less removes the line
// @Tags Cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Cart line ID"
// @Param request body models.UpdateCartItemRequest true "Quantity"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /cart/items/{id} [patch]
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	lineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	if err := ctrl.cart.SetQuantity(c.Request.Context(), middleware.UserID(c), lineID, *req.Quantity); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart updated"})
}

// RemoveItem godoc
// @Summary Remove cart line
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Param id path int true "Cart line ID"
// @Success 200 {object} models.Response
// @Router /cart/items/{id} [delete]
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	lineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.cart.Remove(c.Request.Context(), middleware.UserID(c), lineID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Item removed from cart"})
}

// ClearCart godoc
// @Summary Clear cart
// @Tags Cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.Response
// @Router /cart [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	if err := ctrl.cart.Clear(c.Request.Context(), middleware.UserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Cart cleared"})
}

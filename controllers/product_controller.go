package controllers

import (
	"game-store/models"
	"game-store/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProductController struct {
	products  *services.ProductService
	ledger    *services.InventoryLedger
	validator *services.StockValidator
}

func NewProductController(
	products *services.ProductService,
	ledger *services.InventoryLedger,
	validator *services.StockValidator,
) *ProductController {
	return &ProductController{products: products, ledger: ledger, validator: validator}
}

// GetAllProducts godoc
// @Summary Get all products
// @Description Get paginated list of products with live stock
// @Tags Products
// @Produce json
// @Param search query string false "Name contains"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(10)
// @Success 200 {object} models.Response{data=[]models.Product}
// @Router /products [get]
func (ctrl *ProductController) GetAllProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	products, err := ctrl.products.GetAllProducts(c.Request.Context(), c.Query("search"), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Products retrieved", Data: products})
}

// GetProductByID godoc
// @Summary Get product by ID
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.ErrorResponse
// @Router /products/{id} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.products.GetProductByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product retrieved", Data: product})
}

// CreateProduct godoc
// @Summary Create product
// @Tags Admin Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.CreateProductRequest true "Product"
// @Success 201 {object} models.Response{data=models.Product}
// @Failure 400 {object} models.ErrorResponse
// @Router /admin/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	product, err := ctrl.products.CreateProduct(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Success: true, Message: "Product created", Data: product})
}

// UpdateProduct godoc
// @Summary Update product
// @Description Update catalog fields. Stock changes go through restock.
// @Tags Admin Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body models.UpdateProductRequest true "Fields to change"
// @Success 200 {object} models.Response{data=models.Product}
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [patch]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	product, err := ctrl.products.UpdateProduct(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product updated", Data: product})
}

// DeleteProduct godoc
// @Summary Delete product
// @Tags Admin Products
// @Security BearerAuth
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.products.DeleteProduct(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Success: true, Message: "Product deleted"})
}

// Restock godoc
// @Summary Restock product
// @Tags Admin Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param request body models.RestockRequest true "Units to add"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /admin/products/{id}/restock [post]
func (ctrl *ProductController) Restock(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}

	stock, err := ctrl.ledger.Restock(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Product restocked",
		Data:    gin.H{"product_id": id, "stock": stock},
	})
}

// GetAvailability godoc
// @Summary Check availability
// @Description Advisory stock check; checkout re-validates under lock
// @Tags Products
// @Produce json
// @Param id path int true "Product ID"
// @Param quantity query int false "Units wanted" default(1)
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /products/{id}/availability [get]
func (ctrl *ProductController) GetAvailability(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	quantity, err := strconv.Atoi(c.DefaultQuery("quantity", "1"))
	if err != nil || quantity < 1 {
		badRequest(c, "Invalid quantity", nil)
		return
	}

	available, err := ctrl.validator.AvailableStock(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	inStock, err := ctrl.validator.IsAvailable(c.Request.Context(), id, quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{
		Success: true,
		Message: "Availability retrieved",
		Data: gin.H{
			"product_id":   id,
			"quantity":     quantity,
			"available":    available,
			"is_available": inStock,
		},
	})
}

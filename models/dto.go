package models

import "github.com/shopspring/decimal"

type RegisterRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required"`
}

type CreateProductRequest struct {
	Name        string          `json:"name" form:"name" binding:"required"`
	Description string          `json:"description" form:"description"`
	Price       decimal.Decimal `json:"price" form:"price"`
	Stock       int             `json:"stock" form:"stock" binding:"min=0"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name" form:"name"`
	Description *string          `json:"description" form:"description"`
	Price       *decimal.Decimal `json:"price" form:"price"`
}

type RestockRequest struct {
	Amount int `json:"amount" form:"amount" binding:"required,min=1"`
}

type AddCartItemRequest struct {
	ProductID int64 `json:"product_id" form:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" form:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" form:"quantity" binding:"required"`
}

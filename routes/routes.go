package routes

import (
	"game-store/controllers"
	"game-store/middleware"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Controllers struct {
	Auth        *controllers.AuthController
	Product     *controllers.ProductController
	Cart        *controllers.CartController
	Transaction *controllers.TransactionController
	Order       *controllers.OrderController
}

func SetupRoutes(router *gin.Engine, ctrl Controllers) {
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	router.POST("/auth/register", ctrl.Auth.Register)
	router.POST("/auth/login", ctrl.Auth.Login)
	router.GET("/products", ctrl.Product.GetAllProducts)
	router.GET("/products/:id", ctrl.Product.GetProductByID)
	router.GET("/products/:id/availability", ctrl.Product.GetAvailability)

	auth := router.Group("/")
	auth.Use(middleware.AuthMiddleware())
	{
		auth.GET("/auth/profile", ctrl.Auth.GetProfile)

		auth.GET("/cart", ctrl.Cart.GetCart)
		auth.DELETE("/cart", ctrl.Cart.ClearCart)
		auth.POST("/cart/items", ctrl.Cart.AddItem)
		auth.PATCH("/cart/items/:id", ctrl.Cart.UpdateItem)
		auth.DELETE("/cart/items/:id", ctrl.Cart.RemoveItem)

		auth.POST("/checkout", ctrl.Transaction.Checkout)

		auth.GET("/orders", ctrl.Order.GetOrders)
		auth.GET("/orders/:id", ctrl.Order.GetOrderByID)
	}

	admin := router.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/products", ctrl.Product.CreateProduct)
		admin.PATCH("/products/:id", ctrl.Product.UpdateProduct)
		admin.DELETE("/products/:id", ctrl.Product.DeleteProduct)
		admin.POST("/products/:id/restock", ctrl.Product.Restock)
	}
}

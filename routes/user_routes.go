package routes

import (
	"github.com/examsutra/ExamSutra/controllers"
	"github.com/examsutra/ExamSutra/middleware"
	"github.com/gin-gonic/gin"
)

// initUserRoutes initializes all user-facing payment routes
func initUserRoutes(router *gin.RouterGroup) {
	protected := router.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		payments := protected.Group("/payments")
		{
			// Checkout flow
			payments.POST("/order", controllers.CreatePaymentOrder)
			payments.POST("/verify", controllers.VerifyPayment)

			// Entitlements
			payments.GET("/history", controllers.ListPaymentHistory)
			payments.GET("/active-purchases", controllers.ListActivePurchases)
			payments.GET("/check/:item_type/:item_id", controllers.CheckOwnership)
			payments.GET("/:id/receipt", controllers.DownloadReceipt)
		}

		// Coupons visible to the user
		protected.GET("/coupons", controllers.ListAvailableCoupons)
	}
}

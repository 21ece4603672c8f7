package routes

import (
	"github.com/examsutra/ExamSutra/controllers"
	"github.com/examsutra/ExamSutra/middleware"
	"github.com/gin-gonic/gin"
)

// initAdminRoutes initializes all admin-related routes
func initAdminRoutes(router *gin.RouterGroup) {
	admin := router.Group("/admin")
	admin.Use(middleware.AdminAuthMiddleware())
	{
		// Payment oversight
		admin.GET("/payments", controllers.AdminListPayments)
		admin.GET("/payments/statistics", controllers.AdminPaymentStatistics)
		admin.GET("/payments/export", controllers.DownloadPaymentsReportExcel)
		admin.POST("/payments/reconcile", controllers.AdminReconcile)

		// Coupon management
		admin.POST("/coupons", controllers.CreateCoupon)
		admin.GET("/coupons", controllers.AdminListCoupons)
		admin.PUT("/coupons/:id", controllers.UpdateCoupon)
		admin.DELETE("/coupons/:id", controllers.DeleteCoupon)
		admin.GET("/coupons/:id/stats", controllers.CouponStatistics)
		admin.GET("/coupons/:id/usage", controllers.CouponUsageHistory)
	}
}

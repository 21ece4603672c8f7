package controllers

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
)

// GET /admin/payments/export
// Admin: Download payments report as Excel
func DownloadPaymentsReportExcel(c *gin.Context) {
	utils.LogInfo("DownloadPaymentsReportExcel called")

	period := c.DefaultQuery("period", "day")
	utils.LogDebug("Generating Excel report for period: %s", period)

	now := time.Now()
	var startDate, endDate time.Time

	switch period {
	case "day":
		startDate = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
	case "week":
		endDate = time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 999999999, now.Location())
		startDate = endDate.AddDate(0, 0, -6)
		startDate = time.Date(startDate.Year(), startDate.Month(), startDate.Day(), 0, 0, 0, 0, startDate.Location())
	case "month":
		startDate = now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
		endDate = now.Add(24 * time.Hour)
	default:
		utils.LogError("Invalid period specified: %s", period)
		utils.BadRequest(c, "Invalid period", "Period must be day, week, or month")
		return
	}

	var orders []models.Order
	query := config.DB.Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Preload("User").
		Order("created_at DESC")
	if err := query.Find(&orders).Error; err != nil {
		utils.LogError("Failed to fetch orders: %v", err)
		utils.InternalServerError(c, "Failed to fetch orders", nil)
		return
	}
	utils.LogDebug("Retrieved %d orders for Excel report", len(orders))

	var totalRevenue, totalDiscount float64
	var paidCount int
	customerSet := make(map[uint]bool)
	for _, order := range orders {
		customerSet[order.UserID] = true
		if order.Status == models.OrderStatusPaid || order.Status == models.OrderStatusRefunded {
			totalRevenue += order.Amount
			totalDiscount += order.DiscountAmount
			paidCount++
		}
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Payments Report")
	if err != nil {
		utils.LogError("Failed to create Excel sheet: %v", err)
		utils.InternalServerError(c, "Failed to create Excel sheet", nil)
		return
	}

	titleRow := sheet.AddRow()
	titleRow.AddCell().SetString("EXAMSUTRA - Payments Report")
	periodRow := sheet.AddRow()
	periodRow.AddCell().SetString("Period: " + strings.ToUpper(period) + " | " + startDate.Format("2006-01-02") + " to " + endDate.Format("2006-01-02"))
	sheet.AddRow() // spacing

	headers := []string{"Order Number", "User ID", "Username", "Date", "Item Type", "Item ID", "Amount", "Discount", "Coupon", "Status"}
	headerRow := sheet.AddRow()
	for _, h := range headers {
		cell := headerRow.AddCell()
		cell.SetString(h)
		style := xlsx.NewStyle()
		font := xlsx.DefaultFont()
		font.Bold = true
		style.Font = *font
		cell.SetStyle(style)
	}

	for _, order := range orders {
		row := sheet.AddRow()
		row.AddCell().SetString(order.OrderNumber)
		row.AddCell().SetInt(int(order.UserID))
		row.AddCell().SetString(order.User.Username)
		row.AddCell().SetString(order.CreatedAt.Format("2006-01-02 15:04"))
		row.AddCell().SetString(order.ItemType)
		row.AddCell().SetInt(int(order.ItemID))
		row.AddCell().SetFloat(order.Amount)
		row.AddCell().SetFloat(order.DiscountAmount)
		row.AddCell().SetString(order.CouponCode)
		row.AddCell().SetString(order.Status)
	}

	sheet.AddRow() // spacing
	summaryRow := sheet.AddRow()
	summaryRow.AddCell().SetString("Paid Orders:")
	summaryRow.AddCell().SetInt(paidCount)
	summaryRow = sheet.AddRow()
	summaryRow.AddCell().SetString("Unique Customers:")
	summaryRow.AddCell().SetInt(len(customerSet))
	summaryRow = sheet.AddRow()
	summaryRow.AddCell().SetString("Total Revenue:")
	summaryRow.AddCell().SetFloat(totalRevenue)
	summaryRow = sheet.AddRow()
	summaryRow.AddCell().SetString("Total Discounts:")
	summaryRow.AddCell().SetFloat(totalDiscount)

	filename := fmt.Sprintf("payments-report-%s-%s.xlsx", period, now.Format("20060102"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	if err := file.Write(c.Writer); err != nil {
		utils.LogError("Failed to write Excel file: %v", err)
		utils.InternalServerError(c, "Failed to generate report", nil)
		return
	}
	utils.LogInfo("Payments report generated for period %s with %d orders", period, len(orders))
}

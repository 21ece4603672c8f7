package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/examsutra/ExamSutra/config"
	"github.com/examsutra/ExamSutra/models"
	"github.com/examsutra/ExamSutra/utils"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
)

// GET /payments/:id/receipt
// DownloadReceipt generates and returns a PDF receipt for a paid order.
func DownloadReceipt(c *gin.Context) {
	utils.LogInfo("DownloadReceipt called")

	userVal, exists := c.Get("user")
	if !exists {
		utils.LogError("Unauthorized receipt download attempt - no user found in context")
		utils.Unauthorized(c, "User not found")
		return
	}
	user := userVal.(models.User)

	orderID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.LogError("Invalid order ID format in receipt request: %v", err)
		utils.BadRequest(c, "Invalid order ID", nil)
		return
	}

	var order models.Order
	if err := config.DB.Where("id = ? AND user_id = ?", orderID, user.ID).First(&order).Error; err != nil {
		utils.LogError("Order not found for receipt - Order ID: %d, User ID: %d", orderID, user.ID)
		utils.NotFound(c, "Order not found")
		return
	}

	if order.Status != models.OrderStatusPaid && order.Status != models.OrderStatusRefunded {
		utils.LogError("Receipt requested for unpaid order %d (status %s)", order.ID, order.Status)
		utils.BadRequest(c, "Receipt is only available for paid orders", nil)
		return
	}

	var payment models.Payment
	if err := config.DB.Where("order_id = ?", order.ID).First(&payment).Error; err != nil {
		utils.LogError("Payment not found for order %d: %v", order.ID, err)
		utils.NotFound(c, "Payment not found")
		return
	}

	itemName := order.ItemType
	if item, err := utils.GetCatalogItem(config.DB, order.ItemType, order.ItemID); err == nil {
		itemName = item.Name
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(100, 10, "ExamSutra")
	pdf.SetFont("Arial", "", 12)
	pdf.Ln(8)
	pdf.Cell(100, 8, "Email: support@examsutra.in")
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(100, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(60, 8, "Order Number: "+order.OrderNumber)
	pdf.Cell(60, 8, "Order Date: "+order.CreatedAt.Format("2006-01-02 15:04:05"))
	pdf.Ln(8)
	pdf.Cell(60, 8, "Payment ID: "+payment.RazorpayPaymentID)
	pdf.Cell(60, 8, "Status: "+order.Status)
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 13)
	pdf.Cell(100, 8, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 12)
	pdf.Cell(100, 8, user.FirstName+" "+user.LastName)
	pdf.Ln(6)
	pdf.Cell(100, 8, user.Email)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(80, 8, "Item", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 8, "Valid Until", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(80, 8, itemName, "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, order.ValidUntil.Format("2006-01-02"), "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", order.OriginalAmount), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 8, "Discount:", "", 0, "L", false, 0, "")
	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(30, 8, fmt.Sprintf("-%.2f", order.DiscountAmount), "", 1, "R", false, 0, "")
	if order.CouponCode != "" {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(150, 6, "Coupon applied: "+order.CouponCode, "", 1, "L", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(120, 8, "Total Paid ("+order.Currency+"):", "", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, fmt.Sprintf("%.2f", order.Amount), "", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		utils.LogError("Failed to generate receipt PDF for order %d: %v", order.ID, err)
		utils.InternalServerError(c, "Failed to generate receipt", nil)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=receipt-"+order.OrderNumber+".pdf")
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

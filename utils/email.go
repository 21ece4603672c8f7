package utils

import (
	"fmt"
	"os"
	"strconv"

	"github.com/examsutra/ExamSutra/models"
	"gopkg.in/gomail.v2"
)

// SendPurchaseConfirmation emails the buyer after a successful settlement.
// Best effort: callers log a failure and move on, it never fails the
// settlement itself.
func SendPurchaseConfirmation(to, name, itemName string, order *models.Order, purchase *models.UserPurchase) error {
	host := os.Getenv("SMTP_HOST")
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil {
		port = 587
	}
	username := os.Getenv("SMTP_USERNAME")
	password := os.Getenv("SMTP_PASSWORD")
	from := os.Getenv("SMTP_FROM")

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your ExamSutra purchase is active")

	body := fmt.Sprintf(`
		<h2>Thank you for your purchase, %s!</h2>
		<p>Your access to <b>%s</b> is now active.</p>
		<p>Order number: %s</p>
		<p>Amount paid: %s %.2f</p>
		<p>Access valid until: %s</p>
	`, name, itemName, order.OrderNumber, order.Currency, order.Amount,
		purchase.ExpiresAt.Format("2006-01-02"))
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, port, username, password)
	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %v", err)
	}
	return nil
}

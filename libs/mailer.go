package libs

import (
	"errors"
	"fmt"
	"game-store/config"
	"game-store/models"
	"html"
	"strings"

	"gopkg.in/gomail.v2"
)

var ErrMailerNotConfigured = errors.New("SMTP configuration missing")

type OrderMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewOrderMailer(cfg *config.Config) (*OrderMailer, error) {
	if cfg.SMTPHost == "" || cfg.SMTPUser == "" || cfg.SMTPPass == "" {
		return nil, ErrMailerNotConfigured
	}

	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}

	return &OrderMailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   from,
	}, nil
}

func (s *OrderMailer) SendOrderConfirmation(toEmail string, order *models.Order) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%d - Game Store", order.ID))
	m.SetBody("text/html", OrderConfirmationBody(order))

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func OrderConfirmationBody(order *models.Order) string {
	var rows strings.Builder
	for _, item := range order.Items {
		fmt.Fprintf(&rows, `
            <tr>
                <td>%s</td>
                <td style="text-align: right;">%d</td>
                <td style="text-align: right;">%s</td>
                <td style="text-align: right;">%s</td>
            </tr>`,
			html.EscapeString(item.ProductName),
			item.Quantity,
			item.UnitPrice.StringFixed(2),
			item.Subtotal().StringFixed(2),
		)
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .header { text-align: center; margin-bottom: 30px; }
        .logo { font-size: 24px; font-weight: bold; color: #4f46e5; }
        .order-box { background-color: #eef2ff; padding: 20px; margin: 20px 0; border-radius: 8px; }
        table { width: 100%%; border-collapse: collapse; }
        th, td { padding: 6px 0; border-bottom: 1px solid #eee; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <div class="logo">Game Store</div>
        </div>
        <h2 style="color: #333;">Order Confirmation</h2>
        <p>Thank you for your order!</p>

        <div class="order-box">
            <p><strong>Order Number:</strong> %d</p>
            <p><strong>Placed:</strong> %s</p>
            <table>
                <tr><th style="text-align: left;">Item</th><th style="text-align: right;">Qty</th><th style="text-align: right;">Price</th><th style="text-align: right;">Subtotal</th></tr>%s
            </table>
            <p><strong>Total Amount:</strong> %s</p>
        </div>

        <div class="footer">
            <p>This is an automated email. Please do not reply.</p>
        </div>
    </div>
</body>
</html>
	`, order.ID, order.CreatedAt.Format("02 Jan 2006 15:04 MST"), rows.String(), order.TotalAmount.StringFixed(2))
}

package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// EmailNotifier sends notification mail over SMTP.
type EmailNotifier struct {
	client *mail.Client
	from   string
}

func NewEmailNotifier(host string, port int, username, password, from string) (*EmailNotifier, error) {
	client, err := mail.NewClient(host,
		mail.WithPort(port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(username),
		mail.WithPassword(password),
	)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return &EmailNotifier{client: client, from: from}, nil
}

func (n *EmailNotifier) SendOrderConfirmation(ctx context.Context, orderNumber, customerEmail string, totalAmount float64) error {
	body := fmt.Sprintf(`<html>
<body>
	<h2>Order Confirmation</h2>
	<p>Thank you for your order!</p>
	<p><strong>Order Number:</strong> %s</p>
	<p><strong>Total Amount:</strong> $%.2f</p>
	<p>We'll notify you when your order ships.</p>
</body>
</html>`, orderNumber, totalAmount)

	return n.send(ctx, customerEmail, fmt.Sprintf("Order Confirmation - %s", orderNumber), body)
}

func (n *EmailNotifier) SendLowStockAlert(ctx context.Context, productName string, currentStock int, adminEmail string) error {
	body := fmt.Sprintf(`<html>
<body>
	<h2>Low Stock Alert</h2>
	<p><strong>Product:</strong> %s</p>
	<p><strong>Current Stock:</strong> %d</p>
	<p>Please restock this item soon.</p>
</body>
</html>`, productName, currentStock)

	return n.send(ctx, adminEmail, fmt.Sprintf("Low Stock Alert: %s", productName), body)
}

func (n *EmailNotifier) send(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(n.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	if err := n.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}

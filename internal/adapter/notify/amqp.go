package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "notifications"
	ExchangeType = "topic"

	routingKeyOrderConfirmation = "notify.order.confirmation"
	routingKeyLowStock          = "notify.stock.low"
)

// SetupAMQP connects to the broker and declares the notification
// exchange. Retries briefly to ride out container startup ordering.
func SetupAMQP(url string) (*amqp.Connection, *amqp.Channel, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < 5; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}

	err = ch.ExchangeDeclare(ExchangeName, ExchangeType, true, false, false, false, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("declare exchange: %w", err)
	}
	return conn, ch, nil
}

// notificationEvent is the wire shape published for downstream
// consumers (mailers, dashboards).
type notificationEvent struct {
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	Recipient    string    `json:"recipient_email"`
	OrderNumber  string    `json:"order_number,omitempty"`
	ProductName  string    `json:"product_name,omitempty"`
	CurrentStock int       `json:"current_stock,omitempty"`
	TotalAmount  float64   `json:"total_amount,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// AMQPNotifier publishes notification events instead of sending mail
// directly.
type AMQPNotifier struct {
	ch *amqp.Channel
}

func NewAMQPNotifier(ch *amqp.Channel) *AMQPNotifier {
	return &AMQPNotifier{ch: ch}
}

func (n *AMQPNotifier) SendOrderConfirmation(ctx context.Context, orderNumber, customerEmail string, totalAmount float64) error {
	return n.publish(ctx, routingKeyOrderConfirmation, notificationEvent{
		Type:        "order_placed",
		Message:     fmt.Sprintf("Order %s placed, total $%.2f", orderNumber, totalAmount),
		Recipient:   customerEmail,
		OrderNumber: orderNumber,
		TotalAmount: totalAmount,
		CreatedAt:   time.Now().UTC(),
	})
}

func (n *AMQPNotifier) SendLowStockAlert(ctx context.Context, productName string, currentStock int, adminEmail string) error {
	return n.publish(ctx, routingKeyLowStock, notificationEvent{
		Type:         "low_stock",
		Message:      fmt.Sprintf("Product %s is low on stock (%d left)", productName, currentStock),
		Recipient:    adminEmail,
		ProductName:  productName,
		CurrentStock: currentStock,
		CreatedAt:    time.Now().UTC(),
	})
}

func (n *AMQPNotifier) publish(ctx context.Context, routingKey string, event notificationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return n.ch.PublishWithContext(ctx,
		ExchangeName,
		routingKey,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

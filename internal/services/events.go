package services

import "warehouse/internal/models"

// EventPublisher publishes committed purchases, e.g. to RabbitMQ.
type EventPublisher interface {
	PublishPurchase(event models.PurchaseEvent) error
}

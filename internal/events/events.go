package events

import (
	"time"
)

const (
	TypeTicketIssued   = "ticket.issued"
	TypeTicketRedeemed = "ticket.redeemed"
	TypeProductUpdated = "product.updated"
)

type TicketIssuedEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	ProductID string    `json:"product_id"`
	TicketIDs []string  `json:"ticket_ids"`
	Quantity  int       `json:"quantity"`
	NewStock  int       `json:"new_stock"`
	Timestamp time.Time `json:"timestamp"`
}

type TicketRedeemedEvent struct {
	EventID      string    `json:"event_id"`
	Type         string    `json:"type"`
	TicketID     string    `json:"ticket_id"`
	TicketNumber string    `json:"ticket_number"`
	ProductID    string    `json:"product_id"`
	RedeemedAt   time.Time `json:"redeemed_at"`
}

type ProductUpdatedEvent struct {
	EventID   string    `json:"event_id"`
	Type      string    `json:"type"`
	ProductID string    `json:"product_id"`
	Timestamp time.Time `json:"timestamp"`
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// Ticket is a single printable unit issued against a product's stock. The
// product_* fields are a snapshot taken at issuance so a later product edit
// does not retroactively change an already-printed ticket unless the update
// explicitly propagates it.
type Ticket struct {
	ID                   string     `dynamodbav:"id"                     json:"id"`
	ProductID            string     `dynamodbav:"product_id"             json:"product_id"`
	ProductName          string     `dynamodbav:"product_name"           json:"product_name"`
	ProductPurchaseValue float64    `dynamodbav:"product_purchase_value" json:"product_purchase_value"`
	ProductValue         float64    `dynamodbav:"product_value"          json:"product_value"`
	TicketNumber         string     `dynamodbav:"ticket_number"          json:"ticket_number"`
	Quantity             int        `dynamodbav:"quantity"               json:"quantity"`
	IsRedeemed           bool       `dynamodbav:"is_redeemed"            json:"is_redeemed"`
	CreatedAt            time.Time  `dynamodbav:"created_at"             json:"created_at"`
	RedeemedAt           *time.Time `dynamodbav:"redeemed_at,omitempty"  json:"redeemed_at"`
}

// NewTicket snapshots the product into a fresh unredeemed ticket.
func NewTicket(p *Product, now time.Time) Ticket {
	return Ticket{
		ID:                   uuid.New().String(),
		ProductID:            p.ProductID,
		ProductName:          p.Name,
		ProductPurchaseValue: p.PurchaseValue,
		ProductValue:         p.Value,
		TicketNumber:         uuid.New().String()[:8],
		Quantity:             1,
		IsRedeemed:           false,
		CreatedAt:            now,
	}
}

type IssueTicketsRequest struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity"   binding:"omitempty,min=1,max=99"`
}

type RedeemTicketRequest struct {
	TicketID string `json:"ticket_id" binding:"required"`
}

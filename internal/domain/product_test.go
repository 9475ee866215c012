package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateRequestApply(t *testing.T) {
	name := "NewName"
	stock := 7

	p := Product{Name: "Old", Value: 10, PurchaseValue: 2, Stock: 5, Status: StatusActive}
	changed := UpdateProductRequest{Name: &name, Stock: &stock}.Apply(&p)

	assert.True(t, changed, "name is a summary field")
	assert.Equal(t, "NewName", p.Name)
	assert.Equal(t, 7, p.Stock)
	assert.Equal(t, 10.0, p.Value)
	assert.Equal(t, 2.0, p.PurchaseValue)
}

func TestUpdateRequestApplyNonSummaryFields(t *testing.T) {
	stock := 3
	status := StatusInactive

	p := Product{Name: "Widget", Status: StatusActive}
	changed := UpdateProductRequest{Stock: &stock, Status: &status}.Apply(&p)

	assert.False(t, changed)
	assert.Equal(t, StatusInactive, p.Status)
	assert.False(t, p.IsActive())
}

func TestSnapshotPatch(t *testing.T) {
	value := 12.5
	stock := 3

	assert.Nil(t, UpdateProductRequest{Stock: &stock}.SnapshotPatch(),
		"counter-only updates do not touch ticket snapshots")

	patch := UpdateProductRequest{Value: &value}.SnapshotPatch()
	require.NotNil(t, patch)
	assert.Nil(t, patch.Name)
	assert.Equal(t, 12.5, *patch.Value)
}

func TestNewTicket(t *testing.T) {
	now := time.Now()
	p := &Product{ProductID: "p-1", Name: "Widget", PurchaseValue: 4.5, Value: 10}

	ticket := NewTicket(p, now)

	assert.NotEmpty(t, ticket.ID)
	assert.Len(t, ticket.TicketNumber, 8)
	assert.Equal(t, "p-1", ticket.ProductID)
	assert.Equal(t, "Widget", ticket.ProductName)
	assert.Equal(t, 4.5, ticket.ProductPurchaseValue)
	assert.Equal(t, 10.0, ticket.ProductValue)
	assert.Equal(t, 1, ticket.Quantity)
	assert.False(t, ticket.IsRedeemed)
	assert.Nil(t, ticket.RedeemedAt)
	assert.Equal(t, now, ticket.CreatedAt)

	other := NewTicket(p, now)
	assert.NotEqual(t, ticket.ID, other.ID)
	assert.NotEqual(t, ticket.TicketNumber, other.TicketNumber)
}

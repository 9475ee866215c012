package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockpass/ticket-service/internal/domain"
)

func newLedgerForTest() (*TicketService, *ProductService, *memStore, *capturedEvents) {
	store := newMemStore()
	published := &capturedEvents{}
	registry := NewProductService(store, nil, zap.NewNop())
	ledger := NewTicketService(ticketStoreAdapter{store}, store, published, zap.NewNop())
	return ledger, registry, store, published
}

func TestIssueTickets(t *testing.T) {
	ledger, registry, store, published := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 5)

	tickets, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  3,
	})
	require.NoError(t, err)
	require.Len(t, tickets, 3)

	for _, ticket := range tickets {
		assert.NotEmpty(t, ticket.ID)
		assert.Len(t, ticket.TicketNumber, 8)
		assert.Equal(t, product.ProductID, ticket.ProductID)
		assert.Equal(t, "Widget", ticket.ProductName)
		assert.Equal(t, 10.0, ticket.ProductValue)
		assert.Equal(t, 1, ticket.Quantity)
		assert.False(t, ticket.IsRedeemed)
		assert.Nil(t, ticket.RedeemedAt)
		assert.False(t, ticket.CreatedAt.IsZero())
	}

	updated, err := store.Get(context.Background(), product.ProductID)
	require.NoError(t, err)
	assert.Equal(t, 2, updated.Stock)
	assert.Equal(t, 3, updated.PrintedQuantity)

	require.Len(t, published.issued, 1)
	assert.Equal(t, 3, published.issued[0].Quantity)
	assert.Equal(t, 2, published.issued[0].NewStock)
}

func TestIssueTicketsDefaultsToOne(t *testing.T) {
	ledger, registry, store, _ := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 5)

	tickets, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
	})
	require.NoError(t, err)
	assert.Len(t, tickets, 1)

	updated, _ := store.Get(context.Background(), product.ProductID)
	assert.Equal(t, 4, updated.Stock)
	assert.Equal(t, 1, updated.PrintedQuantity)
}

func TestIssueTicketsInsufficientStock(t *testing.T) {
	ledger, registry, store, published := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 2)

	_, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  5,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	// Nothing moved.
	updated, _ := store.Get(context.Background(), product.ProductID)
	assert.Equal(t, 2, updated.Stock)
	assert.Equal(t, 0, updated.PrintedQuantity)

	tickets, err := ledger.ListTicketsByProduct(context.Background(), product.ProductID)
	require.NoError(t, err)
	assert.Empty(t, tickets)
	assert.Empty(t, published.issued)
}

func TestIssueTicketsInactiveProduct(t *testing.T) {
	ledger, registry, _, _ := newLedgerForTest()
	product, err := registry.CreateProduct(context.Background(), domain.CreateProductRequest{
		Name:   "Retired",
		Value:  float64Ptr(10),
		Stock:  5,
		Status: domain.StatusInactive,
	})
	require.NoError(t, err)

	_, err = ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, ErrProductInactive)
}

func TestIssueTicketsProductNotFound(t *testing.T) {
	ledger, _, _, _ := newLedgerForTest()

	_, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: "missing",
		Quantity:  1,
	})
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRedeemTicket(t *testing.T) {
	ledger, registry, store, published := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 5)

	tickets, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  2,
	})
	require.NoError(t, err)

	redeemed, err := ledger.RedeemTicket(context.Background(), tickets[0].ID)
	require.NoError(t, err)
	assert.True(t, redeemed.IsRedeemed)
	require.NotNil(t, redeemed.RedeemedAt)

	updated, _ := store.Get(context.Background(), product.ProductID)
	assert.Equal(t, 1, updated.PrintedQuantity, "printed_quantity decremented exactly once")
	assert.Equal(t, 3, updated.Stock, "stock untouched by redemption")

	require.Len(t, published.redeemed, 1)
	assert.Equal(t, tickets[0].ID, published.redeemed[0].TicketID)
}

func TestRedeemTicketTwice(t *testing.T) {
	ledger, registry, store, _ := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 5)

	tickets, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  1,
	})
	require.NoError(t, err)

	_, err = ledger.RedeemTicket(context.Background(), tickets[0].ID)
	require.NoError(t, err)

	_, err = ledger.RedeemTicket(context.Background(), tickets[0].ID)
	assert.ErrorIs(t, err, ErrTicketAlreadyRedeemed)

	updated, _ := store.Get(context.Background(), product.ProductID)
	assert.Equal(t, 0, updated.PrintedQuantity, "no second decrement")
}

func TestRedeemTicketNotFound(t *testing.T) {
	ledger, _, _, _ := newLedgerForTest()

	_, err := ledger.RedeemTicket(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestRedeemTicketMissingProduct(t *testing.T) {
	ledger, registry, _, _ := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 5)

	tickets, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  1,
	})
	require.NoError(t, err)

	require.NoError(t, registry.DeleteProduct(context.Background(), product.ProductID))

	// Redemption of an already-printed ticket survives the deleted product;
	// the counter decrement is skipped silently.
	redeemed, err := ledger.RedeemTicket(context.Background(), tickets[0].ID)
	require.NoError(t, err)
	assert.True(t, redeemed.IsRedeemed)
}

func TestListOutstandingTickets(t *testing.T) {
	ledger, registry, store, _ := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 5)

	tickets, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  3,
	})
	require.NoError(t, err)

	_, err = ledger.RedeemTicket(context.Background(), tickets[1].ID)
	require.NoError(t, err)

	outstanding, err := ledger.ListOutstandingTickets(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, outstanding, 2)
	for _, ticket := range outstanding {
		assert.False(t, ticket.IsRedeemed)
		assert.Nil(t, ticket.RedeemedAt)
	}

	// A row with a redemption timestamp but an unset flag is unreachable
	// through the ledger; if one exists it must not count as outstanding.
	now := tickets[0].CreatedAt
	store.tickets[tickets[2].ID].RedeemedAt = &now

	outstanding, err = ledger.ListOutstandingTickets(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, outstanding, 1)
	assert.Equal(t, tickets[0].ID, outstanding[0].ID)
}

func TestListTicketsByProductIncludesRedeemed(t *testing.T) {
	ledger, registry, _, _ := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 5)

	tickets, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  2,
	})
	require.NoError(t, err)

	_, err = ledger.RedeemTicket(context.Background(), tickets[0].ID)
	require.NoError(t, err)

	all, err := ledger.ListTicketsByProduct(context.Background(), product.ProductID)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCountersStayNonNegative(t *testing.T) {
	ledger, registry, store, _ := newLedgerForTest()
	product := createProduct(t, registry, "Widget", 10, 3)

	tickets, err := ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  3,
	})
	require.NoError(t, err)

	_, err = ledger.IssueTickets(context.Background(), domain.IssueTicketsRequest{
		ProductID: product.ProductID,
		Quantity:  1,
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)

	for _, ticket := range tickets {
		_, err := ledger.RedeemTicket(context.Background(), ticket.ID)
		require.NoError(t, err)
		_, err = ledger.RedeemTicket(context.Background(), ticket.ID)
		assert.ErrorIs(t, err, ErrTicketAlreadyRedeemed)
	}

	updated, _ := store.Get(context.Background(), product.ProductID)
	assert.GreaterOrEqual(t, updated.Stock, 0)
	assert.GreaterOrEqual(t, updated.PrintedQuantity, 0)
	assert.Equal(t, 0, updated.PrintedQuantity)
}

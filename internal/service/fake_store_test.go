package service

import (
	"context"
	"time"

	"github.com/stockpass/ticket-service/internal/domain"
	"github.com/stockpass/ticket-service/internal/events"
	"github.com/stockpass/ticket-service/internal/repository"
)

// memStore is an in-memory double for both stores. Its mutating operations
// mirror the transactional behavior of the DynamoDB repositories: either all
// writes of an operation land or none do.
type memStore struct {
	products map[string]*domain.Product
	tickets  map[string]*domain.Ticket
	order    []string
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[string]*domain.Product),
		tickets:  make(map[string]*domain.Ticket),
	}
}

func (m *memStore) Create(_ context.Context, product *domain.Product) error {
	cp := *product
	m.products[product.ProductID] = &cp
	return nil
}

func (m *memStore) Get(_ context.Context, productID string) (*domain.Product, error) {
	p, ok := m.products[productID]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memStore) List(_ context.Context, limit int32) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		if int32(len(out)) == limit {
			break
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *memStore) Update(_ context.Context, product *domain.Product, patch *domain.SnapshotPatch) error {
	if _, ok := m.products[product.ProductID]; !ok {
		return repository.ErrProductNotFound
	}
	cp := *product
	m.products[product.ProductID] = &cp

	if patch == nil {
		return nil
	}
	for _, t := range m.tickets {
		if t.ProductID != product.ProductID {
			continue
		}
		if patch.Name != nil {
			t.ProductName = *patch.Name
		}
		if patch.PurchaseValue != nil {
			t.ProductPurchaseValue = *patch.PurchaseValue
		}
		if patch.Value != nil {
			t.ProductValue = *patch.Value
		}
	}
	return nil
}

func (m *memStore) Delete(_ context.Context, productID string) error {
	if _, ok := m.products[productID]; !ok {
		return repository.ErrProductNotFound
	}
	delete(m.products, productID)
	return nil
}

func (m *memStore) IssueTickets(_ context.Context, productID string, quantity int, tickets []domain.Ticket) error {
	p, ok := m.products[productID]
	if !ok || p.Stock < quantity || !p.IsActive() {
		return repository.ErrInsufficientStock
	}
	for i := range tickets {
		cp := tickets[i]
		m.tickets[cp.ID] = &cp
		m.order = append(m.order, cp.ID)
	}
	p.Stock -= quantity
	p.PrintedQuantity += quantity
	return nil
}

func (m *memStore) GetTicket(_ context.Context, ticketID string) (*domain.Ticket, error) {
	t, ok := m.tickets[ticketID]
	if !ok {
		return nil, repository.ErrTicketNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memStore) ListOutstanding(_ context.Context, limit int32) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, id := range m.order {
		t := m.tickets[id]
		if t.IsRedeemed || t.RedeemedAt != nil {
			continue
		}
		if int32(len(out)) == limit {
			break
		}
		out = append(out, *t)
	}
	return out, nil
}

func (m *memStore) ListByProduct(_ context.Context, productID string) ([]domain.Ticket, error) {
	var out []domain.Ticket
	for _, id := range m.order {
		if t := m.tickets[id]; t.ProductID == productID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memStore) Redeem(_ context.Context, ticket *domain.Ticket, at time.Time) error {
	t, ok := m.tickets[ticket.ID]
	if !ok || t.IsRedeemed {
		return repository.ErrTicketAlreadyRedeemed
	}
	t.IsRedeemed = true
	redeemed := at
	t.RedeemedAt = &redeemed
	if p, ok := m.products[t.ProductID]; ok {
		p.PrintedQuantity--
	}
	return nil
}

// Get is claimed by the product side of the interface pair, so the ticket
// store wrapper below renames it.
type ticketStoreAdapter struct{ *memStore }

func (a ticketStoreAdapter) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	return a.GetTicket(ctx, ticketID)
}

type capturedEvents struct {
	issued   []events.TicketIssuedEvent
	redeemed []events.TicketRedeemedEvent
	updated  []events.ProductUpdatedEvent
}

func (c *capturedEvents) TicketsIssued(e events.TicketIssuedEvent) {
	c.issued = append(c.issued, e)
}

func (c *capturedEvents) TicketRedeemed(e events.TicketRedeemedEvent) {
	c.redeemed = append(c.redeemed, e)
}

func (c *capturedEvents) ProductUpdated(e events.ProductUpdatedEvent) {
	c.updated = append(c.updated, e)
}

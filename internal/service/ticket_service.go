package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockpass/ticket-service/internal/domain"
	"github.com/stockpass/ticket-service/internal/events"
	"github.com/stockpass/ticket-service/internal/repository"
)

type TicketStore interface {
	IssueTickets(ctx context.Context, productID string, quantity int, tickets []domain.Ticket) error
	Get(ctx context.Context, ticketID string) (*domain.Ticket, error)
	ListOutstanding(ctx context.Context, limit int32) ([]domain.Ticket, error)
	ListByProduct(ctx context.Context, productID string) ([]domain.Ticket, error)
	Redeem(ctx context.Context, ticket *domain.Ticket, at time.Time) error
}

// TicketService is the ledger side of the system: it turns stock into tickets
// and walks each ticket through its single Issued -> Redeemed transition.
type TicketService struct {
	ticketRepo  TicketStore
	productRepo ProductStore
	publisher   EventPublisher
	logger      *zap.Logger
}

func NewTicketService(ticketRepo TicketStore, productRepo ProductStore, publisher EventPublisher, logger *zap.Logger) *TicketService {
	return &TicketService{
		ticketRepo:  ticketRepo,
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

// IssueTickets creates quantity tickets against the product's stock. Ticket
// rows and the stock/printed_quantity counters move in one store transaction;
// a failed issuance leaves the product and the ticket set untouched.
func (s *TicketService) IssueTickets(ctx context.Context, req domain.IssueTicketsRequest) ([]domain.Ticket, error) {
	quantity := req.Quantity
	if quantity == 0 {
		quantity = 1
	}

	product, err := s.productRepo.Get(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if !product.IsActive() {
		return nil, ErrProductInactive
	}
	if quantity > product.Stock {
		return nil, ErrInsufficientStock
	}

	now := time.Now()
	tickets := make([]domain.Ticket, 0, quantity)
	for i := 0; i < quantity; i++ {
		tickets = append(tickets, domain.NewTicket(product, now))
	}

	if err := s.ticketRepo.IssueTickets(ctx, product.ProductID, quantity, tickets); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			// Concurrent issuance drained the stock between the check and
			// the transaction.
			return nil, ErrInsufficientStock
		}
		s.logger.Error("Failed to issue tickets",
			zap.String("product_id", product.ProductID),
			zap.Int("quantity", quantity),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Tickets issued",
		zap.String("product_id", product.ProductID),
		zap.Int("quantity", quantity),
		zap.Int("remaining_stock", product.Stock-quantity))

	if s.publisher != nil {
		ids := make([]string, len(tickets))
		for i := range tickets {
			ids[i] = tickets[i].ID
		}
		s.publisher.TicketsIssued(events.TicketIssuedEvent{
			EventID:   uuid.New().String(),
			ProductID: product.ProductID,
			TicketIDs: ids,
			Quantity:  quantity,
			NewStock:  product.Stock - quantity,
			Timestamp: now,
		})
	}

	return tickets, nil
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.ticketRepo.Get(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrTicketNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return ticket, nil
}

func (s *TicketService) ListOutstandingTickets(ctx context.Context, limit int32) ([]domain.Ticket, error) {
	if limit <= 0 || limit > listMaxLimit {
		limit = listMaxLimit
	}
	return s.ticketRepo.ListOutstanding(ctx, limit)
}

func (s *TicketService) ListTicketsByProduct(ctx context.Context, productID string) ([]domain.Ticket, error) {
	return s.ticketRepo.ListByProduct(ctx, productID)
}

// RedeemTicket consumes a ticket exactly once and decrements the owning
// product's printed_quantity. A missing product is tolerated: the ticket is
// still redeemed and the counter decrement is skipped.
func (s *TicketService) RedeemTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.GetTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.IsRedeemed {
		return nil, ErrTicketAlreadyRedeemed
	}

	now := time.Now()
	if err := s.ticketRepo.Redeem(ctx, ticket, now); err != nil {
		if errors.Is(err, repository.ErrTicketAlreadyRedeemed) {
			return nil, ErrTicketAlreadyRedeemed
		}
		s.logger.Error("Failed to redeem ticket",
			zap.String("ticket_id", ticketID),
			zap.Error(err))
		return nil, err
	}

	ticket.IsRedeemed = true
	ticket.RedeemedAt = &now

	s.logger.Info("Ticket redeemed",
		zap.String("ticket_id", ticket.ID),
		zap.String("ticket_number", ticket.TicketNumber),
		zap.String("product_id", ticket.ProductID))

	if s.publisher != nil {
		s.publisher.TicketRedeemed(events.TicketRedeemedEvent{
			EventID:      uuid.New().String(),
			TicketID:     ticket.ID,
			TicketNumber: ticket.TicketNumber,
			ProductID:    ticket.ProductID,
			RedeemedAt:   now,
		})
	}

	return ticket, nil
}

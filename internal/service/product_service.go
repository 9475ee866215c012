package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockpass/ticket-service/internal/domain"
	"github.com/stockpass/ticket-service/internal/events"
	"github.com/stockpass/ticket-service/internal/qr"
	"github.com/stockpass/ticket-service/internal/repository"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrProductInactive       = errors.New("product is inactive")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrTicketAlreadyRedeemed = errors.New("ticket already redeemed")
)

// listMaxLimit caps product and ticket listings.
const listMaxLimit = 1000

type ProductStore interface {
	Create(ctx context.Context, product *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	List(ctx context.Context, limit int32) ([]domain.Product, error)
	Update(ctx context.Context, product *domain.Product, patch *domain.SnapshotPatch) error
	Delete(ctx context.Context, productID string) error
}

type EventPublisher interface {
	TicketsIssued(event events.TicketIssuedEvent)
	TicketRedeemed(event events.TicketRedeemedEvent)
	ProductUpdated(event events.ProductUpdatedEvent)
}

type ProductService struct {
	productRepo ProductStore
	publisher   EventPublisher
	logger      *zap.Logger
}

func NewProductService(productRepo ProductStore, publisher EventPublisher, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		publisher:   publisher,
		logger:      logger,
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	status := req.Status
	if status == "" {
		status = domain.StatusActive
	}

	now := time.Now()
	product := &domain.Product{
		ProductID:       uuid.New().String(),
		Name:            req.Name,
		PurchaseValue:   req.PurchaseValue,
		Value:           *req.Value,
		Stock:           req.Stock,
		PrintedQuantity: req.PrintedQuantity,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := qr.Refresh(product); err != nil {
		s.logger.Error("Failed to render QR code",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return nil, err
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		s.logger.Error("Failed to save product",
			zap.String("product_id", product.ProductID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product created",
		zap.String("product_id", product.ProductID),
		zap.Int("initial_stock", product.Stock))

	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	product, err := s.productRepo.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, limit int32) ([]domain.Product, error) {
	if limit <= 0 || limit > listMaxLimit {
		limit = listMaxLimit
	}
	return s.productRepo.List(ctx, limit)
}

// UpdateProduct applies the provided fields to the product, re-renders the QR
// code when a summary field changed, and propagates changed snapshot fields to
// every ticket of the product.
func (s *ProductService) UpdateProduct(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	summaryChanged := req.Apply(product)
	if summaryChanged {
		if err := qr.Refresh(product); err != nil {
			s.logger.Error("Failed to render QR code",
				zap.String("product_id", productID),
				zap.Error(err))
			return nil, err
		}
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product, req.SnapshotPatch()); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return nil, ErrProductNotFound
		}
		s.logger.Error("Failed to update product",
			zap.String("product_id", productID),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("Product updated",
		zap.String("product_id", productID),
		zap.Bool("snapshot_propagated", req.SnapshotPatch() != nil))

	if s.publisher != nil {
		s.publisher.ProductUpdated(events.ProductUpdatedEvent{
			EventID:   uuid.New().String(),
			ProductID: productID,
			Timestamp: product.UpdatedAt,
		})
	}

	return product, nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, productID string) error {
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			return ErrProductNotFound
		}
		s.logger.Error("Failed to delete product",
			zap.String("product_id", productID),
			zap.Error(err))
		return err
	}

	s.logger.Info("Product deleted", zap.String("product_id", productID))
	return nil
}

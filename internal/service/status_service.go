package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stockpass/ticket-service/internal/domain"
)

type StatusStore interface {
	Create(ctx context.Context, check *domain.StatusCheck) error
	List(ctx context.Context) ([]domain.StatusCheck, error)
}

type StatusService struct {
	statusRepo StatusStore
	logger     *zap.Logger
}

func NewStatusService(statusRepo StatusStore, logger *zap.Logger) *StatusService {
	return &StatusService{
		statusRepo: statusRepo,
		logger:     logger,
	}
}

func (s *StatusService) CreateStatusCheck(ctx context.Context, req domain.CreateStatusCheckRequest) (*domain.StatusCheck, error) {
	check := &domain.StatusCheck{
		ID:         uuid.New().String(),
		ClientName: req.ClientName,
		Timestamp:  time.Now(),
	}

	if err := s.statusRepo.Create(ctx, check); err != nil {
		s.logger.Error("Failed to save status check",
			zap.String("client_name", req.ClientName),
			zap.Error(err))
		return nil, err
	}

	return check, nil
}

func (s *StatusService) ListStatusChecks(ctx context.Context) ([]domain.StatusCheck, error) {
	return s.statusRepo.List(ctx)
}

package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/stockpass/ticket-service/internal/domain"
)

type StatusRepository struct {
	client    *dynamodb.Client
	tableName string
}

func NewStatusRepository(client *dynamodb.Client, tableName string) *StatusRepository {
	return &StatusRepository{
		client:    client,
		tableName: tableName,
	}
}

func (r *StatusRepository) Create(ctx context.Context, check *domain.StatusCheck) error {
	av, err := attributevalue.MarshalMap(check)
	if err != nil {
		return fmt.Errorf("failed to marshal status check: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put status check: %w", err)
	}

	return nil
}

func (r *StatusRepository) List(ctx context.Context) ([]domain.StatusCheck, error) {
	result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan status checks: %w", err)
	}

	checks := make([]domain.StatusCheck, 0, len(result.Items))
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &checks); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status checks: %w", err)
	}

	return checks, nil
}

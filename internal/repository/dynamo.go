package repository

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	pkgconfig "github.com/stockpass/ticket-service/pkg/config"
)

var (
	ErrProductNotFound       = errors.New("product not found")
	ErrTicketNotFound        = errors.New("ticket not found")
	ErrInsufficientStock     = errors.New("insufficient stock")
	ErrTicketAlreadyRedeemed = errors.New("ticket already redeemed")
)

// ticketIndexName is the GSI on the tickets table keyed by product_id.
const ticketIndexName = "product_id-index"

func NewDynamoDBClient(cfg *pkgconfig.Config) (*dynamodb.Client, error) {
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(cfg.AWSRegion),
	}

	// Local mode targets a DynamoDB Local endpoint with throwaway credentials.
	if cfg.LocalMode {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider("local", "local", ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(context.TODO(), opts...)
	if err != nil {
		return nil, err
	}

	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.LocalMode && cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	}), nil
}

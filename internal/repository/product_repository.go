package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/stockpass/ticket-service/internal/domain"
)

// transactMaxItems is DynamoDB's TransactWriteItems ceiling.
const transactMaxItems = 100

type ProductRepository struct {
	client      *dynamodb.Client
	tableName   string
	ticketTable string
}

func NewProductRepository(client *dynamodb.Client, tableName, ticketTable string) *ProductRepository {
	return &ProductRepository{
		client:      client,
		tableName:   tableName,
		ticketTable: ticketTable,
	}
}

func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(product_id)"),
	})
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *ProductRepository) Get(ctx context.Context, productID string) (*domain.Product, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	if result.Item == nil {
		return nil, ErrProductNotFound
	}

	var product domain.Product
	if err := attributevalue.UnmarshalMap(result.Item, &product); err != nil {
		return nil, fmt.Errorf("failed to unmarshal product: %w", err)
	}

	return &product, nil
}

func (r *ProductRepository) List(ctx context.Context, limit int32) ([]domain.Product, error) {
	result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
		Limit:     aws.Int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan products: %w", err)
	}

	products := make([]domain.Product, 0, len(result.Items))
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &products); err != nil {
		return nil, fmt.Errorf("failed to unmarshal products: %w", err)
	}

	return products, nil
}

// Update persists the full product record and, when patch is non-nil,
// rewrites the denormalized snapshot fields on every ticket of the product.
// The product write and the first batch of ticket writes share one
// transaction; tickets beyond the 100-item transact limit are patched in
// follow-up transactions.
func (r *ProductRepository) Update(ctx context.Context, product *domain.Product, patch *domain.SnapshotPatch) error {
	av, err := attributevalue.MarshalMap(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}

	productItem := types.TransactWriteItem{
		Put: &types.Put{
			TableName:           aws.String(r.tableName),
			Item:                av,
			ConditionExpression: aws.String("attribute_exists(product_id)"),
		},
	}

	if patch == nil {
		return r.transact(ctx, []types.TransactWriteItem{productItem})
	}

	ticketIDs, err := r.ticketIDsForProduct(ctx, product.ProductID)
	if err != nil {
		return err
	}

	expr, err := snapshotUpdateExpression(patch)
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{productItem}
	for _, id := range ticketIDs {
		items = append(items, types.TransactWriteItem{
			Update: &types.Update{
				TableName: aws.String(r.ticketTable),
				Key: map[string]types.AttributeValue{
					"id": &types.AttributeValueMemberS{Value: id},
				},
				UpdateExpression:          expr.Update(),
				ExpressionAttributeNames:  expr.Names(),
				ExpressionAttributeValues: expr.Values(),
			},
		})

		if len(items) == transactMaxItems {
			if err := r.transact(ctx, items); err != nil {
				return err
			}
			items = items[:0]
		}
	}

	if len(items) > 0 {
		return r.transact(ctx, items)
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, productID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		ConditionExpression: aws.String("attribute_exists(product_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}

func (r *ProductRepository) transact(ctx context.Context, items []types.TransactWriteItem) error {
	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) && conditionFailed(canceled, 0) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to commit product update: %w", err)
	}
	return nil
}

// ticketIDsForProduct reads the keys of every ticket issued for the product
// via the product_id GSI, following pagination.
func (r *ProductRepository) ticketIDsForProduct(ctx context.Context, productID string) ([]string, error) {
	keyCond := expression.Key("product_id").Equal(expression.Value(productID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, err
	}

	var ids []string
	var startKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.ticketTable),
			IndexName:                 aws.String(ticketIndexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query tickets: %w", err)
		}

		for _, item := range result.Items {
			if id, ok := item["id"].(*types.AttributeValueMemberS); ok {
				ids = append(ids, id.Value)
			}
		}

		if result.LastEvaluatedKey == nil {
			return ids, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

func snapshotUpdateExpression(patch *domain.SnapshotPatch) (expression.Expression, error) {
	var update expression.UpdateBuilder
	if patch.Name != nil {
		update = update.Set(expression.Name("product_name"), expression.Value(*patch.Name))
	}
	if patch.PurchaseValue != nil {
		update = update.Set(expression.Name("product_purchase_value"), expression.Value(*patch.PurchaseValue))
	}
	if patch.Value != nil {
		update = update.Set(expression.Name("product_value"), expression.Value(*patch.Value))
	}
	return expression.NewBuilder().WithUpdate(update).Build()
}

func conditionFailed(canceled *types.TransactionCanceledException, index int) bool {
	if index >= len(canceled.CancellationReasons) {
		return false
	}
	reason := canceled.CancellationReasons[index]
	return reason.Code != nil && *reason.Code == "ConditionalCheckFailed"
}

package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/stockpass/ticket-service/internal/domain"
)

type TicketRepository struct {
	client       *dynamodb.Client
	tableName    string
	productTable string
}

func NewTicketRepository(client *dynamodb.Client, tableName, productTable string) *TicketRepository {
	return &TicketRepository{
		client:       client,
		tableName:    tableName,
		productTable: productTable,
	}
}

// IssueTickets writes the ticket rows and moves the product counters in a
// single transaction. The product update is conditioned on the stock still
// covering the quantity and the product still being active, so concurrent
// issuance cannot overdraw stock.
func (r *TicketRepository) IssueTickets(ctx context.Context, productID string, quantity int, tickets []domain.Ticket) error {
	update := expression.
		Set(expression.Name("stock"),
			expression.Minus(expression.Name("stock"), expression.Value(quantity))).
		Set(expression.Name("printed_quantity"),
			expression.Plus(expression.Name("printed_quantity"), expression.Value(quantity))).
		Set(expression.Name("updated_at"), expression.Value(time.Now()))

	condition := expression.GreaterThanEqual(expression.Name("stock"), expression.Value(quantity)).
		And(expression.Equal(expression.Name("status"), expression.Value(domain.StatusActive)))

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()
	if err != nil {
		return err
	}

	items := []types.TransactWriteItem{{
		Update: &types.Update{
			TableName: aws.String(r.productTable),
			Key: map[string]types.AttributeValue{
				"product_id": &types.AttributeValueMemberS{Value: productID},
			},
			UpdateExpression:          expr.Update(),
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}}

	for i := range tickets {
		av, err := attributevalue.MarshalMap(&tickets[i])
		if err != nil {
			return fmt.Errorf("failed to marshal ticket: %w", err)
		}
		items = append(items, types.TransactWriteItem{
			Put: &types.Put{
				TableName: aws.String(r.tableName),
				Item:      av,
			},
		})
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		var canceled *types.TransactionCanceledException
		if errors.As(err, &canceled) && conditionFailed(canceled, 0) {
			// Lost a race on the stock or status condition.
			return ErrInsufficientStock
		}
		return fmt.Errorf("failed to issue tickets: %w", err)
	}

	return nil
}

func (r *TicketRepository) Get(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: ticketID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}

	if result.Item == nil {
		return nil, ErrTicketNotFound
	}

	var ticket domain.Ticket
	if err := attributevalue.UnmarshalMap(result.Item, &ticket); err != nil {
		return nil, fmt.Errorf("failed to unmarshal ticket: %w", err)
	}

	return &ticket, nil
}

// ListOutstanding returns tickets that are neither flagged redeemed nor carry
// a redemption timestamp. Both predicates are checked so a half-written row
// never counts as outstanding.
func (r *TicketRepository) ListOutstanding(ctx context.Context, limit int32) ([]domain.Ticket, error) {
	filter := expression.Equal(expression.Name("is_redeemed"), expression.Value(false)).
		And(expression.AttributeNotExists(expression.Name("redeemed_at")))

	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, err
	}

	result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		Limit:                     aws.Int32(limit),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan tickets: %w", err)
	}

	tickets := make([]domain.Ticket, 0, len(result.Items))
	if err := attributevalue.UnmarshalListOfMaps(result.Items, &tickets); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tickets: %w", err)
	}

	return tickets, nil
}

func (r *TicketRepository) ListByProduct(ctx context.Context, productID string) ([]domain.Ticket, error) {
	keyCond := expression.Key("product_id").Equal(expression.Value(productID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, err
	}

	var tickets []domain.Ticket
	var startKey map[string]types.AttributeValue
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(ticketIndexName),
			KeyConditionExpression:    expr.KeyCondition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query tickets: %w", err)
		}

		var page []domain.Ticket
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &page); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tickets: %w", err)
		}
		tickets = append(tickets, page...)

		if result.LastEvaluatedKey == nil {
			return tickets, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

// Redeem flips the ticket and decrements the product's printed_quantity in
// one transaction. When the product row is gone the counter decrement is
// skipped and the ticket is still redeemed; a vanished product must not block
// redemption of an already-printed ticket.
func (r *TicketRepository) Redeem(ctx context.Context, ticket *domain.Ticket, at time.Time) error {
	items := []types.TransactWriteItem{
		{Update: r.redeemTicketUpdate(ticket.ID, at)},
		{Update: r.decrementPrintedUpdate(ticket.ProductID, at)},
	}

	_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err == nil {
		return nil
	}

	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		return fmt.Errorf("failed to redeem ticket: %w", err)
	}
	if conditionFailed(canceled, 0) {
		return ErrTicketAlreadyRedeemed
	}
	if !conditionFailed(canceled, 1) {
		return fmt.Errorf("failed to redeem ticket: %w", err)
	}

	// Product row is missing; redeem the ticket on its own.
	upd := r.redeemTicketUpdate(ticket.ID, at)
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 upd.TableName,
		Key:                       upd.Key,
		UpdateExpression:          upd.UpdateExpression,
		ConditionExpression:       upd.ConditionExpression,
		ExpressionAttributeNames:  upd.ExpressionAttributeNames,
		ExpressionAttributeValues: upd.ExpressionAttributeValues,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return ErrTicketAlreadyRedeemed
		}
		return fmt.Errorf("failed to redeem ticket: %w", err)
	}

	return nil
}

func (r *TicketRepository) redeemTicketUpdate(ticketID string, at time.Time) *types.Update {
	update := expression.
		Set(expression.Name("is_redeemed"), expression.Value(true)).
		Set(expression.Name("redeemed_at"), expression.Value(at))

	condition := expression.AttributeExists(expression.Name("id")).
		And(expression.Equal(expression.Name("is_redeemed"), expression.Value(false)))

	expr, _ := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()

	return &types.Update{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: ticketID},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
}

func (r *TicketRepository) decrementPrintedUpdate(productID string, at time.Time) *types.Update {
	update := expression.
		Set(expression.Name("printed_quantity"),
			expression.Minus(expression.Name("printed_quantity"), expression.Value(1))).
		Set(expression.Name("updated_at"), expression.Value(at))

	condition := expression.AttributeExists(expression.Name("product_id"))

	expr, _ := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(condition).
		Build()

	return &types.Update{
		TableName: aws.String(r.productTable),
		Key: map[string]types.AttributeValue{
			"product_id": &types.AttributeValueMemberS{Value: productID},
		},
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
}

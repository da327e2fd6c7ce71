package dynamo

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

	"eventdesk/internal/domain"
)

// registrationItem is the storage shape of a registration. The table's
// composite primary key is (user_id, event_id), which enforces the
// one-registration-per-pair invariant at write time.
type registrationItem struct {
	UserID           string    `dynamodbav:"user_id"`
	EventID          string    `dynamodbav:"event_id"`
	ID               string    `dynamodbav:"id"`
	Status           string    `dynamodbav:"status"`
	RegistrationDate time.Time `dynamodbav:"registration_date"`
	UpdatedAt        time.Time `dynamodbav:"updated_at"`
}

func newRegistrationItem(reg *domain.Registration) *registrationItem {
	return &registrationItem{
		UserID:           reg.UserID,
		EventID:          reg.EventID,
		ID:               reg.ID,
		Status:           string(reg.Status),
		RegistrationDate: reg.RegistrationDate,
		UpdatedAt:        reg.UpdatedAt,
	}
}

func (it *registrationItem) toDomain() *domain.Registration {
	return &domain.Registration{
		ID:               it.ID,
		UserID:           it.UserID,
		EventID:          it.EventID,
		Status:           domain.RegistrationStatus(it.Status),
		RegistrationDate: it.RegistrationDate,
		UpdatedAt:        it.UpdatedAt,
	}
}

func registrationKey(userID, eventID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"user_id":  &types.AttributeValueMemberS{Value: userID},
		"event_id": &types.AttributeValueMemberS{Value: eventID},
	}
}

type registrationRepository struct {
	client API
	table  string
}

// NewRegistrationRepository returns a RegistrationRepository backed by the
// given DynamoDB table.
func NewRegistrationRepository(client API, table string) domain.RegistrationRepository {
	return &registrationRepository{client: client, table: table}
}

func (r *registrationRepository) Create(ctx context.Context, reg *domain.Registration) error {
	item, err := attributevalue.MarshalMap(newRegistrationItem(reg))
	if err != nil {
		return fmt.Errorf("marshal registration: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(user_id) AND attribute_not_exists(event_id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.ErrConflict
		}
		return fmt.Errorf("put registration: %w", err)
	}
	return nil
}

func (r *registrationRepository) GetByUserAndEvent(ctx context.Context, userID, eventID string) (*domain.Registration, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key:       registrationKey(userID, eventID),
	})
	if err != nil {
		return nil, fmt.Errorf("get registration: %w", err)
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var it registrationItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal registration: %w", err)
	}
	return it.toDomain(), nil
}

func (r *registrationRepository) UpdateStatus(ctx context.Context, userID, eventID string, status domain.RegistrationStatus, updatedAt time.Time) (*domain.Registration, error) {
	upd := expression.
		Set(expression.Name("status"), expression.Value(string(status))).
		Set(expression.Name("updated_at"), expression.Value(updatedAt))
	cond := expression.AttributeExists(expression.Name("user_id"))
	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("build update expression: %w", err)
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.table),
		Key:                       registrationKey(userID, eventID),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("update registration status: %w", err)
	}
	var it registrationItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal registration: %w", err)
	}
	return it.toDomain(), nil
}

// ListActiveByUser pages through the user's ACTIVE registrations in reverse
// key order (most recently added events first under the native sort).
func (r *registrationRepository) ListActiveByUser(ctx context.Context, userID string, page domain.Page) ([]*domain.Registration, string, error) {
	startKey, err := decodeCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}
	keyCond := expression.Key("user_id").Equal(expression.Value(userID))
	filter := expression.Name("status").Equal(expression.Value(string(domain.RegistrationStatusActive)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, "", fmt.Errorf("build query expression: %w", err)
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     pageLimit(page),
		ExclusiveStartKey:         startKey,
		ScanIndexForward:          aws.Bool(false),
	})
	if err != nil {
		return nil, "", fmt.Errorf("query registrations: %w", err)
	}
	regs := make([]*domain.Registration, 0, len(out.Items))
	for _, raw := range out.Items {
		var it registrationItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, "", fmt.Errorf("unmarshal registration: %w", err)
		}
		regs = append(regs, it.toDomain())
	}
	next, err := encodeCursor(out.LastEvaluatedKey)
	if err != nil {
		return nil, "", err
	}
	return regs, next, nil
}

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

// dateLayout is the storage encoding of an event date: UTC with a
// fixed-width 9-digit fraction, so the status/date index sort key orders
// byte-wise in chronological order. RFC3339Nano would trim trailing zeros
// and break that.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

// eventItem is the storage shape of an event.
type eventItem struct {
	ID          string    `dynamodbav:"id"`
	Name        string    `dynamodbav:"name"`
	Description string    `dynamodbav:"description,omitempty"`
	Date        string    `dynamodbav:"date"`
	OrganizerID string    `dynamodbav:"organizer_id"`
	ImageURL    string    `dynamodbav:"image_url,omitempty"`
	ImageKey    string    `dynamodbav:"image_key,omitempty"`
	Status      string    `dynamodbav:"status"`
	CreatedAt   time.Time `dynamodbav:"created_at"`
	UpdatedAt   time.Time `dynamodbav:"updated_at"`
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func newEventItem(e *domain.Event) *eventItem {
	it := &eventItem{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Date:        formatDate(e.Date),
		OrganizerID: e.OrganizerID,
		Status:      string(e.Status),
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
	if e.Image != nil {
		it.ImageURL = e.Image.URL
		it.ImageKey = e.Image.Key
	}
	return it
}

func (it *eventItem) toDomain() (*domain.Event, error) {
	date, err := time.Parse(dateLayout, it.Date)
	if err != nil {
		return nil, fmt.Errorf("parse event date %q: %w", it.Date, err)
	}
	e := &domain.Event{
		ID:          it.ID,
		Name:        it.Name,
		Description: it.Description,
		Date:        date,
		OrganizerID: it.OrganizerID,
		Status:      domain.EventStatus(it.Status),
		CreatedAt:   it.CreatedAt,
		UpdatedAt:   it.UpdatedAt,
	}
	if it.ImageKey != "" || it.ImageURL != "" {
		e.Image = &domain.AssetRef{URL: it.ImageURL, Key: it.ImageKey}
	}
	return e, nil
}

type eventRepository struct {
	client API
	table  string
	clock  domain.Clock
}

// NewEventRepository returns an EventRepository backed by the given DynamoDB
// table. The clock stamps updated_at on writes.
func NewEventRepository(client API, table string, clock domain.Clock) domain.EventRepository {
	return &eventRepository{client: client, table: table, clock: clock}
}

func (r *eventRepository) Create(ctx context.Context, e *domain.Event) error {
	item, err := attributevalue.MarshalMap(newEventItem(e))
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return domain.ErrConflict
		}
		return fmt.Errorf("put event: %w", err)
	}
	return nil
}

func (r *eventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var it eventItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return it.toDomain()
}

// GetByName looks up an event by exact name among non-deleted events via the
// name index. Soft-deleted events release their name.
func (r *eventRepository) GetByName(ctx context.Context, name string) (*domain.Event, error) {
	keyCond := expression.Key("name").Equal(expression.Value(name))
	filter := expression.Name("status").Equal(expression.Value(string(domain.EventStatusActive)))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("build name lookup expression: %w", err)
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(eventsNameIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query event by name: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrNotFound
	}
	var it eventItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return it.toDomain()
}

func (r *eventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	upd := expression.Set(expression.Name("updated_at"), expression.Value(r.clock.Now().UTC()))
	if patch.Name != nil {
		upd = upd.Set(expression.Name("name"), expression.Value(*patch.Name))
	}
	if patch.Description != nil {
		upd = upd.Set(expression.Name("description"), expression.Value(*patch.Description))
	}
	if patch.Date != nil {
		upd = upd.Set(expression.Name("date"), expression.Value(formatDate(*patch.Date)))
	}
	if patch.OrganizerID != nil {
		upd = upd.Set(expression.Name("organizer_id"), expression.Value(*patch.OrganizerID))
	}
	if patch.Status != nil {
		upd = upd.Set(expression.Name("status"), expression.Value(string(*patch.Status)))
	}
	if patch.Image != nil {
		upd = upd.Set(expression.Name("image_url"), expression.Value(patch.Image.URL))
		upd = upd.Set(expression.Name("image_key"), expression.Value(patch.Image.Key))
	}
	cond := expression.AttributeExists(expression.Name("id"))
	expr, err := expression.NewBuilder().WithUpdate(upd).WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("build update expression: %w", err)
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
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
		return nil, fmt.Errorf("update event: %w", err)
	}
	var it eventItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	return it.toDomain()
}

func (r *eventRepository) List(ctx context.Context, f domain.EventFilter, page domain.Page) ([]*domain.Event, string, error) {
	startKey, err := decodeCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}
	p := planEvents(f)

	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue
	if p.isQuery() {
		builder := expression.NewBuilder().WithKeyCondition(*p.keyCond)
		if p.filter != nil {
			builder = builder.WithFilter(*p.filter)
		}
		expr, err := builder.Build()
		if err != nil {
			return nil, "", fmt.Errorf("build query expression: %w", err)
		}
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                 aws.String(r.table),
			IndexName:                 aws.String(p.index),
			KeyConditionExpression:    expr.KeyCondition(),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			Limit:                     pageLimit(page),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, "", fmt.Errorf("query events: %w", err)
		}
		items, lastKey = out.Items, out.LastEvaluatedKey
	} else {
		in := &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			Limit:             pageLimit(page),
			ExclusiveStartKey: startKey,
		}
		if p.filter != nil {
			expr, err := expression.NewBuilder().WithFilter(*p.filter).Build()
			if err != nil {
				return nil, "", fmt.Errorf("build scan expression: %w", err)
			}
			in.FilterExpression = expr.Filter()
			in.ExpressionAttributeNames = expr.Names()
			in.ExpressionAttributeValues = expr.Values()
		}
		out, err := r.client.Scan(ctx, in)
		if err != nil {
			return nil, "", fmt.Errorf("scan events: %w", err)
		}
		items, lastKey = out.Items, out.LastEvaluatedKey
	}

	events := make([]*domain.Event, 0, len(items))
	for _, raw := range items {
		var it eventItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, "", fmt.Errorf("unmarshal event: %w", err)
		}
		e, err := it.toDomain()
		if err != nil {
			return nil, "", err
		}
		events = append(events, e)
	}
	next, err := encodeCursor(lastKey)
	if err != nil {
		return nil, "", err
	}
	return events, next, nil
}

func pageLimit(page domain.Page) *int32 {
	if page.Limit <= 0 {
		return nil
	}
	return aws.Int32(page.Limit)
}

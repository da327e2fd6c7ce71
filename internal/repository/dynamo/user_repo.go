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

type userItem struct {
	ID                  string     `dynamodbav:"id"`
	Name                string     `dynamodbav:"name"`
	Email               string     `dynamodbav:"email"`
	PasswordHash        string     `dynamodbav:"password_hash"`
	Phone               string     `dynamodbav:"phone,omitempty"`
	Role                string     `dynamodbav:"role"`
	ProfileURL          string     `dynamodbav:"profile_url,omitempty"`
	ProfileKey          string     `dynamodbav:"profile_key,omitempty"`
	IsActive            bool       `dynamodbav:"is_active"`
	EmailValidated      bool       `dynamodbav:"is_email_validated"`
	ValidationToken     string     `dynamodbav:"validation_token,omitempty"`
	ValidationExpiresAt *time.Time `dynamodbav:"validation_expires_at,omitempty"`
	CreatedAt           time.Time  `dynamodbav:"created_at"`
	UpdatedAt           time.Time  `dynamodbav:"updated_at"`
}

func newUserItem(u *domain.User) *userItem {
	it := &userItem{
		ID:                  u.ID,
		Name:                u.Name,
		Email:               u.Email,
		PasswordHash:        u.PasswordHash,
		Phone:               u.Phone,
		Role:                string(u.Role),
		IsActive:            u.IsActive,
		EmailValidated:      u.EmailValidated,
		ValidationToken:     u.ValidationToken,
		ValidationExpiresAt: u.ValidationExpiresAt,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
	if u.ProfileAsset != nil {
		it.ProfileURL = u.ProfileAsset.URL
		it.ProfileKey = u.ProfileAsset.Key
	}
	return it
}

func (it *userItem) toDomain() *domain.User {
	u := &domain.User{
		ID:                  it.ID,
		Name:                it.Name,
		Email:               it.Email,
		PasswordHash:        it.PasswordHash,
		Phone:               it.Phone,
		Role:                domain.Role(it.Role),
		IsActive:            it.IsActive,
		EmailValidated:      it.EmailValidated,
		ValidationToken:     it.ValidationToken,
		ValidationExpiresAt: it.ValidationExpiresAt,
		CreatedAt:           it.CreatedAt,
		UpdatedAt:           it.UpdatedAt,
	}
	if it.ProfileKey != "" || it.ProfileURL != "" {
		u.ProfileAsset = &domain.AssetRef{URL: it.ProfileURL, Key: it.ProfileKey}
	}
	return u
}

type userRepository struct {
	client API
	table  string
	clock  domain.Clock
}

// NewUserRepository returns a UserRepository backed by the given DynamoDB
// table. The clock stamps updated_at on writes.
func NewUserRepository(client API, table string, clock domain.Clock) domain.UserRepository {
	return &userRepository{client: client, table: table, clock: clock}
}

func (r *userRepository) Create(ctx context.Context, u *domain.User) error {
	item, err := attributevalue.MarshalMap(newUserItem(u))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
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
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if out.Item == nil {
		return nil, domain.ErrNotFound
	}
	var it userItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return it.toDomain(), nil
}

// GetByEmail looks a user up through the email index. Email is globally
// unique, so the first match is the only match.
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	keyCond := expression.Key("email").Equal(expression.Value(email))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("build email lookup expression: %w", err)
	}
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.table),
		IndexName:                 aws.String(usersEmailIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrNotFound
	}
	var it userItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return it.toDomain(), nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch domain.UserPatch) (*domain.User, error) {
	upd := expression.Set(expression.Name("updated_at"), expression.Value(r.clock.Now().UTC()))
	if patch.Name != nil {
		upd = upd.Set(expression.Name("name"), expression.Value(*patch.Name))
	}
	if patch.Email != nil {
		upd = upd.Set(expression.Name("email"), expression.Value(*patch.Email))
	}
	if patch.PasswordHash != nil {
		upd = upd.Set(expression.Name("password_hash"), expression.Value(*patch.PasswordHash))
	}
	if patch.Phone != nil {
		upd = upd.Set(expression.Name("phone"), expression.Value(*patch.Phone))
	}
	if patch.Role != nil {
		upd = upd.Set(expression.Name("role"), expression.Value(string(*patch.Role)))
	}
	if patch.ProfileAsset != nil {
		upd = upd.Set(expression.Name("profile_url"), expression.Value(patch.ProfileAsset.URL))
		upd = upd.Set(expression.Name("profile_key"), expression.Value(patch.ProfileAsset.Key))
	}
	if patch.IsActive != nil {
		upd = upd.Set(expression.Name("is_active"), expression.Value(*patch.IsActive))
	}
	if patch.EmailValidated != nil {
		upd = upd.Set(expression.Name("is_email_validated"), expression.Value(*patch.EmailValidated))
	}
	if patch.ValidationToken != nil {
		upd = upd.Set(expression.Name("validation_token"), expression.Value(*patch.ValidationToken))
	}
	if patch.ValidationExpiresAt != nil {
		upd = upd.Set(expression.Name("validation_expires_at"), expression.Value(*patch.ValidationExpiresAt))
	}
	if patch.ClearValidation {
		upd = upd.Remove(expression.Name("validation_token"))
		upd = upd.Remove(expression.Name("validation_expires_at"))
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
		return nil, fmt.Errorf("update user: %w", err)
	}
	var it userItem
	if err := attributevalue.UnmarshalMap(out.Attributes, &it); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return it.toDomain(), nil
}

func (r *userRepository) List(ctx context.Context, f domain.UserFilter, page domain.Page) ([]*domain.User, string, error) {
	startKey, err := decodeCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}
	p := planUsers(f)

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
			return nil, "", fmt.Errorf("query users: %w", err)
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
			return nil, "", fmt.Errorf("scan users: %w", err)
		}
		items, lastKey = out.Items, out.LastEvaluatedKey
	}

	users := make([]*domain.User, 0, len(items))
	for _, raw := range items {
		var it userItem
		if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
			return nil, "", fmt.Errorf("unmarshal user: %w", err)
		}
		users = append(users, it.toDomain())
	}
	next, err := encodeCursor(lastKey)
	if err != nil {
		return nil, "", err
	}
	return users, next, nil
}

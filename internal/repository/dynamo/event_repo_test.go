package dynamo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/domain"
)

// fakeAPI implements API, capturing the last input of each call and returning
// canned outputs.
type fakeAPI struct {
	getIn    *dynamodb.GetItemInput
	putIn    *dynamodb.PutItemInput
	updateIn *dynamodb.UpdateItemInput
	queryIn  *dynamodb.QueryInput
	scanIn   *dynamodb.ScanInput

	getOut    *dynamodb.GetItemOutput
	putErr    error
	updateOut *dynamodb.UpdateItemOutput
	updateErr error
	queryOut  *dynamodb.QueryOutput
	scanOut   *dynamodb.ScanOutput
}

func (f *fakeAPI) GetItem(_ context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	f.getIn = in
	if f.getOut != nil {
		return f.getOut, nil
	}
	return &dynamodb.GetItemOutput{}, nil
}

func (f *fakeAPI) PutItem(_ context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	f.putIn = in
	if f.putErr != nil {
		return nil, f.putErr
	}
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeAPI) UpdateItem(_ context.Context, in *dynamodb.UpdateItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error) {
	f.updateIn = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	if f.updateOut != nil {
		return f.updateOut, nil
	}
	return &dynamodb.UpdateItemOutput{}, nil
}

func (f *fakeAPI) Query(_ context.Context, in *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	f.queryIn = in
	if f.queryOut != nil {
		return f.queryOut, nil
	}
	return &dynamodb.QueryOutput{}, nil
}

func (f *fakeAPI) Scan(_ context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	f.scanIn = in
	if f.scanOut != nil {
		return f.scanOut, nil
	}
	return &dynamodb.ScanOutput{}, nil
}

// staticClock pins repository write timestamps for assertions.
type staticClock struct{ now time.Time }

func (c staticClock) Now() time.Time { return c.now }

var repoNow = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func newEventRepo(fake *fakeAPI) domain.EventRepository {
	return NewEventRepository(fake, "events", staticClock{now: repoNow})
}

func testEvent() *domain.Event {
	return &domain.Event{
		ID:          "evt-1",
		Name:        "Go Meetup",
		Description: "Monthly meetup",
		Date:        time.Date(2026, 10, 1, 18, 0, 0, 0, time.UTC),
		OrganizerID: "org-1",
		Status:      domain.EventStatusActive,
		CreatedAt:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC),
	}
}

// stampedUpdatedAt digs the timestamp value out of an update expression's
// attribute values; the names map obscures which placeholder holds it.
func stampedUpdatedAt(t *testing.T, values map[string]types.AttributeValue) time.Time {
	t.Helper()
	for _, v := range values {
		s, ok := v.(*types.AttributeValueMemberS)
		if !ok {
			continue
		}
		if ts, err := time.Parse(time.RFC3339Nano, s.Value); err == nil {
			return ts
		}
	}
	t.Fatal("no timestamp among the update expression values")
	return time.Time{}
}

func marshalEventItem(t *testing.T, e *domain.Event) map[string]types.AttributeValue {
	t.Helper()
	raw, err := attributevalue.MarshalMap(newEventItem(e))
	require.NoError(t, err)
	return raw
}

func TestEventRepositoryCreate(t *testing.T) {
	t.Run("writes item guarded on id", func(t *testing.T) {
		fake := &fakeAPI{}
		repo := newEventRepo(fake)

		require.NoError(t, repo.Create(context.Background(), testEvent()))
		require.NotNil(t, fake.putIn)
		assert.Equal(t, "events", *fake.putIn.TableName)
		assert.Equal(t, "attribute_not_exists(id)", *fake.putIn.ConditionExpression)

		date, ok := fake.putIn.Item["date"].(*types.AttributeValueMemberS)
		require.True(t, ok, "date should be stored as a string sort key")
		assert.Equal(t, "2026-10-01T18:00:00.000000000Z", date.Value)
	})

	t.Run("fractional-second dates keep byte-wise time order", func(t *testing.T) {
		whole := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
		fractional := whole.Add(500 * time.Millisecond)
		assert.Less(t, formatDate(whole), formatDate(fractional))
		assert.Equal(t, "2026-10-01T10:00:00.500000000Z", formatDate(fractional))
	})

	t.Run("conditional check failure maps to conflict", func(t *testing.T) {
		fake := &fakeAPI{putErr: &types.ConditionalCheckFailedException{}}
		repo := newEventRepo(fake)

		err := repo.Create(context.Background(), testEvent())
		require.ErrorIs(t, err, domain.ErrConflict)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		fake := &fakeAPI{putErr: errors.New("throttled")}
		repo := newEventRepo(fake)

		err := repo.Create(context.Background(), testEvent())
		require.Error(t, err)
		assert.NotErrorIs(t, err, domain.ErrConflict)
	})
}

func TestEventRepositoryGetByID(t *testing.T) {
	t.Run("missing item maps to not found", func(t *testing.T) {
		fake := &fakeAPI{getOut: &dynamodb.GetItemOutput{}}
		repo := newEventRepo(fake)

		_, err := repo.GetByID(context.Background(), "nope")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("found item round-trips", func(t *testing.T) {
		want := testEvent()
		fake := &fakeAPI{getOut: &dynamodb.GetItemOutput{Item: marshalEventItem(t, want)}}
		repo := newEventRepo(fake)

		got, err := repo.GetByID(context.Background(), want.ID)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Name, got.Name)
		assert.True(t, want.Date.Equal(got.Date))
		assert.Equal(t, want.Status, got.Status)
	})
}

func TestEventRepositoryGetByName(t *testing.T) {
	t.Run("queries the name index", func(t *testing.T) {
		want := testEvent()
		fake := &fakeAPI{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{marshalEventItem(t, want)}}}
		repo := newEventRepo(fake)

		got, err := repo.GetByName(context.Background(), want.Name)
		require.NoError(t, err)
		assert.Equal(t, want.ID, got.ID)
		require.NotNil(t, fake.queryIn)
		assert.Equal(t, eventsNameIndex, *fake.queryIn.IndexName)
		assert.NotNil(t, fake.queryIn.FilterExpression, "active-only filter expected")
	})

	t.Run("no match maps to not found", func(t *testing.T) {
		fake := &fakeAPI{queryOut: &dynamodb.QueryOutput{}}
		repo := newEventRepo(fake)

		_, err := repo.GetByName(context.Background(), "nope")
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEventRepositoryUpdate(t *testing.T) {
	t.Run("conditional check failure maps to not found", func(t *testing.T) {
		fake := &fakeAPI{updateErr: &types.ConditionalCheckFailedException{}}
		repo := newEventRepo(fake)

		name := "Renamed"
		_, err := repo.Update(context.Background(), "evt-1", domain.EventPatch{Name: &name})
		require.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("returns the updated item", func(t *testing.T) {
		want := testEvent()
		want.Name = "Renamed"
		fake := &fakeAPI{updateOut: &dynamodb.UpdateItemOutput{Attributes: marshalEventItem(t, want)}}
		repo := newEventRepo(fake)

		name := "Renamed"
		got, err := repo.Update(context.Background(), want.ID, domain.EventPatch{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
		require.NotNil(t, fake.updateIn)
		assert.Equal(t, types.ReturnValueAllNew, fake.updateIn.ReturnValues)
	})

	t.Run("updated_at comes from the repository clock", func(t *testing.T) {
		fake := &fakeAPI{updateOut: &dynamodb.UpdateItemOutput{Attributes: marshalEventItem(t, testEvent())}}
		repo := newEventRepo(fake)

		name := "Renamed"
		_, err := repo.Update(context.Background(), "evt-1", domain.EventPatch{Name: &name})
		require.NoError(t, err)
		require.NotNil(t, fake.updateIn)
		assert.Equal(t, repoNow, stampedUpdatedAt(t, fake.updateIn.ExpressionAttributeValues))
	})
}

func TestEventRepositoryList(t *testing.T) {
	active := domain.EventStatusActive

	t.Run("status filter runs an indexed query", func(t *testing.T) {
		fake := &fakeAPI{queryOut: &dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{marshalEventItem(t, testEvent())}}}
		repo := newEventRepo(fake)

		events, next, err := repo.List(context.Background(), domain.EventFilter{Status: &active}, domain.Page{Limit: 10})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Empty(t, next)
		require.NotNil(t, fake.queryIn)
		assert.Equal(t, eventsStatusDateIndex, *fake.queryIn.IndexName)
		assert.Equal(t, int32(10), *fake.queryIn.Limit)
		assert.Nil(t, fake.scanIn)
	})

	t.Run("empty filter runs a scan", func(t *testing.T) {
		fake := &fakeAPI{scanOut: &dynamodb.ScanOutput{}}
		repo := newEventRepo(fake)

		events, next, err := repo.List(context.Background(), domain.EventFilter{}, domain.Page{})
		require.NoError(t, err)
		assert.Empty(t, events)
		assert.Empty(t, next)
		require.NotNil(t, fake.scanIn)
		assert.Nil(t, fake.scanIn.FilterExpression)
		assert.Nil(t, fake.queryIn)
	})

	t.Run("truncated page yields a cursor that resumes", func(t *testing.T) {
		lastKey := map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: "evt-1"},
		}
		fake := &fakeAPI{scanOut: &dynamodb.ScanOutput{LastEvaluatedKey: lastKey}}
		repo := newEventRepo(fake)

		_, next, err := repo.List(context.Background(), domain.EventFilter{}, domain.Page{Limit: 1})
		require.NoError(t, err)
		require.NotEmpty(t, next)

		_, _, err = repo.List(context.Background(), domain.EventFilter{}, domain.Page{Limit: 1, Cursor: next})
		require.NoError(t, err)
		require.NotNil(t, fake.scanIn.ExclusiveStartKey)
		id, ok := fake.scanIn.ExclusiveStartKey["id"].(*types.AttributeValueMemberS)
		require.True(t, ok)
		assert.Equal(t, "evt-1", id.Value)
	})

	t.Run("malformed cursor is rejected", func(t *testing.T) {
		fake := &fakeAPI{}
		repo := newEventRepo(fake)

		_, _, err := repo.List(context.Background(), domain.EventFilter{}, domain.Page{Cursor: "%%%"})
		require.ErrorIs(t, err, domain.ErrInvalidCursor)
		assert.Nil(t, fake.scanIn, "no storage call on a bad cursor")
	})
}

package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/domain"
)

func TestCursorRoundTrip(t *testing.T) {
	key := map[string]types.AttributeValue{
		"id":     &types.AttributeValueMemberS{Value: "evt-42"},
		"status": &types.AttributeValueMemberS{Value: "ACTIVE"},
		"date":   &types.AttributeValueMemberS{Value: "2026-10-01T18:00:00Z"},
	}

	cursor, err := encodeCursor(key)
	require.NoError(t, err)
	require.NotEmpty(t, cursor)

	decoded, err := decodeCursor(cursor)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for name, want := range key {
		got, ok := decoded[name].(*types.AttributeValueMemberS)
		require.True(t, ok, "attribute %s should round-trip as a string", name)
		assert.Equal(t, want.(*types.AttributeValueMemberS).Value, got.Value)
	}
}

func TestEncodeCursorEmptyKey(t *testing.T) {
	cursor, err := encodeCursor(nil)
	require.NoError(t, err)
	assert.Empty(t, cursor)
}

func TestDecodeCursorEmpty(t *testing.T) {
	key, err := decodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, key)
}

func TestDecodeCursorMalformed(t *testing.T) {
	tests := []struct {
		name   string
		cursor string
	}{
		{"not base64", "not!!valid!!base64"},
		{"base64 but not json", "bm90LWpzb24"},
		{"json but empty object", "e30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeCursor(tt.cursor)
			require.ErrorIs(t, err, domain.ErrInvalidCursor)
		})
	}
}

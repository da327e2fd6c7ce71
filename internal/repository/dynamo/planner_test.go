package dynamo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventdesk/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestPlanEvents(t *testing.T) {
	active := domain.EventStatusActive
	from := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		filter     domain.EventFilter
		wantQuery  bool
		wantIndex  string
		wantFilter bool
	}{
		{
			name:   "empty filter is a bare scan",
			filter: domain.EventFilter{},
		},
		{
			name:      "status equality hits the status/date index",
			filter:    domain.EventFilter{Status: &active},
			wantQuery: true,
			wantIndex: eventsStatusDateIndex,
		},
		{
			name:      "status with date bounds stays a query",
			filter:    domain.EventFilter{Status: &active, From: &from, To: &to},
			wantQuery: true,
			wantIndex: eventsStatusDateIndex,
		},
		{
			name:      "status with only a lower bound stays a query",
			filter:    domain.EventFilter{Status: &active, From: &from},
			wantQuery: true,
			wantIndex: eventsStatusDateIndex,
		},
		{
			name:       "name substring is a scan with a post-filter",
			filter:     domain.EventFilter{Name: strPtr("meetup")},
			wantFilter: true,
		},
		{
			name:       "date bounds without status degrade to scan filters",
			filter:     domain.EventFilter{From: &from, To: &to},
			wantFilter: true,
		},
		{
			name:       "status with name keeps name as post-filter on the query",
			filter:     domain.EventFilter{Status: &active, Name: strPtr("meetup")},
			wantQuery:  true,
			wantIndex:  eventsStatusDateIndex,
			wantFilter: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := planEvents(tt.filter)
			assert.Equal(t, tt.wantQuery, p.isQuery())
			assert.Equal(t, tt.wantIndex, p.index)
			if tt.wantFilter {
				assert.NotNil(t, p.filter)
			} else {
				assert.Nil(t, p.filter)
			}
		})
	}
}

func TestPlanUsers(t *testing.T) {
	organizer := domain.RoleOrganizer

	p := planUsers(domain.UserFilter{})
	assert.False(t, p.isQuery())
	assert.Nil(t, p.filter)

	p = planUsers(domain.UserFilter{Role: &organizer})
	require.True(t, p.isQuery())
	assert.Equal(t, usersRoleIndex, p.index)
	assert.Nil(t, p.filter)

	p = planUsers(domain.UserFilter{Name: strPtr("ada")})
	assert.False(t, p.isQuery())
	assert.NotNil(t, p.filter)

	p = planUsers(domain.UserFilter{Role: &organizer, Name: strPtr("ada")})
	require.True(t, p.isQuery())
	assert.Equal(t, usersRoleIndex, p.index)
	assert.NotNil(t, p.filter)
}

func TestDateValueOrdersLexicographically(t *testing.T) {
	t.Run("across calendar dates", func(t *testing.T) {
		earlier := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
		later := time.Date(2026, 11, 20, 9, 0, 0, 0, time.UTC)
		assert.Less(t, formatDate(earlier), formatDate(later))
	})

	t.Run("across fractional seconds", func(t *testing.T) {
		// Variable-width fractions would sort "10:00:00.5Z" before
		// "10:00:00Z"; the fixed-width encoding must not.
		whole := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
		half := whole.Add(500 * time.Millisecond)
		next := whole.Add(time.Second)
		assert.Less(t, formatDate(whole), formatDate(half))
		assert.Less(t, formatDate(half), formatDate(next))
	})

	t.Run("non-UTC input is normalized", func(t *testing.T) {
		loc := time.FixedZone("UTC+2", 2*60*60)
		local := time.Date(2026, 3, 5, 11, 0, 0, 0, loc)
		assert.Equal(t, "2026-03-05T09:00:00.000000000Z", formatDate(local))
	})
}

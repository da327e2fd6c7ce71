package dynamo

import (
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"eventdesk/internal/domain"
)

// Secondary index names. Each listing either hits one of these with a key
// condition or falls back to a table scan.
const (
	eventsStatusDateIndex = "status-date-index"
	eventsNameIndex       = "name-index"
	usersRoleIndex        = "role-index"
	usersEmailIndex       = "email-index"
)

// plan is the typed access-path decision for a listing: an indexed range
// query when keyCond is set, otherwise a full scan. filter is applied by the
// engine after the key condition, never as part of it.
type plan struct {
	index   string
	keyCond *expression.KeyConditionBuilder
	filter  *expression.ConditionBuilder
}

func (p plan) isQuery() bool { return p.keyCond != nil }

// planEvents selects the access path for an event listing. A status equality
// filter matches the status/date index partition key; date bounds then
// become a sort-key range. Name substring containment cannot be a key
// condition and is always a post-filter, as are date bounds without status.
func planEvents(f domain.EventFilter) plan {
	var post []expression.ConditionBuilder
	if f.Name != nil {
		post = append(post, expression.Contains(expression.Name("name"), *f.Name))
	}

	if f.Status != nil {
		key := expression.Key("status").Equal(expression.Value(string(*f.Status)))
		switch {
		case f.From != nil && f.To != nil:
			key = key.And(expression.Key("date").Between(dateValue(*f.From), dateValue(*f.To)))
		case f.From != nil:
			key = key.And(expression.Key("date").GreaterThanEqual(dateValue(*f.From)))
		case f.To != nil:
			key = key.And(expression.Key("date").LessThanEqual(dateValue(*f.To)))
		}
		return plan{index: eventsStatusDateIndex, keyCond: &key, filter: combine(post)}
	}

	// No index is keyed purely by date, so orphan bounds degrade to
	// scan-time filters.
	if f.From != nil {
		post = append(post, expression.Name("date").GreaterThanEqual(dateValue(*f.From)))
	}
	if f.To != nil {
		post = append(post, expression.Name("date").LessThanEqual(dateValue(*f.To)))
	}
	return plan{filter: combine(post)}
}

// planUsers selects the access path for a user listing. A role equality
// filter matches the role index partition key; name substring is always a
// post-filter.
func planUsers(f domain.UserFilter) plan {
	var post []expression.ConditionBuilder
	if f.Name != nil {
		post = append(post, expression.Contains(expression.Name("name"), *f.Name))
	}
	if f.Role != nil {
		key := expression.Key("role").Equal(expression.Value(string(*f.Role)))
		return plan{index: usersRoleIndex, keyCond: &key, filter: combine(post)}
	}
	return plan{filter: combine(post)}
}

func combine(conds []expression.ConditionBuilder) *expression.ConditionBuilder {
	switch len(conds) {
	case 0:
		return nil
	case 1:
		return &conds[0]
	}
	c := expression.And(conds[0], conds[1], conds[2:]...)
	return &c
}

// dateValue renders a timestamp in the event items' fixed-width date
// encoding, so range conditions compare lexicographically in time order.
func dateValue(t time.Time) expression.ValueBuilder {
	return expression.Value(formatDate(t))
}

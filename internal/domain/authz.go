package domain

// Action identifies an operation for authorization purposes.
type Action string

const (
	ActionCreateEvent        Action = "event:create"
	ActionReadEvent          Action = "event:read"
	ActionUpdateEvent        Action = "event:update"
	ActionDeleteEvent        Action = "event:delete"
	ActionCreateRegistration Action = "registration:create"
	ActionCancelRegistration Action = "registration:cancel"
	ActionReadUser           Action = "user:read"
	ActionUpdateUser         Action = "user:update"
	ActionDeleteUser         Action = "user:delete"
)

// IsWrite reports whether the action mutates state. Inactive actors are
// denied every write regardless of role.
func (a Action) IsWrite() bool {
	return a != ActionReadEvent && a != ActionReadUser
}

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns an allowing decision.
func Allow() Decision { return Decision{Allowed: true} }

// Deny returns a denying decision with the given reason.
func Deny(reason string) Decision { return Decision{Reason: reason} }

// Authorize evaluates the role/ownership rules for the actor performing
// action on a resource owned by resourceOwnerID. It is a pure function;
// callers surface a deny as ErrForbidden.
func Authorize(actor *User, action Action, resourceOwnerID string) Decision {
	if actor == nil {
		return Deny("unauthenticated")
	}
	if !actor.IsActive && action.IsWrite() {
		return Deny("account is deactivated")
	}
	if actor.Role == RoleAdmin {
		return Allow()
	}
	switch action {
	case ActionReadEvent:
		return Allow()
	case ActionCreateEvent:
		if actor.Role == RoleOrganizer {
			return Allow()
		}
		return Deny("only organizers may create events")
	case ActionUpdateEvent, ActionDeleteEvent:
		if actor.Role == RoleOrganizer && actor.ID == resourceOwnerID {
			return Allow()
		}
		return Deny("not the event organizer")
	case ActionCreateRegistration, ActionCancelRegistration:
		if actor.ID == resourceOwnerID {
			return Allow()
		}
		return Deny("registrations can only be managed for yourself")
	case ActionReadUser, ActionUpdateUser, ActionDeleteUser:
		if actor.ID == resourceOwnerID {
			return Allow()
		}
		return Deny("not your account")
	}
	return Deny("unknown action")
}

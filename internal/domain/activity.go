package domain

import (
	"context"
	"time"
)

// ActivityAction enumerates recorded actions.
type ActivityAction string

const (
	ActionCreated             ActivityAction = "created"
	ActionUpdated             ActivityAction = "updated"
	ActionDeleted             ActivityAction = "deleted"
	ActionAssigned            ActivityAction = "assigned"
	ActionStatusChanged       ActivityAction = "status_changed"
	ActionJoinedProject       ActivityAction = "joined_project"
	ActionLeftProject         ActivityAction = "left_project"
	ActionSubscriptionChanged ActivityAction = "subscription_changed"
)

// Activity is an append-only audit entry.
type Activity struct {
	ID          string
	ActorID     string
	Action      ActivityAction
	Target      Target
	Description string
	IPAddress   string
	UserAgent   string
	Country     string
	CreatedAt   time.Time
}

// ClientInfo describes the request origin attached to activity entries.
type ClientInfo struct {
	IPAddress string
	UserAgent string
	Country   string
}

type clientInfoKey struct{}

// WithClientInfo stores request origin details on the context.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientInfoKey{}, info)
}

// ClientInfoFromContext returns request origin details, if any.
func ClientInfoFromContext(ctx context.Context) ClientInfo {
	if v, ok := ctx.Value(clientInfoKey{}).(ClientInfo); ok {
		return v
	}
	return ClientInfo{}
}

package events

import (
	"time"

	"github.com/ezinne-pharmarcy/backend/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventLoginSucceeded EventType = "login_succeeded"
	EventLoginFailed    EventType = "login_failed"
	EventLogout         EventType = "logout"
	EventSessionExpired EventType = "session_expired"
	EventAccountCreated EventType = "account_created"
	EventAccountDeleted EventType = "account_deleted"
)

// AuditTypes lists every event forwarded to the audit trail.
var AuditTypes = []EventType{
	EventLoginSucceeded,
	EventLoginFailed,
	EventLogout,
	EventSessionExpired,
	EventAccountCreated,
	EventAccountDeleted,
}

// Actor identifies the account that caused an event.
type Actor struct {
	AccountID string             `json:"account_id,omitempty"`
	Kind      domain.AccountKind `json:"kind,omitempty"`
}

// Event represents an audit-relevant fact emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload,omitempty"`
}

// LoginFailedPayload carries the internal failure reason. It is never sent to clients.
type LoginFailedPayload struct {
	Email  string `json:"email"`
	Reason string `json:"reason"`
}

// SessionExpiredPayload records when the expired session was last active.
type SessionExpiredPayload struct {
	LastActivityAt time.Time `json:"last_activity_at"`
}

// AccountChangedPayload describes an account created or deleted by another account.
type AccountChangedPayload struct {
	AccountID string             `json:"account_id"`
	Kind      domain.AccountKind `json:"kind"`
	Email     string             `json:"email,omitempty"`
}

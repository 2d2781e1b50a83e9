package service

import "github.com/google/uuid"

// EventDelivery pushes socket events to connected users. Implemented by the
// websocket hub; declared here so services never import the hub package.
type EventDelivery interface {
	// SendToUser reports false when the user is unreachable. Callers treat
	// that as a normal branch, not a failure.
	SendToUser(userID uuid.UUID, event string, payload interface{}) bool
	IsOnline(userID uuid.UUID) bool
}

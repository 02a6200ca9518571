package domain

import (
	"encoding/json"

	"github.com/google/uuid"
)

// NotificationKind identifies the registry mutation a notification describes.
type NotificationKind string

// Notification kinds, also used as outbox event types.
const (
	ClaimCreated     NotificationKind = "claim.created"
	ClaimRevoked     NotificationKind = "claim.revoked"
	ClaimTransferred NotificationKind = "claim.transferred"
)

// Notification is emitted once for every successful mutation.
type Notification struct {
	Kind   NotificationKind
	Caller uuid.UUID
	// To is set only for ClaimTransferred.
	To    uuid.UUID
	Claim Claim
	At    LogicalTime
}

type notificationPayload struct {
	Kind   NotificationKind `json:"kind"`
	Caller string           `json:"caller"`
	To     string           `json:"to,omitempty"`
	Claim  string           `json:"claim"`
	At     uint64           `json:"at"`
}

// MarshalJSON encodes the notification with a hex claim.
func (n Notification) MarshalJSON() ([]byte, error) {
	p := notificationPayload{
		Kind:   n.Kind,
		Caller: n.Caller.String(),
		Claim:  n.Claim.Hex(),
		At:     uint64(n.At),
	}
	if n.To != uuid.Nil {
		p.To = n.To.String()
	}
	return json.Marshal(p)
}

// UnmarshalNotification decodes a payload produced by MarshalJSON. The claim is not
// re-bounded: it was checked when the notification was emitted.
func UnmarshalNotification(data []byte) (Notification, error) {
	var p notificationPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return Notification{}, err
	}

	caller, err := uuid.Parse(p.Caller)
	if err != nil {
		return Notification{}, err
	}

	var to uuid.UUID
	if p.To != "" {
		if to, err = uuid.Parse(p.To); err != nil {
			return Notification{}, err
		}
	}

	claim, err := ParseHexClaim(p.Claim, len(p.Claim))
	if err != nil {
		return Notification{}, err
	}

	return Notification{Kind: p.Kind, Caller: caller, To: to, Claim: claim, At: LogicalTime(p.At)}, nil
}

package model

import "encoding/json"

// Realtime event names shared by clients and server
const (
	EventLogin         = "login"
	EventPublicMessage = "public-message"
	EventRevokeMessage = "revoke-message"
	EventOnlineUsers   = "online-users"
	EventError         = "error"
)

// Error codes sent to the initiating session only
const (
	CodeBadRequest       = "bad_request"
	CodeNotLoggedIn      = "not_logged_in"
	CodeInvalidOrdinal   = "invalid_ordinal"
	CodePersistence      = "persistence"
	CodeRateLimited      = "rate_limited"
	CodeUnsupportedScope = "unsupported_scope"
	CodeInternal         = "internal"
)

// Event is the outgoing websocket envelope
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data"`
}

// IncomingEvent is the client to server envelope. Data is decoded per event.
type IncomingEvent struct {
	Name string          `json:"event"`
	Data json.RawMessage `json:"data"`
}

// PublicMessageRequest is the payload of a public-message event
type PublicMessageRequest struct {
	Text string      `json:"text"`
	Time string      `json:"time"`
	File *Attachment `json:"file,omitempty"`
}

// RevokeRequest addresses a message by its ordinal position in the scope
type RevokeRequest struct {
	Type  string `json:"type"`
	Index int    `json:"index"`
}

// RevokeEvent is broadcast after a revoked message has been deleted
type RevokeEvent struct {
	Type  Scope `json:"type"`
	Index int   `json:"index"`
}

// ErrorEvent is sent back to the session whose request failed
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

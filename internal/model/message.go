package model

import "fmt"

// Scope partitions the message log
type Scope string

const (
	ScopePublic  Scope = "public"
	ScopePrivate Scope = "private"
)

// ParseScope validates a client supplied scope string
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopePublic, ScopePrivate:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unknown scope %q", s)
	}
}

// Attachment describes an uploaded file. The chat core never looks inside it.
type Attachment struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size"`
	MimeType  string `json:"type"`
	URL       string `json:"url"`
}

// Message is a persisted chat message
type Message struct {
	SequenceNumber int64
	Scope          Scope
	Sender         string
	Recipient      string // private scope only
	Body           string
	Attachment     *Attachment
	Timestamp      string
	Revoked        bool

	// 送信時に保存された表示名スナップショット（任意）
	DisplayName string
	AvatarURL   string
}

// Identity is the current display identity of a user handle
type Identity struct {
	DisplayName string
	AvatarURL   string
}

// EnrichedMessage is the wire representation of a message joined with the
// sender's identity. It is never persisted.
type EnrichedMessage struct {
	ID       int64   `json:"id"`
	Type     Scope   `json:"type"`
	FromUser string  `json:"fromUser"`
	ToUser   *string `json:"toUser"`
	Content  string  `json:"content"`
	FileName *string `json:"fileName"`
	FileSize *int64  `json:"fileSize"`
	FileType *string `json:"fileType"`
	FileURL  *string `json:"fileUrl"`
	Time     string  `json:"time"`
	Revoked  bool    `json:"revoked"`
	Nickname string  `json:"nickname"`
	Avatar   string  `json:"avatar"`
}

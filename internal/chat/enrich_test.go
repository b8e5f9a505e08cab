package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

func TestEnrich_Precedence(t *testing.T) {
	resolved := model.Identity{DisplayName: "Alice", AvatarURL: "/alice.png"}

	tests := []struct {
		name       string
		msg        model.Message
		id         model.Identity
		wantName   string
		wantAvatar string
	}{
		{
			name:       "resolved identity",
			msg:        model.Message{Sender: "alice"},
			id:         resolved,
			wantName:   "Alice",
			wantAvatar: "/alice.png",
		},
		{
			name:       "stored snapshot wins",
			msg:        model.Message{Sender: "alice", DisplayName: "Old Alice", AvatarURL: "/old.png"},
			id:         resolved,
			wantName:   "Old Alice",
			wantAvatar: "/old.png",
		},
		{
			name:       "partial snapshot",
			msg:        model.Message{Sender: "alice", DisplayName: "Old Alice"},
			id:         resolved,
			wantName:   "Old Alice",
			wantAvatar: "/alice.png",
		},
		{
			name:       "unknown sender falls back to handle",
			msg:        model.Message{Sender: "ghost"},
			id:         model.Identity{},
			wantName:   "ghost",
			wantAvatar: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Enrich(tt.msg, tt.id)
			assert.Equal(t, tt.wantName, got.Nickname)
			assert.Equal(t, tt.wantAvatar, got.Avatar)
		})
	}
}

func TestEnrich_CarriesFields(t *testing.T) {
	msg := model.Message{
		SequenceNumber: 7,
		Scope:          model.ScopePrivate,
		Sender:         "alice",
		Recipient:      "bob",
		Body:           "hi",
		Timestamp:      "2024-01-01 10:00",
		Attachment:     &model.Attachment{Name: "a.png", SizeBytes: 10, MimeType: "image/png", URL: "/uploads/a.png"},
	}

	got := Enrich(msg, model.Identity{DisplayName: "Alice"})

	assert.Equal(t, int64(7), got.ID)
	assert.Equal(t, model.ScopePrivate, got.Type)
	assert.Equal(t, "alice", got.FromUser)
	require.NotNil(t, got.ToUser)
	assert.Equal(t, "bob", *got.ToUser)
	assert.Equal(t, "hi", got.Content)
	assert.Equal(t, "2024-01-01 10:00", got.Time)
	require.NotNil(t, got.FileName)
	assert.Equal(t, "a.png", *got.FileName)
	assert.Equal(t, int64(10), *got.FileSize)
	assert.Equal(t, "image/png", *got.FileType)
	assert.Equal(t, "/uploads/a.png", *got.FileURL)

	// 入力のアタッチメントとは別の値を指す
	msg.Attachment.Name = "changed"
	assert.Equal(t, "a.png", *got.FileName)
}

func TestEnrich_NoAttachmentNoRecipient(t *testing.T) {
	got := Enrich(model.Message{Sender: "alice", Scope: model.ScopePublic}, model.Identity{})
	assert.Nil(t, got.ToUser)
	assert.Nil(t, got.FileName)
	assert.Nil(t, got.FileSize)
	assert.Nil(t, got.FileType)
	assert.Nil(t, got.FileURL)
}

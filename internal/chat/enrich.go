package chat

import "github.com/xjzfwqgf/chat-web/internal/model"

// Enrich joins a stored message with its sender's identity. A display name or
// avatar stored with the message wins over the resolved one; the display name
// falls back to the raw handle.
func Enrich(m model.Message, id model.Identity) model.EnrichedMessage {
	out := model.EnrichedMessage{
		ID:       m.SequenceNumber,
		Type:     m.Scope,
		FromUser: m.Sender,
		Content:  m.Body,
		Time:     m.Timestamp,
		Revoked:  m.Revoked,
		Nickname: firstNonEmpty(m.DisplayName, id.DisplayName, m.Sender),
		Avatar:   firstNonEmpty(m.AvatarURL, id.AvatarURL),
	}

	if m.Recipient != "" {
		to := m.Recipient
		out.ToUser = &to
	}

	if att := m.Attachment; att != nil {
		name, mime, url, size := att.Name, att.MimeType, att.URL, att.SizeBytes
		out.FileName = &name
		out.FileType = &mime
		out.FileURL = &url
		out.FileSize = &size
	}

	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

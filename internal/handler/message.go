package handler

import (
	"net/http"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

// GetPublicMessages handles GET /api/messages/public
// 公開スコープの全メッセージを seq 昇順で、現在の表示名とアバター付きで返す
func (h *Handler) GetPublicMessages(w http.ResponseWriter, r *http.Request) {
	h.Log.Infof("[GET /api/messages/public] Request received from %s", r.RemoteAddr)

	msgs, err := h.Chat.History(r.Context(), model.ScopePublic)
	if err != nil {
		h.Log.Errorf("[GET /api/messages/public] ❌ Store error: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	h.Log.Infof("[GET /api/messages/public] ✅ Returned %d messages", len(msgs))
	writeJSON(w, http.StatusOK, msgs)
}

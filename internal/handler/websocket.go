package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/xjzfwqgf/chat-web/internal/broadcast"
	"github.com/xjzfwqgf/chat-web/internal/chat"
	"github.com/xjzfwqgf/chat-web/internal/config"
	"github.com/xjzfwqgf/chat-web/internal/model"
	"github.com/xjzfwqgf/chat-web/internal/store"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// createUpgrader creates a WebSocket upgrader that checks the allowed origins
func createUpgrader(cfg config.Config) websocket.Upgrader {
	return websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return cfg.OriginAllowed(r.Header.Get("Origin"))
		},
	}
}

// HandleWebSocket handles GET /ws
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := createUpgrader(h.Config)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Log.Warnf("[WebSocket] Upgrade error: %v", err)
		return
	}

	sess := h.Bus.Register()
	limiter := rate.NewLimiter(rate.Limit(h.Config.WSRatePerSecond), h.Config.WSRateBurst)

	done := make(chan struct{})
	go func() {
		defer close(done)
		h.writePump(conn, sess)
	}()

	h.readPump(r.Context(), conn, sess, limiter)

	// 退避済みなら Unregister は false を返す
	h.Bus.Unregister(sess.ID)
	conn.Close()
	<-done

	h.Log.Infof("[WebSocket] Session %s (%s) disconnected", sess.ID, sess.Handle())
	if sess.Handle() != "" {
		h.publishOnlineUsers()
	}
}

func (h *Handler) readPump(ctx context.Context, conn *websocket.Conn, sess *broadcast.Session, limiter *rate.Limiter) {
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Log.Warnf("[WebSocket] Read error from %s: %v", sess.ID, err)
			}
			return
		}

		if !limiter.Allow() {
			h.sendError(sess, model.CodeRateLimited, "too many events")
			continue
		}

		var in model.IncomingEvent
		if err := json.Unmarshal(raw, &in); err != nil {
			h.sendError(sess, model.CodeBadRequest, "invalid event envelope")
			continue
		}

		h.dispatch(ctx, sess, in)
	}
}

func (h *Handler) dispatch(ctx context.Context, sess *broadcast.Session, in model.IncomingEvent) {
	switch in.Name {
	case model.EventLogin:
		var handle string
		if err := json.Unmarshal(in.Data, &handle); err != nil || handle == "" {
			h.sendError(sess, model.CodeBadRequest, "login expects a user handle")
			return
		}
		if sess.Login(handle) {
			h.Log.Infof("[WebSocket] Session %s logged in as %s", sess.ID, handle)
		}
		h.publishOnlineUsers()

	case model.EventPublicMessage:
		sender := sess.Handle()
		if sender == "" {
			h.sendError(sess, model.CodeNotLoggedIn, "login before sending messages")
			return
		}
		var req model.PublicMessageRequest
		if err := json.Unmarshal(in.Data, &req); err != nil {
			h.sendError(sess, model.CodeBadRequest, "invalid public-message payload")
			return
		}
		if _, err := h.Chat.SendPublic(ctx, sender, req); err != nil {
			h.sendError(sess, errorCode(err), err.Error())
		}

	case model.EventRevokeMessage:
		var req model.RevokeRequest
		if err := json.Unmarshal(in.Data, &req); err != nil {
			h.sendError(sess, model.CodeBadRequest, "invalid revoke-message payload")
			return
		}
		scope, err := model.ParseScope(req.Type)
		if err != nil {
			h.sendError(sess, model.CodeUnsupportedScope, err.Error())
			return
		}
		if err := h.Chat.Revoke(ctx, scope, req.Index); err != nil {
			h.sendError(sess, errorCode(err), err.Error())
		}

	default:
		h.sendError(sess, model.CodeBadRequest, "unknown event "+in.Name)
	}
}

func (h *Handler) writePump(conn *websocket.Conn, sess *broadcast.Session) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case payload, ok := <-sess.Send():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Bus がチャネルを閉じた（切断または退避）
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.Log.Warnf("[WebSocket] Write error to %s: %v", sess.ID, err)
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *Handler) publishOnlineUsers() {
	ev := model.Event{Name: model.EventOnlineUsers, Data: h.Bus.Handles()}
	if err := h.Bus.Publish(ev); err != nil {
		h.Log.Errorf("[WebSocket] ❌ Failed to publish online users: %v", err)
	}
}

// sendError notifies only the session whose request failed
func (h *Handler) sendError(sess *broadcast.Session, code, msg string) {
	ev := model.Event{Name: model.EventError, Data: model.ErrorEvent{Code: code, Message: msg}}
	if err := h.Bus.SendTo(sess.ID, ev); err != nil && !errors.Is(err, broadcast.ErrUnknownSession) {
		h.Log.Errorf("[WebSocket] ❌ Failed to send error to %s: %v", sess.ID, err)
	}
}

func errorCode(err error) string {
	switch {
	case errors.Is(err, chat.ErrInvalidOrdinal):
		return model.CodeInvalidOrdinal
	case errors.Is(err, chat.ErrUnsupportedScope):
		return model.CodeUnsupportedScope
	case errors.Is(err, store.ErrPersistence):
		return model.CodePersistence
	case errors.Is(err, chat.ErrMissingSender), errors.Is(err, chat.ErrEmptyMessage), errors.Is(err, chat.ErrMissingTimestamp):
		return model.CodeBadRequest
	default:
		return model.CodeInternal
	}
}

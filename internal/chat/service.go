// Package chat implements the message lifecycle of the public room: append,
// enrichment, broadcast, history replay and revocation by ordinal position.
//
// Every mutation of a scope runs inside that scope's serialization domain, so
// the snapshot a revoke resolves its ordinal against is exactly the ordering
// every session has been sent. Once an operation is admitted it runs to
// completion even if the caller's context is cancelled.
package chat

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/xjzfwqgf/chat-web/internal/metrics"
	"github.com/xjzfwqgf/chat-web/internal/model"
)

var (
	ErrInvalidOrdinal   = errors.New("invalid ordinal")
	ErrUnsupportedScope = errors.New("unsupported scope")
	ErrMissingSender    = errors.New("sender is required")
	ErrEmptyMessage     = errors.New("message needs text or an attachment")
	ErrMissingTimestamp = errors.New("message time is required")
)

// Service coordinates the store, identity resolver and publisher
type Service struct {
	store    Store
	resolver IdentityResolver
	pub      Publisher
	log      *zap.SugaredLogger

	// scope ごとの排他ドメイン（容量1のセマフォ）
	domains map[model.Scope]chan struct{}
}

func New(store Store, resolver IdentityResolver, pub Publisher, log *zap.SugaredLogger) *Service {
	return &Service{
		store:    store,
		resolver: resolver,
		pub:      pub,
		log:      log,
		domains: map[model.Scope]chan struct{}{
			model.ScopePublic: make(chan struct{}, 1),
		},
	}
}

// enter waits for the scope's serialization domain. Waiting honours ctx;
// the returned context is detached from cancellation.
func (s *Service) enter(ctx context.Context, scope model.Scope) (context.Context, func(), error) {
	sem, ok := s.domains[scope]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedScope, scope)
	}

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
	return context.WithoutCancel(ctx), func() { <-sem }, nil
}

// SendPublic appends a message from sender to the public scope and
// broadcasts it to every session.
func (s *Service) SendPublic(ctx context.Context, sender string, req model.PublicMessageRequest) (model.EnrichedMessage, error) {
	msg := model.Message{
		Scope:      model.ScopePublic,
		Sender:     sender,
		Body:       req.Text,
		Attachment: req.File,
		Timestamp:  req.Time,
	}

	if msg.Sender == "" {
		return model.EnrichedMessage{}, ErrMissingSender
	}
	if msg.Body == "" && msg.Attachment == nil {
		return model.EnrichedMessage{}, ErrEmptyMessage
	}
	if msg.Timestamp == "" {
		return model.EnrichedMessage{}, ErrMissingTimestamp
	}

	ctx, release, err := s.enter(ctx, msg.Scope)
	if err != nil {
		return model.EnrichedMessage{}, err
	}
	defer release()

	seq, err := s.store.Append(ctx, &msg)
	if err != nil {
		s.log.Errorf("[Append] ❌ Store error for %s: %v", sender, err)
		return model.EnrichedMessage{}, err
	}
	metrics.MessagesAppended.Inc()

	enriched := Enrich(msg, s.resolver.ResolveOne(ctx, msg.Sender))

	// 永続化は完了済み。配信の失敗では巻き戻さない
	if err := s.pub.Publish(model.Event{Name: model.EventPublicMessage, Data: enriched}); err != nil {
		s.log.Errorf("[Append] ❌ Broadcast error for seq=%d: %v", seq, err)
	}

	s.log.Infof("[Append] ✅ Appended message seq=%d from %s", seq, sender)
	return enriched, nil
}

// Revoke deletes the message at ordinal in the current ordering of scope and
// broadcasts the same ordinal. Out of range ordinals change nothing and
// broadcast nothing.
func (s *Service) Revoke(ctx context.Context, scope model.Scope, ordinal int) error {
	ctx, release, err := s.enter(ctx, scope)
	if err != nil {
		return err
	}
	defer release()

	snapshot, err := s.store.ListOrdered(ctx, scope)
	if err != nil {
		s.log.Errorf("[Revoke] ❌ Store error listing %s: %v", scope, err)
		return err
	}

	if ordinal < 0 || ordinal >= len(snapshot) {
		metrics.RevokeRejected.Inc()
		s.log.Warnf("[Revoke] ❌ Ordinal %d out of range for %s (len=%d)", ordinal, scope, len(snapshot))
		return fmt.Errorf("%w: %d not in [0,%d)", ErrInvalidOrdinal, ordinal, len(snapshot))
	}

	target := snapshot[ordinal]
	deleted, err := s.store.DeleteBySequenceNumber(ctx, target.SequenceNumber)
	if err != nil {
		s.log.Errorf("[Revoke] ❌ Store error deleting seq=%d: %v", target.SequenceNumber, err)
		return err
	}
	if !deleted {
		// 別経路で既に消えていた。配信しない
		metrics.RevokeRejected.Inc()
		s.log.Warnf("[Revoke] ❌ seq=%d at ordinal %d was already gone", target.SequenceNumber, ordinal)
		return fmt.Errorf("%w: message at %d no longer exists", ErrInvalidOrdinal, ordinal)
	}
	metrics.MessagesRevoked.Inc()

	ev := model.Event{
		Name: model.EventRevokeMessage,
		Data: model.RevokeEvent{Type: scope, Index: ordinal},
	}
	if err := s.pub.Publish(ev); err != nil {
		s.log.Errorf("[Revoke] ❌ Broadcast error for ordinal %d: %v", ordinal, err)
	}

	s.log.Infof("[Revoke] ✅ Revoked seq=%d at ordinal %d in %s", target.SequenceNumber, ordinal, scope)
	return nil
}

// History returns the scope in canonical order, enriched with current
// identities from one batch lookup.
func (s *Service) History(ctx context.Context, scope model.Scope) ([]model.EnrichedMessage, error) {
	if _, ok := s.domains[scope]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScope, scope)
	}

	msgs, err := s.store.ListOrdered(ctx, scope)
	if err != nil {
		return nil, err
	}

	out := make([]model.EnrichedMessage, 0, len(msgs))
	if len(msgs) == 0 {
		return out, nil
	}

	handles := make([]string, len(msgs))
	for i, m := range msgs {
		handles[i] = m.Sender
	}
	ids := s.resolver.ResolveBatch(ctx, handles)

	for _, m := range msgs {
		out = append(out, Enrich(m, ids[m.Sender]))
	}
	return out, nil
}

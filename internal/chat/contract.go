//go:generate mockgen -destination=mock_contract_test.go -package=${GOPACKAGE} -source=contract.go
package chat

import (
	"context"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

type Store interface {
	Append(ctx context.Context, msg *model.Message) (int64, error)
	ListOrdered(ctx context.Context, scope model.Scope) ([]model.Message, error)
	DeleteBySequenceNumber(ctx context.Context, seq int64) (bool, error)
}

type IdentityResolver interface {
	ResolveOne(ctx context.Context, handle string) model.Identity
	ResolveBatch(ctx context.Context, handles []string) map[string]model.Identity
}

type Publisher interface {
	Publish(ev model.Event) error
}

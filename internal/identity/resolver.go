package identity

import (
	"context"

	"go.uber.org/zap"

	"github.com/xjzfwqgf/chat-web/internal/model"
)

// Directory is the user directory lookup. Unknown handles are simply absent
// from the result.
type Directory interface {
	Lookup(ctx context.Context, handles []string) (map[string]model.Identity, error)
}

// Resolver maps handles to display identities. It never fails: unknown
// handles and directory errors fall back to the raw handle with no avatar.
type Resolver struct {
	dir Directory
	log *zap.SugaredLogger
}

func NewResolver(dir Directory, log *zap.SugaredLogger) *Resolver {
	return &Resolver{dir: dir, log: log}
}

// Fallback is the identity used for a handle the directory cannot resolve
func Fallback(handle string) model.Identity {
	return model.Identity{DisplayName: handle}
}

// ResolveOne resolves a single handle
func (r *Resolver) ResolveOne(ctx context.Context, handle string) model.Identity {
	return r.ResolveBatch(ctx, []string{handle})[handle]
}

// ResolveBatch resolves every distinct handle in one directory round trip.
// The result has an entry for each input handle.
func (r *Resolver) ResolveBatch(ctx context.Context, handles []string) map[string]model.Identity {
	seen := make(map[string]struct{}, len(handles))
	unique := make([]string, 0, len(handles))
	for _, h := range handles {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		unique = append(unique, h)
	}

	found, err := r.dir.Lookup(ctx, unique)
	if err != nil {
		r.log.Warnw("identity lookup failed, using fallback identities", "handles", len(unique), "error", err)
		found = nil
	}

	out := make(map[string]model.Identity, len(unique))
	for _, h := range unique {
		id, ok := found[h]
		if !ok {
			id = Fallback(h)
		}
		out[h] = id
	}
	return out
}

package session

import (
	"context"

	"github.com/mshayganfar/starting-ragchatbot-codebase/internal/entity"
)

// Store keeps a bounded window of exchanges per conversation. History of an
// unknown id is empty, never an error, and Append creates the session on
// first use. Implementations must keep each Append atomic per session so
// concurrent writers never interleave partial exchanges.
type Store interface {
	Create(ctx context.Context) (string, error)
	History(ctx context.Context, id string) ([]entity.Exchange, error)
	Append(ctx context.Context, id, query, answer string) error
	Clear(ctx context.Context, id string) error
}

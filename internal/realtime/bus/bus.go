package bus

import (
	"context"

	"github.com/zitaharry/ai-podcast-saas/internal/realtime"
)

// Bus carries SSE messages across API instances, so a workflow activity
// running on one node reaches clients streaming from another.
type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
}

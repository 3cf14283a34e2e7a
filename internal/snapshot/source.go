package snapshot

import (
	"context"

	"github.com/angelmondragon/pulsecheck-backend/internal/detection"
)

// Source assembles the week-over-week metrics snapshot the detection engine
// evaluates. Implementations differ only in where the aggregates come from.
type Source interface {
	Build(ctx context.Context) (detection.MetricsSnapshot, error)
}

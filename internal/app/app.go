package app

import (
	"context"

	"device-core/internal/host"
)

// SigningApp is the per-chain flow capability. Each chain family supplies
// its own validation and fee logic behind this interface while the engine
// owns session sequencing; the device runs exactly one Handle call at a
// time.
type SigningApp interface {
	ID() host.AppID

	// Handle drives one complete flow starting from the already-received
	// initiate query. It owns all further rounds on the link until the
	// flow completes or aborts, and reports the abort cause (nil on
	// success) for logging.
	Handle(ctx context.Context, q *host.Query, link host.Link) error
}

package sheets

import (
	"context"

	"finledger/internal/core"
)

// Ports for outbound adapters.
type (
	// SummaryWriter exports a monthly summary to an external report.
	SummaryWriter interface {
		AppendSummary(ctx context.Context, s core.Summary) (rowRef string, err error)
	}
)

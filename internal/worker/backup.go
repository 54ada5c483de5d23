// Package worker mirrors ledger snapshots to a backup store and exports
// monthly summaries.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finledger/internal/amqp"
	"finledger/internal/core"
	"finledger/internal/ledger"
	"finledger/internal/sheets"
)

// StateStore is the slice of the snapshot store the worker needs.
type StateStore interface {
	LoadState(ctx context.Context) (ledger.State, error)
	SaveState(ctx context.Context, st ledger.State) error
}

// BackupWorker copies the primary snapshot to a backup store whenever a
// ledger change is announced, and appends monthly summaries to an external
// report when a writer is configured.
type BackupWorker struct {
	primary StateStore
	backup  StateStore
	summary sheets.SummaryWriter
}

func NewBackupWorker(primary, backup StateStore, summary sheets.SummaryWriter) *BackupWorker {
	return &BackupWorker{
		primary: primary,
		backup:  backup,
		summary: summary,
	}
}

// HandleChangeMessage processes a single ledger change message from AMQP.
// The message only names what changed; the worker always mirrors the full
// current snapshot, so duplicate or reordered deliveries are harmless.
func (w *BackupWorker) HandleChangeMessage(ctx context.Context, msg *amqp.LedgerChangeMessage) error {
	slog.InfoContext(ctx, "Processing ledger change",
		"collection", msg.Collection,
		"operation", msg.Op,
		"id", msg.ID)

	return w.Mirror(ctx)
}

// StartupBackupCheck mirrors the current snapshot once at worker startup.
// This recovers from missed AMQP messages or worker downtime.
func (w *BackupWorker) StartupBackupCheck(ctx context.Context) error {
	slog.InfoContext(ctx, "Performing startup backup check")
	return w.Mirror(ctx)
}

// Mirror copies the primary snapshot to the backup store.
func (w *BackupWorker) Mirror(ctx context.Context) error {
	st, err := w.primary.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load primary snapshot: %w", err)
	}
	if err := w.backup.SaveState(ctx, st); err != nil {
		return fmt.Errorf("save backup snapshot: %w", err)
	}

	slog.InfoContext(ctx, "Mirrored snapshot to backup",
		"expenses", len(st.Expenses),
		"incomes", len(st.Incomes),
		"employees", len(st.Employees),
		"projects", len(st.Projects))

	return nil
}

// ExportSummary computes the summary for one month from the primary snapshot
// and appends it to the configured report.
func (w *BackupWorker) ExportSummary(ctx context.Context, month core.Month) error {
	if w.summary == nil {
		slog.WarnContext(ctx, "No summary writer configured, skipping export", "month", month)
		return nil
	}
	if _, err := core.ParseMonth(string(month)); err != nil {
		return err
	}

	st, err := w.primary.LoadState(ctx)
	if err != nil {
		return fmt.Errorf("load primary snapshot: %w", err)
	}

	sum := core.Summarize(month, st.Expenses, st.Incomes, st.Employees, st.Projects)
	ref, err := w.summary.AppendSummary(ctx, sum)
	if err != nil {
		return fmt.Errorf("append summary: %w", err)
	}

	slog.InfoContext(ctx, "Exported monthly summary",
		"month", month,
		"row_ref", ref,
		"net_profit_cents", sum.NetProfit.Cents)

	return nil
}

// ExportCurrentMonth exports the summary for the month containing now.
func (w *BackupWorker) ExportCurrentMonth(ctx context.Context, now time.Time) error {
	return w.ExportSummary(ctx, core.Month(now.Format("2006-01")))
}

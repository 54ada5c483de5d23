package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"finledger/internal/core"
	"finledger/internal/ledger"
)

// PaymentService is the client payment ledger. Its three operations are the
// only writers of Project.TotalIncome.
type PaymentService struct {
	store  *ledger.Store
	syncer *Syncer
}

func NewPaymentService(store *ledger.Store, syncer *Syncer) *PaymentService {
	return &PaymentService{store: store, syncer: syncer}
}

// AddPayment records a client payment on a project and returns its id.
func (p *PaymentService) AddPayment(ctx context.Context, projectID string, amount core.Money, date core.Date, status core.PaymentStatus, description string) (string, error) {
	if _, ok := p.store.Project(projectID); !ok {
		return "", fmt.Errorf("project %s: %w", projectID, core.ErrNotFound)
	}
	payment := core.ProjectPayment{
		ID:          uuid.NewString(),
		Date:        date,
		Amount:      amount,
		Status:      status,
		Description: description,
	}
	if err := payment.Validate(); err != nil {
		return "", err
	}
	if err := p.store.AddPayment(projectID, payment); err != nil {
		return "", err
	}

	slog.InfoContext(ctx, "Client payment recorded",
		"project_id", projectID,
		"payment_id", payment.ID,
		"amount_cents", payment.Amount.Cents,
		"status", string(payment.Status))

	p.syncer.AfterChange(ctx, p.store.State(), "projects", "update", projectID)
	return payment.ID, nil
}

// EditPayment replaces a payment's amount, date and status. The income delta
// of the status transition is applied exactly once.
func (p *PaymentService) EditPayment(ctx context.Context, paymentID string, amount core.Money, date core.Date, status core.PaymentStatus) error {
	projectID, _, ok := p.store.FindPayment(paymentID)
	if !ok {
		return fmt.Errorf("payment %s: %w", paymentID, core.ErrNotFound)
	}
	candidate := core.ProjectPayment{ID: paymentID, Date: date, Amount: amount, Status: status}
	if err := candidate.Validate(); err != nil {
		return err
	}
	if err := p.store.EditPayment(paymentID, amount, date, status); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Client payment updated",
		"project_id", projectID,
		"payment_id", paymentID,
		"amount_cents", amount.Cents,
		"status", string(status))

	p.syncer.AfterChange(ctx, p.store.State(), "projects", "update", projectID)
	return nil
}

// DeletePayment removes a payment; a paid payment is debited from the
// project's total first.
func (p *PaymentService) DeletePayment(ctx context.Context, paymentID string) error {
	projectID, _, ok := p.store.FindPayment(paymentID)
	if !ok {
		return fmt.Errorf("payment %s: %w", paymentID, core.ErrNotFound)
	}
	if err := p.store.DeletePayment(paymentID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Client payment deleted",
		"project_id", projectID,
		"payment_id", paymentID)

	p.syncer.AfterChange(ctx, p.store.State(), "projects", "update", projectID)
	return nil
}

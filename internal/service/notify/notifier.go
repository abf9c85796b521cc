package notify

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mamadbah2/mealledger/internal/domain/models"
	"github.com/mamadbah2/mealledger/internal/service/rollup"
	client "github.com/mamadbah2/mealledger/pkg/clients/whatsapp"
)

// Notifier delivers month summaries and reconciliation warnings to organizers.
type Notifier interface {
	SendRollup(ctx context.Context, organizer models.Organizer, r rollup.Rollup) error
	SendWarnings(ctx context.Context, organizer models.Organizer, warnings []models.ReconciliationWarning) error
}

// WhatsAppNotifier sends messages through the WhatsApp Cloud API.
type WhatsAppNotifier struct {
	client client.Client
	logger *zap.Logger
}

// NewWhatsAppNotifier wires a notifier around an API client.
func NewWhatsAppNotifier(c client.Client, logger *zap.Logger) *WhatsAppNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WhatsAppNotifier{client: c, logger: logger}
}

// SendRollup sends the text summary of a month rollup.
func (n *WhatsAppNotifier) SendRollup(ctx context.Context, organizer models.Organizer, r rollup.Rollup) error {
	return n.send(ctx, organizer, rollup.Summary(r, organizer.SchoolName))
}

// SendWarnings sends a list of reconciliation anomalies. Nothing is sent for an empty list.
func (n *WhatsAppNotifier) SendWarnings(ctx context.Context, organizer models.Organizer, warnings []models.ReconciliationWarning) error {
	if len(warnings) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("Stock ledger needs attention:\n")
	for _, w := range warnings {
		b.WriteString("- " + w.String() + "\n")
	}
	return n.send(ctx, organizer, strings.TrimRight(b.String(), "\n"))
}

func (n *WhatsAppNotifier) send(ctx context.Context, organizer models.Organizer, body string) error {
	if organizer.Phone == "" {
		n.logger.Debug("organizer has no phone, skipping notification", zap.String("organizer_id", organizer.ID))
		return nil
	}

	resp, err := n.client.SendTextMessage(ctx, client.SendTextMessageRequest{To: organizer.Phone, Body: body})
	if err != nil {
		return fmt.Errorf("notify organizer %s: %w", organizer.ID, err)
	}

	messageID := ""
	if resp != nil && len(resp.Messages) > 0 {
		messageID = resp.Messages[0].ID
	}
	n.logger.Info("organizer notified", zap.String("organizer_id", organizer.ID), zap.String("message_id", messageID))
	return nil
}

// Nop discards notifications. It is used when WhatsApp is not configured.
type Nop struct{}

// SendRollup does nothing.
func (Nop) SendRollup(context.Context, models.Organizer, rollup.Rollup) error { return nil }

// SendWarnings does nothing.
func (Nop) SendWarnings(context.Context, models.Organizer, []models.ReconciliationWarning) error {
	return nil
}

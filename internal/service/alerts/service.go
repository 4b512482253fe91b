package alerts

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/stockdesk/internal/domain/models"
	client "github.com/mamadbah2/stockdesk/pkg/clients/whatsapp"
)

// ErrNoRecipient is returned when a message has nobody to go to.
var ErrNoRecipient = errors.New("alert recipient is not configured")

// MessageBuilder formats the low-stock text for a snapshot.
type MessageBuilder interface {
	LowStockMessage(snap models.Snapshot) (string, bool)
}

// Service pushes stock alerts to staff phones.
type Service struct {
	client    client.Client
	recipient string
	builder   MessageBuilder
	logger    *zap.Logger
}

// NewService wires a new alert service instance.
func NewService(c client.Client, recipient string, builder MessageBuilder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{client: c, recipient: recipient, builder: builder, logger: logger}
}

// SendOutbound delivers a free-form message. An empty To falls back to the default recipient.
func (s *Service) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	to := req.To
	if to == "" {
		to = s.recipient
	}
	if to == "" {
		return ErrNoRecipient
	}

	id, err := s.client.SendText(ctx, to, req.Message)
	if err != nil {
		return fmt.Errorf("send alert: %w", err)
	}

	s.logger.Info("alert sent", zap.String("to", to), zap.String("message_id", id))
	return nil
}

// SendLowStockAlert notifies the default recipient about items to reorder.
// It reports false without sending when nothing is low.
func (s *Service) SendLowStockAlert(ctx context.Context, snap models.Snapshot) (bool, error) {
	message, ok := s.builder.LowStockMessage(snap)
	if !ok {
		s.logger.Debug("no low stock items, alert skipped")
		return false, nil
	}

	if err := s.SendOutbound(ctx, models.OutboundMessageRequest{Message: message}); err != nil {
		return false, err
	}
	return true, nil
}

package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/application/usecase"
	"github.com/finbank/lending-core/internal/domain/valueobject"
	"github.com/finbank/lending-core/pkg/kafka"
)

const (
	eventTransferSettled = "payments.transfer.settled"
	eventTransferFailed  = "payments.transfer.failed"
	eventInstallmentPaid = "payments.installment.paid"
)

// paymentEnvelope is the wire shape of messages on the payments topic. The
// payload is decoded per event type.
type paymentEnvelope struct {
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// PaymentEventConsumer dispatches inbound payments-system events to the
// lifecycle use cases: funds-transfer outcomes confirm disbursements,
// installment payments settle schedule entries.
type PaymentEventConsumer struct {
	consumer *kafka.Consumer
	disburse *usecase.ConfirmDisbursementUseCase
	payment  *usecase.ApplyPaymentUseCase
	logger   *slog.Logger
}

// NewPaymentEventConsumer wires a consumer on the given topic.
func NewPaymentEventConsumer(
	cfg kafka.Config,
	topic string,
	disburse *usecase.ConfirmDisbursementUseCase,
	payment *usecase.ApplyPaymentUseCase,
	logger *slog.Logger,
) *PaymentEventConsumer {
	c := &PaymentEventConsumer{
		disburse: disburse,
		payment:  payment,
		logger:   logger,
	}
	c.consumer = kafka.NewConsumer(cfg, topic, c.handle, logger)
	return c
}

// Start consumes until the context is canceled.
func (c *PaymentEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close closes the underlying reader.
func (c *PaymentEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *PaymentEventConsumer) handle(ctx context.Context, msg kafka.Message) error {
	var env paymentEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		// Malformed messages are logged and committed; redelivery cannot fix them.
		c.logger.Error("discarding malformed payment event", "error", err)
		return nil
	}

	var err error
	switch env.EventType {
	case eventTransferSettled, eventTransferFailed:
		err = c.handleTransfer(ctx, env)
	case eventInstallmentPaid:
		err = c.handleInstallment(ctx, env)
	default:
		c.logger.Debug("ignoring payment event", "event_type", env.EventType)
		return nil
	}

	// Domain rejections are terminal for the message; retrying yields the
	// same outcome. Infrastructure errors propagate for redelivery.
	if err != nil && !retryable(err) {
		c.logger.Warn("payment event rejected",
			"event_type", env.EventType,
			"error", err,
		)
		return nil
	}
	return err
}

func (c *PaymentEventConsumer) handleTransfer(ctx context.Context, env paymentEnvelope) error {
	var req dto.ConfirmDisbursementRequest
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		return fmt.Errorf("%w: decode transfer payload: %v", valueobject.ErrValidation, err)
	}
	req.Success = env.EventType == eventTransferSettled
	_, err := c.disburse.Execute(ctx, req)
	return err
}

func (c *PaymentEventConsumer) handleInstallment(ctx context.Context, env paymentEnvelope) error {
	var req dto.ApplyPaymentRequest
	if err := json.Unmarshal(env.Payload, &req); err != nil {
		return fmt.Errorf("%w: decode installment payload: %v", valueobject.ErrValidation, err)
	}
	_, err := c.payment.Execute(ctx, req)
	return err
}

// retryable reports whether redelivering the message could succeed.
func retryable(err error) bool {
	switch {
	case errors.Is(err, valueobject.ErrValidation),
		errors.Is(err, valueobject.ErrPolicyViolation),
		errors.Is(err, valueobject.ErrNotFound):
		return false
	case errors.Is(err, valueobject.ErrStateConflict):
		// A concurrent writer may have finished; the retry re-reads state.
		return true
	default:
		return true
	}
}

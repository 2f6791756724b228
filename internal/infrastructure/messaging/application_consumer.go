package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/finbank/lending-core/internal/application/dto"
	"github.com/finbank/lending-core/internal/application/usecase"
	"github.com/finbank/lending-core/pkg/kafka"
)

// ApplicationConsumer feeds loan applications from the intake topic into the
// scoring and decision pipeline. The gateway publishes one message per
// submitted application.
type ApplicationConsumer struct {
	consumer *kafka.Consumer
	submit   *usecase.SubmitApplicationUseCase
	logger   *slog.Logger
}

// NewApplicationConsumer wires a consumer on the given topic.
func NewApplicationConsumer(
	cfg kafka.Config,
	topic string,
	submit *usecase.SubmitApplicationUseCase,
	logger *slog.Logger,
) *ApplicationConsumer {
	c := &ApplicationConsumer{
		submit: submit,
		logger: logger,
	}
	c.consumer = kafka.NewConsumer(cfg, topic, c.handle, logger)
	return c
}

// Start consumes until the context is canceled.
func (c *ApplicationConsumer) Start(ctx context.Context) error {
	return c.consumer.Start(ctx)
}

// Close closes the underlying reader.
func (c *ApplicationConsumer) Close() error {
	return c.consumer.Close()
}

func (c *ApplicationConsumer) handle(ctx context.Context, msg kafka.Message) error {
	var req dto.SubmitApplicationRequest
	if err := json.Unmarshal(msg.Value, &req); err != nil {
		c.logger.Error("discarding malformed application", "error", err)
		return nil
	}

	resp, err := c.submit.Execute(ctx, req)
	if err != nil {
		if !retryable(err) {
			// Invalid or ineligible applications are final; the decision is
			// already published as a domain event where applicable.
			c.logger.Warn("application rejected",
				"applicant_id", req.ApplicantID,
				"error", err,
			)
			return nil
		}
		return err
	}

	c.logger.Info("application processed",
		"loan_id", resp.Loan.ID,
		"decision", resp.Decision,
		"score", resp.Score,
	)
	return nil
}

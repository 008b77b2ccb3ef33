package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"golang.org/x/time/rate"
)

// EmailSender dispatches one plain-text email to one address.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) Result
}

// EmailConfig holds the transport settings for outgoing mail.
// Constructed once at startup and passed in explicitly.
type EmailConfig struct {
	APIKey string
	From   string
}

// SendGridSender sends plain-text email through SendGrid.
type SendGridSender struct {
	client  *sendgrid.Client
	from    string
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// NewSendGridSender builds a sender from the given transport config.
func NewSendGridSender(cfg EmailConfig, limiter *rate.Limiter, logger *zerolog.Logger) *SendGridSender {
	return &SendGridSender{
		client:  sendgrid.NewSendClient(cfg.APIKey),
		from:    cfg.From,
		limiter: limiter,
		logger:  logger,
	}
}

// SendEmail sends a plain-text email to the given address. An empty
// address is a silent no-op; transport failures are logged and reported
// in the Result, never returned as errors.
func (s *SendGridSender) SendEmail(ctx context.Context, to, subject, body string) Result {
	if to == "" {
		return skipped()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return failed(err)
		}
	}

	if err := s.send(ctx, to, subject, body); err != nil {
		s.logger.Error().Err(err).Str("subject", subject).Msg("SendGrid send failed")
		return failed(err)
	}
	return sent()
}

// SendTestEmail sends one message and surfaces the transport error
// directly. Used by the diagnostic endpoint, where the caller wants the
// failure, not a swallowed outcome.
func (s *SendGridSender) SendTestEmail(ctx context.Context, to string) error {
	return s.send(ctx, to, "Test Email from WordPair", "If you see this, SendGrid is working!")
}

func (s *SendGridSender) send(ctx context.Context, to, subject, body string) error {
	from := mail.NewEmail("", s.from)
	dest := mail.NewEmail("", to)
	msg := mail.NewSingleEmailPlainText(from, subject, dest, body)

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// PushSender dispatches one push notification to one device token.
type PushSender interface {
	SendPush(ctx context.Context, token, title, body string) Result
}

// FCMSender sends push notifications through Firebase Cloud Messaging.
type FCMSender struct {
	client  *messaging.Client
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

// NewFCMSender builds a messaging client from a service account
// credentials file.
func NewFCMSender(ctx context.Context, credentialsPath string, limiter *rate.Limiter, logger *zerolog.Logger) (*FCMSender, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init messaging client: %w", err)
	}
	return &FCMSender{client: client, limiter: limiter, logger: logger}, nil
}

// SendPush sends a notification to the given token. An empty token is a
// silent no-op; transport failures are logged and reported in the Result,
// never returned as errors.
func (s *FCMSender) SendPush(ctx context.Context, token, title, body string) Result {
	if token == "" {
		return skipped()
	}

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return failed(err)
		}
	}

	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Token: token,
	}

	id, err := s.client.Send(ctx, msg)
	if err != nil {
		s.logger.Error().Err(err).Str("title", title).Msg("FCM send failed")
		return failed(err)
	}

	s.logger.Debug().Str("message_id", id).Msg("push sent")
	return sent()
}

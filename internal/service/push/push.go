package push

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"

	"hirelink/internal/domain"
)

// ErrUnregistered reports that the provider no longer accepts the device token.
var ErrUnregistered = errors.New("device token unregistered")

// Sender delivers one push message to one device token.
type Sender interface {
	Send(ctx context.Context, token, title, body string, data map[string]string) error
}

// DeliveryError is returned once a push has been dropped after exhausting its
// attempts. It matches domain.ErrDelivery.
type DeliveryError struct {
	Attempts int
	Err      error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("push dropped after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *DeliveryError) Unwrap() []error {
	return []error{domain.ErrDelivery, e.Err}
}

type messagingClient interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender sends through Firebase Cloud Messaging.
type FCMSender struct {
	client messagingClient
}

func NewFCMSender(client *messaging.Client) *FCMSender {
	return &FCMSender{client: client}
}

func (s *FCMSender) Send(ctx context.Context, token, title, body string, data map[string]string) error {
	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	if _, err := s.client.Send(ctx, msg); err != nil {
		if messaging.IsUnregistered(err) {
			return fmt.Errorf("%w: %v", ErrUnregistered, err)
		}
		return err
	}
	return nil
}

// LogSender only logs. It stands in when no push provider is configured.
type LogSender struct {
	log logrus.FieldLogger
}

func NewLogSender(log logrus.FieldLogger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, token, title, body string, _ map[string]string) error {
	s.log.WithFields(logrus.Fields{
		"token_suffix": tokenSuffix(token),
		"title":        title,
	}).Debug("push disabled, dropping message: " + body)
	return nil
}

func tokenSuffix(token string) string {
	if len(token) <= 6 {
		return token
	}
	return token[len(token)-6:]
}

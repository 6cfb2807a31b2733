// Package push delivers notifications to mobile and web devices through
// Firebase Cloud Messaging.
package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/example/attendance-tracker/internal/logging"
)

// MaxTokensPerBatch is the FCM limit for one multicast request.
const MaxTokensPerBatch = 500

// ErrNoCredentials indicates FCM was requested without a credentials file.
var ErrNoCredentials = errors.New("push: credentials file not configured")

// Message is a notification addressed to device registration tokens.
type Message struct {
	Title  string
	Body   string
	Tokens []string
	Data   map[string]string
}

// Report summarizes a delivery. Unregistered lists tokens FCM no longer
// recognizes; callers should forget them.
type Report struct {
	Success      int
	Failure      int
	Unregistered []string
}

// Sender delivers push messages.
type Sender interface {
	Send(ctx context.Context, msg Message) (Report, error)
}

// multicastClient is the subset of *messaging.Client used by FCMSender.
type multicastClient interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// FCMSender sends push messages through Firebase Cloud Messaging.
type FCMSender struct {
	client       multicastClient
	unregistered func(error) bool
	logger       *slog.Logger
}

// NewFCMSender initializes a Firebase app from a service account file and
// returns a sender backed by its messaging client.
func NewFCMSender(ctx context.Context, credentialsFile string, logger *slog.Logger) (*FCMSender, error) {
	if credentialsFile == "" {
		return nil, ErrNoCredentials
	}
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase messaging: %w", err)
	}
	return newFCMSender(client, logger), nil
}

func newFCMSender(client multicastClient, logger *slog.Logger) *FCMSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &FCMSender{client: client, unregistered: messaging.IsUnregistered, logger: logger}
}

// Send delivers msg in batches of MaxTokensPerBatch. A batch that fails as a
// whole counts every token in it as a failure; the remaining batches are still sent.
// The report is filled in even when an error is returned, so Unregistered
// always lists the stale tokens seen in batches that did get a response.
func (s *FCMSender) Send(ctx context.Context, msg Message) (Report, error) {
	var report Report
	if len(msg.Tokens) == 0 {
		return report, nil
	}
	logger := logging.Component(ctx, s.logger, "push", "FCMSender", "Send", "tokens", len(msg.Tokens))

	var firstErr error
	for start := 0; start < len(msg.Tokens); start += MaxTokensPerBatch {
		end := start + MaxTokensPerBatch
		if end > len(msg.Tokens) {
			end = len(msg.Tokens)
		}
		batch := msg.Tokens[start:end]

		resp, err := s.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       batch,
			Data:         msg.Data,
			Notification: &messaging.Notification{Title: msg.Title, Body: msg.Body},
		})
		if err != nil {
			report.Failure += len(batch)
			if firstErr == nil {
				firstErr = err
			}
			logger.WarnContext(ctx, "multicast batch failed", "batch_size", len(batch), "error", err)
			continue
		}

		report.Success += resp.SuccessCount
		report.Failure += resp.FailureCount
		for i, r := range resp.Responses {
			if r == nil || r.Success || i >= len(batch) {
				continue
			}
			if s.unregistered(r.Error) {
				report.Unregistered = append(report.Unregistered, batch[i])
			}
		}
	}

	if firstErr != nil && report.Success == 0 {
		return report, firstErr
	}
	logger.DebugContext(ctx, "push delivered", "success", report.Success, "failure", report.Failure)
	return report, nil
}

// Disabled is a Sender used when push credentials are not configured.
type Disabled struct{}

// Send reports nothing delivered and never fails.
func (Disabled) Send(ctx context.Context, msg Message) (Report, error) {
	return Report{}, nil
}

// Package notify delivers operator notifications about pipeline runs. The
// sink is an external collaborator: delivery failure never changes the
// outcome of a run.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Severities used by the pipeline.
const (
	SeverityInfo    = "info"
	SeveritySuccess = "success"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// Event is one notification payload.
type Event struct {
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Severity  string            `json:"severity"`
	EventType string            `json:"event_type"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Notifier is the narrow port the pipeline talks to.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// LogNotifier is the fallback when no sink is configured: events go to the
// log and nothing else.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event Event) error {
	n.logger.Info("notification (no sink configured)",
		zap.String("title", event.Title),
		zap.String("severity", event.Severity),
		zap.String("event_type", event.EventType),
		zap.String("body", event.Body),
	)
	return nil
}

// WebhookNotifier posts events to an HTTP sink.
type WebhookNotifier struct {
	url     string
	project string
	client  *http.Client
	logger  *zap.Logger
}

func NewWebhookNotifier(url, project string, logger *zap.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		project: project,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, event Event) error {
	payload := struct {
		Project string `json:"project"`
		Event
	}{Project: n.project, Event: event}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification sink returned %s", resp.Status)
	}

	n.logger.Debug("notification delivered", zap.String("title", event.Title))
	return nil
}

// New picks the webhook sink when a URL is configured, otherwise the log
// fallback.
func New(webhookURL, project string, logger *zap.Logger) Notifier {
	if webhookURL == "" {
		return NewLogNotifier(logger)
	}
	return NewWebhookNotifier(webhookURL, project, logger)
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/house-doorbell/internal/application"
)

// UserSource resolves recipients to their registered push tokens.
type UserSource interface {
	GetUser(ctx context.Context, id string) (application.User, error)
}

// PushSink forwards notifications to an external push gateway. Recipients without
// registered tokens are silently skipped.
type PushSink struct {
	gatewayURL string
	users      UserSource
	client     *http.Client
	logger     *slog.Logger
}

// NewPushSink creates a sink posting to the given gateway URL.
func NewPushSink(gatewayURL string, users UserSource, client *http.Client, logger *slog.Logger) *PushSink {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PushSink{gatewayURL: gatewayURL, users: users, client: client, logger: logger}
}

type pushRequest struct {
	Tokens   []string `json:"tokens"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Category string   `json:"category"`
}

// Send implements application.NotificationSink.
func (s *PushSink) Send(ctx context.Context, note application.Notification) error {
	tokens := s.collectTokens(ctx, note.RecipientIDs)
	if len(tokens) == 0 {
		return nil
	}

	body, err := json.Marshal(pushRequest{
		Tokens:   tokens,
		Title:    note.Title,
		Message:  note.Message,
		Category: string(note.Category),
	})
	if err != nil {
		return fmt.Errorf("encoding push request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("building push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting push notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push gateway responded with status %d", resp.StatusCode)
	}
	return nil
}

func (s *PushSink) collectTokens(ctx context.Context, recipientIDs []string) []string {
	var tokens []string
	for _, id := range recipientIDs {
		user, err := s.users.GetUser(ctx, id)
		if err != nil {
			s.logger.Warn("skipping push recipient", "user_id", id, "error", err)
			continue
		}
		tokens = append(tokens, user.PushIDs...)
	}
	return tokens
}

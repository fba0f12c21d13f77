package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/slack-go/slack"

	"github.com/ymonitor/ymonitor/internal/model"
)

// SlackAdapter posts a colored attachment to a Slack incoming webhook.
// slack-go/slack is one of the teacher pack's own dependencies, reused
// here directly rather than hand-rolling the webhook JSON shape.
//
// Transport.Config keys: webhook_url.
type SlackAdapter struct{}

func (a *SlackAdapter) Send(ctx context.Context, transport model.Transport, payload Payload) error {
	webhookURL, _ := transport.Config["webhook_url"].(string)
	if webhookURL == "" {
		return fmt.Errorf("slack transport %s: missing config.webhook_url", transport.ID)
	}

	msg := &slack.WebhookMessage{
		Attachments: []slack.Attachment{
			{
				Color: severityColor(payload.Severity),
				Title: payload.Title,
				Text:  payload.Message,
				Fields: []slack.AttachmentField{
					{Title: "Severity", Value: string(payload.Severity), Short: true},
					{Title: "Device", Value: payload.DeviceID, Short: true},
					{Title: "Timestamp", Value: payload.Timestamp.Format(time.RFC3339), Short: true},
				},
			},
		},
	}
	return slack.PostWebhookContext(ctx, webhookURL, msg)
}

func severityColor(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical:
		return "#FF0000"
	case model.SeverityWarning:
		return "#FFA500"
	case model.SeverityInfo:
		return "#0080FF"
	case model.SeverityOK:
		return "#00FF00"
	default:
		return "#808080"
	}
}

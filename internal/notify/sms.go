package notify

import (
	"context"

	"github.com/ymonitor/ymonitor/internal/logging"
	"github.com/ymonitor/ymonitor/internal/model"
)

// SMSAdapter is provider-neutral: the adapter receives
// {recipients[], text} and no SMS gateway is wired in, so this logs
// the would-be send and reports success, leaving a real provider
// integration (Twilio, SNS, etc.) as a drop-in replacement behind the
// same Adapter interface.
type SMSAdapter struct{}

func (a *SMSAdapter) Send(ctx context.Context, transport model.Transport, payload Payload) error {
	recipients := stringSlice(transport.Config["recipients"])
	logging.L("notify.sms").Info("sms notification (no provider configured, logging only)",
		"transport_id", transport.ID,
		"recipients", recipients,
		"alert_id", payload.AlertID,
		"text", payload.Title+": "+payload.Message,
	)
	return nil
}

package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

// TelegramAdapter posts a Markdown message to the Bot API's
// sendMessage endpoint. No example repo or ecosystem library in the
// pack wraps the Telegram Bot API; the wire contract is one
// stdlib-only HTTP POST with form-encoded parameters — justified in
// DESIGN.md.
//
// Transport.Config keys: bot_token, chat_id.
type TelegramAdapter struct {
	Client *http.Client
}

func severityEmoji(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical:
		return "\U0001F534" // red circle
	case model.SeverityWarning:
		return "\U0001F7E0" // orange circle
	case model.SeverityInfo:
		return "\U0001F535" // blue circle
	case model.SeverityOK:
		return "\U0001F7E2" // green circle
	default:
		return ""
	}
}

func (a *TelegramAdapter) Send(ctx context.Context, transport model.Transport, payload Payload) error {
	token, _ := transport.Config["bot_token"].(string)
	chatID, _ := transport.Config["chat_id"].(string)
	if token == "" || chatID == "" {
		return fmt.Errorf("telegram transport %s: missing config.bot_token or config.chat_id", transport.ID)
	}

	text := fmt.Sprintf("%s *%s*\n%s", severityEmoji(payload.Severity), payload.Title, payload.Message)
	form := url.Values{
		"chat_id":    []string{chatID},
		"text":       []string{text},
		"parse_mode": []string{"Markdown"},
	}

	endpoint := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("telegram transport %s: bot API returned status %d", transport.ID, resp.StatusCode)
	}
	return nil
}

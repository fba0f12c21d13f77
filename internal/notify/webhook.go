package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ymonitor/ymonitor/internal/httputil"
	"github.com/ymonitor/ymonitor/internal/model"
)

// WebhookAdapter delivers a generic HTTP callback, reusing the teacher's
// internal/httputil.Do retry helper unmodified.
//
// Transport.Config keys: url, method (default POST), body (optional
// Go-template-ish string interpolated with {{key}} placeholders; falls
// back to a JSON {alert, device, metadata} envelope when absent).
type WebhookAdapter struct {
	Client *http.Client
}

func (a *WebhookAdapter) Send(ctx context.Context, transport model.Transport, payload Payload) error {
	url, _ := transport.Config["url"].(string)
	if url == "" {
		return fmt.Errorf("webhook transport %s: missing config.url", transport.ID)
	}
	method, _ := transport.Config["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	var body []byte
	if tmpl, ok := transport.Config["body"].(string); ok && tmpl != "" {
		body = []byte(renderWebhookBody(tmpl, payload))
	} else {
		envelope := map[string]any{
			"alert": map[string]any{
				"id":          payload.AlertID,
				"title":       payload.Title,
				"message":     payload.Message,
				"severity":    payload.Severity,
				"state":       payload.State,
				"occurrences": payload.Occurrences,
				"timestamp":   payload.Timestamp,
			},
			"device":   map[string]any{"id": payload.DeviceID},
			"metadata": payload.Details,
		}
		encoded, err := json.Marshal(envelope)
		if err != nil {
			return err
		}
		body = encoded
	}

	headers := http.Header{
		"Content-Type": []string{"application/json"},
		"User-Agent":   []string{"Y-Monitor/1.0"},
		"X-YM-Alert-Id": []string{payload.AlertID},
	}
	if extra, ok := transport.Config["headers"].(map[string]any); ok {
		for k, v := range extra {
			if s, ok := v.(string); ok {
				headers.Set(k, s)
			}
		}
	}

	client := a.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	resp, err := httputil.Do(ctx, client, method, url, body, headers, httputil.DefaultRetryConfig())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook transport %s: server returned status %d", transport.ID, resp.StatusCode)
	}
	return nil
}

func renderWebhookBody(tmpl string, payload Payload) string {
	replacer := strings.NewReplacer(
		"{{id}}", payload.AlertID,
		"{{title}}", payload.Title,
		"{{message}}", payload.Message,
		"{{severity}}", string(payload.Severity),
		"{{state}}", string(payload.State),
		"{{device_id}}", payload.DeviceID,
	)
	return replacer.Replace(tmpl)
}

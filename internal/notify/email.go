package notify

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

// EmailAdapter sends an RFC-5322 message via net/smtp. No example repo
// or ecosystem library in the retrieval pack wraps SMTP delivery more
// idiomatically than the standard library's own net/smtp — justified in
// DESIGN.md.
//
// Transport.Config keys: host, port, username, password, from, to[]
// ([]any of string addresses).
type EmailAdapter struct{}

func (a *EmailAdapter) Send(ctx context.Context, transport model.Transport, payload Payload) error {
	host, _ := transport.Config["host"].(string)
	if host == "" {
		return fmt.Errorf("email transport %s: missing config.host", transport.ID)
	}
	port, _ := transport.Config["port"].(float64)
	if port == 0 {
		port = 587
	}
	from, _ := transport.Config["from"].(string)
	to := stringSlice(transport.Config["to"])
	if len(to) == 0 {
		return fmt.Errorf("email transport %s: missing config.to", transport.ID)
	}

	var auth smtp.Auth
	if username, ok := transport.Config["username"].(string); ok && username != "" {
		password, _ := transport.Config["password"].(string)
		auth = smtp.PlainAuth("", username, password, host)
	}

	msg := buildMIMEMessage(from, to, payload)
	addr := fmt.Sprintf("%s:%d", host, int(port))
	return smtp.SendMail(addr, auth, from, to, msg)
}

func buildMIMEMessage(from string, to []string, payload Payload) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(to, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", payload.Title)
	fmt.Fprintf(&b, "Date: %s\r\n", payload.Timestamp.Format(time.RFC1123Z))
	fmt.Fprintf(&b, "X-YM-Alert-Id: %s\r\n", payload.AlertID)
	fmt.Fprintf(&b, "X-YM-Severity: %s\r\n", payload.Severity)
	fmt.Fprintf(&b, "X-YM-Device: %s\r\n", payload.DeviceID)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(payload.Message)
	return []byte(b.String())
}

func stringSlice(v any) []string {
	list, ok := v.([]any)
	if !ok {
		if s, ok := v.(string); ok {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ymonitor/ymonitor/internal/model"
)

// TeamsAdapter posts a MessageCard to a Microsoft Teams incoming
// webhook. No example repo or ecosystem library wraps the MessageCard
// schema; it is a small fixed JSON shape sent with a plain stdlib HTTP
// POST — justified in DESIGN.md.
//
// Transport.Config keys: webhook_url_teams.
type TeamsAdapter struct {
	Client *http.Client
}

type teamsMessageCard struct {
	Type       string             `json:"@type"`
	Context    string             `json:"@context"`
	ThemeColor string             `json:"themeColor"`
	Summary    string             `json:"summary"`
	Title      string             `json:"title"`
	Text       string             `json:"text"`
	Sections   []teamsCardSection `json:"sections,omitempty"`
}

type teamsCardSection struct {
	Facts []teamsCardFact `json:"facts"`
}

type teamsCardFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func teamsThemeColor(sev model.Severity) string {
	switch sev {
	case model.SeverityCritical:
		return "attention"
	case model.SeverityWarning:
		return "warning"
	case model.SeverityInfo:
		return "accent"
	case model.SeverityOK:
		return "good"
	default:
		return "accent"
	}
}

func (a *TeamsAdapter) Send(ctx context.Context, transport model.Transport, payload Payload) error {
	webhookURL, _ := transport.Config["webhook_url_teams"].(string)
	if webhookURL == "" {
		return fmt.Errorf("teams transport %s: missing config.webhook_url_teams", transport.ID)
	}

	card := teamsMessageCard{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		ThemeColor: teamsThemeColor(payload.Severity),
		Summary:    payload.Title,
		Title:      payload.Title,
		Text:       payload.Message,
		Sections: []teamsCardSection{{
			Facts: []teamsCardFact{
				{Name: "Severity", Value: string(payload.Severity)},
				{Name: "Device", Value: payload.DeviceID},
				{Name: "Timestamp", Value: payload.Timestamp.Format(time.RFC3339)},
			},
		}},
	}

	body, err := json.Marshal(card)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

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
		return fmt.Errorf("teams transport %s: webhook returned status %d", transport.ID, resp.StatusCode)
	}
	return nil
}

package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/cogitia/cogitia/util"
)

type SlackNotifier struct {
	SlackWebhookURL string
	Client          *http.Client
}

func NewSlackNotifier(webhookURL string) *SlackNotifier {
	return &SlackNotifier{
		SlackWebhookURL: webhookURL,
		Client:          util.RobustHTTPClient(),
	}
}

func (n *SlackNotifier) SendDecision(ctx context.Context, msg Message, author Author, dec *Decision) error {
	return n.sendSlackMsg(ctx, slackBody(msg, author, dec))
}

type SlackWebhookBody struct {
	Text string `json:"text"`
}

// Sends a simple slack message to a channel via "incoming webhook".
//
// The slack incoming webhook must be already configured in the slack workplace.
func (n *SlackNotifier) sendSlackMsg(ctx context.Context, msg string) error {
	body, err := json.Marshal(SlackWebhookBody{Text: msg})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.SlackWebhookURL, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Add("Content-Type", "application/json")
	client := n.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}

	defer resp.Body.Close()

	buf := new(bytes.Buffer)
	buf.ReadFrom(resp.Body)
	if resp.StatusCode != 200 || buf.String() != "ok" {
		return fmt.Errorf("failed slack webhook POST request. status=%d", resp.StatusCode)
	}
	return nil
}

func slackBody(msg Message, author Author, dec *Decision) string {
	header := "⚠️ Moderation Review Needed ⚠️\n"
	if dec.AutoSanction {
		header = "⚠️ Automatic Sanction ⚠️\n"
	}
	out := header
	out += fmt.Sprintf("guild `%s` / channel `%s` / user `%s` (%s)\n", msg.GuildID, msg.ChannelID, author.UserID, author.Username)
	out += fmt.Sprintf("Score: `%.2f` (adjusted), prior infractions: %d\n", dec.AdjustedScore, dec.PriorInfractions)
	if len(dec.Categories) > 0 {
		names := make([]string, len(dec.Categories))
		for i, c := range dec.Categories {
			names[i] = c.String()
		}
		out += fmt.Sprintf("Categories: `%s`\n", strings.Join(names, ", "))
	}
	if dec.Sanction != nil {
		out += fmt.Sprintf("Sanction: `%s`\n", dec.Sanction)
	}
	if dec.LastSanction != nil {
		out += fmt.Sprintf("Previous sanction: `%s`\n", dec.LastSanction)
	}
	if dec.LogID != "" {
		out += fmt.Sprintf("Log: `%s`\n", dec.LogID)
	}
	return out
}

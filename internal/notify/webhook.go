package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/yairfalse/driftscan/internal/errors"
	"github.com/yairfalse/driftscan/pkg/types"
)

const (
	defaultUsername = "IaC Drift Detector"

	// maxDetailLines caps how many findings the message spells out before
	// collapsing the rest into a count.
	maxDetailLines = 5
)

// Payload is the Slack-compatible webhook body
type Payload struct {
	Text      string `json:"text"`
	Username  string `json:"username"`
	IconEmoji string `json:"icon_emoji"`
}

// WebhookNotifier posts drift reports to a Slack-compatible webhook.
// An empty URL makes every call a no-op.
type WebhookNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookNotifier creates a notifier for the given webhook URL
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether a webhook URL is configured
func (n *WebhookNotifier) Enabled() bool {
	return n.url != ""
}

// Notify posts the report summary to the webhook
func (n *WebhookNotifier) Notify(ctx context.Context, report types.Report) error {
	if n.url == "" {
		return nil
	}

	icon := ":white_check_mark:"
	if report.DriftDetected {
		icon = ":warning:"
	}

	payload := Payload{
		Text:      FormatMessage(report),
		Username:  defaultUsername,
		IconEmoji: icon,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.WebhookError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.WebhookError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.WebhookError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.WebhookError(fmt.Errorf("webhook returned error status: %d", resp.StatusCode))
	}

	return nil
}

// FormatMessage renders the report as the webhook message text
func FormatMessage(report types.Report) string {
	var sb strings.Builder

	if report.DriftDetected {
		fmt.Fprintf(&sb, "🚨 *IaC Drift Detected* - %s\n\n", strings.ToUpper(report.Environment))
		sb.WriteString("**Summary:**\n")
		fmt.Fprintf(&sb, "• Total Issues: %d\n", report.Summary.TotalIssues)
		fmt.Fprintf(&sb, "• High Severity: %d\n", report.Summary.HighSeverity)
		fmt.Fprintf(&sb, "• Medium Severity: %d\n\n", report.Summary.MediumSeverity)

		for i, finding := range report.DriftDetails {
			if i == maxDetailLines {
				fmt.Fprintf(&sb, "... and %d more issues\n", len(report.DriftDetails)-maxDetailLines)
				break
			}
			fmt.Fprintf(&sb, "%s %s\n", severityEmoji(finding.Severity), finding.Message)
		}
	} else {
		fmt.Fprintf(&sb, "✅ *No Drift Detected* - %s\n\n", strings.ToUpper(report.Environment))
		sb.WriteString("Infrastructure is in sync with desired state.")
	}

	fmt.Fprintf(&sb, "\nTimestamp: %s", report.Timestamp.Format(time.RFC3339))

	return sb.String()
}

func severityEmoji(severity types.Severity) string {
	switch severity {
	case types.SeverityHigh:
		return "🔴"
	case types.SeverityMedium:
		return "🟡"
	case types.SeverityLow:
		return "🟢"
	default:
		return "⚪"
	}
}

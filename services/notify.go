package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/agroreq/export-requirements-backend/config"
	"github.com/agroreq/export-requirements-backend/models"
)

// ResendEmailRequest represents the request payload for the Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from the Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from the Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// NotifyFeedback emails the configured admin addresses about a newly
// submitted suggestion. Best-effort: callers log the returned error and
// move on, a notification failure never fails the submission.
//
// Requires in the environment:
//   - RESEND_API_KEY
//   - RESEND_FROM_EMAIL
//   - ADMIN_NOTIFY_EMAILS: comma-separated recipient list
func NotifyFeedback(cfg map[string]string, feedback models.Feedback, submitter models.Profile) error {
	recipients := strings.Split(config.GetString(cfg, "ADMIN_NOTIFY_EMAILS", ""), ",")
	var to []string
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, r)
		}
	}
	if len(to) == 0 {
		log.Debug().Msg("ADMIN_NOTIFY_EMAILS not set, skipping feedback notification")
		return nil
	}

	subject := fmt.Sprintf("New suggestion from %s", submitter.FullName)
	body := fmt.Sprintf(
		"<p><strong>%s</strong> (%s) submitted a suggestion:</p><blockquote>%s</blockquote>",
		html.EscapeString(submitter.FullName),
		html.EscapeString(submitter.Username),
		html.EscapeString(feedback.CommentText),
	)
	if feedback.RequirementID != nil {
		body += fmt.Sprintf("<p>Attached to requirement #%d</p>", *feedback.RequirementID)
	}

	return sendEmail(cfg, subject, body, to)
}

// sendEmail sends an email through the Resend API
func sendEmail(cfg map[string]string, subject, body string, recipients []string) error {
	apiKey := config.GetString(cfg, "RESEND_API_KEY", "")
	if apiKey == "" {
		return fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := config.GetString(cfg, "RESEND_FROM_EMAIL", "")
	if fromEmail == "" {
		return fmt.Errorf("RESEND_FROM_EMAIL environment variable is required")
	}

	emailReq := ResendEmailRequest{
		From:    fromEmail,
		To:      recipients,
		Subject: subject,
		Html:    body,
	}

	jsonData, err := json.Marshal(emailReq)
	if err != nil {
		return fmt.Errorf("marshaling email request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, "https://api.resend.com/emails", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("creating email request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		var errResp ResendErrorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Message != "" {
			return fmt.Errorf("resend API returned %d: %s", resp.StatusCode, errResp.Message)
		}
		return fmt.Errorf("resend API returned %d", resp.StatusCode)
	}

	var emailResp ResendEmailResponse
	if err := json.NewDecoder(resp.Body).Decode(&emailResp); err == nil {
		log.Info().Str("emailID", emailResp.ID).Strs("recipients", recipients).Msg("Notification email sent")
	}

	return nil
}

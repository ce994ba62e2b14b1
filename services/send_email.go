package services

import (
	"context"
	"fmt"
	"time"

	"github.com/imroc/req/v3"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-site-backend/config"
	"github.com/rpupo63/portfolio-site-backend/errs"
)

// ResendEmailRequest represents the request payload for Resend API
type ResendEmailRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Html    string   `json:"html,omitempty"`
	Text    string   `json:"text,omitempty"`
}

// ResendEmailResponse represents the response from Resend API
type ResendEmailResponse struct {
	ID string `json:"id"`
}

// ResendErrorResponse represents an error response from Resend API
type ResendErrorResponse struct {
	Message string `json:"message"`
}

// ResendMailer sends e-mail through the Resend HTTP API.
type ResendMailer struct {
	client *req.Client
	from   string
}

// NewResendMailer returns nil when e-mail is not configured.
func NewResendMailer(settings config.MailSettings) *ResendMailer {
	if !settings.Enabled() {
		return nil
	}
	client := req.C().
		SetBaseURL(settings.ResendURL).
		SetTimeout(10 * time.Second).
		SetCommonBearerAuthToken(settings.ResendAPIKey)
	return &ResendMailer{client: client, from: settings.From}
}

// Send delivers an HTML e-mail to recipients.
func (m *ResendMailer) Send(ctx context.Context, subject, body string, recipients []string) error {
	if len(recipients) == 0 {
		return fmt.Errorf("at least one recipient is required")
	}

	var sent ResendEmailResponse
	var failed ResendErrorResponse
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(&ResendEmailRequest{
			From:    m.from,
			To:      recipients,
			Subject: subject,
			Html:    body,
		}).
		SetSuccessResult(&sent).
		SetErrorResult(&failed).
		Post("/emails")
	if err != nil {
		return fmt.Errorf("failed to send request to Resend API: %w", err)
	}
	if resp.IsErrorState() {
		return errs.NewEmailDeliveryError(resp.StatusCode, failed.Message)
	}

	log.Info().Str("emailId", sent.ID).Msg("Successfully sent email via Resend")
	return nil
}

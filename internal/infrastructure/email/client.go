// Package email provides the email client for sending admin notification emails.
package email

import (
	"fmt"
	"os"

	"github.com/resendlabs/resend-go"

	"github.com/iknowag/engage-go/internal/infrastructure/email/templates"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendApplicationNotification(toEmail string, props templates.ApplicationNotificationProps) error
	SendCaptureNotification(toEmail string, props templates.CaptureNotificationProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("ENGAGE_EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@iknowag.ai"
	}

	fromName := os.Getenv("ENGAGE_EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "iKnowAG"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendApplicationNotification alerts the admin inbox about a new partnership application.
func (c *ResendClient) SendApplicationNotification(toEmail string, props templates.ApplicationNotificationProps) error {
	subject := fmt.Sprintf("New partnership application: %s", props.CompanyName)

	htmlContent := templates.RenderLayout(templates.LayoutProps{
		Preheader: subject,
		Content:   templates.RenderApplicationNotification(props),
	})

	return c.send(toEmail, subject, htmlContent)
}

// SendCaptureNotification alerts the admin inbox about a new email signup.
func (c *ResendClient) SendCaptureNotification(toEmail string, props templates.CaptureNotificationProps) error {
	subject := fmt.Sprintf("New email signup via %s", props.Source)

	htmlContent := templates.RenderLayout(templates.LayoutProps{
		Preheader: subject,
		Content:   templates.RenderCaptureNotification(props),
	})

	return c.send(toEmail, subject, htmlContent)
}

func (c *ResendClient) send(toEmail, subject, htmlContent string) error {
	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send notification email via Resend: %w", err)
	}
	return nil
}

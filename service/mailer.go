// file: service/mailer.go

package service

import (
	"bytes"
	"fmt"
	"html/template"
	"lead-crm-api/config"
	"lead-crm-api/logger"
	"net/smtp"

	"github.com/google/uuid"
)

// MailKind selects which template a message uses.
type MailKind int

const (
	VerificationMail MailKind = iota
	PasswordResetMail
)

// IMailer sends account mails. Sending is fire-and-forget from the caller's
// point of view; failures are logged by the caller, never surfaced to the
// HTTP response of the reset-request path.
type IMailer interface {
	Send(address string, kind MailKind, token string) error
}

var mailTemplate = template.Must(template.New("mail").Parse(`
<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>{{.Heading}}</h2>
  <p>{{.Intro}}</p>
  <a href="{{.Link}}" style="display: inline-block; padding: 12px 24px; background-color: #007bff; color: white; text-decoration: none; border-radius: 4px; margin: 20px 0;">{{.Action}}</a>
  <p>Or copy and paste this link in your browser:</p>
  <p style="color: #666; word-break: break-all;">{{.Link}}</p>
  <p style="color: #999; font-size: 12px; margin-top: 30px;">{{.Footer}}</p>
</div>`))

// SMTPMailer renders the account mail templates and delivers them over SMTP.
// In development mode it logs the link instead of sending.
type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) Send(address string, kind MailKind, token string) error {
	frontend := config.AppConfig.Server.FrontendURL

	var subject string
	data := struct {
		Heading, Intro, Link, Action, Footer string
	}{}

	switch kind {
	case VerificationMail:
		subject = "Verify Your Email Address"
		data.Heading = "Email Verification"
		data.Intro = "Thank you for signing up! Please verify your email address by clicking the button below:"
		data.Link = fmt.Sprintf("%s/verify-email?token=%s", frontend, token)
		data.Action = "Verify Email"
		data.Footer = "This link will expire in 24 hours. If you didn't create an account, please ignore this email."
	case PasswordResetMail:
		subject = "Reset Your Password"
		data.Heading = "Password Reset Request"
		data.Intro = "You requested to reset your password. Click the button below to proceed:"
		data.Link = fmt.Sprintf("%s/reset-password?token=%s", frontend, token)
		data.Action = "Reset Password"
		data.Footer = "This link will expire in 1 hour. If you didn't request a password reset, please ignore this email."
	default:
		return fmt.Errorf("unknown mail kind: %d", kind)
	}

	if config.IsDevelopment() {
		logger.Log.WithField("to", address).Infof("Mail (development mode): %s -> %s", subject, data.Link)
		return nil
	}

	var body bytes.Buffer
	if err := mailTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render mail template: %w", err)
	}

	cfg := config.AppConfig.SMTP
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMessage-ID: <%s@lead-crm>\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		cfg.From, address, subject, uuid.NewString(), body.String())

	addr := fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
	auth := smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	if err := smtp.SendMail(addr, auth, cfg.From, []string{address}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}

	logger.Log.WithField("to", address).Info("Mail sent")
	return nil
}

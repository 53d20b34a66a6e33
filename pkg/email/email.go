// Package email abstracts transactional email delivery behind a small
// interface so services never depend on the concrete provider.
package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"
	"go.uber.org/zap"
)

// Sender delivers account-lifecycle emails.
type Sender interface {
	// SendVerification mails the address-confirmation link for a fresh
	// registration. The token is plaintext; only its hash is stored.
	SendVerification(ctx context.Context, toEmail, fullName, token string) error
}

type resendSender struct {
	client    *resend.Client
	fromEmail string
	appURL    string
}

// NewResendSender builds a Sender backed by the Resend API. fromEmail must
// belong to a domain verified in the Resend dashboard.
func NewResendSender(apiKey, fromEmail, appURL string) Sender {
	return &resendSender{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		appURL:    appURL,
	}
}

func (s *resendSender) SendVerification(ctx context.Context, toEmail, fullName, token string) error {
	verifyLink := fmt.Sprintf("%s/verify-email?token=%s", s.appURL, token)

	greeting := "Hi"
	if fullName != "" {
		greeting = fmt.Sprintf("Hi %s", fullName)
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:32px;background-color:#f8fafc;font-family:Arial,Helvetica,sans-serif;">
  <table width="480" cellpadding="0" cellspacing="0" align="center" style="background-color:#ffffff;border-radius:8px;padding:32px;">
    <tr>
      <td>
        <h1 style="color:#0f172a;font-size:22px;margin:0 0 16px 0;">Confirm your email</h1>
        <p style="color:#475569;font-size:15px;line-height:1.6;margin:0 0 24px 0;">
          %s, thanks for signing up. Confirm your email address to activate your account.
        </p>
        <table cellpadding="0" cellspacing="0" style="margin:0 0 24px 0;">
          <tr>
            <td style="background-color:#2563eb;border-radius:6px;padding:12px 32px;">
              <a href="%s" style="color:#ffffff;text-decoration:none;font-size:15px;font-weight:600;">Confirm email</a>
            </td>
          </tr>
        </table>
        <p style="color:#64748b;font-size:13px;line-height:1.6;margin:0;word-break:break-all;">
          If the button doesn't work, copy and paste this link:<br>
          <a href="%s" style="color:#2563eb;">%s</a>
        </p>
      </td>
    </tr>
  </table>
</body>
</html>`, greeting, verifyLink, verifyLink, verifyLink)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("CursoHub <%s>", s.fromEmail),
		To:      []string{toEmail},
		Subject: "Confirm your email address",
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("send verification email: %w", err)
	}

	return nil
}

type logSender struct {
	log *zap.Logger
}

// NewLogSender returns a Sender that only logs, for development and tests
// where no email provider is configured.
func NewLogSender(log *zap.Logger) Sender {
	if log == nil {
		log = zap.NewNop()
	}
	return &logSender{log: log}
}

func (s *logSender) SendVerification(_ context.Context, toEmail, _, token string) error {
	s.log.Info("verification email suppressed",
		zap.String("to", toEmail),
		zap.String("token", token))
	return nil
}

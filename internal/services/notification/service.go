// Package notification renders and sends account emails. Delivery is best
// effort: failures are logged and never surface to the caller.
package notification

import (
	"context"
	"errors"
	"time"

	"tcw1/internal/logger"
)

const DefaultBaseURL = "https://www.tcw1.org"

type Service interface {
	SendWelcome(ctx context.Context, email, firstName string)
	SendLoginNotification(ctx context.Context, email, ip, device string)
	SendLoginApprovalRequest(ctx context.Context, email, token, ip, device string)
	SendPasswordChanged(ctx context.Context, email string)
	SendTwoFactorEnabled(ctx context.Context, email string)
	SendTwoFactorDisabled(ctx context.Context, email string)
}

type service struct {
	mailer  Mailer
	baseURL string
	now     func() time.Time
}

func NewService(mailer Mailer, baseURL string) Service {
	if mailer == nil {
		mailer = LogMailer{}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &service{mailer: mailer, baseURL: baseURL, now: time.Now}
}

func (s *service) SendWelcome(ctx context.Context, email, firstName string) {
	s.send(ctx, email, "Welcome to TCW1!", "welcome", map[string]string{
		"FirstName": firstName,
		"BaseURL":   s.baseURL,
	})
}

func (s *service) SendLoginNotification(ctx context.Context, email, ip, device string) {
	s.send(ctx, email, "New Login on Your TCW1 Account", "login", map[string]string{
		"IP":     ip,
		"Device": device,
		"Time":   s.now().UTC().Format(time.RFC1123),
	})
}

func (s *service) SendLoginApprovalRequest(ctx context.Context, email, token, ip, device string) {
	s.send(ctx, email, "Approve New Login on Your TCW1 Account", "approval", map[string]string{
		"IP":      ip,
		"Device":  device,
		"Token":   token,
		"BaseURL": s.baseURL,
	})
}

func (s *service) SendPasswordChanged(ctx context.Context, email string) {
	s.send(ctx, email, "Password Changed on Your TCW1 Account", "password_changed", nil)
}

func (s *service) SendTwoFactorEnabled(ctx context.Context, email string) {
	s.send(ctx, email, "2FA Enabled on Your TCW1 Account", "2fa_enabled", nil)
}

func (s *service) SendTwoFactorDisabled(ctx context.Context, email string) {
	s.send(ctx, email, "2FA Disabled on Your TCW1 Account", "2fa_disabled", nil)
}

func (s *service) send(ctx context.Context, to, subject, tmpl string, data interface{}) {
	html, err := render(tmpl, data)
	if err != nil {
		logger.Log.Errorw("❌ Failed to render email", "template", tmpl, "error", err)
		return
	}
	if err := s.mailer.Send(ctx, Message{To: to, Subject: subject, HTML: html}); err != nil {
		if !errors.Is(err, ErrMailerNotConfigured) {
			logger.Log.Errorw("❌ Email send failed", "to", to, "subject", subject, "error", err)
		}
		return
	}
	logger.Log.Debugw("email sent", "to", to, "subject", subject)
}

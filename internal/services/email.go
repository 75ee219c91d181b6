package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/chefbawss/backend/internal/config"
	"github.com/chefbawss/backend/pkg/logger"
)

// EmailService renders and delivers outbound mail over SMTP. With SMTP
// disabled every send is a logged no-op, which keeps development and
// tests quiet.
type EmailService struct {
	cfg      *config.SMTPConfig
	frontend string
}

func NewEmailService(cfg *config.SMTPConfig, frontendURL string) *EmailService {
	return &EmailService{cfg: cfg, frontend: strings.TrimRight(frontendURL, "/")}
}

// Process renders and sends one email task. Used as the task queue /
// worker processor.
func (s *EmailService) Process(_ context.Context, task *EmailTask) error {
	switch task.Kind {
	case EmailKindChefInvite:
		return s.sendChefInvitation(task)
	case EmailKindPasswordReset:
		return s.sendPasswordReset(task)
	case EmailKindEventAssignment:
		return s.sendEventAssignment(task)
	case EmailKindEventUpdate:
		return s.sendEventUpdate(task)
	default:
		return fmt.Errorf("unknown email kind: %s", task.Kind)
	}
}

func (s *EmailService) sendChefInvitation(task *EmailTask) error {
	inviteURL := fmt.Sprintf("%s/accept-invite?token=%s", s.frontend, task.Token)
	subject := fmt.Sprintf("You've been invited to join %s on Chef Bawss", task.OrganizationName)

	var sb strings.Builder
	s.openBody(&sb)
	sb.WriteString("<h2>Welcome to Chef Bawss!</h2>")
	sb.WriteString(fmt.Sprintf("<p>Hi %s,</p>", task.RecipientName))
	sb.WriteString(fmt.Sprintf("<p>You've been invited to join <strong>%s</strong> as a chef on Chef Bawss.</p>", task.OrganizationName))
	sb.WriteString("<p>Click the button below to set your password and access your account:</p>")
	s.button(&sb, inviteURL, "Accept Invitation")
	sb.WriteString(fmt.Sprintf("<p>Or copy this link: %s</p>", inviteURL))
	sb.WriteString("<p>This link will expire in 7 days.</p>")
	sb.WriteString("<p style=\"color: #888; font-size: 12px;\">If you didn't expect this invitation, you can ignore this email.</p>")
	s.closeBody(&sb)

	return s.send([]string{task.To}, subject, sb.String())
}

func (s *EmailService) sendPasswordReset(task *EmailTask) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.frontend, task.Token)
	subject := "Reset your Chef Bawss password"

	var sb strings.Builder
	s.openBody(&sb)
	sb.WriteString("<h2>Password Reset</h2>")
	sb.WriteString(fmt.Sprintf("<p>Hi %s,</p>", task.RecipientName))
	sb.WriteString("<p>We received a request to reset your password. Click the button below to choose a new one:</p>")
	s.button(&sb, resetURL, "Reset Password")
	sb.WriteString(fmt.Sprintf("<p>Or copy this link: %s</p>", resetURL))
	sb.WriteString("<p>This link will expire in 1 hour.</p>")
	sb.WriteString("<p style=\"color: #888; font-size: 12px;\">If you didn't request a reset, you can ignore this email.</p>")
	s.closeBody(&sb)

	return s.send([]string{task.To}, subject, sb.String())
}

func (s *EmailService) sendEventAssignment(task *EmailTask) error {
	eventURL := fmt.Sprintf("%s/events/%d/chef-view", s.frontend, task.EventID)
	subject := fmt.Sprintf("New Event Assignment: %s", task.EventName)

	var sb strings.Builder
	s.openBody(&sb)
	sb.WriteString("<h2>New Event Assignment</h2>")
	sb.WriteString(fmt.Sprintf("<p>Hi %s,</p>", task.RecipientName))
	sb.WriteString(fmt.Sprintf("<p>You've been assigned to a new event with %s!</p>", task.OrganizationName))
	s.eventTable(&sb, task)
	s.button(&sb, eventURL, "View Event Details")
	s.closeBody(&sb)

	return s.send([]string{task.To}, subject, sb.String())
}

func (s *EmailService) sendEventUpdate(task *EmailTask) error {
	eventURL := fmt.Sprintf("%s/events/%d/chef-view", s.frontend, task.EventID)
	subject := fmt.Sprintf("Event Updated: %s", task.EventName)

	var sb strings.Builder
	s.openBody(&sb)
	sb.WriteString("<h2>Event Updated</h2>")
	sb.WriteString(fmt.Sprintf("<p>Hi %s,</p>", task.RecipientName))
	sb.WriteString(fmt.Sprintf("<p>An event you're assigned to with %s has been updated. Current details:</p>", task.OrganizationName))
	s.eventTable(&sb, task)
	s.button(&sb, eventURL, "View Event Details")
	s.closeBody(&sb)

	return s.send([]string{task.To}, subject, sb.String())
}

func (s *EmailService) openBody(sb *strings.Builder) {
	sb.WriteString("<html><body style=\"font-family: Arial, sans-serif; line-height: 1.6; color: #333;\">")
	sb.WriteString("<div style=\"max-width: 600px; margin: 0 auto; padding: 20px;\">")
}

func (s *EmailService) closeBody(sb *strings.Builder) {
	sb.WriteString("<hr><p style=\"color: #888; font-size: 12px;\">Powered by Chef Bawss</p>")
	sb.WriteString("</div></body></html>")
}

func (s *EmailService) button(sb *strings.Builder, url, label string) {
	sb.WriteString(fmt.Sprintf("<a href=\"%s\" style=\"display: inline-block; background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; margin: 20px 0;\">%s</a>", url, label))
}

func (s *EmailService) eventTable(sb *strings.Builder, task *EmailTask) {
	location := task.Location
	if location == "" {
		location = "TBD"
	}
	pay := task.ChefPay
	if pay == "" {
		pay = "TBD"
	}

	rows := []struct{ label, value string }{
		{"Event", task.EventName},
		{"Client", task.ClientName},
		{"Date", task.Date},
		{"Time", task.StartTime},
		{"Location", location},
		{"Guests", fmt.Sprintf("%d", task.GuestCount)},
		{"Your Pay", pay},
	}

	sb.WriteString("<table style=\"border-collapse: collapse; margin: 20px 0;\">")
	for _, r := range rows {
		sb.WriteString(fmt.Sprintf("<tr><td style=\"padding: 8px; border: 1px solid #ddd; font-weight: bold;\">%s</td><td style=\"padding: 8px; border: 1px solid #ddd;\">%s</td></tr>", r.label, r.value))
	}
	sb.WriteString("</table>")
}

func (s *EmailService) send(to []string, subject, body string) error {
	if !s.cfg.Enabled || s.cfg.Host == "" {
		logger.Debug().Str("subject", subject).Msg("smtp disabled, dropping email")
		return nil
	}
	if len(to) == 0 {
		return nil
	}

	from := s.cfg.From
	if from == "" {
		from = s.cfg.Username
	}

	headers := make(map[string]string)
	headers["From"] = from
	headers["To"] = strings.Join(to, ",")
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(body)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var auth smtp.Auth
	if s.cfg.Username != "" && s.cfg.Password != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	var err error
	if s.cfg.UseTLS {
		err = s.sendTLS(addr, auth, from, to, message.String())
	} else {
		err = smtp.SendMail(addr, auth, from, to, []byte(message.String()))
	}

	if err != nil {
		logger.Warnf("[Email] Failed to send email: %v", err)
		return err
	}

	logger.Infof("[Email] Sent %q to %v", subject, to)
	return nil
}

func (s *EmailService) sendTLS(addr string, auth smtp.Auth, from string, to []string, message string) error {
	tlsConfig := &tls.Config{
		ServerName: s.cfg.Host,
	}

	conn, err := tls.Dial("tcp", addr, tlsConfig)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}

	if err := client.Mail(from); err != nil {
		return err
	}

	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}

	if _, err = w.Write([]byte(message)); err != nil {
		return err
	}

	return w.Close()
}

package services

import (
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/mvallesteros/ligastar/models"
)

// Notifier sends league notices to team contacts. A nil Notifier is valid
// and means notifications are disabled.
type Notifier interface {
	SendSuspensionNotice(team *models.Team, player *models.Player) error
	SendExclusionNotice(team *models.Team) error
}

// SMTPConfig carries the settings of the outgoing mail account.
type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

func (c SMTPConfig) configured() bool {
	return c.Host != "" && c.From != ""
}

type emailService struct {
	cfg    SMTPConfig
	logger *slog.Logger
}

// NewEmailService returns a Notifier over SMTP, or nil when the config is
// incomplete, which callers treat as notifications disabled.
func NewEmailService(cfg SMTPConfig, logger *slog.Logger) Notifier {
	if !cfg.configured() {
		return nil
	}
	return &emailService{cfg: cfg, logger: logger}
}

func (s *emailService) SendSuspensionNotice(team *models.Team, player *models.Player) error {
	if team.ContactEmail == nil {
		return nil
	}
	subject := "Player suspension notice"
	body := fmt.Sprintf(
		"<p>Player <b>%s</b> (#%d) of %s is suspended for %d match(es).</p>",
		player.FullName(), player.JerseyNumber, team.Name, player.SuspensionMatchesLeft,
	)
	return s.send(*team.ContactEmail, subject, body)
}

func (s *emailService) SendExclusionNotice(team *models.Team) error {
	if team.ContactEmail == nil {
		return nil
	}
	subject := "Team excluded from tournament"
	body := fmt.Sprintf(
		"<p>Team <b>%s</b> has been excluded after reaching the absence limit (%d no-shows). Contact the league office for details.</p>",
		team.Name, team.Absences,
	)
	return s.send(*team.ContactEmail, subject, body)
}

func (s *emailService) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Pass, s.cfg.Host)
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	msg := []byte("To: " + to + "\r\n" +
		"From: " + s.cfg.From + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	tlsConfig := &tls.Config{ServerName: s.cfg.Host}

	var client *smtp.Client
	if s.cfg.Port == 465 {
		conn, err := tls.Dial("tcp", addr, tlsConfig)
		if err != nil {
			return fmt.Errorf("smtp tls dial: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.Host)
		if err != nil {
			return fmt.Errorf("smtp client: %w", err)
		}
	} else {
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("smtp dial: %w", err)
		}
		client = c
		if err := client.StartTLS(tlsConfig); err != nil {
			client.Close()
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	defer client.Quit()

	if s.cfg.User != "" {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("smtp rcpt to: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	s.logger.Info("notice sent", slog.String("to", to), slog.String("subject", subject))
	return nil
}

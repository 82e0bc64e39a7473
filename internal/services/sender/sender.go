// Package services contains the notification sender: it consumes queued
// messages and delivers them by email.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/edilconnect/platform/internal/lib/sl"
	"github.com/edilconnect/platform/internal/lib/smtp"
	"github.com/edilconnect/platform/internal/models"
)

// SenderService turns queued notification messages into outbound emails.
type SenderService struct {
	transport smtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService creates a SenderService on top of an SMTP transport.
func NewSenderService(transport smtp.TransportInterface, log *slog.Logger) *SenderService {
	return &SenderService{transport: transport, log: log}
}

// SendVerificationEmail handles one queued address-confirmation message.
func (s *SenderService) SendVerificationEmail(body []byte) error {
	var message models.VerificationEmail
	if err := json.Unmarshal(body, &message); err != nil {
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	subject := "Conferma il tuo indirizzo email"
	bodyText := fmt.Sprintf(
		"Ciao %s,\n\nconferma il tuo indirizzo email aprendo questo link:\n\n%s\n\nIl link scade tra 24 ore.",
		message.Name, message.VerifyURL)

	return s.send(message.Email, subject, bodyText)
}

// send delivers one plain-text email over a fresh SMTP session.
func (s *SenderService) send(to, subject, bodyText string) error {
	from := s.transport.GetSMTPUser()
	msg := strings.Join([]string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Close()

	if err = client.Mail(from); err != nil {
		return fmt.Errorf("failed to set mail sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	wc, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get write closer: %w", err)
	}
	if _, err = wc.Write([]byte(msg)); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err = wc.Close(); err != nil {
		return fmt.Errorf("failed to close write closer: %w", err)
	}

	if err = client.Quit(); err != nil {
		return fmt.Errorf("failed to quit SMTP client: %w", err)
	}

	s.log.Info("email sent successfully", slog.String("to", to))
	return nil
}

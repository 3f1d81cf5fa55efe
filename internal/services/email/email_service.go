package email

import (
	"fmt"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"
)

// Sender delivers formatted HTML email. The auth service only needs this one
// method.
type Sender interface {
	SendEmail(to, subject, htmlBody string) error
}

// Service sends mail over SMTP. When no SMTP credentials are configured it
// logs the message instead of sending, so development environments work
// without a mail server.
type Service struct {
	host     string
	port     int
	username string
	password string
	fromAddr string
	fromName string
}

func NewService() *Service {
	port := 587
	if p, err := strconv.Atoi(os.Getenv("SMTP_PORT")); err == nil && p > 0 {
		port = p
	}

	username := os.Getenv("SMTP_USERNAME")
	fromAddr := os.Getenv("SMTP_FROM_EMAIL")
	if fromAddr == "" {
		fromAddr = username
	}
	fromName := os.Getenv("SMTP_FROM_NAME")
	if fromName == "" {
		fromName = "Machine Control System"
	}

	host := os.Getenv("SMTP_HOST")
	if host == "" {
		host = "smtp.gmail.com"
	}

	return &Service{
		host:     host,
		port:     port,
		username: username,
		password: os.Getenv("SMTP_PASSWORD"),
		fromAddr: fromAddr,
		fromName: fromName,
	}
}

// SendEmail sends a single HTML message to one recipient.
func (s *Service) SendEmail(to, subject, htmlBody string) error {
	if s.username == "" || s.password == "" {
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Warn("SMTP not configured, logging email instead of sending")
		logrus.Debugf("Email body: %s", htmlBody)
		return nil
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.fromAddr, s.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	d := gomail.NewDialer(s.host, s.port, s.username, s.password)
	if err := d.DialAndSend(m); err != nil {
		logrus.WithField("to", to).Errorf("Failed to send email: %v", err)
		return fmt.Errorf("failed to send email: %w", err)
	}

	logrus.WithField("to", to).Info("Email sent successfully")
	return nil
}

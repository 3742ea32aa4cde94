// Package mail delivers rendered digests over authenticated SMTP with STARTTLS
package mail

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-pkgz/email"
	"github.com/go-pkgz/lgr"

	"github.com/umputun/ideafilter/pkg/config"
)

// ErrIncompleteConfig is returned when delivery settings are missing, before any connection is made
var ErrIncompleteConfig = errors.New("email configuration is incomplete")

// mailer is the part of email.Sender used here
type mailer interface {
	Send(text string, params email.Params) error
}

// Sender sends html documents by email
type Sender struct {
	config    config.SMTPConfig
	newMailer func(cfg config.SMTPConfig) mailer
}

// NewSender creates a sender for smtp settings with defaults already applied
func NewSender(cfg config.SMTPConfig) *Sender {
	return &Sender{config: cfg, newMailer: smtpMailer}
}

// Send submits document as an html message with the given subject.
// Incomplete settings fail with ErrIncompleteConfig without connecting to the server.
func (s *Sender) Send(recipient, subject, document string) error {
	if missing := s.missing(recipient); len(missing) > 0 {
		return fmt.Errorf("%w, missing %s", ErrIncompleteConfig, strings.Join(missing, ", "))
	}

	m := s.newMailer(s.config)
	params := email.Params{From: s.config.From, To: []string{recipient}, Subject: subject}
	if err := m.Send(document, params); err != nil {
		return fmt.Errorf("send email to %s via %s:%d: %w", recipient, s.config.Host, s.config.Port, err)
	}

	lgr.Printf("[INFO] email sent successfully to %s", recipient)
	return nil
}

func (s *Sender) missing(recipient string) []string {
	var res []string
	check := func(name, val string) {
		if strings.TrimSpace(val) == "" {
			res = append(res, name)
		}
	}
	check("host", s.config.Host)
	if s.config.Port <= 0 {
		res = append(res, "port")
	}
	check("username", s.config.Username)
	check("password", s.config.Password)
	check("sender", s.config.From)
	check("recipient", recipient)
	return res
}

func smtpMailer(cfg config.SMTPConfig) mailer {
	return email.NewSender(cfg.Host,
		email.Port(cfg.Port),
		email.STARTTLS(true),
		email.Auth(cfg.Username, cfg.Password),
		email.TimeOut(cfg.Timeout),
		email.ContentType("text/html"),
		email.Log(lgr.Default()),
	)
}

// Package notify delivers verification codes to users.
package notify

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"
)

const (
	senderName          = "MiniPro App"
	verificationSubject = "Your OTP Code"
)

// SMTPConfig holds the outbound mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS, usually port 465
	Username string
	Password string

	// From defaults to Username.
	From string
}

func (c SMTPConfig) validate() error {
	if c.Host == "" {
		return fmt.Errorf("missing SMTP host")
	}
	if c.Port <= 0 {
		return fmt.Errorf("invalid SMTP port %d", c.Port)
	}
	if c.sender() == "" {
		return fmt.Errorf("missing sender address")
	}
	return nil
}

func (c SMTPConfig) sender() string {
	if c.From != "" {
		return c.From
	}
	return c.Username
}

type mailSender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPNotifier sends verification codes through an SMTP relay. A connection
// is opened per message.
type SMTPNotifier struct {
	from   string
	dialer mailSender
}

// NewSMTPNotifier validates cfg and prepares a dialer for it.
func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	d.SSL = cfg.Secure

	return &SMTPNotifier{from: cfg.sender(), dialer: d}, nil
}

// SendVerificationCode mails code to email.
func (n *SMTPNotifier) SendVerificationCode(ctx context.Context, email, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := n.dialer.DialAndSend(n.verificationMessage(email, code)); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) verificationMessage(email, code string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", n.from, senderName)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", verificationSubject)
	msg.SetBody("text/html", fmt.Sprintf("<h2>Your Verification Code</h2><p>Your OTP is <b>%s</b></p>", code))
	msg.AddAlternative("text/plain", fmt.Sprintf("Your OTP is %s", code))
	return msg
}

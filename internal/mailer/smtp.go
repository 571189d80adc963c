package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// SMTPConfig holds the SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer sends mail through an SMTP relay.
type SMTPMailer struct {
	client sender
	from   string
}

func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithTimeout(10 * time.Second),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	from := cfg.From
	if from == "" {
		from = DefaultFrom
	}
	return &SMTPMailer{client: client, from: from}, nil
}

func (m *SMTPMailer) SendVerificationCode(ctx context.Context, to, code string, expiresIn time.Duration) error {
	msg, err := verificationMessage(m.from, to, code, expiresIn)
	if err != nil {
		return err
	}
	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send verification mail: %w", err)
	}
	return nil
}

func verificationMessage(from, to, code string, expiresIn time.Duration) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	minutes := int(expiresIn.Minutes())
	msg.Subject("Your DryFit verification code")
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Your verification code is: %s\n\nIt expires in %d minutes. If you did not request this code, ignore this e-mail.\n",
		code, minutes))
	msg.AddAlternativeString(mail.TypeTextHTML, fmt.Sprintf(
		`<div style="font-family:sans-serif"><p>Your verification code is:</p>`+
			`<p style="font-size:32px;font-weight:bold;letter-spacing:8px">%s</p>`+
			`<p>It expires in %d minutes.</p></div>`,
		code, minutes))
	return msg, nil
}

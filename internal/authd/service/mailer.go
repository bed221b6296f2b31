package service

import (
	"context"
	"log/slog"
)

// Mailer delivers account emails. The service only sends one kind today.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// LogMailer writes the mail to the log instead of sending it. Used in dev and
// in deployments that read reset tokens off the log pipeline.
type LogMailer struct {
	Logger *slog.Logger
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.Logger.Info("password reset mail",
		"to", email,
		"reset_token", token,
	)
	return nil
}

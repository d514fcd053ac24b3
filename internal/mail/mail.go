// Package mail delivers outgoing messages. The console backend writes them to the log.
package mail

import (
	"context"

	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer prints every message to the application log instead of sending it.
type LogMailer struct {
	logger *zap.Logger
	from   string
}

func NewLogMailer(logger *zap.Logger, from string) *LogMailer {
	return &LogMailer{logger: logger.Named("mail"), from: from}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("Outgoing email",
		zap.String("from", m.from),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

package email

import (
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

// SMTPNotifier alerts the moderation inbox when an analysis job terminally
// fails, so a moderator can review the bug report without a machine verdict.
type SMTPNotifier struct {
	host   string
	port   int
	from   string
	to     string
	logger *zap.Logger
}

func NewSMTPNotifier(host string, port int, from, to string, logger *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{host: host, port: port, from: from, to: to, logger: logger}
}

func (n *SMTPNotifier) NotifyFailure(_ context.Context, jobID, videoLocator, errorMsg string) error {
	addr := fmt.Sprintf("%s:%d", n.host, n.port)

	subject := fmt.Sprintf("BharatQA - Recording analysis failed [Job %s]", jobID)
	body := fmt.Sprintf(
		"The automated analysis for a submitted recording failed; the bug report needs manual moderation.\r\n\r\n"+
			"Job ID: %s\r\n"+
			"Recording: %s\r\n"+
			"Error: %s\r\n\r\n"+
			"-- BharatQA analysis worker",
		jobID, videoLocator, errorMsg,
	)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		n.from, n.to, subject, body,
	)

	if err := smtp.SendMail(addr, nil, n.from, []string{n.to}, []byte(msg)); err != nil {
		n.logger.Error("failed to send moderation alert",
			zap.String("job_id", jobID),
			zap.Error(err),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.logger.Info("moderation alert sent", zap.String("job_id", jobID))
	return nil
}

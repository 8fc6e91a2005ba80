package config

import "time"

// MailConfig selects how emails leave the service.  Without SMTPHost the
// emails are only logged.  With QueueURL they are published to RabbitMQ
// and sent by the queue consumer.
type MailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	From         string
	AdminInbox   string // receives contact form messages
	AuditPath    string // consumer audit log; empty disables it

	QueueURL     string
	Queue        string
	ConsumeQueue bool // run the consumer inside the server process
}

func LoadMailConfig() MailConfig {
	return MailConfig{
		SMTPHost:     envStr("SMTP_HOST", ""),
		SMTPPort:     envInt("SMTP_PORT", 587),
		SMTPUser:     envStr("SMTP_USER", ""),
		SMTPPassword: envStr("SMTP_PASSWORD", ""),
		From:         envStr("MAIL_FROM", "no-reply@venue-booking.local"),
		AdminInbox:   envStr("ADMIN_INBOX", ""),
		AuditPath:    envStr("MAIL_AUDIT_PATH", ""),
		QueueURL:     envStr("RABBITMQ_URL", ""),
		Queue:        envStr("RABBITMQ_MAIL_QUEUE", "venue.mail"),
		ConsumeQueue: envBool("RABBITMQ_CONSUME", true),
	}
}

// LogConfig configures the logrus logger.
type LogConfig struct {
	Level       string
	File        string // base path for rotated files; empty logs to stderr only
	RotateEvery time.Duration
	MaxAge      time.Duration
}

func LoadLogConfig() LogConfig {
	return LogConfig{
		Level:       envStr("LOG_LEVEL", "info"),
		File:        envStr("LOG_FILE", ""),
		RotateEvery: envDur("LOG_ROTATE_EVERY", 24*time.Hour),
		MaxAge:      envDur("LOG_MAX_AGE", 7*24*time.Hour),
	}
}

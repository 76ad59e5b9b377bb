package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"
)

// SMTPMailerService implements the Mailer interface using net/smtp.
type SMTPMailerService struct {
	host       string
	port       int
	username   string
	password   string
	from       string // The "From" address for the email header
	senderName string // The display name for the sender
	logger     *zap.Logger
}

// NewSMTPMailerService creates a new SMTPMailerService.
func NewSMTPMailerService(host string, port int, username, password, fromEmail, senderName string, logger *zap.Logger) *SMTPMailerService {
	return &SMTPMailerService{
		host:       host,
		port:       port,
		username:   username,
		password:   password,
		from:       fromEmail,
		senderName: senderName,
		logger:     logger.Named("SMTPMailerService"),
	}
}

// SendVerificationEmail sends the verification link using SMTP.
func (s *SMTPMailerService) SendVerificationEmail(toEmailAddr, toName, verifyURL string) error {
	subject := "Verify your email"

	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
                             <p>Please click on the following link to verify your account:</p>
                             <p><a href="%s">%s</a></p>
                             <p>If you did not request this, please ignore this email.</p>`, toName, verifyURL, verifyURL)

	textBody := fmt.Sprintf(`Hello %s,
Please click on the following link to verify your account:
%s
If you did not request this, please ignore this email.`, toName, verifyURL)

	return s.send(toEmailAddr, subject, htmlBody, textBody)
}

// SendPasswordResetEmail sends the password reset link using SMTP.
func (s *SMTPMailerService) SendPasswordResetEmail(toEmailAddr, toName, resetURL string) error {
	subject := "Reset your password"

	htmlBody := fmt.Sprintf(`<p>Hello %s,</p>
                             <p>You requested a password reset. Click the link below to reset your password:</p>
                             <p><a href="%s">%s</a></p>
                             <p>This link will expire in 10 minutes.</p>`, toName, resetURL, resetURL)

	textBody := fmt.Sprintf(`Hello %s,
You requested a password reset. Click the link below to reset your password:
%s
This link will expire in 10 minutes.`, toName, resetURL)

	return s.send(toEmailAddr, subject, htmlBody, textBody)
}

func (s *SMTPMailerService) send(toEmailAddr, subject, htmlBody, textBody string) error {
	s.logger.Info("Attempting to send email via SMTP",
		zap.String("toEmail", toEmailAddr),
		zap.String("subject", subject),
		zap.String("smtpHost", s.host),
		zap.Int("smtpPort", s.port))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)

	// Email headers
	headers := make(map[string]string)
	if s.senderName != "" {
		headers["From"] = fmt.Sprintf("%s <%s>", s.senderName, s.from)
	} else {
		headers["From"] = s.from
	}
	headers["To"] = toEmailAddr
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"

	// Constructing a multipart message
	boundary := "account-mail-boundary-12345"
	headers["Content-Type"] = fmt.Sprintf("multipart/alternative; boundary=%s", boundary)

	var msgBuilder strings.Builder

	for k, v := range headers {
		msgBuilder.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msgBuilder.WriteString("\r\n")

	// Plain text part
	msgBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msgBuilder.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msgBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msgBuilder.WriteString(textBody)
	msgBuilder.WriteString("\r\n\r\n")

	// HTML part
	msgBuilder.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	msgBuilder.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	msgBuilder.WriteString("Content-Transfer-Encoding: 7bit\r\n\r\n")
	msgBuilder.WriteString(htmlBody)
	msgBuilder.WriteString("\r\n\r\n")

	msgBuilder.WriteString(fmt.Sprintf("--%s--\r\n", boundary))

	addr := fmt.Sprintf("%s:%d", s.host, s.port)

	err := smtp.SendMail(addr, auth, s.from, []string{toEmailAddr}, []byte(msgBuilder.String()))
	if err != nil {
		s.logger.Error("Failed to send email via SMTP",
			zap.Error(err),
			zap.String("toEmail", toEmailAddr),
			zap.String("smtpHost", s.host))
		return fmt.Errorf("smtp.SendMail failed: %w", err)
	}

	s.logger.Info("Email sent successfully via SMTP", zap.String("toEmail", toEmailAddr), zap.String("subject", subject))
	return nil
}

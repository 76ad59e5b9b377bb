package mailer

// Mailer defines the interface for sending account emails.
type Mailer interface {
	SendVerificationEmail(toEmail, toName, verifyURL string) error
	SendPasswordResetEmail(toEmail, toName, resetURL string) error
}

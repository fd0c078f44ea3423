package mailer

type Service interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendVerification(toEmail, toName, verifyURL string) error
}

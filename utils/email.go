package utils

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"gopkg.in/gomail.v2"
)

//go:generate mockgen -source=email.go -destination=mock_mailer.go -package=utils

var ErrMailDisabled = errors.New("mail delivery is not configured")

type Mail struct {
	From    string
	To      string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type SMTPMailer struct {
	dialer *gomail.Dialer
}

// NewSMTPMailer returns a mailer that dials host on every send. An empty host
// yields a mailer that always fails with ErrMailDisabled.
func NewSMTPMailer(host string, port int, user, password string) *SMTPMailer {
	if host == "" {
		return &SMTPMailer{}
	}
	return &SMTPMailer{dialer: gomail.NewDialer(host, port, user, password)}
}

func (s *SMTPMailer) Send(ctx context.Context, mail Mail) error {
	if s.dialer == nil {
		return ErrMailDisabled
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", mail.From)
	m.SetHeader("To", mail.To)
	m.SetHeader("Subject", mail.Subject)
	m.SetBody("text/html", mail.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send mail to %s: %w", mail.To, err)
	}
	return nil
}

var passwordVerificationTmpl = template.Must(template.New("passwordVerification").Parse(`<!DOCTYPE html>
<html>
  <body>
    <h2>Hi {{.Name}},</h2>
    <p>We received a request to reset the password of your account.</p>
    <p><a href="{{.Link}}">Reset your password</a></p>
    <p>If you did not ask for it, you can ignore this email.</p>
  </body>
</html>`))

var emailVerificationTmpl = template.Must(template.New("emailVerification").Parse(`<!DOCTYPE html>
<html>
  <body>
    <h2>Hi {{.Name}},</h2>
    <p>Please confirm your email address.</p>
    <p><a href="{{.Link}}">Verify email</a></p>
  </body>
</html>`))

const (
	MailPasswordVerification = "passwordVerfication"
	MailEmailVerification    = "emailVerfication"
)

// RenderMail renders the body of the given mail type for name and link.
func RenderMail(mailType, name, link string) (string, error) {
	tmpl := emailVerificationTmpl
	if mailType == MailPasswordVerification {
		tmpl = passwordVerificationTmpl
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Name, Link string }{name, link}); err != nil {
		return "", fmt.Errorf("render %s mail: %w", mailType, err)
	}
	return buf.String(), nil
}

type MailRequest struct {
	Email    string
	Name     string
	Link     string
	Subject  string
	AppEmail string
	Type     string
}

// SendMail renders the template for req.Type and hands it to the mailer.
// Delivery errors are returned to the caller.
func SendMail(ctx context.Context, mailer Mailer, req MailRequest) error {
	html, err := RenderMail(req.Type, req.Name, req.Link)
	if err != nil {
		return err
	}
	return mailer.Send(ctx, Mail{
		From:    req.AppEmail,
		To:      req.Email,
		Subject: req.Subject,
		HTML:    html,
	})
}

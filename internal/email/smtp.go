package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"
)

// SMTPSender implementa AlertSender vía SMTP.
type SMTPSender struct {
	Host               string
	Port               int
	From               string
	User               string
	Pass               string
	InsecureSkipVerify bool // solo dev
}

func NewSMTPSender(host string, port int, from, user, pass string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from, User: user, Pass: pass}
}

func (s *SMTPSender) SendLoginAlert(_ context.Context, to, ip, userAgent string, at time.Time) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Nuevo inicio de sesión en tu cuenta")

	text := fmt.Sprintf(
		"Detectamos un inicio de sesión nuevo en tu cuenta.\n\nFecha: %s\nIP: %s\nNavegador: %s\n\nSi fuiste vos, ignorá este mensaje. Si no, cerrá sesión en todos los dispositivos y cambiá tu contraseña.\n",
		at.UTC().Format(time.RFC1123), ip, userAgent,
	)
	m.SetBody("text/plain", text)

	d := mail.NewDialer(s.Host, s.Port, s.User, s.Pass)
	d.TLSConfig = &tls.Config{
		ServerName:         s.Host,
		InsecureSkipVerify: s.InsecureSkipVerify,
	}
	return d.DialAndSend(m)
}

package mail

import (
	"crypto/tls"

	"gopkg.in/gomail.v2"

	"github.com/gitlab-tools/token-monitor/config"
)

type SMTPMailSender struct {
	*gomail.Dialer
	From string
}

func (s *SMTPMailSender) Send(message *Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.From)
	msg.SetHeader("To", message.To...)
	if len(message.Cc) > 0 {
		msg.SetHeader("Cc", message.Cc...)
	}
	msg.SetHeader("Subject", message.Subject)
	if message.IsHTML {
		msg.SetBody("text/html", message.Body)
	} else {
		msg.SetBody("text/plain", message.Body)
	}
	return s.DialAndSend(msg)
}

// NewDialer builds the SMTP dialer from config. UseSSL selects implicit TLS
// (port 465 style); UseTLS pins the server name for the STARTTLS handshake
// gomail negotiates on plain connections.
func NewDialer(cfg config.SMTPConfig) *gomail.Dialer {
	dialer := gomail.NewDialer(cfg.Server, cfg.Port, cfg.Username, cfg.Password)
	dialer.SSL = cfg.UseSSL
	if cfg.UseTLS {
		dialer.TLSConfig = &tls.Config{ServerName: cfg.Server}
	}
	return dialer
}

func NewSMTPMailSender(dialer *gomail.Dialer, from string) MailSender {
	return &SMTPMailSender{
		Dialer: dialer,
		From:   from,
	}
}

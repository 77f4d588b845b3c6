package mail

import (
	"fmt"

	"collabs/internal/config"

	"gopkg.in/gomail.v2"
)

// Mailer отправляет сервисные письма через SMTP. Вызывается только из
// фонового пула: отправка никогда не стоит на пути запроса.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	appURL string
}

func NewMailer(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   cfg.MailFrom,
		appURL: cfg.AppURL,
	}
}

func (m *Mailer) SendInvite(email, token string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email)
	msg.SetHeader("Subject", "Invite to collaborate")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>You have been invited to collaborate on a project. Click the link below to accept the invite. The link is valid for 7 days.</p>`+
			`<a href="%s/accept-invite?code=%s" target="_blank" rel="noopener noreferrer">Accept invite</a>`,
		m.appURL, token,
	))

	return m.dialer.DialAndSend(msg)
}
